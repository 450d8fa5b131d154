package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"

	"moma/handlers"
	"moma/models"
	"moma/services/browse"
	"moma/services/catalog"
)

type fakeCatalog struct {
	fail      bool
	lastGenre models.GenreID
	refreshed bool
}

func (f *fakeCatalog) list() catalog.Result[[]models.Movie] {
	if f.fail {
		return catalog.Result[[]models.Movie]{Value: []models.Movie{}, Reason: errors.New("upstream down")}
	}
	return catalog.Result[[]models.Movie]{Value: []models.Movie{{ID: 1, Title: "One"}}}
}

func (f *fakeCatalog) Genres(context.Context) catalog.Result[[]models.Genre] {
	return catalog.Result[[]models.Genre]{Value: []models.Genre{{ID: 28, Name: "Action"}}}
}
func (f *fakeCatalog) Upcoming(context.Context) catalog.Result[[]models.Movie] { return f.list() }
func (f *fakeCatalog) Popular(context.Context) catalog.Result[[]models.Movie]  { return f.list() }
func (f *fakeCatalog) TopRated(context.Context) catalog.Result[[]models.Movie] { return f.list() }
func (f *fakeCatalog) Discover(_ context.Context, genre models.GenreID) catalog.Result[[]models.Movie] {
	f.lastGenre = genre
	return f.list()
}
func (f *fakeCatalog) Refresh() { f.refreshed = true }

type fakeBrowse struct{}

func (fakeBrowse) MovieInformation(_ context.Context, id int64) models.MovieInformation {
	return models.MovieInformation{MovieID: id, Detail: &models.Movie{ID: id, Title: "Detail"}}
}

func (fakeBrowse) Home(context.Context) browse.HomeFeed {
	return browse.HomeFeed{Popular: []models.Movie{{ID: 3}}, Degraded: true}
}

func TestCatalogListsReportDegradedResults(t *testing.T) {
	h := handlers.NewCatalogHandler(&fakeCatalog{fail: true}, fakeBrowse{})

	rec := httptest.NewRecorder()
	h.Popular(rec, httptest.NewRequest(http.MethodGet, "/api/movies/popular", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if rec.Header().Get("X-Catalog-Degraded") != "true" {
		t.Fatalf("expected degraded header")
	}
	if body := rec.Body.String(); body != "[]\n" {
		t.Fatalf("expected empty list body, got %q", body)
	}
}

func TestCatalogListsHealthy(t *testing.T) {
	h := handlers.NewCatalogHandler(&fakeCatalog{}, fakeBrowse{})

	rec := httptest.NewRecorder()
	h.Upcoming(rec, httptest.NewRequest(http.MethodGet, "/api/movies/upcoming", nil))

	if rec.Header().Get("X-Catalog-Degraded") != "" {
		t.Fatalf("did not expect degraded header")
	}
	var movies []models.Movie
	if err := json.Unmarshal(rec.Body.Bytes(), &movies); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(movies) != 1 || movies[0].Title != "One" {
		t.Fatalf("unexpected movies %+v", movies)
	}
}

func TestDiscoverParsesGenre(t *testing.T) {
	c := &fakeCatalog{}
	h := handlers.NewCatalogHandler(c, fakeBrowse{})

	rec := httptest.NewRecorder()
	h.Discover(rec, httptest.NewRequest(http.MethodGet, "/api/movies/discover?genre=35", nil))
	if rec.Code != http.StatusOK || c.lastGenre != 35 {
		t.Fatalf("expected genre 35 to be requested, got status %d genre %d", rec.Code, c.lastGenre)
	}

	rec = httptest.NewRecorder()
	h.Discover(rec, httptest.NewRequest(http.MethodGet, "/api/movies/discover?genre=abc", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed genre, got %d", rec.Code)
	}
}

func TestMovieInformationHandler(t *testing.T) {
	h := handlers.NewCatalogHandler(&fakeCatalog{}, fakeBrowse{})

	req := httptest.NewRequest(http.MethodGet, "/api/movies/550", nil)
	req = mux.SetURLVars(req, map[string]string{"movieID": "550"})
	rec := httptest.NewRecorder()
	h.MovieInformation(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	// Credits are missing in the fake, so the response is degraded.
	if rec.Header().Get("X-Catalog-Degraded") != "true" {
		t.Fatalf("expected degraded header")
	}
	var info models.MovieInformation
	if err := json.Unmarshal(rec.Body.Bytes(), &info); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if info.MovieID != 550 || info.Detail == nil || info.Detail.Title != "Detail" {
		t.Fatalf("unexpected info %+v", info)
	}

	bad := mux.SetURLVars(httptest.NewRequest(http.MethodGet, "/api/movies/x", nil), map[string]string{"movieID": "x"})
	rec = httptest.NewRecorder()
	h.MovieInformation(rec, bad)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed id, got %d", rec.Code)
	}
}

func TestHomeAndRefresh(t *testing.T) {
	c := &fakeCatalog{}
	h := handlers.NewCatalogHandler(c, fakeBrowse{})

	rec := httptest.NewRecorder()
	h.Home(rec, httptest.NewRequest(http.MethodGet, "/api/home", nil))
	if rec.Header().Get("X-Catalog-Degraded") != "true" {
		t.Fatalf("expected degraded header for degraded home feed")
	}

	rec = httptest.NewRecorder()
	h.Refresh(rec, httptest.NewRequest(http.MethodPost, "/api/catalog/refresh", nil))
	if rec.Code != http.StatusNoContent || !c.refreshed {
		t.Fatalf("expected refresh to run, got status %d", rec.Code)
	}
}
