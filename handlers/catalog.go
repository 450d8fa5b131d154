package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"moma/models"
	"moma/services/browse"
	"moma/services/catalog"
)

const degradedHeader = "X-Catalog-Degraded"

type catalogService interface {
	Genres(ctx context.Context) catalog.Result[[]models.Genre]
	Upcoming(ctx context.Context) catalog.Result[[]models.Movie]
	Popular(ctx context.Context) catalog.Result[[]models.Movie]
	TopRated(ctx context.Context) catalog.Result[[]models.Movie]
	Discover(ctx context.Context, genre models.GenreID) catalog.Result[[]models.Movie]
	Refresh()
}

type browseService interface {
	MovieInformation(ctx context.Context, movieID int64) models.MovieInformation
	Home(ctx context.Context) browse.HomeFeed
}

var (
	_ catalogService = (*catalog.Service)(nil)
	_ browseService  = (*browse.Service)(nil)
)

// CatalogHandler serves the movie lists and movie information. Catalog
// failures answer 200 with an empty body value and the degraded header set.
type CatalogHandler struct {
	Catalog catalogService
	Browse  browseService
}

func NewCatalogHandler(c catalogService, b browseService) *CatalogHandler {
	return &CatalogHandler{Catalog: c, Browse: b}
}

func (h *CatalogHandler) Genres(w http.ResponseWriter, r *http.Request) {
	writeResult(w, h.Catalog.Genres(r.Context()))
}

func (h *CatalogHandler) Upcoming(w http.ResponseWriter, r *http.Request) {
	writeResult(w, h.Catalog.Upcoming(r.Context()))
}

func (h *CatalogHandler) Popular(w http.ResponseWriter, r *http.Request) {
	writeResult(w, h.Catalog.Popular(r.Context()))
}

func (h *CatalogHandler) TopRated(w http.ResponseWriter, r *http.Request) {
	writeResult(w, h.Catalog.TopRated(r.Context()))
}

func (h *CatalogHandler) Discover(w http.ResponseWriter, r *http.Request) {
	var genre models.GenreID
	if raw := strings.TrimSpace(r.URL.Query().Get("genre")); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id < 0 {
			writeError(w, http.StatusBadRequest, "genre must be a non-negative integer")
			return
		}
		genre = models.GenreID(id)
	}
	writeResult(w, h.Catalog.Discover(r.Context(), genre))
}

func (h *CatalogHandler) MovieInformation(w http.ResponseWriter, r *http.Request) {
	id, ok := movieIDVar(w, r)
	if !ok {
		return
	}
	info := h.Browse.MovieInformation(r.Context(), id)
	if info.Detail == nil || info.Credits == nil {
		w.Header().Set(degradedHeader, "true")
	}
	writeJSON(w, http.StatusOK, info)
}

func (h *CatalogHandler) Home(w http.ResponseWriter, r *http.Request) {
	feed := h.Browse.Home(r.Context())
	if feed.Degraded {
		w.Header().Set(degradedHeader, "true")
	}
	writeJSON(w, http.StatusOK, feed)
}

// Refresh drops the cached fixed feeds.
func (h *CatalogHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	h.Catalog.Refresh()
	w.WriteHeader(http.StatusNoContent)
}

func writeResult[T any](w http.ResponseWriter, res catalog.Result[T]) {
	if res.Failed() {
		w.Header().Set(degradedHeader, "true")
	}
	writeJSON(w, http.StatusOK, res.Value)
}

func movieIDVar(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := strings.TrimSpace(mux.Vars(r)["movieID"])
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "movie id must be a positive integer")
		return 0, false
	}
	return id, true
}
