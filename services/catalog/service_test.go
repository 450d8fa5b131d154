package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"moma/models"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func jsonResponse(status int, v any) *http.Response {
	body, _ := json.Marshal(v)
	return &http.Response{
		StatusCode: status,
		Status:     http.StatusText(status),
		Body:       io.NopCloser(bytes.NewBuffer(body)),
		Header:     make(http.Header),
	}
}

func movies(n int) []models.Movie {
	out := make([]models.Movie, n)
	for i := range out {
		out[i] = models.Movie{ID: int64(i + 1), Title: "Movie", PosterPath: "/p.jpg"}
	}
	return out
}

func newTestService(rt roundTripFunc) *Service {
	return NewService(Options{
		APIKey:        "test-key",
		Language:      "en",
		BaseURL:       "https://tmdb.test/3",
		HTTPClient:    &http.Client{Transport: rt},
		RetryAttempts: 3,
		RetryDelay:    time.Millisecond,
	})
}

func TestPopularTruncatesToListLimit(t *testing.T) {
	svc := newTestService(func(req *http.Request) (*http.Response, error) {
		if req.URL.Path != "/3/movie/popular" {
			t.Fatalf("unexpected path %q", req.URL.Path)
		}
		q := req.URL.Query()
		if q.Get("api_key") != "test-key" || q.Get("language") != "en-US" || q.Get("page") != "1" {
			t.Fatalf("unexpected query %q", req.URL.RawQuery)
		}
		return jsonResponse(http.StatusOK, map[string]any{"page": 1, "results": movies(20)}), nil
	})

	res := svc.Popular(context.Background())
	if res.Failed() {
		t.Fatalf("unexpected failure: %v", res.Reason)
	}
	if len(res.Value) != 5 {
		t.Fatalf("expected 5 movies, got %d", len(res.Value))
	}
	for i, m := range res.Value {
		if m.ID != int64(i+1) {
			t.Fatalf("order not preserved at %d: got id %d", i, m.ID)
		}
	}
	if res.Value[0].PosterURL != "https://image.tmdb.org/t/p/w500/p.jpg" {
		t.Fatalf("unexpected poster url %q", res.Value[0].PosterURL)
	}
}

func TestDiscoverSendsGenreQuery(t *testing.T) {
	svc := newTestService(func(req *http.Request) (*http.Response, error) {
		if req.URL.Path != "/3/discover/movie" {
			t.Fatalf("unexpected path %q", req.URL.Path)
		}
		q := req.URL.Query()
		want := map[string]string{
			"sort_by":       "popularity.desc",
			"include_adult": "false",
			"include_video": "false",
			"page":          "1",
			"with_genres":   "28",
		}
		for k, v := range want {
			if q.Get(k) != v {
				t.Fatalf("query %s = %q, want %q", k, q.Get(k), v)
			}
		}
		return jsonResponse(http.StatusOK, map[string]any{"results": movies(15)}), nil
	})

	res := svc.Discover(context.Background(), 28)
	if res.Failed() || len(res.Value) != 10 {
		t.Fatalf("expected 10 movies, got %d (reason %v)", len(res.Value), res.Reason)
	}
}

func TestDiscoverWithoutGenreOmitsFilter(t *testing.T) {
	svc := newTestService(func(req *http.Request) (*http.Response, error) {
		if _, ok := req.URL.Query()["with_genres"]; ok {
			t.Fatalf("expected no with_genres parameter, got %q", req.URL.RawQuery)
		}
		return jsonResponse(http.StatusOK, map[string]any{"results": movies(2)}), nil
	})
	if res := svc.Discover(context.Background(), 0); res.Failed() || len(res.Value) != 2 {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestFailureYieldsEmptyResultWithReason(t *testing.T) {
	svc := newTestService(func(req *http.Request) (*http.Response, error) {
		return nil, errors.New("connection refused")
	})

	res := svc.TopRated(context.Background())
	if !res.Failed() {
		t.Fatalf("expected failed result")
	}
	if res.Value == nil || len(res.Value) != 0 {
		t.Fatalf("expected empty non-nil list, got %#v", res.Value)
	}

	detail := svc.MovieDetail(context.Background(), 42)
	if !detail.Failed() || detail.Value.ID != 0 {
		t.Fatalf("expected empty failed detail, got %+v", detail)
	}
}

func TestFixedFeedsAreCachedUntilRefresh(t *testing.T) {
	var calls atomic.Int32
	svc := newTestService(func(req *http.Request) (*http.Response, error) {
		calls.Add(1)
		return jsonResponse(http.StatusOK, map[string]any{
			"genres": []models.Genre{{ID: 28, Name: "Action"}, {ID: 35, Name: "Comedy"}},
		}), nil
	})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if res := svc.Genres(context.Background()); len(res.Value) != 2 {
				t.Errorf("expected 2 genres, got %d", len(res.Value))
			}
		}()
	}
	wg.Wait()
	svc.Genres(context.Background())
	if got := calls.Load(); got != 1 {
		t.Fatalf("expected 1 upstream call, got %d", got)
	}

	if table := svc.GenreTable(context.Background()); table[35] != "Comedy" {
		t.Fatalf("unexpected genre table %v", table)
	}

	svc.Refresh()
	svc.Genres(context.Background())
	if got := calls.Load(); got != 2 {
		t.Fatalf("expected refetch after refresh, got %d calls", got)
	}
}

func TestRefreshDuringFetchDropsStaleFeed(t *testing.T) {
	var calls atomic.Int32
	started := make(chan struct{})
	release := make(chan struct{})
	svc := newTestService(func(req *http.Request) (*http.Response, error) {
		title := "fresh"
		if calls.Add(1) == 1 {
			close(started)
			<-release
			title = "stale"
		}
		return jsonResponse(http.StatusOK, map[string]any{
			"results": []models.Movie{{ID: 1, Title: title}},
		}), nil
	})

	done := make(chan Result[[]models.Movie], 1)
	go func() { done <- svc.Popular(context.Background()) }()
	<-started

	svc.Refresh()
	close(release)
	if res := <-done; res.Value[0].Title != "stale" {
		t.Fatalf("in-flight caller should get its own response, got %q", res.Value[0].Title)
	}

	res := svc.Popular(context.Background())
	if res.Failed() {
		t.Fatalf("unexpected failure: %v", res.Reason)
	}
	if res.Value[0].Title != "fresh" {
		t.Fatalf("expected a fetch after refresh, got %q", res.Value[0].Title)
	}
	if got := calls.Load(); got != 2 {
		t.Fatalf("expected 2 upstream calls, got %d", got)
	}
}

func TestFailedFeedIsNotCached(t *testing.T) {
	var calls atomic.Int32
	svc := newTestService(func(req *http.Request) (*http.Response, error) {
		if calls.Add(1) == 1 {
			return jsonResponse(http.StatusNotFound, map[string]any{}), nil
		}
		return jsonResponse(http.StatusOK, map[string]any{"results": movies(1)}), nil
	})

	if res := svc.Upcoming(context.Background()); !res.Failed() {
		t.Fatalf("expected first call to fail")
	}
	if res := svc.Upcoming(context.Background()); res.Failed() || len(res.Value) != 1 {
		t.Fatalf("expected second call to succeed, got %+v", res)
	}
}

func TestClientErrorsAreNotRetried(t *testing.T) {
	var calls atomic.Int32
	svc := newTestService(func(req *http.Request) (*http.Response, error) {
		calls.Add(1)
		return jsonResponse(http.StatusUnauthorized, map[string]any{}), nil
	})

	res := svc.MovieCredits(context.Background(), 7)
	var statusErr *StatusError
	if !errors.As(res.Reason, &statusErr) || statusErr.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 status error, got %v", res.Reason)
	}
	if got := calls.Load(); got != 1 {
		t.Fatalf("expected a single attempt, got %d", got)
	}
}

func TestServerErrorsAreRetried(t *testing.T) {
	var calls atomic.Int32
	svc := newTestService(func(req *http.Request) (*http.Response, error) {
		if req.URL.Path != "/3/movie/7/credits" {
			t.Fatalf("unexpected path %q", req.URL.Path)
		}
		if calls.Add(1) < 3 {
			return jsonResponse(http.StatusBadGateway, map[string]any{}), nil
		}
		return jsonResponse(http.StatusOK, models.MovieCredits{
			ID:   7,
			Cast: []models.CastMember{{ID: 1, Name: "Lead"}},
		}), nil
	})

	res := svc.MovieCredits(context.Background(), 7)
	if res.Failed() {
		t.Fatalf("expected success after retries, got %v", res.Reason)
	}
	if len(res.Value.Cast) != 1 || res.Value.Crew == nil {
		t.Fatalf("unexpected credits %+v", res.Value)
	}
	if got := calls.Load(); got != 3 {
		t.Fatalf("expected 3 attempts, got %d", got)
	}
}

func TestMissingAPIKeySkipsRequest(t *testing.T) {
	svc := NewService(Options{HTTPClient: &http.Client{Transport: roundTripFunc(func(*http.Request) (*http.Response, error) {
		t.Fatalf("no request expected without an api key")
		return nil, nil
	})}})

	res := svc.Genres(context.Background())
	if !errors.Is(res.Reason, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", res.Reason)
	}
}

func TestNormalizeLanguage(t *testing.T) {
	cases := map[string]string{
		"":      "en-US",
		"en":    "en-US",
		"en_gb": "en-GB",
		"pt-br": "pt-BR",
		"fr-CA": "fr-CA",
		"!!":    "en-US",
	}
	for in, want := range cases {
		if got := NormalizeLanguage(in); got != want {
			t.Errorf("NormalizeLanguage(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestImageURLs(t *testing.T) {
	if got := BackdropURL("/b.jpg"); got != "https://image.tmdb.org/t/p/w1280/b.jpg" {
		t.Fatalf("unexpected backdrop url %q", got)
	}
	if got := PosterURL("  "); got != "" {
		t.Fatalf("expected empty url for empty path, got %q", got)
	}
}
