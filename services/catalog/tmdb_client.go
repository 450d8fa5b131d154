package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"golang.org/x/time/rate"

	"moma/models"
)

const tmdbBaseURL = "https://api.themoviedb.org/3"

var ErrNotConfigured = errors.New("tmdb api key not configured")

// StatusError reports a non-2xx TMDB response.
type StatusError struct {
	Endpoint   string
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("tmdb %s request failed: %s", e.Endpoint, e.Status)
}

// Observer receives one observation per logical TMDB request.
type Observer interface {
	ObserveRequest(endpoint, outcome string, d time.Duration)
}

type nopObserver struct{}

func (nopObserver) ObserveRequest(string, string, time.Duration) {}

type tmdbClient struct {
	apiKey   string
	language string
	baseURL  string
	httpc    *http.Client
	limiter  *rate.Limiter
	attempts uint
	delay    time.Duration
	observer Observer
}

func newTMDBClient(opts Options) *tmdbClient {
	httpc := opts.HTTPClient
	if httpc == nil {
		httpc = &http.Client{Timeout: 15 * time.Second}
	}
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = tmdbBaseURL
	}
	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}
	burst := opts.Burst
	if burst <= 0 {
		burst = 1
	}
	attempts := opts.RetryAttempts
	if attempts <= 0 {
		attempts = 1
	}
	observer := opts.Observer
	if observer == nil {
		observer = nopObserver{}
	}
	return &tmdbClient{
		apiKey:   strings.TrimSpace(opts.APIKey),
		language: NormalizeLanguage(opts.Language),
		baseURL:  baseURL,
		httpc:    httpc,
		limiter:  rate.NewLimiter(limit, burst),
		attempts: uint(attempts),
		delay:    opts.RetryDelay,
		observer: observer,
	}
}

func (c *tmdbClient) isConfigured() bool {
	return c != nil && c.apiKey != ""
}

// get performs a rate limited GET against endpoint and decodes the JSON body
// into v. Transport errors, 429 and 5xx responses are retried with
// exponential backoff; other 4xx responses and decode errors are not.
func (c *tmdbClient) get(ctx context.Context, endpoint string, query url.Values, v any, segments ...string) error {
	if !c.isConfigured() {
		return ErrNotConfigured
	}
	target, err := url.JoinPath(c.baseURL, segments...)
	if err != nil {
		return fmt.Errorf("build tmdb url: %w", err)
	}
	params := url.Values{}
	params.Set("api_key", c.apiKey)
	params.Set("language", c.language)
	for k, vs := range query {
		params[k] = vs
	}
	target += "?" + params.Encode()

	start := time.Now()
	err = retry.Do(
		func() error {
			if err := c.limiter.Wait(ctx); err != nil {
				return retry.Unrecoverable(err)
			}
			return c.fetch(ctx, endpoint, target, v)
		},
		retry.Context(ctx),
		retry.Attempts(c.attempts),
		retry.Delay(c.delay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			log.Printf("[tmdb] %s failed (attempt %d/%d): %v", endpoint, n+1, c.attempts, err)
		}),
	)
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	c.observer.ObserveRequest(endpoint, outcome, time.Since(start))
	return err
}

func (c *tmdbClient) fetch(ctx context.Context, endpoint, target string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return retry.Unrecoverable(err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return &StatusError{Endpoint: endpoint, StatusCode: resp.StatusCode, Status: resp.Status}
	}
	if resp.StatusCode >= 400 {
		return retry.Unrecoverable(&StatusError{Endpoint: endpoint, StatusCode: resp.StatusCode, Status: resp.Status})
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return retry.Unrecoverable(fmt.Errorf("decode tmdb %s: %w", endpoint, err))
	}
	return nil
}

type tmdbGenresResponse struct {
	Genres []models.Genre `json:"genres"`
}

type tmdbListResponse struct {
	Page         int            `json:"page"`
	Results      []models.Movie `json:"results"`
	TotalPages   int            `json:"total_pages"`
	TotalResults int            `json:"total_results"`
}

func (c *tmdbClient) genres(ctx context.Context) ([]models.Genre, error) {
	var resp tmdbGenresResponse
	if err := c.get(ctx, "genres", nil, &resp, "genre", "movie", "list"); err != nil {
		return nil, err
	}
	if resp.Genres == nil {
		return []models.Genre{}, nil
	}
	return resp.Genres, nil
}

// movieList fetches the first page of one of the fixed movie lists
// ("upcoming", "popular", "top_rated").
func (c *tmdbClient) movieList(ctx context.Context, list string) ([]models.Movie, error) {
	var resp tmdbListResponse
	query := url.Values{"page": {"1"}}
	if err := c.get(ctx, list, query, &resp, "movie", list); err != nil {
		return nil, err
	}
	return resp.Results, nil
}

func (c *tmdbClient) discover(ctx context.Context, genre models.GenreID) ([]models.Movie, error) {
	query := url.Values{
		"sort_by":       {"popularity.desc"},
		"include_adult": {"false"},
		"include_video": {"false"},
		"page":          {"1"},
	}
	if genre != 0 {
		query.Set("with_genres", strconv.FormatInt(int64(genre), 10))
	}
	var resp tmdbListResponse
	if err := c.get(ctx, "discover", query, &resp, "discover", "movie"); err != nil {
		return nil, err
	}
	return resp.Results, nil
}

func (c *tmdbClient) movieDetails(ctx context.Context, id int64) (models.Movie, error) {
	var movie models.Movie
	if err := c.get(ctx, "movie", nil, &movie, "movie", strconv.FormatInt(id, 10)); err != nil {
		return models.Movie{}, err
	}
	return movie, nil
}

func (c *tmdbClient) movieCredits(ctx context.Context, id int64) (models.MovieCredits, error) {
	var credits models.MovieCredits
	if err := c.get(ctx, "credits", nil, &credits, "movie", strconv.FormatInt(id, 10), "credits"); err != nil {
		return models.MovieCredits{}, err
	}
	return credits, nil
}
