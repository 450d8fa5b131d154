package catalog

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"moma/models"
)

const (
	defaultListLimit     = 5
	defaultDiscoverLimit = 10

	keyGenres   = "genres"
	keyUpcoming = "upcoming"
	keyPopular  = "popular"
	keyTopRated = "top_rated"
)

//go:generate mockgen -destination=mocks/mock_source.go -package=mocks moma/services/catalog Source

// Source is the catalog surface consumed by the favorites and browse services.
type Source interface {
	Genres(ctx context.Context) Result[[]models.Genre]
	Upcoming(ctx context.Context) Result[[]models.Movie]
	Popular(ctx context.Context) Result[[]models.Movie]
	TopRated(ctx context.Context) Result[[]models.Movie]
	Discover(ctx context.Context, genre models.GenreID) Result[[]models.Movie]
	MovieDetail(ctx context.Context, id int64) Result[models.Movie]
	MovieCredits(ctx context.Context, id int64) Result[models.MovieCredits]
}

var _ Source = (*Service)(nil)

// Options configures the TMDB backed catalog.
type Options struct {
	APIKey            string
	Language          string
	BaseURL           string
	HTTPClient        *http.Client
	ListLimit         int
	DiscoverLimit     int
	RequestsPerSecond float64
	Burst             int
	RetryAttempts     int
	RetryDelay        time.Duration
	Observer          Observer
}

// Service answers catalog queries from TMDB. The fixed feeds (genres,
// upcoming, popular, top rated) keep their last successful response and
// replay it until Refresh is called. Concurrent identical requests share one
// upstream call.
type Service struct {
	client        *tmdbClient
	listLimit     int
	discoverLimit int

	group singleflight.Group

	mu    sync.RWMutex
	feeds map[string]any
	gen   uint64 // bumped by Refresh; fetches started earlier are not retained
}

func NewService(opts Options) *Service {
	listLimit := opts.ListLimit
	if listLimit <= 0 {
		listLimit = defaultListLimit
	}
	discoverLimit := opts.DiscoverLimit
	if discoverLimit <= 0 {
		discoverLimit = defaultDiscoverLimit
	}
	return &Service{
		client:        newTMDBClient(opts),
		listLimit:     listLimit,
		discoverLimit: discoverLimit,
		feeds:         make(map[string]any),
	}
}

// Genres returns the genre table.
func (s *Service) Genres(ctx context.Context) Result[[]models.Genre] {
	genres, err := cachedFeed(ctx, s, keyGenres, s.client.genres)
	if err != nil {
		return fail(keyGenres, []models.Genre{}, err)
	}
	return succeeded(genres)
}

func (s *Service) Upcoming(ctx context.Context) Result[[]models.Movie] {
	return s.list(ctx, keyUpcoming)
}

func (s *Service) Popular(ctx context.Context) Result[[]models.Movie] {
	return s.list(ctx, keyPopular)
}

func (s *Service) TopRated(ctx context.Context) Result[[]models.Movie] {
	return s.list(ctx, keyTopRated)
}

func (s *Service) list(ctx context.Context, key string) Result[[]models.Movie] {
	movies, err := cachedFeed(ctx, s, key, func(ctx context.Context) ([]models.Movie, error) {
		movies, err := s.client.movieList(ctx, key)
		if err != nil {
			return nil, err
		}
		return decorate(firstN(movies, s.listLimit)), nil
	})
	if err != nil {
		return fail(key, []models.Movie{}, err)
	}
	return succeeded(movies)
}

// Discover lists the most popular movies of a genre. Genre 0 discovers
// across all genres.
func (s *Service) Discover(ctx context.Context, genre models.GenreID) Result[[]models.Movie] {
	key := "discover:" + strconv.FormatInt(int64(genre), 10)
	movies, err := shared(ctx, s, key, func(ctx context.Context) ([]models.Movie, error) {
		movies, err := s.client.discover(ctx, genre)
		if err != nil {
			return nil, err
		}
		return decorate(firstN(movies, s.discoverLimit)), nil
	})
	if err != nil {
		return fail(key, []models.Movie{}, err)
	}
	return succeeded(movies)
}

func (s *Service) MovieDetail(ctx context.Context, id int64) Result[models.Movie] {
	key := "movie:" + strconv.FormatInt(id, 10)
	movie, err := shared(ctx, s, key, func(ctx context.Context) (models.Movie, error) {
		movie, err := s.client.movieDetails(ctx, id)
		if err != nil {
			return models.Movie{}, err
		}
		return withImages(movie), nil
	})
	if err != nil {
		return fail(key, models.Movie{}, err)
	}
	return succeeded(movie)
}

func (s *Service) MovieCredits(ctx context.Context, id int64) Result[models.MovieCredits] {
	key := "credits:" + strconv.FormatInt(id, 10)
	credits, err := shared(ctx, s, key, func(ctx context.Context) (models.MovieCredits, error) {
		return s.client.movieCredits(ctx, id)
	})
	if err != nil {
		return fail(key, models.MovieCredits{}, err)
	}
	if credits.Cast == nil {
		credits.Cast = []models.CastMember{}
	}
	if credits.Crew == nil {
		credits.Crew = []models.CrewMember{}
	}
	return succeeded(credits)
}

// GenreTable maps genre ids to names using the cached genre feed.
func (s *Service) GenreTable(ctx context.Context) map[models.GenreID]string {
	genres := s.Genres(ctx).Value
	table := make(map[models.GenreID]string, len(genres))
	for _, g := range genres {
		table[g.ID] = g.Name
	}
	return table
}

// Warm loads the genre table so the first page view does not wait on it.
func (s *Service) Warm(ctx context.Context) error {
	if res := s.Genres(ctx); res.Failed() {
		return res.Reason
	}
	return nil
}

// Refresh drops every cached feed; the next call goes upstream again.
func (s *Service) Refresh() {
	s.mu.Lock()
	s.feeds = make(map[string]any)
	s.gen++
	s.mu.Unlock()
	log.Printf("[catalog] cached feeds cleared")
}

// cachedFeed returns the retained value for key, fetching and retaining it on
// a miss. The upstream call is detached from the caller's cancellation so one
// impatient caller cannot fail the others waiting on it.
func cachedFeed[T any](ctx context.Context, s *Service, key string, fetch func(context.Context) (T, error)) (T, error) {
	s.mu.RLock()
	cached, ok := s.feeds[key]
	gen := s.gen
	s.mu.RUnlock()
	if ok {
		return cached.(T), nil
	}
	// Callers arriving after a Refresh must not join a fetch started before it.
	return shared(ctx, s, fmt.Sprintf("%s@%d", key, gen), func(ctx context.Context) (T, error) {
		v, err := fetch(ctx)
		if err != nil {
			return v, err
		}
		s.mu.Lock()
		if s.gen == gen {
			s.feeds[key] = v
		}
		s.mu.Unlock()
		return v, nil
	})
}

// shared collapses concurrent calls for key into one upstream request.
func shared[T any](ctx context.Context, s *Service, key string, fetch func(context.Context) (T, error)) (T, error) {
	var zero T
	ch := s.group.DoChan(key, func() (any, error) {
		return fetch(context.WithoutCancel(ctx))
	})
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		return res.Val.(T), nil
	}
}

func fail[T any](key string, empty T, err error) Result[T] {
	if !errors.Is(err, context.Canceled) {
		log.Printf("[tmdb] %s: %v", key, err)
	}
	return failed(empty, fmt.Errorf("%s: %w", key, err))
}

func firstN[T any](items []T, n int) []T {
	if len(items) > n {
		items = items[:n]
	}
	out := make([]T, len(items))
	copy(out, items)
	return out
}

func decorate(movies []models.Movie) []models.Movie {
	for i := range movies {
		movies[i] = withImages(movies[i])
	}
	return movies
}
