package browse

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"moma/internal/reactive"
	"moma/models"
	"moma/services/catalog"
)

var ErrCatalogRequired = errors.New("catalog source not provided")

// Service composes catalog lookups into the values the views render.
type Service struct {
	catalog catalog.Source
}

func NewService(source catalog.Source) (*Service, error) {
	if source == nil {
		return nil, ErrCatalogRequired
	}
	return &Service{catalog: source}, nil
}

// MovieInformation fetches detail and credits of movieID concurrently. A
// zero id is "no selection" and triggers no request. A part that fails to
// load is left nil.
func (s *Service) MovieInformation(ctx context.Context, movieID int64) models.MovieInformation {
	info := models.MovieInformation{MovieID: movieID}
	if movieID == 0 {
		return info
	}

	var g errgroup.Group
	g.Go(func() error {
		if res := s.catalog.MovieDetail(ctx, movieID); !res.Failed() {
			detail := res.Value
			info.Detail = &detail
		}
		return nil
	})
	g.Go(func() error {
		if res := s.catalog.MovieCredits(ctx, movieID); !res.Failed() {
			credits := res.Value
			info.Credits = &credits
		}
		return nil
	})
	_ = g.Wait()
	return info
}

// WatchMovieInformation re-derives the movie information whenever the id
// changes. A result for an id that has since been replaced is never emitted.
func (s *Service) WatchMovieInformation(ctx context.Context, ids <-chan int64) <-chan models.MovieInformation {
	return reactive.SwitchMap(ctx, ids, s.MovieInformation)
}

// WatchDiscover re-issues the discover request on every genre change; only
// the most recent genre's list is ever emitted.
func (s *Service) WatchDiscover(ctx context.Context, genres <-chan models.GenreID) <-chan []models.Movie {
	return reactive.SwitchMap(ctx, genres, func(ctx context.Context, genre models.GenreID) []models.Movie {
		return s.catalog.Discover(ctx, genre).Value
	})
}

// HomeFeed is the landing page: the fixed lists plus the genre table.
type HomeFeed struct {
	Genres   []models.Genre `json:"genres"`
	Upcoming []models.Movie `json:"upcoming"`
	Popular  []models.Movie `json:"popular"`
	TopRated []models.Movie `json:"topRated"`
	// Degraded is set when at least one section failed to load.
	Degraded bool `json:"degraded"`
}

// Home loads every home section concurrently.
func (s *Service) Home(ctx context.Context) HomeFeed {
	var genres catalog.Result[[]models.Genre]
	var upcoming, popular, topRated catalog.Result[[]models.Movie]

	var g errgroup.Group
	g.Go(func() error { genres = s.catalog.Genres(ctx); return nil })
	g.Go(func() error { upcoming = s.catalog.Upcoming(ctx); return nil })
	g.Go(func() error { popular = s.catalog.Popular(ctx); return nil })
	g.Go(func() error { topRated = s.catalog.TopRated(ctx); return nil })
	_ = g.Wait()

	return HomeFeed{
		Genres:   genres.Value,
		Upcoming: upcoming.Value,
		Popular:  popular.Value,
		TopRated: topRated.Value,
		Degraded: genres.Failed() || upcoming.Failed() || popular.Failed() || topRated.Failed(),
	}
}
