package favorites

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/sourcegraph/conc/iter"

	"moma/internal/metrics"
	"moma/internal/reactive"
	"moma/models"
	"moma/services/catalog"
)

var (
	ErrStoreRequired   = errors.New("favorites store not provided")
	ErrNoUser          = errors.New("a signed-in user is required")
	ErrMovieIDRequired = errors.New("movie id is required")
)

const defaultFanOutWorkers = 8

// MovieLookup resolves a movie id to its catalog record.
type MovieLookup interface {
	MovieDetail(ctx context.Context, id int64) catalog.Result[models.Movie]
}

// change describes the most recent toggle. Watchers use it as a trigger to
// re-read the store.
type change struct {
	seq      uint64
	userID   string
	movieID  int64
	favorite bool
}

// Service answers favorite queries for the signed-in user and toggles
// favorites on their behalf.
type Service struct {
	store   Store
	movies  MovieLookup
	workers int

	// toggles are read-modify-write on the store; serialise them.
	toggleMu sync.Mutex
	changes  *reactive.Value[change]
}

func NewService(store Store, movies MovieLookup, workers int) (*Service, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	if workers <= 0 {
		workers = defaultFanOutWorkers
	}
	return &Service{
		store:   store,
		movies:  movies,
		workers: workers,
		changes: reactive.NewValue(change{}),
	}, nil
}

// IsFavorite reports whether movieID is a favorite of user. Anonymous users
// and the empty movie id are never favorites.
func (s *Service) IsFavorite(ctx context.Context, user *models.User, movieID int64) (bool, error) {
	if !signedIn(user) || movieID == 0 {
		return false, nil
	}
	return s.store.Exists(ctx, models.FavoriteDocumentID(movieID, user.ID))
}

// Toggle removes the favorite if it exists and creates it otherwise. It
// returns the resulting state.
func (s *Service) Toggle(ctx context.Context, user *models.User, movieID int64) (bool, error) {
	if !signedIn(user) {
		return false, ErrNoUser
	}
	if movieID <= 0 {
		return false, ErrMovieIDRequired
	}

	s.toggleMu.Lock()
	defer s.toggleMu.Unlock()

	docID := models.FavoriteDocumentID(movieID, user.ID)
	exists, err := s.store.Exists(ctx, docID)
	if err != nil {
		return false, err
	}

	if exists {
		if err := s.store.Delete(ctx, docID); err != nil {
			return true, err
		}
	} else {
		fav := models.Favorite{UserID: user.ID, MovieID: movieID, CreatedAt: time.Now().UTC()}
		if err := s.store.Put(ctx, fav); err != nil {
			return false, err
		}
	}

	favorite := !exists
	metrics.RecordFavoriteToggle(favorite)
	s.changes.Update(func(prev change) change {
		return change{seq: prev.seq + 1, userID: user.ID, movieID: movieID, favorite: favorite}
	})
	log.Printf("[favorites] user=%s movie=%d favorite=%t", user.ID, movieID, favorite)
	return favorite, nil
}

// MovieIDs lists the favorite movie ids of userID, empty for the anonymous user.
func (s *Service) MovieIDs(ctx context.Context, userID string) ([]int64, error) {
	if strings.TrimSpace(userID) == "" {
		return []int64{}, nil
	}
	return s.store.MovieIDs(ctx, userID)
}

// FavoriteMovies resolves the user's favorites to catalog records, keeping
// the stored order. Movies the catalog cannot resolve are skipped.
func (s *Service) FavoriteMovies(ctx context.Context, user *models.User) ([]models.Movie, error) {
	if !signedIn(user) {
		return []models.Movie{}, nil
	}
	ids, err := s.store.MovieIDs(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if s.movies == nil || len(ids) == 0 {
		return []models.Movie{}, nil
	}

	mapper := iter.Mapper[int64, *models.Movie]{MaxGoroutines: s.workers}
	resolved := mapper.Map(ids, func(id *int64) *models.Movie {
		res := s.movies.MovieDetail(ctx, *id)
		if res.Failed() || res.Value.ID == 0 {
			log.Printf("[favorites] skipping movie %d for user %s: %v", *id, user.ID, res.Reason)
			return nil
		}
		movie := res.Value
		return &movie
	})

	movies := make([]models.Movie, 0, len(resolved))
	for _, m := range resolved {
		if m != nil {
			movies = append(movies, *m)
		}
	}
	return movies, nil
}

// WatchIsFavorite re-evaluates IsFavorite whenever the user or the movie id
// changes, and whenever the user's favorites change.
func (s *Service) WatchIsFavorite(ctx context.Context, users <-chan *models.User, movieIDs <-chan int64) <-chan bool {
	type target struct {
		user    *models.User
		movieID int64
	}
	targets := reactive.CombineLatest(ctx, users, movieIDs, func(u *models.User, id int64) target {
		return target{user: u, movieID: id}
	})
	return reactive.Switch(ctx, targets, func(ctx context.Context, t target) <-chan bool {
		if !signedIn(t.user) || t.movieID == 0 {
			return reactive.Just(false)
		}
		return reactive.SwitchMap(ctx, s.triggers(ctx, t.user.ID), func(ctx context.Context, _ struct{}) bool {
			ok, err := s.IsFavorite(ctx, t.user, t.movieID)
			if err != nil {
				log.Printf("[favorites] is-favorite user=%s movie=%d: %v", t.user.ID, t.movieID, err)
				return false
			}
			return ok
		})
	})
}

// Watch streams the favorite movie ids of userID, re-emitting after every
// toggle by that user.
func (s *Service) Watch(ctx context.Context, userID string) <-chan []int64 {
	return reactive.SwitchMap(ctx, s.triggers(ctx, userID), func(ctx context.Context, _ struct{}) []int64 {
		ids, err := s.MovieIDs(ctx, userID)
		if err != nil {
			log.Printf("[favorites] list user=%s: %v", userID, err)
			return []int64{}
		}
		return ids
	})
}

// WatchFavoriteMovies streams the resolved favorites of whichever user is
// current, switching to the latest user and refreshing after toggles.
func (s *Service) WatchFavoriteMovies(ctx context.Context, users <-chan *models.User) <-chan []models.Movie {
	return reactive.Switch(ctx, users, func(ctx context.Context, user *models.User) <-chan []models.Movie {
		if !signedIn(user) {
			return reactive.Just([]models.Movie{})
		}
		return reactive.SwitchMap(ctx, s.triggers(ctx, user.ID), func(ctx context.Context, _ struct{}) []models.Movie {
			movies, err := s.FavoriteMovies(ctx, user)
			if err != nil {
				log.Printf("[favorites] resolve user=%s: %v", user.ID, err)
				return []models.Movie{}
			}
			return movies
		})
	})
}

// Close ends every watcher and releases the store.
func (s *Service) Close() error {
	s.changes.Close()
	if err := s.store.Close(); err != nil {
		return fmt.Errorf("close favorites store: %w", err)
	}
	return nil
}

// triggers fires once immediately and again after every toggle by userID.
func (s *Service) triggers(ctx context.Context, userID string) <-chan struct{} {
	out := make(chan struct{}, 1)
	in := s.changes.Watch(ctx)
	go func() {
		defer close(out)
		first := true
		for c := range in {
			if first || c.userID == userID {
				reactive.Offer(out, struct{}{})
			}
			first = false
		}
	}()
	return out
}

func signedIn(user *models.User) bool {
	return user != nil && strings.TrimSpace(user.ID) != ""
}
