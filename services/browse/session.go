package browse

import (
	"context"
	"errors"

	"moma/models"
	"moma/services/favorites"
)

var ErrFavoritesRequired = errors.New("favorites service not provided")

// UserSource streams the signed-in user; auth.Gateway implements it.
type UserSource interface {
	SessionState(ctx context.Context) <-chan *models.User
}

// Session wires one client's Selection to every stream its views render.
// The streams live until Close is called or the parent context ends.
type Session struct {
	Selection *Selection

	Discover   <-chan []models.Movie
	MovieInfo  <-chan models.MovieInformation
	IsFavorite <-chan bool
	Favorites  <-chan []models.Movie

	cancel context.CancelFunc
}

// OpenSession starts the composed streams for a new client.
func (s *Service) OpenSession(ctx context.Context, users UserSource, favs *favorites.Service) (*Session, error) {
	if favs == nil {
		return nil, ErrFavoritesRequired
	}
	ctx, cancel := context.WithCancel(ctx)
	sel := NewSelection()

	return &Session{
		Selection:  sel,
		Discover:   s.WatchDiscover(ctx, sel.Genres(ctx)),
		MovieInfo:  s.WatchMovieInformation(ctx, sel.Movies(ctx)),
		IsFavorite: favs.WatchIsFavorite(ctx, users.SessionState(ctx), sel.Movies(ctx)),
		Favorites:  favs.WatchFavoriteMovies(ctx, users.SessionState(ctx)),
		cancel:     cancel,
	}, nil
}

// Close releases every subscription the session holds.
func (s *Session) Close() {
	s.cancel()
	s.Selection.Close()
}
