package handlers

import (
	"context"
	"errors"
	"net/http"

	"moma/models"
	"moma/services/favorites"
)

type favoritesService interface {
	IsFavorite(ctx context.Context, user *models.User, movieID int64) (bool, error)
	Toggle(ctx context.Context, user *models.User, movieID int64) (bool, error)
	FavoriteMovies(ctx context.Context, user *models.User) ([]models.Movie, error)
}

var _ favoritesService = (*favorites.Service)(nil)

type FavoritesHandler struct {
	Service favoritesService
}

func NewFavoritesHandler(service favoritesService) *FavoritesHandler {
	return &FavoritesHandler{Service: service}
}

type favoriteStatus struct {
	MovieID  int64 `json:"movieId"`
	Favorite bool  `json:"favorite"`
}

// List returns the caller's favorite movies; anonymous callers get an empty list.
func (h *FavoritesHandler) List(w http.ResponseWriter, r *http.Request) {
	movies, err := h.Service.FavoriteMovies(r.Context(), UserFromContext(r.Context()))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, movies)
}

func (h *FavoritesHandler) Status(w http.ResponseWriter, r *http.Request) {
	id, ok := movieIDVar(w, r)
	if !ok {
		return
	}
	fav, err := h.Service.IsFavorite(r.Context(), UserFromContext(r.Context()), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, favoriteStatus{MovieID: id, Favorite: fav})
}

func (h *FavoritesHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	id, ok := movieIDVar(w, r)
	if !ok {
		return
	}
	fav, err := h.Service.Toggle(r.Context(), UserFromContext(r.Context()), id)
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, favorites.ErrNoUser):
			status = http.StatusUnauthorized
		case errors.Is(err, favorites.ErrMovieIDRequired):
			status = http.StatusBadRequest
		}
		writeError(w, status, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, favoriteStatus{MovieID: id, Favorite: fav})
}
