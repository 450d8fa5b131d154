package handlers

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"moma/models"
	"moma/services/auth"
	"moma/services/browse"
	"moma/services/favorites"
)

// EventsHandler streams one client's browse session as server-sent events.
// The stream re-emits whenever the selection's data, the caller's favorites
// or the caller's session changes.
type EventsHandler struct {
	Browse    *browse.Service
	Favorites *favorites.Service
	Provider  auth.Provider
}

func NewEventsHandler(b *browse.Service, favs *favorites.Service, provider auth.Provider) *EventsHandler {
	return &EventsHandler{Browse: b, Favorites: favs, Provider: provider}
}

type sessionEvent struct {
	LoggedIn bool         `json:"loggedIn"`
	User     *models.User `json:"user"`
}

// Stream serves GET /api/events?genre=<id>&movie=<id>.
func (h *EventsHandler) Stream(w http.ResponseWriter, r *http.Request) {
	genre, err := queryInt(r, "genre")
	if err != nil || genre < 0 {
		writeError(w, http.StatusBadRequest, "genre must be a non-negative integer")
		return
	}
	movie, err := queryInt(r, "movie")
	if err != nil || movie < 0 {
		writeError(w, http.StatusBadRequest, "movie must be a non-negative integer")
		return
	}

	ctx := r.Context()
	gateway := auth.NewGateway(h.Provider, nil)
	defer gateway.Close()
	if token := tokenFromContext(ctx); token != "" {
		if err := gateway.Resume(ctx, token); err != nil {
			log.Printf("[events] resume session: %v", err)
		}
	}

	sess, err := h.Browse.OpenSession(ctx, gateway, h.Favorites)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	defer sess.Close()
	sess.Selection.SelectGenre(models.GenreID(genre))
	sess.Selection.SelectMovie(movie)

	rc := http.NewResponseController(w)
	// Streams outlive the server's write timeout.
	_ = rc.SetWriteDeadline(time.Time{})

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	if err := rc.Flush(); err != nil {
		log.Printf("[events] streaming unsupported: %v", err)
		return
	}

	users := gateway.SessionState(ctx)
	discover, info, isFavorite, favs := sess.Discover, sess.MovieInfo, sess.IsFavorite, sess.Favorites
	for {
		var (
			name    string
			payload any
		)
		select {
		case <-ctx.Done():
			return
		case u, ok := <-users:
			if !ok {
				users = nil
				continue
			}
			name, payload = "session", sessionEvent{LoggedIn: u != nil, User: u}
		case movies, ok := <-discover:
			if !ok {
				discover = nil
				continue
			}
			name, payload = "discover", movies
		case mi, ok := <-info:
			if !ok {
				info = nil
				continue
			}
			name, payload = "movie", mi
		case fav, ok := <-isFavorite:
			if !ok {
				isFavorite = nil
				continue
			}
			name, payload = "favorite", favoriteStatus{MovieID: sess.Selection.Movie(), Favorite: fav}
		case movies, ok := <-favs:
			if !ok {
				favs = nil
				continue
			}
			name, payload = "favorites", movies
		}
		if err := writeEvent(w, name, payload); err != nil {
			return
		}
		if err := rc.Flush(); err != nil {
			return
		}
	}
}

func writeEvent(w http.ResponseWriter, name string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", name, data)
	return err
}

func queryInt(r *http.Request, key string) (int64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return 0, nil
	}
	return strconv.ParseInt(raw, 10, 64)
}
