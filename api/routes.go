package api

import (
	"net"
	"net/http"

	"github.com/gorilla/mux"

	"moma/handlers"
	"moma/internal/metrics"
)

// corsMiddleware handles CORS for API routes
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
		w.Header().Set("Access-Control-Expose-Headers", "X-Catalog-Degraded")

		// Handle preflight requests
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// localhostOnlyMiddleware restricts access to requests that both come from a
// loopback address and name a loopback host.
func localhostOnlyMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !isLoopback(r.RemoteAddr) || !isLoopback(r.Host) {
			http.Error(w, "Operator endpoints only accessible from localhost", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func isLoopback(hostport string) bool {
	host := hostport
	if h, _, err := net.SplitHostPort(hostport); err == nil {
		host = h
	}
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

// handleOptions handles OPTIONS requests for CORS preflight
func handleOptions(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// Register mounts API endpoints onto the provided router.
func Register(
	r *mux.Router,
	catalogHandler *handlers.CatalogHandler,
	authHandler *handlers.AuthHandler,
	favoritesHandler *handlers.FavoritesHandler,
	eventsHandler *handlers.EventsHandler,
	sessions handlers.SessionVerifier,
) {
	r.Use(metrics.InstrumentHandler)
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(corsMiddleware)
	api.Use(handlers.SessionMiddleware(sessions))

	api.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods(http.MethodGet)

	// Catalog
	api.HandleFunc("/genres", catalogHandler.Genres).Methods(http.MethodGet)
	api.HandleFunc("/home", catalogHandler.Home).Methods(http.MethodGet)
	api.HandleFunc("/movies/upcoming", catalogHandler.Upcoming).Methods(http.MethodGet)
	api.HandleFunc("/movies/popular", catalogHandler.Popular).Methods(http.MethodGet)
	api.HandleFunc("/movies/top-rated", catalogHandler.TopRated).Methods(http.MethodGet)
	api.HandleFunc("/movies/discover", catalogHandler.Discover).Methods(http.MethodGet)
	api.HandleFunc("/movies/{movieID:[0-9]+}", catalogHandler.MovieInformation).Methods(http.MethodGet)

	// Operator endpoints
	operator := api.PathPrefix("/catalog").Subrouter()
	operator.Use(localhostOnlyMiddleware)
	operator.HandleFunc("/refresh", catalogHandler.Refresh).Methods(http.MethodPost)

	// Auth
	api.HandleFunc("/auth/signup", authHandler.SignUp).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", authHandler.Login).Methods(http.MethodPost)
	api.HandleFunc("/auth/logout", authHandler.Logout).Methods(http.MethodPost)
	api.HandleFunc("/auth/me", authHandler.Me).Methods(http.MethodGet)

	// Favorites
	api.HandleFunc("/favorites", favoritesHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/favorites/{movieID}", favoritesHandler.Status).Methods(http.MethodGet)
	api.HandleFunc("/favorites/{movieID}/toggle", favoritesHandler.Toggle).Methods(http.MethodPost)

	// Live session stream
	api.HandleFunc("/events", eventsHandler.Stream).Methods(http.MethodGet)

	api.PathPrefix("/").HandlerFunc(handleOptions).Methods(http.MethodOptions)
}
