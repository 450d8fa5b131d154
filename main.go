package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"moma/api"
	"moma/config"
	"moma/handlers"
	"moma/internal/database"
	"moma/internal/metrics"
	"moma/services/auth"
	"moma/services/browse"
	"moma/services/catalog"
	"moma/services/favorites"

	"github.com/gorilla/mux"
	"github.com/spf13/afero"
	"gopkg.in/natefinch/lumberjack.v2"
)

func main() {
	portOverride := flag.Int("port", 0, "override server port from config")
	configOverride := flag.String("config", "", "path to settings.json")
	flag.Parse()

	fmt.Println("🎬 moma backend starting...")

	if err := config.LoadDotEnv(".env"); err != nil {
		log.Printf("Warning: could not load .env: %v", err)
	}

	// Determine config path (flag, env or default)
	configPath := strings.TrimSpace(*configOverride)
	if configPath == "" {
		configPath = os.Getenv("MOMA_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join("cache", "settings.json")
	}

	cfgManager := config.NewManager(configPath)
	settings, err := cfgManager.Load()
	if err != nil {
		log.Fatalf("failed to load settings: %v", err)
	}
	config.ApplyEnv(&settings)

	// Set up file logging with rotation
	if settings.Log.File != "" {
		logDir := filepath.Dir(settings.Log.File)
		if err := os.MkdirAll(logDir, 0755); err != nil {
			log.Printf("Warning: could not create log directory %s: %v", logDir, err)
		} else {
			fileWriter := &lumberjack.Logger{
				Filename:   settings.Log.File,
				MaxSize:    settings.Log.MaxSize,
				MaxBackups: settings.Log.MaxBackups,
				MaxAge:     settings.Log.MaxAge,
				Compress:   settings.Log.Compress,
			}
			multiWriter := io.MultiWriter(os.Stdout, fileWriter)
			log.SetOutput(multiWriter)
			log.SetFlags(log.LstdFlags | log.Lshortfile)
			slog.SetDefault(slog.New(slog.NewTextHandler(multiWriter, &slog.HandlerOptions{Level: logLevel(settings.Log.Level)})))
			log.Printf("Logging to file: %s", settings.Log.File)
		}
	}

	if *portOverride > 0 {
		settings.Server.Port = *portOverride
	}

	// Generate the session signing secret on first start
	if strings.TrimSpace(settings.Auth.JWTSecret) == "" {
		secret, err := auth.GenerateSecret()
		if err != nil {
			log.Fatalf("failed to generate session secret: %v", err)
		}
		settings.Auth.JWTSecret = secret
		if err := cfgManager.Save(settings); err != nil {
			log.Fatalf("failed to persist session secret: %v", err)
		}
		fmt.Println("🔑 Generated a new session signing secret")
	}

	if strings.TrimSpace(settings.Catalog.APIKey) == "" {
		fmt.Println("⚠️  No TMDB API key configured; catalog requests will fail until one is set")
	}

	catalogService := catalog.NewService(catalog.Options{
		APIKey:            settings.Catalog.APIKey,
		Language:          settings.Catalog.Language,
		BaseURL:           settings.Catalog.BaseURL,
		HTTPClient:        &http.Client{Timeout: time.Duration(settings.Catalog.TimeoutSeconds) * time.Second},
		ListLimit:         settings.Catalog.ListLimit,
		DiscoverLimit:     settings.Catalog.DiscoverLimit,
		RequestsPerSecond: settings.Catalog.RequestsPerSecond,
		Burst:             settings.Catalog.Burst,
		RetryAttempts:     settings.Catalog.RetryAttempts,
		RetryDelay:        time.Duration(settings.Catalog.RetryDelayMillis) * time.Millisecond,
		Observer:          metrics.Catalog{},
	})

	browseService, err := browse.NewService(catalogService)
	if err != nil {
		log.Fatalf("failed to initialise browse service: %v", err)
	}

	store, err := openFavoritesStore(settings)
	if err != nil {
		log.Fatalf("failed to open favorites store: %v", err)
	}
	favoritesService, err := favorites.NewService(store, catalogService, settings.Favorites.FanOutWorkers)
	if err != nil {
		log.Fatalf("failed to initialise favorites service: %v", err)
	}

	authProvider, err := auth.NewLocalProvider(auth.LocalOptions{
		Fs:         afero.NewOsFs(),
		StorageDir: filepath.Join(settings.Cache.Directory, "auth"),
		Secret:     settings.Auth.JWTSecret,
		SessionTTL: time.Duration(settings.Auth.SessionTTLHours) * time.Hour,
	})
	if err != nil {
		log.Fatalf("failed to initialise auth provider: %v", err)
	}

	r := mux.NewRouter()
	api.Register(r,
		handlers.NewCatalogHandler(catalogService, browseService),
		handlers.NewAuthHandler(authProvider),
		handlers.NewFavoritesHandler(favoritesService),
		handlers.NewEventsHandler(browseService, favoritesService, authProvider),
		authProvider,
	)

	// Warm the genre table in the background
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := catalogService.Warm(ctx); err != nil {
			slog.Warn("catalog warmup failed", "error", err)
			return
		}
		slog.Info("catalog warmup complete")
	}()

	addr := fmt.Sprintf("%s:%d", settings.Server.Host, settings.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		fmt.Printf("🌐 Listening on %s (favorites backend: %s)\n", addr, settings.Favorites.Backend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Println("🛑 Shutting down gracefully...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
	if err := favoritesService.Close(); err != nil {
		log.Printf("Favorites shutdown error: %v", err)
	}

	log.Println("✅ Shutdown complete")
}

// openFavoritesStore picks the favorites backend named in settings.
func openFavoritesStore(settings config.Settings) (favorites.Store, error) {
	switch settings.Favorites.Backend {
	case config.FavoritesBackendSQLite:
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		db, err := database.Open(ctx, settings.Favorites.SQLitePath)
		if err != nil {
			return nil, err
		}
		return favorites.NewSQLStore(db), nil
	case config.FavoritesBackendMongo:
		return favorites.ConnectMongo(settings.Favorites.MongoURI, settings.Favorites.MongoDatabase)
	case config.FavoritesBackendFile:
		return favorites.NewFileStore(afero.NewOsFs(), settings.Cache.Directory)
	default:
		return nil, fmt.Errorf("unknown favorites backend %q", settings.Favorites.Backend)
	}
}

func logLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
