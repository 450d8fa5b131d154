package config

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Settings represents the application configuration persisted to disk.
type Settings struct {
	Server    ServerSettings    `json:"server"`
	Catalog   CatalogSettings   `json:"catalog"`
	Auth      AuthSettings      `json:"auth"`
	Favorites FavoritesSettings `json:"favorites"`
	Cache     CacheSettings     `json:"cache"`
	Log       LogConfig         `json:"log"`
}

type ServerSettings struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

// CatalogSettings configures the TMDB client.
type CatalogSettings struct {
	APIKey            string  `json:"apiKey"`
	BaseURL           string  `json:"baseUrl"`
	Language          string  `json:"language"`
	ListLimit         int     `json:"listLimit"`     // items kept from upcoming/popular/top-rated
	DiscoverLimit     int     `json:"discoverLimit"` // items kept from discover-by-genre
	RequestsPerSecond float64 `json:"requestsPerSecond"`
	Burst             int     `json:"burst"`
	RetryAttempts     int     `json:"retryAttempts"`
	RetryDelayMillis  int     `json:"retryDelayMillis"`
	TimeoutSeconds    int     `json:"timeoutSeconds"`
}

type AuthSettings struct {
	JWTSecret       string `json:"jwtSecret"`
	SessionTTLHours int    `json:"sessionTtlHours"`
}

// FavoritesBackend selects where favorite associations are stored.
type FavoritesBackend string

const (
	FavoritesBackendSQLite FavoritesBackend = "sqlite"
	FavoritesBackendMongo  FavoritesBackend = "mongo"
	FavoritesBackendFile   FavoritesBackend = "file"
)

type FavoritesSettings struct {
	Backend       FavoritesBackend `json:"backend"`
	SQLitePath    string           `json:"sqlitePath"`
	MongoURI      string           `json:"mongoUri"`
	MongoDatabase string           `json:"mongoDatabase"`
	FanOutWorkers int              `json:"fanOutWorkers"` // concurrent detail lookups when resolving a favorites list
}

type CacheSettings struct {
	Directory string `json:"directory"`
}

// LogConfig represents logging configuration
type LogConfig struct {
	File       string `json:"file"`
	Level      string `json:"level"`
	MaxSize    int    `json:"maxSize"`
	MaxAge     int    `json:"maxAge"`
	MaxBackups int    `json:"maxBackups"`
	Compress   bool   `json:"compress"`
}

// DefaultSettings returns sane defaults for a fresh install.
func DefaultSettings() Settings {
	return Settings{
		Server: ServerSettings{Host: "0.0.0.0", Port: 7878},
		Catalog: CatalogSettings{
			APIKey:            "",
			BaseURL:           "https://api.themoviedb.org/3",
			Language:          "en-US",
			ListLimit:         5,
			DiscoverLimit:     10,
			RequestsPerSecond: 40,
			Burst:             10,
			RetryAttempts:     3,
			RetryDelayMillis:  300,
			TimeoutSeconds:    15,
		},
		Auth: AuthSettings{JWTSecret: "", SessionTTLHours: 24 * 7},
		Favorites: FavoritesSettings{
			Backend:       FavoritesBackendSQLite,
			SQLitePath:    "cache/moma.db",
			MongoURI:      "mongodb://localhost:27017",
			MongoDatabase: "moma",
			FanOutWorkers: 8,
		},
		Cache: CacheSettings{Directory: "cache"},
		Log: LogConfig{
			File:       "cache/logs/backend.log",
			Level:      "info",
			MaxSize:    50,   // 50 MB per file
			MaxBackups: 3,    // keep 3 old files
			MaxAge:     7,    // 7 days
			Compress:   true, // compress old files
		},
	}
}

// Manager loads and persists settings to a JSON file.
type Manager struct {
	path string
}

func NewManager(configPath string) *Manager {
	return &Manager{path: configPath}
}

// Path returns the settings file location.
func (m *Manager) Path() string {
	return m.path
}

// EnsureDir ensures parent directory exists.
func (m *Manager) EnsureDir() error {
	dir := filepath.Dir(m.path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

// Load reads settings.json from disk or creates defaults if missing.
func (m *Manager) Load() (Settings, error) {
	if m.path == "" {
		return Settings{}, errors.New("config path not set")
	}
	if _, err := os.Stat(m.path); errors.Is(err, fs.ErrNotExist) {
		defaults := DefaultSettings()
		if err := m.Save(defaults); err != nil {
			return Settings{}, err
		}
		return defaults, nil
	}
	f, err := os.Open(m.path)
	if err != nil {
		return Settings{}, err
	}
	defer f.Close()

	s := DefaultSettings()
	if err := json.NewDecoder(f).Decode(&s); err != nil {
		return Settings{}, err
	}
	applyDefaults(&s)
	return s, nil
}

// Save writes the provided settings to disk atomically.
func (m *Manager) Save(s Settings) error {
	if m.path == "" {
		return errors.New("config path not set")
	}
	if err := m.EnsureDir(); err != nil {
		return err
	}
	tmp := m.path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, m.path)
}

// applyDefaults fills fields an older settings file left at their zero value.
func applyDefaults(s *Settings) {
	d := DefaultSettings()
	if s.Server.Port == 0 {
		s.Server.Port = d.Server.Port
	}
	if strings.TrimSpace(s.Catalog.BaseURL) == "" {
		s.Catalog.BaseURL = d.Catalog.BaseURL
	}
	if strings.TrimSpace(s.Catalog.Language) == "" {
		s.Catalog.Language = d.Catalog.Language
	}
	if s.Catalog.ListLimit <= 0 {
		s.Catalog.ListLimit = d.Catalog.ListLimit
	}
	if s.Catalog.DiscoverLimit <= 0 {
		s.Catalog.DiscoverLimit = d.Catalog.DiscoverLimit
	}
	if s.Catalog.RetryAttempts <= 0 {
		s.Catalog.RetryAttempts = 1
	}
	if s.Catalog.TimeoutSeconds <= 0 {
		s.Catalog.TimeoutSeconds = d.Catalog.TimeoutSeconds
	}
	if s.Auth.SessionTTLHours <= 0 {
		s.Auth.SessionTTLHours = d.Auth.SessionTTLHours
	}
	if s.Favorites.Backend == "" {
		s.Favorites.Backend = d.Favorites.Backend
	}
	if s.Favorites.FanOutWorkers <= 0 {
		s.Favorites.FanOutWorkers = d.Favorites.FanOutWorkers
	}
	if strings.TrimSpace(s.Cache.Directory) == "" {
		s.Cache.Directory = d.Cache.Directory
	}
}

// LoadDotEnv loads the given env files into the process environment, skipping
// files that do not exist. Variables already set win over file values.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if _, err := os.Stat(p); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return err
		}
	}
	return nil
}

// ApplyEnv overrides settings with MOMA_* environment variables.
func ApplyEnv(s *Settings) {
	setString(&s.Server.Host, "MOMA_HOST")
	setInt(&s.Server.Port, "MOMA_PORT")
	setString(&s.Catalog.APIKey, "MOMA_TMDB_API_KEY")
	setString(&s.Catalog.BaseURL, "MOMA_TMDB_BASE_URL")
	setString(&s.Catalog.Language, "MOMA_TMDB_LANGUAGE")
	setString(&s.Auth.JWTSecret, "MOMA_JWT_SECRET")
	setString(&s.Cache.Directory, "MOMA_CACHE_DIR")
	setString(&s.Log.File, "MOMA_LOG_FILE")
	setString(&s.Favorites.SQLitePath, "MOMA_SQLITE_PATH")
	setString(&s.Favorites.MongoURI, "MOMA_MONGO_URI")
	setString(&s.Favorites.MongoDatabase, "MOMA_MONGO_DATABASE")
	if v := strings.TrimSpace(os.Getenv("MOMA_FAVORITES_BACKEND")); v != "" {
		s.Favorites.Backend = FavoritesBackend(strings.ToLower(v))
	}
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return
	}
	if n, err := strconv.Atoi(v); err == nil {
		*dst = n
	}
}
