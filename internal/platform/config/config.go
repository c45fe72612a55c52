package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultEnvFile          = ".env"
	defaultPort             = "8080"
	defaultReadTimeout      = 15 * time.Second
	defaultWriteTimeout     = 30 * time.Second
	defaultIdleTimeout      = 120 * time.Second
	defaultDatasetSource    = SourceFile
	defaultDatasetPath      = "data/otop_products.json"
	defaultPlaceholderImage = "https://via.placeholder.com/300x200?text=No+Image"
	defaultMapCenterLat     = 15.8700
	defaultMapCenterLong    = 100.9925
	defaultMapZoom          = 6
	defaultDebounce         = 300 * time.Millisecond
	defaultSessionTTL       = 30 * time.Minute
	defaultSessionLimit     = 512
	defaultLogLevel         = "info"
)

// Dataset source kinds.
const (
	SourceFile = "file"
	SourceGCS  = "gcs"
)

// Config captures all runtime configuration organised by concern.
type Config struct {
	Server  ServerConfig
	Dataset DatasetConfig
	Assets  AssetConfig
	Map     MapConfig
	Browse  BrowseConfig
	Logging LoggingConfig
}

// ServerConfig configures HTTP server parameters.
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// DatasetConfig locates the catalog dataset document.
type DatasetConfig struct {
	// Source selects where the dataset document is read from: "file" or "gcs".
	Source string
	// Path is the local file path used by the file source.
	Path string
	// Bucket and Object identify the dataset document for the gcs source.
	Bucket string
	Object string
}

// AssetConfig controls how product image references resolve.
type AssetConfig struct {
	// BaseURL prefixes relative image references (CDN or static host).
	BaseURL string
	// PlaceholderURL replaces missing or unresolvable image references.
	PlaceholderURL string
}

// MapConfig configures the external map provider collaborator.
type MapConfig struct {
	// APIKey may be a literal key or a secret:// reference resolved at startup.
	// Empty disables the provider; the map surface then stays in fallback mode.
	APIKey string
	// SecretProject is the project consulted for secret:// references.
	SecretProject string
	// SecretFallbackFile is a local key=value file consulted when Secret
	// Manager is unreachable.
	SecretFallbackFile string

	CenterLat  float64
	CenterLong float64
	Zoom       int
}

// BrowseConfig tunes the interactive browse sessions.
type BrowseConfig struct {
	// DebounceInterval is the quiet period applied to search input.
	DebounceInterval time.Duration
	// SessionTTL is the idle lifetime of a browse session.
	SessionTTL time.Duration
	// SessionLimit caps concurrently live sessions.
	SessionLimit int
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level string
}

// Load reads configuration from the environment, first merging an optional
// .env file (existing environment variables win).
func Load() (Config, error) {
	return LoadFromFile(defaultEnvFile)
}

// LoadFromFile behaves like Load using the supplied env file path.
func LoadFromFile(envFile string) (Config, error) {
	if err := mergeEnvFile(envFile); err != nil {
		return Config{}, err
	}

	cfg := Config{
		Server: ServerConfig{
			Port:         lookup("API_PORT", defaultPort),
			ReadTimeout:  lookupDuration("API_READ_TIMEOUT", defaultReadTimeout),
			WriteTimeout: lookupDuration("API_WRITE_TIMEOUT", defaultWriteTimeout),
			IdleTimeout:  lookupDuration("API_IDLE_TIMEOUT", defaultIdleTimeout),
		},
		Dataset: DatasetConfig{
			Source: strings.ToLower(lookup("DATASET_SOURCE", defaultDatasetSource)),
			Path:   lookup("DATASET_PATH", defaultDatasetPath),
			Bucket: lookup("DATASET_BUCKET", ""),
			Object: lookup("DATASET_OBJECT", ""),
		},
		Assets: AssetConfig{
			BaseURL:        lookup("ASSET_BASE_URL", ""),
			PlaceholderURL: lookup("ASSET_PLACEHOLDER_URL", defaultPlaceholderImage),
		},
		Map: MapConfig{
			APIKey:             lookup("MAP_API_KEY", ""),
			SecretProject:      lookup("MAP_SECRET_PROJECT", ""),
			SecretFallbackFile: lookup("MAP_SECRET_FALLBACK_FILE", ""),
			CenterLat:          lookupFloat("MAP_CENTER_LAT", defaultMapCenterLat),
			CenterLong:         lookupFloat("MAP_CENTER_LONG", defaultMapCenterLong),
			Zoom:               lookupInt("MAP_ZOOM", defaultMapZoom),
		},
		Browse: BrowseConfig{
			DebounceInterval: lookupDuration("BROWSE_DEBOUNCE", defaultDebounce),
			SessionTTL:       lookupDuration("BROWSE_SESSION_TTL", defaultSessionTTL),
			SessionLimit:     lookupInt("BROWSE_SESSION_LIMIT", defaultSessionLimit),
		},
		Logging: LoggingConfig{
			Level: lookup("LOG_LEVEL", defaultLogLevel),
		},
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks cross-field consistency.
func (c Config) Validate() error {
	switch c.Dataset.Source {
	case SourceFile:
		if strings.TrimSpace(c.Dataset.Path) == "" {
			return errors.New("config: DATASET_PATH is required for the file source")
		}
	case SourceGCS:
		if strings.TrimSpace(c.Dataset.Bucket) == "" || strings.TrimSpace(c.Dataset.Object) == "" {
			return errors.New("config: DATASET_BUCKET and DATASET_OBJECT are required for the gcs source")
		}
	default:
		return fmt.Errorf("config: unknown dataset source %q", c.Dataset.Source)
	}

	if c.Map.CenterLat < -90 || c.Map.CenterLat > 90 {
		return fmt.Errorf("config: MAP_CENTER_LAT %v out of range", c.Map.CenterLat)
	}
	if c.Map.CenterLong < -180 || c.Map.CenterLong > 180 {
		return fmt.Errorf("config: MAP_CENTER_LONG %v out of range", c.Map.CenterLong)
	}
	if c.Map.Zoom < 0 || c.Map.Zoom > 21 {
		return fmt.Errorf("config: MAP_ZOOM %d out of range", c.Map.Zoom)
	}
	if c.Browse.DebounceInterval <= 0 {
		return errors.New("config: BROWSE_DEBOUNCE must be positive")
	}
	if c.Browse.SessionLimit <= 0 {
		return errors.New("config: BROWSE_SESSION_LIMIT must be positive")
	}
	return nil
}

func mergeEnvFile(path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil
	}
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: open env file %s: %w", path, err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		if key == "" {
			continue
		}
		if _, exists := os.LookupEnv(key); exists {
			continue
		}
		if err := os.Setenv(key, value); err != nil {
			return fmt.Errorf("config: set %s from env file: %w", key, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("config: read env file %s: %w", path, err)
	}
	return nil
}

func lookup(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func lookupInt(key string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func lookupFloat(key string, fallback float64) float64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func lookupDuration(key string, fallback time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}
