package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is stripped from environment variables before they are merged,
// so ETA_DATABASE_URL sets database_url.
const EnvPrefix = "ETA_"

// Artifact store backends.
const (
	StoreFile     = "file"
	StorePostgres = "postgres"
	StoreSqlite   = "sqlite"
	StoreRedis    = "redis"
)

type Config struct {
	Port string `koanf:"port"`

	// Store selects where the preprocessor and model artifacts live.
	Store        string `koanf:"store"`
	ArtifactsDir string `koanf:"artifacts_dir"`
	DatabaseURL  string `koanf:"database_url"`
	SqlitePath   string `koanf:"sqlite_path"`
	RedisAddr    string `koanf:"redis_addr"`
	RedisPrefix  string `koanf:"redis_prefix"`

	// ORSAPIKey enables road distances from OpenRouteService when a request
	// carries coordinates instead of Distance_in_KM.
	ORSAPIKey  string `koanf:"ors_api_key"`
	// ORSProfile is the routing profile used for those lookups.
	ORSProfile string `koanf:"ors_profile"`

	LogLevel string `koanf:"log_level"`
	LogJSON  bool   `koanf:"log_json"`

	// Training inputs.
	RawDataPath string  `koanf:"raw_data_path"`
	TestRatio   float64 `koanf:"test_ratio"`
	Seed        int64   `koanf:"seed"`
}

// Load merges, in increasing priority: defaults, the optional YAML file at
// path, a .env file in the working directory, and ETA_* environment variables.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: load .env: %w", err)
	}

	k := koanf.New(".")
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil &&
			!errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config: read %q: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("config: read environment: %w", err)
	}

	cfg := defaults()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Port:         "8080",
		Store:        StoreFile,
		ArtifactsDir: "artifacts",
		SqlitePath:   "data/artifacts.db",
		RedisAddr:    "localhost:6379",
		RedisPrefix:  "eta:artifacts:",
		ORSProfile:   "driving-car",
		LogLevel:     "info",
		RawDataPath:  "notebooks/data/finalTrain.csv",
		TestRatio:    0.30,
		Seed:         42,
	}
}

func validate(cfg *Config) error {
	switch cfg.Store {
	case StoreFile:
		if strings.TrimSpace(cfg.ArtifactsDir) == "" {
			return errors.New("artifacts_dir is required for the file store")
		}
	case StorePostgres:
		if strings.TrimSpace(cfg.DatabaseURL) == "" {
			return errors.New("database_url is required for the postgres store")
		}
	case StoreSqlite:
		if strings.TrimSpace(cfg.SqlitePath) == "" {
			return errors.New("sqlite_path is required for the sqlite store")
		}
	case StoreRedis:
		if strings.TrimSpace(cfg.RedisAddr) == "" {
			return errors.New("redis_addr is required for the redis store")
		}
	default:
		return fmt.Errorf("store %q unknown: want file|postgres|sqlite|redis", cfg.Store)
	}

	if strings.TrimSpace(cfg.ORSProfile) == "" {
		return errors.New("ors_profile is required")
	}
	if strings.TrimSpace(cfg.Port) == "" {
		return errors.New("port is required")
	}
	if cfg.TestRatio <= 0 || cfg.TestRatio >= 1 {
		return fmt.Errorf("test_ratio %v must be between 0 and 1", cfg.TestRatio)
	}
	return nil
}

// Get returns the environment variable key, or fallback when it is unset.
func Get(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
