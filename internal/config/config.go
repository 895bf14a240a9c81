// Package config loads bookhub settings from defaults, an optional YAML file
// and the environment, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// ConfigPathEnvVar points at a config file and takes precedence over the search path.
const ConfigPathEnvVar = "BOOKHUB_CONFIG"

// LegacyAPIURLEnvVar is honoured when BOOKHUB_API_URL is unset.
const LegacyAPIURLEnvVar = "NEXT_PUBLIC_API_URL"

type Config struct {
	API             APIConfig             `koanf:"api"`
	Storage         StorageConfig         `koanf:"storage"`
	Log             LogConfig             `koanf:"log"`
	Pager           PagerConfig           `koanf:"pager"`
	Catalog         CatalogConfig         `koanf:"catalog"`
	Featured        FeaturedConfig        `koanf:"featured"`
	Comments        CommentsConfig        `koanf:"comments"`
	Recommendations RecommendationsConfig `koanf:"recommendations"`
}

type APIConfig struct {
	URL             string        `koanf:"url" validate:"required,url"`
	Timeout         time.Duration `koanf:"timeout" validate:"gt=0"`
	MaxRetries      int           `koanf:"max_retries" validate:"gte=0,lte=10"`
	RateLimitRPS    float64       `koanf:"rate_limit_rps" validate:"gt=0"`
	BreakerFailures uint32        `koanf:"breaker_failures" validate:"gte=1"`
	BreakerTimeout  time.Duration `koanf:"breaker_timeout" validate:"gt=0"`
}

type StorageConfig struct {
	// Path of the YAML file holding auth_token and username.
	Path string `koanf:"path" validate:"required"`
}

type LogConfig struct {
	Level  string `koanf:"level" validate:"oneof=debug info warn error"`
	Format string `koanf:"format" validate:"oneof=console json"`
}

type PagerConfig struct {
	PageSize int `koanf:"page_size" validate:"gte=1,lte=100"`
}

type CatalogConfig struct {
	// BootstrapLimit is how many books are listed to seed categories and authors.
	BootstrapLimit int `koanf:"bootstrap_limit" validate:"gte=1,lte=100"`
}

type FeaturedConfig struct {
	Limit       int `koanf:"limit" validate:"gte=1,lte=100"`
	Concurrency int `koanf:"concurrency" validate:"gte=1"`
}

type CommentsConfig struct {
	ReconcileDelay time.Duration `koanf:"reconcile_delay" validate:"gte=0"`
}

type RecommendationsConfig struct {
	Limit int `koanf:"limit" validate:"gte=1"`
}

func defaultConfig() *Config {
	return &Config{
		API: APIConfig{
			URL:             "http://localhost:8000",
			Timeout:         15 * time.Second,
			MaxRetries:      2,
			RateLimitRPS:    10,
			BreakerFailures: 5,
			BreakerTimeout:  30 * time.Second,
		},
		Storage:         StorageConfig{Path: defaultStoragePath()},
		Log:             LogConfig{Level: "warn", Format: "console"},
		Pager:           PagerConfig{PageSize: 12},
		Catalog:         CatalogConfig{BootstrapLimit: 100},
		Featured:        FeaturedConfig{Limit: 4, Concurrency: 4},
		Comments:        CommentsConfig{ReconcileDelay: 500 * time.Millisecond},
		Recommendations: RecommendationsConfig{Limit: 10},
	}
}

func defaultStoragePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".bookhub-session.yaml"
	}
	return filepath.Join(dir, "bookhub", "session.yaml")
}

// Default returns the built-in configuration.
func Default() *Config {
	return defaultConfig()
}

// Load layers defaults, the config file and the environment. An explicit
// path must exist; otherwise the search path is tried and a miss is fine.
func Load(path string) (*Config, error) {
	loadEnvFiles()

	k := koanf.New(".")
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path == "" {
		path = findConfigFile()
	} else if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if v := os.Getenv(LegacyAPIURLEnvVar); v != "" && os.Getenv("BOOKHUB_API_URL") == "" {
		if err := k.Set("api.url", v); err != nil {
			return nil, fmt.Errorf("apply %s: %w", LegacyAPIURLEnvVar, err)
		}
	}
	if err := k.Load(env.Provider("BOOKHUB_", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func loadEnvFiles() {
	// Do not override the real environment.
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range searchPaths() {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

func searchPaths() []string {
	paths := []string{"bookhub.yaml", "bookhub.yml"}
	if dir, err := os.UserConfigDir(); err == nil {
		paths = append(paths, filepath.Join(dir, "bookhub", "config.yaml"))
	}
	return paths
}

var envMappings = map[string]string{
	"bookhub_api_url":                  "api.url",
	"bookhub_api_timeout":              "api.timeout",
	"bookhub_api_max_retries":          "api.max_retries",
	"bookhub_api_rate_limit_rps":       "api.rate_limit_rps",
	"bookhub_api_breaker_failures":     "api.breaker_failures",
	"bookhub_api_breaker_timeout":      "api.breaker_timeout",
	"bookhub_storage_path":             "storage.path",
	"bookhub_log_level":                "log.level",
	"bookhub_log_format":               "log.format",
	"bookhub_pager_page_size":          "pager.page_size",
	"bookhub_catalog_bootstrap_limit":  "catalog.bootstrap_limit",
	"bookhub_featured_limit":           "featured.limit",
	"bookhub_featured_concurrency":     "featured.concurrency",
	"bookhub_comments_reconcile_delay": "comments.reconcile_delay",
	"bookhub_recommendations_limit":    "recommendations.limit",
}

// envTransformFunc maps BOOKHUB_* variables to koanf paths. Unknown names are dropped.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}

var validate = validator.New()

func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("%s: failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value())
		}
		return err
	}
	return nil
}
