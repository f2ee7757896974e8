// Package config loads service configuration from a YAML file, environment
// variables, and defaults.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/mcuadros/go-defaults"
)

// envPrefix namespaces the service's environment variables. A double
// underscore separates nesting levels so key names may themselves contain
// underscores, e.g. RECON_SERVER__CORS_ORIGIN -> server.cors_origin.
const envPrefix = "RECON_"

// Config holds service configuration
type Config struct {
	// Server configures the HTTP listener
	Server ServerConfig `koanf:"server"`
	// Classifier configures the external classification model client
	Classifier ClassifierConfig `koanf:"classifier"`
	// Storage configures the persistence layer
	Storage StorageConfig `koanf:"storage"`
}

// ServerConfig configures the HTTP server
type ServerConfig struct {
	// Listen is the address the HTTP server binds to
	Listen string `koanf:"listen" default:":8080"`
	// ReadTimeout bounds reading of a full request
	ReadTimeout time.Duration `koanf:"read_timeout" default:"30s"`
	// WriteTimeout bounds writing of a full response
	WriteTimeout time.Duration `koanf:"write_timeout" default:"90s"`
	// ShutdownGracePeriod bounds graceful shutdown on termination
	ShutdownGracePeriod time.Duration `koanf:"shutdown_grace_period" default:"10s"`
	// MaxBodySize caps request body size in bytes
	MaxBodySize int64 `koanf:"max_body_size" default:"102400"`
	// CORSOrigin is the allowed cross-origin value for browser callers
	CORSOrigin string `koanf:"cors_origin" default:"*"`
	// Debug enables debug logging; set from the CLI flag
	Debug bool `koanf:"debug"`
	// Pretty enables human-readable console logging; set from the CLI flag
	Pretty bool `koanf:"pretty"`
}

// ClassifierConfig configures the completion model used for verdicts
type ClassifierConfig struct {
	// APIKey authenticates to the classifier service; required at startup
	APIKey string `koanf:"api_key"`
	// BaseURL overrides the classifier API endpoint, mainly for tests
	BaseURL string `koanf:"base_url"`
	// Model is the completion model identifier
	Model string `koanf:"model" default:"gpt-4o-mini"`
	// Temperature is the sampling temperature; low values bias toward consistent verdicts
	Temperature float64 `koanf:"temperature" default:"0.3"`
	// RequestTimeout bounds a single classification call
	RequestTimeout time.Duration `koanf:"request_timeout" default:"60s"`
}

// StorageConfig configures the SQLite store
type StorageConfig struct {
	// Dir is the directory holding the database file
	Dir string `koanf:"dir" default:"data"`
}

// Load reads configuration, layering defaults, then the YAML file at path
// (when it exists), then RECON_-prefixed environment variables. The
// classifier API key is validated here so a misconfigured service fails at
// startup rather than on its first request.
func Load(path *string) (*Config, error) {
	cfg := &Config{}
	defaults.SetDefaults(cfg)

	k := koanf.New(".")

	if path != nil && *path != "" {
		if _, err := os.Stat(*path); err == nil {
			if err := k.Load(file.Provider(*path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrConfigLoad, err)
			}
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigLoad, err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigUnmarshal, err)
	}

	if cfg.Classifier.APIKey == "" {
		// legacy deployments configure the key through the provider's own variable
		cfg.Classifier.APIKey = os.Getenv("OPENAI_API_KEY")
	}

	if cfg.Classifier.APIKey == "" {
		return nil, ErrMissingAPIKey
	}

	return cfg, nil
}

// envKey maps an environment variable name onto a koanf key.
func envKey(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(name, envPrefix)), "__", ".")
}
