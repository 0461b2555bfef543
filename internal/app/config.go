package app

import (
	"errors"
	"fmt"

	"github.com/vk/sosgridgo/internal/observability"
)

// Result publisher transports.
const (
	PublishSocketIO = "socketio"
	PublishHTTP     = "http"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	ConfigPaths []string // hcl files or directories

	LogFormat       string
	LogLevel        string
	HealthcheckPort int

	// Workers bounds how many model runs execute at the same time.
	Workers int
	// Runs selects model runs by name. Empty means every configured run.
	Runs []string
	// ReportDir, when set, receives one YAML report per finished run.
	ReportDir string

	// PublishURL, when set, receives every completed timestep over
	// PublishTransport ("socketio" or "http"; empty means socketio).
	PublishURL       string
	PublishTransport string
	PublishEvent     string

	Tracing observability.TracingConfig
}

// NewConfig validates cfg and returns a copy of it.
func NewConfig(cfg Config) (*Config, error) {
	if len(cfg.ConfigPaths) == 0 {
		return nil, errors.New("at least one configuration path is required")
	}
	if !validLogFormat(cfg.LogFormat) {
		return nil, fmt.Errorf("invalid log-format %q: must be 'text' or 'json'", cfg.LogFormat)
	}
	if _, ok := parseLevel(cfg.LogLevel); !ok {
		return nil, fmt.Errorf("invalid log-level %q: must be 'debug', 'info', 'warn', or 'error'", cfg.LogLevel)
	}
	if cfg.Workers <= 0 {
		return nil, fmt.Errorf("workers must be positive, got %d", cfg.Workers)
	}
	if cfg.HealthcheckPort < 0 || cfg.HealthcheckPort > 65535 {
		return nil, fmt.Errorf("healthcheck-port %d is out of range", cfg.HealthcheckPort)
	}
	switch cfg.PublishTransport {
	case "", PublishSocketIO, PublishHTTP:
	default:
		return nil, fmt.Errorf("invalid publish-transport %q: must be 'socketio' or 'http'", cfg.PublishTransport)
	}
	return &cfg, nil
}
