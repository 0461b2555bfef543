package app

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewConfig(t *testing.T) {
	t.Parallel()
	valid := Config{ConfigPaths: []string{"models"}, LogFormat: "json", LogLevel: "info", Workers: 2}

	cases := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "defaults for format and level", mutate: func(c *Config) { c.LogFormat, c.LogLevel = "", "" }},
		{name: "no paths", mutate: func(c *Config) { c.ConfigPaths = nil }, wantErr: "configuration path"},
		{name: "bad format", mutate: func(c *Config) { c.LogFormat = "xml" }, wantErr: "invalid log-format"},
		{name: "bad level", mutate: func(c *Config) { c.LogLevel = "loud" }, wantErr: "invalid log-level"},
		{name: "zero workers", mutate: func(c *Config) { c.Workers = 0 }, wantErr: "workers must be positive"},
		{name: "http publisher", mutate: func(c *Config) { c.PublishTransport = PublishHTTP }},
		{name: "bad publish transport", mutate: func(c *Config) { c.PublishTransport = "carrier-pigeon" }, wantErr: "invalid publish-transport"},
		{name: "port out of range", mutate: func(c *Config) { c.HealthcheckPort = 70000 }, wantErr: "out of range"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			cfg := valid
			cfg.ConfigPaths = append([]string(nil), valid.ConfigPaths...)
			tc.mutate(&cfg)

			got, err := NewConfig(cfg)
			if tc.wantErr != "" {
				require.ErrorContains(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, cfg, *got)
		})
	}
}
