package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_Defaults(t *testing.T) {
	assert.NoError(t, Validate(DefaultConfig()))
}

func TestValidate_Fields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"empty token file", func(c *Config) { c.TokenFile = "" }, "token_file"},
		{"empty api url", func(c *Config) { c.APIURL = "" }, "api_url"},
		{"ftp api url", func(c *Config) { c.APIURL = "ftp://box.com" }, "api_url"},
		{"relative upload url", func(c *Config) { c.UploadURL = "/upload" }, "upload_url"},
		{"hostless auth url", func(c *Config) { c.AuthURL = "https://" }, "auth_url"},
		{"unknown log level", func(c *Config) { c.LogLevel = "trace" }, "log_level"},
		{"unknown log format", func(c *Config) { c.LogFormat = "xml" }, "log_format"},
		{"empty log format", func(c *Config) { c.LogFormat = "" }, "log_format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := Validate(cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestValidate_ReportsAllErrors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.APIURL = "nope"
	cfg.LogLevel = "nope"

	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api_url")
	assert.Contains(t, err.Error(), "log_level")
}

func TestValidate_AcceptsHTTP(t *testing.T) {
	cfg := DefaultConfig()
	cfg.APIURL = "http://127.0.0.1:9000/api"

	assert.NoError(t, Validate(cfg))
}
