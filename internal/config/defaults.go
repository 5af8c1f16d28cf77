package config

import (
	"path/filepath"

	"github.com/boxapi-go/boxapi/internal/box"
)

// Default values for configuration options. These are layer 0 of the
// override chain and work without any config file.
const (
	defaultLogLevel      = "info"
	defaultLogFormat     = "auto"
	defaultUserAgent     = "boxapi-cli/0.1"
	defaultTokenFileName = "token.json"
)

// DefaultConfig returns a Config populated with all default values.
// It is the starting point for TOML decoding, so unset keys keep defaults.
func DefaultConfig() *Config {
	return &Config{
		TokenFile: DefaultTokenPath(),
		NetworkConfig: NetworkConfig{
			APIURL:    box.DefaultAPIURL,
			UploadURL: box.DefaultUploadURL,
			AuthURL:   box.DefaultAuthURL,
			UserAgent: defaultUserAgent,
		},
		LoggingConfig: LoggingConfig{
			LogLevel:  defaultLogLevel,
			LogFormat: defaultLogFormat,
		},
	}
}

// DefaultTokenPath returns where the auth token is stored when token_file
// is not configured.
func DefaultTokenPath() string {
	dir := DefaultDataDir()
	if dir == "" {
		return defaultTokenFileName
	}

	return filepath.Join(dir, defaultTokenFileName)
}
