package config

import "os"

// Environment variable names for overrides.
const (
	EnvConfig    = "BOXAPI_CONFIG"
	EnvAPIKey    = "BOXAPI_API_KEY"
	EnvTokenFile = "BOXAPI_TOKEN_FILE"
)

// EnvOverrides holds values derived from environment variables.
type EnvOverrides struct {
	ConfigPath string // BOXAPI_CONFIG: override config file path
	APIKey     string // BOXAPI_API_KEY: application key
	TokenFile  string // BOXAPI_TOKEN_FILE: token file location
}

// ReadEnvOverrides reads environment variables and returns any overrides found.
// This does not modify a Config; Resolve applies the fields.
func ReadEnvOverrides() EnvOverrides {
	return EnvOverrides{
		ConfigPath: os.Getenv(EnvConfig),
		APIKey:     os.Getenv(EnvAPIKey),
		TokenFile:  os.Getenv(EnvTokenFile),
	}
}
