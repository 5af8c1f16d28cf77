// Package config implements TOML configuration loading, validation, and
// platform-specific path resolution for the boxapi CLI. Values are resolved
// through a four-layer override chain: defaults -> config file ->
// environment -> CLI flags.
package config

// Config is the top-level configuration parsed from a TOML file. All keys are
// flat; the embedded sections only group related fields in Go.
type Config struct {
	APIKey    string `toml:"api_key" json:"api_key"`
	TokenFile string `toml:"token_file" json:"token_file"`
	NetworkConfig
	LoggingConfig

	// Source is the file the values were read from, empty for defaults.
	Source string `toml:"-" json:"-"`
}

// NetworkConfig selects the Box endpoints and how requests identify
// themselves. The URLs are only overridden for testing or proxies.
type NetworkConfig struct {
	APIURL    string `toml:"api_url" json:"api_url"`
	UploadURL string `toml:"upload_url" json:"upload_url"`
	AuthURL   string `toml:"auth_url" json:"auth_url"`
	UserAgent string `toml:"user_agent" json:"user_agent"`
}

// LoggingConfig controls log output behavior.
type LoggingConfig struct {
	LogLevel  string `toml:"log_level" json:"log_level"`
	LogFormat string `toml:"log_format" json:"log_format"`
}

// CLIOverrides holds values from CLI flags that override config file and
// environment settings. Empty strings mean "not specified".
type CLIOverrides struct {
	ConfigPath string // --config
	APIKey     string // --api-key
}
