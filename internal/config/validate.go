package config

import (
	"errors"
	"net/url"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Accepted enumeration values.
var (
	validLogLevels  = []any{"debug", "info", "warn", "error"}
	validLogFormats = []any{"auto", "text", "json"}
)

var errNotHTTPURL = errors.New("must be an http or https URL")

// Validate checks all configuration values and reports every problem found,
// keyed by the TOML name of the offending field.
func Validate(cfg *Config) error {
	return validation.ValidateStruct(cfg,
		validation.Field(&cfg.TokenFile, validation.Required),
		validation.Field(&cfg.APIURL, validation.Required, validation.By(httpURL)),
		validation.Field(&cfg.UploadURL, validation.Required, validation.By(httpURL)),
		validation.Field(&cfg.AuthURL, validation.Required, validation.By(httpURL)),
		validation.Field(&cfg.LogLevel, validation.Required, validation.In(validLogLevels...)),
		validation.Field(&cfg.LogFormat, validation.Required, validation.In(validLogFormats...)),
	)
}

// httpURL accepts absolute http(s) URLs with a host.
func httpURL(value any) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}

	u, err := url.Parse(s)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errNotHTTPURL
	}

	return nil
}
