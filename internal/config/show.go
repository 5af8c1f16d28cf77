package config

import (
	"fmt"
	"io"
)

// visibleKeyChars is how much of the API key "config show" reveals.
const visibleKeyChars = 4

// RenderEffective writes the resolved configuration as an annotated TOML
// summary to w. This powers "config show".
func RenderEffective(cfg *Config, w io.Writer) error {
	ew := &errWriter{w: w}

	if cfg.Source != "" {
		ew.printf("# Effective configuration (file: %s)\n\n", cfg.Source)
	} else {
		ew.printf("# Effective configuration (defaults, no config file)\n\n")
	}

	ew.printf("api_key    = %q\n", MaskKey(cfg.APIKey))
	ew.printf("token_file = %q\n\n", cfg.TokenFile)

	ew.printf("# network\n")
	ew.printf("api_url    = %q\n", cfg.APIURL)
	ew.printf("upload_url = %q\n", cfg.UploadURL)
	ew.printf("auth_url   = %q\n", cfg.AuthURL)
	ew.printf("user_agent = %q\n\n", cfg.UserAgent)

	ew.printf("# logging\n")
	ew.printf("log_level  = %q\n", cfg.LogLevel)
	ew.printf("log_format = %q\n", cfg.LogFormat)

	return ew.err
}

// MaskKey hides all but the first few characters of an API key.
func MaskKey(key string) string {
	if key == "" {
		return ""
	}

	if len(key) <= visibleKeyChars {
		return "****"
	}

	return key[:visibleKeyChars] + "****"
}

// errWriter wraps an io.Writer and captures the first write error.
// Subsequent writes after an error are no-ops.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...any) {
	if ew.err != nil {
		return
	}

	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}
