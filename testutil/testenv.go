// Package testutil provides shared environment helpers for E2E tests. It
// depends only on stdlib so that E2E tests (which cannot import internal/)
// can use it.
package testutil

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
)

// LoadDotEnv reads KEY=VALUE pairs from a .env file at the given path.
// Missing file is not an error (CI sets env vars directly).
// Existing env vars take precedence over .env values.
func LoadDotEnv(envPath string) {
	f, err := os.Open(envPath)
	if err != nil {
		return
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		key, value, ok := parseEnvLine(scanner.Text())
		if !ok {
			continue
		}

		if os.Getenv(key) == "" {
			os.Setenv(key, value)
		}
	}
}

// parseEnvLine splits one .env line. Comments, blanks and lines without
// "=" are skipped; surrounding quotes are stripped from values.
func parseEnvLine(line string) (string, string, bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return "", "", false
	}

	key, value, ok := strings.Cut(line, "=")
	if !ok {
		return "", "", false
	}

	return strings.TrimSpace(key), strings.Trim(strings.TrimSpace(value), "\"'"), true
}

// MissingEnv returns the names in keys that are unset or empty.
func MissingEnv(keys ...string) []string {
	var missing []string

	for _, k := range keys {
		if os.Getenv(k) == "" {
			missing = append(missing, k)
		}
	}

	return missing
}

// FindModuleRoot walks up from the current directory to find go.mod.
// Returns the fallback if the root is not found.
func FindModuleRoot(fallback string) string {
	dir, err := os.Getwd()
	if err != nil {
		return fallback
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return fallback
		}

		dir = parent
	}
}
