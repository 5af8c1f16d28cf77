package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boxapi-go/boxapi/internal/box"
)

func writeTestConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoad_ValidFullConfig(t *testing.T) {
	path := writeTestConfig(t, `
api_key = "abc123"
token_file = "/tmp/box-token.json"
api_url = "http://localhost:8080/2.0"
upload_url = "http://localhost:8080/upload"
auth_url = "http://localhost:8080/auth"
user_agent = "tests/1.0"
log_level = "debug"
log_format = "json"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "abc123", cfg.APIKey)
	assert.Equal(t, "/tmp/box-token.json", cfg.TokenFile)
	assert.Equal(t, "http://localhost:8080/2.0", cfg.APIURL)
	assert.Equal(t, "http://localhost:8080/upload", cfg.UploadURL)
	assert.Equal(t, "http://localhost:8080/auth", cfg.AuthURL)
	assert.Equal(t, "tests/1.0", cfg.UserAgent)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, path, cfg.Source)
}

func TestLoad_PartialKeepsDefaults(t *testing.T) {
	path := writeTestConfig(t, `api_key = "abc123"`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "abc123", cfg.APIKey)
	assert.Equal(t, box.DefaultAPIURL, cfg.APIURL)
	assert.Equal(t, box.DefaultUploadURL, cfg.UploadURL)
	assert.Equal(t, box.DefaultAuthURL, cfg.AuthURL)
	assert.Equal(t, defaultLogLevel, cfg.LogLevel)
	assert.Equal(t, defaultLogFormat, cfg.LogFormat)
}

func TestLoad_InvalidTOML(t *testing.T) {
	path := writeTestConfig(t, `api_key = `)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing config file")
}

func TestLoad_ValidationFailure(t *testing.T) {
	path := writeTestConfig(t, `
api_url = "ftp://example.com"
log_level = "loud"
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api_url")
	assert.Contains(t, err.Error(), "log_level")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	assert.Error(t, err)
}

func TestLoadOrDefault_MissingFile(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadOrDefault_EmptyPath(t *testing.T) {
	cfg, err := LoadOrDefault("")
	require.NoError(t, err)
	assert.Empty(t, cfg.Source)
}

func TestResolve_Precedence(t *testing.T) {
	path := writeTestConfig(t, `
api_key = "from-file"
token_file = "/file/token.json"
`)

	t.Run("file", func(t *testing.T) {
		cfg, err := Resolve(EnvOverrides{}, CLIOverrides{ConfigPath: path})
		require.NoError(t, err)
		assert.Equal(t, "from-file", cfg.APIKey)
		assert.Equal(t, "/file/token.json", cfg.TokenFile)
	})

	t.Run("env over file", func(t *testing.T) {
		env := EnvOverrides{APIKey: "from-env", TokenFile: "/env/token.json"}
		cfg, err := Resolve(env, CLIOverrides{ConfigPath: path})
		require.NoError(t, err)
		assert.Equal(t, "from-env", cfg.APIKey)
		assert.Equal(t, "/env/token.json", cfg.TokenFile)
	})

	t.Run("cli over env", func(t *testing.T) {
		env := EnvOverrides{APIKey: "from-env"}
		cfg, err := Resolve(env, CLIOverrides{ConfigPath: path, APIKey: "from-cli"})
		require.NoError(t, err)
		assert.Equal(t, "from-cli", cfg.APIKey)
	})
}

func TestResolve_ConfigPathPrecedence(t *testing.T) {
	envPath := writeTestConfig(t, `api_key = "env-file"`)
	cliPath := writeTestConfig(t, `api_key = "cli-file"`)

	cfg, err := Resolve(EnvOverrides{ConfigPath: envPath}, CLIOverrides{})
	require.NoError(t, err)
	assert.Equal(t, "env-file", cfg.APIKey)

	cfg, err = Resolve(EnvOverrides{ConfigPath: envPath}, CLIOverrides{ConfigPath: cliPath})
	require.NoError(t, err)
	assert.Equal(t, "cli-file", cfg.APIKey)
}

func TestResolve_NoConfigFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Resolve(EnvOverrides{}, CLIOverrides{APIKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, "k", cfg.APIKey)
	assert.Empty(t, cfg.Source)
}

func TestResolve_PropagatesLoadError(t *testing.T) {
	path := writeTestConfig(t, `api_kye = "typo"`)

	_, err := Resolve(EnvOverrides{}, CLIOverrides{ConfigPath: path})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api_key")
}
