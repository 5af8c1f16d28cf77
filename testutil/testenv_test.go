package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseEnvLine(t *testing.T) {
	tests := []struct {
		line      string
		key, val  string
		wantMatch bool
	}{
		{"BOXAPI_API_KEY=abc", "BOXAPI_API_KEY", "abc", true},
		{`  QUOTED = "x y" `, "QUOTED", "x y", true},
		{"SINGLE='z'", "SINGLE", "z", true},
		{"# comment", "", "", false},
		{"", "", "", false},
		{"no_equals", "", "", false},
	}

	for _, tt := range tests {
		key, val, ok := parseEnvLine(tt.line)
		assert.Equal(t, tt.wantMatch, ok, tt.line)
		assert.Equal(t, tt.key, key, tt.line)
		assert.Equal(t, tt.val, val, tt.line)
	}
}

func TestLoadDotEnv_ExistingWins(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	content := "TESTUTIL_A=from-file\nTESTUTIL_B=from-file\n"
	assert.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("TESTUTIL_A", "from-env")
	t.Setenv("TESTUTIL_B", "")

	LoadDotEnv(path)

	assert.Equal(t, "from-env", os.Getenv("TESTUTIL_A"))
	assert.Equal(t, "from-file", os.Getenv("TESTUTIL_B"))
}

func TestLoadDotEnv_MissingFile(t *testing.T) {
	LoadDotEnv(filepath.Join(t.TempDir(), "absent"))
}

func TestMissingEnv(t *testing.T) {
	t.Setenv("TESTUTIL_SET", "1")
	t.Setenv("TESTUTIL_EMPTY", "")

	assert.Equal(t, []string{"TESTUTIL_EMPTY"}, MissingEnv("TESTUTIL_SET", "TESTUTIL_EMPTY"))
	assert.Nil(t, MissingEnv("TESTUTIL_SET"))
}

func TestFindModuleRoot(t *testing.T) {
	root := FindModuleRoot("fallback")
	_, err := os.Stat(filepath.Join(root, "go.mod"))
	assert.NoError(t, err)
}
