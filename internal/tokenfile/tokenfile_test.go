package tokenfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_FileNotFound(t *testing.T) {
	tf, err := Load("/nonexistent/path/token.json")
	assert.Nil(t, tf)
	assert.NoError(t, err)
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "token.json")

	require.NoError(t, Save(path, New("key-1", "tok-1")))

	tf, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "key-1", tf.APIKey)
	assert.Equal(t, "tok-1", tf.AuthToken())
	assert.Equal(t, TokenType, tf.Token.TokenType)
	assert.NotEmpty(t, tf.Meta["issued_at"])
}

func TestSave_Permissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	require.NoError(t, Save(path, New("k", "t")))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(FilePerms), info.Mode().Perm())
}

func TestSave_NoTempFilesLeft(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Save(filepath.Join(dir, "token.json"), New("k", "t")))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "token.json", entries[0].Name())
}

func TestLoad_MissingTokenField(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"api_key":"k"}`), 0o600))

	tf, err := Load(path)
	assert.Nil(t, tf)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing token field")
}

func TestLoad_InvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	require.NoError(t, os.WriteFile(path, []byte(`{not json}`), 0o600))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decoding")
}

func TestLoadFor(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	require.NoError(t, Save(path, New("key-1", "tok-1")))

	tf, err := LoadFor(path, "key-1")
	require.NoError(t, err)
	assert.Equal(t, "tok-1", tf.AuthToken())

	_, err = LoadFor(path, "other-key")
	assert.ErrorIs(t, err, ErrKeyMismatch)

	tf, err = LoadFor(filepath.Join(t.TempDir(), "absent.json"), "key-1")
	assert.NoError(t, err)
	assert.Nil(t, tf)
}

func TestRemove(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	require.NoError(t, Save(path, New("k", "t")))

	removed, err := Remove(path)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = Remove(path)
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestAuthToken_Nil(t *testing.T) {
	var tf *File
	assert.Empty(t, tf.AuthToken())
	assert.Empty(t, (&File{}).AuthToken())
}
