// Package tokenfile persists a Box auth token between CLI invocations.
// The token is stored as an oauth2.Token together with the API key it was
// issued for, so a token is never replayed against a different application.
package tokenfile

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/oauth2"
)

// FilePerms restricts token files to owner-only read/write.
const FilePerms = 0o600

// DirPerms is used when creating the token directory.
const DirPerms = 0o700

// TokenType marks tokens issued by the ticket flow.
const TokenType = "BoxAuth"

// ErrKeyMismatch is returned when a stored token belongs to another API key.
var ErrKeyMismatch = errors.New("tokenfile: token was issued for a different api key")

// File is the on-disk format.
type File struct {
	APIKey string            `json:"api_key"`
	Token  *oauth2.Token     `json:"token"`
	Meta   map[string]string `json:"meta,omitempty"`
}

// New wraps an auth token for apiKey, stamped with the issue time.
func New(apiKey, authToken string) *File {
	return &File{
		APIKey: apiKey,
		Token:  &oauth2.Token{AccessToken: authToken, TokenType: TokenType},
		Meta:   map[string]string{"issued_at": time.Now().UTC().Format(time.RFC3339)},
	}
}

// AuthToken returns the stored token value, or "" when absent.
func (f *File) AuthToken() string {
	if f == nil || f.Token == nil {
		return ""
	}

	return f.Token.AccessToken
}

// Load reads a token file. Returns (nil, nil) if the file does not exist.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil //nolint:nilnil // sentinel for "not found"
	}

	if err != nil {
		return nil, fmt.Errorf("tokenfile: reading %s: %w", path, err)
	}

	var tf File
	if err := json.Unmarshal(data, &tf); err != nil {
		return nil, fmt.Errorf("tokenfile: decoding %s: %w", path, err)
	}

	if tf.AuthToken() == "" {
		return nil, fmt.Errorf("tokenfile: %s missing token field (re-login required)", path)
	}

	return &tf, nil
}

// LoadFor reads the token file and checks it was issued for apiKey.
// Returns (nil, nil) if the file does not exist.
func LoadFor(path, apiKey string) (*File, error) {
	tf, err := Load(path)
	if err != nil || tf == nil {
		return tf, err
	}

	if tf.APIKey != apiKey {
		return nil, ErrKeyMismatch
	}

	return tf, nil
}

// Save writes a token file atomically (write-to-temp + rename) with 0600
// permissions.
func Save(path string, tf *File) error {
	data, err := json.MarshalIndent(tf, "", "  ")
	if err != nil {
		return fmt.Errorf("tokenfile: encoding: %w", err)
	}

	dir := filepath.Dir(path)
	if mkErr := os.MkdirAll(dir, DirPerms); mkErr != nil {
		return fmt.Errorf("tokenfile: creating directory %s: %w", dir, mkErr)
	}

	// Same directory guarantees same filesystem for rename(2).
	tmp, err := os.CreateTemp(dir, ".token-*.tmp")
	if err != nil {
		return fmt.Errorf("tokenfile: creating temp file: %w", err)
	}

	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = os.Remove(tmpPath)
		}
	}()

	if err := os.Chmod(tmpPath, FilePerms); err != nil {
		tmp.Close()
		return fmt.Errorf("tokenfile: setting permissions: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("tokenfile: writing: %w", err)
	}

	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("tokenfile: syncing: %w", err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("tokenfile: closing: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("tokenfile: renaming: %w", err)
	}

	success = true

	return nil
}

// Remove deletes the token file. A missing file is not an error.
func Remove(path string) (bool, error) {
	err := os.Remove(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}

	if err != nil {
		return false, fmt.Errorf("tokenfile: removing %s: %w", path, err)
	}

	return true, nil
}
