//go:build e2e

package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boxapi-go/boxapi/testutil"
)

// These tests drive the built binary against a live Box account. They need
// BOXAPI_API_KEY and BOXAPI_TOKEN_FILE pointing at a token saved by
// "boxapi login"; values may come from a .env file at the module root.

var binaryPath string

func TestMain(m *testing.M) {
	root := testutil.FindModuleRoot("..")
	testutil.LoadDotEnv(filepath.Join(root, ".env"))

	if missing := testutil.MissingEnv("BOXAPI_API_KEY", "BOXAPI_TOKEN_FILE"); len(missing) > 0 {
		fmt.Fprintf(os.Stderr, "skipping e2e: %s not set\n", strings.Join(missing, ", "))
		os.Exit(0)
	}

	tmpDir, err := os.MkdirTemp("", "boxapi-e2e-*")
	if err != nil {
		fmt.Fprintf(os.Stderr, "creating temp dir: %v\n", err)
		os.Exit(1)
	}

	binaryPath = filepath.Join(tmpDir, "boxapi")

	cmd := exec.Command("go", "build", "-o", binaryPath, ".")
	cmd.Dir = root
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "building binary: %v\n", err)
		os.RemoveAll(tmpDir)
		os.Exit(1)
	}

	code := m.Run()

	os.RemoveAll(tmpDir)
	os.Exit(code)
}

func runCLI(t *testing.T, args ...string) (string, string) {
	t.Helper()

	cmd := exec.Command(binaryPath, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		t.Fatalf("CLI command %v failed: %v\nstdout: %s\nstderr: %s", args, err, stdout.String(), stderr.String())
	}

	return stdout.String(), stderr.String()
}

func runJSON(t *testing.T, args ...string) map[string]any {
	t.Helper()

	stdout, _ := runCLI(t, append([]string{"--json"}, args...)...)

	var out map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &out), stdout)

	return out
}

func writeLocal(t *testing.T, name string, content []byte) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, content, 0o600))

	return path
}

func TestE2E_RoundTrip(t *testing.T) {
	folderName := fmt.Sprintf("boxapi-e2e-%d", time.Now().UnixNano())
	content := []byte("Hello from the boxapi E2E test!\n")
	updated := []byte("Second version.\n")

	var folderID, fileID string

	t.Run("status", func(t *testing.T) {
		out := runJSON(t, "status", "--check")
		assert.Equal(t, "valid", out["token_state"])
	})

	t.Run("mkdir", func(t *testing.T) {
		out := runJSON(t, "mkdir", folderName)
		folderID, _ = out["id"].(string)
		require.NotEmpty(t, folderID)
	})

	t.Run("put", func(t *testing.T) {
		require.NotEmpty(t, folderID)

		out := runJSON(t, "put", writeLocal(t, "e2e.txt", content), "--parent", folderID)
		entries, ok := out["entries"].([]any)
		require.True(t, ok)
		require.Len(t, entries, 1)

		fileID, _ = entries[0].(map[string]any)["id"].(string)
		require.NotEmpty(t, fileID)
	})

	t.Run("folder", func(t *testing.T) {
		stdout, _ := runCLI(t, "folder", folderID)
		assert.Contains(t, stdout, "e2e.txt")
	})

	t.Run("stat", func(t *testing.T) {
		out := runJSON(t, "stat", fileID)
		assert.Equal(t, "e2e.txt", out["name"])
	})

	t.Run("get", func(t *testing.T) {
		stdout, _ := runCLI(t, "get", fileID, "-")
		assert.Equal(t, string(content), stdout)
	})

	t.Run("put-version", func(t *testing.T) {
		runCLI(t, "put-version", writeLocal(t, "e2e.txt", updated), fileID)

		stdout, _ := runCLI(t, "get", fileID, "-")
		assert.Equal(t, string(updated), stdout)
	})

	t.Run("rm", func(t *testing.T) {
		_, stderr := runCLI(t, "rm", fileID)
		assert.Contains(t, stderr, "Deleted")
	})
}
