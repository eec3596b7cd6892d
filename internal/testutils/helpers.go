package testutils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// SeedFile writes a fixture file into the workspace, creating parent
// directories as needed, and returns its absolute path.
// It fails the test immediately on error.
func SeedFile(t *testing.T, workspace, name string, data []byte) string {
	t.Helper()

	path := filepath.Join(workspace, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755), "Failed to create fixture directory")
	require.NoError(t, os.WriteFile(path, data, 0o644), "Failed to write fixture file")
	return path
}
