package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadEnvironmentFromWorkingDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("SOLMINT_ENV_TEST=from-file\nSOLMINT_ENV_KEEP=from-file\n"), 0600))
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	t.Setenv("SOLMINT_ENV_TEST", "")
	os.Unsetenv("SOLMINT_ENV_TEST")
	t.Setenv("SOLMINT_ENV_KEEP", "from-shell")

	loaded := LoadEnvironment()

	abs, err := filepath.Abs(".env")
	require.NoError(t, err)
	require.Contains(t, loaded, abs)
	require.Equal(t, "from-file", os.Getenv("SOLMINT_ENV_TEST"))
	require.Equal(t, "from-shell", os.Getenv("SOLMINT_ENV_KEEP"))
}
