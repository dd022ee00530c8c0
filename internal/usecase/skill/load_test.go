package skill

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "security-review")
	require.NoError(t, os.Mkdir(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, InstructionsFile), []byte("Look for injection bugs.\n"), 0o644))

	sk, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "security-review", sk.Name)
	assert.Equal(t, "Look for injection bugs.", sk.Instructions)
	assert.Equal(t, dir, sk.ResourceRoot)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lint.md")
	require.NoError(t, os.WriteFile(path, []byte("Flag unclear names."), 0o644))

	sk, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "lint", sk.Name)
	assert.Equal(t, "Flag unclear names.", sk.Instructions)
	assert.Equal(t, dir, sk.ResourceRoot)
}

func TestLoadMissingPath(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestLoadDirectoryWithoutInstructions(t *testing.T) {
	_, err := Load(t.TempDir())
	assert.Error(t, err)
}

func TestLoadEmptyInstructions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.md")
	require.NoError(t, os.WriteFile(path, []byte("  \n"), 0o644))

	_, err := Load(path)
	assert.ErrorContains(t, err, "empty")
}
