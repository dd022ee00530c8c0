package patch

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestApplySingleHunk(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "db.ts", "a\nb\nunsafe\nd\n")

	fix := "@@ -2,2 +2,2 @@\n b\n-unsafe\n+safe\n"
	require.NoError(t, Apply(path, fix))

	assert.Equal(t, "a\nb\nsafe\nd\n", readFile(t, path))
}

func TestApplyMultipleHunksBottomToTop(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "f.go", "one\ntwo\nthree\nfour\nfive\nsix\n")

	// First hunk grows the file; applying bottom-to-top means the second
	// hunk's line numbers stay valid.
	fix := "@@ -1,1 +1,2 @@\n-one\n+uno\n+extra\n" +
		"@@ -5,1 +6,1 @@\n-five\n+cinco\n"
	require.NoError(t, Apply(path, fix))

	assert.Equal(t, "uno\nextra\ntwo\nthree\nfour\ncinco\nsix\n", readFile(t, path))
}

func TestApplyContextMismatchLeavesFileUntouched(t *testing.T) {
	dir := t.TempDir()
	original := "a\nb\nc\n"
	path := writeFile(t, dir, "f.go", original)

	fix := "@@ -2,1 +2,1 @@\n-not b\n+replacement\n"
	err := Apply(path, fix)
	require.Error(t, err)

	var mismatch *ContextMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, 2, mismatch.Line)
	assert.Equal(t, "not b", mismatch.Expected)
	assert.Equal(t, "b", mismatch.Actual)

	assert.Equal(t, original, readFile(t, path), "file must be byte-identical after a failed apply")
}

func TestApplyMismatchInSecondHunkIsAtomic(t *testing.T) {
	dir := t.TempDir()
	original := "one\ntwo\nthree\nfour\n"
	path := writeFile(t, dir, "f.go", original)

	// Descending order applies the line-4 hunk first; the line-1 hunk
	// then mismatches and the whole apply must roll back.
	fix := "@@ -4,1 +4,1 @@\n-four\n+quatro\n" +
		"@@ -1,1 +1,1 @@\n-wrong\n+uno\n"
	require.Error(t, Apply(path, fix))
	assert.Equal(t, original, readFile(t, path))
}

func TestApplyTwiceFailsCleanly(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "f.go", "a\nold\nc\n")
	fix := "@@ -2,1 +2,1 @@\n-old\n+new\n"

	require.NoError(t, Apply(path, fix))
	after := readFile(t, path)

	err := Apply(path, fix)
	require.Error(t, err, "re-applying the same fix must fail, not corrupt")
	var mismatch *ContextMismatchError
	assert.ErrorAs(t, err, &mismatch)
	assert.Equal(t, after, readFile(t, path))
}

func TestApplyNoHunks(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "f.go", "a\n")

	err := Apply(path, "this is not a diff")
	assert.ErrorIs(t, err, ErrNoHunks)
}

func TestApplyMissingFile(t *testing.T) {
	err := Apply(filepath.Join(t.TempDir(), "missing.go"), "@@ -1,1 +1,1 @@\n-a\n+b\n")
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestApplyBeyondEndOfFile(t *testing.T) {
	dir := t.TempDir()
	original := "a\nb\n"
	path := writeFile(t, dir, "f.go", original)

	err := Apply(path, "@@ -9,1 +9,1 @@\n-z\n+y\n")
	var mismatch *ContextMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, "<end of file>", mismatch.Actual)
	assert.Equal(t, original, readFile(t, path))
}

func TestApplyPureAddition(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "f.go", "a\nb\n")

	// Insert after line 1 with one context line.
	fix := "@@ -1,1 +1,2 @@\n a\n+inserted\n"
	require.NoError(t, Apply(path, fix))
	assert.Equal(t, "a\ninserted\nb\n", readFile(t, path))
}
