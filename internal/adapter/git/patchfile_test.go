package git

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bkyoung/diffscope/internal/diff"
	"github.com/bkyoung/diffscope/internal/domain"
)

const multiFilePatch = `diff --git a/src/db.ts b/src/db.ts
index 1111111..2222222 100644
--- a/src/db.ts
+++ b/src/db.ts
@@ -40,2 +40,2 @@
 const q = buildQuery()
-exec(q + input)
+exec(q, [input])
diff --git a/src/new.ts b/src/new.ts
new file mode 100644
index 0000000..3333333
--- /dev/null
+++ b/src/new.ts
@@ -0,0 +1,2 @@
+export const a = 1
+export const b = 2
diff --git a/src/old.ts b/src/old.ts
deleted file mode 100644
index 4444444..0000000
--- a/src/old.ts
+++ /dev/null
@@ -1,1 +0,0 @@
-gone
`

func TestParsePatchStream(t *testing.T) {
	changes, err := ParsePatchStream(strings.NewReader(multiFilePatch))
	require.NoError(t, err)
	require.Len(t, changes, 3)

	modified := changes[0]
	assert.Equal(t, "src/db.ts", modified.Filename)
	assert.Equal(t, domain.FileStatusModified, modified.Status)
	assert.Equal(t, 1, modified.Additions)
	assert.Equal(t, 1, modified.Deletions)

	added := changes[1]
	assert.Equal(t, "src/new.ts", added.Filename)
	assert.Equal(t, domain.FileStatusAdded, added.Status)
	assert.Equal(t, 2, added.Additions)

	removed := changes[2]
	assert.Equal(t, "src/old.ts", removed.Filename)
	assert.Equal(t, domain.FileStatusRemoved, removed.Status)
	assert.Equal(t, 1, removed.Deletions)
}

func TestParsePatchStreamFeedsHunkParser(t *testing.T) {
	// The reconstructed per-file patch must round-trip through the hunk
	// parser the orchestrator uses.
	changes, err := ParsePatchStream(strings.NewReader(multiFilePatch))
	require.NoError(t, err)

	hunks := diff.ParseFilePatch(changes[0].Filename, changes[0].Patch)
	require.Len(t, hunks, 1)
	assert.Equal(t, 40, hunks[0].OldStart)
	assert.Equal(t, 40, hunks[0].NewStart)
	assert.Equal(t, []string{"const q = buildQuery()", "exec(q, [input])"}, hunks[0].NewLines())
}

func TestParsePatchStreamRename(t *testing.T) {
	renamePatch := `diff --git a/old/name.go b/new/name.go
similarity index 90%
rename from old/name.go
rename to new/name.go
index 1111111..2222222 100644
--- a/old/name.go
+++ b/new/name.go
@@ -1,1 +1,1 @@
-package old
+package renamed
`
	changes, err := ParsePatchStream(strings.NewReader(renamePatch))
	require.NoError(t, err)
	require.Len(t, changes, 1)

	assert.Equal(t, domain.FileStatusRenamed, changes[0].Status)
	assert.Equal(t, "new/name.go", changes[0].Filename)
	assert.Equal(t, "old/name.go", changes[0].OldPath)
}

func TestParsePatchStreamGarbage(t *testing.T) {
	changes, err := ParsePatchStream(strings.NewReader("this is not a patch"))
	require.NoError(t, err, "gitdiff skips leading junk")
	assert.Empty(t, changes)
}

func TestCountChanges(t *testing.T) {
	patch := "--- a/f\n+++ b/f\n@@ -1,2 +1,2 @@\n ctx\n-removed\n+added\n"
	additions, deletions := countChanges(patch)
	assert.Equal(t, 1, additions)
	assert.Equal(t, 1, deletions)
}

func TestIsBinaryPatch(t *testing.T) {
	assert.True(t, IsBinaryPatch("Binary files a/x.png and b/x.png differ"))
	assert.True(t, IsBinaryPatch("GIT binary patch\nliteral 100"))
	assert.False(t, IsBinaryPatch("@@ -1,1 +1,1 @@\n-a\n+b\n"))
}
