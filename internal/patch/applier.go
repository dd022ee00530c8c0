// Package patch applies suggested-fix diffs back onto working files.
//
// Application is two-phase: every edit position is computed against an
// immutable snapshot of the file, hunks are sorted by old-start
// descending, then applied strictly in that order so earlier edits are
// unaffected by line shifts from later ones. The file on disk is written
// once, only after every hunk verified.
package patch

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/bkyoung/diffscope/internal/diff"
)

// ErrNoHunks indicates the fix diff contained no parseable hunks.
var ErrNoHunks = errors.New("no valid hunks in diff")

// ContextMismatchError reports that the file content no longer matches
// what the diff expects, naming the offending line.
type ContextMismatchError struct {
	Path     string
	Line     int
	Expected string
	Actual   string
}

func (e *ContextMismatchError) Error() string {
	return fmt.Sprintf("%s: context mismatch at line %d: expected %q, found %q",
		e.Path, e.Line, e.Expected, e.Actual)
}

// Apply applies a unified-diff fix to the file at path. Application is
// all-or-nothing: on any error the file on disk is untouched.
func Apply(path, diffText string) error {
	hunks := diff.ParseFilePatch(path, diffText)
	if len(hunks) == 0 {
		return fmt.Errorf("%s: %w", path, ErrNoHunks)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	text := string(content)
	trailingNewline := strings.HasSuffix(text, "\n")
	var lines []string
	if text != "" {
		lines = strings.Split(strings.TrimSuffix(text, "\n"), "\n")
	}

	// Bottom-to-top so earlier edits keep their line numbers.
	sort.Slice(hunks, func(i, j int) bool {
		return hunks[i].OldStart > hunks[j].OldStart
	})

	for _, hunk := range hunks {
		lines, err = spliceHunk(path, lines, hunk)
		if err != nil {
			return err
		}
	}

	out := strings.Join(lines, "\n")
	if trailingNewline && out != "" {
		out += "\n"
	}

	perm := os.FileMode(0o644)
	if info, statErr := os.Stat(path); statErr == nil {
		perm = info.Mode().Perm()
	}
	if err := os.WriteFile(path, []byte(out), perm); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// spliceHunk verifies the hunk's expected old lines against the snapshot
// and returns the snapshot with the replacement spliced in.
func spliceHunk(path string, lines []string, hunk diff.Hunk) ([]string, error) {
	oldLines := hunk.OldLines()
	start := hunk.OldStart - 1
	if start < 0 {
		start = 0
	}

	for i, expected := range oldLines {
		idx := start + i
		actual := ""
		if idx < len(lines) {
			actual = lines[idx]
		} else {
			return nil, &ContextMismatchError{
				Path:     path,
				Line:     idx + 1,
				Expected: expected,
				Actual:   "<end of file>",
			}
		}
		if actual != expected {
			return nil, &ContextMismatchError{
				Path:     path,
				Line:     idx + 1,
				Expected: expected,
				Actual:   actual,
			}
		}
	}

	newLines := hunk.NewLines()
	out := make([]string, 0, len(lines)-len(oldLines)+len(newLines))
	out = append(out, lines[:start]...)
	out = append(out, newLines...)
	out = append(out, lines[start+len(oldLines):]...)
	return out, nil
}
