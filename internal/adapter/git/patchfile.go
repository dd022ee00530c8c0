package git

import (
	"fmt"
	"io"
	"strings"

	"github.com/bluekeyes/go-gitdiff/gitdiff"

	"github.com/bkyoung/diffscope/internal/domain"
)

// ParsePatchStream splits a raw multi-file patch stream (git diff or
// format-patch output) into per-file changes. This is the second diff
// source next to the repository engine: it lets a review run on a
// patch somebody handed us without the commits behind it.
func ParsePatchStream(r io.Reader) ([]domain.FileChange, error) {
	files, _, err := gitdiff.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse patch stream: %w", err)
	}

	changes := make([]domain.FileChange, 0, len(files))
	for _, f := range files {
		changes = append(changes, fileChangeFrom(f))
	}
	return changes, nil
}

func fileChangeFrom(f *gitdiff.File) domain.FileChange {
	change := domain.FileChange{
		Filename: f.NewName,
		Status:   domain.FileStatusModified,
		IsBinary: f.IsBinary,
	}

	switch {
	case f.IsNew:
		change.Status = domain.FileStatusAdded
	case f.IsDelete:
		change.Status = domain.FileStatusRemoved
		change.Filename = f.OldName
	case f.IsRename:
		change.Status = domain.FileStatusRenamed
		change.OldPath = f.OldName
	}

	if change.Filename == "" {
		change.Filename = f.OldName
	}

	var patch strings.Builder
	for _, frag := range f.TextFragments {
		fmt.Fprintf(&patch, "@@ -%d,%d +%d,%d @@\n",
			frag.OldPosition, frag.OldLines, frag.NewPosition, frag.NewLines)
		for _, line := range frag.Lines {
			switch line.Op {
			case gitdiff.OpAdd:
				change.Additions++
				patch.WriteString("+")
			case gitdiff.OpDelete:
				change.Deletions++
				patch.WriteString("-")
			default:
				patch.WriteString(" ")
			}
			patch.WriteString(strings.TrimSuffix(line.Line, "\n"))
			patch.WriteString("\n")
		}
	}
	change.Patch = patch.String()

	return change
}
