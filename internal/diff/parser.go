package diff

import (
	"regexp"
	"strconv"
	"strings"
)

// LineKind classifies a single line inside a hunk.
type LineKind int

const (
	// LineContext is an unchanged line (leading space, or blank).
	LineContext LineKind = iota
	// LineAdded is an inserted line (leading '+').
	LineAdded
	// LineRemoved is a deleted line (leading '-').
	LineRemoved
)

// Line is one classified line of a hunk, without its prefix character.
type Line struct {
	Kind LineKind
	Text string
}

// Hunk is a contiguous block of changes from a unified diff, anchored to
// old-file and new-file line ranges.
type Hunk struct {
	Filename string
	OldStart int
	OldCount int
	NewStart int
	NewCount int
	Lines    []Line
}

// hunkHeaderPattern matches "@@ -oldStart[,oldCount] +newStart[,newCount] @@".
var hunkHeaderPattern = regexp.MustCompile(`^@@ -(\d+)(?:,(\d+))? \+(\d+)(?:,(\d+))? @@`)

// ParseFilePatch splits one file's unified-diff text into ordered hunks.
//
// Lines after a recognized hunk header are classified as context (leading
// space or blank), added ('+'), or removed ('-'). Text outside a recognized
// header is ignored, so git file headers and commentary pass through
// harmlessly. A malformed "@@" header drops only that hunk: its body lines
// are discarded until the next valid header. Zero recognized headers yield
// zero hunks and the file is treated as unchanged for analysis.
func ParseFilePatch(filename, patch string) []Hunk {
	if patch == "" {
		return nil
	}

	var hunks []Hunk
	var current *Hunk

	for _, raw := range strings.Split(patch, "\n") {
		if strings.HasPrefix(raw, "@@") {
			if current != nil {
				hunks = append(hunks, *current)
			}
			hunk, ok := parseHunkHeader(filename, raw)
			if !ok {
				// Malformed header: fail this hunk only.
				current = nil
				continue
			}
			current = &hunk
			continue
		}

		if current == nil {
			continue
		}

		// "\ No newline at end of file" markers carry no content.
		if strings.HasPrefix(raw, "\\ ") {
			continue
		}

		switch {
		case strings.HasPrefix(raw, "+"):
			current.Lines = append(current.Lines, Line{Kind: LineAdded, Text: raw[1:]})
		case strings.HasPrefix(raw, "-"):
			current.Lines = append(current.Lines, Line{Kind: LineRemoved, Text: raw[1:]})
		case strings.HasPrefix(raw, " "):
			current.Lines = append(current.Lines, Line{Kind: LineContext, Text: raw[1:]})
		case raw == "":
			// A blank line inside a hunk is context.
			current.Lines = append(current.Lines, Line{Kind: LineContext, Text: ""})
		default:
			// Unprefixed text inside a hunk (e.g. a stray file header)
			// ends the hunk body.
		}
	}

	if current != nil {
		hunks = append(hunks, *current)
	}

	return hunks
}

func parseHunkHeader(filename, line string) (Hunk, bool) {
	m := hunkHeaderPattern.FindStringSubmatch(line)
	if m == nil {
		return Hunk{}, false
	}

	oldStart, _ := strconv.Atoi(m[1])
	newStart, _ := strconv.Atoi(m[3])
	oldCount := 1
	if m[2] != "" {
		oldCount, _ = strconv.Atoi(m[2])
	}
	newCount := 1
	if m[4] != "" {
		newCount, _ = strconv.Atoi(m[4])
	}

	if newStart < 1 || newCount < 0 {
		return Hunk{}, false
	}

	return Hunk{
		Filename: filename,
		OldStart: oldStart,
		OldCount: oldCount,
		NewStart: newStart,
		NewCount: newCount,
	}, true
}

// NewRangeEnd returns the last new-file line covered by the hunk.
// A zero-count hunk (pure deletion) ends before it starts.
func (h Hunk) NewRangeEnd() int {
	if h.NewCount == 0 {
		return h.NewStart - 1
	}
	return h.NewStart + h.NewCount - 1
}

// OldLines reconstructs the expected old-file line sequence of the hunk
// (context and removed lines, in order).
func (h Hunk) OldLines() []string {
	var out []string
	for _, l := range h.Lines {
		if l.Kind == LineContext || l.Kind == LineRemoved {
			out = append(out, l.Text)
		}
	}
	return out
}

// NewLines reconstructs the replacement line sequence of the hunk
// (context and added lines, in order).
func (h Hunk) NewLines() []string {
	var out []string
	for _, l := range h.Lines {
		if l.Kind == LineContext || l.Kind == LineAdded {
			out = append(out, l.Text)
		}
	}
	return out
}
