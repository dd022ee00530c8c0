package diff

import "strings"

// DefaultContextLines is how many real file lines are attached on each
// side of a hunk when no explicit count is configured.
const DefaultContextLines = 20

// FileReader reads files relative to the repository root.
type FileReader interface {
	ReadFile(path string) ([]byte, error)
}

// ContextLine is one live file line with its absolute (1-based) number.
type ContextLine struct {
	Number int
	Text   string
}

// HunkWithContext pairs a hunk with the real file lines immediately
// surrounding its new-line range, giving the analysis capability enough
// code to judge correctness.
type HunkWithContext struct {
	Hunk   Hunk
	Before []ContextLine
	After  []ContextLine
}

// Expander enriches hunks with surrounding file content.
type Expander struct {
	reader FileReader
	lines  int
}

// NewExpander creates an Expander reading through the given FileReader.
// A non-positive context count falls back to DefaultContextLines.
func NewExpander(reader FileReader, contextLines int) *Expander {
	if contextLines <= 0 {
		contextLines = DefaultContextLines
	}
	return &Expander{reader: reader, lines: contextLines}
}

// Expand attaches up to e.lines real file lines before and after the
// hunk's new-line range. Reads are best-effort: a missing or unreadable
// file yields empty context rather than an error, and line ranges clamp
// to [1, file length].
func (e *Expander) Expand(hunk Hunk) HunkWithContext {
	out := HunkWithContext{Hunk: hunk}

	content, err := e.reader.ReadFile(hunk.Filename)
	if err != nil {
		return out
	}

	fileLines := splitLines(string(content))
	total := len(fileLines)
	if total == 0 {
		return out
	}

	beforeStart := hunk.NewStart - e.lines
	if beforeStart < 1 {
		beforeStart = 1
	}
	for n := beforeStart; n < hunk.NewStart && n <= total; n++ {
		out.Before = append(out.Before, ContextLine{Number: n, Text: fileLines[n-1]})
	}

	afterStart := hunk.NewRangeEnd() + 1
	afterEnd := afterStart + e.lines - 1
	if afterEnd > total {
		afterEnd = total
	}
	for n := afterStart; n <= afterEnd; n++ {
		if n < 1 {
			continue
		}
		out.After = append(out.After, ContextLine{Number: n, Text: fileLines[n-1]})
	}

	return out
}

// splitLines splits file content into lines without treating a trailing
// newline as an extra empty line.
func splitLines(content string) []string {
	if content == "" {
		return nil
	}
	content = strings.TrimSuffix(content, "\n")
	return strings.Split(content, "\n")
}
