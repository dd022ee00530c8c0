// Package render draws run progress and finished reports on the console.
package render

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/bkyoung/diffscope/internal/domain"
	"github.com/bkyoung/diffscope/internal/usecase/skill"
)

// ConsoleListener prints per-file progress as the run advances.
// Safe for concurrent use; the runner calls it from worker goroutines.
type ConsoleListener struct {
	mu  sync.Mutex
	out io.Writer
}

// NewConsoleListener creates a progress listener writing to out.
func NewConsoleListener(out io.Writer) *ConsoleListener {
	return &ConsoleListener{out: out}
}

func (c *ConsoleListener) FileStarted(path string, hunks int) {
	c.printf("%s %s (%d hunks)\n", dimStyle.Render("analyzing"), path, hunks)
}

func (c *ConsoleListener) HunkStarted(path string, index, total int) {
	// Per-hunk start is too chatty for the console; the finish line
	// carries the useful signal.
}

func (c *ConsoleListener) HunkFinished(path string, index, findings int, err error) {
	if err != nil {
		c.printf("  %s %s hunk %d: %v\n", warnStyle.Render("!"), path, index+1, err)
		return
	}
	if findings > 0 {
		c.printf("  %s %s hunk %d: %d finding(s)\n", warnStyle.Render("*"), path, index+1, findings)
	}
}

func (c *ConsoleListener) FileFinished(path string, findings int) {
	if findings == 0 {
		c.printf("%s %s\n", okStyle.Render("clean"), path)
		return
	}
	c.printf("%s %s: %d finding(s)\n", warnStyle.Render("done"), path, findings)
}

func (c *ConsoleListener) printf(format string, args ...interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, format, args...)
}

var _ skill.ProgressListener = (*ConsoleListener)(nil)

// Report renders a finished skill report for the console.
func Report(report domain.SkillReport) string {
	var b strings.Builder

	b.WriteString(headerStyle.Render(report.Summary))
	b.WriteString("\n")

	for _, f := range report.Findings {
		tag := severityStyle(f.Severity).Render(fmt.Sprintf("[%s]", f.Severity))
		b.WriteString(fmt.Sprintf("\n%s %s\n", tag, f.Title))
		if f.Location != nil {
			loc := f.Location.Path
			if f.Location.StartLine > 0 {
				loc = fmt.Sprintf("%s:%d", loc, f.Location.StartLine)
			}
			b.WriteString(dimStyle.Render("  at "+loc) + "\n")
		}
		if f.Description != "" {
			b.WriteString("  " + f.Description + "\n")
		}
		if f.SuggestedFix != nil {
			b.WriteString(okStyle.Render("  fix available: "+f.SuggestedFix.Description) + "\n")
		}
	}

	if len(report.SkippedFiles) > 0 {
		b.WriteString("\n" + dimStyle.Render("skipped:") + "\n")
		for _, s := range report.SkippedFiles {
			b.WriteString(dimStyle.Render(fmt.Sprintf("  %s (%s)", s.Path, s.Reason)) + "\n")
		}
	}

	if report.FailedHunks > 0 {
		b.WriteString(warnStyle.Render(fmt.Sprintf("\n%d hunk(s) failed", report.FailedHunks)) + "\n")
	}

	b.WriteString(dimStyle.Render(footer(report)) + "\n")
	return b.String()
}

func footer(report domain.SkillReport) string {
	parts := []string{fmt.Sprintf("duration %s", report.Duration.Round(time.Millisecond))}
	if report.Usage != nil {
		parts = append(parts,
			fmt.Sprintf("tokens %d in / %d out", report.Usage.InputTokens, report.Usage.OutputTokens),
			fmt.Sprintf("cost $%.4f", report.Usage.CostUSD),
		)
	}
	return "\n" + strings.Join(parts, ", ")
}
