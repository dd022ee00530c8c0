package render

import (
	"bytes"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/bkyoung/diffscope/internal/domain"
)

func TestConsoleListenerProgress(t *testing.T) {
	var buf bytes.Buffer
	l := NewConsoleListener(&buf)

	l.FileStarted("src/db.ts", 2)
	l.HunkFinished("src/db.ts", 0, 1, nil)
	l.HunkFinished("src/db.ts", 1, 0, nil)
	l.FileFinished("src/db.ts", 1)

	out := buf.String()
	assert.Contains(t, out, "src/db.ts (2 hunks)")
	assert.Contains(t, out, "hunk 1: 1 finding(s)")
	assert.NotContains(t, out, "hunk 2", "clean hunks stay quiet")
	assert.Contains(t, out, "src/db.ts: 1 finding(s)")
}

func TestConsoleListenerHunkError(t *testing.T) {
	var buf bytes.Buffer
	l := NewConsoleListener(&buf)

	l.HunkFinished("src/db.ts", 0, 0, errors.New("analysis failed"))
	assert.Contains(t, buf.String(), "hunk 1: analysis failed")
}

func TestConsoleListenerConcurrentUse(t *testing.T) {
	var buf bytes.Buffer
	l := NewConsoleListener(&buf)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			l.FileStarted("file", n)
			l.FileFinished("file", 0)
		}(i)
	}
	wg.Wait()
	// No assertion beyond the race detector: lines may interleave but
	// writes must not corrupt.
	assert.NotEmpty(t, buf.String())
}

func TestReportRendering(t *testing.T) {
	report := domain.SkillReport{
		Skill:   "security-review",
		Summary: "security-review: Found 2 issues (1 critical, 1 low)",
		Findings: []domain.Finding{
			{
				ID:          "sqli",
				Severity:    domain.SeverityCritical,
				Title:       "SQL injection",
				Description: "user input concatenated into query",
				Location:    &domain.Location{Path: "src/db.ts", StartLine: 42},
				SuggestedFix: &domain.SuggestedFix{
					Description: "use parameterized query",
					Diff:        "--- a/src/db.ts\n",
				},
			},
			{
				ID:       "naming",
				Severity: domain.SeverityLow,
				Title:    "unclear name",
			},
		},
		Usage:    &domain.UsageStats{InputTokens: 120, OutputTokens: 45, CostUSD: 0.0135},
		Duration: 2300 * time.Millisecond,
		SkippedFiles: []domain.SkippedFile{
			{Path: "logo.png", Reason: "binary file"},
		},
		FailedHunks: 1,
	}

	out := Report(report)

	assert.Contains(t, out, "Found 2 issues (1 critical, 1 low)")
	assert.Contains(t, out, "[critical]")
	assert.Contains(t, out, "SQL injection")
	assert.Contains(t, out, "src/db.ts:42")
	assert.Contains(t, out, "fix available: use parameterized query")
	assert.Contains(t, out, "logo.png (binary file)")
	assert.Contains(t, out, "1 hunk(s) failed")
	assert.Contains(t, out, "tokens 120 in / 45 out")
	assert.Contains(t, out, "cost $0.0135")
}

func TestReportNoFindings(t *testing.T) {
	report := domain.SkillReport{
		Skill:    "lint",
		Summary:  "lint: No issues found",
		Duration: time.Second,
	}

	out := Report(report)
	assert.Contains(t, out, "No issues found")
	assert.NotContains(t, out, "skipped:")
	assert.NotContains(t, out, "failed")
}
