package store

import (
	"context"
	"time"
)

// Store persists run history: one row per skill run plus its findings.
// Persistence is best-effort; callers treat errors as warnings.
type Store interface {
	SaveRun(ctx context.Context, run Run) error
	SaveFindings(ctx context.Context, findings []FindingRecord) error
	GetRun(ctx context.Context, runID string) (Run, error)
	ListRuns(ctx context.Context, limit int) ([]Run, error)
	FindingsByRun(ctx context.Context, runID string) ([]FindingRecord, error)
	Close() error
}

// Run records one skill execution over a diff.
type Run struct {
	RunID        string
	Timestamp    time.Time
	Skill        string
	Model        string
	Repository   string
	BaseRef      string
	TargetRef    string
	Summary      string
	InputTokens  int
	OutputTokens int
	CostUSD      float64
	DurationMS   int64
	FailedHunks  int
	SkippedFiles int
}

// FindingRecord is one persisted finding, flattened for storage.
type FindingRecord struct {
	FindingID   string
	RunID       string
	ContentHash string
	File        string
	LineStart   int
	LineEnd     int
	Severity    string
	Title       string
	Description string
	FixDiff     string
}
