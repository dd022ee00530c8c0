// Package skill orchestrates the analysis of diff hunks by a configured
// skill: each changed file's hunks are sent, in order, to an analysis
// capability, and the structured findings in the responses are collected
// into a single report.
package skill

import (
	"context"

	"github.com/bkyoung/diffscope/internal/domain"
)

// Skill describes one analysis profile: a name used in summaries and
// the instructions handed to the analysis capability.
type Skill struct {
	Name         string
	Instructions string

	// ResourceRoot optionally points at a directory of supporting
	// material (checklists, rule files) the capability may read through
	// its tools.
	ResourceRoot string
}

// AnalysisStatus tags how an analysis call terminated.
type AnalysisStatus string

const (
	// StatusOK means the capability finished normally.
	StatusOK AnalysisStatus = "ok"
	// StatusMaxTurns means the turn budget ran out; the text so far may
	// still contain usable findings.
	StatusMaxTurns AnalysisStatus = "max_turns"
	// StatusAborted means the call was cancelled.
	StatusAborted AnalysisStatus = "aborted"
	// StatusError means the capability itself reported failure.
	StatusError AnalysisStatus = "error"
)

// AnalysisRequest is one unit of work for the analysis capability.
type AnalysisRequest struct {
	Instructions string
	Content      string
	Model        string
	MaxTurns     int
}

// AnalysisResult is the terminal outcome of one analysis call.
type AnalysisResult struct {
	Status AnalysisStatus
	Text   string
	Usage  domain.UsageStats
}

// AnalysisClient defines the outbound port to the analysis capability.
type AnalysisClient interface {
	Analyze(ctx context.Context, req AnalysisRequest) (AnalysisResult, error)
}

// TokenEstimator estimates the token footprint of a prompt so oversized
// hunks can be skipped before they are sent.
type TokenEstimator interface {
	EstimateTokens(text string) int
}

// Redactor scrubs secrets from prompt payloads before they leave the
// process.
type Redactor interface {
	Redact(text string) string
}

// Logger defines the outbound port for structured warnings and info.
type Logger interface {
	LogInfo(ctx context.Context, msg string, fields map[string]interface{})
	LogWarning(ctx context.Context, msg string, fields map[string]interface{})
}

// ProgressListener receives lifecycle callbacks during a run. Callbacks
// may arrive concurrently for different files; implementations must be
// safe for concurrent use.
type ProgressListener interface {
	FileStarted(path string, hunks int)
	HunkStarted(path string, index, total int)
	HunkFinished(path string, index, findings int, err error)
	FileFinished(path string, findings int)
}

// NopListener discards all progress callbacks.
type NopListener struct{}

func (NopListener) FileStarted(string, int)              {}
func (NopListener) HunkStarted(string, int, int)         {}
func (NopListener) HunkFinished(string, int, int, error) {}
func (NopListener) FileFinished(string, int)             {}
