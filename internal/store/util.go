package store

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/bkyoung/diffscope/internal/domain"
)

// GenerateRunID creates a unique, time-ordered run ID.
// Format: run-<timestamp>-<hash>, e.g. run-20260824T143052Z-a3f9c2.
func GenerateRunID(timestamp time.Time, skill, repository string) string {
	ts := timestamp.UTC().Format("20060102T150405Z")

	input := fmt.Sprintf("%s|%s|%d", skill, repository, timestamp.UnixNano())
	hash := sha256.Sum256([]byte(input))
	shortHash := hex.EncodeToString(hash[:3])

	return fmt.Sprintf("run-%s-%s", ts, shortHash)
}

// GenerateFindingID creates a unique ID for a finding within a run.
// The index is zero-padded so lexical order matches report order.
func GenerateFindingID(runID string, index int) string {
	return fmt.Sprintf("finding-%s-%04d", runID, index)
}

// RunFromReport flattens a skill report into a run row.
func RunFromReport(runID, repository, baseRef, targetRef, model string, timestamp time.Time, report domain.SkillReport) Run {
	run := Run{
		RunID:        runID,
		Timestamp:    timestamp,
		Skill:        report.Skill,
		Model:        model,
		Repository:   repository,
		BaseRef:      baseRef,
		TargetRef:    targetRef,
		Summary:      report.Summary,
		DurationMS:   report.Duration.Milliseconds(),
		FailedHunks:  report.FailedHunks,
		SkippedFiles: len(report.SkippedFiles),
	}
	if report.Usage != nil {
		run.InputTokens = report.Usage.InputTokens
		run.OutputTokens = report.Usage.OutputTokens
		run.CostUSD = report.Usage.CostUSD
	}
	return run
}

// RecordsFromReport flattens the report's findings into storage records.
func RecordsFromReport(runID string, report domain.SkillReport) []FindingRecord {
	records := make([]FindingRecord, 0, len(report.Findings))
	for i, f := range report.Findings {
		record := FindingRecord{
			FindingID:   GenerateFindingID(runID, i),
			RunID:       runID,
			ContentHash: f.ContentHash(),
			Severity:    string(f.Severity),
			Title:       f.Title,
			Description: f.Description,
		}
		if f.Location != nil {
			record.File = f.Location.Path
			record.LineStart = f.Location.StartLine
			record.LineEnd = f.Location.EndLine
		}
		if f.SuggestedFix != nil {
			record.FixDiff = f.SuggestedFix.Diff
		}
		records = append(records, record)
	}
	return records
}
