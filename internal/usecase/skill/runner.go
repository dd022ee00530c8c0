package skill

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/bkyoung/diffscope/internal/diff"
	"github.com/bkyoung/diffscope/internal/domain"
)

// DefaultFileConcurrency bounds how many files are analyzed at once.
// Hunks within a file always run sequentially so later hunks can build
// on earlier answers in the provider's cache.
const DefaultFileConcurrency = 5

// RunnerOptions tunes a run. Zero values fall back to defaults.
type RunnerOptions struct {
	Model           string
	ReformatModel   string // model for the JSON recovery pass; empty disables it
	MaxTurns        int
	FileConcurrency int
	ContextLines    int
	TokenBudget     int // per-hunk prompt budget; 0 means unlimited
}

// RunnerDeps captures the outbound dependencies for a run.
type RunnerDeps struct {
	Client      AnalysisClient
	Reformatter AnalysisClient  // Optional: cheaper client for the recovery pass
	Files       diff.FileReader // Optional: enables surrounding-context expansion
	Listener    ProgressListener
	Logger      Logger         // Optional
	Estimator   TokenEstimator // Optional: enables token-budget skipping
	Redactor    Redactor       // Optional: scrubs secrets before content is sent
}

// Runner executes one skill against a set of file changes.
type Runner struct {
	opts RunnerOptions
	deps RunnerDeps
}

// NewRunner wires a runner, applying defaults for unset options.
func NewRunner(opts RunnerOptions, deps RunnerDeps) (*Runner, error) {
	if deps.Client == nil {
		return nil, errors.New("analysis client is required")
	}
	if opts.FileConcurrency <= 0 {
		opts.FileConcurrency = DefaultFileConcurrency
	}
	if opts.ContextLines <= 0 {
		opts.ContextLines = diff.DefaultContextLines
	}
	if deps.Listener == nil {
		deps.Listener = NopListener{}
	}
	return &Runner{opts: opts, deps: deps}, nil
}

// fileResult holds everything one file contributed. Results are indexed
// by the file's position in the input so aggregation order is stable no
// matter which worker finishes first.
type fileResult struct {
	findings    []domain.Finding
	skipped     []domain.SkippedFile
	failedHunks int
	usage       domain.UsageStats
}

// Run analyzes every hunk of every change and aggregates the outcome.
//
// Files are processed by a bounded worker pool; hunks within a file run
// strictly in order. A failed hunk contributes zero findings and bumps
// the failed-hunk counter, never aborting the run. Cancellation stops
// new work and returns the partial report without error.
func (r *Runner) Run(ctx context.Context, sk Skill, changes []domain.FileChange) (domain.SkillReport, error) {
	if len(changes) == 0 {
		return domain.SkillReport{}, errors.New("no file changes to analyze")
	}

	start := time.Now()

	var expander *diff.Expander
	if r.deps.Files != nil {
		expander = diff.NewExpander(r.deps.Files, r.opts.ContextLines)
	}

	results := make([]fileResult, len(changes))
	sem := make(chan struct{}, r.opts.FileConcurrency)
	var wg sync.WaitGroup

	for i, change := range changes {
		if ctx.Err() != nil {
			break // partial report; remaining files never start
		}

		if change.IsBinary {
			results[i].skipped = append(results[i].skipped, domain.SkippedFile{
				Path:   change.Filename,
				Reason: "binary file",
			})
			continue
		}

		wg.Add(1)
		sem <- struct{}{}
		go func(i int, change domain.FileChange) {
			defer func() {
				<-sem
				wg.Done()
			}()
			results[i] = r.analyzeFile(ctx, sk, change, expander)
		}(i, change)
	}

	wg.Wait()

	var findings []domain.Finding
	var skipped []domain.SkippedFile
	var usage domain.UsageStats
	failedHunks := 0
	for _, res := range results {
		findings = append(findings, res.findings...)
		skipped = append(skipped, res.skipped...)
		usage.Add(res.usage)
		failedHunks += res.failedHunks
	}

	findings = domain.DeduplicateFindings(findings)

	return domain.SkillReport{
		Skill:        sk.Name,
		Summary:      buildSummary(sk.Name, findings),
		Findings:     findings,
		Usage:        &usage,
		Duration:     time.Since(start),
		SkippedFiles: skipped,
		FailedHunks:  failedHunks,
	}, nil
}

// analyzeFile runs every hunk of one file sequentially.
func (r *Runner) analyzeFile(ctx context.Context, sk Skill, change domain.FileChange, expander *diff.Expander) fileResult {
	var res fileResult

	hunks := diff.ParseFilePatch(change.Filename, change.Patch)
	r.deps.Listener.FileStarted(change.Filename, len(hunks))

	for idx, hunk := range hunks {
		if ctx.Err() != nil {
			break
		}
		r.deps.Listener.HunkStarted(change.Filename, idx, len(hunks))

		content := r.buildContent(change, hunk, expander)
		if r.deps.Redactor != nil {
			content = r.deps.Redactor.Redact(content)
		}

		if r.opts.TokenBudget > 0 && r.deps.Estimator != nil {
			if tokens := r.deps.Estimator.EstimateTokens(sk.Instructions + content); tokens > r.opts.TokenBudget {
				res.skipped = append(res.skipped, domain.SkippedFile{
					Path:   change.Filename,
					Reason: fmt.Sprintf("hunk %d exceeds token budget (%d > %d)", idx+1, tokens, r.opts.TokenBudget),
				})
				r.deps.Listener.HunkFinished(change.Filename, idx, 0, nil)
				continue
			}
		}

		callStart := time.Now()
		found, callUsage, err := r.analyzeHunk(ctx, sk, content)
		res.usage.Add(callUsage)
		if errors.Is(err, context.Canceled) {
			// Cancellation is not a hunk failure; stop and report what we have.
			r.deps.Listener.HunkFinished(change.Filename, idx, 0, err)
			break
		}
		if err != nil {
			res.failedHunks++
			r.logWarning(ctx, "hunk analysis failed", map[string]interface{}{
				"file":  change.Filename,
				"hunk":  idx + 1,
				"error": err.Error(),
			})
			r.deps.Listener.HunkFinished(change.Filename, idx, 0, err)
			continue
		}

		elapsed := time.Since(callStart)
		for j := range found {
			// Findings always land on the file that produced the hunk;
			// whatever path the capability reported is discarded.
			if found[j].Location != nil {
				found[j].Location.Path = change.Filename
			}
			found[j].Elapsed = elapsed
		}
		res.findings = append(res.findings, found...)
		r.deps.Listener.HunkFinished(change.Filename, idx, len(found), nil)
	}

	r.deps.Listener.FileFinished(change.Filename, len(res.findings))
	return res
}

// analyzeHunk performs one analysis call plus, when the response holds
// findings JSON that won't parse, one recovery call to reformat it.
func (r *Runner) analyzeHunk(ctx context.Context, sk Skill, content string) ([]domain.Finding, domain.UsageStats, error) {
	var usage domain.UsageStats

	result, err := r.deps.Client.Analyze(ctx, AnalysisRequest{
		Instructions: sk.Instructions,
		Content:      content,
		Model:        r.opts.Model,
		MaxTurns:     r.opts.MaxTurns,
	})
	usage.Add(result.Usage)
	if err != nil {
		return nil, usage, err
	}

	switch result.Status {
	case StatusError:
		return nil, usage, errors.New("analysis reported failure")
	case StatusAborted:
		return nil, usage, context.Canceled
	}
	// StatusMaxTurns still gets an extraction attempt; the capability may
	// have emitted findings before running out of turns.

	findings, extractErr := ExtractFindings(result.Text)
	if extractErr == nil {
		return findings, usage, nil
	}

	if r.reformatter() != nil && MentionsFindings(result.Text) {
		reformatted, reformatUsage, rerr := r.reformat(ctx, result.Text)
		usage.Add(reformatUsage)
		if rerr == nil {
			if findings, err := ExtractFindings(reformatted); err == nil {
				return findings, usage, nil
			}
		}
	}

	return nil, usage, extractErr
}

func (r *Runner) reformatter() AnalysisClient {
	if r.deps.Reformatter != nil {
		return r.deps.Reformatter
	}
	if r.opts.ReformatModel != "" {
		return r.deps.Client
	}
	return nil
}

// reformat asks a (usually cheaper) model to re-emit malformed findings
// output as strict JSON.
func (r *Runner) reformat(ctx context.Context, text string) (string, domain.UsageStats, error) {
	client := r.reformatter()
	result, err := client.Analyze(ctx, AnalysisRequest{
		Instructions: reformatInstructions,
		Content:      text,
		Model:        r.opts.ReformatModel,
		MaxTurns:     1,
	})
	if err != nil {
		return "", result.Usage, err
	}
	if result.Status == StatusError {
		return "", result.Usage, errors.New("reformat pass reported failure")
	}
	return result.Text, result.Usage, nil
}

const reformatInstructions = `The following text contains code-review findings but is not valid JSON.
Re-emit it as a single JSON object of the form {"findings": [...]} with no
other text. Each finding keeps its id, severity, confidence, title,
description, location and suggestedFix fields exactly as written.`

// buildContent renders one hunk, plus surrounding file context when a
// reader is available, into the prompt payload.
func (r *Runner) buildContent(change domain.FileChange, hunk diff.Hunk, expander *diff.Expander) string {
	var b strings.Builder
	fmt.Fprintf(&b, "File: %s (%s)\n", change.Filename, change.Status)

	if expander != nil {
		hwc := expander.Expand(hunk)
		if len(hwc.Before) > 0 {
			b.WriteString("\nContext before:\n")
			for _, line := range hwc.Before {
				fmt.Fprintf(&b, "%d: %s\n", line.Number, line.Text)
			}
		}
		writeHunk(&b, hunk)
		if len(hwc.After) > 0 {
			b.WriteString("\nContext after:\n")
			for _, line := range hwc.After {
				fmt.Fprintf(&b, "%d: %s\n", line.Number, line.Text)
			}
		}
		return b.String()
	}

	writeHunk(&b, hunk)
	return b.String()
}

func writeHunk(b *strings.Builder, hunk diff.Hunk) {
	fmt.Fprintf(b, "\nHunk @@ -%d,%d +%d,%d @@\n", hunk.OldStart, hunk.OldCount, hunk.NewStart, hunk.NewCount)
	for _, line := range hunk.Lines {
		switch line.Kind {
		case diff.LineAdded:
			b.WriteString("+" + line.Text + "\n")
		case diff.LineRemoved:
			b.WriteString("-" + line.Text + "\n")
		default:
			b.WriteString(" " + line.Text + "\n")
		}
	}
}

// buildSummary renders the one-line result string shown to users.
func buildSummary(name string, findings []domain.Finding) string {
	if len(findings) == 0 {
		return fmt.Sprintf("%s: No issues found", name)
	}
	noun := "issues"
	if len(findings) == 1 {
		noun = "issue"
	}
	counts := domain.FormatSeverityCounts(findings)
	return fmt.Sprintf("%s: Found %d %s (%s)", name, len(findings), noun, counts)
}

func (r *Runner) logWarning(ctx context.Context, msg string, fields map[string]interface{}) {
	if r.deps.Logger != nil {
		r.deps.Logger.LogWarning(ctx, msg, fields)
	}
}
