// Package review runs one skill over a change set end to end: resolve
// the diff, execute the skill, reconcile previously posted comments,
// and persist run history.
package review

import (
	"context"
	"errors"
	"time"

	"github.com/bkyoung/diffscope/internal/domain"
	"github.com/bkyoung/diffscope/internal/reconcile"
	"github.com/bkyoung/diffscope/internal/store"
	"github.com/bkyoung/diffscope/internal/usecase/skill"
)

// DiffSource produces the file changes a review runs over. The service
// never computes diffs itself.
type DiffSource interface {
	ChangesBetween(ctx context.Context, baseRef, targetRef string) ([]domain.FileChange, error)
	WorktreeChanges(ctx context.Context, baseRef string) ([]domain.FileChange, error)
}

// Runner executes a skill against file changes.
type Runner interface {
	Run(ctx context.Context, sk skill.Skill, changes []domain.FileChange) (domain.SkillReport, error)
}

// HistoryStore persists finished runs. Failures are reported as
// warnings, never as run failures.
type HistoryStore interface {
	SaveRun(ctx context.Context, run store.Run) error
	SaveFindings(ctx context.Context, findings []store.FindingRecord) error
}

// Deps captures the collaborators of the review service.
type Deps struct {
	Diffs  DiffSource
	Runner Runner
	Store  HistoryStore // optional
	Logger skill.Logger // optional
	Now    func() time.Time
}

// Request describes one review run.
type Request struct {
	Skill      skill.Skill
	Repository string
	Model      string

	// Diff selection: pre-supplied changes win, then worktree mode,
	// then ref-to-ref.
	Changes   []domain.FileChange
	BaseRef   string
	TargetRef string
	Worktree  bool

	// Comments previously posted for this scope; reconciled against the
	// new findings.
	Comments      []domain.ExistingComment
	LineTolerance int
}

// Result is the outcome of a review run.
type Result struct {
	RunID  string
	Report domain.SkillReport
	Stale  []domain.ExistingComment
}

// Service coordinates a review run.
type Service struct {
	deps Deps
}

// NewService wires a review service.
func NewService(deps Deps) (*Service, error) {
	if deps.Runner == nil {
		return nil, errors.New("runner is required")
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Service{deps: deps}, nil
}

// Review runs the skill over the requested change set.
func (s *Service) Review(ctx context.Context, req Request) (Result, error) {
	changes, err := s.resolveChanges(ctx, req)
	if err != nil {
		return Result{}, err
	}

	started := s.deps.Now()
	report, err := s.deps.Runner.Run(ctx, req.Skill, changes)
	if err != nil {
		return Result{}, err
	}

	result := Result{
		RunID:  store.GenerateRunID(started, report.Skill, req.Repository),
		Report: report,
	}

	if len(req.Comments) > 0 {
		scope := domain.NewAnalyzedScope(changes)
		result.Stale = reconcile.StaleComments(req.Comments, report.Findings, scope, reconcile.Options{
			LineTolerance: req.LineTolerance,
		})
	}

	s.persist(ctx, req, started, result)
	return result, nil
}

func (s *Service) resolveChanges(ctx context.Context, req Request) ([]domain.FileChange, error) {
	if len(req.Changes) > 0 {
		return req.Changes, nil
	}
	if s.deps.Diffs == nil {
		return nil, errors.New("no changes supplied and no diff source configured")
	}
	if req.Worktree {
		return s.deps.Diffs.WorktreeChanges(ctx, req.BaseRef)
	}
	return s.deps.Diffs.ChangesBetween(ctx, req.BaseRef, req.TargetRef)
}

// persist saves run history best-effort. A broken store must never fail
// a finished review.
func (s *Service) persist(ctx context.Context, req Request, started time.Time, result Result) {
	if s.deps.Store == nil {
		return
	}

	run := store.RunFromReport(result.RunID, req.Repository, req.BaseRef, req.TargetRef, req.Model, started, result.Report)
	if err := s.deps.Store.SaveRun(ctx, run); err != nil {
		s.warn(ctx, "failed to save run", map[string]interface{}{
			"runID": result.RunID,
			"error": err.Error(),
		})
		return
	}

	records := store.RecordsFromReport(result.RunID, result.Report)
	if len(records) == 0 {
		return
	}
	if err := s.deps.Store.SaveFindings(ctx, records); err != nil {
		s.warn(ctx, "failed to save findings", map[string]interface{}{
			"runID": result.RunID,
			"error": err.Error(),
		})
	}
}

func (s *Service) warn(ctx context.Context, msg string, fields map[string]interface{}) {
	if s.deps.Logger != nil {
		s.deps.Logger.LogWarning(ctx, msg, fields)
	}
}
