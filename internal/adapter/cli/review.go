package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	gitadapter "github.com/bkyoung/diffscope/internal/adapter/git"
	"github.com/bkyoung/diffscope/internal/adapter/render"
	"github.com/bkyoung/diffscope/internal/domain"
	"github.com/bkyoung/diffscope/internal/patch"
	"github.com/bkyoung/diffscope/internal/usecase/review"
	"github.com/bkyoung/diffscope/internal/usecase/skill"
)

func reviewCommand(deps Dependencies) *cobra.Command {
	var skillPath string
	var baseRef string
	var targetRef string
	var worktree bool
	var patchFile string
	var repoDir string
	var commentsFile string
	var lineTolerance int
	var failOn string
	var applyAll bool
	var interactive bool

	cmd := &cobra.Command{
		Use:   "review",
		Short: "Run a skill over a diff and report findings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			sk, err := skill.Load(skillPath)
			if err != nil {
				return err
			}

			req := review.Request{
				Skill:         sk,
				Repository:    repoDir,
				Model:         deps.Defaults.Model,
				BaseRef:       baseRef,
				TargetRef:     targetRef,
				Worktree:      worktree,
				LineTolerance: lineTolerance,
			}

			if patchFile != "" {
				changes, err := loadPatchFile(patchFile)
				if err != nil {
					return err
				}
				req.Changes = changes
			}

			if commentsFile != "" {
				comments, err := loadComments(commentsFile)
				if err != nil {
					return err
				}
				req.Comments = comments
			}

			result, err := deps.Reviewer.Review(ctx, req)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprint(out, render.Report(result.Report))

			printStale(out, result.Stale)

			if applyAll || interactive {
				applyFixes(deps, cmd, repoDir, result.Report.Findings, interactive)
			}

			return checkFailOn(result.Report.Findings, failOn)
		},
	}

	cmd.Flags().StringVar(&skillPath, "skill", "", "Skill directory or instructions file (required)")
	_ = cmd.MarkFlagRequired("skill")
	cmd.Flags().StringVar(&baseRef, "base", "main", "Base reference to diff against")
	cmd.Flags().StringVar(&targetRef, "target", "HEAD", "Target reference to review")
	cmd.Flags().BoolVar(&worktree, "worktree", false, "Review uncommitted changes against the base reference")
	cmd.Flags().StringVar(&patchFile, "patch", "", "Read the diff from a patch file instead of the repository")
	cmd.Flags().StringVar(&repoDir, "repo", deps.Defaults.RepoDir, "Repository directory")
	cmd.Flags().StringVar(&commentsFile, "comments", "", "JSON file of previously posted comments to reconcile")
	cmd.Flags().IntVar(&lineTolerance, "tolerance", deps.Defaults.LineTolerance, "Line drift tolerance for comment reconciliation")
	cmd.Flags().StringVar(&failOn, "fail-on", deps.Defaults.FailOn, "Exit non-zero when findings at or above this severity remain")
	cmd.Flags().BoolVar(&applyAll, "apply", false, "Apply every suggested fix")
	cmd.Flags().BoolVar(&interactive, "interactive", false, "Prompt per suggested fix")

	return cmd
}

func loadPatchFile(path string) ([]domain.FileChange, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open patch file: %w", err)
	}
	defer f.Close()

	changes, err := gitadapter.ParsePatchStream(f)
	if err != nil {
		return nil, err
	}
	if len(changes) == 0 {
		return nil, fmt.Errorf("patch file %s contains no file changes", path)
	}
	return changes, nil
}

// commentFile is the wire shape of one previously posted comment.
type commentFile struct {
	Path        string `json:"path"`
	Line        int    `json:"line"`
	Title       string `json:"title"`
	Description string `json:"description"`
	ContentHash string `json:"contentHash"`
	ThreadID    string `json:"threadId"`
	Resolved    bool   `json:"resolved"`
}

func loadComments(path string) ([]domain.ExistingComment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read comments file: %w", err)
	}

	var entries []commentFile
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse comments file: %w", err)
	}

	comments := make([]domain.ExistingComment, 0, len(entries))
	for _, e := range entries {
		comments = append(comments, domain.ExistingComment{
			Path:        e.Path,
			Line:        e.Line,
			Title:       e.Title,
			Description: e.Description,
			ContentHash: e.ContentHash,
			ThreadID:    e.ThreadID,
			Resolved:    e.Resolved,
		})
	}
	return comments, nil
}

func printStale(out io.Writer, stale []domain.ExistingComment) {
	if len(stale) == 0 {
		return
	}
	fmt.Fprintf(out, "\n%d stale comment(s) to retract:\n", len(stale))
	for _, c := range stale {
		fmt.Fprintf(out, "  %s:%d %s (thread %s)\n", c.Path, c.Line, c.Title, c.ThreadID)
	}
}

func applyFixes(deps Dependencies, cmd *cobra.Command, root string, findings []domain.Finding, interactive bool) {
	out := cmd.OutOrStdout()

	var res patch.BatchResult
	if interactive {
		keys := deps.Keys
		if keys == nil {
			keys = patch.NewTerminalKeyReader()
		}
		res = patch.ApplyInteractive(root, findings, keys, out)
	} else {
		res = patch.ApplyAll(root, findings)
		fmt.Fprintf(out, "applied %d, skipped %d, failed %d\n", res.Applied, res.Skipped, res.Failed)
	}

	for _, r := range res.Results {
		if r.Err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "fix %s (%s): %v\n", r.FindingID, r.Path, r.Err)
		}
	}
}

func checkFailOn(findings []domain.Finding, failOn string) error {
	if failOn == "" {
		return nil
	}
	threshold, err := domain.ParseSeverity(failOn)
	if err != nil {
		return fmt.Errorf("--fail-on: %w", err)
	}
	if blocking := domain.FilterBySeverity(findings, threshold); len(blocking) > 0 {
		return fmt.Errorf("%w: %d finding(s) at %s or above", ErrFindingsAboveThreshold, len(blocking), threshold)
	}
	return nil
}
