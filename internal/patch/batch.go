package patch

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/bkyoung/diffscope/internal/domain"
)

// ErrAborted is returned by interactive application when the user stops
// the remaining fixes.
var ErrAborted = errors.New("remaining fixes aborted")

// FixResult records the outcome of applying one finding's fix.
type FixResult struct {
	FindingID string
	Path      string
	Err       error // nil on success
	Skipped   bool
}

// BatchResult tallies a fix-application run.
type BatchResult struct {
	Applied int
	Failed  int
	Skipped int
	Results []FixResult
}

// ApplyAll applies each finding's suggested fix independently. One
// failure never blocks the others; findings without a fix or location
// are counted as skipped.
func ApplyAll(root string, findings []domain.Finding) BatchResult {
	var res BatchResult
	for _, f := range findings {
		outcome := applyOne(root, f)
		res.Results = append(res.Results, outcome)
		switch {
		case outcome.Skipped:
			res.Skipped++
		case outcome.Err != nil:
			res.Failed++
		default:
			res.Applied++
		}
	}
	return res
}

// KeyReader supplies single keystrokes for interactive application.
type KeyReader interface {
	ReadKey() (rune, error)
}

// ApplyInteractive walks the findings one at a time, prompting for a
// decision per fix: 'y' applies, 'n' skips, 'q' aborts the remaining
// fixes (counted as skipped). The running tally is printed to out.
func ApplyInteractive(root string, findings []domain.Finding, keys KeyReader, out io.Writer) BatchResult {
	var res BatchResult

	for i, f := range findings {
		if f.SuggestedFix == nil || f.Location == nil {
			res.Skipped++
			res.Results = append(res.Results, FixResult{FindingID: f.ID, Skipped: true})
			continue
		}

		fmt.Fprintf(out, "[%d/%d] %s — %s (%s:%d)\n%s\nApply? [y/n/q] ",
			i+1, len(findings), f.Severity, f.Title,
			f.Location.Path, f.Location.StartLine, f.SuggestedFix.Description)

		key, err := keys.ReadKey()
		if err != nil {
			key = 'q'
		}

		switch key {
		case 'y', 'Y':
			outcome := applyOne(root, f)
			res.Results = append(res.Results, outcome)
			if outcome.Err != nil {
				res.Failed++
				fmt.Fprintf(out, "failed: %v\n", outcome.Err)
			} else {
				res.Applied++
				fmt.Fprintln(out, "applied")
			}
		case 'q', 'Q':
			remaining := len(findings) - i
			res.Skipped += remaining
			for _, rest := range findings[i:] {
				res.Results = append(res.Results, FixResult{FindingID: rest.ID, Skipped: true})
			}
			fmt.Fprintf(out, "aborted, %d remaining skipped\n", remaining)
			fmt.Fprintf(out, "applied %d, skipped %d, failed %d\n", res.Applied, res.Skipped, res.Failed)
			return res
		default:
			res.Skipped++
			res.Results = append(res.Results, FixResult{FindingID: f.ID, Skipped: true})
			fmt.Fprintln(out, "skipped")
		}
	}

	fmt.Fprintf(out, "applied %d, skipped %d, failed %d\n", res.Applied, res.Skipped, res.Failed)
	return res
}

func applyOne(root string, f domain.Finding) FixResult {
	if f.SuggestedFix == nil || f.Location == nil || f.Location.Path == "" {
		return FixResult{FindingID: f.ID, Skipped: true}
	}

	target := filepath.Join(root, filepath.FromSlash(f.Location.Path))
	if err := Apply(target, f.SuggestedFix.Diff); err != nil {
		return FixResult{FindingID: f.ID, Path: f.Location.Path, Err: err}
	}
	return FixResult{FindingID: f.ID, Path: f.Location.Path}
}
