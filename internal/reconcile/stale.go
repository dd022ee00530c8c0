// Package reconcile decides which previously posted review comments are
// now orphaned and should be retracted.
//
// Matching tolerates line drift between runs: a comment still counts as
// live when a current finding with the same path and the same title or
// content hash sits within a few lines of it. The tolerance and the
// title-or-hash rule are product-visible heuristics; keep them stable.
package reconcile

import "github.com/bkyoung/diffscope/internal/domain"

// DefaultLineTolerance is the maximum line distance between a comment
// and a finding for the two to still be considered the same issue.
const DefaultLineTolerance = 5

// Options tunes reconciliation.
type Options struct {
	// LineTolerance overrides DefaultLineTolerance when positive.
	LineTolerance int
}

// StaleComments returns the subset of comments that no longer correspond
// to any current finding.
//
// A comment is excluded from consideration (never reported stale) when it
// has no thread identifier, or when a human already resolved it. A
// comment on a path outside the analyzed scope is always stale. Otherwise
// it is stale unless some finding matches it.
func StaleComments(comments []domain.ExistingComment, findings []domain.Finding, scope domain.AnalyzedScope, opts Options) []domain.ExistingComment {
	tolerance := opts.LineTolerance
	if tolerance <= 0 {
		tolerance = DefaultLineTolerance
	}

	var stale []domain.ExistingComment
	for _, c := range comments {
		if c.ThreadID == "" {
			continue // nothing to resolve
		}
		if c.Resolved {
			continue // already handled by a human; stays resolved
		}
		if !scope.Contains(c.Path) {
			stale = append(stale, c)
			continue
		}

		if !anyFindingMatches(c, findings, tolerance) {
			stale = append(stale, c)
		}
	}
	return stale
}

func anyFindingMatches(c domain.ExistingComment, findings []domain.Finding, tolerance int) bool {
	for _, f := range findings {
		if matches(c, f, tolerance) {
			return true
		}
	}
	return false
}

// matches reports whether the finding and the comment describe the same
// issue: same path, title-exact or content-hash match, and line distance
// within tolerance. A finding without a location can never match.
func matches(c domain.ExistingComment, f domain.Finding, tolerance int) bool {
	if f.Location == nil {
		return false
	}
	if f.Location.Path != c.Path {
		return false
	}
	if f.Title != c.Title && f.ContentHash() != c.ContentHash {
		return false
	}

	distance := c.Line - f.Location.StartLine
	if distance < 0 {
		distance = -distance
	}
	return distance <= tolerance
}
