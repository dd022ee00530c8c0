package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"golang.org/x/text/unicode/norm"
)

// File change statuses as reported by diff sources.
const (
	FileStatusAdded    = "added"
	FileStatusRemoved  = "removed"
	FileStatusModified = "modified"
	FileStatusRenamed  = "renamed"
)

// FileChange describes one changed file in a review scope.
type FileChange struct {
	Filename  string
	OldPath   string // previous path for renames, empty otherwise
	Status    string
	Additions int
	Deletions int
	Patch     string // unified diff text; empty when unavailable (e.g. binary)
	IsBinary  bool
}

// Location pins a finding to a file and line range.
type Location struct {
	Path      string `json:"path"`
	StartLine int    `json:"startLine"`
	EndLine   int    `json:"endLine,omitempty"`
}

// SuggestedFix carries a unified diff that resolves the finding.
// The diff must apply cleanly against the current content of Location.Path.
type SuggestedFix struct {
	Description string `json:"description"`
	Diff        string `json:"diff"`
}

// Finding represents a single issue reported by a skill.
// Findings are immutable once produced; filtering and sorting yield
// new slices rather than mutating in place.
type Finding struct {
	ID           string        `json:"id"`
	Severity     Severity      `json:"severity"`
	Confidence   string        `json:"confidence,omitempty"`
	Title        string        `json:"title"`
	Description  string        `json:"description"`
	Location     *Location     `json:"location,omitempty"`
	SuggestedFix *SuggestedFix `json:"suggestedFix,omitempty"`
	Elapsed      time.Duration `json:"-"`
}

// ContentHash returns a stable hash over the finding's title and
// description. Text is NFC-normalized first so comments round-tripped
// through external stores still match after unicode drift.
func (f Finding) ContentHash() string {
	return HashContent(f.Title, f.Description)
}

// HashContent hashes a title/description pair the same way for findings
// and previously posted comments.
func HashContent(title, description string) string {
	payload := norm.NFC.String(title) + "\n" + norm.NFC.String(description)
	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:])
}

// UsageStats accumulates token and cost accounting across analysis calls.
type UsageStats struct {
	InputTokens         int     `json:"inputTokens"`
	OutputTokens        int     `json:"outputTokens"`
	CacheReadTokens     int     `json:"cacheReadTokens"`
	CacheCreationTokens int     `json:"cacheCreationTokens"`
	CostUSD             float64 `json:"costUSD"`
}

// Add accumulates another set of usage stats into this one.
func (u *UsageStats) Add(other UsageStats) {
	u.InputTokens += other.InputTokens
	u.OutputTokens += other.OutputTokens
	u.CacheReadTokens += other.CacheReadTokens
	u.CacheCreationTokens += other.CacheCreationTokens
	u.CostUSD += other.CostUSD
}

// SkippedFile records a file the orchestrator did not analyze and why.
type SkippedFile struct {
	Path   string
	Reason string
}

// SkillReport is the aggregated output of running one skill across a diff.
type SkillReport struct {
	Skill        string
	Summary      string
	Findings     []Finding
	Usage        *UsageStats
	Duration     time.Duration
	SkippedFiles []SkippedFile
	FailedHunks  int
}

// ExistingComment is a previously posted review annotation, read from an
// external store at run start and never mutated locally.
type ExistingComment struct {
	Path        string
	Line        int
	Title       string
	Description string
	ContentHash string
	ThreadID    string
	Resolved    bool // set by a human; resolved comments are never retracted again
}

// AnalyzedScope is the set of file paths covered by the current run.
// Comments on paths outside the scope are considered orphaned.
type AnalyzedScope map[string]struct{}

// NewAnalyzedScope builds a scope from the files of the current diff.
func NewAnalyzedScope(changes []FileChange) AnalyzedScope {
	scope := make(AnalyzedScope, len(changes))
	for _, c := range changes {
		scope[c.Filename] = struct{}{}
	}
	return scope
}

// Contains reports whether the given path is part of the current run.
func (s AnalyzedScope) Contains(path string) bool {
	_, ok := s[path]
	return ok
}
