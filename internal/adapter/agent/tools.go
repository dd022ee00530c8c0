package agent

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/bkyoung/diffscope/internal/adapter/repository"
)

// MaxToolOutputLength is the maximum length of tool output before
// truncation. Prevents runaway memory usage from large files.
const MaxToolOutputLength = 50000

// Repository is the read-only filesystem surface exposed to tools.
type Repository interface {
	ReadFile(path string) ([]byte, error)
	Glob(pattern string) ([]string, error)
	Grep(pattern string, paths ...string) ([]repository.GrepMatch, error)
}

// Tool is one capability the analysis agent may invoke. Every tool is
// read-only; there is no write or execute tool in the registry.
type Tool interface {
	// Name returns the tool identifier used in prompts and logs.
	Name() string

	// Description returns a human-readable description for the prompt.
	Description() string

	// Execute runs the tool with the given input.
	Execute(ctx context.Context, input string) (string, error)
}

// NewToolRegistry creates the analysis tools over a repository.
func NewToolRegistry(repo Repository) []Tool {
	return []Tool{
		NewReadFileTool(repo),
		NewGrepTool(repo),
		NewGlobTool(repo),
	}
}

// ReadFileTool reads file contents from the repository.
type ReadFileTool struct {
	repo Repository
}

// NewReadFileTool creates a new read file tool.
func NewReadFileTool(repo Repository) *ReadFileTool {
	return &ReadFileTool{repo: repo}
}

func (t *ReadFileTool) Name() string { return "read_file" }

func (t *ReadFileTool) Description() string {
	return "Read the contents of a file. Input: file path (e.g., 'src/main.go')"
}

// Execute reads the file at the given path.
func (t *ReadFileTool) Execute(ctx context.Context, input string) (string, error) {
	filePath := strings.TrimSpace(input)
	if filePath == "" {
		return "", fmt.Errorf("file path required")
	}
	if err := validatePath(filePath); err != nil {
		return "", err
	}

	content, err := t.repo.ReadFile(filePath)
	if err != nil {
		return "", fmt.Errorf("reading file %s: %w", filePath, err)
	}
	return truncateOutput(string(content)), nil
}

// validatePath checks that a path is safe: relative, no traversal, no
// hidden files or directories (.git, .env and friends stay invisible).
func validatePath(filePath string) error {
	if strings.HasPrefix(filePath, "/") {
		return fmt.Errorf("absolute paths not allowed: %s", filePath)
	}

	cleaned := path.Clean(filePath)
	if strings.HasPrefix(cleaned, "..") {
		return fmt.Errorf("path traversal not allowed: %s", filePath)
	}

	for _, part := range strings.Split(cleaned, "/") {
		if strings.HasPrefix(part, ".") && part != "." {
			return fmt.Errorf("hidden files/directories not allowed: %s", filePath)
		}
	}
	return nil
}

// validateGlobPattern checks that a glob pattern is safe. Broad
// patterns like **/*.go are allowed; explicit targeting of sensitive
// directories is not.
func validateGlobPattern(pattern string) error {
	if strings.HasPrefix(pattern, "/") {
		return fmt.Errorf("absolute paths not allowed in glob: %s", pattern)
	}
	if strings.HasPrefix(pattern, "..") {
		return fmt.Errorf("path traversal not allowed in glob: %s", pattern)
	}
	for _, forbidden := range []string{".git", ".env", ".ssh", ".aws", ".config", ".secret"} {
		if strings.Contains(pattern, forbidden) {
			return fmt.Errorf("pattern targets forbidden directory: %s", forbidden)
		}
	}
	return nil
}

// GrepTool searches for patterns in the repository.
type GrepTool struct {
	repo Repository
}

// NewGrepTool creates a new grep tool.
func NewGrepTool(repo Repository) *GrepTool {
	return &GrepTool{repo: repo}
}

func (t *GrepTool) Name() string { return "grep" }

func (t *GrepTool) Description() string {
	return "Search for a pattern in the codebase. Input: search pattern (regex supported)"
}

// Execute searches for the pattern in the repository.
func (t *GrepTool) Execute(ctx context.Context, input string) (string, error) {
	pattern := strings.TrimSpace(input)
	if pattern == "" {
		return "", fmt.Errorf("search pattern required")
	}

	matches, err := t.repo.Grep(pattern)
	if err != nil {
		return "", fmt.Errorf("grep %s: %w", pattern, err)
	}
	if len(matches) == 0 {
		return "No matches found", nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Found %d matches:\n", len(matches))
	for _, m := range matches {
		fmt.Fprintf(&sb, "%s:%d: %s\n", m.File, m.Line, m.Content)
	}
	return truncateOutput(sb.String()), nil
}

// GlobTool finds files matching a pattern.
type GlobTool struct {
	repo Repository
}

// NewGlobTool creates a new glob tool.
func NewGlobTool(repo Repository) *GlobTool {
	return &GlobTool{repo: repo}
}

func (t *GlobTool) Name() string { return "glob" }

func (t *GlobTool) Description() string {
	return "Find files matching a pattern. Input: glob pattern (e.g., '**/*.go')"
}

// Execute finds files matching the pattern.
func (t *GlobTool) Execute(ctx context.Context, input string) (string, error) {
	pattern := strings.TrimSpace(input)
	if pattern == "" {
		return "", fmt.Errorf("glob pattern required")
	}
	if err := validateGlobPattern(pattern); err != nil {
		return "", err
	}

	files, err := t.repo.Glob(pattern)
	if err != nil {
		return "", fmt.Errorf("glob %s: %w", pattern, err)
	}
	if len(files) == 0 {
		return "No files found matching pattern", nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Found %d files:\n", len(files))
	for _, f := range files {
		sb.WriteString(f + "\n")
	}
	return truncateOutput(sb.String()), nil
}

// truncateOutput truncates output that exceeds MaxToolOutputLength.
func truncateOutput(s string) string {
	if len(s) <= MaxToolOutputLength {
		return s
	}
	return s[:MaxToolOutputLength] + "\n... [output truncated]"
}
