// Package repository provides read-only filesystem access rooted at a
// directory. It backs both context expansion and the analysis tools;
// there is deliberately no way to write or execute anything through it.
package repository

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// GrepMatch is one matching line from a repository search.
type GrepMatch struct {
	File    string
	Line    int
	Content string
}

// LocalRepository resolves all paths relative to its root and rejects
// anything that escapes it, including through symlinks.
type LocalRepository struct {
	root string
}

// NewLocalRepository creates a repository rooted at the given directory.
func NewLocalRepository(root string) *LocalRepository {
	return &LocalRepository{root: root}
}

// Root returns the repository root directory.
func (r *LocalRepository) Root() string {
	return r.root
}

// ReadFile reads the contents of a file at the given path.
func (r *LocalRepository) ReadFile(path string) ([]byte, error) {
	resolved, err := r.resolvePath(path)
	if err != nil {
		return nil, fmt.Errorf("invalid path %q: %w", path, err)
	}
	return os.ReadFile(resolved)
}

// FileExists reports whether a regular file exists at the given path.
// Directories, permission errors and traversal attempts all report false.
func (r *LocalRepository) FileExists(path string) bool {
	resolved, err := r.resolvePath(path)
	if err != nil {
		return false
	}
	info, err := os.Stat(resolved)
	return err == nil && !info.IsDir()
}

// Glob returns repository-relative file paths matching the pattern.
// A single ** segment is supported for recursive matching.
func (r *LocalRepository) Glob(pattern string) ([]string, error) {
	if strings.Contains(pattern, "**") {
		return r.globRecursive(pattern)
	}

	matches, err := filepath.Glob(filepath.Join(r.root, pattern))
	if err != nil {
		return nil, fmt.Errorf("glob pattern %q: %w", pattern, err)
	}

	result := make([]string, 0, len(matches))
	for _, m := range matches {
		if rel, err := filepath.Rel(r.root, m); err == nil {
			result = append(result, rel)
		}
	}
	return result, nil
}

// Grep searches for a regular expression in the given files, or in
// every non-binary file under the root when no paths are given.
// Unreadable files are skipped silently.
func (r *LocalRepository) Grep(pattern string, paths ...string) ([]GrepMatch, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}

	filesToSearch := paths
	if len(filesToSearch) == 0 {
		err := filepath.Walk(r.root, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return nil
			}
			if !info.IsDir() && !isBinaryFile(path) {
				if rel, err := filepath.Rel(r.root, path); err == nil {
					filesToSearch = append(filesToSearch, rel)
				}
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walking directory: %w", err)
		}
	}

	var matches []GrepMatch
	for _, path := range filesToSearch {
		fileMatches, err := r.grepFile(re, path)
		if err != nil {
			continue
		}
		matches = append(matches, fileMatches...)
	}
	return matches, nil
}

// resolvePath validates that a path stays inside the repository root,
// following symlinks so a link cannot smuggle reads outside it.
func (r *LocalRepository) resolvePath(path string) (string, error) {
	resolved := path
	if !filepath.IsAbs(resolved) {
		resolved = filepath.Join(r.root, resolved)
	}
	resolved = filepath.Clean(resolved)

	realRoot, err := filepath.EvalSymlinks(r.root)
	if err != nil {
		realRoot = filepath.Clean(r.root)
	}

	realPath, err := filepath.EvalSymlinks(resolved)
	if err != nil {
		if !os.IsNotExist(err) {
			return "", fmt.Errorf("resolving symlinks: %w", err)
		}
		// Missing file: validate the cleaned path instead so callers
		// still get a clean not-found error from the read.
		if rel, relErr := filepath.Rel(realRoot, resolved); relErr != nil || strings.HasPrefix(rel, "..") {
			return "", fmt.Errorf("path traversal detected")
		}
		return resolved, nil
	}

	if rel, err := filepath.Rel(realRoot, realPath); err != nil || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("path traversal detected")
	}
	return realPath, nil
}

// globRecursive handles patterns containing one ** segment.
func (r *LocalRepository) globRecursive(pattern string) ([]string, error) {
	parts := strings.Split(pattern, "**")
	if len(parts) != 2 {
		return nil, fmt.Errorf("only one ** is supported in pattern")
	}

	prefix := strings.TrimSuffix(parts[0], string(filepath.Separator))
	suffix := strings.TrimPrefix(parts[1], string(filepath.Separator))

	searchRoot := r.root
	if prefix != "" {
		searchRoot = filepath.Join(r.root, prefix)
	}

	var matches []string
	err := filepath.Walk(searchRoot, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(r.root, path)
		if err != nil {
			return nil
		}
		if suffix == "" {
			matches = append(matches, rel)
			return nil
		}
		if matched, err := filepath.Match(suffix, filepath.Base(path)); err == nil && matched {
			matches = append(matches, rel)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking directory: %w", err)
	}
	return matches, nil
}

func (r *LocalRepository) grepFile(re *regexp.Regexp, path string) ([]GrepMatch, error) {
	resolved, err := r.resolvePath(path)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(resolved)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var matches []GrepMatch
	scanner := bufio.NewScanner(file)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		if line := scanner.Text(); re.MatchString(line) {
			matches = append(matches, GrepMatch{File: path, Line: lineNum, Content: line})
		}
	}
	return matches, scanner.Err()
}

// isBinaryFile guesses binariness from the extension. Good enough to
// keep archives and images out of grep output.
func isBinaryFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".exe", ".dll", ".so", ".dylib",
		".zip", ".tar", ".gz", ".rar",
		".png", ".jpg", ".jpeg", ".gif", ".bmp",
		".pdf", ".doc", ".docx",
		".o", ".a", ".obj":
		return true
	}
	return false
}
