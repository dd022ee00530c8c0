// Package diff parses unified-diff patch text into structured hunks and
// enriches hunks with surrounding live file content for analysis.
//
// The parser consumes patches that were already produced elsewhere (a PR
// diff, git output, a suggested fix); it never computes diffs itself.
package diff
