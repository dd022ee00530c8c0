package skill

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bkyoung/diffscope/internal/domain"
)

func TestExtractFindingsFromProse(t *testing.T) {
	text := "I reviewed the hunk. Here is my report:\n" +
		"```json\n" +
		`{"findings": [{"id": "sqli-1", "severity": "critical", "title": "SQL injection",
		"description": "user input reaches the query", "confidence": "high",
		"location": {"path": "src/db.ts", "startLine": 42, "endLine": 43}}]}` +
		"\n```\nLet me know if you need more detail."

	findings, err := ExtractFindings(text)
	require.NoError(t, err)
	require.Len(t, findings, 1)

	f := findings[0]
	assert.Equal(t, "sqli-1", f.ID)
	assert.Equal(t, domain.SeverityCritical, f.Severity)
	assert.Equal(t, "high", f.Confidence)
	require.NotNil(t, f.Location)
	assert.Equal(t, 42, f.Location.StartLine)
	assert.Equal(t, 43, f.Location.EndLine)
}

func TestExtractFindingsBracesInsideStrings(t *testing.T) {
	text := `{"findings": [{"id": "a", "severity": "low", "title": "odd { brace } in title", "description": "also \"quoted\" and {nested}"}]}`

	findings, err := ExtractFindings(text)
	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.Equal(t, "odd { brace } in title", findings[0].Title)
}

func TestExtractFindingsSkipsLeadingNonReportObjects(t *testing.T) {
	// An earlier balanced object without a findings key must not stop the scan.
	text := `{"note": "warm-up"} then the real one {"findings": [{"id": "x", "severity": "info", "title": "t", "description": "d"}]}`

	findings, err := ExtractFindings(text)
	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.Equal(t, "x", findings[0].ID)
}

func TestExtractFindingsDropsInvalidEntries(t *testing.T) {
	text := `{"findings": [
		{"id": "", "severity": "high", "title": "missing id", "description": "d"},
		{"id": "b", "severity": "catastrophic", "title": "unknown severity", "description": "d"},
		{"id": "c", "severity": "high", "title": "bad line", "description": "d", "location": {"path": "p", "startLine": 0}},
		{"id": "d", "severity": "medium", "title": "keeper", "description": "d"}
	]}`

	findings, err := ExtractFindings(text)
	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.Equal(t, "d", findings[0].ID)
}

func TestExtractFindingsEmptyList(t *testing.T) {
	findings, err := ExtractFindings(`{"findings": []}`)
	require.NoError(t, err)
	assert.Empty(t, findings)
}

func TestExtractFindingsErrorKinds(t *testing.T) {
	tests := []struct {
		name string
		text string
		kind ExtractionErrorKind
	}{
		{"no json at all", "I found nothing worth reporting.", ExtractionNoJSON},
		{"valid json without findings key", `{"summary": "clean"}`, ExtractionNoJSON},
		{"unbalanced", `{"findings": [{"id": "a"`, ExtractionUnbalanced},
		{"findings not a list", `{"findings": "none"}`, ExtractionNotList},
		{"findings object not list", `{"findings": {"id": "a"}}`, ExtractionNotList},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ExtractFindings(tt.text)
			require.Error(t, err)
			var extractErr *ExtractionError
			require.True(t, errors.As(err, &extractErr))
			assert.Equal(t, tt.kind, extractErr.Kind)
		})
	}
}

func TestExtractFindingsSuggestedFix(t *testing.T) {
	text := `{"findings": [{"id": "a", "severity": "high", "title": "t", "description": "d",
		"suggestedFix": {"description": "escape it", "diff": "@@ -1,1 +1,1 @@\n-bad\n+good\n"}}]}`

	findings, err := ExtractFindings(text)
	require.NoError(t, err)
	require.Len(t, findings, 1)
	require.NotNil(t, findings[0].SuggestedFix)
	assert.Equal(t, "escape it", findings[0].SuggestedFix.Description)
}

func TestExtractFindingsIgnoresUnknownFields(t *testing.T) {
	text := `{"findings": [{"id": "a", "severity": "low", "title": "t", "description": "d", "cwe": "CWE-89"}], "model": "m"}`

	findings, err := ExtractFindings(text)
	require.NoError(t, err)
	assert.Len(t, findings, 1)
}

func TestMentionsFindings(t *testing.T) {
	assert.True(t, MentionsFindings(`broken "findings" output`))
	assert.False(t, MentionsFindings("nothing here"))
}
