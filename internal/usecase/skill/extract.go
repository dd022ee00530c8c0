package skill

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/bkyoung/diffscope/internal/domain"
)

// ExtractionErrorKind distinguishes why findings could not be pulled out
// of analysis text. All kinds are handled the same way (zero findings,
// failed-hunk counter); the kind only matters for diagnostics and for the
// secondary reformatting pass.
type ExtractionErrorKind int

const (
	// ExtractionNoJSON means no candidate '{' with a findings key was found.
	ExtractionNoJSON ExtractionErrorKind = iota
	// ExtractionUnbalanced means a candidate region never closed.
	ExtractionUnbalanced
	// ExtractionInvalid means the balanced region was not valid JSON.
	ExtractionInvalid
	// ExtractionNotList means "findings" was present but not an array.
	ExtractionNotList
)

// ExtractionError reports a failed extraction attempt.
type ExtractionError struct {
	Kind ExtractionErrorKind
	Msg  string
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract findings: %s", e.Msg)
}

// rawFinding mirrors the wire shape produced by the analysis capability.
// Unknown fields are ignored by encoding/json.
type rawFinding struct {
	ID          string `json:"id"`
	Severity    string `json:"severity"`
	Confidence  string `json:"confidence"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Location    *struct {
		Path      string `json:"path"`
		StartLine int    `json:"startLine"`
		EndLine   int    `json:"endLine"`
	} `json:"location"`
	SuggestedFix *struct {
		Description string `json:"description"`
		Diff        string `json:"diff"`
	} `json:"suggestedFix"`
}

// ExtractFindings pulls the first well-formed {"findings":[...]} region
// out of free text. The model may wrap the JSON in prose or fenced code;
// a balanced-brace scan from each plausible '{' finds the region without
// trusting the surroundings. Elements that fail schema validation are
// discarded, never fatal.
func ExtractFindings(text string) ([]domain.Finding, error) {
	sawCandidate := false
	sawUnbalanced := false

	for i := 0; i < len(text); i++ {
		if text[i] != '{' {
			continue
		}

		region, ok := balancedRegion(text[i:])
		if !ok {
			sawUnbalanced = true
			continue
		}

		var probe struct {
			Findings json.RawMessage `json:"findings"`
		}
		if err := json.Unmarshal([]byte(region), &probe); err != nil {
			continue // not valid JSON; keep scanning
		}
		if probe.Findings == nil {
			continue // valid JSON but not a findings report
		}
		sawCandidate = true

		trimmed := strings.TrimSpace(string(probe.Findings))
		if !strings.HasPrefix(trimmed, "[") {
			return nil, &ExtractionError{Kind: ExtractionNotList, Msg: `"findings" is not a list`}
		}

		var raw []rawFinding
		if err := json.Unmarshal(probe.Findings, &raw); err != nil {
			return nil, &ExtractionError{Kind: ExtractionInvalid, Msg: err.Error()}
		}

		findings := make([]domain.Finding, 0, len(raw))
		for _, r := range raw {
			if f, valid := validateFinding(r); valid {
				findings = append(findings, f)
			}
		}
		return findings, nil
	}

	if sawUnbalanced && !sawCandidate {
		return nil, &ExtractionError{Kind: ExtractionUnbalanced, Msg: "unbalanced braces in analysis text"}
	}
	return nil, &ExtractionError{Kind: ExtractionNoJSON, Msg: "no findings JSON in analysis text"}
}

// balancedRegion returns the prefix of s that forms one balanced JSON
// object, tracking strings and escapes so braces inside quoted text
// don't count.
func balancedRegion(s string) (string, bool) {
	depth := 0
	inString := false
	escaped := false

	for i := 0; i < len(s); i++ {
		c := s[i]
		if escaped {
			escaped = false
			continue
		}
		switch c {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
				if depth == 0 {
					return s[:i+1], true
				}
			}
		}
	}
	return "", false
}

// validateFinding checks the schema of one raw element and converts it.
// Invalid entries are dropped rather than failing the whole extraction.
func validateFinding(r rawFinding) (domain.Finding, bool) {
	if r.ID == "" || r.Title == "" {
		return domain.Finding{}, false
	}
	severity := domain.Severity(r.Severity)
	if !severity.Known() {
		return domain.Finding{}, false
	}

	f := domain.Finding{
		ID:          r.ID,
		Severity:    severity,
		Confidence:  r.Confidence,
		Title:       r.Title,
		Description: r.Description,
	}

	if r.Location != nil {
		if r.Location.StartLine <= 0 {
			return domain.Finding{}, false
		}
		if r.Location.EndLine < 0 {
			return domain.Finding{}, false
		}
		f.Location = &domain.Location{
			Path:      r.Location.Path,
			StartLine: r.Location.StartLine,
			EndLine:   r.Location.EndLine,
		}
	}

	if r.SuggestedFix != nil && r.SuggestedFix.Diff != "" {
		f.SuggestedFix = &domain.SuggestedFix{
			Description: r.SuggestedFix.Description,
			Diff:        r.SuggestedFix.Diff,
		}
	}

	return f, true
}

// MentionsFindings reports whether the text contains the literal
// "findings" key, i.e. whether a reformatting pass has anything to work
// with after a failed extraction.
func MentionsFindings(text string) bool {
	return strings.Contains(text, `"findings"`)
}
