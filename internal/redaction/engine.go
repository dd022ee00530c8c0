// Package redaction scrubs credential-shaped strings from text before
// it is handed to an analysis provider. Diff hunks routinely contain
// checked-in secrets; those must never leave the process in a prompt.
package redaction

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
)

// rule pairs a secret kind with the pattern that detects it.
type rule struct {
	kind    string
	pattern *regexp.Regexp
}

// Engine replaces detected secrets with stable placeholders. The same
// secret always maps to the same placeholder, so repeated occurrences
// stay correlated in the redacted text.
type Engine struct {
	rules []rule
}

// NewEngine builds an engine with the default detection rules.
func NewEngine() *Engine {
	return &Engine{rules: defaultRules()}
}

// Redact returns text with every detected secret replaced by a
// placeholder of the form <REDACTED:kind:hash>.
func (e *Engine) Redact(text string) string {
	replacements := make(map[string]string)
	for _, r := range e.rules {
		for _, match := range r.pattern.FindAllString(text, -1) {
			if _, seen := replacements[match]; seen {
				continue
			}
			replacements[match] = placeholder(r.kind, match)
		}
	}

	for secret, mask := range replacements {
		text = strings.ReplaceAll(text, secret, mask)
	}
	return text
}

// ContainsSecret reports whether text matches any detection rule.
func (e *Engine) ContainsSecret(text string) bool {
	for _, r := range e.rules {
		if r.pattern.MatchString(text) {
			return true
		}
	}
	return false
}

// placeholder derives a short, stable mask from the secret itself so
// identical secrets redact identically across calls.
func placeholder(kind, secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return fmt.Sprintf("<REDACTED:%s:%s>", kind, hex.EncodeToString(sum[:])[:8])
}

func defaultRules() []rule {
	specs := []struct {
		kind    string
		pattern string
	}{
		// PEM blocks first so their body isn't partially matched by
		// narrower token rules.
		{"private-key", `-----BEGIN\s+(?:RSA|EC|OPENSSH|DSA|ENCRYPTED)\s+PRIVATE\s+KEY-----[\s\S]*?-----END\s+(?:RSA|EC|OPENSSH|DSA|ENCRYPTED)\s+PRIVATE\s+KEY-----`},
		{"anthropic-key", `sk-ant-[a-zA-Z0-9\-]{20,}`},
		{"openai-key", `sk-[a-zA-Z0-9]{20,}`},
		{"aws-access-key", `AKIA[0-9A-Z]{16}`},
		{"aws-secret-key", `aws.{0,20}?['\"][0-9a-zA-Z/+]{40}['\"]`},
		{"github-token", `gh[posr]_[a-zA-Z0-9]{20,}`},
		{"google-key", `AIza[0-9A-Za-z\-_]{35}`},
		{"jwt", `eyJ[a-zA-Z0-9_-]+\.eyJ[a-zA-Z0-9_-]+\.[a-zA-Z0-9_-]+`},
		{"slack-token", `xox[baprs]-[a-zA-Z0-9\-]{10,}`},
		{"bearer-token", `Bearer\s+[a-zA-Z0-9_\-\.]+`},
	}

	rules := make([]rule, 0, len(specs))
	for _, s := range specs {
		rules = append(rules, rule{kind: s.kind, pattern: regexp.MustCompile(s.pattern)})
	}
	return rules
}
