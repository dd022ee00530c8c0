package domain

import (
	"fmt"
	"strings"
)

// Severity is the ordered urgency tag attached to every finding.
// The order is total and fixed: critical < high < medium < low < info,
// where lower means more urgent. Every comparison in the system
// (threshold filtering, sorting, exit decisions) goes through Rank.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
	SeverityInfo     Severity = "info"
)

// severityOrder lists severities from most to least urgent.
var severityOrder = []Severity{
	SeverityCritical,
	SeverityHigh,
	SeverityMedium,
	SeverityLow,
	SeverityInfo,
}

var severityRank = map[Severity]int{
	SeverityCritical: 0,
	SeverityHigh:     1,
	SeverityMedium:   2,
	SeverityLow:      3,
	SeverityInfo:     4,
}

// Rank returns the position of the severity in the fixed total order.
// Unknown severities rank below info so they never trip a threshold.
func (s Severity) Rank() int {
	if r, ok := severityRank[s]; ok {
		return r
	}
	return len(severityOrder)
}

// Known reports whether s is one of the five defined severities.
func (s Severity) Known() bool {
	_, ok := severityRank[s]
	return ok
}

// AtLeast reports whether s is as urgent as threshold or more so.
func (s Severity) AtLeast(threshold Severity) bool {
	return s.Rank() <= threshold.Rank()
}

// ParseSeverity normalizes a severity string, rejecting unknown values.
func ParseSeverity(s string) (Severity, error) {
	sev := Severity(strings.ToLower(strings.TrimSpace(s)))
	if !sev.Known() {
		return "", fmt.Errorf("unknown severity %q", s)
	}
	return sev, nil
}

// FilterBySeverity returns the findings at or above the given threshold.
// The input is never mutated and relative order is preserved, so
// filtering at T then at a stricter T' equals filtering once at T'.
func FilterBySeverity(findings []Finding, threshold Severity) []Finding {
	var out []Finding
	for _, f := range findings {
		if f.Severity.AtLeast(threshold) {
			out = append(out, f)
		}
	}
	return out
}

// CountBySeverity tallies findings per severity level.
func CountBySeverity(findings []Finding) map[Severity]int {
	counts := make(map[Severity]int)
	for _, f := range findings {
		counts[f.Severity]++
	}
	return counts
}

// FormatSeverityCounts renders non-zero severity counts in urgency order,
// e.g. "1 critical, 2 high, 1 info".
func FormatSeverityCounts(findings []Finding) string {
	counts := CountBySeverity(findings)
	parts := make([]string, 0, len(severityOrder))
	for _, sev := range severityOrder {
		if n := counts[sev]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, sev))
		}
	}
	return strings.Join(parts, ", ")
}
