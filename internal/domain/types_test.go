package domain

import "testing"

func TestUsageStatsAdd(t *testing.T) {
	total := UsageStats{InputTokens: 100, OutputTokens: 20, CostUSD: 0.01}
	total.Add(UsageStats{InputTokens: 50, OutputTokens: 5, CacheReadTokens: 200, CacheCreationTokens: 30, CostUSD: 0.002})

	if total.InputTokens != 150 || total.OutputTokens != 25 {
		t.Errorf("token sums wrong: %+v", total)
	}
	if total.CacheReadTokens != 200 || total.CacheCreationTokens != 30 {
		t.Errorf("cache token sums wrong: %+v", total)
	}
	if total.CostUSD < 0.0119 || total.CostUSD > 0.0121 {
		t.Errorf("cost sum wrong: %f", total.CostUSD)
	}
}

func TestContentHashStable(t *testing.T) {
	a := Finding{Title: "SQL Injection", Description: "user input reaches query"}
	b := Finding{Title: "SQL Injection", Description: "user input reaches query", Severity: SeverityLow}

	if a.ContentHash() != b.ContentHash() {
		t.Error("hash should depend only on title and description")
	}
	if a.ContentHash() == (Finding{Title: "SQL Injection", Description: "different"}).ContentHash() {
		t.Error("different descriptions should hash differently")
	}
}

func TestContentHashNormalizesUnicode(t *testing.T) {
	// "é" as a single code point vs combining sequence.
	composed := Finding{Title: "caf\u00e9", Description: "d"}
	decomposed := Finding{Title: "cafe\u0301", Description: "d"}
	if composed.ContentHash() != decomposed.ContentHash() {
		t.Error("NFC normalization should make equivalent strings hash equal")
	}
}

func TestAnalyzedScope(t *testing.T) {
	scope := NewAnalyzedScope([]FileChange{
		{Filename: "src/db.ts"},
		{Filename: "src/api.ts"},
	})

	if !scope.Contains("src/db.ts") {
		t.Error("expected src/db.ts in scope")
	}
	if scope.Contains("src/other.ts") {
		t.Error("src/other.ts should not be in scope")
	}
}
