package domain

import (
	"reflect"
	"testing"
)

func TestSeverityRankOrder(t *testing.T) {
	ordered := []Severity{SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow, SeverityInfo}
	for i := 1; i < len(ordered); i++ {
		if ordered[i-1].Rank() >= ordered[i].Rank() {
			t.Errorf("expected %s to rank above %s", ordered[i-1], ordered[i])
		}
	}
}

func TestSeverityUnknownRanksBelowInfo(t *testing.T) {
	if Severity("bogus").Rank() <= SeverityInfo.Rank() {
		t.Error("unknown severity should rank below info")
	}
	if Severity("bogus").Known() {
		t.Error("bogus should not be a known severity")
	}
}

func TestAtLeast(t *testing.T) {
	tests := []struct {
		name      string
		severity  Severity
		threshold Severity
		want      bool
	}{
		{"critical meets high threshold", SeverityCritical, SeverityHigh, true},
		{"high meets high threshold", SeverityHigh, SeverityHigh, true},
		{"medium misses high threshold", SeverityMedium, SeverityHigh, false},
		{"info meets info threshold", SeverityInfo, SeverityInfo, true},
		{"unknown never meets a threshold", Severity("weird"), SeverityInfo, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.severity.AtLeast(tt.threshold); got != tt.want {
				t.Errorf("AtLeast(%s, %s) = %v, want %v", tt.severity, tt.threshold, got, tt.want)
			}
		})
	}
}

func TestParseSeverity(t *testing.T) {
	sev, err := ParseSeverity("  High ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sev != SeverityHigh {
		t.Errorf("got %s, want high", sev)
	}

	if _, err := ParseSeverity("urgent"); err == nil {
		t.Error("expected error for unknown severity")
	}
}

func TestFilterBySeverityMonotonic(t *testing.T) {
	findings := []Finding{
		{ID: "a", Severity: SeverityInfo},
		{ID: "b", Severity: SeverityCritical},
		{ID: "c", Severity: SeverityMedium},
		{ID: "d", Severity: SeverityHigh},
		{ID: "e", Severity: SeverityLow},
	}

	// Filtering at medium then at high must equal filtering once at high.
	once := FilterBySeverity(findings, SeverityHigh)
	twice := FilterBySeverity(FilterBySeverity(findings, SeverityMedium), SeverityHigh)
	if !reflect.DeepEqual(once, twice) {
		t.Errorf("filter not monotonic: once=%v twice=%v", once, twice)
	}

	wantIDs := []string{"b", "d"}
	for i, f := range once {
		if f.ID != wantIDs[i] {
			t.Errorf("filter changed order: got %s at %d, want %s", f.ID, i, wantIDs[i])
		}
	}
}

func TestFormatSeverityCounts(t *testing.T) {
	findings := []Finding{
		{Severity: SeverityHigh},
		{Severity: SeverityCritical},
		{Severity: SeverityHigh},
		{Severity: SeverityInfo},
	}

	got := FormatSeverityCounts(findings)
	want := "1 critical, 2 high, 1 info"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	if got := FormatSeverityCounts(nil); got != "" {
		t.Errorf("empty findings should format to empty string, got %q", got)
	}
}
