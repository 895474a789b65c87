package schematron

import "testing"

func TestBuildEmbeddedCatalog_MeetsCoverageTarget(t *testing.T) {
	cat, stats, err := BuildEmbeddedCatalog()
	if err != nil {
		t.Fatalf("BuildEmbeddedCatalog error: %v", err)
	}
	if cat == nil {
		t.Fatal("expected non-nil catalog")
	}
	if stats.Total == 0 {
		t.Fatal("expected a non-empty embedded rule inventory")
	}
	if cov := stats.Coverage(); cov < 0.85 {
		t.Errorf("Coverage() = %v over %d rules (%d unknown), want >= 0.85", cov, stats.Total, stats.Unknown)
	}
}

func TestBuildEmbeddedCatalog_HasExpectedUnknowns(t *testing.T) {
	_, stats, err := BuildEmbeddedCatalog()
	if err != nil {
		t.Fatalf("BuildEmbeddedCatalog error: %v", err)
	}
	if stats.ByTag[TagUnknown] == 0 {
		t.Error("expected at least one deliberately unclassifiable rule in the embedded fixture")
	}
}

func TestLoadEmbedded_EveryRuleHasRequiredFields(t *testing.T) {
	rules, err := LoadEmbedded()
	if err != nil {
		t.Fatalf("LoadEmbedded error: %v", err)
	}
	if len(rules) == 0 {
		t.Fatal("expected a non-empty embedded rule set")
	}
	seen := make(map[string]bool)
	for _, r := range rules {
		if r.ID == "" || r.Context == "" || r.Test == "" {
			t.Errorf("rule %+v missing a required field", r)
		}
		if seen[r.ID] {
			t.Errorf("duplicate rule id %q", r.ID)
		}
		seen[r.ID] = true
	}
}
