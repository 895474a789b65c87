package schematron

import (
	"testing"

	"github.com/vortex/ooxml-validator/pkg/ooxml/ns"
	"github.com/vortex/ooxml-validator/pkg/ooxml/semantic"
)

func TestBuild_OneRulePerTag(t *testing.T) {
	cases := []struct {
		name string
		rule RawRule
		want semantic.Constraint
	}{
		{
			name: "range both bounds",
			rule: RawRule{ID: "r1", Context: "p:sldId", Test: "@id >= 256 and @id <= 2147483647"},
		},
		{
			name: "length max only",
			rule: RawRule{ID: "r2", Context: "p:cNvPr", Test: "string-length(@name) <= 256"},
		},
		{
			name: "pattern",
			rule: RawRule{ID: "r3", Context: "p:cNvPr", Test: "matches(@id, '^[1-9][0-9]*$')"},
		},
		{
			name: "unique",
			rule: RawRule{ID: "r4", Context: "p:sldIdLst", Test: "count(//p:sldId[@id = current()/@id]) = 1"},
		},
		{
			name: "relationship exists",
			rule: RawRule{ID: "r5", Context: "p:sldMasterId", Test: "relationship-exists(@r:id)"},
		},
		{
			name: "relationship type",
			rule: RawRule{ID: "r6", Context: "p:sldLayoutId", Test: "relationship-type(@r:id) = 'urn:example'"},
		},
		{
			name: "not equal",
			rule: RawRule{ID: "r7", Context: "a:off", Test: "@x != @y"},
		},
		{
			name: "enum literal",
			rule: RawRule{ID: "r8", Context: "p:custShow", Test: "@val = 'show'"},
		},
		{
			name: "enum list",
			rule: RawRule{ID: "r9", Context: "p:bldP", Test: "@build = ('p', 'allAtOnce', 'cust')"},
		},
		{
			name: "attributes present bare",
			rule: RawRule{ID: "r10", Context: "p:sldSz", Test: "@cx"},
		},
		{
			name: "attributes present and",
			rule: RawRule{ID: "r11", Context: "p:sldSz", Test: "@cx and @cy"},
		},
		{
			name: "attribute compare",
			rule: RawRule{ID: "r12", Context: "a:ext", Test: "@cx <= @cy"},
		},
		{
			name: "conditional",
			rule: RawRule{ID: "r13", Context: "p:sld", Test: "@show implies @id"},
		},
		{
			name: "cross part count upper",
			rule: RawRule{ID: "r14", Context: "p:presentation", Test: "count(theme://a:clrScheme) <= @maxThemeCount"},
		},
		{
			name: "cross part count lower",
			rule: RawRule{ID: "r15", Context: "p:sldIdLst", Test: "count(slideMaster://p:sldLayoutId) >= @minLayoutCount"},
		},
		{
			name: "and condition",
			rule: RawRule{ID: "r16", Context: "a:off", Test: "(@x >= -51206400) and (@x <= 51206400)"},
		},
		{
			name: "or condition",
			rule: RawRule{ID: "r17", Context: "p:spPr", Test: "(@val = 'none') or (@val = 'solid')"},
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			constraint, tag, ok := Build(c.rule)
			if !ok {
				t.Fatalf("Build(%q) failed to bridge, classified as %s", c.rule.Test, tag)
			}
			if constraint.ID() != c.rule.ID {
				t.Errorf("constraint id = %q, want %q", constraint.ID(), c.rule.ID)
			}
		})
	}
}

func TestBuild_RangeFieldValues(t *testing.T) {
	rule := RawRule{ID: "sch.slide-id-range", Context: "p:sldId", Test: "@id >= 256 and @id <= 2147483647"}
	constraint, tag, ok := Build(rule)
	if !ok || tag != TagAttributeValueRange {
		t.Fatalf("Build(%q) = (ok=%v tag=%s), want range", rule.Test, ok, tag)
	}
	rng, isRange := constraint.(semantic.Range)
	if !isRange {
		t.Fatalf("constraint is %T, want semantic.Range", constraint)
	}
	if rng.Attr != ns.QN("id") {
		t.Errorf("Attr = %v, want id", rng.Attr)
	}
	if rng.Min == nil || *rng.Min != 256 {
		t.Errorf("Min = %v, want 256", rng.Min)
	}
	if rng.Max == nil || *rng.Max != 2147483647 {
		t.Errorf("Max = %v, want 2147483647", rng.Max)
	}
}

func TestBuild_RangeMismatchedAttrsRejected(t *testing.T) {
	rule := RawRule{ID: "bad", Context: "a:off", Test: "@x >= 0 and @y <= 100"}
	_, _, ok := Build(rule)
	if ok {
		t.Fatal("expected Build to reject a Range clause naming two different attributes")
	}
}

func TestBuild_CrossPartCountPolicy(t *testing.T) {
	upper := RawRule{ID: "cpc-upper", Context: "p:presentation", Test: "count(theme://a:clrScheme) <= @maxThemeCount"}
	c, _, ok := Build(upper)
	if !ok {
		t.Fatal("expected upper-bound CrossPartCount rule to bridge")
	}
	cpc := c.(semantic.CrossPartCount)
	if cpc.Max == nil || *cpc.Max != 1 || cpc.Min != nil {
		t.Errorf("upper bound policy = %+v, want Max=1, Min=nil", cpc)
	}

	lower := RawRule{ID: "cpc-lower", Context: "p:sldIdLst", Test: "count(slideMaster://p:sldLayoutId) >= @minLayoutCount"}
	c, _, ok = Build(lower)
	if !ok {
		t.Fatal("expected lower-bound CrossPartCount rule to bridge")
	}
	cpc = c.(semantic.CrossPartCount)
	if cpc.Min == nil || *cpc.Min != 1 || cpc.Max != nil {
		t.Errorf("lower bound policy = %+v, want Min=1, Max=nil", cpc)
	}
}

func TestBuild_UnknownRuleRejected(t *testing.T) {
	rule := RawRule{ID: "unk", Context: "p:sld", Test: "following-sibling::p:sld/@id != @id"}
	_, tag, ok := Build(rule)
	if ok || tag != TagUnknown {
		t.Fatalf("Build(%q) = (ok=%v tag=%s), want (false, UNKNOWN)", rule.Test, ok, tag)
	}
}

func TestBuildCatalog_SkipsUnknownAndReportsStats(t *testing.T) {
	rules := []RawRule{
		{ID: "ok", Context: "p:sldId", Test: "@id >= 256 and @id <= 2147483647"},
		{ID: "bad", Context: "p:sld", Test: "document('ext.xml')/root/@val = @val"},
	}
	cat, stats, err := BuildCatalog(rules)
	if err != nil {
		t.Fatalf("BuildCatalog error: %v", err)
	}
	if cat == nil {
		t.Fatal("expected non-nil catalog")
	}
	if stats.Total != 2 || stats.Unknown != 1 {
		t.Errorf("stats = %+v, want Total=2 Unknown=1", stats)
	}
	if got := stats.Coverage(); got != 0.5 {
		t.Errorf("Coverage() = %v, want 0.5", got)
	}
}
