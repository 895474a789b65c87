package semantic

import (
	"regexp"

	"github.com/vortex/ooxml-validator/pkg/ooxml/ns"
)

func intP(n int) *int       { return &n }
func floatP(f float64) *float64 { return &f }

// SeedCatalog is the built-in, hand-authored constraint set for
// PresentationML. It covers the checks this validator ships with before
// any Schematron-derived rules are layered on top via the schematron
// bridge, grounded on the alert/check shapes in
// wahliyudin-why-pptx/internal/postflight: duplicate shape ids,
// degenerate shape geometry, and dangling master/slide references.
var SeedCatalog = NewCatalog(map[ns.QName][]Constraint{
	ns.QN("p:spTree"): {
		Unique{
			Base:    Base{RuleID: "pptx.duplicate-shape-id"},
			Element: ns.QN("p:cNvPr"),
			Attr:    ns.QN("id"),
		},
	},
	ns.QN("a:off"): {
		Range{
			Base: Base{RuleID: "pptx.shape-offset-range"},
			Attr: ns.QN("x"),
			Min:  floatP(-51206400),
			Max:  floatP(51206400),
		},
		Range{
			Base: Base{RuleID: "pptx.shape-offset-range"},
			Attr: ns.QN("y"),
			Min:  floatP(-51206400),
			Max:  floatP(51206400),
		},
	},
	ns.QN("a:ext"): {
		Range{
			Base: Base{RuleID: "pptx.shape-extent-positive"},
			Attr: ns.QN("cx"),
			Min:  floatP(1),
		},
		Range{
			Base: Base{RuleID: "pptx.shape-extent-positive"},
			Attr: ns.QN("cy"),
			Min:  floatP(1),
		},
	},
	ns.QN("p:sldMasterId"): {
		RelationshipExist{Base: Base{RuleID: "pptx.slide-master-relationship"}, Attr: ns.QN("r:id")},
	},
	ns.QN("p:sldId"): {
		RelationshipExist{Base: Base{RuleID: "pptx.slide-relationship"}, Attr: ns.QN("r:id")},
		Range{Base: Base{RuleID: "pptx.slide-id-minimum"}, Attr: ns.QN("id"), Min: floatP(256)},
	},
	ns.QN("p:cNvPr"): {
		Length{Base: Base{RuleID: "pptx.shape-name-length"}, Attr: ns.QN("name"), Max: intP(256)},
		Pattern{
			Base:   Base{RuleID: "pptx.shape-id-nonzero"},
			Attr:   ns.QN("id"),
			Regexp: mustCompile(`^[1-9][0-9]*$`),
		},
	},
})

func mustCompile(pattern string) *regexp.Regexp {
	return regexp.MustCompile(pattern)
}
