package schema

import "github.com/vortex/ooxml-validator/pkg/ooxml/ns"

func intPtr(n int64) *int64 { return &n }
func lenPtr(n int) *int     { return &n }

// PresentationMLTable is the built-in element-constraint table for the
// core PresentationML elements: the presentation-level lists
// (slides, slide masters), a slide's top-level shape
// tree container, and the handful of DrawingML geometry elements a
// presentation validator needs an opinion about (off/ext extents, which
// every shape transform carries). It is not a transcription of the full
// ECMA-376 PresentationML schema — it covers the elements the
// semantic/Schematron rule catalog actually reasons about, in keeping
// with this validator's scope.
var PresentationMLTable = NewTable(
	&ElementConstraint{
		Name: ns.QN("p:presentation"),
		Content: Sequence{Items: []Particle{
			ElementRef{Name: ns.QN("p:sldMasterIdLst"), Min: 0, Max: 1},
			ElementRef{Name: ns.QN("p:notesMasterIdLst"), Min: 0, Max: 1},
			ElementRef{Name: ns.QN("p:handoutMasterIdLst"), Min: 0, Max: 1},
			ElementRef{Name: ns.QN("p:sldIdLst"), Min: 0, Max: 1},
			ElementRef{Name: ns.QN("p:sldSz"), Min: 0, Max: 1},
			ElementRef{Name: ns.QN("p:notesSz"), Min: 1, Max: 1},
			Any{Min: 0, Max: unbounded},
		}},
	},
	&ElementConstraint{
		Name:    ns.QN("p:sldMasterIdLst"),
		Content: Sequence{Items: []Particle{ElementRef{Name: ns.QN("p:sldMasterId"), Min: 1, Max: unbounded}}},
	},
	&ElementConstraint{
		Name: ns.QN("p:sldMasterId"),
		Attributes: []AttributeConstraint{
			{Name: ns.QN("r:id"), Type: StringType{}, Required: true},
		},
	},
	&ElementConstraint{
		Name:    ns.QN("p:sldIdLst"),
		Content: Sequence{Items: []Particle{ElementRef{Name: ns.QN("p:sldId"), Min: 0, Max: unbounded}}},
	},
	&ElementConstraint{
		Name: ns.QN("p:sldId"),
		Attributes: []AttributeConstraint{
			{Name: ns.QN("id"), Type: IntegerType{Min: intPtr(256)}, Required: true},
			{Name: ns.QN("r:id"), Type: StringType{}, Required: true},
		},
	},
	&ElementConstraint{
		Name: ns.QN("p:sldSz"),
		Attributes: []AttributeConstraint{
			{Name: ns.QN("cx"), Type: IntegerType{Min: intPtr(1), Max: intPtr(51206400)}, Required: true},
			{Name: ns.QN("cy"), Type: IntegerType{Min: intPtr(1), Max: intPtr(51206400)}, Required: true},
		},
	},
	&ElementConstraint{
		Name: ns.QN("p:notesSz"),
		Attributes: []AttributeConstraint{
			{Name: ns.QN("cx"), Type: IntegerType{Min: intPtr(1)}, Required: true},
			{Name: ns.QN("cy"), Type: IntegerType{Min: intPtr(1)}, Required: true},
		},
	},
	&ElementConstraint{
		Name: ns.QN("p:sld"),
		Content: Sequence{Items: []Particle{
			ElementRef{Name: ns.QN("p:cSld"), Min: 1, Max: 1},
			ElementRef{Name: ns.QN("p:clrMapOvr"), Min: 0, Max: 1},
			ElementRef{Name: ns.QN("p:transition"), Min: 0, Max: 1},
			ElementRef{Name: ns.QN("p:timing"), Min: 0, Max: 1},
			Any{Min: 0, Max: unbounded},
		}},
	},
	&ElementConstraint{
		Name: ns.QN("p:cSld"),
		Content: Sequence{Items: []Particle{
			ElementRef{Name: ns.QN("p:bg"), Min: 0, Max: 1},
			ElementRef{Name: ns.QN("p:spTree"), Min: 1, Max: 1},
			Any{Min: 0, Max: unbounded},
		}},
	},
	&ElementConstraint{
		Name: ns.QN("p:spTree"),
		Content: Sequence{Items: []Particle{
			ElementRef{Name: ns.QN("p:nvGrpSpPr"), Min: 1, Max: 1},
			ElementRef{Name: ns.QN("p:grpSpPr"), Min: 1, Max: 1},
			Choice{Min: 0, Max: unbounded, Items: []Particle{
				ElementRef{Name: ns.QN("p:sp")},
				ElementRef{Name: ns.QN("p:grpSp")},
				ElementRef{Name: ns.QN("p:graphicFrame")},
				ElementRef{Name: ns.QN("p:cxnSp")},
				ElementRef{Name: ns.QN("p:pic")},
				ElementRef{Name: ns.QN("p:contentPart")},
			}},
		}},
	},
	&ElementConstraint{
		Name: ns.QN("p:cNvPr"),
		Attributes: []AttributeConstraint{
			{Name: ns.QN("id"), Type: IntegerType{Min: intPtr(1)}, Required: true},
			{Name: ns.QN("name"), Type: StringType{MaxLen: lenPtr(256)}, Required: true},
		},
	},
	&ElementConstraint{
		Name: ns.QN("a:off"),
		Attributes: []AttributeConstraint{
			{Name: ns.QN("x"), Type: IntegerType{Min: intPtr(-51206400), Max: intPtr(51206400)}, Required: true},
			{Name: ns.QN("y"), Type: IntegerType{Min: intPtr(-51206400), Max: intPtr(51206400)}, Required: true},
		},
	},
	&ElementConstraint{
		Name: ns.QN("a:ext"),
		Attributes: []AttributeConstraint{
			{Name: ns.QN("cx"), Type: IntegerType{Min: intPtr(0)}, Required: true},
			{Name: ns.QN("cy"), Type: IntegerType{Min: intPtr(0)}, Required: true},
		},
	},
)
