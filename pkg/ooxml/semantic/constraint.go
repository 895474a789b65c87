// Package semantic implements the Schematron-derived rule engine: a
// closed set of constraint shapes (range, length, pattern, uniqueness,
// cross-reference, relationship, and logical-combinator checks) that
// the validator evaluates against every element a Catalog has an entry
// for.
package semantic

import (
	"regexp"

	"github.com/vortex/ooxml-validator/pkg/ooxml/ns"
)

// Constraint is the sealed interface over every semantic rule shape
// this engine understands. Per the spec's own guidance against
// "constraint heterogeneity," Constraint carries no Evaluate method of
// its own — every variant's evaluation logic lives in the single type
// switch in evaluate.go, so adding a nineteenth variant means touching
// one place, not hunting down every call site that type-asserts a
// Constraint.
type Constraint interface {
	ID() string
	constraintKind() string
}

// Base is embedded by every concrete constraint to supply its rule id
// without repeating the field and the ID() method in every variant. It
// is exported so packages outside semantic (the schematron bridge) can
// construct constraint values directly.
type Base struct {
	RuleID string
}

func (b Base) ID() string { return b.RuleID }

// Range requires a numeric attribute value to fall within [Min, Max].
// A nil bound is unconstrained on that side.
type Range struct {
	Base
	Attr ns.QName
	Min  *float64
	Max  *float64
}

func (Range) constraintKind() string { return "range" }

// Length requires an attribute's (or, if Attr is the zero QName, the
// element's own text content's) codepoint length to fall within
// [Min, Max].
type Length struct {
	Base
	Attr ns.QName
	Min  *int
	Max  *int
}

func (Length) constraintKind() string { return "length" }

// Pattern requires an attribute's value to fully match Regexp.
type Pattern struct {
	Base
	Attr            ns.QName
	Regexp          *regexp.Regexp
	CaseInsensitive bool
}

func (Pattern) constraintKind() string { return "pattern" }

// Enum requires an attribute's value to be one of Allowed. A single
// entry behaves as an exact-equals check.
type Enum struct {
	Base
	Attr            ns.QName
	Allowed         []string
	CaseInsensitive bool
}

func (Enum) constraintKind() string { return "enum" }

// NotEqual requires two attributes on the same element to differ.
type NotEqual struct {
	Base
	Attr      ns.QName
	OtherAttr ns.QName
}

func (NotEqual) constraintKind() string { return "not-equal" }

// Unique requires Attr's value to be distinct across every Element
// descendant within the part being checked (e.g. no two shapes sharing
// an id).
type Unique struct {
	Base
	Element ns.QName
	Attr    ns.QName
}

func (Unique) constraintKind() string { return "unique" }

// ReferenceExist requires Attr's value to match TargetAttr on some
// TargetElement elsewhere in the part (an internal id reference, as
// opposed to a package relationship reference).
type ReferenceExist struct {
	Base
	Attr          ns.QName
	TargetElement ns.QName
	TargetAttr    ns.QName
}

func (ReferenceExist) constraintKind() string { return "reference-exist" }

// IndexReference requires Attr's integer value to be a valid position
// (0-based) into the ordered set of ListElement children of the
// element's parent: 0 <= Attr < count(ListElement siblings).
type IndexReference struct {
	Base
	Attr        ns.QName
	ListElement ns.QName
}

func (IndexReference) constraintKind() string { return "index-reference" }

// RelationshipExist requires Attr (conventionally "r:id") to name a
// relationship that exists (and is not dangling) on the current part.
type RelationshipExist struct {
	Base
	Attr ns.QName
}

func (RelationshipExist) constraintKind() string { return "relationship-exist" }

// RelationshipType requires the relationship named by Attr to carry
// ExpectedRelType.
type RelationshipType struct {
	Base
	Attr            ns.QName
	ExpectedRelType string
}

func (RelationshipType) constraintKind() string { return "relationship-type" }

// MutualExclusive requires at most one of Attrs to be present on the
// element.
type MutualExclusive struct {
	Base
	Attrs []ns.QName
}

func (MutualExclusive) constraintKind() string { return "mutual-exclusive" }

// Presence requires Then to be present whenever If is present (a
// conditional-required-attribute check).
type Presence struct {
	Base
	If   ns.QName
	Then ns.QName
}

func (Presence) constraintKind() string { return "presence" }

// AttributesPresent requires every attribute in Attrs to be present on
// the element, unconditionally (as opposed to Presence, which is
// conditional on another attribute's presence).
type AttributesPresent struct {
	Base
	Attrs []ns.QName
}

func (AttributesPresent) constraintKind() string { return "attributes-present" }

// CompareOp is the comparison AttributeCompare applies between two
// values.
type CompareOp string

const (
	CompareEqual        CompareOp = "eq"
	CompareNotEqual     CompareOp = "ne"
	CompareLessThan     CompareOp = "lt"
	CompareLessEqual    CompareOp = "le"
	CompareGreaterThan  CompareOp = "gt"
	CompareGreaterEqual CompareOp = "ge"
)

// AttributeCompare requires Left Op Right to hold, comparing the two
// attributes as numbers.
type AttributeCompare struct {
	Base
	Left  ns.QName
	Right ns.QName
	Op    CompareOp
}

func (AttributeCompare) constraintKind() string { return "attribute-compare" }

// Or requires at least one of Children to hold.
type Or struct {
	Base
	Children []Constraint
}

func (Or) constraintKind() string { return "or" }

// And requires every one of Children to hold.
type And struct {
	Base
	Children []Constraint
}

func (And) constraintKind() string { return "and" }

// Conditional evaluates Then only when Cond holds; when Cond does not
// hold, the element is simply not subject to Then.
type Conditional struct {
	Base
	Cond Constraint
	Then Constraint
}

func (Conditional) constraintKind() string { return "conditional" }

// CrossPartCount requires the number of parts related to the current
// part by RelType to fall within [Min, Max] — used for checks like "a
// presentation must have exactly one theme relationship from its main
// document."
type CrossPartCount struct {
	Base
	RelType string
	Min     *int
	Max     *int
}

func (CrossPartCount) constraintKind() string { return "cross-part-count" }
