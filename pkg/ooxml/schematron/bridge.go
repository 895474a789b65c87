package schematron

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/vortex/ooxml-validator/pkg/ooxml/ns"
	"github.com/vortex/ooxml-validator/pkg/ooxml/semantic"
)

// compileSchematronRegex compiles a pattern from the rule inventory,
// anchoring it to the whole string if the author did not, since the
// Pattern constraint's contract is a full match, not a search.
func compileSchematronRegex(pattern string) (*regexp.Regexp, error) {
	if !strings.HasPrefix(pattern, "^") || !strings.HasSuffix(pattern, "$") {
		pattern = "^(?:" + pattern + ")$"
	}
	return regexp.Compile(pattern)
}

// Build classifies rule.Test and, for every tag but UNKNOWN, converts
// it into a concrete semantic.Constraint. The second return value is
// false for UNKNOWN rules and for rules whose test matched a tag's
// shape loosely but failed a structural consistency check (e.g. a
// Range clause naming two different attributes) — both cases are
// reported identically to the caller as "could not bridge this rule."
func Build(rule RawRule) (semantic.Constraint, Tag, bool) {
	tag := Classify(rule.Test)
	c, ok := build(rule, tag)
	return c, tag, ok
}

func build(rule RawRule, tag Tag) (semantic.Constraint, bool) {
	switch tag {
	case TagAttributeValueRange:
		return buildRange(rule)
	case TagAttributeValueLength:
		return buildLength(rule)
	case TagAttributeValuePattern:
		return buildPattern(rule)
	case TagUniqueAttribute:
		return buildUnique(rule)
	case TagElementReference:
		return buildElementReference(rule)
	case TagRelationshipType:
		return buildRelationshipType(rule)
	case TagAttributeNotEqual:
		return buildNotEqual(rule)
	case TagAttributeEqual:
		return buildEqual(rule)
	case TagAttributesPresent:
		return buildAttributesPresent(rule)
	case TagAttributeCompare:
		return buildAttributeCompare(rule)
	case TagConditionalValue:
		return buildConditional(rule)
	case TagCrossPartCount:
		return buildCrossPartCount(rule)
	case TagAndCondition:
		return buildAnd(rule)
	case TagOrCondition:
		return buildOr(rule)
	default:
		return nil, false
	}
}

// buildExpr is like build but operates on a bare sub-expression (one
// branch of an AND/OR split) rather than a full RawRule, reusing id and
// message from the parent rule since sub-expressions are not
// separately addressable in the inventory.
func buildExpr(rule RawRule, expr string) (semantic.Constraint, bool) {
	sub := rule
	sub.Test = expr
	tag := Classify(expr)
	return build(sub, tag)
}

func parseNumeric(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	switch s {
	case "NaN":
		return math.NaN(), true
	case "INF", "+INF":
		return math.Inf(1), true
	case "-INF":
		return math.Inf(-1), true
	}
	s = strings.TrimSuffix(s, "f")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func buildRange(rule RawRule) (semantic.Constraint, bool) {
	base := semantic.Base{RuleID: rule.ID}
	if m := reRangeBoth.FindStringSubmatch(rule.Test); m != nil {
		if m[1] != m[3] {
			return nil, false
		}
		minV, ok1 := parseNumeric(m[2])
		maxV, ok2 := parseNumeric(m[4])
		if !ok1 || !ok2 {
			return nil, false
		}
		return semantic.Range{Base: base, Attr: ns.QN(m[1]), Min: &minV, Max: &maxV}, true
	}
	if m := reRangeMin.FindStringSubmatch(rule.Test); m != nil {
		v, ok := parseNumeric(m[2])
		if !ok {
			return nil, false
		}
		return semantic.Range{Base: base, Attr: ns.QN(m[1]), Min: &v}, true
	}
	if m := reRangeMax.FindStringSubmatch(rule.Test); m != nil {
		v, ok := parseNumeric(m[2])
		if !ok {
			return nil, false
		}
		return semantic.Range{Base: base, Attr: ns.QN(m[1]), Max: &v}, true
	}
	return nil, false
}

func buildLength(rule RawRule) (semantic.Constraint, bool) {
	base := semantic.Base{RuleID: rule.ID}
	if m := reLengthBoth.FindStringSubmatch(rule.Test); m != nil {
		if m[1] != m[3] {
			return nil, false
		}
		minV, err1 := strconv.Atoi(m[2])
		maxV, err2 := strconv.Atoi(m[4])
		if err1 != nil || err2 != nil {
			return nil, false
		}
		return semantic.Length{Base: base, Attr: ns.QN(m[1]), Min: &minV, Max: &maxV}, true
	}
	if m := reLengthMin.FindStringSubmatch(rule.Test); m != nil {
		v, err := strconv.Atoi(m[2])
		if err != nil {
			return nil, false
		}
		return semantic.Length{Base: base, Attr: ns.QN(m[1]), Min: &v}, true
	}
	if m := reLengthMax.FindStringSubmatch(rule.Test); m != nil {
		v, err := strconv.Atoi(m[2])
		if err != nil {
			return nil, false
		}
		return semantic.Length{Base: base, Attr: ns.QN(m[1]), Max: &v}, true
	}
	return nil, false
}

func buildPattern(rule RawRule) (semantic.Constraint, bool) {
	m := rePattern.FindStringSubmatch(rule.Test)
	if m == nil {
		return nil, false
	}
	re, err := compileSchematronRegex(m[2])
	if err != nil {
		return nil, false
	}
	return semantic.Pattern{Base: semantic.Base{RuleID: rule.ID}, Attr: ns.QN(m[1]), Regexp: re}, true
}

func buildUnique(rule RawRule) (semantic.Constraint, bool) {
	m := reUnique.FindStringSubmatch(rule.Test)
	if m == nil || m[2] != m[3] {
		return nil, false
	}
	return semantic.Unique{
		Base:    semantic.Base{RuleID: rule.ID},
		Element: ns.QN(m[1]),
		Attr:    ns.QN(m[2]),
	}, true
}

func buildElementReference(rule RawRule) (semantic.Constraint, bool) {
	base := semantic.Base{RuleID: rule.ID}
	if m := reRelationshipExist.FindStringSubmatch(rule.Test); m != nil {
		return semantic.RelationshipExist{Base: base, Attr: ns.QN(m[1])}, true
	}
	if m := reReferenceExist.FindStringSubmatch(rule.Test); m != nil {
		return semantic.ReferenceExist{
			Base:          base,
			Attr:          ns.QN(m[1]),
			TargetElement: ns.QN(m[2]),
			TargetAttr:    ns.QN(m[3]),
		}, true
	}
	if m := reIndexReference.FindStringSubmatch(rule.Test); m != nil {
		if m[1] != m[2] {
			return nil, false
		}
		return semantic.IndexReference{Base: base, Attr: ns.QN(m[1]), ListElement: ns.QN(m[3])}, true
	}
	return nil, false
}

func buildRelationshipType(rule RawRule) (semantic.Constraint, bool) {
	m := reRelationshipType.FindStringSubmatch(rule.Test)
	if m == nil {
		return nil, false
	}
	return semantic.RelationshipType{
		Base:            semantic.Base{RuleID: rule.ID},
		Attr:            ns.QN(m[1]),
		ExpectedRelType: m[2],
	}, true
}

func buildNotEqual(rule RawRule) (semantic.Constraint, bool) {
	m := reNotEqual.FindStringSubmatch(rule.Test)
	if m == nil {
		return nil, false
	}
	return semantic.NotEqual{
		Base:      semantic.Base{RuleID: rule.ID},
		Attr:      ns.QN(m[1]),
		OtherAttr: ns.QN(m[2]),
	}, true
}

func buildEqual(rule RawRule) (semantic.Constraint, bool) {
	base := semantic.Base{RuleID: rule.ID}
	if m := reEqualLiteral.FindStringSubmatch(rule.Test); m != nil {
		return semantic.Enum{Base: base, Attr: ns.QN(m[1]), Allowed: []string{m[2]}}, true
	}
	if m := reEqualList.FindStringSubmatch(rule.Test); m != nil {
		var allowed []string
		for _, lit := range strings.Split(m[2], ",") {
			allowed = append(allowed, strings.Trim(strings.TrimSpace(lit), "'"))
		}
		return semantic.Enum{Base: base, Attr: ns.QN(m[1]), Allowed: allowed}, true
	}
	return nil, false
}

func buildAttributesPresent(rule RawRule) (semantic.Constraint, bool) {
	base := semantic.Base{RuleID: rule.ID}
	if m := reBareAttr.FindStringSubmatch(rule.Test); m != nil {
		return semantic.AttributesPresent{Base: base, Attrs: []ns.QName{ns.QN(m[1])}}, true
	}
	parts := splitTopLevel(rule.Test, "and")
	if len(parts) < 2 {
		return nil, false
	}
	attrs := make([]ns.QName, 0, len(parts))
	for _, p := range parts {
		m := reBareAttr.FindStringSubmatch(p)
		if m == nil {
			return nil, false
		}
		attrs = append(attrs, ns.QN(m[1]))
	}
	return semantic.AttributesPresent{Base: base, Attrs: attrs}, true
}

func buildAttributeCompare(rule RawRule) (semantic.Constraint, bool) {
	m := reAttributeCompare.FindStringSubmatch(rule.Test)
	if m == nil {
		return nil, false
	}
	op, ok := compareOpFor(m[2])
	if !ok {
		return nil, false
	}
	return semantic.AttributeCompare{
		Base:  semantic.Base{RuleID: rule.ID},
		Left:  ns.QN(m[1]),
		Right: ns.QN(m[3]),
		Op:    op,
	}, true
}

func compareOpFor(symbol string) (semantic.CompareOp, bool) {
	switch symbol {
	case "<":
		return semantic.CompareLessThan, true
	case "<=":
		return semantic.CompareLessEqual, true
	case ">":
		return semantic.CompareGreaterThan, true
	case ">=":
		return semantic.CompareGreaterEqual, true
	case "=":
		return semantic.CompareEqual, true
	case "!=":
		return semantic.CompareNotEqual, true
	}
	return "", false
}

func buildConditional(rule RawRule) (semantic.Constraint, bool) {
	m := reConditional.FindStringSubmatch(rule.Test)
	if m == nil {
		return nil, false
	}
	return semantic.Conditional{
		Base: semantic.Base{RuleID: rule.ID},
		Cond: semantic.AttributesPresent{Base: semantic.Base{RuleID: rule.ID}, Attrs: []ns.QName{ns.QN(m[1])}},
		Then: semantic.AttributesPresent{Base: semantic.Base{RuleID: rule.ID}, Attrs: []ns.QName{ns.QN(m[2])}},
	}, true
}

func buildCrossPartCount(rule RawRule) (semantic.Constraint, bool) {
	m := reCrossPartCount.FindStringSubmatch(rule.Test)
	if m == nil {
		return nil, false
	}
	relType, ok := roleRelType(m[1])
	if !ok {
		return nil, false
	}
	op := m[3]
	// The count is compared against an attribute resolved at evaluation
	// time in the original Schematron rule, but semantic.CrossPartCount
	// carries a static bound fixed at catalog-build time; this bridge
	// approximates that dynamic comparison with the conventional policy
	// the operator direction implies — "at most one" for an upper-bound
	// comparison, "at least one" for a lower-bound one. An inventory
	// rule that needs an exact numeric threshold should express it as a
	// literal bound in a future revision of the grammar.
	switch op {
	case "<=", "<", "=":
		max := 1
		return semantic.CrossPartCount{Base: semantic.Base{RuleID: rule.ID}, RelType: relType, Max: &max}, true
	case ">=", ">":
		min := 1
		return semantic.CrossPartCount{Base: semantic.Base{RuleID: rule.ID}, RelType: relType, Min: &min}, true
	}
	return nil, false
}

// roleRelType resolves a well-known role name used in the compact rule
// inventory (e.g. "theme", "slideMaster") to the package relationship
// type it corresponds to.
func roleRelType(role string) (string, bool) {
	switch role {
	case "theme":
		return "http://schemas.openxmlformats.org/officeDocument/2006/relationships/theme", true
	case "slideMaster":
		return "http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideMaster", true
	case "slideLayout":
		return "http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideLayout", true
	case "slide":
		return "http://schemas.openxmlformats.org/officeDocument/2006/relationships/slide", true
	}
	return "", false
}

func buildAnd(rule RawRule) (semantic.Constraint, bool) {
	parts := splitTopLevel(rule.Test, "and")
	children := make([]semantic.Constraint, 0, len(parts))
	for _, p := range parts {
		c, ok := buildExpr(rule, p)
		if !ok {
			return nil, false
		}
		children = append(children, c)
	}
	return semantic.And{Base: semantic.Base{RuleID: rule.ID}, Children: children}, true
}

func buildOr(rule RawRule) (semantic.Constraint, bool) {
	parts := splitTopLevel(rule.Test, "or")
	children := make([]semantic.Constraint, 0, len(parts))
	for _, p := range parts {
		c, ok := buildExpr(rule, p)
		if !ok {
			return nil, false
		}
		children = append(children, c)
	}
	return semantic.Or{Base: semantic.Base{RuleID: rule.ID}, Children: children}, true
}
