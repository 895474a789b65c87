package semantic

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/beevik/etree"

	"github.com/vortex/ooxml-validator/pkg/ooxml/finding"
	"github.com/vortex/ooxml-validator/pkg/ooxml/ns"
	"github.com/vortex/ooxml-validator/pkg/ooxml/valctx"
)

// Evaluate checks c against el, emitting a finding.CategorySemantic
// finding into cur's accumulator when the constraint is violated. It
// recovers from a panicking constraint (a malformed or over-ambitious
// Schematron-derived rule should never take the whole validation run
// down with it) and reports the panic itself as a finding instead.
// The return value is the usual "keep going" signal: false once the
// accumulator's cap is reached.
func Evaluate(cur *valctx.Cursor, el *etree.Element, c Constraint) (keepGoing bool) {
	keepGoing = true
	defer func() {
		if r := recover(); r != nil {
			keepGoing = cur.Emit(finding.CategorySemantic, finding.SeverityWarning,
				fmt.Sprintf("rule %s panicked during evaluation: %v", c.ID(), r),
				valctx.ElementName(el), "", c.ID())
		}
	}()
	return evaluate(cur, el, c)
}

func evaluate(cur *valctx.Cursor, el *etree.Element, c Constraint) bool {
	switch v := c.(type) {
	case Range:
		return evalRange(cur, el, v)
	case Length:
		return evalLength(cur, el, v)
	case Pattern:
		return evalPattern(cur, el, v)
	case Enum:
		return evalEnum(cur, el, v)
	case NotEqual:
		return evalNotEqual(cur, el, v)
	case Unique:
		return evalUnique(cur, el, v)
	case ReferenceExist:
		return evalReferenceExist(cur, el, v)
	case IndexReference:
		return evalIndexReference(cur, el, v)
	case RelationshipExist:
		return evalRelationshipExist(cur, el, v)
	case RelationshipType:
		return evalRelationshipType(cur, el, v)
	case MutualExclusive:
		return evalMutualExclusive(cur, el, v)
	case Presence:
		return evalPresence(cur, el, v)
	case AttributesPresent:
		return evalAttributesPresent(cur, el, v)
	case AttributeCompare:
		return evalAttributeCompare(cur, el, v)
	case Or:
		return evalOr(cur, el, v)
	case And:
		return evalAnd(cur, el, v)
	case Conditional:
		return evalConditional(cur, el, v)
	case CrossPartCount:
		return evalCrossPartCount(cur, el, v)
	default:
		return cur.Emit(finding.CategorySemantic, finding.SeverityWarning,
			fmt.Sprintf("rule %s has an unrecognized constraint kind", c.ID()),
			valctx.ElementName(el), "", c.ID())
	}
}

func attrValue(el *etree.Element, name ns.QName) (string, bool) {
	for i := range el.Attr {
		a := &el.Attr[i]
		uri := ""
		if a.Space != "" {
			uri = ns.URI(a.Space)
		}
		if a.Key == name.Local && uri == name.URI {
			return a.Value, true
		}
	}
	return "", false
}

func fail(cur *valctx.Cursor, el *etree.Element, ruleID, description string) bool {
	return cur.Emit(finding.CategorySemantic, finding.SeverityError, description, valctx.ElementName(el), "", ruleID)
}

func evalRange(cur *valctx.Cursor, el *etree.Element, c Range) bool {
	val, ok := attrValue(el, c.Attr)
	if !ok {
		return true
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
	if err != nil {
		return fail(cur, el, c.RuleID, c.Attr.String()+" must be numeric, got "+strconv.Quote(val))
	}
	if c.Min != nil && f < *c.Min {
		return fail(cur, el, c.RuleID, c.Attr.String()+" is below the minimum allowed value")
	}
	if c.Max != nil && f > *c.Max {
		return fail(cur, el, c.RuleID, c.Attr.String()+" is above the maximum allowed value")
	}
	return true
}

func evalLength(cur *valctx.Cursor, el *etree.Element, c Length) bool {
	val, ok := attrValue(el, c.Attr)
	if !ok {
		if c.Attr != (ns.QName{}) {
			return true
		}
		val = el.Text()
	}
	n := utf8.RuneCountInString(val)
	if c.Min != nil && n < *c.Min {
		return fail(cur, el, c.RuleID, fmt.Sprintf("value is too short (%d codepoints, minimum %d)", n, *c.Min))
	}
	if c.Max != nil && n > *c.Max {
		return fail(cur, el, c.RuleID, fmt.Sprintf("value is too long (%d codepoints, maximum %d)", n, *c.Max))
	}
	return true
}

func evalPattern(cur *valctx.Cursor, el *etree.Element, c Pattern) bool {
	val, ok := attrValue(el, c.Attr)
	if !ok {
		return true
	}
	subject := val
	if c.CaseInsensitive {
		subject = strings.ToLower(subject)
	}
	if c.Regexp != nil && !c.Regexp.MatchString(subject) {
		return fail(cur, el, c.RuleID, c.Attr.String()+" does not match the required pattern")
	}
	return true
}

func evalEnum(cur *valctx.Cursor, el *etree.Element, c Enum) bool {
	val, ok := attrValue(el, c.Attr)
	if !ok {
		return true
	}
	subject := val
	for _, allowed := range c.Allowed {
		if c.CaseInsensitive {
			if strings.EqualFold(subject, allowed) {
				return true
			}
		} else if subject == allowed {
			return true
		}
	}
	return fail(cur, el, c.RuleID, c.Attr.String()+" value "+strconv.Quote(val)+" is not one of the allowed values")
}

func evalNotEqual(cur *valctx.Cursor, el *etree.Element, c NotEqual) bool {
	a, aok := attrValue(el, c.Attr)
	b, bok := attrValue(el, c.OtherAttr)
	if !aok || !bok {
		return true
	}
	if a == b {
		return fail(cur, el, c.RuleID, c.Attr.String()+" and "+c.OtherAttr.String()+" must not be equal")
	}
	return true
}

func evalUnique(cur *valctx.Cursor, el *etree.Element, c Unique) bool {
	seen := map[string]bool{}
	root := topmost(el)
	ok := true
	walkMatching(root, c.Element, func(match *etree.Element) {
		val, has := attrValue(match, c.Attr)
		if !has {
			return
		}
		if seen[val] {
			if !fail(cur, match, c.RuleID, c.Attr.String()+" value "+strconv.Quote(val)+" duplicates another "+c.Element.String()+" in this part") {
				ok = false
			}
			return
		}
		seen[val] = true
	})
	return ok
}

func evalReferenceExist(cur *valctx.Cursor, el *etree.Element, c ReferenceExist) bool {
	val, ok := attrValue(el, c.Attr)
	if !ok {
		return true
	}
	root := topmost(el)
	found := false
	walkMatching(root, c.TargetElement, func(match *etree.Element) {
		if found {
			return
		}
		if tv, ok := attrValue(match, c.TargetAttr); ok && tv == val {
			found = true
		}
	})
	if !found {
		return fail(cur, el, c.RuleID, c.Attr.String()+" references "+strconv.Quote(val)+" which matches no "+c.TargetElement.String())
	}
	return true
}

func evalIndexReference(cur *valctx.Cursor, el *etree.Element, c IndexReference) bool {
	val, ok := attrValue(el, c.Attr)
	if !ok {
		return true
	}
	idx, err := strconv.Atoi(strings.TrimSpace(val))
	if err != nil {
		return fail(cur, el, c.RuleID, c.Attr.String()+" must be an integer index")
	}
	parent := el.Parent()
	if parent == nil {
		return true
	}
	count := 0
	for _, sib := range parent.ChildElements() {
		if qname(sib) == c.ListElement {
			count++
		}
	}
	if idx < 0 || idx >= count {
		return fail(cur, el, c.RuleID, fmt.Sprintf("%s value %d is out of range for %d %s siblings", c.Attr.String(), idx, count, c.ListElement.String()))
	}
	return true
}

func evalRelationshipExist(cur *valctx.Cursor, el *etree.Element, c RelationshipExist) bool {
	val, ok := attrValue(el, c.Attr)
	if !ok {
		return true
	}
	rel := cur.Part.Relationships().GetByRID(val)
	if rel == nil || rel.Dangling {
		return fail(cur, el, c.RuleID, c.Attr.String()+" references relationship id "+strconv.Quote(val)+" which does not resolve")
	}
	return true
}

func evalRelationshipType(cur *valctx.Cursor, el *etree.Element, c RelationshipType) bool {
	val, ok := attrValue(el, c.Attr)
	if !ok {
		return true
	}
	rel := cur.Part.Relationships().GetByRID(val)
	if rel == nil {
		return true // RelationshipExist is responsible for reporting the missing id itself
	}
	if rel.RelType != c.ExpectedRelType {
		return fail(cur, el, c.RuleID, c.Attr.String()+" resolves to an unexpected relationship type")
	}
	return true
}

func evalMutualExclusive(cur *valctx.Cursor, el *etree.Element, c MutualExclusive) bool {
	present := 0
	for _, a := range c.Attrs {
		if _, ok := attrValue(el, a); ok {
			present++
		}
	}
	if present > 1 {
		return fail(cur, el, c.RuleID, "at most one of the mutually exclusive attributes may be present")
	}
	return true
}

func evalPresence(cur *valctx.Cursor, el *etree.Element, c Presence) bool {
	if _, ok := attrValue(el, c.If); !ok {
		return true
	}
	if _, ok := attrValue(el, c.Then); !ok {
		return fail(cur, el, c.RuleID, c.Then.String()+" is required when "+c.If.String()+" is present")
	}
	return true
}

func evalAttributesPresent(cur *valctx.Cursor, el *etree.Element, c AttributesPresent) bool {
	for _, a := range c.Attrs {
		if _, ok := attrValue(el, a); !ok {
			return fail(cur, el, c.RuleID, a.String()+" is required on this element")
		}
	}
	return true
}

func evalAttributeCompare(cur *valctx.Cursor, el *etree.Element, c AttributeCompare) bool {
	lv, lok := attrValue(el, c.Left)
	rv, rok := attrValue(el, c.Right)
	if !lok || !rok {
		return true
	}
	lf, err1 := strconv.ParseFloat(strings.TrimSpace(lv), 64)
	rf, err2 := strconv.ParseFloat(strings.TrimSpace(rv), 64)
	if err1 != nil || err2 != nil {
		return fail(cur, el, c.RuleID, "both compared attributes must be numeric")
	}
	var ok bool
	switch c.Op {
	case CompareEqual:
		ok = lf == rf
	case CompareNotEqual:
		ok = lf != rf
	case CompareLessThan:
		ok = lf < rf
	case CompareLessEqual:
		ok = lf <= rf
	case CompareGreaterThan:
		ok = lf > rf
	case CompareGreaterEqual:
		ok = lf >= rf
	default:
		ok = true
	}
	if !ok {
		return fail(cur, el, c.RuleID, c.Left.String()+" "+string(c.Op)+" "+c.Right.String()+" does not hold")
	}
	return true
}

func evalOr(cur *valctx.Cursor, el *etree.Element, c Or) bool {
	if len(c.Children) == 0 {
		return true
	}
	for _, child := range c.Children {
		if conditionHolds(cur, el, child) {
			return true
		}
	}
	return fail(cur, el, c.RuleID, "none of the alternative conditions were satisfied")
}

func evalAnd(cur *valctx.Cursor, el *etree.Element, c And) bool {
	keepGoing := true
	for _, child := range c.Children {
		if !evaluate(cur, el, child) {
			keepGoing = false
		}
	}
	return keepGoing
}

func evalConditional(cur *valctx.Cursor, el *etree.Element, c Conditional) bool {
	if !conditionHolds(cur, el, c.Cond) {
		return true
	}
	return evaluate(cur, el, c.Then)
}

// conditionHolds evaluates c purely as a predicate, against a
// throwaway accumulator, so testing the condition never itself emits a
// finding.
func conditionHolds(cur *valctx.Cursor, el *etree.Element, c Constraint) bool {
	probe := valctx.New(cur.Package, cur.Part, cur.FormatVersion, finding.NewAccumulator(1))
	return evaluate(probe, el, c)
}

func evalCrossPartCount(cur *valctx.Cursor, el *etree.Element, c CrossPartCount) bool {
	n := 0
	for _, rel := range cur.Part.Relationships().All() {
		if rel.RelType == c.RelType && !rel.Dangling {
			n++
		}
	}
	if c.Min != nil && n < *c.Min {
		return fail(cur, el, c.RuleID, fmt.Sprintf("expected at least %d relationship(s) of type %s, found %d", *c.Min, c.RelType, n))
	}
	if c.Max != nil && n > *c.Max {
		return fail(cur, el, c.RuleID, fmt.Sprintf("expected at most %d relationship(s) of type %s, found %d", *c.Max, c.RelType, n))
	}
	return true
}

// topmost returns the root of el's document, so Unique/ReferenceExist
// can search the whole part rather than just el's own subtree.
func topmost(el *etree.Element) *etree.Element {
	cur := el
	for cur.Parent() != nil {
		cur = cur.Parent()
	}
	return cur
}

func qname(el *etree.Element) ns.QName {
	return ns.QName{Local: el.Tag, URI: el.NamespaceURI()}
}

// walkMatching calls visit for every descendant of root (root included)
// whose qualified name equals name.
func walkMatching(root *etree.Element, name ns.QName, visit func(*etree.Element)) {
	if qname(root) == name {
		visit(root)
	}
	for _, child := range root.ChildElements() {
		walkMatching(child, name, visit)
	}
}
