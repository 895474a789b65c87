package schematron

import "regexp"

// Tag identifies which of the closed set of recognized test-expression
// shapes a rule's test matches. UNKNOWN means the expression fell
// outside the grammar entirely; it is not an error, just uncovered.
type Tag string

const (
	TagAttributeValueRange  Tag = "ATTRIBUTE_VALUE_RANGE"
	TagAttributeValueLength Tag = "ATTRIBUTE_VALUE_LENGTH"
	TagAttributeValuePattern Tag = "ATTRIBUTE_VALUE_PATTERN"
	TagUniqueAttribute      Tag = "UNIQUE_ATTRIBUTE"
	TagElementReference     Tag = "ELEMENT_REFERENCE"
	TagRelationshipType     Tag = "RELATIONSHIP_TYPE"
	TagAttributeNotEqual    Tag = "ATTRIBUTE_NOT_EQUAL"
	TagAttributeEqual       Tag = "ATTRIBUTE_EQUAL"
	TagAttributesPresent    Tag = "ATTRIBUTES_PRESENT"
	TagAttributeCompare     Tag = "ATTRIBUTE_COMPARE"
	TagAndCondition         Tag = "AND_CONDITION"
	TagOrCondition          Tag = "OR_CONDITION"
	TagConditionalValue     Tag = "CONDITIONAL_VALUE"
	TagCrossPartCount       Tag = "CROSS_PART_COUNT"
	TagUnknown              Tag = "UNKNOWN"
)

// Numeric literal forms accepted in a Range bound: signed integers,
// decimals, scientific notation (-1.7E308), float-suffix (32767f), and
// the NaN/INF sentinels Schematron rules use to forbid non-finite
// values.
const (
	attrNamePat = `[A-Za-z_][\w-]*(?::[A-Za-z_][\w-]*)?`
	elemNamePat = `[A-Za-z_][\w:-]*`
	roleNamePat = `[A-Za-z_][\w-]*`
	numPat      = `(?:NaN|[+-]?INF|[+-]?\d+(?:\.\d+)?(?:[eE][+-]?\d+)?f?)`
)

var (
	reRangeBoth = regexp.MustCompile(`^@(` + attrNamePat + `)\s*>=\s*(` + numPat + `)\s+and\s+@(` + attrNamePat + `)\s*<=\s*(` + numPat + `)$`)
	reRangeMin  = regexp.MustCompile(`^@(` + attrNamePat + `)\s*>=\s*(` + numPat + `)$`)
	reRangeMax  = regexp.MustCompile(`^@(` + attrNamePat + `)\s*<=\s*(` + numPat + `)$`)

	reLengthBoth = regexp.MustCompile(`^string-length\(@(` + attrNamePat + `)\)\s*>=\s*(\d+)\s+and\s+string-length\(@(` + attrNamePat + `)\)\s*<=\s*(\d+)$`)
	reLengthMin  = regexp.MustCompile(`^string-length\(@(` + attrNamePat + `)\)\s*>=\s*(\d+)$`)
	reLengthMax  = regexp.MustCompile(`^string-length\(@(` + attrNamePat + `)\)\s*<=\s*(\d+)$`)

	rePattern = regexp.MustCompile(`^matches\(@(` + attrNamePat + `),\s*'([^']*)'\)$`)

	reUnique = regexp.MustCompile(`^count\(//(` + elemNamePat + `)\[@(` + attrNamePat + `)\s*=\s*current\(\)/@(` + attrNamePat + `)\]\)\s*=\s*1$`)

	reRelationshipType   = regexp.MustCompile(`^relationship-type\(@(` + attrNamePat + `)\)\s*=\s*'([^']*)'$`)
	reRelationshipExist  = regexp.MustCompile(`^relationship-exists\(@(` + attrNamePat + `)\)$`)
	reReferenceExist     = regexp.MustCompile(`^@(` + attrNamePat + `)\s*=\s*//(` + elemNamePat + `)/@(` + attrNamePat + `)$`)
	reIndexReference     = regexp.MustCompile(`^@(` + attrNamePat + `)\s*>=\s*0\s+and\s+@(` + attrNamePat + `)\s*<\s*count\(//(` + elemNamePat + `)\)$`)

	reNotEqual     = regexp.MustCompile(`^@(` + attrNamePat + `)\s*!=\s*@(` + attrNamePat + `)$`)
	reEqualLiteral = regexp.MustCompile(`^@(` + attrNamePat + `)\s*=\s*'([^']*)'$`)
	reEqualList    = regexp.MustCompile(`^@(` + attrNamePat + `)\s*=\s*\(\s*((?:'[^']*'\s*,\s*)*'[^']*')\s*\)$`)

	reConditional = regexp.MustCompile(`^@(` + attrNamePat + `)\s+implies\s+@(` + attrNamePat + `)$`)

	reCrossPartCount = regexp.MustCompile(`^count\((` + roleNamePat + `)://(` + elemNamePat + `)\)\s*(=|!=|<=|>=|<|>)\s*@(` + attrNamePat + `)$`)

	reAttributeCompare = regexp.MustCompile(`^@(` + attrNamePat + `)\s*(<=|>=|<|>)\s*@(` + attrNamePat + `)$`)

	reBareAttr = regexp.MustCompile(`^@(` + attrNamePat + `)$`)
)

// Classify assigns test one of the fourteen recognized tags, or
// UNKNOWN when nothing in the grammar matches. Whole-expression shapes
// (a Range with both bounds, an IndexReference, and so on) are checked
// before the generic top-level AND/OR split so that an "and" internal
// to one of those shapes is not mistaken for a logical conjunction of
// two independent sub-rules.
func Classify(test string) Tag {
	switch {
	case reConditional.MatchString(test):
		return TagConditionalValue
	case reCrossPartCount.MatchString(test):
		return TagCrossPartCount
	case reUnique.MatchString(test):
		return TagUniqueAttribute
	case reRelationshipType.MatchString(test):
		return TagRelationshipType
	case reRelationshipExist.MatchString(test), reReferenceExist.MatchString(test), reIndexReference.MatchString(test):
		return TagElementReference
	case reLengthBoth.MatchString(test), reLengthMin.MatchString(test), reLengthMax.MatchString(test):
		return TagAttributeValueLength
	case reRangeBoth.MatchString(test), reRangeMin.MatchString(test), reRangeMax.MatchString(test):
		return TagAttributeValueRange
	case rePattern.MatchString(test):
		return TagAttributeValuePattern
	case reNotEqual.MatchString(test):
		return TagAttributeNotEqual
	case reEqualLiteral.MatchString(test), reEqualList.MatchString(test):
		return TagAttributeEqual
	case reAttributeCompare.MatchString(test):
		return TagAttributeCompare
	case reBareAttr.MatchString(test):
		return TagAttributesPresent
	}

	if orParts := splitTopLevel(test, "or"); len(orParts) > 1 {
		return TagOrCondition
	}
	if andParts := splitTopLevel(test, "and"); len(andParts) > 1 {
		for _, p := range andParts {
			if !reBareAttr.MatchString(p) {
				return TagAndCondition
			}
		}
		return TagAttributesPresent
	}
	return TagUnknown
}
