package schema

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// XSDType is the sealed interface over the small set of built-in XSD
// simple types this validator checks attribute and text values against.
// As with Particle, a closed set of concrete types replaces a dynamic
// "validate this value" callback so every variant's check is a Validate
// method on a type defined here, not scattered across registrations.
type XSDType interface {
	Validate(value string) error
	xsdKind() string
}

// StringType optionally constrains its values with a regular expression
// (an XSD pattern facet, pre-compiled), a minimum/maximum length (in
// Unicode code points, not bytes), and an enumeration of exact,
// case-sensitive allowed values. A nil/zero facet is unconstrained.
type StringType struct {
	Pattern *regexp.Regexp
	MinLen  *int
	MaxLen  *int
	Enum    []string
}

func (t StringType) xsdKind() string { return "string" }

func (t StringType) Validate(value string) error {
	if t.Pattern != nil && !t.Pattern.MatchString(value) {
		return &TypeError{Kind: "string", Value: value, Reason: "does not match pattern " + t.Pattern.String()}
	}
	if t.MinLen != nil || t.MaxLen != nil {
		n := utf8.RuneCountInString(value)
		if t.MinLen != nil && n < *t.MinLen {
			return &TypeError{Kind: "string", Value: value, Reason: "below minimum length " + strconv.Itoa(*t.MinLen)}
		}
		if t.MaxLen != nil && n > *t.MaxLen {
			return &TypeError{Kind: "string", Value: value, Reason: "above maximum length " + strconv.Itoa(*t.MaxLen)}
		}
	}
	if len(t.Enum) > 0 {
		allowed := false
		for _, e := range t.Enum {
			if value == e {
				allowed = true
				break
			}
		}
		if !allowed {
			return &TypeError{Kind: "string", Value: value, Reason: "not one of the allowed enumerated values"}
		}
	}
	return nil
}

// IntegerType constrains a decimal integer literal to an inclusive
// [Min, Max] range. A nil bound is unconstrained on that side.
type IntegerType struct {
	Min *int64
	Max *int64
}

func (t IntegerType) xsdKind() string { return "integer" }

func (t IntegerType) Validate(value string) error {
	n, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return &TypeError{Kind: "integer", Value: value, Reason: "not a valid integer literal"}
	}
	if t.Min != nil && n < *t.Min {
		return &TypeError{Kind: "integer", Value: value, Reason: "below minimum " + strconv.FormatInt(*t.Min, 10)}
	}
	if t.Max != nil && n > *t.Max {
		return &TypeError{Kind: "integer", Value: value, Reason: "above maximum " + strconv.FormatInt(*t.Max, 10)}
	}
	return nil
}

// DecimalType constrains a floating-point literal to an inclusive
// [Min, Max] range. NaN and Inf are never valid XSD decimals regardless
// of range, since xsd:decimal has no such values.
type DecimalType struct {
	Min *float64
	Max *float64
}

func (t DecimalType) xsdKind() string { return "decimal" }

func (t DecimalType) Validate(value string) error {
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return &TypeError{Kind: "decimal", Value: value, Reason: "not a valid decimal literal"}
	}
	if t.Min != nil && f < *t.Min {
		return &TypeError{Kind: "decimal", Value: value, Reason: "below minimum " + strconv.FormatFloat(*t.Min, 'g', -1, 64)}
	}
	if t.Max != nil && f > *t.Max {
		return &TypeError{Kind: "decimal", Value: value, Reason: "above maximum " + strconv.FormatFloat(*t.Max, 'g', -1, 64)}
	}
	return nil
}

// BooleanType accepts the four lexical forms xsd:boolean permits.
type BooleanType struct{}

func (BooleanType) xsdKind() string { return "boolean" }

func (BooleanType) Validate(value string) error {
	switch strings.TrimSpace(value) {
	case "true", "false", "1", "0":
		return nil
	default:
		return &TypeError{Kind: "boolean", Value: value, Reason: `must be "true", "false", "1", or "0"`}
	}
}

// ListType validates a whitespace-separated list, each item checked
// against Item.
type ListType struct {
	Item XSDType
}

func (t ListType) xsdKind() string { return "list" }

func (t ListType) Validate(value string) error {
	for _, item := range strings.Fields(value) {
		if err := t.Item.Validate(item); err != nil {
			return &TypeError{Kind: "list", Value: value, Reason: "item " + strconv.Quote(item) + ": " + err.Error()}
		}
	}
	return nil
}

// UnionType validates against each Member in order, succeeding as soon
// as one accepts the value (first-match-wins, as XSD union requires).
type UnionType struct {
	Members []XSDType
}

func (t UnionType) xsdKind() string { return "union" }

func (t UnionType) Validate(value string) error {
	var lastErr error
	for _, m := range t.Members {
		if err := m.Validate(value); err == nil {
			return nil
		} else {
			lastErr = err
		}
	}
	if lastErr == nil {
		return &TypeError{Kind: "union", Value: value, Reason: "no union member types"}
	}
	return &TypeError{Kind: "union", Value: value, Reason: "matched no union member: " + lastErr.Error()}
}

// TypeError reports why a value failed an XSDType's Validate.
type TypeError struct {
	Kind   string
	Value  string
	Reason string
}

func (e *TypeError) Error() string {
	return e.Kind + " value " + strconv.Quote(e.Value) + ": " + e.Reason
}
