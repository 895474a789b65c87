// Package schematron loads the compact, packaging-time-generated rule
// inventory derived from the vendor Schematron sources, classifies each
// rule's test expression into one of a closed set of tags, and bridges
// the classified rules into semantic.Constraint values the validator
// can run directly. It deliberately does not embed an XPath engine: any
// test expression outside the recognized grammar is tagged UNKNOWN and
// skipped at load time.
package schematron

import (
	_ "embed"

	"gopkg.in/yaml.v3"
)

//go:embed rules.yaml
var embeddedRules []byte

// RawRule is one entry in the compact rule inventory: the element it
// attaches to, a free-form boolean test expression, a message template,
// and the rule's stable identifier.
type RawRule struct {
	ID      string `yaml:"id"`
	Context string `yaml:"context"`
	Test    string `yaml:"test"`
	Message string `yaml:"message"`
}

// LoadEmbedded parses the rule inventory baked into the binary via
// go:embed. This is the inventory every Validator bridges; LoadBytes
// parses any other inventory in the same format.
func LoadEmbedded() ([]RawRule, error) {
	return LoadBytes(embeddedRules)
}

// LoadBytes parses a YAML rule inventory in the same shape as the
// embedded one: a top-level list of {id, context, test, message}
// records.
func LoadBytes(data []byte) ([]RawRule, error) {
	var rules []RawRule
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, &MalformedRuleError{Err: err}
	}
	for i := range rules {
		r := &rules[i]
		if r.ID == "" {
			return nil, &MalformedRuleError{Err: errMissingID}
		}
		if r.Context == "" {
			return nil, &MalformedRuleError{RuleID: r.ID, Err: errMissingContext}
		}
		if r.Test == "" {
			return nil, &MalformedRuleError{RuleID: r.ID, Err: errMissingTest}
		}
	}
	return rules, nil
}
