package schematron

import (
	"github.com/vortex/ooxml-validator/pkg/ooxml/ns"
	"github.com/vortex/ooxml-validator/pkg/ooxml/semantic"
)

// Stats summarizes how the classifier fared against a rule inventory,
// the input to the ≥85% coverage goal and the load-time "unknown rule
// count" log event.
type Stats struct {
	Total   int
	Unknown int
	ByTag   map[Tag]int
}

// Coverage returns the fraction of rules that bridged into a
// constraint (neither UNKNOWN nor rejected by a shape's consistency
// check), or 1.0 for an empty inventory.
func (s Stats) Coverage() float64 {
	if s.Total == 0 {
		return 1
	}
	return float64(s.Total-s.Unknown) / float64(s.Total)
}

// BuildCatalog classifies and bridges every rule in rules, merging the
// resulting constraints into a semantic.Catalog keyed by each rule's
// context element. A rule that bridges to UNKNOWN, or whose matched
// shape failed a structural consistency check, is skipped and counted
// in Stats.Unknown — it never causes an error, per spec §4.7's "logged
// once, never crashes."
func BuildCatalog(rules []RawRule) (*semantic.Catalog, Stats, error) {
	stats := Stats{ByTag: make(map[Tag]int)}
	entries := make(map[ns.QName][]semantic.Constraint)

	for _, r := range rules {
		stats.Total++
		constraint, tag, ok := Build(r)
		stats.ByTag[tag]++
		if !ok {
			stats.Unknown++
			continue
		}
		ctxName, err := ns.TryQN(r.Context)
		if err != nil {
			return nil, stats, &MalformedRuleError{RuleID: r.ID, Err: err}
		}
		entries[ctxName] = append(entries[ctxName], constraint)
	}

	return semantic.NewCatalog(entries), stats, nil
}

// BuildEmbeddedCatalog loads the binary's embedded rule inventory and
// bridges it in one step, the form the top-level validator uses to
// build its immutable semantic.Catalog once at construction time.
func BuildEmbeddedCatalog() (*semantic.Catalog, Stats, error) {
	rules, err := LoadEmbedded()
	if err != nil {
		return nil, Stats{}, err
	}
	return BuildCatalog(rules)
}
