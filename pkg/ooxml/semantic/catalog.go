package semantic

import (
	"github.com/beevik/etree"

	"github.com/vortex/ooxml-validator/pkg/ooxml/ns"
	"github.com/vortex/ooxml-validator/pkg/ooxml/valctx"
)

// Catalog is an immutable, build-once lookup from qualified element
// name to the constraints that apply to it. Like schema.Table, there is
// no global registry: the top-level validator builds exactly the
// Catalog it needs (the built-in seed catalog, optionally merged with
// one the schematron bridge produced from the embedded rule inventory)
// and passes it in explicitly.
type Catalog struct {
	byElement map[ns.QName][]Constraint
}

// NewCatalog builds a Catalog from a flat map of element name to its
// constraints.
func NewCatalog(entries map[ns.QName][]Constraint) *Catalog {
	c := &Catalog{byElement: make(map[ns.QName][]Constraint, len(entries))}
	for k, v := range entries {
		c.byElement[k] = append([]Constraint(nil), v...)
	}
	return c
}

// For returns the constraints registered for name, or nil.
func (c *Catalog) For(name ns.QName) []Constraint {
	return c.byElement[name]
}

// Merge returns a new Catalog with other's constraints appended after
// c's for any element both register, and registered standalone for an
// element only one of them knows about.
func (c *Catalog) Merge(other *Catalog) *Catalog {
	merged := &Catalog{byElement: make(map[ns.QName][]Constraint, len(c.byElement)+len(other.byElement))}
	for k, v := range c.byElement {
		merged.byElement[k] = append([]Constraint(nil), v...)
	}
	for k, v := range other.byElement {
		merged.byElement[k] = append(merged.byElement[k], v...)
	}
	return merged
}

// Len returns the number of elements the catalog has constraints for.
func (c *Catalog) Len() int { return len(c.byElement) }

// Validate walks root, evaluating every constraint the catalog
// registers for each element it visits, stopping early once cur's
// accumulator reports its cap reached.
func Validate(cur *valctx.Cursor, catalog *Catalog, root *etree.Element) {
	validateElement(cur, catalog, root, 1)
}

func validateElement(cur *valctx.Cursor, catalog *Catalog, el *etree.Element, siblingIndex int) bool {
	cur.Push(valctx.ElementName(el), siblingIndex)
	defer cur.Pop()

	name := qname(el)
	for _, c := range catalog.For(name) {
		if !Evaluate(cur, el, c) {
			return false
		}
	}

	counts := map[ns.QName]int{}
	for _, child := range el.ChildElements() {
		cname := qname(child)
		counts[cname]++
		if !validateElement(cur, catalog, child, counts[cname]) {
			return false
		}
	}
	return true
}
