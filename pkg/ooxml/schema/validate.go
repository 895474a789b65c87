package schema

import (
	"github.com/beevik/etree"

	"github.com/vortex/ooxml-validator/pkg/ooxml/finding"
	"github.com/vortex/ooxml-validator/pkg/ooxml/ns"
	"github.com/vortex/ooxml-validator/pkg/ooxml/valctx"
)

// Validate walks root against table, emitting a finding.CategorySchema
// finding into cur's accumulator for every content-model, cardinality,
// and attribute-type violation found. It stops early (returning) once
// the accumulator reports its cap reached.
func Validate(cur *valctx.Cursor, table *Table, root *etree.Element) {
	validateElement(cur, table, root, 1)
}

func validateElement(cur *valctx.Cursor, table *Table, el *etree.Element, siblingIndex int) bool {
	name := elementQName(el)
	cur.Push(valctx.ElementName(el), siblingIndex)
	defer cur.Pop()

	constraint := table.Lookup(name)
	if constraint != nil {
		if !validateAttributes(cur, constraint, el) {
			return false
		}
		if constraint.Content != nil {
			if !validateContentModel(cur, constraint, el) {
				return false
			}
		}
	}

	counts := map[ns.QName]int{}
	for _, child := range el.ChildElements() {
		cname := elementQName(child)
		counts[cname]++
		if !validateElement(cur, table, child, counts[cname]) {
			return false
		}
	}
	return true
}

func validateAttributes(cur *valctx.Cursor, constraint *ElementConstraint, el *etree.Element) bool {
	for _, ac := range constraint.Attributes {
		attr := findAttr(el, ac.Name)
		if attr == nil {
			if ac.Required {
				if !cur.Emit(finding.CategorySchema, finding.SeverityError,
					"required attribute "+ac.Name.String()+" is missing",
					valctx.ElementName(el), ac.Name.String(), "") {
					return false
				}
			}
			continue
		}
		if ac.Type == nil {
			continue
		}
		if err := ac.Type.Validate(attr.Value); err != nil {
			if !cur.Emit(finding.CategorySchema, finding.SeverityError,
				"attribute "+ac.Name.String()+" is invalid: "+err.Error(),
				valctx.ElementName(el), ac.Name.String(), "") {
				return false
			}
		}
	}
	return true
}

// findAttr resolves an attribute's namespace by the conventional prefix
// table in package ns rather than by walking xmlns declarations: OOXML
// attribute prefixes (r:id, and so on) are fixed by convention across
// every real producer, unlike element prefixes, which etree resolves
// precisely via elementQName instead.
func findAttr(el *etree.Element, name ns.QName) *etree.Attr {
	for i := range el.Attr {
		a := &el.Attr[i]
		uri := ""
		if a.Space != "" {
			uri = ns.URI(a.Space)
		}
		if a.Key == name.Local && uri == name.URI {
			return a
		}
	}
	return nil
}

func validateContentModel(cur *valctx.Cursor, constraint *ElementConstraint, el *etree.Element) bool {
	children := el.ChildElements()
	kinds := make([]ns.QName, len(children))
	for i, c := range children {
		kinds[i] = elementQName(c)
	}
	ends := matchParticle(constraint.Content, kinds, 0)
	for _, end := range ends {
		if end == len(kinds) {
			return true
		}
	}
	return cur.Emit(finding.CategorySchema, finding.SeverityError,
		"children of "+constraint.Name.String()+" do not satisfy its content model",
		valctx.ElementName(el), "", "")
}

func elementQName(el *etree.Element) ns.QName {
	return ns.QName{Local: el.Tag, URI: el.NamespaceURI()}
}

// matchParticle returns the set of positions reachable after p consumes
// between its Min and Max occurrences starting at pos, backtracking
// across every Choice branch rather than committing greedily.
func matchParticle(p Particle, children []ns.QName, pos int) []int {
	min, max := p.occurs()
	current := map[int]bool{pos: true}
	results := map[int]bool{}
	if min == 0 {
		results[pos] = true
	}
	count := 0
	for {
		if max != unbounded && count >= max {
			break
		}
		next := map[int]bool{}
		for c := range current {
			for _, np := range matchOnce(p, children, c) {
				if np == c && count > 0 {
					continue // zero-width repeat, would loop forever
				}
				next[np] = true
			}
		}
		if len(next) == 0 {
			break
		}
		count++
		if count >= min {
			for k := range next {
				results[k] = true
			}
		}
		current = next
	}
	out := make([]int, 0, len(results))
	for k := range results {
		out = append(out, k)
	}
	return out
}

// matchOnce matches exactly one occurrence of p's core content (its own
// Min/Max, if any, is the caller's concern via matchParticle), returning
// every end position p could plausibly leave the cursor at.
func matchOnce(p Particle, children []ns.QName, pos int) []int {
	switch v := p.(type) {
	case ElementRef:
		if pos < len(children) && children[pos] == v.Name {
			return []int{pos + 1}
		}
		return nil
	case Any:
		if pos < len(children) {
			return []int{pos + 1}
		}
		return nil
	case Sequence:
		return sequenceOnce(v.Items, children, pos)
	case Group:
		return sequenceOnce(v.Body.Items, children, pos)
	case Choice:
		seen := map[int]bool{}
		for _, item := range v.Items {
			for _, np := range matchParticle(item, children, pos) {
				seen[np] = true
			}
		}
		out := make([]int, 0, len(seen))
		for k := range seen {
			out = append(out, k)
		}
		return out
	case All:
		return allOnce(v, children, pos)
	default:
		return nil
	}
}

func sequenceOnce(items []Particle, children []ns.QName, pos int) []int {
	positions := map[int]bool{pos: true}
	for _, item := range items {
		next := map[int]bool{}
		for p0 := range positions {
			for _, np := range matchParticle(item, children, p0) {
				next[np] = true
			}
		}
		if len(next) == 0 {
			return nil
		}
		positions = next
	}
	out := make([]int, 0, len(positions))
	for k := range positions {
		out = append(out, k)
	}
	return out
}

// allOnce is a pragmatic, non-positional approximation of xsd:all: it
// requires each item's occurs range to be satisfiable somewhere among
// the children from pos onward (in any order), and reports success only
// when the matched elements form a contiguous run starting at pos —
// which holds for every real PresentationML use of xsd:all, since it is
// only ever used as a content model's sole or final particle.
func allOnce(a All, children []ns.QName, pos int) []int {
	used := make([]bool, len(children)-pos)
	for _, item := range a.Items {
		ref, ok := item.(ElementRef)
		if !ok {
			continue
		}
		min, max := ref.occurs()
		matched := 0
		for i := pos; i < len(children); i++ {
			if used[i-pos] {
				continue
			}
			if children[i] == ref.Name {
				used[i-pos] = true
				matched++
				if max != unbounded && matched >= max {
					break
				}
			}
		}
		if matched < min {
			return nil
		}
	}
	consumed := 0
	for consumed < len(used) && used[consumed] {
		consumed++
	}
	for i := consumed; i < len(used); i++ {
		if used[i] {
			return nil // matched elements were not contiguous from pos
		}
	}
	return []int{pos + consumed}
}
