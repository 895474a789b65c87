// Package schema implements the particle-based XML content-model
// checker: given an element-constraint table built once at startup, it
// walks a part's element tree and reports every child ordering, cardinality,
// and attribute-value violation it finds against that table.
package schema

import "github.com/vortex/ooxml-validator/pkg/ooxml/ns"

// unbounded marks a particle's Max as having no upper limit.
const unbounded = -1

// Particle is the sealed interface over the handful of XSD content-model
// shapes this validator recognizes: an ordered Sequence, an exclusive
// Choice, an unordered All, a named Group (an indirection to a shared
// Sequence), a permissive Any wildcard, and a concrete ElementRef leaf.
// A closed set of concrete types stands in for a dynamic-dispatch
// "Particle" object: the unexported methods keep the set closed to this
// package, and matchOnce's type switch is the one place every variant
// is handled (a variant it does not list matches nothing).
type Particle interface {
	occurs() (min, max int)
	particleKind() string
}

// Occurs returns the minimum and maximum number of times p may repeat
// as a unit. A Max of -1 means unbounded.
func Occurs(p Particle) (min, max int) { return p.occurs() }

// Sequence requires its Items to appear in order, each satisfying its
// own occurs range, repeated as a whole Min..Max times.
type Sequence struct {
	Items []Particle
	Min   int
	Max   int
}

func (s Sequence) occurs() (int, int)  { return normOccurs(s.Min, s.Max) }
func (Sequence) particleKind() string  { return "sequence" }

// Choice requires exactly one of its Items to match, repeated as a
// whole Min..Max times.
type Choice struct {
	Items []Particle
	Min   int
	Max   int
}

func (c Choice) occurs() (int, int) { return normOccurs(c.Min, c.Max) }
func (Choice) particleKind() string { return "choice" }

// All requires every one of its Items to appear exactly once each
// (or zero times, for an item whose own Min is 0), in any order. OOXML
// schemas use xsd:all sparingly and only for small item sets, so this
// validator does not attempt positional backtracking for it.
type All struct {
	Items []Particle
}

func (All) occurs() (int, int) { return 1, 1 }
func (All) particleKind() string { return "all" }

// Group is a named indirection to a shared Sequence. It matches exactly
// as its Body does; a content-model finding names the parent element,
// not the group.
type Group struct {
	Name string
	Body Sequence
}

func (g Group) occurs() (int, int)  { return normOccurs(g.Body.Min, g.Body.Max) }
func (Group) particleKind() string { return "group" }

// Any matches a single element of any name, with lax processing (its
// children are not checked against this content model). It models an
// xsd:any wildcard, most often used for markup-compatibility or
// extension points.
type Any struct {
	Min int
	Max int
}

func (a Any) occurs() (int, int) { return normOccurs(a.Min, a.Max) }
func (Any) particleKind() string { return "any" }

// ElementRef is a leaf particle matching one specific element by
// qualified name, repeated Min..Max times.
type ElementRef struct {
	Name ns.QName
	Min  int
	Max  int
}

func (e ElementRef) occurs() (int, int) { return normOccurs(e.Min, e.Max) }
func (ElementRef) particleKind() string { return "element" }

// normOccurs fills in the conventional XSD default of exactly one
// occurrence when both bounds are left at their zero value, and treats
// a negative Max as unbounded.
func normOccurs(min, max int) (int, int) {
	if min == 0 && max == 0 {
		return 1, 1
	}
	if max < 0 {
		max = unbounded
	}
	return min, max
}
