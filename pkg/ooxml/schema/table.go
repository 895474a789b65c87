package schema

import "github.com/vortex/ooxml-validator/pkg/ooxml/ns"

// Table is an immutable, build-once lookup from qualified element name
// to its ElementConstraint. There is no global registry or init-time
// singleton: callers build exactly the Table they need (the built-in
// PresentationML table, optionally merged with a caller-supplied
// extension) and pass it to the validator explicitly.
type Table struct {
	byName map[ns.QName]*ElementConstraint
}

// NewTable builds a Table from a flat list of constraints. A later
// entry for the same Name overwrites an earlier one, which lets callers
// layer an extension table over the built-in one by concatenating
// slices.
func NewTable(constraints ...*ElementConstraint) *Table {
	t := &Table{byName: make(map[ns.QName]*ElementConstraint, len(constraints))}
	for _, c := range constraints {
		t.byName[c.Name] = c
	}
	return t
}

// Lookup returns the constraint registered for name, or nil if the
// table has no opinion about that element (the traversal leaves an
// unconstrained element's own attributes and content model unchecked,
// not as an error, and still checks its children).
func (t *Table) Lookup(name ns.QName) *ElementConstraint {
	return t.byName[name]
}

// Merge returns a new Table combining t with more, with more's entries
// taking precedence on conflict.
func (t *Table) Merge(more *Table) *Table {
	merged := &Table{byName: make(map[ns.QName]*ElementConstraint, len(t.byName)+len(more.byName))}
	for k, v := range t.byName {
		merged.byName[k] = v
	}
	for k, v := range more.byName {
		merged.byName[k] = v
	}
	return merged
}

// Len returns the number of elements the table has constraints for.
func (t *Table) Len() int { return len(t.byName) }
