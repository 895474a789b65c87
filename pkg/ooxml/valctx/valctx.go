// Package valctx carries the state threaded through a single part's
// traversal: which part is being checked, the element-path stack built
// up as the schema and semantic passes descend the tree, the active
// format version, and the shared finding accumulator both passes write
// into.
package valctx

import (
	"fmt"
	"strings"

	"github.com/beevik/etree"

	"github.com/vortex/ooxml-validator/pkg/ooxml/finding"
	"github.com/vortex/ooxml-validator/pkg/ooxml/opc"
)

// frame is one entry in the element-path stack: a tag name plus its
// 1-based occurrence index among same-tag siblings, so two findings on
// different <p:sp> children of the same parent render distinguishable
// paths.
type frame struct {
	name  string
	index int
}

// Cursor is the mutable traversal state for one part. It is not safe
// for concurrent use; a parallel implementation gives each part its own
// Cursor over a shared *opc.Package and merges their accumulators in
// part order (spec §5).
type Cursor struct {
	Package       *opc.Package
	Part          opc.Part
	FormatVersion finding.FormatVersion
	Findings      *finding.Accumulator

	stack []frame
}

// New builds a Cursor for one part's traversal against pkg.
func New(pkg *opc.Package, part opc.Part, version finding.FormatVersion, findings *finding.Accumulator) *Cursor {
	return &Cursor{Package: pkg, Part: part, FormatVersion: version, Findings: findings}
}

// Push descends into the child named name, recording its sibling index
// (the count of same-name siblings already visited at this depth,
// starting at 1). Callers must call Pop when done with the child,
// typically via defer.
func (c *Cursor) Push(name string, index int) {
	c.stack = append(c.stack, frame{name: name, index: index})
}

// Pop ascends back out of the most recently pushed frame.
func (c *Cursor) Pop() {
	if len(c.stack) > 0 {
		c.stack = c.stack[:len(c.stack)-1]
	}
}

// Path renders the current element-path stack in the "/ns:name/ns:name"
// form findings report, adding "[idx]" to a segment only when its index
// is above 1, e.g. "/p:sld/p:cSld/p:spTree/p:sp[2]".
func (c *Cursor) Path() string {
	if len(c.stack) == 0 {
		return ""
	}
	var b strings.Builder
	for _, f := range c.stack {
		b.WriteByte('/')
		b.WriteString(f.name)
		if f.index > 1 {
			fmt.Fprintf(&b, "[%d]", f.index)
		}
	}
	return b.String()
}

// Depth returns how many frames are currently pushed.
func (c *Cursor) Depth() int { return len(c.stack) }

// Emit appends a finding with PartURI and ElementPath filled in from the
// cursor's current position, so call sites only need to supply the
// parts that vary. It returns false once the accumulator's cap is
// reached, signaling the caller to stop traversing this part.
func (c *Cursor) Emit(category finding.Category, severity finding.Severity, description string, nodeName, relatedNodeName, ruleID string) bool {
	return c.Findings.Append(finding.Finding{
		Category:        category,
		Severity:        severity,
		Description:     description,
		PartURI:         string(c.Part.PartName()),
		ElementPath:     c.Path(),
		NodeName:        nodeName,
		RelatedNodeName: relatedNodeName,
		RuleID:          ruleID,
	})
}

// ElementName renders el's tag as "prefix:local" using the prefix
// etree parsed it with (etree splits a parsed "p:sld" into Space="p",
// Tag="sld"), falling back to the bare local tag when the element had
// no prefix.
func ElementName(el *etree.Element) string {
	if el == nil {
		return ""
	}
	if el.Space != "" {
		return el.Space + ":" + el.Tag
	}
	return el.Tag
}
