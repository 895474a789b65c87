package schema

import (
	"github.com/vortex/ooxml-validator/pkg/ooxml/finding"
	"github.com/vortex/ooxml-validator/pkg/ooxml/ns"
)

// AttributeConstraint describes what is expected of one attribute on an
// element: its type, and whether it must be present at all.
type AttributeConstraint struct {
	Name     ns.QName
	Type     XSDType
	Required bool
}

// ElementConstraint is everything the schema validator knows about one
// element: the content model its children must satisfy, the type each
// of its attributes must validate against, and (for simple-content
// elements) the type its own text must validate against.
type ElementConstraint struct {
	Name             ns.QName
	Content          Particle
	Attributes       []AttributeConstraint
	TextType         XSDType
	MinFormatVersion finding.FormatVersion
}

func (c *ElementConstraint) attribute(name ns.QName) *AttributeConstraint {
	for i := range c.Attributes {
		if c.Attributes[i].Name == name {
			return &c.Attributes[i]
		}
	}
	return nil
}
