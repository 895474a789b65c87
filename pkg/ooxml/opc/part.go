package opc

import (
	"errors"
	"strings"
	"sync"

	"github.com/beevik/etree"
)

// Part is a single archive member exposed as a package part: a blob
// plus a content type, a name, and its own outbound relationships.
type Part interface {
	PartName() PackURI
	ContentType() string
	Blob() []byte
	Relationships() *Relationships
	IsXML() bool
}

// BasePart is the common implementation shared by every part, XML or
// binary. It is exported so format-specific rules can type-assert down
// to it when they only need the blob (e.g. image parts).
type BasePart struct {
	partName      PackURI
	contentType   string
	blob          []byte
	relationships *Relationships
}

func newBasePart(pn PackURI, contentType string, blob []byte, rels *Relationships) BasePart {
	if rels == nil {
		rels = NewRelationships(pn.BaseURI())
	}
	return BasePart{partName: pn, contentType: contentType, blob: blob, relationships: rels}
}

func (p *BasePart) PartName() PackURI             { return p.partName }
func (p *BasePart) ContentType() string           { return p.contentType }
func (p *BasePart) Blob() []byte                  { return p.blob }
func (p *BasePart) Relationships() *Relationships { return p.relationships }
func (p *BasePart) IsXML() bool                   { return false }

// XMLPart is a part whose content type marks it as XML. Its element
// tree is materialized lazily, on first call to Root, and cached from
// then on — parse failures are cached too, so a malformed part reports
// the same error on every subsequent access instead of re-parsing.
type XMLPart struct {
	BasePart
	once     sync.Once
	root     *etree.Element
	parseErr error
}

func newXMLPart(pn PackURI, contentType string, blob []byte, rels *Relationships) *XMLPart {
	p := &XMLPart{BasePart: newBasePart(pn, contentType, blob, rels)}
	return p
}

func (p *XMLPart) IsXML() bool { return true }

// Root returns the document's root element, parsing the cached blob on
// first call. Every subsequent call returns the cached result, whether
// that was a successful parse or the original error.
func (p *XMLPart) Root() (*etree.Element, error) {
	p.once.Do(func() {
		doc := etree.NewDocument()
		doc.ReadSettings.Permissive = true
		if err := doc.ReadFromBytes(p.blob); err != nil {
			p.parseErr = &MalformedXMLError{PartURI: string(p.partName), Err: err}
			return
		}
		root := doc.Root()
		if root == nil {
			p.parseErr = &MalformedXMLError{PartURI: string(p.partName), Err: errNoRootElement}
			return
		}
		p.root = root
	})
	return p.root, p.parseErr
}

var errNoRootElement = errors.New("document has no root element")

// newPart constructs the right Part implementation for contentType: XML
// media types (those whose subtype ends in "+xml", or literally
// "text/xml" / "application/xml") get an XMLPart, everything else a
// plain BasePart.
func newPart(pn PackURI, contentType string, blob []byte, rels *Relationships) Part {
	if isXMLContentType(contentType) {
		return newXMLPart(pn, contentType, blob, rels)
	}
	base := newBasePart(pn, contentType, blob, rels)
	return &base
}

func isXMLContentType(contentType string) bool {
	return contentType == "text/xml" || contentType == "application/xml" || strings.HasSuffix(contentType, "+xml")
}
