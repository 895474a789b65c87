package opc

import (
	"fmt"
	"sort"
	"strings"

	"github.com/beevik/etree"
)

// ContentTypeMap resolves a part name to its declared media type per the
// "[Content_Types].xml" dictionary: Default entries keyed by (lowercased,
// dotless) extension, overridden per-part by Override entries keyed by
// exact PartName.
type ContentTypeMap struct {
	defaults  map[string]string
	overrides map[PackURI]string
}

// ParseContentTypes parses the bytes of "[Content_Types].xml" into a
// ContentTypeMap.
func ParseContentTypes(blob []byte) (*ContentTypeMap, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(blob); err != nil {
		return nil, &MalformedXMLError{PartURI: "/[Content_Types].xml", Err: err}
	}
	root := doc.Root()
	if root == nil || root.Tag != "Types" {
		return nil, &MalformedXMLError{PartURI: "/[Content_Types].xml", Err: fmt.Errorf("missing root <Types> element")}
	}

	m := &ContentTypeMap{
		defaults:  make(map[string]string),
		overrides: make(map[PackURI]string),
	}
	for _, child := range root.ChildElements() {
		switch child.Tag {
		case "Default":
			ext := strings.ToLower(child.SelectAttrValue("Extension", ""))
			ct := child.SelectAttrValue("ContentType", "")
			if ext == "" || ct == "" {
				continue
			}
			m.defaults[ext] = ct
		case "Override":
			pn := child.SelectAttrValue("PartName", "")
			ct := child.SelectAttrValue("ContentType", "")
			if pn == "" || ct == "" {
				continue
			}
			m.overrides[NewPackURI(pn)] = ct
		}
	}
	return m, nil
}

// Lookup returns the content type for pn and whether one was found. An
// Override always takes precedence over a Default for the same part.
func (m *ContentTypeMap) Lookup(pn PackURI) (string, bool) {
	if ct, ok := m.overrides[pn]; ok {
		return ct, true
	}
	ct, ok := m.defaults[pn.Ext()]
	return ct, ok
}

// ContentType is Lookup but returns ErrUnknownContentType when pn has no
// applicable Default or Override entry.
func (m *ContentTypeMap) ContentType(pn PackURI) (string, error) {
	ct, ok := m.Lookup(pn)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownContentType, pn)
	}
	return ct, nil
}

// sortedExtensions returns the Default extensions in sorted order, for
// callers that need deterministic iteration.
func (m *ContentTypeMap) sortedExtensions() []string {
	exts := make([]string, 0, len(m.defaults))
	for e := range m.defaults {
		exts = append(exts, e)
	}
	sort.Strings(exts)
	return exts
}
