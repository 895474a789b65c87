// Package ns provides the immutable prefix-to-namespace-URI table used
// throughout the validator, plus helpers for converting between
// prefixed tag names ("p:sld") and Clark notation ("{uri}sld").
package ns

import (
	"fmt"
	"strings"
)

// Nsmap maps namespace prefixes to their URIs for every namespace the
// validator needs to recognize across PresentationML, DrawingML, the
// package-relationships namespace, and core properties.
var Nsmap = map[string]string{
	"p":        "http://schemas.openxmlformats.org/presentationml/2006/main",
	"a":        "http://schemas.openxmlformats.org/drawingml/2006/main",
	"c":        "http://schemas.openxmlformats.org/drawingml/2006/chart",
	"r":        "http://schemas.openxmlformats.org/officeDocument/2006/relationships",
	"rel":      "http://schemas.openxmlformats.org/package/2006/relationships",
	"ct":       "http://schemas.openxmlformats.org/package/2006/content-types",
	"cp":       "http://schemas.openxmlformats.org/package/2006/metadata/core-properties",
	"dc":       "http://purl.org/dc/elements/1.1/",
	"dcmitype": "http://purl.org/dc/dcmitype/",
	"dcterms":  "http://purl.org/dc/terms/",
	"dgm":      "http://schemas.openxmlformats.org/drawingml/2006/diagram",
	"m":        "http://schemas.openxmlformats.org/officeDocument/2006/math",
	"pic":      "http://schemas.openxmlformats.org/drawingml/2006/picture",
	"sl":       "http://schemas.openxmlformats.org/schemaLibrary/2006/main",
	"w":        "http://schemas.openxmlformats.org/wordprocessingml/2006/main",
	"mc":       "http://schemas.openxmlformats.org/markup-compatibility/2006",
	"xml":      "http://www.w3.org/XML/1998/namespace",
	"xsi":      "http://www.w3.org/2001/XMLSchema-instance",
}

// Pfxmap is the reverse mapping of URI -> canonical prefix.
var Pfxmap map[string]string

func init() {
	Pfxmap = make(map[string]string, len(Nsmap))
	for pfx, uri := range Nsmap {
		Pfxmap[uri] = pfx
	}
}

// TryQn converts a namespace-prefixed tag to Clark notation.
// TryQn("p:sld") returns "{http://schemas.openxmlformats.org/presentationml/2006/main}sld".
// A tag with no prefix is returned unchanged.
func TryQn(tag string) (string, error) {
	prefix, local, ok := strings.Cut(tag, ":")
	if !ok {
		return tag, nil
	}
	uri, exists := Nsmap[prefix]
	if !exists {
		return "", fmt.Errorf("ns: unknown namespace prefix %q in tag %q", prefix, tag)
	}
	return "{" + uri + "}" + local, nil
}

// Qn is TryQn but panics on an unknown prefix. Use only with
// compile-time-known tags (e.g. table literals), never on user input.
func Qn(tag string) string {
	s, err := TryQn(tag)
	if err != nil {
		panic(err)
	}
	return s
}

// QName identifies an element or attribute by local name plus the
// namespace URI it belongs to (never by prefix, which is not stable
// across documents).
type QName struct {
	Local string
	URI   string
}

// String renders the QName using its canonical prefix when known,
// falling back to Clark notation otherwise.
func (q QName) String() string {
	if pfx, ok := Pfxmap[q.URI]; ok && pfx != "" {
		return pfx + ":" + q.Local
	}
	if q.URI == "" {
		return q.Local
	}
	return "{" + q.URI + "}" + q.Local
}

// QN builds a QName from a prefixed tag, e.g. QN("p:sld").
// Panics on an unknown prefix; for untrusted input use TryQN.
func QN(tag string) QName {
	q, err := TryQN(tag)
	if err != nil {
		panic(err)
	}
	return q
}

// TryQN builds a QName from a prefixed tag, returning an error if the
// prefix is not registered in Nsmap.
func TryQN(tag string) (QName, error) {
	prefix, local, ok := strings.Cut(tag, ":")
	if !ok {
		return QName{Local: tag}, nil
	}
	uri, exists := Nsmap[prefix]
	if !exists {
		return QName{}, fmt.Errorf("ns: unknown namespace prefix %q in tag %q", prefix, tag)
	}
	return QName{Local: local, URI: uri}, nil
}

// Prefix returns the canonical prefix registered for a namespace URI,
// or "" if none is registered.
func Prefix(uri string) string {
	return Pfxmap[uri]
}

// URI returns the namespace URI registered for a prefix, or "" if the
// prefix is unknown.
func URI(prefix string) string {
	return Nsmap[prefix]
}
