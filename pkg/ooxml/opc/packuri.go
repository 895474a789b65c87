package opc

import (
	"path"
	"strings"
)

// PackURI is a part name: a slash-rooted path inside an OPC package, e.g.
// "/ppt/slides/slide1.xml". The package root relationships source is
// represented by PackageURI ("/").
type PackURI string

// PackageURI is the pseudo-partname used as the relationship source for
// package-level relationships (read from "_rels/.rels").
const PackageURI PackURI = "/"

// NewPackURI normalizes a raw path into canonical PackURI form: a
// leading slash, "." and ".." segments collapsed, and no trailing slash
// (except for the root itself).
func NewPackURI(raw string) PackURI {
	if raw == "" {
		return PackageURI
	}
	if !strings.HasPrefix(raw, "/") {
		raw = "/" + raw
	}
	cleaned := path.Clean(raw)
	if cleaned == "." {
		cleaned = "/"
	}
	return PackURI(cleaned)
}

// Escapes reports whether the raw (pre-normalization) path would resolve
// outside the package root. Cleaning must happen as a *relative* path —
// cleaning a rooted ("/"-prefixed) path silently absorbs a leading
// "../" at the root, which is exactly the attempt this is meant to
// catch. Used by the physical-package reader to detect
// directory-traversal attempts in archive member names.
func Escapes(raw string) bool {
	if strings.Contains(raw, "\x00") {
		return true
	}
	relative := strings.TrimPrefix(raw, "/")
	cleaned := path.Clean(relative)
	return cleaned == ".." || strings.HasPrefix(cleaned, "../")
}

// BaseURI returns the directory containing this part, with no trailing
// slash (the root directory is "").
func (p PackURI) BaseURI() string {
	dir := path.Dir(string(p))
	if dir == "/" || dir == "." {
		return ""
	}
	return dir
}

// Ext returns the lowercased extension of the part name, without the
// leading dot. Used for content-type default lookup.
func (p PackURI) Ext() string {
	e := path.Ext(string(p))
	return strings.ToLower(strings.TrimPrefix(e, "."))
}

// RelativeRef computes the relationship target string that, when
// resolved against baseURI via FromRelRef, yields p back. It always
// produces a same-directory-relative form when possible, matching the
// convention real OOXML producers use in .rels files.
func (p PackURI) RelativeRef(baseURI string) string {
	full := string(p)
	if baseURI == "" {
		return strings.TrimPrefix(full, "/")
	}
	rel, err := relPath(baseURI, full)
	if err != nil {
		return strings.TrimPrefix(full, "/")
	}
	return rel
}

// FromRelRef resolves a relationship Target attribute (a URI reference,
// possibly relative) against the base URI of its source part's
// directory, producing a canonical PackURI.
//
// Per OPC, a Target that already starts with "/" is package-rooted and
// is resolved directly; otherwise it is resolved relative to baseURI.
func FromRelRef(baseURI, ref string) PackURI {
	if strings.HasPrefix(ref, "/") {
		return NewPackURI(ref)
	}
	if baseURI == "" {
		return NewPackURI(ref)
	}
	return NewPackURI(baseURI + "/" + ref)
}

// relPath is a small path.Rel-alike for slash-rooted PackURI strings
// (path.Clean, not filepath, so it is platform independent).
func relPath(base, target string) (string, error) {
	baseParts := strings.Split(strings.Trim(base, "/"), "/")
	targetParts := strings.Split(strings.Trim(target, "/"), "/")

	i := 0
	for i < len(baseParts) && i < len(targetParts)-1 && baseParts[i] == targetParts[i] {
		i++
	}
	up := len(baseParts) - i
	rel := make([]string, 0, up+len(targetParts)-i)
	for j := 0; j < up; j++ {
		rel = append(rel, "..")
	}
	rel = append(rel, targetParts[i:]...)
	if len(rel) == 0 {
		return ".", nil
	}
	return strings.Join(rel, "/"), nil
}
