package opc

import (
	"fmt"
	"strings"

	"github.com/beevik/etree"
)

// Relationship-type URIs for the roles this validator needs to
// recognize by name. OOXML reuses the same officeDocument relationship
// type across word processing, spreadsheet, and presentation packages;
// the target's content type is what distinguishes them.
const (
	RTOfficeDocument      = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument"
	RTCoreProperties      = "http://schemas.openxmlformats.org/package/2006/relationships/metadata/core-properties"
	RTExtendedProperties  = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/extended-properties"
	RTThumbnail           = "http://schemas.openxmlformats.org/package/2006/relationships/metadata/thumbnail"
	RTSlideMaster         = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideMaster"
	RTSlideLayout         = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideLayout"
	RTSlide               = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/slide"
	RTTheme               = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/theme"
	RTImage               = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/image"
	RTHyperlink           = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/hyperlink"
	RTPresProps           = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/presProps"
	RTViewProps           = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/viewProps"
	RTTableStyles         = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/tableStyles"
	RTNotesMaster         = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/notesMaster"
	RTNotesSlide          = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/notesSlide"
)

// legacyPrefixes maps the older purl.oclc.org relationship namespace
// roots, still seen from some producers, to their modern equivalents.
var legacyPrefixes = [][2]string{
	{"http://purl.oclc.org/ooxml/officeDocument/relationships/", "http://schemas.openxmlformats.org/officeDocument/2006/relationships/"},
	{"http://purl.oclc.org/ooxml/package/relationships/", "http://schemas.openxmlformats.org/package/2006/relationships/"},
}

// NormalizeRelType rewrites a legacy (strict-transitional) relationship
// type URI to its modern equivalent, leaving already-modern or unknown
// values unchanged.
func NormalizeRelType(relType string) string {
	for _, pair := range legacyPrefixes {
		if strings.HasPrefix(relType, pair[0]) {
			return pair[1] + strings.TrimPrefix(relType, pair[0])
		}
	}
	return relType
}

// TargetMode distinguishes a relationship target that lives inside the
// package from one that points outside it (a URL, typically).
type TargetMode string

const (
	TargetModeInternal TargetMode = "Internal"
	TargetModeExternal TargetMode = "External"
)

// SerializedRelationship is a relationship as read directly off a
// ".rels" file, before its target has been resolved against the live
// part registry.
type SerializedRelationship struct {
	BaseURI   string
	RID       string
	RelType   string
	TargetRef string
	Mode      TargetMode
}

// IsExternal reports whether this relationship targets something
// outside the package.
func (sr SerializedRelationship) IsExternal() bool {
	return sr.Mode == TargetModeExternal
}

// TargetPartname resolves TargetRef against BaseURI. Meaningless (and
// not called) for external relationships.
func (sr SerializedRelationship) TargetPartname() PackURI {
	return FromRelRef(sr.BaseURI, sr.TargetRef)
}

// ParseRelationships parses a ".rels" file's bytes into its constituent
// SerializedRelationship values. baseURI is the directory of the part
// the ".rels" file belongs to (empty string for the package root).
func ParseRelationships(blob []byte, baseURI string) ([]SerializedRelationship, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(blob); err != nil {
		return nil, &MalformedXMLError{PartURI: baseURI + "/_rels", Err: err}
	}
	root := doc.Root()
	if root == nil || root.Tag != "Relationships" {
		return nil, &MalformedXMLError{PartURI: baseURI + "/_rels", Err: fmt.Errorf("missing root <Relationships> element")}
	}

	var out []SerializedRelationship
	for _, el := range root.ChildElements() {
		if el.Tag != "Relationship" {
			continue
		}
		mode := TargetModeInternal
		if v := el.SelectAttrValue("TargetMode", ""); strings.EqualFold(v, "External") {
			mode = TargetModeExternal
		}
		out = append(out, SerializedRelationship{
			BaseURI:   baseURI,
			RID:       el.SelectAttrValue("Id", ""),
			RelType:   NormalizeRelType(el.SelectAttrValue("Type", "")),
			TargetRef: el.SelectAttrValue("Target", ""),
			Mode:      mode,
		})
	}
	return out, nil
}

// Relationship is a resolved relationship: its target part is either a
// live Part (internal, resolved) or absent (external, or internal but
// dangling because the target part is missing from the package).
type Relationship struct {
	RID        string
	RelType    string
	TargetRef  string
	TargetPart Part
	Mode       TargetMode
	Dangling   bool
}

// IsExternal reports whether this relationship targets something
// outside the package.
func (r *Relationship) IsExternal() bool { return r.Mode == TargetModeExternal }

// Relationships is the ordered, by-id relationship collection owned by
// one source (a part, or the package root via PackageURI).
type Relationships struct {
	baseURI string
	byID    map[string]*Relationship
	ordered []*Relationship
	seq     int
}

// NewRelationships creates an empty collection for the part directory
// at baseURI.
func NewRelationships(baseURI string) *Relationships {
	return &Relationships{baseURI: baseURI, byID: make(map[string]*Relationship)}
}

// BaseURI returns the directory this collection's relative targets are
// resolved against.
func (r *Relationships) BaseURI() string { return r.baseURI }

// Load records a relationship with an explicit (file-assigned) id,
// as happens when reading an existing package.
func (r *Relationships) Load(rid, relType, targetRef string, targetPart Part, mode TargetMode) *Relationship {
	rel := &Relationship{
		RID:        rid,
		RelType:    NormalizeRelType(relType),
		TargetRef:  targetRef,
		TargetPart: targetPart,
		Mode:       mode,
		Dangling:   mode == TargetModeInternal && targetPart == nil,
	}
	r.byID[rid] = rel
	r.ordered = append(r.ordered, rel)
	return rel
}

// Add records a relationship with an auto-generated id (rIdN), for
// building a relationship graph directly instead of parsing ".rels"
// XML.
func (r *Relationships) Add(relType string, targetPart Part) *Relationship {
	r.seq++
	rid := fmt.Sprintf("rId%d", r.seq)
	for _, exists := r.byID[rid]; exists; _, exists = r.byID[rid] {
		r.seq++
		rid = fmt.Sprintf("rId%d", r.seq)
	}
	return r.Load(rid, relType, "", targetPart, TargetModeInternal)
}

// GetByRID returns the relationship with the given id, or nil.
func (r *Relationships) GetByRID(rid string) *Relationship {
	return r.byID[rid]
}

// GetByRelType returns the first relationship of the given type in
// document order, or nil if none exists. Open uses this to find a
// required singleton relationship: the package's main document.
func (r *Relationships) GetByRelType(relType string) *Relationship {
	for _, rel := range r.ordered {
		if rel.RelType == relType {
			return rel
		}
	}
	return nil
}

// All returns every relationship in document order.
func (r *Relationships) All() []*Relationship {
	return r.ordered
}

// Len returns the number of relationships in the collection.
func (r *Relationships) Len() int { return len(r.ordered) }
