// Package opc implements the Open Packaging Conventions layer: opening
// a ZIP-backed OOXML archive, building its part registry and
// relationship graph, and exposing both for the schema and semantic
// validators to walk. It is read-only — this validator never writes a
// package back out.
package opc

import (
	"io"
	"sort"
	"strings"

	"github.com/vortex/ooxml-validator/pkg/ooxml/finding"
)

// Package is an opened OOXML archive: its full part registry (every
// archive member other than "[Content_Types].xml" and the ".rels"
// auxiliaries) plus the resolved relationship graph rooted at the
// package itself.
type Package struct {
	physReader      *PhysPkgReader
	contentTypes    *ContentTypeMap
	rootRels        *Relationships
	parts           map[PackURI]Part
	order           []PackURI
	mainDocumentURI PackURI
	hasMainDocument bool
}

// Open builds a Package from an already-open ReaderAt (an *os.File or a
// *bytes.Reader), returning any package-level findings alongside it.
// Open only fails (returning a nil Package) when the input cannot be
// read as a ZIP archive at all, or a member name attempts directory
// traversal — every other structural problem becomes a finding instead,
// so that a broken-but-readable package can still be reported on.
func Open(r io.ReaderAt, size int64) (*Package, []finding.Finding, error) {
	phys, err := NewPhysPkgReader(r, size)
	if err != nil {
		return nil, nil, err
	}
	return openFromPhysReader(phys)
}

// OpenBytes is Open over an in-memory archive.
func OpenBytes(data []byte) (*Package, []finding.Finding, error) {
	phys, err := NewPhysPkgReaderFromBytes(data)
	if err != nil {
		return nil, nil, err
	}
	return openFromPhysReader(phys)
}

// OpenFile is Open over a file on disk. The returned Package owns the
// file handle; Close releases it.
func OpenFile(path string) (*Package, []finding.Finding, error) {
	phys, err := NewPhysPkgReaderFromFile(path)
	if err != nil {
		return nil, nil, err
	}
	return openFromPhysReader(phys)
}

func openFromPhysReader(phys *PhysPkgReader) (*Package, []finding.Finding, error) {
	var findings []finding.Finding

	contentTypes, ctFindings := loadContentTypes(phys)
	findings = append(findings, ctFindings...)

	pkg := &Package{
		physReader:   phys,
		contentTypes: contentTypes,
		parts:        make(map[PackURI]Part),
	}

	for _, pn := range phys.URIs() {
		if isAuxiliaryMember(pn) {
			continue
		}
		blob, err := phys.BlobFor(pn)
		if err != nil {
			findings = append(findings, finding.Finding{
				Category:    finding.CategoryPackage,
				Severity:    finding.SeverityError,
				Description: "archive member could not be read: " + err.Error(),
				PartURI:     string(pn),
			})
			continue
		}
		contentType, ok := contentTypes.Lookup(pn)
		if !ok {
			findings = append(findings, finding.Finding{
				Category:    finding.CategoryPackage,
				Severity:    finding.SeverityWarning,
				Description: "part has no applicable content type in [Content_Types].xml",
				PartURI:     string(pn),
			})
		}

		relsBlob, err := phys.RelsXmlFor(pn)
		var rels *Relationships
		if err == nil && relsBlob != nil {
			rels, err = buildRelationships(relsBlob, pn.BaseURI(), nil)
		}
		if err != nil {
			findings = append(findings, finding.Finding{
				Category:    finding.CategoryRelationship,
				Severity:    finding.SeverityError,
				Description: "relationship file could not be parsed: " + err.Error(),
				PartURI:     string(pn),
			})
			rels = NewRelationships(pn.BaseURI())
		}
		if rels == nil {
			rels = NewRelationships(pn.BaseURI())
		}

		pkg.parts[pn] = newPart(pn, contentType, blob, rels)
		pkg.order = append(pkg.order, pn)
	}
	sort.Slice(pkg.order, func(i, j int) bool { return pkg.order[i] < pkg.order[j] })

	// Resolve every part's relationships now that the registry is
	// complete; a relationship recorded with a nil TargetPart above is
	// re-resolved here, since earlier parts may reference later ones.
	for _, pn := range pkg.order {
		resolveRelationships(pkg.parts[pn].Relationships(), pkg)
	}

	rootBlob, err := phys.RelsXmlFor(PackageURI)
	rootRels := NewRelationships("")
	switch {
	case err != nil:
		findings = append(findings, finding.Finding{
			Category:    finding.CategoryRelationship,
			Severity:    finding.SeverityError,
			Description: "package relationship file could not be parsed: " + err.Error(),
			PartURI:     "/",
		})
	case rootBlob == nil:
		findings = append(findings, finding.Finding{
			Category:    finding.CategoryPackage,
			Severity:    finding.SeverityError,
			Description: "package is missing its root relationship file (_rels/.rels)",
			PartURI:     "/",
		})
	default:
		rootRels, err = buildRelationships(rootBlob, "", pkg)
		if err != nil {
			findings = append(findings, finding.Finding{
				Category:    finding.CategoryRelationship,
				Severity:    finding.SeverityError,
				Description: "package relationship file could not be parsed: " + err.Error(),
				PartURI:     "/",
			})
			rootRels = NewRelationships("")
		}
	}
	pkg.rootRels = rootRels
	resolveRelationships(pkg.rootRels, pkg)

	if mainRel := pkg.rootRels.GetByRelType(RTOfficeDocument); mainRel != nil && !mainRel.Dangling {
		pkg.mainDocumentURI = mainRel.TargetPart.PartName()
		pkg.hasMainDocument = true
	} else {
		findings = append(findings, finding.Finding{
			Category:    finding.CategoryPackage,
			Severity:    finding.SeverityError,
			Description: "package has no resolvable main document relationship",
			PartURI:     "/",
		})
	}

	return pkg, findings, nil
}

func loadContentTypes(phys *PhysPkgReader) (*ContentTypeMap, []finding.Finding) {
	blob, err := phys.ContentTypesXml()
	empty := &ContentTypeMap{defaults: map[string]string{}, overrides: map[PackURI]string{}}
	if err != nil {
		return empty, []finding.Finding{{
			Category:    finding.CategoryPackage,
			Severity:    finding.SeverityError,
			Description: "package is missing [Content_Types].xml",
			PartURI:     "/",
		}}
	}
	ct, err := ParseContentTypes(blob)
	if err != nil {
		return empty, []finding.Finding{{
			Category:    finding.CategoryPackage,
			Severity:    finding.SeverityError,
			Description: "[Content_Types].xml is malformed: " + err.Error(),
			PartURI:     "/[Content_Types].xml",
		}}
	}
	return ct, nil
}

// isAuxiliaryMember reports whether pn is part of the OPC machinery
// itself (the content-type dictionary or a ".rels" file) rather than a
// part that belongs in the registry.
func isAuxiliaryMember(pn PackURI) bool {
	s := string(pn)
	if s == "/[Content_Types].xml" {
		return true
	}
	return strings.HasSuffix(s, ".rels") && (strings.Contains(s, "/_rels/") || strings.HasPrefix(s, "/_rels/"))
}

// buildRelationships parses a ".rels" blob and resolves each entry
// against pkg's part registry. pkg may be nil while a part's own
// relationships are being built during registry construction — targets
// are re-resolved in a second pass via resolveRelationships once the
// full registry exists.
func buildRelationships(blob []byte, baseURI string, pkg *Package) (*Relationships, error) {
	serialized, err := ParseRelationships(blob, baseURI)
	if err != nil {
		return nil, err
	}
	rels := NewRelationships(baseURI)
	for _, sr := range serialized {
		var target Part
		if !sr.IsExternal() && pkg != nil {
			target = pkg.parts[sr.TargetPartname()]
		}
		rels.Load(sr.RID, sr.RelType, sr.TargetRef, target, sr.Mode)
	}
	return rels, nil
}

// resolveRelationships re-resolves every internal relationship's target
// against pkg's now-complete registry, updating Dangling in place.
func resolveRelationships(rels *Relationships, pkg *Package) {
	for _, rel := range rels.All() {
		if rel.IsExternal() {
			continue
		}
		if rel.TargetPart != nil {
			continue
		}
		target := pkg.parts[FromRelRef(rels.BaseURI(), rel.TargetRef)]
		rel.TargetPart = target
		rel.Dangling = target == nil
	}
}

// Close releases the underlying archive handle.
func (p *Package) Close() error {
	return p.physReader.Close()
}

// ContentTypes returns the package's content-type dictionary.
func (p *Package) ContentTypes() *ContentTypeMap { return p.contentTypes }

// RootRelationships returns the package-level relationship collection
// read from "_rels/.rels".
func (p *Package) RootRelationships() *Relationships { return p.rootRels }

// PartByName returns the part at pn, or nil if the registry has none.
func (p *Package) PartByName(pn PackURI) Part {
	return p.parts[pn]
}

// MainDocumentPart returns the package's main document part (resolved
// via the root officeDocument relationship) and whether one exists.
func (p *Package) MainDocumentPart() (Part, bool) {
	if !p.hasMainDocument {
		return nil, false
	}
	return p.parts[p.mainDocumentURI], true
}

// Parts returns every registered part in deterministic (sorted
// part-name) order, matching spec §5's package-declared traversal
// order.
func (p *Package) Parts() []Part {
	out := make([]Part, 0, len(p.order))
	for _, pn := range p.order {
		out = append(out, p.parts[pn])
	}
	return out
}

// IterParts calls visit for every part in deterministic order, stopping
// early if visit returns false.
func (p *Package) IterParts(visit func(Part) bool) {
	for _, pn := range p.order {
		if !visit(p.parts[pn]) {
			return
		}
	}
}

// WalkReachable performs an iterative depth-first walk of the
// relationship graph starting from the package root, visiting every
// part reachable via an internal relationship chain at most once. It
// uses an explicit stack rather than recursion so a pathologically deep
// or cyclic relationship chain cannot overflow the Go call stack.
func (p *Package) WalkReachable(visit func(Part) bool) {
	seen := make(map[PackURI]bool)
	var stack []*Relationships
	stack = append(stack, p.rootRels)

	for len(stack) > 0 {
		rels := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		rs := rels.All()
		for i := len(rs) - 1; i >= 0; i-- {
			rel := rs[i]
			if rel.IsExternal() || rel.Dangling || rel.TargetPart == nil {
				continue
			}
			pn := rel.TargetPart.PartName()
			if seen[pn] {
				continue
			}
			seen[pn] = true
			if !visit(rel.TargetPart) {
				return
			}
			stack = append(stack, rel.TargetPart.Relationships())
		}
	}
}

// UnreachableParts returns every registered part that WalkReachable
// never visits — present in the archive but not linked from the
// package root through any chain of relationships.
func (p *Package) UnreachableParts() []Part {
	reached := make(map[PackURI]bool)
	p.WalkReachable(func(part Part) bool {
		reached[part.PartName()] = true
		return true
	})
	var out []Part
	for _, pn := range p.order {
		if !reached[pn] {
			out = append(out, p.parts[pn])
		}
	}
	return out
}
