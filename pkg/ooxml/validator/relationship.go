package validator

import (
	"strings"

	"github.com/vortex/ooxml-validator/pkg/ooxml/finding"
	"github.com/vortex/ooxml-validator/pkg/ooxml/opc"
)

// checkRelationshipIntegrity runs §4.3's relationship-resolution check
// across every collection in the package — the root's own
// (_rels/.rels) plus every part's — rather than relying on whatever a
// schema/semantic constraint happens to dereference by r:id. A
// relationship whose target escapes the package root is reported
// separately from one that simply doesn't resolve, since the two merit
// different findings even though both leave TargetPart nil.
func checkRelationshipIntegrity(acc *finding.Accumulator, pkg *opc.Package) {
	if !checkRelationships(acc, "/", pkg.RootRelationships()) {
		return
	}
	for _, part := range pkg.Parts() {
		if !checkRelationships(acc, string(part.PartName()), part.Relationships()) {
			return
		}
	}
}

func checkRelationships(acc *finding.Accumulator, sourceURI string, rels *opc.Relationships) bool {
	for _, rel := range rels.All() {
		if rel.IsExternal() {
			continue
		}
		if relationshipEscapes(rels.BaseURI(), rel.TargetRef) {
			if !acc.Append(finding.Finding{
				Category:        finding.CategoryRelationship,
				Severity:        finding.SeverityError,
				Description:     "relationship " + rel.RID + " target " + rel.TargetRef + " resolves outside the package root",
				PartURI:         sourceURI,
				RelatedNodeName: rel.RID,
			}) {
				return false
			}
			continue
		}
		if rel.Dangling {
			if !acc.Append(finding.Finding{
				Category:        finding.CategoryRelationship,
				Severity:        finding.SeverityError,
				Description:     "relationship " + rel.RID + " target " + rel.TargetRef + " does not resolve to a part in the package",
				PartURI:         sourceURI,
				RelatedNodeName: rel.RID,
			}) {
				return false
			}
		}
	}
	return true
}

// relationshipEscapes reports whether ref, resolved relative to baseURI
// the way opc.FromRelRef would, walks outside the package root before
// opc.NewPackURI's cleaning silently clamps it back in. Package-rooted
// refs (those starting with "/") are resolved directly against the
// root and can never escape by construction.
func relationshipEscapes(baseURI, ref string) bool {
	if strings.HasPrefix(ref, "/") {
		return false
	}
	combined := ref
	if baseURI != "" {
		combined = baseURI + "/" + ref
	}
	return opc.Escapes(combined)
}
