package semantic

import (
	"testing"

	"github.com/beevik/etree"

	"github.com/vortex/ooxml-validator/pkg/ooxml/finding"
	"github.com/vortex/ooxml-validator/pkg/ooxml/opc"
	"github.com/vortex/ooxml-validator/pkg/ooxml/valctx"
)

func parseFragment(t *testing.T, xml string) *etree.Element {
	t.Helper()
	doc := etree.NewDocument()
	if err := doc.ReadFromString(xml); err != nil {
		t.Fatalf("ReadFromString: %v", err)
	}
	return doc.Root()
}

type fakePart struct {
	name opc.PackURI
	rels *opc.Relationships
}

func (f fakePart) PartName() opc.PackURI             { return f.name }
func (f fakePart) ContentType() string               { return "application/xml" }
func (f fakePart) Blob() []byte                      { return nil }
func (f fakePart) Relationships() *opc.Relationships { return f.rels }
func (f fakePart) IsXML() bool                       { return true }

func newFakePart(name string) fakePart {
	pn := opc.NewPackURI(name)
	return fakePart{name: pn, rels: opc.NewRelationships(pn.BaseURI())}
}

func runValidate(t *testing.T, catalog *Catalog, xml string, part fakePart) []finding.Finding {
	t.Helper()
	root := parseFragment(t, xml)
	acc := finding.NewAccumulator(0)
	cur := valctx.New(nil, part, finding.DefaultFormatVersion, acc)
	Validate(cur, catalog, root)
	return acc.Close()
}

func TestSeedCatalog_DuplicateShapeID(t *testing.T) {
	xml := `<p:spTree xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main">
	  <p:sp><p:nvSpPr><p:cNvPr id="2" name="A"/></p:nvSpPr></p:sp>
	  <p:sp><p:nvSpPr><p:cNvPr id="2" name="B"/></p:nvSpPr></p:sp>
	</p:spTree>`

	findings := runValidate(t, SeedCatalog, xml, newFakePart("/ppt/slides/slide1.xml"))

	found := false
	for _, f := range findings {
		if f.RuleID == "pptx.duplicate-shape-id" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a duplicate-shape-id finding, got %v", findings)
	}
}

func TestSeedCatalog_ShapeExtentMustBePositive(t *testing.T) {
	xml := `<a:ext xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" cx="0" cy="100"/>`

	findings := runValidate(t, SeedCatalog, xml, newFakePart("/ppt/slides/slide1.xml"))
	if len(findings) != 1 {
		t.Fatalf("expected exactly one finding, got %v", findings)
	}
}

func TestSeedCatalog_DanglingSlideMasterRelationship(t *testing.T) {
	xml := `<p:sldMasterId xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main"
	  xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships" r:id="rId99"/>`

	part := newFakePart("/ppt/presentation.xml")
	findings := runValidate(t, SeedCatalog, xml, part)
	if len(findings) != 1 || findings[0].RuleID != "pptx.slide-master-relationship" {
		t.Fatalf("expected a slide-master-relationship finding, got %v", findings)
	}
}

// TestEvaluate_UnrecognizedConstraintKind exercises the default branch
// of the evaluation switch: a Constraint implementation this package
// does not know about (as a schematron bridge defect might produce)
// must be reported as a finding, never silently ignored or allowed to
// panic the traversal.
func TestEvaluate_UnrecognizedConstraintKind(t *testing.T) {
	el := parseFragment(t, `<p:sp xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main"/>`)
	acc := finding.NewAccumulator(0)
	cur := valctx.New(nil, newFakePart("/ppt/slides/slide1.xml"), finding.DefaultFormatVersion, acc)

	Evaluate(cur, el, unknownConstraint{})

	findings := acc.Close()
	if len(findings) != 1 {
		t.Fatalf("expected exactly one finding, got %v", findings)
	}
}

type unknownConstraint struct{}

func (unknownConstraint) ID() string             { return "test.unknown" }
func (unknownConstraint) constraintKind() string { return "unknown" }
