package schema

import (
	"testing"

	"github.com/beevik/etree"

	"github.com/vortex/ooxml-validator/pkg/ooxml/finding"
	"github.com/vortex/ooxml-validator/pkg/ooxml/opc"
	"github.com/vortex/ooxml-validator/pkg/ooxml/valctx"
)

// fakePart is a minimal opc.Part stand-in so schema tests do not need a
// real archive just to get a PartURI for findings to report against.
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

func parseFragment(t *testing.T, xml string) *etree.Element {
	t.Helper()
	doc := etree.NewDocument()
	if err := doc.ReadFromString(xml); err != nil {
		t.Fatalf("ReadFromString: %v", err)
	}
	return doc.Root()
}

func runValidate(t *testing.T, table *Table, xml string, maxFindings int) []finding.Finding {
	t.Helper()
	root := parseFragment(t, xml)
	acc := finding.NewAccumulator(maxFindings)
	cur := valctx.New(nil, newFakePart("/ppt/presentation.xml"), finding.DefaultFormatVersion, acc)
	Validate(cur, table, root)
	return acc.Close()
}

func TestValidate_WellFormedPresentationIsClean(t *testing.T) {
	xml := `<p:presentation xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main">
	  <p:sldMasterIdLst><p:sldMasterId r:id="rId1" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships"/></p:sldMasterIdLst>
	  <p:sldIdLst><p:sldId id="256" r:id="rId2" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships"/></p:sldIdLst>
	  <p:sldSz cx="9144000" cy="6858000"/>
	  <p:notesSz cx="6858000" cy="9144000"/>
	</p:presentation>`

	findings := runValidate(t, PresentationMLTable, xml, 0)
	if len(findings) != 0 {
		t.Errorf("expected no findings, got %v", findings)
	}
}

func TestValidate_OutOfRangeSlideID(t *testing.T) {
	xml := `<p:sldId xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main"
	  xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	  id="3" r:id="rId2"/>`

	findings := runValidate(t, PresentationMLTable, xml, 0)
	if len(findings) != 1 {
		t.Fatalf("expected exactly one finding, got %v", findings)
	}
	if findings[0].Category != finding.CategorySchema {
		t.Errorf("category = %q, want schema", findings[0].Category)
	}
}

func TestValidate_MissingRequiredAttribute(t *testing.T) {
	xml := `<p:sldMasterId xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main"/>`

	findings := runValidate(t, PresentationMLTable, xml, 0)
	if len(findings) != 1 {
		t.Fatalf("expected exactly one finding, got %v", findings)
	}
}

func TestValidate_ContentModelWrongChild(t *testing.T) {
	// p:sldMasterIdLst's content model is a strict, wildcard-free
	// sequence of one or more p:sldMasterId children — a p:sldId here
	// has no fallback particle to absorb it.
	xml := `<p:sldMasterIdLst xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main">
	  <p:sldId id="256"/>
	</p:sldMasterIdLst>`

	findings := runValidate(t, PresentationMLTable, xml, 0)
	if len(findings) == 0 {
		t.Fatal("expected a content-model finding for the unexpected child element")
	}
}

func TestValidate_ShapeNameOneCharOverMax(t *testing.T) {
	name := ""
	for i := 0; i < 257; i++ {
		name += "x"
	}
	xml := `<p:cNvPr xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main" id="1" name="` + name + `"/>`

	findings := runValidate(t, PresentationMLTable, xml, 0)
	if len(findings) != 1 {
		t.Fatalf("expected exactly one finding, got %v", findings)
	}
	if findings[0].Category != finding.CategorySchema {
		t.Errorf("category = %q, want schema", findings[0].Category)
	}
}

func TestValidate_ShapeOffsetOutOfRange(t *testing.T) {
	xml := `<a:off xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" x="9999999999" y="0"/>`

	findings := runValidate(t, PresentationMLTable, xml, 0)
	if len(findings) != 1 {
		t.Fatalf("expected exactly one finding, got %v", findings)
	}
	if findings[0].Category != finding.CategorySchema {
		t.Errorf("category = %q, want schema", findings[0].Category)
	}
}

func TestValidate_StopsAtMaxFindings(t *testing.T) {
	xml := `<p:presentation xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main">
	  <p:sldMasterIdLst>
	    <p:sldMasterId/>
	    <p:sldMasterId/>
	    <p:sldMasterId/>
	  </p:sldMasterIdLst>
	</p:presentation>`

	findings := runValidate(t, PresentationMLTable, xml, 1)
	if len(findings) != 2 { // the one allowed finding plus the truncation notice
		t.Fatalf("expected 1 finding plus a truncation notice, got %d: %v", len(findings), findings)
	}
	if findings[1].Description == "" {
		t.Error("expected a truncation notice as the final finding")
	}
}
