package validator

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestValidateBytes_SlideRelationshipWrongType(t *testing.T) {
	v := newTestValidator(t)
	files := minimalFixture()
	// rId2 is supposed to be a slide relationship; point it at the
	// slide master's type instead so checkRelatedItem's type check fires.
	files["ppt/_rels/presentation.xml.rels"] = strings.Replace(fixturePresentationRels,
		`Id="rId2" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/slide"`,
		`Id="rId2" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideMaster"`, 1)
	data := buildTestZip(t, files)

	findings, err := v.ValidateBytes(context.Background(), data)
	if err != nil {
		t.Fatalf("ValidateBytes: %v", err)
	}
	found := false
	for _, f := range findings {
		if f.Category == "relationship" && strings.Contains(f.Description, "unexpected type for this role") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a relationship-role-type finding, got %v", findings)
	}
}

func TestValidateBytes_SlideRelationshipWrongContentType(t *testing.T) {
	v := newTestValidator(t)
	files := minimalFixture()
	// Keep the relationship type correct but make the target declare an
	// unexpected content type, so checkRelatedItem's content-type check
	// fires instead of its relationship-type check.
	files["[Content_Types].xml"] = strings.Replace(fixtureContentTypes,
		`<Override PartName="/ppt/slides/slide1.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.slide+xml"/>`,
		`<Override PartName="/ppt/slides/slide1.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.slideLayout+xml"/>`, 1)
	data := buildTestZip(t, files)

	findings, err := v.ValidateBytes(context.Background(), data)
	if err != nil {
		t.Fatalf("ValidateBytes: %v", err)
	}
	found := false
	for _, f := range findings {
		if f.Category == "relationship" && strings.Contains(f.Description, "unexpected content type for this role") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a relationship-target-content-type finding, got %v", findings)
	}
}

func TestValidateBytes_NonPresentationMainDocumentSkipsPPTXChecks(t *testing.T) {
	v := newTestValidator(t)
	files := map[string]string{
		"[Content_Types].xml": `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
  <Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
  <Default Extension="xml" ContentType="application/xml"/>
  <Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
</Types>`,
		"_rels/.rels": `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
  <Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
</Relationships>`,
		"word/document.xml": `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"/>`,
	}
	data := buildTestZip(t, files)

	findings, err := v.ValidateBytes(context.Background(), data)
	if err != nil {
		t.Fatalf("ValidateBytes: %v", err)
	}
	if errs := errorFindings(findings); len(errs) != 0 {
		t.Errorf("expected no error findings for a non-PresentationML package, got %v", errs)
	}
}

func TestValidateFile_ExtensionContentTypeMismatch(t *testing.T) {
	v := newTestValidator(t)
	files := minimalFixture()
	files["[Content_Types].xml"] = strings.Replace(fixtureContentTypes,
		`ContentType="application/vnd.openxmlformats-officedocument.presentationml.presentation.main+xml"`,
		`ContentType="application/vnd.openxmlformats-officedocument.presentationml.template.main+xml"`, 1)
	data := buildTestZip(t, files)

	dir := t.TempDir()
	path := filepath.Join(dir, "deck.pptx")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	findings, err := v.ValidateFile(context.Background(), path)
	if err != nil {
		t.Fatalf("ValidateFile: %v", err)
	}
	found := false
	for _, f := range findings {
		if strings.Contains(f.Description, "does not match the pptx extension's expected type") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected an extension/content-type mismatch finding, got %v", findings)
	}
}

func TestValidateFile_ExtensionContentTypeMatches(t *testing.T) {
	v := newTestValidator(t)
	data := buildTestZip(t, minimalFixture())

	dir := t.TempDir()
	path := filepath.Join(dir, "deck.pptx")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	findings, err := v.ValidateFile(context.Background(), path)
	if err != nil {
		t.Fatalf("ValidateFile: %v", err)
	}
	if errs := errorFindings(findings); len(errs) != 0 {
		t.Errorf("expected no error findings for a matching pptx, got %v", errs)
	}
}
