package opc

import (
	"archive/zip"
	"bytes"
	"errors"
	"testing"

	"github.com/vortex/ooxml-validator/pkg/ooxml/finding"
)

// buildTestZip assembles an in-memory ZIP from name->content pairs, in
// the order given, mirroring the fixture-building helpers used
// throughout the teacher's opc test suite.
func buildTestZip(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("zip.Create(%q): %v", name, err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatalf("zip write(%q): %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip.Close: %v", err)
	}
	return buf.Bytes()
}

const minimalContentTypes = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
  <Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
  <Default Extension="xml" ContentType="application/xml"/>
  <Override PartName="/ppt/presentation.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.presentation.main+xml"/>
</Types>`

const minimalRootRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
  <Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="ppt/presentation.xml"/>
</Relationships>`

const minimalPresentation = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<p:presentation xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main"/>`

func minimalFixture() map[string]string {
	return map[string]string{
		"[Content_Types].xml": minimalContentTypes,
		"_rels/.rels":         minimalRootRels,
		"ppt/presentation.xml": minimalPresentation,
	}
}

func TestOpen_MinimalValidPackage(t *testing.T) {
	data := buildTestZip(t, minimalFixture())

	pkg, findings, err := OpenBytes(data)
	if err != nil {
		t.Fatalf("OpenBytes: %v", err)
	}
	defer pkg.Close()

	for _, f := range findings {
		t.Errorf("unexpected package finding: %s", f)
	}

	main, ok := pkg.MainDocumentPart()
	if !ok {
		t.Fatal("expected a resolved main document part")
	}
	if main.PartName() != NewPackURI("/ppt/presentation.xml") {
		t.Errorf("main document part = %q, want /ppt/presentation.xml", main.PartName())
	}
	if !main.IsXML() {
		t.Error("main document part should be classified as XML")
	}
}

func TestOpen_NotAContainer(t *testing.T) {
	_, _, err := OpenBytes([]byte("this is not a zip file"))
	if err == nil {
		t.Fatal("expected an error opening non-ZIP bytes")
	}
	var notContainer *NotAContainerError
	if !errors.As(err, &notContainer) {
		t.Errorf("expected *NotAContainerError, got %T: %v", err, err)
	}
}

func TestOpen_MissingMainDocument(t *testing.T) {
	files := minimalFixture()
	delete(files, "_rels/.rels")
	data := buildTestZip(t, files)

	pkg, findings, err := OpenBytes(data)
	if err != nil {
		t.Fatalf("OpenBytes: %v", err)
	}
	defer pkg.Close()

	if _, ok := pkg.MainDocumentPart(); ok {
		t.Error("expected no resolvable main document part")
	}
	if !hasFindingCategory(findings, "package") {
		t.Errorf("expected a package-category finding, got %v", findings)
	}
}

func TestOpen_DanglingRelationship(t *testing.T) {
	files := minimalFixture()
	files["ppt/_rels/presentation.xml.rels"] = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
  <Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideMaster" Target="slideMasters/slideMaster1.xml"/>
</Relationships>`
	data := buildTestZip(t, files)

	pkg, _, err := OpenBytes(data)
	if err != nil {
		t.Fatalf("OpenBytes: %v", err)
	}
	defer pkg.Close()

	main, ok := pkg.MainDocumentPart()
	if !ok {
		t.Fatal("expected a resolved main document part")
	}
	rel := main.Relationships().GetByRelType(RTSlideMaster)
	if rel == nil {
		t.Fatal("expected a slideMaster relationship")
	}
	if !rel.Dangling {
		t.Error("expected the slideMaster relationship to be dangling")
	}
}

func TestOpen_UnknownContentType(t *testing.T) {
	files := minimalFixture()
	files["docProps/thumbnail.jpeg"] = "not-really-a-jpeg"
	data := buildTestZip(t, files)

	pkg, findings, err := OpenBytes(data)
	if err != nil {
		t.Fatalf("OpenBytes: %v", err)
	}
	defer pkg.Close()

	part := pkg.PartByName(NewPackURI("/docProps/thumbnail.jpeg"))
	if part == nil {
		t.Fatal("expected the unrecognized part to still be registered")
	}
	if part.ContentType() != "" {
		t.Errorf("content type = %q, want empty", part.ContentType())
	}
	if !hasFindingCategory(findings, "package") {
		t.Errorf("expected a package-category finding for the unknown content type, got %v", findings)
	}
}

func TestOpen_DirectoryTraversal(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("../../etc/passwd")
	if err != nil {
		t.Fatalf("zip.Create: %v", err)
	}
	if _, err := w.Write([]byte("root:x:0:0")); err != nil {
		t.Fatalf("zip write: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip.Close: %v", err)
	}

	_, _, err = OpenBytes(buf.Bytes())
	if err == nil {
		t.Fatal("expected a directory-traversal error")
	}
}

func TestUnreachableParts(t *testing.T) {
	files := minimalFixture()
	files["ppt/media/image1.png"] = "not-a-real-image"
	files["[Content_Types].xml"] = minimalContentTypes[:len(minimalContentTypes)-len("</Types>")] +
		`<Default Extension="png" ContentType="image/png"/></Types>`
	data := buildTestZip(t, files)

	pkg, _, err := OpenBytes(data)
	if err != nil {
		t.Fatalf("OpenBytes: %v", err)
	}
	defer pkg.Close()

	unreachable := pkg.UnreachableParts()
	if len(unreachable) != 1 || unreachable[0].PartName() != NewPackURI("/ppt/media/image1.png") {
		t.Errorf("UnreachableParts = %v, want just /ppt/media/image1.png", unreachable)
	}
}

func hasFindingCategory(findings []finding.Finding, category finding.Category) bool {
	for _, f := range findings {
		if f.Category == category {
			return true
		}
	}
	return false
}
