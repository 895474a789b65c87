package validator

import (
	"path/filepath"
	"strings"

	"github.com/beevik/etree"

	"github.com/vortex/ooxml-validator/pkg/ooxml/finding"
	"github.com/vortex/ooxml-validator/pkg/ooxml/ns"
	"github.com/vortex/ooxml-validator/pkg/ooxml/opc"
	"github.com/vortex/ooxml-validator/pkg/ooxml/valctx"
)

// mainDocumentContentTypes maps a package file extension (lowercased,
// no leading dot) to the content type its officeDocument relationship
// target is expected to declare. Every entry feeds the content-type
// checks (checkMainDocumentContentType, checkExtensionContentType);
// validatePresentation's relationship checks apply only to a
// <p:presentation> main document. The WordprocessingML/SpreadsheetML
// entries exist only so the package layer's extension table stays
// general-purpose (no schema/semantic table exists for those formats
// here, so they get a content-type check and nothing more).
var mainDocumentContentTypes = map[string]string{
	"pptx": "application/vnd.openxmlformats-officedocument.presentationml.presentation.main+xml",
	"potx": "application/vnd.openxmlformats-officedocument.presentationml.template.main+xml",
	"ppsx": "application/vnd.openxmlformats-officedocument.presentationml.slideshow.main+xml",
	"pptm": "application/vnd.ms-powerpoint.presentation.macroEnabled.main+xml",
	"ppsm": "application/vnd.ms-powerpoint.slideshow.macroEnabled.main+xml",
	"potm": "application/vnd.ms-powerpoint.template.macroEnabled.main+xml",
	"docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml",
	"xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet.main+xml",
}

func knownMainDocumentContentType(ct string) bool {
	for _, v := range mainDocumentContentTypes {
		if v == ct {
			return true
		}
	}
	return false
}

// checkExtensionContentType is the stricter, path-aware sibling of
// checkMainDocumentContentType: it only runs when the caller went
// through ValidateFile, since Validate/ValidateBytes have no file name
// to derive an expected extension from.
func checkExtensionContentType(acc *finding.Accumulator, path string, main opc.Part) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	expected, ok := mainDocumentContentTypes[ext]
	if !ok {
		return
	}
	if main.ContentType() != expected {
		acc.Append(finding.Finding{
			Category:    finding.CategoryPackage,
			Severity:    finding.SeverityError,
			Description: "main document content type does not match the " + ext + " extension's expected type",
			PartURI:     string(main.PartName()),
		})
	}
}

// validatePresentation runs the PPTX-specific relationship checks the
// schema and semantic layers have no vocabulary for: that a
// <p:sldId>/<p:sldMasterId> entry's r:id resolves not merely to *some*
// relationship (the seed catalog's RelationshipExist already covers
// that) but to one of the expected relationship type, whose target
// part in turn declares the expected content type. It is a no-op for a
// main document that isn't a <p:presentation> root, so this validator's
// general-purpose package layer can be pointed at a non-PresentationML
// package without spurious findings.
func validatePresentation(cfg Config, acc *finding.Accumulator, pkg *opc.Package, main opc.Part, root *etree.Element) bool {
	if elementQName(root) != ns.QN("p:presentation") {
		return true
	}
	cur := valctx.New(pkg, main, cfg.FormatVersion, acc)
	cur.Push(valctx.ElementName(root), 1)
	defer cur.Pop()

	if !checkRelatedList(cur, root, "p:sldMasterIdLst", "p:sldMasterId",
		opc.RTSlideMaster, "application/vnd.openxmlformats-officedocument.presentationml.slideMaster+xml") {
		return false
	}
	if acc.Full() {
		return false
	}
	if !checkRelatedList(cur, root, "p:sldIdLst", "p:sldId",
		opc.RTSlide, "application/vnd.openxmlformats-officedocument.presentationml.slide+xml") {
		return false
	}
	return true
}

// checkRelatedList walks listTag's itemTag children (e.g. every
// <p:sldId> inside <p:sldIdLst>), checking each one's r:id relationship
// against relType and expectedContentType.
func checkRelatedList(cur *valctx.Cursor, root *etree.Element, listTag, itemTag, relType, expectedContentType string) bool {
	list := findChild(root, listTag)
	if list == nil {
		return true
	}
	cur.Push(listTag, 1)
	defer cur.Pop()

	idx := 0
	for _, item := range list.ChildElements() {
		if elementQName(item) != ns.QN(itemTag) {
			continue
		}
		idx++
		cur.Push(itemTag, idx)
		ok := checkRelatedItem(cur, item, relType, expectedContentType)
		cur.Pop()
		if !ok {
			return false
		}
	}
	return true
}

func checkRelatedItem(cur *valctx.Cursor, item *etree.Element, relType, expectedContentType string) bool {
	rid, ok := findAttr(item, ns.QN("r:id"))
	if !ok {
		return true // a missing r:id is reported by the schema table's required-attribute check
	}
	rel := cur.Part.Relationships().GetByRID(rid)
	if rel == nil || rel.Dangling {
		return true // RelationshipExist already reports an unresolved r:id
	}
	if rel.RelType != relType {
		return cur.Emit(finding.CategoryRelationship, finding.SeverityError,
			"r:id resolves to a relationship of an unexpected type for this role",
			valctx.ElementName(item), "", "")
	}
	if rel.TargetPart != nil && rel.TargetPart.ContentType() != expectedContentType {
		return cur.Emit(finding.CategoryRelationship, finding.SeverityError,
			"relationship target has an unexpected content type for this role",
			valctx.ElementName(item), "", "")
	}
	return true
}

func findChild(el *etree.Element, tag string) *etree.Element {
	want := ns.QN(tag)
	for _, child := range el.ChildElements() {
		if elementQName(child) == want {
			return child
		}
	}
	return nil
}

func findAttr(el *etree.Element, name ns.QName) (string, bool) {
	for i := range el.Attr {
		a := &el.Attr[i]
		uri := ""
		if a.Space != "" {
			uri = ns.URI(a.Space)
		}
		if a.Key == name.Local && uri == name.URI {
			return a.Value, true
		}
	}
	return "", false
}

func elementQName(el *etree.Element) ns.QName {
	return ns.QName{Local: el.Tag, URI: el.NamespaceURI()}
}
