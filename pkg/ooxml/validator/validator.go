// Package validator is the top-level entry point: it wires the schema
// table, the seed semantic catalog, and the schematron-bridged catalog
// into one immutable Validator, then drives a package's validation
// through its phases (open → per-part schema/semantic checks →
// relationship integrity → format-specific rules), turning every
// problem it finds into a finding.Finding.
package validator

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/beevik/etree"

	"github.com/vortex/ooxml-validator/pkg/ooxml/finding"
	"github.com/vortex/ooxml-validator/pkg/ooxml/opc"
	"github.com/vortex/ooxml-validator/pkg/ooxml/schema"
	"github.com/vortex/ooxml-validator/pkg/ooxml/schematron"
	"github.com/vortex/ooxml-validator/pkg/ooxml/semantic"
	"github.com/vortex/ooxml-validator/pkg/ooxml/valctx"
)

// Validator holds the immutable rule surface (an element-constraint
// table plus a merged semantic catalog) built once by New and shared
// across every Validate call. It carries no mutable state of its own,
// so a single *Validator is safe for concurrent reuse across goroutines
// — only the per-call finding.Accumulator and valctx.Cursor are
// call-scoped.
type Validator struct {
	table   *schema.Table
	catalog *semantic.Catalog
	cfg     Config
}

// New builds a Validator from opts, merging the built-in PresentationML
// schema table with the built-in semantic seed catalog and the catalog
// bridged from the embedded Schematron-derived rule inventory. It fails
// only if the embedded rule inventory itself is malformed — something
// that would indicate a packaging bug in this module, not a problem
// with any document the caller later validates.
func New(opts ...Option) (*Validator, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	bridged, stats, err := schematron.BuildEmbeddedCatalog()
	if err != nil {
		return nil, fmt.Errorf("validator: loading embedded schematron inventory: %w", err)
	}
	if stats.Unknown > 0 {
		cfg.Logger.Printf("ooxml/validator: %d of %d embedded schematron rules did not classify into a known constraint shape (coverage %.1f%%)",
			stats.Unknown, stats.Total, stats.Coverage()*100)
	}

	return &Validator{
		table:   schema.PresentationMLTable,
		catalog: semantic.SeedCatalog.Merge(bridged),
		cfg:     cfg,
	}, nil
}

// Validate opens the archive at r (size bytes long) and runs every
// configured validation phase against it, returning the accumulated
// findings. ctx only gates the archive-opening step; once a package is
// open, traversal runs to completion or to the configured max_errors
// cap, whichever comes first — this validator has no built-in timeout
// beyond that cap.
func (v *Validator) Validate(ctx context.Context, r io.ReaderAt, size int64) ([]finding.Finding, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	pkg, pkgFindings, err := opc.Open(r, size)
	if err != nil {
		return nil, fmt.Errorf("validator: opening package: %w", err)
	}
	defer pkg.Close()
	return v.run(ctx, pkg, pkgFindings, "")
}

// ValidateFile is Validate over a package stored on disk. Because the
// file's own name is available here, this entry point additionally
// checks the main document's content type against the extension table
// (mainDocumentContentTypes) — a check Validate/ValidateBytes cannot
// perform since an io.ReaderAt carries no name.
func (v *Validator) ValidateFile(ctx context.Context, path string) ([]finding.Finding, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	pkg, pkgFindings, err := opc.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("validator: opening file %q: %w", path, err)
	}
	defer pkg.Close()
	return v.run(ctx, pkg, pkgFindings, path)
}

// ValidateBytes is Validate over an in-memory archive.
func (v *Validator) ValidateBytes(ctx context.Context, data []byte) ([]finding.Finding, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	pkg, pkgFindings, err := opc.OpenBytes(data)
	if err != nil {
		return nil, fmt.Errorf("validator: opening bytes: %w", err)
	}
	defer pkg.Close()
	return v.run(ctx, pkg, pkgFindings, "")
}

// IsValid reports whether data has no error-severity findings. It
// returns an error only when the archive itself could not be opened at
// all, matching the other entry points' error contract.
func (v *Validator) IsValid(ctx context.Context, data []byte) (bool, error) {
	findings, err := v.ValidateBytes(ctx, data)
	if err != nil {
		return false, err
	}
	for _, f := range findings {
		if f.Severity == finding.SeverityError {
			return false, nil
		}
	}
	return true, nil
}

// run drives the phase pipeline against an already-opened package,
// closing the accumulator and logging the truncation notice exactly
// once before returning.
func (v *Validator) run(ctx context.Context, pkg *opc.Package, pkgFindings []finding.Finding, path string) ([]finding.Finding, error) {
	acc := finding.NewAccumulator(v.cfg.MaxErrors)
	for _, f := range pkgFindings {
		if !acc.Append(f) {
			break
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	main, ok := pkg.MainDocumentPart()
	if !ok {
		// opc.Open already recorded a finding for the unresolvable main
		// document; every later phase assumes one exists, per §4.8's
		// precondition, so validation stops here.
		return v.close(acc), nil
	}

	if !acc.Full() {
		v.checkMainDocumentContentType(acc, main)
	}
	if path != "" && !acc.Full() {
		checkExtensionContentType(acc, path, main)
	}

	var mainXML *opc.XMLPart
	var mainRoot *etree.Element
	if !acc.Full() {
		mainXML, mainRoot = v.openMainDocument(acc, main)
	}

	if !acc.Full() {
		pkg.WalkReachable(func(part opc.Part) bool {
			return v.validatePart(acc, pkg, part)
		})
	}

	if !acc.Full() {
		checkRelationshipIntegrity(acc, pkg)
	}

	if !acc.Full() {
		v.checkUnreachableParts(acc, pkg)
	}

	if !acc.Full() && mainXML != nil && mainRoot != nil {
		validatePresentation(v.cfg, acc, pkg, mainXML, mainRoot)
	}

	return v.close(acc), nil
}

func (v *Validator) close(acc *finding.Accumulator) []finding.Finding {
	wasTruncated := acc.Truncated()
	findings := acc.Close()
	if wasTruncated {
		v.cfg.Logger.Printf("ooxml/validator: findings truncated at max_errors=%d", v.cfg.MaxErrors)
	}
	return findings
}

// openMainDocument parses the main document part's XML, reporting a
// finding (and returning nil) if the part is not XML or fails to parse.
func (v *Validator) openMainDocument(acc *finding.Accumulator, main opc.Part) (*opc.XMLPart, *etree.Element) {
	xp, ok := main.(*opc.XMLPart)
	if !ok {
		acc.Append(finding.Finding{
			Category:    finding.CategoryPackage,
			Severity:    finding.SeverityError,
			Description: "main document part is not an XML part",
			PartURI:     string(main.PartName()),
		})
		return nil, nil
	}
	root, err := xp.Root()
	if err != nil {
		acc.Append(finding.Finding{
			Category:    finding.CategoryPackage,
			Severity:    finding.SeverityError,
			Description: "main document part could not be parsed: " + err.Error(),
			PartURI:     string(main.PartName()),
		})
		return nil, nil
	}
	return xp, root
}

// validatePart runs the schema and semantic passes over one reachable
// XML part. Binary parts (images, and so on) have nothing to check and
// are skipped. The return value is the usual "keep going" signal.
func (v *Validator) validatePart(acc *finding.Accumulator, pkg *opc.Package, part opc.Part) bool {
	xp, ok := part.(*opc.XMLPart)
	if !ok {
		return true
	}
	root, err := xp.Root()
	if err != nil {
		var malformed *opc.MalformedXMLError
		desc := "part could not be parsed as XML: " + err.Error()
		if errors.As(err, &malformed) {
			desc = malformed.Error()
		}
		return acc.Append(finding.Finding{
			Category:    finding.CategoryPackage,
			Severity:    finding.SeverityError,
			Description: desc,
			PartURI:     string(part.PartName()),
		})
	}

	cur := valctx.New(pkg, part, v.cfg.FormatVersion, acc)
	if v.cfg.SchemaValidation {
		schema.Validate(cur, v.table, root)
		if acc.Full() {
			return false
		}
	}
	if v.cfg.SemanticValidation {
		semantic.Validate(cur, v.catalog, root)
		if acc.Full() {
			return false
		}
	}
	return true
}

// checkUnreachableParts reports every archive member present but not
// linked from the package root through any relationship chain — dead
// weight a well-formed producer should never emit, and a signal of a
// missing relationship in a hand-assembled or corrupted package.
func (v *Validator) checkUnreachableParts(acc *finding.Accumulator, pkg *opc.Package) {
	for _, part := range pkg.UnreachableParts() {
		if !acc.Append(finding.Finding{
			Category:    finding.CategoryPackage,
			Severity:    finding.SeverityWarning,
			Description: "part exists in the archive but is not reachable from the package root",
			PartURI:     string(part.PartName()),
		}) {
			return
		}
	}
}

// checkMainDocumentContentType warns when the main document's declared
// content type doesn't match any recognized main-document media type
// for the format families this validator knows about.
func (v *Validator) checkMainDocumentContentType(acc *finding.Accumulator, main opc.Part) {
	ct := main.ContentType()
	if knownMainDocumentContentType(ct) {
		return
	}
	acc.Append(finding.Finding{
		Category:    finding.CategoryPackage,
		Severity:    finding.SeverityWarning,
		Description: "main document part declares an unrecognized content type: " + ct,
		PartURI:     string(main.PartName()),
	})
}
