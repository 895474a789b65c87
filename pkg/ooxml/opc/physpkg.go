package opc

import (
	"archive/zip"
	"bytes"
	"io"
	"os"
	"sort"
	"strings"
)

// PhysPkgReader wraps the ZIP archive backing an OPC package and owns
// the archive handle for the lifetime of the Package built from it, so
// that XML parts can be materialized lazily well after Open returns
// (see spec §4.2). It is read-only: there is no physical writer,
// because this validator never serializes a package back out.
type PhysPkgReader struct {
	zr      *zip.Reader
	closer  io.Closer
	entries map[PackURI]*zip.File
	order   []PackURI
}

// NewPhysPkgReader builds a reader over an already-open ReaderAt, such
// as an *os.File or a *bytes.Reader. The caller remains responsible for
// closing r if it implements io.Closer and the reader does not own it.
func NewPhysPkgReader(r io.ReaderAt, size int64) (*PhysPkgReader, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, newNotAContainerError(err)
	}
	return newPhysPkgReader(zr, nil)
}

// NewPhysPkgReaderFromBytes builds a reader over an in-memory archive.
func NewPhysPkgReaderFromBytes(data []byte) (*PhysPkgReader, error) {
	return NewPhysPkgReader(bytes.NewReader(data), int64(len(data)))
}

// NewPhysPkgReaderFromFile opens path and builds a reader over it. The
// returned PhysPkgReader owns the *os.File and closes it from Close.
func NewPhysPkgReaderFromFile(path string) (*PhysPkgReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, newNotAContainerError(err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, newNotAContainerError(err)
	}
	zr, err := zip.NewReader(f, info.Size())
	if err != nil {
		f.Close()
		return nil, newNotAContainerError(err)
	}
	return newPhysPkgReader(zr, f)
}

func newPhysPkgReader(zr *zip.Reader, closer io.Closer) (*PhysPkgReader, error) {
	r := &PhysPkgReader{
		zr:      zr,
		closer:  closer,
		entries: make(map[PackURI]*zip.File, len(zr.File)),
	}
	for _, f := range zr.File {
		if strings.HasSuffix(f.Name, "/") {
			continue // directory entry, not a part
		}
		if Escapes(f.Name) {
			return nil, newDirectoryTraversalError(f.Name)
		}
		pn := NewPackURI(f.Name)
		r.entries[pn] = f
		r.order = append(r.order, pn)
	}
	sort.Slice(r.order, func(i, j int) bool { return r.order[i] < r.order[j] })
	return r, nil
}

// Close releases the underlying file handle, if the reader owns one.
func (r *PhysPkgReader) Close() error {
	if r.closer != nil {
		return r.closer.Close()
	}
	return nil
}

// URIs returns every archive member's normalized PackURI in sorted
// order, including "[Content_Types].xml" and "_rels/.rels" entries;
// callers that build the part registry filter those out themselves.
func (r *PhysPkgReader) URIs() []PackURI {
	out := make([]PackURI, len(r.order))
	copy(out, r.order)
	return out
}

// BlobFor returns the raw bytes of the archive member at pn.
func (r *PhysPkgReader) BlobFor(pn PackURI) ([]byte, error) {
	f, ok := r.entries[pn]
	if !ok {
		return nil, newMemberNotFoundError(string(pn))
	}
	rc, err := f.Open()
	if err != nil {
		return nil, &OpcError{PartURI: string(pn), Err: err}
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, &OpcError{PartURI: string(pn), Err: err}
	}
	return data, nil
}

// ContentTypesXml returns the bytes of "[Content_Types].xml", or a
// MemberNotFoundError if the archive has none.
func (r *PhysPkgReader) ContentTypesXml() ([]byte, error) {
	return r.BlobFor(NewPackURI("/[Content_Types].xml"))
}

// RelsXmlFor returns the bytes of the ".rels" file for the part at pn
// (or the package-level "_rels/.rels" when pn is PackageURI), and
// (nil, nil) when no such file exists — per spec §4.2 a missing rels
// file means an empty relationship collection, not an error.
func (r *PhysPkgReader) RelsXmlFor(pn PackURI) ([]byte, error) {
	relsURI := relsPathFor(pn)
	f, ok := r.entries[relsURI]
	if !ok {
		return nil, nil
	}
	rc, err := f.Open()
	if err != nil {
		return nil, &OpcError{PartURI: string(relsURI), Err: err}
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func relsPathFor(pn PackURI) PackURI {
	if pn == PackageURI {
		return NewPackURI("/_rels/.rels")
	}
	dir := pn.BaseURI()
	base := string(pn)
	if idx := strings.LastIndex(base, "/"); idx >= 0 {
		base = base[idx+1:]
	}
	return NewPackURI(dir + "/_rels/" + base + ".rels")
}
