package opc

import (
	"errors"
	"fmt"
)

// ErrUnknownContentType is wrapped by ContentTypeMap.ContentType when a
// part name matches neither a Default nor an Override entry.
var ErrUnknownContentType = errors.New("opc: no applicable content type")

// OpcError is the base of the package's error hierarchy. Concrete
// errors embed it so callers can use errors.As to recover the part URI
// that caused a failure regardless of the specific error variant,
// mirroring the teacher's DocxError hierarchy.
type OpcError struct {
	PartURI string
	Err     error
}

func (e *OpcError) Error() string {
	if e.PartURI == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("opc: %s: %v", e.PartURI, e.Err)
}

func (e *OpcError) Unwrap() error { return e.Err }

// NotAContainerError means the supplied bytes/file are not a readable
// ZIP archive at all. This is fatal: no Package can be constructed.
type NotAContainerError struct {
	OpcError
}

func newNotAContainerError(err error) *NotAContainerError {
	return &NotAContainerError{OpcError{Err: err}}
}

// DirectoryTraversalError means an archive member name resolves outside
// the package root (e.g. via "../"). This is fatal for the same reason
// a malicious ZIP bomb would be: opening the package further is unsafe.
type DirectoryTraversalError struct {
	OpcError
	RawName string
}

func newDirectoryTraversalError(rawName string) *DirectoryTraversalError {
	return &DirectoryTraversalError{
		OpcError: OpcError{Err: fmt.Errorf("archive member %q escapes the package root", rawName)},
		RawName:  rawName,
	}
}

// MemberNotFoundError means a requested archive member (a part's blob,
// or a ".rels" file) does not exist.
type MemberNotFoundError struct {
	OpcError
}

func newMemberNotFoundError(partURI string) *MemberNotFoundError {
	return &MemberNotFoundError{OpcError{PartURI: partURI, Err: fmt.Errorf("archive member not found")}}
}

// MalformedXMLError wraps an etree parse failure against a specific
// part's XML, used for "[Content_Types].xml", ".rels" files, and part
// trees alike.
type MalformedXMLError struct {
	PartURI string
	Err     error
}

func (e *MalformedXMLError) Error() string {
	return fmt.Sprintf("opc: %s: malformed xml: %v", e.PartURI, e.Err)
}

func (e *MalformedXMLError) Unwrap() error { return e.Err }
