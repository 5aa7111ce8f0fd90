// Package model defines the data structures for text scanning and patching.
package model

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

// Path represents a file system path.
type Path string

// Substrate identifies which of the three binary substrates a piece of
// text was found in.
type Substrate string

const (
	// SubstrateBytecode represents literal string operands inside managed
	// method bodies.
	SubstrateBytecode Substrate = "il"
	// SubstrateObjectField represents string leaves inside a serialized
	// object's field tree.
	SubstrateObjectField Substrate = "obj"
	// SubstrateRawBlob represents opaque byte blobs decoded as UTF-8 text.
	SubstrateRawBlob Substrate = "blob"
)

// TextRecord is one discovered unit of translatable text.
//
// A record is scan-scoped: it is created by the locator, tagged by the
// classifier, round-tripped through an external editing tool keyed by ID,
// and finally consumed by the patch engine.
type TextRecord struct {
	// ID is a stable, reconstructible address derived from
	// (ContainerFile, Substrate, substrate address). Two scans of an
	// unmodified file produce identical IDs.
	ID string

	OriginalText   string
	TranslatedText string

	Substrate     Substrate
	ContainerFile Path

	// Bytecode address: fully-qualified declaring type, method name and
	// instruction byte offset.
	TypeName   string
	MethodName string
	Offset     uint32

	// Object address: numeric object id plus, for field records, the
	// dotted path from the root field to the string leaf.
	PathID    int64
	FieldPath string

	// Skip is advisory. The patch engine still accepts an edit to a
	// skipped record when the human overrides the classifier.
	Skip       bool
	SkipReason string
}

// Location returns a human-readable description of where the record lives
// inside its container, suitable for spreadsheet display.
func (r *TextRecord) Location() string {
	switch r.Substrate {
	case SubstrateBytecode:
		return fmt.Sprintf("%s::%s@%d", r.TypeName, r.MethodName, r.Offset)
	case SubstrateObjectField:
		return fmt.Sprintf("#%d.%s", r.PathID, r.FieldPath)
	case SubstrateRawBlob:
		return fmt.Sprintf("#%d", r.PathID)
	}
	return ""
}

// Edited reports whether the record carries a translation that differs
// from the original text.
func (r *TextRecord) Edited() bool {
	return r.TranslatedText != r.OriginalText
}

const idSeparator = "|"

// BytecodeRecordID builds the stable address of a literal string operand.
func BytecodeRecordID(file Path, typeName, method string, offset uint32) string {
	return strings.Join([]string{
		string(SubstrateBytecode),
		filepath.ToSlash(string(file)),
		fmt.Sprintf("%s::%s@%d", typeName, method, offset),
	}, idSeparator)
}

// ObjectFieldRecordID builds the stable address of a string leaf inside a
// serialized object's field tree.
func ObjectFieldRecordID(file Path, pathID int64, fieldPath string) string {
	return strings.Join([]string{
		string(SubstrateObjectField),
		filepath.ToSlash(string(file)),
		fmt.Sprintf("%d.%s", pathID, fieldPath),
	}, idSeparator)
}

// RawBlobRecordID builds the stable address of an opaque text blob object.
func RawBlobRecordID(file Path, pathID int64) string {
	return strings.Join([]string{
		string(SubstrateRawBlob),
		filepath.ToSlash(string(file)),
		strconv.FormatInt(pathID, 10),
	}, idSeparator)
}

// RecordID computes the ID for an already-populated record. It is a pure
// function of the record's address fields.
func RecordID(r *TextRecord) string {
	switch r.Substrate {
	case SubstrateBytecode:
		return BytecodeRecordID(r.ContainerFile, r.TypeName, r.MethodName, r.Offset)
	case SubstrateObjectField:
		return ObjectFieldRecordID(r.ContainerFile, r.PathID, r.FieldPath)
	case SubstrateRawBlob:
		return RawBlobRecordID(r.ContainerFile, r.PathID)
	}
	return ""
}

// ParseRecordID reconstructs the address fields encoded in an ID. The
// returned record carries only address information; text and skip state
// are not part of the ID.
func ParseRecordID(id string) (*TextRecord, error) {
	parts := strings.SplitN(id, idSeparator, 3)
	if len(parts) != 3 {
		return nil, fmt.Errorf("malformed record id %q", id)
	}

	rec := &TextRecord{
		ID:            id,
		Substrate:     Substrate(parts[0]),
		ContainerFile: Path(parts[1]),
	}
	addr := parts[2]

	switch rec.Substrate {
	case SubstrateBytecode:
		at := strings.LastIndex(addr, "@")
		sep := strings.LastIndex(addr, "::")
		if at < 0 || sep < 0 || sep > at {
			return nil, fmt.Errorf("malformed bytecode address %q", addr)
		}
		offset, err := strconv.ParseUint(addr[at+1:], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("malformed instruction offset in %q: %w", addr, err)
		}
		rec.TypeName = addr[:sep]
		rec.MethodName = addr[sep+2 : at]
		rec.Offset = uint32(offset)

	case SubstrateObjectField:
		dot := strings.Index(addr, ".")
		if dot < 0 {
			return nil, fmt.Errorf("malformed object field address %q", addr)
		}
		pathID, err := strconv.ParseInt(addr[:dot], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("malformed object id in %q: %w", addr, err)
		}
		rec.PathID = pathID
		rec.FieldPath = addr[dot+1:]

	case SubstrateRawBlob:
		pathID, err := strconv.ParseInt(addr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("malformed object id in %q: %w", addr, err)
		}
		rec.PathID = pathID

	default:
		return nil, fmt.Errorf("unknown substrate %q in record id", parts[0])
	}

	return rec, nil
}
