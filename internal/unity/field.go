// Package unity implements the binary substrate codecs the toolkit works
// on: serialized object containers, asset bundles and managed bytecode
// modules. The formats are deliberately minimal; the package exposes the
// field-tree and instruction-stream surface the rest of the toolkit is
// written against.
package unity

import (
	"fmt"
	"strconv"
	"strings"
)

// FieldKind is the declared type of one field-tree node.
type FieldKind uint8

const (
	// KindAbsent marks a field that is structurally absent because type
	// metadata was stripped from the build. An absent field must never
	// be treated as present-but-empty: writing through it would silently
	// corrupt the object.
	KindAbsent FieldKind = iota
	KindString
	KindInt
	KindFloat
	KindBool
	KindBytes
	KindPPtr
	KindObject
	KindArray
)

// Field is one node of a serialized object's dynamic field tree.
type Field struct {
	Name string
	Kind FieldKind

	Str   string
	Int   int64
	Float float64
	Bool  bool
	Bytes []byte

	// PPtr payload: a typed reference to another object. FileID zero
	// means the same container; a nonzero FileID indexes the container's
	// externals table. A zero PathID means "no reference", not object
	// zero.
	FileID int32
	PathID int64

	Children []*Field
}

// Present reports whether the field carries real data. Callers must
// branch on presence rather than assume a field exists.
func (f *Field) Present() bool {
	return f != nil && f.Kind != KindAbsent
}

// Child returns the named direct child field.
func (f *Field) Child(name string) (*Field, bool) {
	if f == nil {
		return nil, false
	}
	for _, c := range f.Children {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

// Resolve navigates the dotted path from this node to a descendant.
// Array elements are addressed by their decoded names ("data[i]").
func (f *Field) Resolve(path string) (*Field, bool) {
	node := f
	for _, part := range strings.Split(path, ".") {
		next, ok := node.Child(part)
		if !ok {
			return nil, false
		}
		node = next
	}
	return node, true
}

// StringValue returns the field's string payload. Absent and non-string
// fields report false.
func (f *Field) StringValue() (string, bool) {
	if !f.Present() || f.Kind != KindString {
		return "", false
	}
	return f.Str, true
}

// SetString overwrites a string leaf.
func (f *Field) SetString(value string) error {
	if !f.Present() {
		return fmt.Errorf("field %q is absent, refusing to write", f.fieldName())
	}
	if f.Kind != KindString {
		return fmt.Errorf("field %q is not a string leaf", f.Name)
	}
	f.Str = value
	return nil
}

// SetBytes overwrites a byte-blob leaf.
func (f *Field) SetBytes(value []byte) error {
	if !f.Present() {
		return fmt.Errorf("field %q is absent, refusing to write", f.fieldName())
	}
	if f.Kind != KindBytes {
		return fmt.Errorf("field %q is not a byte blob", f.Name)
	}
	f.Bytes = value
	return nil
}

func (f *Field) fieldName() string {
	if f == nil {
		return "<nil>"
	}
	return f.Name
}

// NewObjectField builds a struct node.
func NewObjectField(name string, children ...*Field) *Field {
	return &Field{Name: name, Kind: KindObject, Children: children}
}

// NewStringField builds a string leaf.
func NewStringField(name, value string) *Field {
	return &Field{Name: name, Kind: KindString, Str: value}
}

// NewIntField builds an integer leaf.
func NewIntField(name string, value int64) *Field {
	return &Field{Name: name, Kind: KindInt, Int: value}
}

// NewFloatField builds a float leaf.
func NewFloatField(name string, value float64) *Field {
	return &Field{Name: name, Kind: KindFloat, Float: value}
}

// NewBoolField builds a boolean leaf.
func NewBoolField(name string, value bool) *Field {
	return &Field{Name: name, Kind: KindBool, Bool: value}
}

// NewBytesField builds a byte-blob leaf.
func NewBytesField(name string, value []byte) *Field {
	return &Field{Name: name, Kind: KindBytes, Bytes: value}
}

// NewPPtrField builds an object-reference leaf.
func NewPPtrField(name string, fileID int32, pathID int64) *Field {
	return &Field{Name: name, Kind: KindPPtr, FileID: fileID, PathID: pathID}
}

// NewAbsentField builds a dummy node for a stripped field.
func NewAbsentField(name string) *Field {
	return &Field{Name: name, Kind: KindAbsent}
}

// NewArrayField builds an array node; elements are renamed to the
// canonical "data[i]" form so dotted paths stay name-addressable.
func NewArrayField(name string, elems ...*Field) *Field {
	arr := &Field{Name: name, Kind: KindArray}
	for i, e := range elems {
		e.Name = arrayElemName(i)
		arr.Children = append(arr.Children, e)
	}
	return arr
}

func arrayElemName(i int) string {
	return "data[" + strconv.Itoa(i) + "]"
}
