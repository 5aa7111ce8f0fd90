package unity

import (
	"fmt"
	"os"
)

// Object kinds understood by the toolkit. Containers may hold other kinds;
// they pass through scans and patches untouched.
const (
	KindMonoBehaviour = "MonoBehaviour"
	KindMonoScript    = "MonoScript"
	KindTextAsset     = "TextAsset"
	KindFont          = "Font"
	KindMaterial      = "Material"
	KindTexture2D     = "Texture2D"
)

// ContainerMagic identifies a serialized container file.
const ContainerMagic = "ULAS"

const containerVersion = 1

// Object is one independently addressable serialized object. Payload is
// the encoded field tree; it is replaced wholesale on edit because string
// length changes invalidate fixed offsets.
type Object struct {
	PathID  int64
	Kind    string
	Payload []byte
}

// SerializedFile is an open container: an ordered set of objects plus an
// externals table naming sibling container files that PPtr FileIDs
// resolve through.
type SerializedFile struct {
	Path      string
	Externals []string

	objects []*Object
	byID    map[int64]*Object
}

// NewSerializedFile creates an empty container bound to path.
func NewSerializedFile(path string) *SerializedFile {
	return &SerializedFile{Path: path, byID: make(map[int64]*Object)}
}

// OpenSerializedFile reads and parses a container from disk.
func OpenSerializedFile(path string) (*SerializedFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open container %s: %w", path, err)
	}
	f, err := ParseSerializedFile(data)
	if err != nil {
		return nil, fmt.Errorf("parse container %s: %w", path, err)
	}
	f.Path = path
	return f, nil
}

// ParseSerializedFile parses container bytes, e.g. a bundle entry.
func ParseSerializedFile(data []byte) (*SerializedFile, error) {
	r := newWireReader(data)
	if err := r.expectMagic(ContainerMagic); err != nil {
		return nil, err
	}
	version, err := r.uint32()
	if err != nil {
		return nil, fmt.Errorf("read version: %w", err)
	}
	if version != containerVersion {
		return nil, fmt.Errorf("unsupported container version %d", version)
	}

	f := NewSerializedFile("")

	extCount, err := r.uvarint()
	if err != nil {
		return nil, fmt.Errorf("read externals count: %w", err)
	}
	for i := uint64(0); i < extCount; i++ {
		name, err := r.string()
		if err != nil {
			return nil, fmt.Errorf("read external %d: %w", i, err)
		}
		f.Externals = append(f.Externals, name)
	}

	objCount, err := r.uvarint()
	if err != nil {
		return nil, fmt.Errorf("read object count: %w", err)
	}
	for i := uint64(0); i < objCount; i++ {
		pathID, err := r.varint()
		if err != nil {
			return nil, fmt.Errorf("read object %d id: %w", i, err)
		}
		kind, err := r.string()
		if err != nil {
			return nil, fmt.Errorf("read object %d kind: %w", i, err)
		}
		payload, err := r.bytes()
		if err != nil {
			return nil, fmt.Errorf("read object %d payload: %w", i, err)
		}
		if err := f.AddObject(&Object{PathID: pathID, Kind: kind, Payload: payload}); err != nil {
			return nil, err
		}
	}

	return f, nil
}

// Encode serializes the whole container back to bytes.
func (f *SerializedFile) Encode() []byte {
	var w wireWriter
	w.raw([]byte(ContainerMagic))
	w.uint32(containerVersion)
	w.uvarint(uint64(len(f.Externals)))
	for _, ext := range f.Externals {
		w.string(ext)
	}
	w.uvarint(uint64(len(f.objects)))
	for _, obj := range f.objects {
		w.varint(obj.PathID)
		w.string(obj.Kind)
		w.bytes(obj.Payload)
	}
	return w.data()
}

// Objects returns the objects in stored order.
func (f *SerializedFile) Objects() []*Object {
	return f.objects
}

// ObjectByID returns the object with the given numeric id.
func (f *SerializedFile) ObjectByID(pathID int64) (*Object, bool) {
	obj, ok := f.byID[pathID]
	return obj, ok
}

// AddObject appends an object; path ids must be unique within a file.
func (f *SerializedFile) AddObject(obj *Object) error {
	if _, dup := f.byID[obj.PathID]; dup {
		return fmt.Errorf("duplicate object id %d", obj.PathID)
	}
	f.objects = append(f.objects, obj)
	f.byID[obj.PathID] = obj
	return nil
}

// DecodeObject parses an object's payload into its field tree.
func DecodeObject(obj *Object) (*Field, error) {
	r := newWireReader(obj.Payload)
	root, err := decodeField(r)
	if err != nil {
		return nil, fmt.Errorf("decode object %d (%s): %w", obj.PathID, obj.Kind, err)
	}
	return root, nil
}

// EncodeObject re-encodes a field tree into a fresh payload. Edits go
// through the tree and back here; payloads are never patched in place.
func EncodeObject(root *Field) []byte {
	var w wireWriter
	encodeField(&w, root)
	return w.data()
}

func encodeField(w *wireWriter, f *Field) {
	w.byte(byte(f.Kind))
	w.string(f.Name)
	switch f.Kind {
	case KindAbsent:
		// Name only; a dummy node carries no payload.
	case KindString:
		w.string(f.Str)
	case KindInt:
		w.varint(f.Int)
	case KindFloat:
		w.float64(f.Float)
	case KindBool:
		if f.Bool {
			w.byte(1)
		} else {
			w.byte(0)
		}
	case KindBytes:
		w.bytes(f.Bytes)
	case KindPPtr:
		w.varint(int64(f.FileID))
		w.varint(f.PathID)
	case KindObject, KindArray:
		w.uvarint(uint64(len(f.Children)))
		for _, c := range f.Children {
			encodeField(w, c)
		}
	}
}

func decodeField(r *wireReader) (*Field, error) {
	kind, err := r.byte()
	if err != nil {
		return nil, err
	}
	name, err := r.string()
	if err != nil {
		return nil, err
	}

	f := &Field{Name: name, Kind: FieldKind(kind)}
	switch f.Kind {
	case KindAbsent:
	case KindString:
		if f.Str, err = r.string(); err != nil {
			return nil, err
		}
	case KindInt:
		if f.Int, err = r.varint(); err != nil {
			return nil, err
		}
	case KindFloat:
		if f.Float, err = r.float64(); err != nil {
			return nil, err
		}
	case KindBool:
		b, err := r.byte()
		if err != nil {
			return nil, err
		}
		f.Bool = b != 0
	case KindBytes:
		if f.Bytes, err = r.bytes(); err != nil {
			return nil, err
		}
	case KindPPtr:
		fileID, err := r.varint()
		if err != nil {
			return nil, err
		}
		f.FileID = int32(fileID)
		if f.PathID, err = r.varint(); err != nil {
			return nil, err
		}
	case KindObject, KindArray:
		count, err := r.uvarint()
		if err != nil {
			return nil, err
		}
		for i := uint64(0); i < count; i++ {
			child, err := decodeField(r)
			if err != nil {
				return nil, err
			}
			f.Children = append(f.Children, child)
		}
	default:
		return nil, fmt.Errorf("unknown field kind %d for %q", kind, name)
	}

	return f, nil
}
