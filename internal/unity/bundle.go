package unity

import (
	"fmt"
	"os"
)

// BundleMagic identifies a bundle file holding nested containers.
const BundleMagic = "ULBF"

const bundleVersion = 1

// BundleEntry is one named nested container inside a bundle.
type BundleEntry struct {
	Name string
	File *SerializedFile
}

// Bundle is an open bundle file.
type Bundle struct {
	Path    string
	Entries []*BundleEntry
}

// OpenBundle reads and parses a bundle from disk, parsing every nested
// container eagerly.
func OpenBundle(path string) (*Bundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open bundle %s: %w", path, err)
	}

	r := newWireReader(data)
	if err := r.expectMagic(BundleMagic); err != nil {
		return nil, fmt.Errorf("parse bundle %s: %w", path, err)
	}
	version, err := r.uint32()
	if err != nil {
		return nil, fmt.Errorf("parse bundle %s: %w", path, err)
	}
	if version != bundleVersion {
		return nil, fmt.Errorf("parse bundle %s: unsupported version %d", path, version)
	}

	count, err := r.uvarint()
	if err != nil {
		return nil, fmt.Errorf("parse bundle %s: %w", path, err)
	}

	b := &Bundle{Path: path}
	for i := uint64(0); i < count; i++ {
		name, err := r.string()
		if err != nil {
			return nil, fmt.Errorf("parse bundle %s entry %d: %w", path, i, err)
		}
		payload, err := r.bytes()
		if err != nil {
			return nil, fmt.Errorf("parse bundle %s entry %q: %w", path, name, err)
		}
		nested, err := ParseSerializedFile(payload)
		if err != nil {
			return nil, fmt.Errorf("parse bundle %s entry %q: %w", path, name, err)
		}
		nested.Path = NestedContainerPath(path, name)
		b.Entries = append(b.Entries, &BundleEntry{Name: name, File: nested})
	}

	return b, nil
}

// Entry returns the named nested container.
func (b *Bundle) Entry(name string) (*BundleEntry, bool) {
	for _, e := range b.Entries {
		if e.Name == name {
			return e, true
		}
	}
	return nil, false
}

// Encode serializes the bundle, re-encoding every nested container.
func (b *Bundle) Encode() []byte {
	var w wireWriter
	w.raw([]byte(BundleMagic))
	w.uint32(bundleVersion)
	w.uvarint(uint64(len(b.Entries)))
	for _, e := range b.Entries {
		w.string(e.Name)
		w.bytes(e.File.Encode())
	}
	return w.data()
}

// bundleSeparator splits a bundle path from a nested entry name in a
// container path. Entry names never contain it.
const bundleSeparator = "!"

// NestedContainerPath addresses a container inside a bundle file.
func NestedContainerPath(bundlePath, entryName string) string {
	return bundlePath + bundleSeparator + entryName
}

// SplitBundlePath splits a nested container path back into the bundle
// file path and entry name. ok is false for plain container paths.
func SplitBundlePath(path string) (bundlePath, entryName string, ok bool) {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == bundleSeparator[0] {
			return path[:i], path[i+1:], true
		}
	}
	return "", "", false
}
