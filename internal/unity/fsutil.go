package unity

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// FileKind is the result of sniffing a file's magic bytes.
type FileKind int

const (
	FileUnknown FileKind = iota
	FileContainer
	FileBundle
	FileModule
)

// SniffFile identifies a file by its magic bytes without parsing it.
func SniffFile(path string) (FileKind, error) {
	f, err := os.Open(path)
	if err != nil {
		return FileUnknown, err
	}
	defer f.Close()

	magic := make([]byte, 4)
	if _, err := io.ReadFull(f, magic); err != nil {
		// A file shorter than any magic is unknown; a real read failure
		// surfaces so callers can tell unreadable from unrecognized.
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return FileUnknown, nil
		}
		return FileUnknown, err
	}

	switch string(magic) {
	case ContainerMagic:
		return FileContainer, nil
	case BundleMagic:
		return FileBundle, nil
	case ModuleMagic:
		return FileModule, nil
	}
	return FileUnknown, nil
}

// writeFileAtomic writes data to a sibling temp file and renames it over
// path, so a failure mid-write never leaves the target half-rewritten.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}

// WriteFileAtomic is the exported entry used by the patch engine to
// persist whole containers and bundles.
func WriteFileAtomic(path string, data []byte) error {
	return writeFileAtomic(path, data)
}
