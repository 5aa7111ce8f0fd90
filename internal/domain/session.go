// Package domain implements the text locator, resource detector, patch
// engine and the scan/patch orchestrator.
package domain

import (
	"fmt"
	"path/filepath"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/HanFengRuYue/UnityLocalizationToolkit/internal/unity"
)

// DefaultSessionCacheSize bounds how many parsed containers a session
// keeps in memory at once.
const DefaultSessionCacheSize = 32

// Session owns the parser state for one scan-or-patch operation. It is
// explicitly constructed by the caller and passed into the locator and
// patch engine; nothing in the toolkit shares parser instances across
// operations. Concurrent use of one session across two operations on the
// same project is not supported.
type Session struct {
	containers *lru.Cache[string, *unity.SerializedFile]
	bundles    *lru.Cache[string, *unity.Bundle]
}

// NewSession constructs a session with the given container cache size.
func NewSession(cacheSize int) (*Session, error) {
	if cacheSize < 1 {
		cacheSize = DefaultSessionCacheSize
	}
	containers, err := lru.New[string, *unity.SerializedFile](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("create container cache: %w", err)
	}
	bundles, err := lru.New[string, *unity.Bundle](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("create bundle cache: %w", err)
	}
	return &Session{containers: containers, bundles: bundles}, nil
}

// Container opens a container through the session cache. Nested bundle
// paths ("bundle!entry") resolve through the owning bundle.
func (s *Session) Container(path string) (*unity.SerializedFile, error) {
	if f, ok := s.containers.Get(path); ok {
		return f, nil
	}

	if bundlePath, entryName, nested := unity.SplitBundlePath(path); nested {
		bundle, err := s.Bundle(bundlePath)
		if err != nil {
			return nil, err
		}
		entry, ok := bundle.Entry(entryName)
		if !ok {
			return nil, fmt.Errorf("bundle %s has no entry %q", bundlePath, entryName)
		}
		s.containers.Add(path, entry.File)
		return entry.File, nil
	}

	f, err := unity.OpenSerializedFile(path)
	if err != nil {
		return nil, err
	}
	s.containers.Add(path, f)
	return f, nil
}

// Bundle opens a bundle through the session cache.
func (s *Session) Bundle(path string) (*unity.Bundle, error) {
	if b, ok := s.bundles.Get(path); ok {
		return b, nil
	}
	b, err := unity.OpenBundle(path)
	if err != nil {
		return nil, err
	}
	s.bundles.Add(path, b)
	return b, nil
}

// Invalidate drops cached state for a path after it has been rewritten
// on disk, so the next open re-reads the new bytes.
func (s *Session) Invalidate(path string) {
	s.containers.Remove(path)
	if bundlePath, _, nested := unity.SplitBundlePath(path); nested {
		s.bundles.Remove(bundlePath)
		return
	}
	s.bundles.Remove(path)
	// A rewritten bundle invalidates every nested container it holds.
	for _, key := range s.containers.Keys() {
		if bundlePath, _, nested := unity.SplitBundlePath(key); nested && bundlePath == path {
			s.containers.Remove(key)
		}
	}
}

// ResolveScriptClass resolves a script reference to its class name,
// following at most one level of external-file indirection. A zero
// PathID means no reference.
func (s *Session) ResolveScriptClass(f *unity.SerializedFile, fileID int32, pathID int64) (string, bool) {
	if pathID == 0 {
		return "", false
	}

	target := f
	if fileID != 0 {
		idx := int(fileID) - 1
		if idx < 0 || idx >= len(f.Externals) {
			return "", false
		}
		extPath := f.Externals[idx]
		if !filepath.IsAbs(extPath) {
			extPath = filepath.Join(filepath.Dir(f.Path), extPath)
		}
		ext, err := s.Container(extPath)
		if err != nil {
			return "", false
		}
		target = ext
	}

	obj, ok := target.ObjectByID(pathID)
	if !ok || obj.Kind != unity.KindMonoScript {
		return "", false
	}
	tree, err := unity.DecodeObject(obj)
	if err != nil {
		return "", false
	}
	class, ok := tree.Resolve("m_ClassName")
	if !ok {
		return "", false
	}
	name, ok := class.StringValue()
	if !ok || name == "" {
		return "", false
	}
	return name, true
}
