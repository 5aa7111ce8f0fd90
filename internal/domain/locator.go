package domain

import (
	"fmt"
	"log/slog"
	"sync"
	"unicode/utf8"

	"github.com/HanFengRuYue/UnityLocalizationToolkit/internal/classify"
	m "github.com/HanFengRuYue/UnityLocalizationToolkit/internal/model"
	"github.com/HanFengRuYue/UnityLocalizationToolkit/internal/unity"
)

// Collector is the shared output sink for located records. Emission is
// mutually exclusive so concurrent locators never interleave writes.
type Collector struct {
	mu      sync.Mutex
	records []m.TextRecord
}

// Add appends one record under the collector lock.
func (c *Collector) Add(rec m.TextRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = append(c.records, rec)
}

// Records returns the collected records in emission order.
func (c *Collector) Records() []m.TextRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.records
}

// Locator walks the three substrates of a file set and emits addressable
// text records. Each scan constructs a fresh locator over a fresh
// session, so a restarted scan re-opens every container.
type Locator struct {
	session *Session
	cfg     *m.ScanConfiguration
}

// NewLocator constructs a locator bound to one session and scan policy.
func NewLocator(session *Session, cfg *m.ScanConfiguration) *Locator {
	return &Locator{session: session, cfg: cfg}
}

// LocateModule scans every method body of every type, including nested
// types, for literal string loads.
func (l *Locator) LocateModule(path m.Path, out *Collector) error {
	if !l.cfg.ScanBytecode {
		return nil
	}

	mod, err := unity.OpenModule(string(path))
	if err != nil {
		return err
	}

	mod.WalkTypes(func(fullName string, t *unity.TypeDef) {
		for _, meth := range t.Methods {
			for _, in := range meth.Body {
				if !in.IsLoadString() {
					continue
				}
				rec := m.TextRecord{
					Substrate:      m.SubstrateBytecode,
					ContainerFile:  path,
					TypeName:       fullName,
					MethodName:     meth.Name,
					Offset:         in.Offset,
					OriginalText:   in.Str,
					TranslatedText: in.Str,
				}
				rec.ID = m.RecordID(&rec)
				l.tag(&rec)
				out.Add(rec)
			}
		}
	})

	return nil
}

// LocateContainer scans one container's objects: string-bearing field
// trees and opaque text blobs. A corrupt object is logged and skipped;
// it never aborts the rest of the walk.
func (l *Locator) LocateContainer(path m.Path, out *Collector) error {
	f, err := l.session.Container(string(path))
	if err != nil {
		return err
	}

	for _, obj := range f.Objects() {
		switch obj.Kind {
		case unity.KindMonoBehaviour:
			if !l.cfg.ScanObjectFields {
				continue
			}
			if err := l.locateObjectFields(path, obj, out); err != nil {
				slog.Warn("skipping unreadable object", "file", path, "object", obj.PathID, "error", err)
			}
		case unity.KindTextAsset:
			if !l.cfg.ScanRawBlobs {
				continue
			}
			if err := l.locateRawBlob(path, obj, out); err != nil {
				slog.Warn("skipping unreadable text asset", "file", path, "object", obj.PathID, "error", err)
			}
		}
	}

	return nil
}

// locateObjectFields walks one object's field tree and emits a record per
// string leaf. Structurally absent fields are skipped entirely: writing
// to a stripped field would silently fail or corrupt data, so they must
// never surface as present-but-empty.
func (l *Locator) locateObjectFields(path m.Path, obj *unity.Object, out *Collector) error {
	tree, err := unity.DecodeObject(obj)
	if err != nil {
		return err
	}

	var walk func(prefix string, f *unity.Field)
	walk = func(prefix string, f *unity.Field) {
		if !f.Present() {
			return
		}

		fieldPath := f.Name
		if prefix != "" {
			fieldPath = prefix + "." + f.Name
		}

		if f.Kind == unity.KindString {
			rec := m.TextRecord{
				Substrate:      m.SubstrateObjectField,
				ContainerFile:  path,
				PathID:         obj.PathID,
				FieldPath:      fieldPath,
				OriginalText:   f.Str,
				TranslatedText: f.Str,
			}
			rec.ID = m.RecordID(&rec)
			l.tag(&rec)
			out.Add(rec)
			return
		}

		for _, child := range f.Children {
			walk(fieldPath, child)
		}
	}

	for _, child := range tree.Children {
		walk("", child)
	}

	return nil
}

// locateRawBlob decodes a text asset's script bytes as UTF-8 and emits a
// single record per object. Unlike the tagged substrates, blob emission
// is gated on classification: undecodable or rejected blobs yield no
// record at all.
func (l *Locator) locateRawBlob(path m.Path, obj *unity.Object, out *Collector) error {
	tree, err := unity.DecodeObject(obj)
	if err != nil {
		return err
	}
	script, ok := tree.Resolve("m_Script")
	if !ok || !script.Present() {
		return nil
	}
	if script.Kind != unity.KindBytes {
		return fmt.Errorf("text asset %d has non-blob m_Script", obj.PathID)
	}

	if !utf8.Valid(script.Bytes) {
		return nil
	}
	text := string(script.Bytes)

	verdict := classify.Classify(text, l.cfg.SourceLanguage, l.cfg)
	if !verdict.Keep {
		return nil
	}

	rec := m.TextRecord{
		Substrate:      m.SubstrateRawBlob,
		ContainerFile:  path,
		PathID:         obj.PathID,
		OriginalText:   text,
		TranslatedText: text,
	}
	rec.ID = m.RecordID(&rec)
	out.Add(rec)
	return nil
}

// tag applies the advisory classification to a record.
func (l *Locator) tag(rec *m.TextRecord) {
	verdict := classify.Classify(rec.OriginalText, l.cfg.SourceLanguage, l.cfg)
	if !verdict.Keep {
		rec.Skip = true
		rec.SkipReason = verdict.Reason
	}
}
