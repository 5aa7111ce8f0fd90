package domain

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	m "github.com/HanFengRuYue/UnityLocalizationToolkit/internal/model"
	"github.com/HanFengRuYue/UnityLocalizationToolkit/internal/unity"
)

// BackupSuffix is appended to a container path to form its backup path.
const BackupSuffix = ".bak"

// FailReasonComposite marks a composite replacement that the engine
// refuses to perform automatically, as opposed to an I/O failure.
const FailReasonComposite = "composite resource replacement requires regenerating atlas and material data"

// PatchResult summarizes one apply pass over a single container file.
type PatchResult struct {
	// Applied counts edits written into the in-memory representation.
	Applied int
	// Misses counts records whose address no longer resolved, or whose
	// target refused the write. A miss is not an error.
	Misses int
}

// Patcher applies edited records back into their containers. One Apply
// call covers one container file, never spanning files. All persistence
// is all-or-nothing per file: the rewritten container is buffered in
// memory and written once, after every in-memory edit succeeded.
type Patcher struct {
	session *Session
}

// NewPatcher constructs a patch engine over the given session.
func NewPatcher(session *Session) *Patcher {
	return &Patcher{session: session}
}

// Apply writes the edited records into containerFile and returns the
// result. Records whose translation already matches the stored content
// are no-ops, which makes a repeated apply report zero new changes.
func (p *Patcher) Apply(containerFile m.Path, records []m.TextRecord) (PatchResult, error) {
	if len(records) == 0 {
		return PatchResult{}, nil
	}
	for i := range records {
		if records[i].ContainerFile != containerFile {
			return PatchResult{}, fmt.Errorf("record %s does not belong to %s", records[i].ID, containerFile)
		}
	}

	if err := EnsureBackup(physicalPath(containerFile)); err != nil {
		return PatchResult{}, err
	}

	if records[0].Substrate == m.SubstrateBytecode {
		return p.applyModule(containerFile, records)
	}
	return p.applyContainer(containerFile, records)
}

// applyModule re-opens the module read-write, re-resolves every record
// address against the live instruction stream and persists only if at
// least one literal changed.
func (p *Patcher) applyModule(path m.Path, records []m.TextRecord) (PatchResult, error) {
	mod, err := unity.OpenModule(string(path))
	if err != nil {
		return PatchResult{}, err
	}

	var result PatchResult
	for i := range records {
		rec := &records[i]
		meth, ok := mod.FindMethod(rec.TypeName, rec.MethodName)
		if !ok {
			slog.Warn("stale record: method not found", "id", rec.ID)
			result.Misses++
			continue
		}
		in, ok := meth.InstructionAt(rec.Offset)
		if !ok || !in.IsLoadString() {
			// Module structure may have shifted between scan and apply.
			slog.Warn("stale record: no string load at offset", "id", rec.ID)
			result.Misses++
			continue
		}
		if in.Str == rec.TranslatedText {
			continue
		}
		in.Str = rec.TranslatedText
		result.Applied++
	}

	if result.Applied > 0 {
		if err := mod.Save(); err != nil {
			return PatchResult{}, err
		}
	}
	return result, nil
}

// applyContainer groups edits by target object so every touched object is
// decoded and re-encoded exactly once, then persists the whole container
// in a single atomic write.
func (p *Patcher) applyContainer(path m.Path, records []m.TextRecord) (PatchResult, error) {
	f, err := p.session.Container(string(path))
	if err != nil {
		return PatchResult{}, err
	}

	byObject := make(map[int64][]*m.TextRecord)
	var order []int64
	for i := range records {
		rec := &records[i]
		if _, seen := byObject[rec.PathID]; !seen {
			order = append(order, rec.PathID)
		}
		byObject[rec.PathID] = append(byObject[rec.PathID], rec)
	}

	var result PatchResult
	for _, pathID := range order {
		edits := byObject[pathID]
		obj, ok := f.ObjectByID(pathID)
		if !ok {
			slog.Warn("stale records: object not found", "file", path, "object", pathID)
			result.Misses += len(edits)
			continue
		}

		tree, err := unity.DecodeObject(obj)
		if err != nil {
			slog.Warn("skipping unreadable object during patch", "file", path, "object", pathID, "error", err)
			result.Misses += len(edits)
			continue
		}

		touched := 0
		for _, rec := range edits {
			switch applyEdit(tree, rec) {
			case editApplied:
				touched++
			case editMissed:
				result.Misses++
			}
		}
		if touched == 0 {
			continue
		}

		// String length changes invalidate fixed offsets, so the whole
		// object is re-encoded from its tree rather than patched in
		// place.
		obj.Payload = unity.EncodeObject(tree)
		result.Applied += touched
	}

	if result.Applied > 0 {
		if err := p.persist(f, path); err != nil {
			return PatchResult{}, err
		}
	}
	return result, nil
}

// editOutcome distinguishes a real change from an already-matching no-op
// and from a stale or refused address.
type editOutcome int

const (
	editApplied editOutcome = iota
	editNoop
	editMissed
)

// applyEdit navigates one record's address inside a decoded tree and
// overwrites the leaf.
func applyEdit(tree *unity.Field, rec *m.TextRecord) editOutcome {
	switch rec.Substrate {
	case m.SubstrateObjectField:
		leaf, ok := tree.Resolve(rec.FieldPath)
		if !ok {
			slog.Warn("stale record: field path not found", "id", rec.ID)
			return editMissed
		}
		if current, ok := leaf.StringValue(); ok && current == rec.TranslatedText {
			return editNoop
		}
		if err := leaf.SetString(rec.TranslatedText); err != nil {
			slog.Warn("refused field write", "id", rec.ID, "error", err)
			return editMissed
		}
		return editApplied

	case m.SubstrateRawBlob:
		leaf, ok := tree.Resolve("m_Script")
		if !ok {
			slog.Warn("stale record: blob field not found", "id", rec.ID)
			return editMissed
		}
		if leaf.Present() && leaf.Kind == unity.KindBytes && string(leaf.Bytes) == rec.TranslatedText {
			return editNoop
		}
		if err := leaf.SetBytes([]byte(rec.TranslatedText)); err != nil {
			slog.Warn("refused blob write", "id", rec.ID, "error", err)
			return editMissed
		}
		return editApplied
	}
	return editMissed
}

// ApplyFontReplacement writes new font data into a simple resource's
// anchor object. Composite resources are refused: regenerating the
// derived atlas and material data is out of scope, and the record is
// marked failed with a reason distinct from an I/O failure.
func (p *Patcher) ApplyFontReplacement(res *m.ResourceRecord, fontData []byte) error {
	if res.Kind == m.KindComposite {
		res.Status = m.StatusFailed
		res.FailReason = FailReasonComposite
		return nil
	}

	if err := EnsureBackup(physicalPath(res.ContainerFile)); err != nil {
		res.Status = m.StatusFailed
		res.FailReason = err.Error()
		return err
	}

	f, err := p.session.Container(string(res.ContainerFile))
	if err != nil {
		res.Status = m.StatusFailed
		res.FailReason = err.Error()
		return err
	}
	obj, ok := f.ObjectByID(res.PrimaryObjectID)
	if !ok {
		err := fmt.Errorf("font object %d not found in %s", res.PrimaryObjectID, res.ContainerFile)
		res.Status = m.StatusFailed
		res.FailReason = err.Error()
		return err
	}

	tree, err := unity.DecodeObject(obj)
	if err != nil {
		res.Status = m.StatusFailed
		res.FailReason = err.Error()
		return err
	}
	data, ok := tree.Resolve("m_FontData")
	if !ok {
		err := fmt.Errorf("font object %d has no data field", res.PrimaryObjectID)
		res.Status = m.StatusFailed
		res.FailReason = err.Error()
		return err
	}
	if err := data.SetBytes(fontData); err != nil {
		res.Status = m.StatusFailed
		res.FailReason = err.Error()
		return err
	}

	obj.Payload = unity.EncodeObject(tree)
	if err := p.persist(f, res.ContainerFile); err != nil {
		res.Status = m.StatusFailed
		res.FailReason = err.Error()
		return err
	}

	res.Status = m.StatusApplied
	return nil
}

// persist writes a rewritten container to disk in one atomic replace.
// Containers nested in a bundle re-encode the whole bundle.
func (p *Patcher) persist(f *unity.SerializedFile, path m.Path) error {
	defer p.session.Invalidate(string(path))

	bundlePath, entryName, nested := unity.SplitBundlePath(string(path))
	if !nested {
		return unity.WriteFileAtomic(string(path), f.Encode())
	}

	bundle, err := p.session.Bundle(bundlePath)
	if err != nil {
		return err
	}
	entry, ok := bundle.Entry(entryName)
	if !ok {
		return fmt.Errorf("bundle %s has no entry %q", bundlePath, entryName)
	}
	entry.File = f
	return unity.WriteFileAtomic(bundlePath, bundle.Encode())
}

// physicalPath maps a (possibly bundle-nested) container path to the file
// that actually lives on disk, which is what gets backed up.
func physicalPath(path m.Path) string {
	if bundlePath, _, nested := unity.SplitBundlePath(string(path)); nested {
		return bundlePath
	}
	return string(path)
}

// EnsureBackup creates a byte-for-byte backup of path if one does not
// already exist. An existing backup is never overwritten, so repeated
// runs keep the original pre-edit bytes.
func EnsureBackup(path string) error {
	backupPath := path + BackupSuffix
	if _, err := os.Stat(backupPath); err == nil {
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("stat backup %s: %w", backupPath, err)
	}

	src, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s for backup: %w", path, err)
	}
	defer src.Close()

	dst, err := os.Create(backupPath)
	if err != nil {
		return fmt.Errorf("create backup %s: %w", backupPath, err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(backupPath)
		return fmt.Errorf("write backup %s: %w", backupPath, err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(backupPath)
		return fmt.Errorf("close backup %s: %w", backupPath, err)
	}
	return nil
}
