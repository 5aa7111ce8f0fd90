package unity

import (
	"os"
	"path/filepath"
	"testing"
)

func TestBundle_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ui.bundle")

	inner := NewSerializedFile("")
	mustAdd(t, inner, &Object{PathID: 5, Kind: KindTextAsset, Payload: EncodeObject(
		NewObjectField("Base",
			NewStringField("m_Name", "credits"),
			NewBytesField("m_Script", []byte("Thanks for playing")),
		),
	)})

	bundle := &Bundle{Path: path, Entries: []*BundleEntry{{Name: "CAB-ui", File: inner}}}
	if err := os.WriteFile(path, bundle.Encode(), 0o644); err != nil {
		t.Fatalf("write bundle: %v", err)
	}

	reopened, err := OpenBundle(path)
	if err != nil {
		t.Fatalf("OpenBundle failed: %v", err)
	}
	entry, ok := reopened.Entry("CAB-ui")
	if !ok {
		t.Fatal("entry CAB-ui missing")
	}
	if entry.File.Path != NestedContainerPath(path, "CAB-ui") {
		t.Errorf("nested path = %q", entry.File.Path)
	}
	if _, ok := entry.File.ObjectByID(5); !ok {
		t.Error("nested object missing after round trip")
	}
}

func TestSplitBundlePath(t *testing.T) {
	bundlePath, entry, ok := SplitBundlePath("dir/ui.bundle!CAB-ui")
	if !ok || bundlePath != "dir/ui.bundle" || entry != "CAB-ui" {
		t.Errorf("SplitBundlePath = %q, %q, %v", bundlePath, entry, ok)
	}

	if _, _, ok := SplitBundlePath("dir/plain.assets"); ok {
		t.Error("plain path split as bundle path")
	}
}

func TestSniffFile(t *testing.T) {
	dir := t.TempDir()

	containerPath := filepath.Join(dir, "level0")
	if err := os.WriteFile(containerPath, NewSerializedFile("").Encode(), 0o644); err != nil {
		t.Fatal(err)
	}
	modulePath := filepath.Join(dir, "Assembly-CSharp.dll")
	if err := os.WriteFile(modulePath, NewModule(modulePath, "m").Encode(), 0o644); err != nil {
		t.Fatal(err)
	}
	junkPath := filepath.Join(dir, "junk.bin")
	if err := os.WriteFile(junkPath, []byte("garbage here"), 0o644); err != nil {
		t.Fatal(err)
	}

	if kind, _ := SniffFile(containerPath); kind != FileContainer {
		t.Errorf("container sniffed as %v", kind)
	}
	if kind, _ := SniffFile(modulePath); kind != FileModule {
		t.Errorf("module sniffed as %v", kind)
	}
	if kind, _ := SniffFile(junkPath); kind != FileUnknown {
		t.Errorf("junk sniffed as %v", kind)
	}
}

func TestSniffFile_ShortAndMissing(t *testing.T) {
	dir := t.TempDir()

	// Files shorter than any magic are unknown, not errors.
	for name, data := range map[string][]byte{
		"empty.bin": {},
		"short.bin": []byte("UL"),
	} {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			t.Fatal(err)
		}
		kind, err := SniffFile(path)
		if err != nil {
			t.Errorf("%s: unexpected error %v", name, err)
		}
		if kind != FileUnknown {
			t.Errorf("%s sniffed as %v", name, kind)
		}
	}

	if _, err := SniffFile(filepath.Join(dir, "missing.bin")); err == nil {
		t.Error("missing file sniffed without error")
	}
}
