package domain

import (
	"os"
	"path/filepath"
	"testing"

	m "github.com/HanFengRuYue/UnityLocalizationToolkit/internal/model"
	"github.com/HanFengRuYue/UnityLocalizationToolkit/internal/unity"
)

// Test fixtures: a small game project with one managed module, one
// container and one bundle, covering all three substrates.

func testScanConfig() *m.ScanConfiguration {
	return m.NewScanConfiguration(m.ScanOptions{
		ScanBytecode:        true,
		ScanObjectFields:    true,
		ScanRawBlobs:        true,
		MinLength:           2,
		SourceLanguage:      m.LanguageAny,
		UseReservedKeywords: true,
	})
}

func newTestSession(t *testing.T) *Session {
	t.Helper()
	session, err := NewSession(DefaultSessionCacheSize)
	if err != nil {
		t.Fatal(err)
	}
	return session
}

func writeTestModule(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "Assembly-CSharp.dll")

	mod := unity.NewModule(path, "Assembly-CSharp")
	combat := mod.AddType("Game.Combat")
	choose := combat.AddMethod("ChooseAction")
	choose.EmitLdstr("Attack")
	choose.EmitLdstr("Defend")
	choose.Emit(unity.OpRet)

	if err := mod.Save(); err != nil {
		t.Fatal(err)
	}
	return path
}

func dialogObject() *unity.Object {
	return &unity.Object{PathID: 1, Kind: unity.KindMonoBehaviour, Payload: unity.EncodeObject(
		unity.NewObjectField("Base",
			unity.NewStringField("m_Name", "IntroDialog"),
			unity.NewObjectField("m_Dialog",
				unity.NewStringField("m_Title", "ようこそ"),
				unity.NewArrayField("m_Lines",
					unity.NewStringField("", "最初の行"),
					unity.NewStringField("", "二番目の行"),
				),
			),
			unity.NewAbsentField("m_StrippedText"),
			unity.NewIntField("m_Priority", 1),
		),
	)}
}

func creditsObject() *unity.Object {
	return &unity.Object{PathID: 10, Kind: unity.KindTextAsset, Payload: unity.EncodeObject(
		unity.NewObjectField("Base",
			unity.NewStringField("m_Name", "credits"),
			unity.NewBytesField("m_Script", []byte("スタッフロール")),
		),
	)}
}

func emptyBlobObject() *unity.Object {
	return &unity.Object{PathID: 11, Kind: unity.KindTextAsset, Payload: unity.EncodeObject(
		unity.NewObjectField("Base",
			unity.NewStringField("m_Name", "empty"),
			unity.NewBytesField("m_Script", []byte("")),
		),
	)}
}

func binaryBlobObject() *unity.Object {
	return &unity.Object{PathID: 12, Kind: unity.KindTextAsset, Payload: unity.EncodeObject(
		unity.NewObjectField("Base",
			unity.NewStringField("m_Name", "binary"),
			unity.NewBytesField("m_Script", []byte{0xff, 0xfe, 0x00, 0x01}),
		),
	)}
}

func writeTestContainer(t *testing.T, dir string, objects ...*unity.Object) string {
	t.Helper()
	path := filepath.Join(dir, "sharedassets0.assets")
	writeContainerAt(t, path, objects...)
	return path
}

func writeContainerAt(t *testing.T, path string, objects ...*unity.Object) {
	t.Helper()
	f := unity.NewSerializedFile(path)
	for _, obj := range objects {
		if err := f.AddObject(obj); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(path, f.Encode(), 0o644); err != nil {
		t.Fatal(err)
	}
}

func writeTestBundle(t *testing.T, dir string, objects ...*unity.Object) string {
	t.Helper()
	path := filepath.Join(dir, "ui.bundle")

	inner := unity.NewSerializedFile("")
	for _, obj := range objects {
		if err := inner.AddObject(obj); err != nil {
			t.Fatal(err)
		}
	}
	bundle := &unity.Bundle{Path: path, Entries: []*unity.BundleEntry{{Name: "CAB-ui", File: inner}}}
	if err := os.WriteFile(path, bundle.Encode(), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func recordByID(records []m.TextRecord, id string) (*m.TextRecord, bool) {
	for i := range records {
		if records[i].ID == id {
			return &records[i], true
		}
	}
	return nil, false
}
