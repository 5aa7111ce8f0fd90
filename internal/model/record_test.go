package model

import "testing"

func TestRecordID_Deterministic(t *testing.T) {
	rec := &TextRecord{
		Substrate:     SubstrateBytecode,
		ContainerFile: "Managed/Assembly-CSharp.dll",
		TypeName:      "Game.UI/Dialog",
		MethodName:    "Show",
		Offset:        12,
	}

	first := RecordID(rec)
	second := RecordID(rec)
	if first != second {
		t.Fatalf("RecordID not deterministic: %q vs %q", first, second)
	}
	if first == "" {
		t.Fatal("RecordID returned empty id")
	}
}

func TestRecordID_DistinctAcrossSubstrates(t *testing.T) {
	ids := []string{
		BytecodeRecordID("a.assets", "T", "M", 0),
		ObjectFieldRecordID("a.assets", 7, "m_Text"),
		ObjectFieldRecordID("a.assets", 7, "m_Name"),
		RawBlobRecordID("a.assets", 7),
		RawBlobRecordID("b.assets", 7),
	}
	seen := make(map[string]bool)
	for _, id := range ids {
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = true
	}
}

func TestParseRecordID_RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		rec  TextRecord
	}{
		{
			"bytecode literal",
			TextRecord{
				Substrate:     SubstrateBytecode,
				ContainerFile: "Managed/Game.dll",
				TypeName:      "Ns.Outer/Nested",
				MethodName:    "OnClick",
				Offset:        42,
			},
		},
		{
			"object field with nested path",
			TextRecord{
				Substrate:     SubstrateObjectField,
				ContainerFile: "sharedassets0.assets",
				PathID:        -9112,
				FieldPath:     "m_Dialog.m_Lines.data[3].m_Text",
			},
		},
		{
			"raw blob",
			TextRecord{
				Substrate:     SubstrateRawBlob,
				ContainerFile: "level1",
				PathID:        77,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id := RecordID(&tt.rec)
			parsed, err := ParseRecordID(id)
			if err != nil {
				t.Fatalf("ParseRecordID(%q) failed: %v", id, err)
			}

			if parsed.Substrate != tt.rec.Substrate {
				t.Errorf("substrate = %q, want %q", parsed.Substrate, tt.rec.Substrate)
			}
			if parsed.ContainerFile != tt.rec.ContainerFile {
				t.Errorf("container = %q, want %q", parsed.ContainerFile, tt.rec.ContainerFile)
			}
			if parsed.TypeName != tt.rec.TypeName || parsed.MethodName != tt.rec.MethodName || parsed.Offset != tt.rec.Offset {
				t.Errorf("bytecode address = %q::%q@%d, want %q::%q@%d",
					parsed.TypeName, parsed.MethodName, parsed.Offset,
					tt.rec.TypeName, tt.rec.MethodName, tt.rec.Offset)
			}
			if parsed.PathID != tt.rec.PathID || parsed.FieldPath != tt.rec.FieldPath {
				t.Errorf("object address = %d.%q, want %d.%q", parsed.PathID, parsed.FieldPath, tt.rec.PathID, tt.rec.FieldPath)
			}
		})
	}
}

func TestParseRecordID_Malformed(t *testing.T) {
	for _, id := range []string{
		"",
		"il|no-address",
		"il|f|Type.Method-no-offset",
		"obj|f|not-a-number.m_Text",
		"blob|f|not-a-number",
		"weird|f|addr",
	} {
		if _, err := ParseRecordID(id); err == nil {
			t.Errorf("ParseRecordID(%q) succeeded, want error", id)
		}
	}
}

func TestTextRecord_Edited(t *testing.T) {
	rec := TextRecord{OriginalText: "Attack", TranslatedText: "Attack"}
	if rec.Edited() {
		t.Error("untouched record reported edited")
	}
	rec.TranslatedText = "攻击"
	if !rec.Edited() {
		t.Error("edited record reported untouched")
	}
}
