package adapter

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "github.com/HanFengRuYue/UnityLocalizationToolkit/internal/model"
)

func TestRecordStoreRoundTrip(t *testing.T) {
	records := sheetTestRecords()
	records[0].TranslatedText = "防御"
	resources := []m.ResourceRecord{
		{
			Name:             "NotoSans SDF",
			ContainerFile:    "game/sharedassets0.assets",
			PrimaryObjectID:  21,
			Kind:             m.KindComposite,
			RelatedObjectIDs: []int64{30, 31},
			Status:           m.StatusPending,
		},
	}

	path := m.Path(filepath.Join(t.TempDir(), "scan.yaml"))
	store := NewRecordStore()
	require.NoError(t, store.SaveScan(path, records, resources))

	loaded, loadedResources, err := store.LoadScan(path)
	require.NoError(t, err)
	require.Len(t, loaded, len(records))

	for i := range records {
		want := &records[i]
		got := &loaded[i]
		assert.Equal(t, want.ID, got.ID)
		assert.Equal(t, want.OriginalText, got.OriginalText)
		assert.Equal(t, want.TranslatedText, got.TranslatedText)
		assert.Equal(t, want.Skip, got.Skip)
		assert.Equal(t, want.SkipReason, got.SkipReason)

		// Addresses are re-derived from the ID, not stored.
		assert.Equal(t, want.Substrate, got.Substrate)
		assert.Equal(t, want.ContainerFile, got.ContainerFile)
		assert.Equal(t, want.TypeName, got.TypeName)
		assert.Equal(t, want.MethodName, got.MethodName)
		assert.Equal(t, want.Offset, got.Offset)
		assert.Equal(t, want.PathID, got.PathID)
		assert.Equal(t, want.FieldPath, got.FieldPath)
	}

	assert.Equal(t, resources, loadedResources)
}

func TestRecordStoreRejectsCorruptSnapshot(t *testing.T) {
	dir := t.TempDir()

	garbage := filepath.Join(dir, "garbage.yaml")
	require.NoError(t, os.WriteFile(garbage, []byte("{not yaml"), 0o644))
	_, _, err := NewRecordStore().LoadScan(m.Path(garbage))
	require.Error(t, err)

	wrongVersion := filepath.Join(dir, "version.yaml")
	require.NoError(t, os.WriteFile(wrongVersion, []byte("version: 99\nrecords: []\n"), 0o644))
	_, _, err = NewRecordStore().LoadScan(m.Path(wrongVersion))
	require.Error(t, err)
}

func TestRecordStoreMissingFile(t *testing.T) {
	_, _, err := NewRecordStore().LoadScan(m.Path(filepath.Join(t.TempDir(), "missing.yaml")))
	require.Error(t, err)
}
