package domain

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HanFengRuYue/UnityLocalizationToolkit/internal/classify"
	m "github.com/HanFengRuYue/UnityLocalizationToolkit/internal/model"
)

func TestLocateModule(t *testing.T) {
	dir := t.TempDir()
	path := m.Path(writeTestModule(t, dir))

	locator := NewLocator(newTestSession(t), testScanConfig())
	out := &Collector{}
	require.NoError(t, locator.LocateModule(path, out))

	records := out.Records()
	require.Len(t, records, 2)

	assert.Equal(t, "Attack", records[0].OriginalText)
	assert.Equal(t, "Game.Combat", records[0].TypeName)
	assert.Equal(t, "ChooseAction", records[0].MethodName)
	assert.Equal(t, uint32(0), records[0].Offset)

	assert.Equal(t, "Defend", records[1].OriginalText)
	assert.Equal(t, uint32(6), records[1].Offset)
}

func TestLocateContainerObjectFields(t *testing.T) {
	dir := t.TempDir()
	path := m.Path(writeTestContainer(t, dir, dialogObject()))

	session := newTestSession(t)
	locator := NewLocator(session, testScanConfig())
	out := &Collector{}
	require.NoError(t, locator.LocateContainer(path, out))

	records := out.Records()

	title, ok := recordByID(records, m.ObjectFieldRecordID(path, 1, "m_Dialog.m_Title"))
	require.True(t, ok)
	assert.Equal(t, "ようこそ", title.OriginalText)
	assert.False(t, title.Skip)

	line, ok := recordByID(records, m.ObjectFieldRecordID(path, 1, "m_Dialog.m_Lines.data[1]"))
	require.True(t, ok)
	assert.Equal(t, "二番目の行", line.OriginalText)

	// The name field is surfaced but flagged by the classifier.
	name, ok := recordByID(records, m.ObjectFieldRecordID(path, 1, "m_Name"))
	require.True(t, ok)
	assert.True(t, name.Skip)
	assert.Equal(t, classify.ReasonBareIdentifier, name.SkipReason)

	// Stripped fields never surface, not even as empty strings.
	for _, rec := range records {
		assert.NotContains(t, rec.FieldPath, "m_StrippedText")
	}
}

func TestLocateContainerRawBlobs(t *testing.T) {
	dir := t.TempDir()
	path := m.Path(writeTestContainer(t, dir, creditsObject(), emptyBlobObject(), binaryBlobObject()))

	locator := NewLocator(newTestSession(t), testScanConfig())
	out := &Collector{}
	require.NoError(t, locator.LocateContainer(path, out))

	records := out.Records()
	require.Len(t, records, 1, "empty and non-UTF-8 blobs yield no records")
	assert.Equal(t, m.RawBlobRecordID(path, 10), records[0].ID)
	assert.Equal(t, "スタッフロール", records[0].OriginalText)
	assert.False(t, records[0].Skip)
}

func TestLocateSubstrateToggles(t *testing.T) {
	dir := t.TempDir()
	path := m.Path(writeTestContainer(t, dir, dialogObject(), creditsObject()))

	cfg := m.NewScanConfiguration(m.ScanOptions{
		ScanObjectFields: true,
		MinLength:        2,
		SourceLanguage:   m.LanguageAny,
	})
	locator := NewLocator(newTestSession(t), cfg)
	out := &Collector{}
	require.NoError(t, locator.LocateContainer(path, out))

	for _, rec := range out.Records() {
		assert.Equal(t, m.SubstrateObjectField, rec.Substrate)
	}
}

func TestScanAddressingStability(t *testing.T) {
	dir := t.TempDir()
	modPath := m.Path(writeTestModule(t, dir))
	conPath := m.Path(writeTestContainer(t, dir, dialogObject(), creditsObject()))

	scanIDs := func() []string {
		locator := NewLocator(newTestSession(t), testScanConfig())
		out := &Collector{}
		require.NoError(t, locator.LocateModule(modPath, out))
		require.NoError(t, locator.LocateContainer(conPath, out))

		var ids []string
		for _, rec := range out.Records() {
			ids = append(ids, rec.ID)
		}
		sort.Strings(ids)
		return ids
	}

	first := scanIDs()
	second := scanIDs()
	require.NotEmpty(t, first)
	assert.Equal(t, first, second)
}
