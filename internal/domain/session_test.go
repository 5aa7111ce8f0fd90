package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HanFengRuYue/UnityLocalizationToolkit/internal/unity"
)

func TestSessionContainerCaching(t *testing.T) {
	dir := t.TempDir()
	path := writeTestContainer(t, dir, dialogObject())

	session := newTestSession(t)
	first, err := session.Container(path)
	require.NoError(t, err)
	second, err := session.Container(path)
	require.NoError(t, err)
	assert.Same(t, first, second, "repeated opens hit the cache")

	session.Invalidate(path)
	third, err := session.Container(path)
	require.NoError(t, err)
	assert.NotSame(t, first, third, "invalidation forces a re-read")
}

func TestSessionInvalidateBundleDropsNested(t *testing.T) {
	dir := t.TempDir()
	bundlePath := writeTestBundle(t, dir, dialogObject())
	nested := unity.NestedContainerPath(bundlePath, "CAB-ui")

	session := newTestSession(t)
	first, err := session.Container(nested)
	require.NoError(t, err)

	session.Invalidate(bundlePath)

	second, err := session.Container(nested)
	require.NoError(t, err)
	assert.NotSame(t, first, second)
}

func TestResolveScriptClass(t *testing.T) {
	dir := t.TempDir()
	path := writeTestContainer(t, dir,
		fontScriptObject(2, "TMP_FontAsset"),
		dialogObject(),
	)

	session := newTestSession(t)
	f, err := session.Container(path)
	require.NoError(t, err)

	name, ok := session.ResolveScriptClass(f, 0, 2)
	require.True(t, ok)
	assert.Equal(t, "TMP_FontAsset", name)

	// Zero PathID means no reference, never object zero.
	_, ok = session.ResolveScriptClass(f, 0, 0)
	assert.False(t, ok)

	// A FileID with no matching externals entry resolves to nothing.
	_, ok = session.ResolveScriptClass(f, 7, 2)
	assert.False(t, ok)

	// Non-script targets are not class descriptors.
	_, ok = session.ResolveScriptClass(f, 0, 1)
	assert.False(t, ok)
}
