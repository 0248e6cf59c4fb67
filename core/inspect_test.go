package core

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/Astrarre/FebbGradle/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInspectArchive(t *testing.T) {
	dir := t.TempDir()
	archivePath := fooBarJar(t, dir)
	m := schema.AbstractionManifest{"com/example/Foo": {APIClassName: "com/example/IFoo", NewSignature: fooSig}}

	_, err := ProcessArchive(context.Background(), archivePath, m, nil)
	require.NoError(t, err)

	classes, err := InspectArchive(context.Background(), archivePath, m, "")
	require.NoError(t, err)
	require.Len(t, classes, 2)

	// sorted by class name
	assert.Equal(t, "com/example/Bar", classes[0].ClassName)
	assert.False(t, classes[0].InManifest)
	assert.Empty(t, classes[0].Signature)
	assert.Empty(t, classes[0].Interfaces)

	foo := classes[1]
	assert.Equal(t, "com/example/Foo.class", foo.EntryName)
	assert.True(t, foo.InManifest)
	assert.Equal(t, []string{"com/example/IFoo"}, foo.Interfaces)
	assert.Equal(t, fooSig, foo.Signature)
	assert.Equal(t, "java/lang/Object", foo.SuperName)
	assert.Equal(t, uint16(52), foo.MajorVersion)
	assert.Equal(t, 8, foo.JavaVersion)
}

func TestInspectArchiveSingleClass(t *testing.T) {
	archivePath := fooBarJar(t, t.TempDir())

	for _, name := range []string{"com/example/Bar", "com.example.Bar", "com/example/Bar.class"} {
		classes, err := InspectArchive(context.Background(), archivePath, nil, name)
		require.NoError(t, err, name)
		require.Len(t, classes, 1)
		assert.Equal(t, "com/example/Bar", classes[0].ClassName)
	}

	_, err := InspectArchive(context.Background(), archivePath, nil, "com/example/Missing")
	assert.ErrorContains(t, err, "not found")
}

func TestInspectArchiveErrors(t *testing.T) {
	_, err := InspectArchive(context.Background(), "", nil, "")
	assert.ErrorIs(t, err, schema.ErrConfiguration)

	_, err = InspectArchive(context.Background(), filepath.Join(t.TempDir(), "missing.jar"), nil, "")
	assert.ErrorIs(t, err, schema.ErrIO)

	dir := t.TempDir()
	archivePath := filepath.Join(dir, "bad.jar")
	writeJar(t, archivePath, jarEntry{name: "Bad.class", data: []byte("nope")})
	_, err = InspectArchive(context.Background(), archivePath, nil, "")
	assert.ErrorIs(t, err, schema.ErrClassFileCorruption)
}
