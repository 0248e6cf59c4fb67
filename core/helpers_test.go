package core

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/Astrarre/FebbGradle/internal/classfile"
	"github.com/Astrarre/FebbGradle/internal/contract"
	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/require"
)

const (
	fooManifest = `{"com/example/Foo": {"apiClassName": "com/example/IFoo", "newSignature": "Lcom/example/Base<Lcom/example/Foo;>;"}}`
	fooSig      = "Lcom/example/Base<Lcom/example/Foo;>;"
)

type jarEntry struct {
	name string
	data []byte
}

func classBytes(t testing.TB, name string) []byte {
	t.Helper()
	c, err := classfile.New(name, "java/lang/Object", 0)
	require.NoError(t, err)
	return c.Bytes()
}

func writeJar(t testing.TB, path string, entries ...jarEntry) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	for _, e := range entries {
		w, err := zw.Create(e.name)
		require.NoError(t, err)
		_, err = w.Write(e.data)
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())
}

// fooBarJar writes an archive with Foo, Bar and a resource.
func fooBarJar(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "mod.jar")
	writeJar(t, path,
		jarEntry{name: "META-INF/MANIFEST.MF", data: []byte("Manifest-Version: 1.0\n")},
		jarEntry{name: "com/example/Foo.class", data: classBytes(t, "com/example/Foo")},
		jarEntry{name: "com/example/Bar.class", data: classBytes(t, "com/example/Bar")},
	)
	return path
}

func writeManifest(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "manifest.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func readEntry(t *testing.T, archivePath, name string) []byte {
	t.Helper()
	zr, err := zip.OpenReader(archivePath)
	require.NoError(t, err)
	defer func() { _ = zr.Close() }()
	for _, f := range zr.File {
		if f.Name == name {
			rc, err := f.Open()
			require.NoError(t, err)
			defer func() { _ = rc.Close() }()
			data, err := io.ReadAll(rc)
			require.NoError(t, err)
			return data
		}
	}
	t.Fatalf("entry %s not found in %s", name, archivePath)
	return nil
}

func parseEntry(t *testing.T, archivePath, name string) *classfile.Class {
	t.Helper()
	c, err := classfile.Parse(readEntry(t, archivePath, name))
	require.NoError(t, err)
	return c
}

// customConfig returns a config using a custom manifest, with the output
// directory next to the archive.
func customConfig(archivePath, manifestPath string) *contract.Config {
	outDir := filepath.Join(filepath.Dir(archivePath), "build")
	return &contract.Config{
		ArchivePath:  archivePath,
		ManifestPath: manifestPath,
		OutputDir:    outDir,
		WorkDir:      filepath.Join(outDir, contract.DefaultRecordNamespace),
	}
}
