package archive

import (
	"context"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Astrarre/FebbGradle/internal/classfile"
	"github.com/Astrarre/FebbGradle/schema"
	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type testEntry struct {
	name   string
	data   []byte
	method uint16
}

var testModified = time.Date(2021, 6, 1, 12, 0, 0, 0, time.UTC)

func writeJar(t *testing.T, path, comment string, entries ...testEntry) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	for _, e := range entries {
		w, err := zw.CreateHeader(&zip.FileHeader{Name: e.name, Method: e.method, Modified: testModified})
		require.NoError(t, err)
		_, err = w.Write(e.data)
		require.NoError(t, err)
	}
	require.NoError(t, zw.SetComment(comment))
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())
}

func classBytes(t *testing.T, name string) []byte {
	t.Helper()
	c, err := classfile.New(name, "java/lang/Object", 0)
	require.NoError(t, err)
	return c.Bytes()
}

func readAll(t *testing.T, path string) map[string]*zip.File {
	t.Helper()
	zr, err := zip.OpenReader(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = zr.Close() })
	out := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		out[f.Name] = f
	}
	return out
}

func fooBarJar(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mod.jar")
	writeJar(t, path, "built by test",
		testEntry{name: "META-INF/", method: zip.Store},
		testEntry{name: "META-INF/MANIFEST.MF", data: []byte("Manifest-Version: 1.0\n"), method: zip.Deflate},
		testEntry{name: "com/example/Foo.class", data: classBytes(t, "com/example/Foo"), method: zip.Deflate},
		testEntry{name: "com/example/Bar.class", data: classBytes(t, "com/example/Bar"), method: zip.Deflate},
		testEntry{name: "com/example/Stored.class", data: classBytes(t, "com/example/Stored"), method: zip.Store},
	)
	return path
}

func TestClassName(t *testing.T) {
	tests := []struct {
		entry string
		want  string
	}{
		{"com/example/Foo.class", "com/example/Foo"},
		{"Foo.class", "Foo"},
		{"com\\example\\Foo.class", "com/example/Foo"},
		{"/com/example/Foo.class", "com/example/Foo"},
		{"com/example/Foo$Inner.class", "com/example/Foo$Inner"},
		{"com/example/", ""},
		{"com/example.class/", ""},
		{"META-INF/MANIFEST.MF", ""},
		{"module-info.java", ""},
	}
	for _, tt := range tests {
		t.Run(tt.entry, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassName(tt.entry))
		})
	}
}

func TestEntries(t *testing.T) {
	path := fooBarJar(t)

	var names, classes []string
	for e, err := range Entries(path) {
		require.NoError(t, err)
		names = append(names, e.Name)
		if e.IsClass() {
			classes = append(classes, e.ClassName)
		}
	}
	assert.Len(t, names, 5)
	assert.Equal(t, []string{"com/example/Foo", "com/example/Bar", "com/example/Stored"}, classes)

	// early break closes the archive
	count := 0
	for range Entries(path) {
		count++
		break
	}
	assert.Equal(t, 1, count)
}

func TestEntriesMissingArchive(t *testing.T) {
	for _, err := range Entries(filepath.Join(t.TempDir(), "missing.jar")) {
		assert.True(t, errors.Is(err, schema.ErrIO))
	}
}

func TestReadEntry(t *testing.T) {
	path := fooBarJar(t)

	data, err := ReadEntry(path, "/META-INF/MANIFEST.MF")
	require.NoError(t, err)
	assert.Equal(t, "Manifest-Version: 1.0\n", string(data))

	_, err = ReadEntry(path, "abstractionManifest.json")
	assert.True(t, IsNotExist(err))
}

func TestVisit(t *testing.T) {
	path := fooBarJar(t)
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	var seen []string
	stats, err := Visit(context.Background(), path, func(e Entry) bool {
		return e.ClassName != "com/example/Bar"
	}, func(e Entry, data []byte) error {
		seen = append(seen, e.ClassName)
		assert.Equal(t, classBytes(t, e.ClassName), data)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"com/example/Foo", "com/example/Stored"}, seen)
	assert.Equal(t, Stats{Entries: 5, Classes: 3, Matched: 2}, stats)

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestVisitError(t *testing.T) {
	path := fooBarJar(t)
	boom := errors.New("boom")
	_, err := Visit(context.Background(), path, nil, func(Entry, []byte) error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "com/example/Foo.class")
}

func TestProcessInPlace(t *testing.T) {
	path := fooBarJar(t)
	before := readAll(t, path)
	barBefore, err := ReadEntry(path, "com/example/Bar.class")
	require.NoError(t, err)

	info := schema.AbstractedClassInfo{
		APIClassName: "com/example/IFoo",
		NewSignature: "Lcom/example/Base<Lcom/example/Foo;>;",
	}
	stats, err := ProcessInPlace(context.Background(), path,
		func(e Entry) bool { return e.ClassName == "com/example/Foo" },
		func(_ Entry, data []byte) ([]byte, error) { return classfile.Rewrite(data, info) },
	)
	require.NoError(t, err)
	assert.Equal(t, Stats{Entries: 5, Classes: 3, Matched: 1, Rewritten: 1}, stats)

	after := readAll(t, path)
	require.Len(t, after, 5)

	fooData, err := ReadEntry(path, "com/example/Foo.class")
	require.NoError(t, err)
	foo, err := classfile.Parse(fooData)
	require.NoError(t, err)
	assert.Contains(t, foo.Interfaces(), "com/example/IFoo")
	sig, ok := foo.Signature()
	require.True(t, ok)
	assert.Equal(t, info.NewSignature, sig)
	assert.Equal(t, before["com/example/Foo.class"].Method, after["com/example/Foo.class"].Method)
	assert.True(t, after["com/example/Foo.class"].Modified.Equal(testModified))

	barAfter, err := ReadEntry(path, "com/example/Bar.class")
	require.NoError(t, err)
	assert.Equal(t, barBefore, barAfter)
	for _, name := range []string{"META-INF/MANIFEST.MF", "com/example/Bar.class", "com/example/Stored.class"} {
		assert.Equal(t, before[name].CRC32, after[name].CRC32, name)
		assert.Equal(t, before[name].CompressedSize64, after[name].CompressedSize64, name)
		assert.Equal(t, before[name].Method, after[name].Method, name)
	}

	zr, err := zip.OpenReader(path)
	require.NoError(t, err)
	assert.Equal(t, "built by test", zr.Comment)
	require.NoError(t, zr.Close())

	assertNoTempFiles(t, filepath.Dir(path))
}

// storedJar writes one STORED class entry with its CRC and sizes in the
// local header and no data descriptor, the way jar tools lay them out.
func storedJar(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "stored.jar")
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	w, err := zw.CreateRaw(&zip.FileHeader{
		Name:               name,
		Method:             zip.Store,
		CRC32:              crc32.ChecksumIEEE(data),
		CompressedSize64:   uint64(len(data)),
		UncompressedSize64: uint64(len(data)),
	})
	require.NoError(t, err)
	_, err = w.Write(data)
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())
	return path
}

func TestProcessInPlaceStoredEntryKeepsLocalSizes(t *testing.T) {
	path := storedJar(t, "com/example/Foo.class", classBytes(t, "com/example/Foo"))
	require.Zero(t, readAll(t, path)["com/example/Foo.class"].Flags&flagDataDescriptor)

	info := schema.AbstractedClassInfo{APIClassName: "com/example/IFoo", NewSignature: "Lcom/example/Base;"}
	var rewritten []byte
	stats, err := ProcessInPlace(context.Background(), path, nil,
		func(_ Entry, data []byte) ([]byte, error) {
			out, err := classfile.Rewrite(data, info)
			rewritten = out
			return out, err
		},
	)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Rewritten)

	after := readAll(t, path)["com/example/Foo.class"]
	assert.Equal(t, uint16(zip.Store), after.Method)
	assert.Zero(t, after.Flags&flagDataDescriptor)
	assert.Equal(t, crc32.ChecksumIEEE(rewritten), after.CRC32)
	assert.Equal(t, uint64(len(rewritten)), after.UncompressedSize64)

	// The first local header starts the file: flags at 6, CRC at 14, sizes at 18 and 22.
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Greater(t, len(raw), 30)
	assert.Zero(t, binary.LittleEndian.Uint16(raw[6:])&flagDataDescriptor)
	assert.Equal(t, after.CRC32, binary.LittleEndian.Uint32(raw[14:]))
	assert.Equal(t, uint32(len(rewritten)), binary.LittleEndian.Uint32(raw[18:]))
	assert.Equal(t, uint32(len(rewritten)), binary.LittleEndian.Uint32(raw[22:]))

	data, err := ReadEntry(path, "com/example/Foo.class")
	require.NoError(t, err)
	assert.Equal(t, rewritten, data)
}

func TestProcessInPlaceNilFilterSelectsAllClasses(t *testing.T) {
	path := fooBarJar(t)
	var seen []string
	stats, err := ProcessInPlace(context.Background(), path, nil,
		func(e Entry, data []byte) ([]byte, error) {
			seen = append(seen, e.ClassName)
			return data, nil
		},
	)
	require.NoError(t, err)
	assert.Equal(t, Stats{Entries: 5, Classes: 3, Matched: 3, Rewritten: 3}, stats)
	assert.Equal(t, []string{"com/example/Foo", "com/example/Bar", "com/example/Stored"}, seen)
}

func TestProcessInPlaceNoMatchLeavesFile(t *testing.T) {
	path := fooBarJar(t)
	original, err := os.ReadFile(path)
	require.NoError(t, err)

	stats, err := ProcessInPlace(context.Background(), path,
		func(Entry) bool { return false },
		func(Entry, []byte) ([]byte, error) { t.Fatal("rewrite must not be called"); return nil, nil },
	)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Matched)

	current, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, original, current)
	assertNoTempFiles(t, filepath.Dir(path))
}

func TestProcessInPlaceRewriteErrorLeavesFile(t *testing.T) {
	path := fooBarJar(t)
	original, err := os.ReadFile(path)
	require.NoError(t, err)

	_, err = ProcessInPlace(context.Background(), path,
		func(e Entry) bool { return true },
		func(e Entry, data []byte) ([]byte, error) {
			if e.ClassName == "com/example/Bar" {
				return nil, schema.ErrClassFileCorruption
			}
			return data, nil
		},
	)
	require.Error(t, err)
	assert.True(t, errors.Is(err, schema.ErrClassFileCorruption))
	assert.Contains(t, err.Error(), "com/example/Bar.class")

	current, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, original, current)
	assertNoTempFiles(t, filepath.Dir(path))
}

func TestProcessInPlaceCancelled(t *testing.T) {
	path := fooBarJar(t)
	original, err := os.ReadFile(path)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = ProcessInPlace(ctx, path,
		func(Entry) bool { return true },
		func(_ Entry, data []byte) ([]byte, error) { return data, nil },
	)
	assert.ErrorIs(t, err, context.Canceled)

	current, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, original, current)
}

func TestProcessInPlaceMissingArchive(t *testing.T) {
	_, err := ProcessInPlace(context.Background(), filepath.Join(t.TempDir(), "missing.jar"),
		func(Entry) bool { return true },
		func(_ Entry, data []byte) ([]byte, error) { return data, nil },
	)
	assert.True(t, errors.Is(err, schema.ErrIO))
}

func TestProcessInPlaceNotAZip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.jar")
	require.NoError(t, os.WriteFile(path, []byte("definitely not a zip"), 0o644))
	_, err := ProcessInPlace(context.Background(), path,
		func(Entry) bool { return true },
		func(_ Entry, data []byte) ([]byte, error) { return data, nil },
	)
	assert.True(t, errors.Is(err, schema.ErrIO))
}

func TestStripExtra(t *testing.T) {
	extra := []byte{
		0x55, 0x54, 0x05, 0x00, 0x01, 0x00, 0x00, 0x00, 0x00, // extended timestamp
		0xFE, 0xCA, 0x00, 0x00, // jar marker
		0x01, 0x00, 0x08, 0x00, 1, 2, 3, 4, 5, 6, 7, 8, // zip64
	}
	assert.Equal(t, []byte{0xFE, 0xCA, 0x00, 0x00}, stripExtra(extra, extraZip64, extraExtendedTimestamp))
	assert.Nil(t, stripExtra(nil, extraZip64))
	assert.Equal(t, []byte{0x01, 0x02}, stripExtra([]byte{0x01, 0x02}, extraZip64))
}

func assertNoTempFiles(t *testing.T, dir string) {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(dir, ".*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, matches)
}
