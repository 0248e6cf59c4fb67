// Package archive walks jar archives and rewrites selected class entries in place.
package archive

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"strings"

	"github.com/Astrarre/FebbGradle/schema"
	"github.com/klauspost/compress/zip"
)

// ClassSuffix is the file extension of class entries.
const ClassSuffix = ".class"

// Zip extra field ids that zip.Writer regenerates on its own.
const (
	extraZip64             = 0x0001
	extraExtendedTimestamp = 0x5455
)

// flagDataDescriptor marks an entry whose CRC and sizes follow its data.
const flagDataDescriptor = 0x8

// Entry describes one archive entry.
type Entry struct {
	Name      string // entry name as stored in the archive
	ClassName string // binary class name, empty when the entry is not a class
	Size      uint64 // uncompressed size
}

// IsClass reports whether the entry is a class file.
func (e Entry) IsClass() bool { return e.ClassName != "" }

// Stats counts what a walk visited.
type Stats struct {
	Entries   int `json:"entries"`
	Classes   int `json:"classes"`
	Matched   int `json:"matched"`
	Rewritten int `json:"rewritten"`
}

// FilterFunc selects the class entries to hand to a RewriteFunc.
type FilterFunc func(Entry) bool

// RewriteFunc receives the bytes of a selected class entry and returns the
// replacement bytes.
type RewriteFunc func(Entry, []byte) ([]byte, error)

// ClassName returns the binary class name for an entry name, or "" when the
// entry is a directory or not a class file.
func ClassName(entryName string) string {
	name := strings.ReplaceAll(entryName, "\\", "/")
	if strings.HasSuffix(name, "/") || !strings.HasSuffix(name, ClassSuffix) {
		return ""
	}
	name = strings.TrimPrefix(name, "/")
	return strings.TrimSuffix(name, ClassSuffix)
}

func newEntry(f *zip.File) Entry {
	e := Entry{Name: f.Name, Size: f.UncompressedSize64}
	if !f.FileInfo().IsDir() {
		e.ClassName = ClassName(f.Name)
	}
	return e
}

// Entries lazily yields every entry of the archive at path. The archive is
// closed when iteration stops.
func Entries(path string) iter.Seq2[Entry, error] {
	return func(yield func(Entry, error) bool) {
		zr, err := zip.OpenReader(path)
		if err != nil {
			yield(Entry{}, fmt.Errorf("%w: opening archive %s: %w", schema.ErrIO, path, err))
			return
		}
		defer func() { _ = zr.Close() }()
		for _, f := range zr.File {
			if !yield(newEntry(f), nil) {
				return
			}
		}
	}
}

// ReadEntry returns the uncompressed bytes of one entry. A leading '/' in
// name is ignored. A missing entry yields an error wrapping fs.ErrNotExist.
func ReadEntry(path, name string) ([]byte, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("%w: opening archive %s: %w", schema.ErrIO, path, err)
	}
	defer func() { _ = zr.Close() }()

	name = strings.TrimPrefix(name, "/")
	for _, f := range zr.File {
		if f.Name == name {
			data, err := readFile(f)
			if err != nil {
				return nil, fmt.Errorf("%w: reading %s from %s: %w", schema.ErrIO, name, path, err)
			}
			return data, nil
		}
	}
	return nil, fmt.Errorf("entry %s in %s: %w", name, path, fs.ErrNotExist)
}

// Visit reads every class entry that filter selects and passes its bytes to
// visit, in archive order. The archive is not modified.
func Visit(ctx context.Context, path string, filter FilterFunc, visit func(Entry, []byte) error) (Stats, error) {
	var stats Stats
	zr, err := zip.OpenReader(path)
	if err != nil {
		return stats, fmt.Errorf("%w: opening archive %s: %w", schema.ErrIO, path, err)
	}
	defer func() { _ = zr.Close() }()

	for _, f := range zr.File {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		stats.Entries++
		entry := newEntry(f)
		if !entry.IsClass() {
			continue
		}
		stats.Classes++
		if filter != nil && !filter(entry) {
			continue
		}
		stats.Matched++
		data, err := readFile(f)
		if err != nil {
			return stats, fmt.Errorf("%w: reading %s: %w", schema.ErrIO, f.Name, err)
		}
		if err := visit(entry, data); err != nil {
			return stats, fmt.Errorf("%s: %w", f.Name, err)
		}
	}
	return stats, nil
}

func readFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()
	return io.ReadAll(rc)
}

// ProcessInPlace rewrites the class entries of the archive at path that
// filter selects, or every class entry when filter is nil. Every other entry is copied without recompression, so its
// stored bytes are unchanged. The new archive is written next to the original
// and renamed over it only when the whole walk succeeded; on any error the
// original file is left as it was. When nothing was rewritten the original is
// not touched at all.
func ProcessInPlace(ctx context.Context, path string, filter FilterFunc, rewrite RewriteFunc) (Stats, error) {
	var stats Stats

	info, err := os.Stat(path)
	if err != nil {
		return stats, fmt.Errorf("%w: %w", schema.ErrIO, err)
	}
	zr, err := zip.OpenReader(path)
	if err != nil {
		return stats, fmt.Errorf("%w: opening archive %s: %w", schema.ErrIO, path, err)
	}
	defer func() { _ = zr.Close() }()

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+"-*.tmp")
	if err != nil {
		return stats, fmt.Errorf("%w: creating temp archive: %w", schema.ErrIO, err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	zw := zip.NewWriter(tmp)
	for _, f := range zr.File {
		if err := ctx.Err(); err != nil {
			_ = zw.Close()
			return stats, err
		}
		stats.Entries++
		entry := newEntry(f)
		if entry.IsClass() {
			stats.Classes++
		}
		if !entry.IsClass() || (filter != nil && !filter(entry)) {
			if err := zw.Copy(f); err != nil {
				_ = zw.Close()
				return stats, fmt.Errorf("%w: copying %s: %w", schema.ErrIO, f.Name, err)
			}
			continue
		}

		stats.Matched++
		if err := rewriteEntry(zw, f, entry, rewrite); err != nil {
			_ = zw.Close()
			return stats, err
		}
		stats.Rewritten++
	}

	if err := zw.SetComment(zr.Comment); err != nil {
		_ = zw.Close()
		return stats, fmt.Errorf("%w: %w", schema.ErrIO, err)
	}
	if err := zw.Close(); err != nil {
		return stats, fmt.Errorf("%w: finishing archive: %w", schema.ErrIO, err)
	}
	if stats.Rewritten == 0 {
		return stats, nil
	}
	if err := tmp.Chmod(info.Mode().Perm()); err != nil {
		return stats, fmt.Errorf("%w: %w", schema.ErrIO, err)
	}
	if err := tmp.Close(); err != nil {
		return stats, fmt.Errorf("%w: %w", schema.ErrIO, err)
	}
	// The reader must be closed before the rename on platforms that lock open files.
	_ = zr.Close()
	if err := os.Rename(tmp.Name(), path); err != nil {
		return stats, fmt.Errorf("%w: replacing %s: %w", schema.ErrIO, path, err)
	}
	committed = true
	return stats, nil
}

func rewriteEntry(zw *zip.Writer, f *zip.File, entry Entry, rewrite RewriteFunc) error {
	data, err := readFile(f)
	if err != nil {
		return fmt.Errorf("%w: reading %s: %w", schema.ErrIO, f.Name, err)
	}
	out, err := rewrite(entry, data)
	if err != nil {
		return fmt.Errorf("%s: %w", f.Name, err)
	}

	header := f.FileHeader
	var w io.Writer
	if header.Method == zip.Store {
		// Streaming jar readers reject a data descriptor on a stored entry, so
		// the CRC and sizes go in the local header.
		header.Extra = stripExtra(header.Extra, extraZip64)
		header.Flags &^= flagDataDescriptor
		header.CRC32 = crc32.ChecksumIEEE(out)
		header.CompressedSize64 = uint64(len(out))
		header.UncompressedSize64 = uint64(len(out))
		w, err = zw.CreateRaw(&header)
	} else {
		header.Extra = stripExtra(header.Extra, extraZip64, extraExtendedTimestamp)
		header.CRC32 = 0
		header.CompressedSize64 = 0
		header.UncompressedSize64 = 0
		w, err = zw.CreateHeader(&header)
	}
	if err != nil {
		return fmt.Errorf("%w: writing %s: %w", schema.ErrIO, f.Name, err)
	}
	if _, err := w.Write(out); err != nil {
		return fmt.Errorf("%w: writing %s: %w", schema.ErrIO, f.Name, err)
	}
	return nil
}

// stripExtra drops the given extra field ids. Malformed trailing data is kept.
func stripExtra(extra []byte, ids ...uint16) []byte {
	if len(extra) == 0 {
		return nil
	}
	out := make([]byte, 0, len(extra))
	rest := extra
	for len(rest) >= 4 {
		id := binary.LittleEndian.Uint16(rest)
		size := int(binary.LittleEndian.Uint16(rest[2:]))
		if 4+size > len(rest) {
			break
		}
		field := rest[:4+size]
		rest = rest[4+size:]
		drop := false
		for _, x := range ids {
			if id == x {
				drop = true
				break
			}
		}
		if !drop {
			out = append(out, field...)
		}
	}
	return append(out, rest...)
}

// IsNotExist reports whether err means a missing entry or file.
func IsNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
