package classfile

import (
	"errors"
	"testing"
	"unicode/utf8"

	"github.com/Astrarre/FebbGradle/schema"
)

// FuzzParse feeds arbitrary bytes to Parse. Failures must be class file
// corruption, and anything accepted must survive a write and reparse.
func FuzzParse(f *testing.F) {
	for _, name := range []string{"a/B", "com/example/Foo", "pkg/Ünïcode$Inner"} {
		c, err := New(name, "java/lang/Object", 52, "java/io/Serializable")
		if err != nil {
			f.Fatal(err)
		}
		data := c.Bytes()
		f.Add(data)
		f.Add(data[:len(data)/2])
	}
	f.Add([]byte{})
	f.Add([]byte{0xCA, 0xFE, 0xBA, 0xBE})

	f.Fuzz(func(t *testing.T, data []byte) {
		c, err := Parse(data)
		if err != nil {
			if !errors.Is(err, schema.ErrClassFileCorruption) {
				t.Fatalf("unexpected error kind: %v", err)
			}
			return
		}
		again, err := Parse(c.Bytes())
		if err != nil {
			t.Fatalf("reparse failed: %v", err)
		}
		if again.Name() != c.Name() {
			t.Fatalf("name changed: %q != %q", again.Name(), c.Name())
		}
	})
}

// FuzzMUTF8 checks that every valid string survives the modified UTF-8 round trip.
func FuzzMUTF8(f *testing.F) {
	for _, s := range []string{"", "plain", "nul\x00byte", "é", "中文", "😀 emoji", "Lcom/example/Base<TT;>;"} {
		f.Add(s)
	}

	f.Fuzz(func(t *testing.T, s string) {
		if !utf8.ValidString(s) {
			return
		}
		got, err := decodeMUTF8(encodeMUTF8(s))
		if err != nil {
			t.Fatalf("decode failed for %q: %v", s, err)
		}
		if got != s {
			t.Fatalf("round trip mismatch: %q != %q", got, s)
		}
	})
}
