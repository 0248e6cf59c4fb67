package core

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/Astrarre/FebbGradle/schema"
)

// BenchmarkProcessArchive rewrites half the classes of a 200-class jar.
func BenchmarkProcessArchive(b *testing.B) {
	const classes = 200
	m := make(schema.AbstractionManifest, classes/2)
	entries := make([]jarEntry, 0, classes)
	for i := range classes {
		name := fmt.Sprintf("com/example/gen/Class%03d", i)
		entries = append(entries, jarEntry{name: name + ".class", data: classBytes(b, name)})
		if i%2 == 0 {
			m[name] = schema.AbstractedClassInfo{APIClassName: name + "Api", NewSignature: "Ljava/lang/Object;"}
		}
	}

	dir := b.TempDir()
	ctx := context.Background()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		b.StopTimer()
		path := filepath.Join(dir, fmt.Sprintf("bench-%d.jar", i))
		writeJar(b, path, entries...)
		b.StartTimer()

		result, err := ProcessArchive(ctx, path, m, nil)
		if err != nil {
			b.Fatal(err)
		}
		if len(result.Rewritten) != classes/2 {
			b.Fatalf("rewrote %d classes, want %d", len(result.Rewritten), classes/2)
		}
	}
}
