package core

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/Astrarre/FebbGradle/internal/archive"
	"github.com/Astrarre/FebbGradle/internal/classfile"
	"github.com/Astrarre/FebbGradle/schema"
)

// InspectArchive lists the supertypes and signature of the classes in
// archivePath. className limits the listing to one class and accepts either
// binary or dotted names. m may be nil; it only sets InManifest.
func InspectArchive(ctx context.Context, archivePath string, m schema.AbstractionManifest, className string) ([]schema.InspectedClass, error) {
	if archivePath == "" {
		return nil, fmt.Errorf("%w: no archive path given", schema.ErrConfiguration)
	}
	want := strings.ReplaceAll(strings.TrimSuffix(className, ".class"), ".", "/")

	filter := func(e archive.Entry) bool {
		return want == "" || e.ClassName == want
	}

	classes := []schema.InspectedClass{}
	_, err := archive.Visit(ctx, archivePath, filter, func(e archive.Entry, data []byte) error {
		c, err := classfile.Parse(data)
		if err != nil {
			return err
		}
		sig, _ := c.Signature()
		classes = append(classes, schema.InspectedClass{
			EntryName:    e.Name,
			ClassName:    c.Name(),
			SuperName:    c.SuperName(),
			Interfaces:   c.Interfaces(),
			Signature:    sig,
			MajorVersion: c.MajorVersion,
			JavaVersion:  c.JavaVersion(),
			InManifest:   m.Contains(e.ClassName),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	if want != "" && len(classes) == 0 {
		return nil, fmt.Errorf("class %s not found in %s", want, archivePath)
	}

	slices.SortFunc(classes, func(a, b schema.InspectedClass) int {
		return strings.Compare(a.ClassName, b.ClassName)
	})
	return classes, nil
}
