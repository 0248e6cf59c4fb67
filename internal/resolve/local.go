package resolve

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Astrarre/FebbGradle/internal/contract"
	"github.com/Astrarre/FebbGradle/schema"
)

// LocalRepository resolves artifacts from a Maven-layout directory such as ~/.m2/repository.
type LocalRepository struct {
	Root string
}

var _ contract.ArtifactResolver = &LocalRepository{} // Compile-time check

// Resolve implements the ArtifactResolver interface.
func (r *LocalRepository) Resolve(_ context.Context, coordinate schema.Coordinate) (string, error) {
	path := filepath.Join(r.Root, filepath.FromSlash(coordinate.Path()))
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("not found in local repository %s: %w", r.Root, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("%s is a directory", path)
	}
	return path, nil
}
