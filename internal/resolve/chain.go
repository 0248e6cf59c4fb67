package resolve

import (
	"context"
	"errors"
	"fmt"

	"github.com/Astrarre/FebbGradle/internal/contract"
	"github.com/Astrarre/FebbGradle/schema"
)

// Chain tries each resolver in order and returns the first success.
type Chain []contract.ArtifactResolver

var _ contract.ArtifactResolver = Chain{} // Compile-time check

// Resolve implements the ArtifactResolver interface.
func (c Chain) Resolve(ctx context.Context, coordinate schema.Coordinate) (string, error) {
	if len(c) == 0 {
		return "", errors.New("no repositories configured")
	}
	var errs []error
	for _, r := range c {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		path, err := r.Resolve(ctx, coordinate)
		if err == nil {
			return path, nil
		}
		errs = append(errs, err)
	}
	return "", fmt.Errorf("could not resolve %s: %w", coordinate, errors.Join(errs...))
}

// NewResolver builds the default resolver for a config: the local repository,
// then the resolver command if configured, then every remote repository.
// Remote downloads are cached inside the local repository.
func NewResolver(cfg *contract.Config) Chain {
	local := &LocalRepository{Root: cfg.LocalRepository}
	chain := Chain{local}
	if cfg.ResolverCommand != "" {
		chain = append(chain, &CommandResolver{Command: cfg.ResolverCommand, Repository: local})
	}
	for _, url := range cfg.Repositories {
		chain = append(chain, &RemoteRepository{BaseURL: url, CacheDir: cfg.LocalRepository})
	}
	return chain
}
