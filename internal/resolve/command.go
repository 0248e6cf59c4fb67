package resolve

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/Astrarre/FebbGradle/internal/contract"
	"github.com/Astrarre/FebbGradle/schema"
)

// CoordinatePlaceholder is replaced with the coordinate in a resolver command.
const CoordinatePlaceholder = "{coordinate}"

// CommandResolver runs an external tool that installs the artifact into a
// local repository, then resolves it from there. A typical command is
// "mvn -q dependency:get -Dartifact={coordinate}".
type CommandResolver struct {
	Command    string
	Repository *LocalRepository
}

var _ contract.ArtifactResolver = &CommandResolver{} // Compile-time check

// Resolve implements the ArtifactResolver interface.
func (r *CommandResolver) Resolve(ctx context.Context, coordinate schema.Coordinate) (string, error) {
	if _, err := r.Run(ctx, coordinate); err != nil {
		return "", err
	}
	return r.Repository.Resolve(ctx, coordinate)
}

// Run executes the command for a coordinate and returns its stdout.
func (r *CommandResolver) Run(ctx context.Context, coordinate schema.Coordinate) ([]byte, error) {
	args := strings.Fields(strings.ReplaceAll(r.Command, CoordinatePlaceholder, coordinate.String()))
	if len(args) == 0 {
		return nil, errors.New("resolver command is empty")
	}
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	out, err := cmd.Output()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		stderr := strings.TrimSpace(string(exitErr.Stderr))
		return nil, fmt.Errorf("resolver command %q failed: %s", args[0], stderr)
	} else if err != nil {
		return nil, fmt.Errorf("resolver command failed: %w. Ensure %s is installed and available on your PATH", err, args[0])
	}
	return out, nil
}
