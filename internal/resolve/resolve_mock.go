package resolve

import (
	"context"

	"github.com/Astrarre/FebbGradle/internal/contract"
	"github.com/Astrarre/FebbGradle/schema"
	"github.com/stretchr/testify/mock"
)

// MockArtifactResolver is a mock implementation of ArtifactResolver for testing.
type MockArtifactResolver struct {
	mock.Mock
}

var _ contract.ArtifactResolver = &MockArtifactResolver{} // Compile-time check

// Resolve implements the ArtifactResolver interface.
func (m *MockArtifactResolver) Resolve(ctx context.Context, coordinate schema.Coordinate) (string, error) {
	args := m.Called(ctx, coordinate)
	return args.String(0), args.Error(1)
}
