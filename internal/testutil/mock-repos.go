package testutil

import (
	"context"

	"github.com/stretchr/testify/mock"

	"carwiseiq/internal/core/domain"
	ports "carwiseiq/internal/core/ports/output"
)

// MockComparableRepo is a mock of ComparableRepository.
type MockComparableRepo struct {
	mock.Mock
}

func (m *MockComparableRepo) ListComparables(ctx context.Context, filter ports.ComparableFilter) ([]domain.ComparableListing, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ComparableListing), args.Error(1)
}

func (m *MockComparableRepo) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockArtifactStore is a mock of ArtifactStore.
type MockArtifactStore struct {
	mock.Mock
}

func (m *MockArtifactStore) Load(ctx context.Context, version string) (*domain.ModelArtifact, error) {
	args := m.Called(ctx, version)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ModelArtifact), args.Error(1)
}

// MockEmbeddingClient is a mock of EmbeddingClient.
type MockEmbeddingClient struct {
	mock.Mock
}

func (m *MockEmbeddingClient) Embed(ctx context.Context, image []byte) ([]float64, error) {
	args := m.Called(ctx, image)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]float64), args.Error(1)
}

func (m *MockEmbeddingClient) IsAvailable() bool {
	args := m.Called()
	return args.Bool(0)
}
