package ports

import (
	"context"

	"carwiseiq/internal/core/domain"
)

// ArtifactStore loads versioned model artifacts from external storage.
// Implementations return an error wrapping domain.ErrArtifactNotFound when
// the version's files are missing, and domain.ErrArtifactCorrupt when they
// exist but do not deserialize or validate.
type ArtifactStore interface {
	Load(ctx context.Context, version string) (*domain.ModelArtifact, error)
}
