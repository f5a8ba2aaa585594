package artifactfs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"carwiseiq/internal/core/domain"
	ports "carwiseiq/internal/core/ports/output"
)

const manifestName = "manifest.json"

// Store loads versioned artifact manifests from a local directory tree:
// one subdirectory per version tag, each holding a manifest.json produced
// by the training job. Artifacts are immutable once written.
type Store struct {
	dir string
}

func NewStore(dir string) ports.ArtifactStore {
	return &Store{dir: dir}
}

func (s *Store) Load(ctx context.Context, version string) (*domain.ModelArtifact, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := filepath.Join(s.dir, version, manifestName)
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", domain.ErrArtifactNotFound, path)
		}
		return nil, fmt.Errorf("read artifact manifest %s: %w", path, err)
	}

	var artifact domain.ModelArtifact
	if err := json.Unmarshal(raw, &artifact); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", domain.ErrArtifactCorrupt, path, err)
	}
	if artifact.Version != version {
		return nil, fmt.Errorf("%w: manifest at %s declares version %q",
			domain.ErrArtifactCorrupt, path, artifact.Version)
	}

	return &artifact, nil
}
