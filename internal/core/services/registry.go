package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"carwiseiq/internal/core/domain"
	ports "carwiseiq/internal/core/ports/output"
)

// ModelRegistry owns the ordered candidate list and the cached active
// artifact. Resolution walks candidates highest priority first and caches
// the first loadable, self-consistent artifact matching the serving
// tabular schema for the process lifetime.
// Re-resolution only happens through an explicit Reload, never mid-request.
type ModelRegistry struct {
	store      ports.ArtifactStore
	candidates []domain.ArtifactDescriptor

	group  singleflight.Group
	mu     sync.RWMutex
	active *domain.ModelArtifact
}

func NewModelRegistry(store ports.ArtifactStore, versions []string) *ModelRegistry {
	candidates := make([]domain.ArtifactDescriptor, 0, len(versions))
	for _, v := range versions {
		candidates = append(candidates, domain.ArtifactDescriptor{Version: v})
	}
	return &ModelRegistry{store: store, candidates: candidates}
}

// Candidates returns the registry's priority-ordered descriptor list.
func (r *ModelRegistry) Candidates() []domain.ArtifactDescriptor {
	out := make([]domain.ArtifactDescriptor, len(r.candidates))
	copy(out, r.candidates)
	return out
}

// Active returns the cached artifact without triggering resolution, or nil.
func (r *ModelRegistry) Active() *domain.ModelArtifact {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.active
}

// Resolve returns the active artifact, loading it on first use. Concurrent
// first requests share a single load via the singleflight group.
func (r *ModelRegistry) Resolve(ctx context.Context) (*domain.ModelArtifact, error) {
	r.mu.RLock()
	active := r.active
	r.mu.RUnlock()
	if active != nil {
		return active, nil
	}

	result, err, _ := r.group.Do("resolve", func() (interface{}, error) {
		r.mu.RLock()
		cached := r.active
		r.mu.RUnlock()
		if cached != nil {
			return cached, nil
		}

		artifact, err := r.resolve(ctx)
		if err != nil {
			return nil, err
		}

		r.mu.Lock()
		r.active = artifact
		r.mu.Unlock()
		return artifact, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*domain.ModelArtifact), nil
}

func (r *ModelRegistry) resolve(ctx context.Context) (*domain.ModelArtifact, error) {
	for _, desc := range r.candidates {
		artifact, err := r.store.Load(ctx, desc.Version)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, err
			}
			log.WithError(err).WithField("version", desc.Version).Warn("artifact candidate failed to load")
			continue
		}
		if err := artifact.Validate(); err != nil {
			log.WithError(err).WithField("version", desc.Version).Warn("artifact candidate failed validation")
			continue
		}
		// A training/serving schema mismatch must fail here, not on the
		// first predict. A self-consistent artifact trained against a
		// different tabular schema would otherwise resolve and then turn
		// every request into a dimension error.
		if artifact.TabularDim != domain.TabularDim {
			log.WithFields(log.Fields{
				"version":      desc.Version,
				"artifact_dim": artifact.TabularDim,
				"serving_dim":  domain.TabularDim,
			}).Warn("artifact candidate trained against a different tabular schema")
			continue
		}

		log.WithFields(log.Fields{
			"version":         artifact.Version,
			"supports_images": artifact.SupportsImageFeatures,
			"tabular_dim":     artifact.TabularDim,
			"rmse":            artifact.Metrics.RMSE,
		}).Info("model artifact resolved")
		return artifact, nil
	}

	return nil, fmt.Errorf("%w: tried %d candidates", domain.ErrModelUnavailable, len(r.candidates))
}

// Reload drops the cached artifact and resolves again. Operator-triggered;
// in-flight requests keep the artifact they already hold.
func (r *ModelRegistry) Reload(ctx context.Context) (*domain.ModelArtifact, error) {
	r.mu.Lock()
	r.active = nil
	r.mu.Unlock()
	return r.Resolve(ctx)
}
