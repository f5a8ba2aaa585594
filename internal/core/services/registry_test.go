package services

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"carwiseiq/internal/core/domain"
	"carwiseiq/internal/testutil"
)

func TestModelRegistry_Resolve_HighestPriorityWins(t *testing.T) {
	store := new(testutil.MockArtifactStore)
	store.On("Load", mock.Anything, "v4").Return(tabularArtifact(20000), nil)

	registry := NewModelRegistry(store, []string{"v4", "v3"})

	artifact, err := registry.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "v4", artifact.Version)
	store.AssertNotCalled(t, "Load", mock.Anything, "v3")
}

func TestModelRegistry_Resolve_FallsBackPerTier(t *testing.T) {
	older := tabularArtifact(20000)
	older.Version = "v3"

	store := new(testutil.MockArtifactStore)
	store.On("Load", mock.Anything, "v4").Return(nil, domain.ErrArtifactNotFound)
	store.On("Load", mock.Anything, "v3").Return(older, nil)

	registry := NewModelRegistry(store, []string{"v4", "v3"})

	artifact, err := registry.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "v3", artifact.Version)
}

func TestModelRegistry_Resolve_SkipsInvalidArtifact(t *testing.T) {
	broken := tabularArtifact(20000)
	broken.Regressors = nil
	good := tabularArtifact(20000)
	good.Version = "v3"

	store := new(testutil.MockArtifactStore)
	store.On("Load", mock.Anything, "v4").Return(broken, nil)
	store.On("Load", mock.Anything, "v3").Return(good, nil)

	registry := NewModelRegistry(store, []string{"v4", "v3"})

	artifact, err := registry.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "v3", artifact.Version)
}

func TestModelRegistry_Resolve_SkipsStaleSchemaArtifact(t *testing.T) {
	// self-consistent, but trained against a 10-feature schema
	stale := tabularArtifact(20000)
	stale.TabularDim = 10
	stale.Regressors[0].Weights = make([]float64, 10)
	require.NoError(t, stale.Validate())

	good := tabularArtifact(20000)
	good.Version = "v3"

	store := new(testutil.MockArtifactStore)
	store.On("Load", mock.Anything, "v4").Return(stale, nil)
	store.On("Load", mock.Anything, "v3").Return(good, nil)

	registry := NewModelRegistry(store, []string{"v4", "v3"})

	artifact, err := registry.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "v3", artifact.Version)
	assert.Equal(t, domain.TabularDim, artifact.TabularDim)
}

func TestModelRegistry_Resolve_AllMissing(t *testing.T) {
	store := new(testutil.MockArtifactStore)
	store.On("Load", mock.Anything, mock.Anything).Return(nil, domain.ErrArtifactNotFound)

	registry := NewModelRegistry(store, []string{"v4", "v3", "v2"})

	_, err := registry.Resolve(context.Background())
	assert.ErrorIs(t, err, domain.ErrModelUnavailable)
	store.AssertNumberOfCalls(t, "Load", 3)
}

func TestModelRegistry_Resolve_CachedForProcessLifetime(t *testing.T) {
	store := new(testutil.MockArtifactStore)
	store.On("Load", mock.Anything, "v4").Return(tabularArtifact(20000), nil)

	registry := NewModelRegistry(store, []string{"v4"})

	first, err := registry.Resolve(context.Background())
	require.NoError(t, err)
	second, err := registry.Resolve(context.Background())
	require.NoError(t, err)

	assert.Same(t, first, second)
	store.AssertNumberOfCalls(t, "Load", 1)
}

func TestModelRegistry_Resolve_ConcurrentFirstRequests(t *testing.T) {
	store := new(testutil.MockArtifactStore)
	store.On("Load", mock.Anything, "v4").Return(tabularArtifact(20000), nil)

	registry := NewModelRegistry(store, []string{"v4"})

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := registry.Resolve(context.Background())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	store.AssertNumberOfCalls(t, "Load", 1)
}

func TestModelRegistry_Reload(t *testing.T) {
	v5 := tabularArtifact(20000)
	v5.Version = "v5"

	store := new(testutil.MockArtifactStore)
	store.On("Load", mock.Anything, "v5").Return(nil, domain.ErrArtifactNotFound).Once()
	store.On("Load", mock.Anything, "v4").Return(tabularArtifact(20000), nil).Once()
	store.On("Load", mock.Anything, "v5").Return(v5, nil).Once()

	registry := NewModelRegistry(store, []string{"v5", "v4"})

	first, err := registry.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "v4", first.Version)

	// operator drops new artifact files, then triggers reload
	second, err := registry.Reload(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "v5", second.Version)
}

func TestModelRegistry_Active_NilBeforeResolve(t *testing.T) {
	registry := NewModelRegistry(new(testutil.MockArtifactStore), []string{"v4"})
	assert.Nil(t, registry.Active())
}
