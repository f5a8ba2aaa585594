package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, []string{"v4", "v3", "v2"}, cfg.Artifacts.Versions)
	assert.Equal(t, 1.96, cfg.Prediction.IntervalMultiplier)
	assert.Equal(t, 0.95, cfg.Prediction.ConfidenceLevel)
	assert.Equal(t, 0.30, cfg.Calibration.SoftThreshold)
	assert.Equal(t, 0.50, cfg.Calibration.Damping)
	assert.Equal(t, 1, cfg.Calibration.YearWindow)
	assert.Equal(t, 2, cfg.Calibration.WidenedYearWindow)
	assert.Equal(t, 3, cfg.Calibration.MinComparables)
	assert.Equal(t, 8, cfg.Limits.MaxImages)
	assert.False(t, cfg.Embedding.Enabled)
}

func TestLoad_ArtifactVersionsFromEnv(t *testing.T) {
	t.Setenv("ARTIFACT_VERSIONS", " v7 , v6 ")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"v7", "v6"}, cfg.Artifacts.Versions)
}

func TestLoad_EmptyVersionListRejected(t *testing.T) {
	t.Setenv("ARTIFACT_VERSIONS", " , ")

	_, err := Load()
	assert.Error(t, err)
}

func TestDatabaseConfig_DSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host: "db", Port: 5432, User: "u", Password: "p", Name: "carwiseiq", SSLMode: "disable",
	}
	assert.Equal(t, "postgres://u:p@db:5432/carwiseiq?sslmode=disable", cfg.DSN())
}
