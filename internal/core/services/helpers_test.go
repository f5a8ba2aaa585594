package services

import (
	"bytes"
	"image"
	"image/png"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"carwiseiq/internal/config"
	"carwiseiq/internal/core/domain"
)

var testNow = time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

func testClock() func() time.Time { return func() time.Time { return testNow } }

func testEncoders() *domain.CategoricalEncoders {
	return &domain.CategoricalEncoders{
		Version:          "enc-v2",
		MakeCodes:        map[string]int{"Toyota": 1, "Honda": 2},
		ModelCodes:       map[string]int{"Camry": 10, "Civic": 20},
		UnknownMakeCode:  999,
		UnknownModelCode: 999,
		BrandPopularity:  map[string]float64{"Toyota": 0.91, "Honda": 0.85},
		MedianPopularity: 0.5,
	}
}

// tabularArtifact predicts a constant price regardless of features, which
// keeps assertions on downstream math exact.
func tabularArtifact(price float64) *domain.ModelArtifact {
	return &domain.ModelArtifact{
		Version:    "v4",
		TrainedAt:  testNow.AddDate(0, -1, 0),
		TabularDim: domain.TabularDim,
		Encoders:   *testEncoders(),
		Regressors: []domain.Regressor{
			{Name: "blend", Weights: make([]float64, domain.TabularDim), Intercept: price, BlendWeight: 1},
		},
		Metrics: domain.Metrics{RMSE: 1500, R2: 0.88},
	}
}

func multimodalArtifact(price float64) *domain.ModelArtifact {
	a := tabularArtifact(price)
	a.SupportsImageFeatures = true
	a.EmbeddingDim = 4
	a.ImageDim = 4
	a.ImageFallback = domain.FallbackZero
	a.Regressors[0].Weights = make([]float64, domain.TabularDim+4)
	return a
}

func testPredictionConfig() config.PredictionConfig {
	return config.PredictionConfig{
		IntervalMultiplier:  1.96,
		ConfidenceLevel:     0.95,
		FallbackIntervalPct: 0.20,
		MinPrice:            100,
		MaxPrice:            2000000,
	}
}

func testCalibrationConfig() config.CalibrationConfig {
	return config.CalibrationConfig{
		SoftThreshold:     0.30,
		Damping:           0.50,
		YearWindow:        1,
		WidenedYearWindow: 2,
		MinComparables:    3,
	}
}

func testAttrs() domain.CarAttributes {
	return domain.CarAttributes{
		Make: "Toyota", Model: "Camry",
		Year: 2020, Mileage: 50000, EngineSize: 2.5, Cylinders: 4,
		Condition: domain.ConditionGood, FuelType: domain.FuelGasoline,
	}
}

// validPNG renders a real 2x2 PNG so image.DecodeConfig accepts it.
func validPNG(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}
