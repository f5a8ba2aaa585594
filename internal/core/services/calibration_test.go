package services

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"carwiseiq/internal/core/domain"
	ports "carwiseiq/internal/core/ports/output"
	"carwiseiq/internal/testutil"
)

func comparablesAt(price float64, count int) []domain.ComparableListing {
	out := make([]domain.ComparableListing, count)
	for i := range out {
		out[i] = domain.ComparableListing{Make: "Toyota", Model: "Camry", Year: 2020, Price: price}
	}
	return out
}

func rawResult(estimate float64) *domain.PredictionResult {
	return &domain.PredictionResult{
		PointEstimate: estimate,
		Interval:      domain.ConfidenceInterval{Lower: estimate - 2940, Upper: estimate + 2940, Level: 0.95},
		Calibration:   domain.CalibrationSkipped,
		ModelVersion:  "v4",
	}
}

func TestMarketCalibrator_WithinRange(t *testing.T) {
	repo := new(testutil.MockComparableRepo)
	repo.On("ListComparables", mock.Anything, mock.Anything).Return(comparablesAt(19000, 10), nil)

	c := NewMarketCalibrator(repo, testCalibrationConfig())

	result := c.Calibrate(context.Background(), rawResult(20000), testAttrs())

	assert.Equal(t, domain.CalibrationWithinRange, result.Calibration)
	assert.Equal(t, 20000.0, result.PointEstimate)
	assert.Empty(t, result.Adjustments)
	assert.Empty(t, result.Warnings)
}

func TestMarketCalibrator_OutOfRange_Adjusted(t *testing.T) {
	// raw 23000 vs median 15500 is a 48% deviation
	repo := new(testutil.MockComparableRepo)
	repo.On("ListComparables", mock.Anything, mock.Anything).Return(comparablesAt(15500, 10), nil)

	c := NewMarketCalibrator(repo, testCalibrationConfig())

	result := c.Calibrate(context.Background(), rawResult(23000), testAttrs())

	assert.Equal(t, domain.CalibrationAdjusted, result.Calibration)
	// damping 0.5 pulls halfway toward the median
	assert.InDelta(t, 19250, result.PointEstimate, 1e-9)
	assert.Greater(t, result.PointEstimate, 15500.0)
	assert.Less(t, result.PointEstimate, 23000.0)

	assert.Len(t, result.Adjustments, 1)
	adj := result.Adjustments[0]
	assert.Equal(t, "Market Calibration", adj.Name)
	assert.InDelta(t, -3750, adj.Delta, 1e-9)
	assert.Contains(t, adj.Reason, "48.4%")
	assert.NotEmpty(t, result.Warnings)

	// interval shifted with the estimate, width preserved
	assert.InDelta(t, 23000-2940-3750, result.Interval.Lower, 1e-9)
	assert.InDelta(t, 23000+2940-3750, result.Interval.Upper, 1e-9)
}

func TestMarketCalibrator_CorrectionNeverOvershoots(t *testing.T) {
	repo := new(testutil.MockComparableRepo)
	repo.On("ListComparables", mock.Anything, mock.Anything).Return(comparablesAt(15500, 10), nil)

	cfg := testCalibrationConfig()
	c := NewMarketCalibrator(repo, cfg)

	for _, raw := range []float64{5000, 9000, 23000, 40000, 120000} {
		result := c.Calibrate(context.Background(), rawResult(raw), testAttrs())

		rawDev := math.Abs(raw - 15500)
		calDev := math.Abs(result.PointEstimate - 15500)
		assert.LessOrEqual(t, calDev, rawDev, "raw estimate %.0f", raw)
	}
}

func TestMarketCalibrator_WidensWindowOnce(t *testing.T) {
	repo := new(testutil.MockComparableRepo)
	narrow := ports.ComparableFilter{Make: "Toyota", Model: "Camry", YearMin: 2019, YearMax: 2021, Limit: 200}
	wide := ports.ComparableFilter{Make: "Toyota", Model: "Camry", YearMin: 2018, YearMax: 2022, Limit: 200}
	repo.On("ListComparables", mock.Anything, narrow).Return(comparablesAt(19000, 2), nil)
	repo.On("ListComparables", mock.Anything, wide).Return(comparablesAt(19000, 5), nil)

	cfg := testCalibrationConfig()
	cfg.Timeout = 0
	c := NewMarketCalibrator(repo, cfg)

	result := c.Calibrate(context.Background(), rawResult(20000), testAttrs())

	assert.Equal(t, domain.CalibrationWithinRange, result.Calibration)
	repo.AssertExpectations(t)
}

func TestMarketCalibrator_ClampsFutureYearBeforeFiltering(t *testing.T) {
	// year 4000 clamps to 2027 under the pinned 2026 clock, so the
	// comparable window must straddle 2027, not the bogus year
	attrs := testAttrs()
	attrs.Year = 4000

	repo := new(testutil.MockComparableRepo)
	clamped := ports.ComparableFilter{Make: "Toyota", Model: "Camry", YearMin: 2026, YearMax: 2028, Limit: 200}
	repo.On("ListComparables", mock.Anything, clamped).Return(comparablesAt(19000, 10), nil)

	c := NewMarketCalibratorAt(repo, testCalibrationConfig(), testClock())

	result := c.Calibrate(context.Background(), rawResult(20000), attrs)

	assert.Equal(t, domain.CalibrationWithinRange, result.Calibration)
	repo.AssertExpectations(t)
}

func TestMarketCalibrator_NoComparables_PassThrough(t *testing.T) {
	repo := new(testutil.MockComparableRepo)
	repo.On("ListComparables", mock.Anything, mock.Anything).Return(comparablesAt(19000, 1), nil)

	c := NewMarketCalibrator(repo, testCalibrationConfig())

	result := c.Calibrate(context.Background(), rawResult(20000), testAttrs())

	assert.Equal(t, domain.CalibrationNoComparables, result.Calibration)
	assert.Equal(t, 20000.0, result.PointEstimate)
	assert.Contains(t, result.Warnings, domain.WarnNoComparables)
}

func TestMarketCalibrator_StoreDown_PassThrough(t *testing.T) {
	repo := new(testutil.MockComparableRepo)
	repo.On("ListComparables", mock.Anything, mock.Anything).Return(nil, errors.New("connection refused"))

	c := NewMarketCalibrator(repo, testCalibrationConfig())

	result := c.Calibrate(context.Background(), rawResult(20000), testAttrs())

	assert.Equal(t, domain.CalibrationNoComparables, result.Calibration)
	assert.Equal(t, 20000.0, result.PointEstimate)
	assert.Contains(t, result.Warnings, domain.WarnCalibrationDown)
}

func TestMarketCalibrator_ZeroMedian_PassThrough(t *testing.T) {
	repo := new(testutil.MockComparableRepo)
	repo.On("ListComparables", mock.Anything, mock.Anything).Return(comparablesAt(0, 5), nil)

	c := NewMarketCalibrator(repo, testCalibrationConfig())

	result := c.Calibrate(context.Background(), rawResult(20000), testAttrs())

	assert.Equal(t, domain.CalibrationNoComparables, result.Calibration)
	assert.Equal(t, 20000.0, result.PointEstimate)
}
