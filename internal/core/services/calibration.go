package services

import (
	"context"
	"fmt"
	"math"
	"time"

	log "github.com/sirupsen/logrus"

	"carwiseiq/internal/config"
	"carwiseiq/internal/core/domain"
	ports "carwiseiq/internal/core/ports/output"
)

const comparableQueryLimit = 200

// MarketCalibrator compares a raw estimate against comparable market
// listings and applies a bounded, damped correction when the estimate is
// implausible. Calibration is advisory: it never fails a request, only
// degrades to pass-through with a warning.
type MarketCalibrator struct {
	comparables ports.ComparableRepository
	cfg         config.CalibrationConfig
	now         func() time.Time
}

func NewMarketCalibrator(comparables ports.ComparableRepository, cfg config.CalibrationConfig) *MarketCalibrator {
	return &MarketCalibrator{comparables: comparables, cfg: cfg, now: time.Now}
}

// NewMarketCalibratorAt pins the calibrator's clock, for reproducible tests.
func NewMarketCalibratorAt(comparables ports.ComparableRepository, cfg config.CalibrationConfig, now func() time.Time) *MarketCalibrator {
	return &MarketCalibrator{comparables: comparables, cfg: cfg, now: now}
}

// Calibrate mutates result in place and returns it. The correction pulls
// the estimate toward the comparable median by the configured damping
// factor; it never overshoots the median and never moves away from it.
func (c *MarketCalibrator) Calibrate(ctx context.Context, result *domain.PredictionResult, attrs domain.CarAttributes) *domain.PredictionResult {
	// Clamp attrs the same way the encoder does so a bogus model year
	// still lands the comparable window on the real market. The clamp
	// warnings are already on the result from encoding.
	attrs.Normalize(c.now())

	set, err := c.comparableSet(ctx, attrs)
	if err != nil {
		log.WithError(err).WithFields(log.Fields{
			"make":  attrs.Make,
			"model": attrs.Model,
		}).Warn("comparable lookup failed")
		result.Calibration = domain.CalibrationNoComparables
		result.AddWarning(domain.WarnCalibrationDown)
		return result
	}
	if set.Count() < c.cfg.MinComparables {
		result.Calibration = domain.CalibrationNoComparables
		result.AddWarning(domain.WarnNoComparables)
		return result
	}

	median := set.MedianPrice()
	if median <= 0 {
		result.Calibration = domain.CalibrationNoComparables
		result.AddWarning(domain.WarnNoComparables)
		return result
	}

	deviation := (result.PointEstimate - median) / median
	if math.Abs(deviation) <= c.cfg.SoftThreshold {
		result.Calibration = domain.CalibrationWithinRange
		return result
	}

	delta := c.cfg.Damping * (median - result.PointEstimate)
	reason := fmt.Sprintf("estimate deviates %.1f%% from the median of %d comparable listings (%.2f)",
		deviation*100, set.Count(), median)

	result.Shift(delta)
	result.Adjustments = append(result.Adjustments, domain.Adjustment{
		Name:   "Market Calibration",
		Delta:  delta,
		Reason: reason,
	})
	result.AddWarning("market calibration applied: " + reason)
	result.Calibration = domain.CalibrationAdjusted
	return result
}

// comparableSet filters the reference dataset by make, model, and year
// window, widening the window once when too few comparables turn up.
func (c *MarketCalibrator) comparableSet(ctx context.Context, attrs domain.CarAttributes) (domain.ComparableSet, error) {
	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}

	listings, err := c.list(ctx, attrs, c.cfg.YearWindow)
	if err != nil {
		return domain.ComparableSet{}, err
	}
	if len(listings) < c.cfg.MinComparables && c.cfg.WidenedYearWindow > c.cfg.YearWindow {
		listings, err = c.list(ctx, attrs, c.cfg.WidenedYearWindow)
		if err != nil {
			return domain.ComparableSet{}, err
		}
	}
	return domain.ComparableSet{Listings: listings}, nil
}

func (c *MarketCalibrator) list(ctx context.Context, attrs domain.CarAttributes, window int) ([]domain.ComparableListing, error) {
	return c.comparables.ListComparables(ctx, ports.ComparableFilter{
		Make:    attrs.Make,
		Model:   attrs.Model,
		YearMin: attrs.Year - window,
		YearMax: attrs.Year + window,
		Limit:   comparableQueryLimit,
	})
}
