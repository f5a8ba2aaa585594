package services

import (
	"context"
	"fmt"

	"carwiseiq/internal/config"
	"carwiseiq/internal/core/domain"
)

// PredictionService orchestrates encoding, image extraction, and the
// ensemble to produce the pre-calibration estimate with its confidence
// interval.
type PredictionService struct {
	registry  *ModelRegistry
	encoder   *FeatureEncoder
	extractor *ImageFeatureExtractor
	cfg       config.PredictionConfig
}

func NewPredictionService(registry *ModelRegistry, encoder *FeatureEncoder, extractor *ImageFeatureExtractor, cfg config.PredictionConfig) *PredictionService {
	return &PredictionService{
		registry:  registry,
		encoder:   encoder,
		extractor: extractor,
		cfg:       cfg,
	}
}

// Predict computes the raw estimate. Images are optional; when the active
// artifact cannot consume them they are ignored with a warning rather than
// rejected.
func (s *PredictionService) Predict(ctx context.Context, attrs domain.CarAttributes, images [][]byte) (*domain.PredictionResult, error) {
	artifact, err := s.registry.Resolve(ctx)
	if err != nil {
		return nil, err
	}

	result := &domain.PredictionResult{
		Calibration:  domain.CalibrationSkipped,
		ModelVersion: artifact.Version,
	}

	tabular, warnings, err := s.encoder.Encode(attrs, &artifact.Encoders)
	if err != nil {
		return nil, err
	}
	result.Warnings = append(result.Warnings, warnings...)

	if tabular.Len() != artifact.TabularDim {
		return nil, &domain.DimensionError{Kind: "tabular", Expected: artifact.TabularDim, Got: tabular.Len()}
	}

	features := tabular.Values
	if artifact.SupportsImageFeatures {
		imageVec, extractWarnings, err := s.extractor.Extract(ctx, images, artifact)
		if err != nil {
			return nil, err
		}
		result.Warnings = append(result.Warnings, extractWarnings...)

		if imageVec.Len() != artifact.ImageDim {
			return nil, &domain.DimensionError{Kind: "image", Expected: artifact.ImageDim, Got: imageVec.Len()}
		}

		// Fixed concatenation order: tabular first, then image.
		features = make([]float64, 0, artifact.InputDim())
		features = append(features, tabular.Values...)
		features = append(features, imageVec.Values...)
		result.UsedImages = !imageVec.FromFallback
	} else if len(images) > 0 {
		result.AddWarning(domain.WarnImagesIgnored)
	}

	estimate, err := artifact.Predict(features)
	if err != nil {
		return nil, err
	}

	estimate = s.clamp(estimate, result)
	result.PointEstimate = estimate
	result.Interval = s.interval(estimate, artifact, result)

	return result, nil
}

func (s *PredictionService) clamp(estimate float64, result *domain.PredictionResult) float64 {
	if estimate < s.cfg.MinPrice {
		result.AddWarning(fmt.Sprintf("estimate %.2f raised to price floor %.2f", estimate, s.cfg.MinPrice))
		return s.cfg.MinPrice
	}
	if estimate > s.cfg.MaxPrice {
		result.AddWarning(fmt.Sprintf("estimate %.2f lowered to price ceiling %.2f", estimate, s.cfg.MaxPrice))
		return s.cfg.MaxPrice
	}
	return estimate
}

func (s *PredictionService) interval(estimate float64, artifact *domain.ModelArtifact, result *domain.PredictionResult) domain.ConfidenceInterval {
	var margin float64
	if artifact.Metrics.RMSE > 0 {
		margin = s.cfg.IntervalMultiplier * artifact.Metrics.RMSE
	} else {
		margin = s.cfg.FallbackIntervalPct * estimate
		result.AddWarning(domain.WarnApproxInterval)
	}

	lower := estimate - margin
	if lower < 0 {
		lower = 0
	}
	return domain.ConfidenceInterval{
		Lower: lower,
		Upper: estimate + margin,
		Level: s.cfg.ConfidenceLevel,
	}
}
