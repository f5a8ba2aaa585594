package services

import (
	"time"

	"carwiseiq/internal/core/domain"
)

// FeatureEncoder builds the fixed-order tabular feature vector for a
// request. Encoding is deterministic: identical attributes and identical
// encoder version always produce an identical vector.
type FeatureEncoder struct {
	now func() time.Time
}

func NewFeatureEncoder() *FeatureEncoder {
	return &FeatureEncoder{now: time.Now}
}

// NewFeatureEncoderAt pins the encoder's clock, for reproducible tests.
func NewFeatureEncoderAt(now func() time.Time) *FeatureEncoder {
	return &FeatureEncoder{now: now}
}

// Encode validates and clamps attrs, then emits the tabular vector under
// the artifact's encoders. Clamps are reported as warnings, never errors;
// only structurally missing fields fail.
func (e *FeatureEncoder) Encode(attrs domain.CarAttributes, enc *domain.CategoricalEncoders) (domain.TabularFeatureVector, []string, error) {
	if err := attrs.Validate(); err != nil {
		return domain.TabularFeatureVector{}, nil, err
	}

	now := e.now()
	warnings := attrs.Normalize(now)

	age := attrs.Age(now)
	ageDivisor := age
	if ageDivisor < 1 {
		ageDivisor = 1
	}
	mileagePerYear := float64(attrs.Mileage) / float64(ageDivisor)

	values := []float64{
		float64(attrs.Year),
		float64(attrs.Mileage),
		attrs.EngineSize,
		float64(attrs.Cylinders),
		float64(attrs.Condition.Code()),
		float64(attrs.FuelType.Code()),
		float64(enc.EncodeMake(attrs.Make)),
		float64(enc.EncodeModel(attrs.Model)),
		float64(age),
		mileagePerYear,
		enc.Popularity(attrs.Make),
		float64(attrs.Year) * float64(attrs.Mileage),
		attrs.EngineSize * float64(attrs.Cylinders),
	}

	return domain.TabularFeatureVector{
		EncoderVersion: enc.Version,
		Values:         values,
	}, warnings, nil
}
