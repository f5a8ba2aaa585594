package dto

import (
	"encoding/base64"
	"fmt"

	"carwiseiq/internal/core/domain"
)

type PredictRequest struct {
	Attributes CarAttributesDTO `json:"attributes" binding:"required"`
	// Images are base64-encoded JPEG/PNG buffers, newest photo first.
	Images []string `json:"images"`
}

type CarAttributesDTO struct {
	Make       string  `json:"make" binding:"required,max=100"`
	Model      string  `json:"model" binding:"required,max=100"`
	Year       int     `json:"year" binding:"required"`
	Mileage    int     `json:"mileage"`
	EngineSize float64 `json:"engine_size"`
	Cylinders  int     `json:"cylinders"`
	Condition  string  `json:"condition"`
	FuelType   string  `json:"fuel_type"`
	Trim       string  `json:"trim"`
	Location   string  `json:"location"`
}

func (d CarAttributesDTO) ToDomain() domain.CarAttributes {
	return domain.CarAttributes{
		Make:       d.Make,
		Model:      d.Model,
		Year:       d.Year,
		Mileage:    d.Mileage,
		EngineSize: d.EngineSize,
		Cylinders:  d.Cylinders,
		Condition:  domain.Condition(d.Condition),
		FuelType:   domain.FuelType(d.FuelType),
		Trim:       d.Trim,
		Location:   d.Location,
	}
}

// DecodeImages materializes the request's base64 image payloads, enforcing
// the configured count and per-image size limits.
func (r *PredictRequest) DecodeImages(maxImages int, maxImageBytes int64) ([][]byte, error) {
	if len(r.Images) == 0 {
		return nil, nil
	}
	if len(r.Images) > maxImages {
		return nil, fmt.Errorf("%w: got %d, limit %d", domain.ErrTooManyImages, len(r.Images), maxImages)
	}

	// Oversized payloads are rejected from the encoded length alone so the
	// decoded buffer is never allocated for them.
	maxEncoded := base64.StdEncoding.EncodedLen(int(maxImageBytes))

	images := make([][]byte, 0, len(r.Images))
	for i, encoded := range r.Images {
		if len(encoded) > maxEncoded {
			return nil, fmt.Errorf("%w: image %d is about %d bytes, limit %d",
				domain.ErrImageTooLarge, i, base64.StdEncoding.DecodedLen(len(encoded)), maxImageBytes)
		}
		raw, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return nil, &domain.FieldError{
				Field:  fmt.Sprintf("images[%d]", i),
				Reason: "is not valid base64",
			}
		}
		if int64(len(raw)) > maxImageBytes {
			return nil, fmt.Errorf("%w: image %d is %d bytes, limit %d",
				domain.ErrImageTooLarge, i, len(raw), maxImageBytes)
		}
		images = append(images, raw)
	}
	return images, nil
}

type ConfidenceIntervalDTO struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Level float64 `json:"level"`
}

type AdjustmentDTO struct {
	Name   string  `json:"name"`
	Delta  float64 `json:"delta"`
	Reason string  `json:"reason"`
}

type PredictResponse struct {
	PointEstimate float64               `json:"point_estimate"`
	Interval      ConfidenceIntervalDTO `json:"confidence_interval"`
	Adjustments   []AdjustmentDTO       `json:"adjustments"`
	Warnings      []string              `json:"warnings"`
	Calibration   string                `json:"calibration"`
	ModelVersion  string                `json:"model_version"`
	UsedImages    bool                  `json:"used_images"`
}

// ToPredictResponse is the one explicit conversion step between the domain
// result and its wire shape. Nil slices serialize as empty arrays so
// clients never special-case null.
func ToPredictResponse(result *domain.PredictionResult) PredictResponse {
	adjustments := make([]AdjustmentDTO, 0, len(result.Adjustments))
	for _, a := range result.Adjustments {
		adjustments = append(adjustments, AdjustmentDTO{Name: a.Name, Delta: a.Delta, Reason: a.Reason})
	}
	warnings := result.Warnings
	if warnings == nil {
		warnings = []string{}
	}

	return PredictResponse{
		PointEstimate: result.PointEstimate,
		Interval: ConfidenceIntervalDTO{
			Lower: result.Interval.Lower,
			Upper: result.Interval.Upper,
			Level: result.Interval.Level,
		},
		Adjustments:  adjustments,
		Warnings:     warnings,
		Calibration:  string(result.Calibration),
		ModelVersion: result.ModelVersion,
		UsedImages:   result.UsedImages,
	}
}
