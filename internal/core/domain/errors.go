package domain

import (
	"errors"
	"fmt"
)

// ============================================================================
// Validation Errors (abort the request, HTTP 400)
// ============================================================================

var (
	ErrValidation        = errors.New("validation failed")
	ErrDimensionMismatch = errors.New("feature dimension mismatch")
	ErrTooManyImages     = errors.New("too many images supplied")
	ErrImageTooLarge     = errors.New("image exceeds maximum size")
)

// FieldError names the malformed attribute field and why it was rejected.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("invalid field %q: %s", e.Field, e.Reason)
}

func (e *FieldError) Is(target error) bool { return target == ErrValidation }

// DimensionError reports a feature-vector length that does not match what
// the active artifact declares. Mismatches are never silently reshaped.
type DimensionError struct {
	Kind     string // "tabular" or "image"
	Expected int
	Got      int
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("%s feature dimension mismatch: expected %d, got %d", e.Kind, e.Expected, e.Got)
}

func (e *DimensionError) Is(target error) bool {
	return target == ErrDimensionMismatch || target == ErrValidation
}

// ============================================================================
// Model Registry Errors
// ============================================================================

var (
	// ErrModelUnavailable means no candidate artifact could be resolved.
	// Surfaced as service-unavailable, safe to retry after redeploy.
	ErrModelUnavailable = errors.New("no model artifact available")
	ErrArtifactNotFound = errors.New("model artifact not found")
	ErrArtifactCorrupt  = errors.New("model artifact failed validation")
)

// ============================================================================
// Degradation Warnings (ride inside a successful result, never errors)
// ============================================================================

const (
	WarnImagesIgnored   = "images ignored: active model does not support image features"
	WarnNoComparables   = "market calibration skipped: not enough comparable listings"
	WarnCalibrationDown = "market calibration skipped: comparable store unavailable"
	WarnApproxInterval  = "confidence interval is approximate: model metrics missing RMSE"
)
