package domain

// CalibrationState is the machine-readable outcome of the market
// calibration pass for one request.
type CalibrationState string

const (
	CalibrationSkipped       CalibrationState = "skipped"
	CalibrationNoComparables CalibrationState = "no_comparables"
	CalibrationWithinRange   CalibrationState = "within_range"
	CalibrationAdjusted      CalibrationState = "adjusted"
)

// ConfidenceInterval bounds the point estimate at the stated confidence
// level. Approximate intervals (no RMSE metadata) are flagged via a warning
// on the enclosing result.
type ConfidenceInterval struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Level float64 `json:"level"`
}

// Adjustment records one named correction applied after the raw model
// output, in application order.
type Adjustment struct {
	Name   string  `json:"name"`
	Delta  float64 `json:"delta"`
	Reason string  `json:"reason"`
}

// PredictionResult is the engine's answer for one request. Created fresh
// per request and never persisted by this core.
type PredictionResult struct {
	PointEstimate float64            `json:"point_estimate"`
	Interval      ConfidenceInterval `json:"confidence_interval"`
	Adjustments   []Adjustment       `json:"adjustments"`
	Warnings      []string           `json:"warnings"`
	Calibration   CalibrationState   `json:"calibration"`
	ModelVersion  string             `json:"model_version"`
	UsedImages    bool               `json:"used_images"`
}

func (r *PredictionResult) AddWarning(w string) {
	r.Warnings = append(r.Warnings, w)
}

// Shift moves the estimate and both interval bounds by delta, keeping the
// interval width intact.
func (r *PredictionResult) Shift(delta float64) {
	r.PointEstimate += delta
	r.Interval.Lower += delta
	r.Interval.Upper += delta
}
