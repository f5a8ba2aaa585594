package domain

import (
	"fmt"
	"time"
)

type Condition string

const (
	ConditionNew       Condition = "New"
	ConditionLikeNew   Condition = "Like New"
	ConditionExcellent Condition = "Excellent"
	ConditionGood      Condition = "Good"
	ConditionFair      Condition = "Fair"
	ConditionPoor      Condition = "Poor"
	ConditionSalvage   Condition = "Salvage"
)

type FuelType string

const (
	FuelGasoline     FuelType = "Gasoline"
	FuelDiesel       FuelType = "Diesel"
	FuelElectric     FuelType = "Electric"
	FuelHybrid       FuelType = "Hybrid"
	FuelPluginHybrid FuelType = "Plug-in Hybrid"
	FuelOther        FuelType = "Other"
)

// conditionCodes orders conditions from worst to best. Unknown conditions
// encode as the dedicated unknown code, never an error.
var conditionCodes = map[Condition]int{
	ConditionSalvage:   0,
	ConditionPoor:      1,
	ConditionFair:      2,
	ConditionGood:      3,
	ConditionExcellent: 4,
	ConditionLikeNew:   5,
	ConditionNew:       6,
}

var fuelCodes = map[FuelType]int{
	FuelGasoline:     0,
	FuelDiesel:       1,
	FuelElectric:     2,
	FuelHybrid:       3,
	FuelPluginHybrid: 4,
	FuelOther:        5,
}

const (
	UnknownConditionCode = 7
	UnknownFuelCode      = 6

	MinYear      = 1900
	MaxCylinders = 12
)

func (c Condition) Code() int {
	if code, ok := conditionCodes[c]; ok {
		return code
	}
	return UnknownConditionCode
}

func (f FuelType) Code() int {
	if code, ok := fuelCodes[f]; ok {
		return code
	}
	return UnknownFuelCode
}

// CarAttributes is the raw structured input for a single valuation.
type CarAttributes struct {
	Make       string    `json:"make"`
	Model      string    `json:"model"`
	Year       int       `json:"year"`
	Mileage    int       `json:"mileage"`
	EngineSize float64   `json:"engine_size"`
	Cylinders  int       `json:"cylinders"`
	Condition  Condition `json:"condition"`
	FuelType   FuelType  `json:"fuel_type"`
	Trim       string    `json:"trim,omitempty"`
	Location   string    `json:"location,omitempty"`
}

// Normalize clamps recoverable out-of-bounds numeric fields to their nearest
// valid value and reports a warning per clamp. Clamping never fails the
// request; only structurally missing fields do.
func (a *CarAttributes) Normalize(now time.Time) []string {
	var warnings []string

	maxYear := now.Year() + 1
	if a.Year > maxYear {
		warnings = append(warnings, fmt.Sprintf("year %d clamped to %d", a.Year, maxYear))
		a.Year = maxYear
	}
	if a.Year < MinYear {
		warnings = append(warnings, fmt.Sprintf("year %d clamped to %d", a.Year, MinYear))
		a.Year = MinYear
	}
	if a.Mileage < 0 {
		warnings = append(warnings, fmt.Sprintf("mileage %d clamped to 0", a.Mileage))
		a.Mileage = 0
	}
	if a.EngineSize < 0 {
		warnings = append(warnings, fmt.Sprintf("engine_size %.2f clamped to 0", a.EngineSize))
		a.EngineSize = 0
	}
	if a.Cylinders < 1 {
		warnings = append(warnings, fmt.Sprintf("cylinders %d clamped to 1", a.Cylinders))
		a.Cylinders = 1
	}
	if a.Cylinders > MaxCylinders {
		warnings = append(warnings, fmt.Sprintf("cylinders %d clamped to %d", a.Cylinders, MaxCylinders))
		a.Cylinders = MaxCylinders
	}

	return warnings
}

// Validate reports the non-recoverable problems: fields that cannot be
// clamped into shape.
func (a *CarAttributes) Validate() error {
	if a.Make == "" {
		return &FieldError{Field: "make", Reason: "is required"}
	}
	if a.Model == "" {
		return &FieldError{Field: "model", Reason: "is required"}
	}
	if a.Year == 0 {
		return &FieldError{Field: "year", Reason: "is required"}
	}
	return nil
}

// Age is the car age in whole years, never negative even for model years
// slightly in the future.
func (a *CarAttributes) Age(now time.Time) int {
	age := now.Year() - a.Year
	if age < 0 {
		return 0
	}
	return age
}
