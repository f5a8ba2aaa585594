package domain

// TabularFeatureNames is the fixed, ordered tabular feature schema. A vector
// built against encoder version N must only be fed to a model trained
// against version N; the registry enforces that by sourcing encoders from
// the active artifact itself.
var TabularFeatureNames = []string{
	"year",
	"mileage",
	"engine_size",
	"cylinders",
	"condition_code",
	"fuel_code",
	"make_code",
	"model_code",
	"age",
	"mileage_per_year",
	"brand_popularity",
	"year_x_mileage",
	"engine_x_cylinders",
}

// TabularDim is the length every tabular vector has under the current schema.
var TabularDim = len(TabularFeatureNames)

// TabularFeatureVector is the numeric encoding of structured car attributes.
type TabularFeatureVector struct {
	EncoderVersion string
	Values         []float64
}

func (v TabularFeatureVector) Len() int { return len(v.Values) }

// ImageFeatureVector is the pooled (and optionally projected) CNN embedding
// for a request's photo set.
type ImageFeatureVector struct {
	Values []float64
	// FromFallback is true when no usable image contributed and the
	// artifact's documented fallback vector was used instead.
	FromFallback bool
}

func (v ImageFeatureVector) Len() int { return len(v.Values) }
