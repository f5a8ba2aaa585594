package domain

import (
	"fmt"
	"time"
)

// ImageFallback selects which vector stands in when a request carries no
// usable image. The choice is fixed at training time and recorded in the
// artifact; serving must respect it exactly.
type ImageFallback string

const (
	FallbackZero ImageFallback = "zero"
	FallbackMean ImageFallback = "mean"
)

// ArtifactDescriptor identifies one candidate model version. The registry
// holds an ordered list of these, highest priority first.
type ArtifactDescriptor struct {
	Version string `json:"version"`
}

// CategoricalEncoders are the label encoders fitted at training time. Codes
// for categories unseen in training map to the explicit unknown codes, so
// serving never fails on new inventory.
type CategoricalEncoders struct {
	Version          string             `json:"version"`
	MakeCodes        map[string]int     `json:"make_codes"`
	ModelCodes       map[string]int     `json:"model_codes"`
	UnknownMakeCode  int                `json:"unknown_make_code"`
	UnknownModelCode int                `json:"unknown_model_code"`
	BrandPopularity  map[string]float64 `json:"brand_popularity"`
	MedianPopularity float64            `json:"median_popularity"`
}

func (e *CategoricalEncoders) EncodeMake(make string) int {
	if code, ok := e.MakeCodes[make]; ok {
		return code
	}
	return e.UnknownMakeCode
}

func (e *CategoricalEncoders) EncodeModel(model string) int {
	if code, ok := e.ModelCodes[model]; ok {
		return code
	}
	return e.UnknownModelCode
}

func (e *CategoricalEncoders) Popularity(make string) float64 {
	if p, ok := e.BrandPopularity[make]; ok {
		return p
	}
	return e.MedianPopularity
}

// Projection is a fitted linear dimensionality reduction (rows × embedding
// dim). It is applied exactly as persisted, never refit at serving time.
type Projection struct {
	Matrix [][]float64 `json:"matrix"`
}

// Apply maps a raw embedding into the projected space.
func (p *Projection) Apply(embedding []float64) ([]float64, error) {
	out := make([]float64, len(p.Matrix))
	for i, row := range p.Matrix {
		if len(row) != len(embedding) {
			return nil, &DimensionError{Kind: "image", Expected: len(row), Got: len(embedding)}
		}
		var sum float64
		for j, w := range row {
			sum += w * embedding[j]
		}
		out[i] = sum
	}
	return out, nil
}

// Regressor is one trained linear model inside an artifact's ensemble.
type Regressor struct {
	Name        string    `json:"name"`
	Weights     []float64 `json:"weights"`
	Intercept   float64   `json:"intercept"`
	BlendWeight float64   `json:"blend_weight"`
}

func (r *Regressor) predict(features []float64) float64 {
	sum := r.Intercept
	for i, w := range r.Weights {
		sum += w * features[i]
	}
	return sum
}

// Metrics are the held-out error metrics recorded at training time.
type Metrics struct {
	RMSE float64 `json:"rmse"`
	R2   float64 `json:"r2"`
}

// ModelArtifact is an immutable, versioned bundle of trained regressors,
// the encoders they were trained against, and calibration metadata. Loaded
// once, cached for the process lifetime, never mutated after load.
type ModelArtifact struct {
	Version               string              `json:"version"`
	TrainedAt             time.Time           `json:"trained_at"`
	SupportsImageFeatures bool                `json:"supports_image_features"`
	TabularDim            int                 `json:"tabular_dim"`
	ImageDim              int                 `json:"image_dim"`
	EmbeddingDim          int                 `json:"embedding_dim"`
	ImageFallback         ImageFallback       `json:"image_fallback"`
	MeanEmbedding         []float64           `json:"mean_embedding,omitempty"`
	Encoders              CategoricalEncoders `json:"encoders"`
	Projection            *Projection         `json:"projection,omitempty"`
	Regressors            []Regressor         `json:"regressors"`
	Metrics               Metrics             `json:"metrics"`
}

// InputDim is the feature-vector length the regressors expect: tabular
// features first, then image features when the artifact is multimodal.
func (a *ModelArtifact) InputDim() int {
	if a.SupportsImageFeatures {
		return a.TabularDim + a.ImageDim
	}
	return a.TabularDim
}

// Validate checks the artifact's declared dimensionalities against its own
// contents. A self-inconsistent artifact must fail resolution, not serve.
func (a *ModelArtifact) Validate() error {
	if a.Version == "" {
		return fmt.Errorf("%w: missing version", ErrArtifactCorrupt)
	}
	if a.TabularDim <= 0 {
		return fmt.Errorf("%w: tabular_dim must be positive", ErrArtifactCorrupt)
	}
	if len(a.Regressors) == 0 {
		return fmt.Errorf("%w: no regressors", ErrArtifactCorrupt)
	}

	var blendMass float64
	for _, r := range a.Regressors {
		if len(r.Weights) != a.InputDim() {
			return fmt.Errorf("%w: regressor %q has %d weights, expected %d",
				ErrArtifactCorrupt, r.Name, len(r.Weights), a.InputDim())
		}
		if r.BlendWeight < 0 {
			return fmt.Errorf("%w: regressor %q has negative blend weight", ErrArtifactCorrupt, r.Name)
		}
		blendMass += r.BlendWeight
	}
	if blendMass <= 0 {
		return fmt.Errorf("%w: ensemble blend weights sum to zero", ErrArtifactCorrupt)
	}

	if a.SupportsImageFeatures {
		if a.ImageDim <= 0 {
			return fmt.Errorf("%w: image_dim must be positive", ErrArtifactCorrupt)
		}
		if a.EmbeddingDim <= 0 {
			return fmt.Errorf("%w: embedding_dim must be positive", ErrArtifactCorrupt)
		}
		if a.Projection != nil {
			if len(a.Projection.Matrix) != a.ImageDim {
				return fmt.Errorf("%w: projection has %d rows, expected %d",
					ErrArtifactCorrupt, len(a.Projection.Matrix), a.ImageDim)
			}
			for i, row := range a.Projection.Matrix {
				if len(row) != a.EmbeddingDim {
					return fmt.Errorf("%w: projection row %d has %d columns, expected %d",
						ErrArtifactCorrupt, i, len(row), a.EmbeddingDim)
				}
			}
		} else if a.ImageDim != a.EmbeddingDim {
			return fmt.Errorf("%w: image_dim %d differs from embedding_dim %d without a projection",
				ErrArtifactCorrupt, a.ImageDim, a.EmbeddingDim)
		}
		switch a.ImageFallback {
		case FallbackZero:
		case FallbackMean:
			if len(a.MeanEmbedding) != a.ImageDim {
				return fmt.Errorf("%w: mean embedding has %d dims, expected %d",
					ErrArtifactCorrupt, len(a.MeanEmbedding), a.ImageDim)
			}
		default:
			return fmt.Errorf("%w: unknown image fallback %q", ErrArtifactCorrupt, a.ImageFallback)
		}
	}

	return nil
}

// Predict combines the ensemble's regressors using the blend rule persisted
// in the artifact: a blend-weighted average of per-regressor outputs.
func (a *ModelArtifact) Predict(features []float64) (float64, error) {
	if len(features) != a.InputDim() {
		return 0, &DimensionError{Kind: "input", Expected: a.InputDim(), Got: len(features)}
	}

	var sum, mass float64
	for i := range a.Regressors {
		r := &a.Regressors[i]
		sum += r.BlendWeight * r.predict(features)
		mass += r.BlendWeight
	}
	return sum / mass, nil
}

// FallbackVector is the documented no-image vector for this artifact.
func (a *ModelArtifact) FallbackVector() ImageFeatureVector {
	values := make([]float64, a.ImageDim)
	if a.ImageFallback == FallbackMean {
		copy(values, a.MeanEmbedding)
	}
	return ImageFeatureVector{Values: values, FromFallback: true}
}
