package services

import (
	"bytes"
	"context"
	"fmt"
	"image"

	// Registered decoders for the formats sellers actually upload.
	_ "image/jpeg"
	_ "image/png"

	log "github.com/sirupsen/logrus"

	"carwiseiq/internal/core/domain"
	ports "carwiseiq/internal/core/ports/output"
)

// ImageFeatureExtractor turns a request's photo set into a single image
// feature vector for the active artifact. Stateless per call; the backbone
// and any fitted projection are shared read-only across requests.
type ImageFeatureExtractor struct {
	backbone ports.EmbeddingClient
}

func NewImageFeatureExtractor(backbone ports.EmbeddingClient) *ImageFeatureExtractor {
	return &ImageFeatureExtractor{backbone: backbone}
}

// Extract embeds each usable image, pools the embeddings by elementwise
// mean, and applies the artifact's persisted projection. Individual image
// failures are skipped with a warning; when nothing usable remains, the
// artifact's documented fallback vector is returned.
func (x *ImageFeatureExtractor) Extract(ctx context.Context, images [][]byte, artifact *domain.ModelArtifact) (domain.ImageFeatureVector, []string, error) {
	var warnings []string

	if len(images) == 0 {
		return artifact.FallbackVector(), nil, nil
	}

	if x.backbone == nil || !x.backbone.IsAvailable() {
		warnings = append(warnings, "image features degraded: embedding backbone unavailable")
		return artifact.FallbackVector(), warnings, nil
	}

	var pooled []float64
	var used int
	for i, img := range images {
		if err := ctx.Err(); err != nil {
			return domain.ImageFeatureVector{}, nil, err
		}

		if _, _, err := image.DecodeConfig(bytes.NewReader(img)); err != nil {
			warnings = append(warnings, fmt.Sprintf("image %d skipped: %v", i, err))
			continue
		}

		embedding, err := x.backbone.Embed(ctx, img)
		if err != nil {
			if ctx.Err() != nil {
				return domain.ImageFeatureVector{}, nil, ctx.Err()
			}
			warnings = append(warnings, fmt.Sprintf("image %d skipped: embedding failed: %v", i, err))
			continue
		}
		if len(embedding) != artifact.EmbeddingDim {
			// Dimension drift between backbone and artifact is a contract
			// violation, not a per-image hiccup. Never truncate or pad.
			log.WithFields(log.Fields{
				"expected": artifact.EmbeddingDim,
				"got":      len(embedding),
			}).Error("backbone embedding dimension mismatch")
			return domain.ImageFeatureVector{}, warnings,
				&domain.DimensionError{Kind: "image", Expected: artifact.EmbeddingDim, Got: len(embedding)}
		}

		if pooled == nil {
			pooled = make([]float64, len(embedding))
		}
		for j, v := range embedding {
			pooled[j] += v
		}
		used++
	}

	if used == 0 {
		warnings = append(warnings, "no usable images: falling back to no-image vector")
		return artifact.FallbackVector(), warnings, nil
	}

	for j := range pooled {
		pooled[j] /= float64(used)
	}

	if artifact.Projection != nil {
		projected, err := artifact.Projection.Apply(pooled)
		if err != nil {
			return domain.ImageFeatureVector{}, warnings, err
		}
		pooled = projected
	}

	if len(pooled) != artifact.ImageDim {
		return domain.ImageFeatureVector{}, warnings,
			&domain.DimensionError{Kind: "image", Expected: artifact.ImageDim, Got: len(pooled)}
	}

	return domain.ImageFeatureVector{Values: pooled}, warnings, nil
}
