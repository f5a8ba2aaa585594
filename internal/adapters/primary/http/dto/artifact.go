package dto

import (
	"time"

	"carwiseiq/internal/core/domain"
)

type ArtifactDescriptorDTO struct {
	Version string `json:"version"`
	Active  bool   `json:"active"`
}

type ActiveArtifactDTO struct {
	Version               string  `json:"version"`
	TrainedAt             string  `json:"trained_at"`
	SupportsImageFeatures bool    `json:"supports_image_features"`
	TabularDim            int     `json:"tabular_dim"`
	ImageDim              int     `json:"image_dim,omitempty"`
	RMSE                  float64 `json:"rmse"`
	R2                    float64 `json:"r2"`
}

type ListArtifactsResponse struct {
	Candidates []ArtifactDescriptorDTO `json:"candidates"`
	Active     *ActiveArtifactDTO      `json:"active,omitempty"`
}

func ToListArtifactsResponse(candidates []domain.ArtifactDescriptor, active *domain.ModelArtifact) ListArtifactsResponse {
	items := make([]ArtifactDescriptorDTO, 0, len(candidates))
	for _, c := range candidates {
		items = append(items, ArtifactDescriptorDTO{
			Version: c.Version,
			Active:  active != nil && active.Version == c.Version,
		})
	}

	resp := ListArtifactsResponse{Candidates: items}
	if active != nil {
		resp.Active = &ActiveArtifactDTO{
			Version:               active.Version,
			TrainedAt:             active.TrainedAt.Format(time.RFC3339),
			SupportsImageFeatures: active.SupportsImageFeatures,
			TabularDim:            active.TabularDim,
			ImageDim:              active.ImageDim,
			RMSE:                  active.Metrics.RMSE,
			R2:                    active.Metrics.R2,
		}
	}
	return resp
}
