package handlers

import (
	"carwiseiq/internal/config"
	"carwiseiq/internal/core/services"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	predictionSvc *services.PredictionService
	calibrator    *services.MarketCalibrator
	registry      *services.ModelRegistry
	limits        config.LimitsConfig
}

func New(
	predictionSvc *services.PredictionService,
	calibrator *services.MarketCalibrator,
	registry *services.ModelRegistry,
	limits config.LimitsConfig,
) *Handler {
	return &Handler{
		predictionSvc: predictionSvc,
		calibrator:    calibrator,
		registry:      registry,
		limits:        limits,
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	// Predictions
	r.POST("/predictions", h.Predict)

	// Artifacts (operator visibility and explicit reload)
	r.GET("/artifacts", h.ListArtifacts)
	r.POST("/artifacts/reload", h.ReloadArtifacts)
}
