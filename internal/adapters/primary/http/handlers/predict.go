package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"carwiseiq/internal/adapters/primary/http/dto"
	"carwiseiq/internal/adapters/primary/http/middleware"
)

func (h *Handler) Predict(c *gin.Context) {
	var req dto.PredictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	images, err := req.DecodeImages(h.limits.MaxImages, h.limits.MaxImageBytes)
	if err != nil {
		mapDomainError(c, err)
		return
	}

	attrs := req.Attributes.ToDomain()
	result, err := h.predictionSvc.Predict(c.Request.Context(), attrs, images)
	if err != nil {
		log.WithError(err).WithFields(log.Fields{
			"request_id": middleware.RequestIDFrom(c.Request.Context()),
			"make":       attrs.Make,
			"model":      attrs.Model,
			"year":       attrs.Year,
		}).Warn("prediction failed")
		mapDomainError(c, err)
		return
	}

	result = h.calibrator.Calibrate(c.Request.Context(), result, attrs)

	c.JSON(http.StatusOK, dto.ToPredictResponse(result))
}
