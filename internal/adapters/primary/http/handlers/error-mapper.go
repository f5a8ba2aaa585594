package handlers

import (
	"context"
	"errors"
	"net/http"

	"carwiseiq/internal/core/domain"

	"github.com/gin-gonic/gin"
)

func mapDomainError(c *gin.Context, err error) {
	switch {
	// Bad request / validation errors
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrDimensionMismatch),
		errors.Is(err, domain.ErrTooManyImages),
		errors.Is(err, domain.ErrImageTooLarge):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

	// Service unavailable errors
	case errors.Is(err, domain.ErrModelUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})

	// Client gave up mid-request; nothing useful to send back
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		c.AbortWithStatus(http.StatusRequestTimeout)

	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
