package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"carwiseiq/internal/adapters/primary/http/dto"
)

func (h *Handler) ListArtifacts(c *gin.Context) {
	c.JSON(http.StatusOK, dto.ToListArtifactsResponse(h.registry.Candidates(), h.registry.Active()))
}

func (h *Handler) ReloadArtifacts(c *gin.Context) {
	artifact, err := h.registry.Reload(c.Request.Context())
	if err != nil {
		log.WithError(err).Error("artifact reload failed")
		mapDomainError(c, err)
		return
	}

	log.WithField("version", artifact.Version).Info("artifact reloaded")
	c.JSON(http.StatusOK, dto.ToListArtifactsResponse(h.registry.Candidates(), artifact))
}
