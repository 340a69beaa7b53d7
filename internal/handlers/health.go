package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	v1 "github.com/foundrygate/gateway-validator/api/v1"
	"github.com/foundrygate/gateway-validator/pkg/errors"
)

// ListHealth returns the cached health of every known connection
// (GET /health)
func (h *Handler) ListHealth(c *gin.Context) {
	entries, err := h.healthSrv.List(c.Request.Context())
	if err != nil {
		zap.S().Named("health_handler").Errorw("failed to list connection health", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list connection health"})
		return
	}

	apiEntries := make([]v1.ConnectionHealth, 0, len(entries))
	for _, entry := range entries {
		apiEntries = append(apiEntries, v1.NewHealthFromModel(entry))
	}

	c.JSON(http.StatusOK, v1.HealthListResponse{
		Total:       len(apiEntries),
		Connections: apiEntries,
	})
}

// GetConnectionHealth returns the cached health of one connection
// (GET /health/{connection})
func (h *Handler) GetConnectionHealth(c *gin.Context) {
	entry, err := h.healthSrv.Get(c.Request.Context(), c.Param("connection"))
	if err != nil {
		if errors.IsResourceNotFoundError(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		zap.S().Named("health_handler").Errorw("failed to get connection health", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get connection health"})
		return
	}

	c.JSON(http.StatusOK, v1.NewHealthFromModel(*entry))
}
