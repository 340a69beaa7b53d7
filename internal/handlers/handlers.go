package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/foundrygate/gateway-validator/internal/services"
)

type Handler struct {
	validationSrv *services.Validation
	healthSrv     *services.Health
}

func New(validationSrv *services.Validation, healthSrv *services.Health) *Handler {
	return &Handler{
		validationSrv: validationSrv,
		healthSrv:     healthSrv,
	}
}

// RegisterRoutes binds the API routes onto the given group.
func RegisterRoutes(router *gin.RouterGroup, h *Handler) {
	router.POST("/validations", h.CreateValidation)
	router.GET("/validations", h.ListValidations)
	router.GET("/validations/:id", h.GetValidation)
	router.GET("/health", h.ListHealth)
	router.GET("/health/:connection", h.GetConnectionHealth)
}
