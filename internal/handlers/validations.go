package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	v1 "github.com/foundrygate/gateway-validator/api/v1"
	"github.com/foundrygate/gateway-validator/internal/models"
	"github.com/foundrygate/gateway-validator/internal/params"
	"github.com/foundrygate/gateway-validator/internal/services"
	"github.com/foundrygate/gateway-validator/pkg/errors"
)

const (
	defaultRunLimit = 20
	maxRunLimit     = 100
)

// CreateValidation runs the validation pipeline for one connection
// (POST /validations)
func (h *Handler) CreateValidation(c *gin.Context) {
	var req v1.ValidationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	variant, err := models.ParseVariant(req.Variant)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	outcome := h.validationSrv.Validate(c.Request.Context(), services.Request{
		ParamsPath: req.ParamsPath,
		Variant:    variant,
		Secrets: params.Secrets{
			APIKey:         req.APIKey,
			ClientSecret:   req.ClientSecret,
			DeploymentName: req.DeploymentName,
			TargetURL:      req.TargetURL,
		},
	})
	if outcome.Err != nil {
		status := http.StatusInternalServerError
		if errors.IsParameterError(outcome.Err) {
			status = http.StatusBadRequest
		}
		zap.S().Named("validation_handler").Errorw("validation request failed", "error", outcome.Err)
		c.JSON(status, gin.H{"error": outcome.Err.Error()})
		return
	}

	c.JSON(http.StatusCreated, v1.NewRunFromModel(*outcome.Run))
}

// ListValidations returns recent run history, newest first
// (GET /validations)
func (h *Handler) ListValidations(c *gin.Context) {
	limit := defaultRunLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = parsed
		if limit > maxRunLimit {
			limit = maxRunLimit
		}
	}

	runs, err := h.validationSrv.Runs(c.Request.Context(), c.Query("connection"), uint64(limit))
	if err != nil {
		zap.S().Named("validation_handler").Errorw("failed to list runs", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list validation runs"})
		return
	}

	apiRuns := make([]v1.ValidationRun, 0, len(runs))
	for _, run := range runs {
		apiRuns = append(apiRuns, v1.NewRunFromModel(run))
	}

	c.JSON(http.StatusOK, v1.RunListResponse{
		Total: len(apiRuns),
		Runs:  apiRuns,
	})
}

// GetValidation returns one run by id
// (GET /validations/{id})
func (h *Handler) GetValidation(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid run id"})
		return
	}

	run, err := h.validationSrv.Run(c.Request.Context(), id)
	if err != nil {
		if errors.IsResourceNotFoundError(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		zap.S().Named("validation_handler").Errorw("failed to get run", "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get validation run"})
		return
	}

	c.JSON(http.StatusOK, v1.NewRunFromModel(*run))
}
