package v1

import (
	"github.com/foundrygate/gateway-validator/internal/models"
)

// NewRunFromModel converts a models.ValidationRun to its API view.
func NewRunFromModel(run models.ValidationRun) ValidationRun {
	stages := make([]StageResult, 0, len(run.Stages))
	for _, stage := range run.Stages {
		stages = append(stages, StageResult{
			Name:       stage.Name,
			Status:     string(stage.Status),
			Error:      stage.Error,
			Warnings:   stage.Warnings,
			DurationMS: stage.Duration.Milliseconds(),
		})
	}

	return ValidationRun{
		ID:             run.ID.String(),
		ConnectionName: run.ConnectionName,
		Variant:        string(run.Variant),
		TargetURL:      run.TargetURL,
		DeploymentName: run.DeploymentName,
		Status:         string(run.Status),
		Stages:         stages,
		StartedAt:      run.StartedAt,
		FinishedAt:     run.FinishedAt,
		DurationMS:     run.Duration().Milliseconds(),
	}
}

// NewHealthFromModel converts a models.ConnectionHealth to its API view.
func NewHealthFromModel(h models.ConnectionHealth) ConnectionHealth {
	return ConnectionHealth{
		ConnectionName:      h.ConnectionName,
		Variant:             string(h.Variant),
		TargetURL:           h.TargetURL,
		Healthy:             h.Healthy(),
		LastStatus:          string(h.LastStatus),
		LastLatencyMS:       h.LastLatency.Milliseconds(),
		ConsecutiveFailures: h.ConsecutiveFailures,
		LastCheckedAt:       h.LastCheckedAt,
	}
}
