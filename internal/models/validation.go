package models

import (
	"time"

	"github.com/google/uuid"
)

type StageStatus string

const (
	StageStatusPassed  StageStatus = "passed"
	StageStatusFailed  StageStatus = "failed"
	StageStatusSkipped StageStatus = "skipped"
)

// StageResult records the outcome of one pipeline stage.
type StageResult struct {
	Name     string        `json:"name"`
	Status   StageStatus   `json:"status"`
	Error    string        `json:"error,omitempty"`
	Warnings []string      `json:"warnings,omitempty"`
	Duration time.Duration `json:"duration"`
}

type RunStatus string

const (
	RunStatusPassed RunStatus = "passed"
	RunStatusFailed RunStatus = "failed"
)

// ValidationRun is one full pipeline execution against a connection.
type ValidationRun struct {
	ID             uuid.UUID
	ConnectionName string
	Variant        Variant
	TargetURL      string
	DeploymentName string
	Status         RunStatus
	Stages         []StageResult
	StartedAt      time.Time
	FinishedAt     time.Time
}

func (r *ValidationRun) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Passed reports whether every executed stage passed.
func (r *ValidationRun) Passed() bool {
	return r.Status == RunStatusPassed
}
