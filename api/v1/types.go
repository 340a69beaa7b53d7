package v1

import "time"

// StageResult is the API view of one pipeline stage outcome.
type StageResult struct {
	Name       string   `json:"name"`
	Status     string   `json:"status"`
	Error      string   `json:"error,omitempty"`
	Warnings   []string `json:"warnings,omitempty"`
	DurationMS int64    `json:"durationMs"`
}

// ValidationRun is the API view of one pipeline execution.
type ValidationRun struct {
	ID             string        `json:"id"`
	ConnectionName string        `json:"connectionName"`
	Variant        string        `json:"variant"`
	TargetURL      string        `json:"targetUrl"`
	DeploymentName string        `json:"deploymentName"`
	Status         string        `json:"status"`
	Stages         []StageResult `json:"stages"`
	StartedAt      time.Time     `json:"startedAt"`
	FinishedAt     time.Time     `json:"finishedAt"`
	DurationMS     int64         `json:"durationMs"`
}

// RunListResponse wraps a run listing.
type RunListResponse struct {
	Total int             `json:"total"`
	Runs  []ValidationRun `json:"runs"`
}

// ConnectionHealth is the API view of the cached health of a connection.
type ConnectionHealth struct {
	ConnectionName      string    `json:"connectionName"`
	Variant             string    `json:"variant"`
	TargetURL           string    `json:"targetUrl"`
	Healthy             bool      `json:"healthy"`
	LastStatus          string    `json:"lastStatus"`
	LastLatencyMS       int64     `json:"lastLatencyMs"`
	ConsecutiveFailures int       `json:"consecutiveFailures"`
	LastCheckedAt       time.Time `json:"lastCheckedAt"`
}

// HealthListResponse wraps a health listing.
type HealthListResponse struct {
	Total       int                `json:"total"`
	Connections []ConnectionHealth `json:"connections"`
}

// ValidationRequest triggers a validation run in service mode. Secrets are
// accepted in the request body and never persisted.
type ValidationRequest struct {
	ParamsPath     string `json:"paramsPath" binding:"required"`
	Variant        string `json:"variant" binding:"required"`
	DeploymentName string `json:"deploymentName" binding:"required"`
	TargetURL      string `json:"targetUrl,omitempty"`
	APIKey         string `json:"apiKey,omitempty"`
	ClientSecret   string `json:"clientSecret,omitempty"`
}
