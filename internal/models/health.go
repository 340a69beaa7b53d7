package models

import "time"

// ConnectionHealth is the cached health row kept per connection name. It is
// updated after every validation run so service-mode clients can read the
// last known state without re-probing the gateway.
type ConnectionHealth struct {
	ConnectionName      string
	Variant             Variant
	TargetURL           string
	LastStatus          RunStatus
	LastLatency         time.Duration
	ConsecutiveFailures int
	LastCheckedAt       time.Time
}

// Healthy reports whether the last validation of the connection passed.
func (h *ConnectionHealth) Healthy() bool {
	return h.LastStatus == RunStatusPassed
}
