package store

// Validation run queries
const (
	queryInsertRun = `
		INSERT INTO validation_runs
			(id, connection_name, variant, target_url, deployment_name, status, stages, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	queryGetRun = `
		SELECT id, connection_name, variant, target_url, deployment_name, status, stages, started_at, finished_at
		FROM validation_runs WHERE id = ?`
)

// Connection health queries
const (
	queryUpsertHealth = `
		INSERT INTO connection_health
			(connection_name, variant, target_url, last_status, last_latency_ms, consecutive_failures, last_checked_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (connection_name) DO UPDATE SET
			variant = EXCLUDED.variant,
			target_url = EXCLUDED.target_url,
			last_status = EXCLUDED.last_status,
			last_latency_ms = EXCLUDED.last_latency_ms,
			consecutive_failures = CASE
				WHEN EXCLUDED.last_status = 'passed' THEN 0
				ELSE connection_health.consecutive_failures + 1
			END,
			last_checked_at = EXCLUDED.last_checked_at`

	queryGetHealth = `
		SELECT connection_name, variant, target_url, last_status, last_latency_ms, consecutive_failures, last_checked_at
		FROM connection_health WHERE connection_name = ?`

	queryListHealth = `
		SELECT connection_name, variant, target_url, last_status, last_latency_ms, consecutive_failures, last_checked_at
		FROM connection_health ORDER BY connection_name`
)
