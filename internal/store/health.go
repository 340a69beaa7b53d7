package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/foundrygate/gateway-validator/internal/models"
	srvErrors "github.com/foundrygate/gateway-validator/pkg/errors"
)

// HealthStore maintains the per-connection health cache. One row per
// connection name; consecutive failures accumulate in SQL so concurrent
// writers stay consistent.
type HealthStore struct {
	db *sql.DB
}

func NewHealthStore(db *sql.DB) *HealthStore {
	return &HealthStore{db: db}
}

// Record updates the cache with the outcome of a validation run.
func (s *HealthStore) Record(ctx context.Context, run *models.ValidationRun) error {
	initialFailures := 0
	if run.Status != models.RunStatusPassed {
		initialFailures = 1
	}
	_, err := s.db.ExecContext(ctx, queryUpsertHealth,
		run.ConnectionName,
		string(run.Variant),
		run.TargetURL,
		string(run.Status),
		run.Duration().Milliseconds(),
		initialFailures,
		run.FinishedAt,
	)
	return err
}

// Get returns the cached health of one connection.
func (s *HealthStore) Get(ctx context.Context, connectionName string) (*models.ConnectionHealth, error) {
	row := s.db.QueryRowContext(ctx, queryGetHealth, connectionName)
	health, err := scanHealth(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, srvErrors.NewConnectionNotFoundError(connectionName)
	}
	return health, err
}

// List returns all cached connection health rows.
func (s *HealthStore) List(ctx context.Context) ([]models.ConnectionHealth, error) {
	rows, err := s.db.QueryContext(ctx, queryListHealth)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.ConnectionHealth
	for rows.Next() {
		health, err := scanHealth(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *health)
	}
	return out, rows.Err()
}

func scanHealth(row rowScanner) (*models.ConnectionHealth, error) {
	var (
		name, variant, targetURL, status string
		latencyMS                        int64
		failures                         int
		checkedAt                        time.Time
	)
	if err := row.Scan(&name, &variant, &targetURL, &status, &latencyMS, &failures, &checkedAt); err != nil {
		return nil, err
	}
	return &models.ConnectionHealth{
		ConnectionName:      name,
		Variant:             models.Variant(variant),
		TargetURL:           targetURL,
		LastStatus:          models.RunStatus(status),
		LastLatency:         time.Duration(latencyMS) * time.Millisecond,
		ConsecutiveFailures: failures,
		LastCheckedAt:       checkedAt,
	}, nil
}
