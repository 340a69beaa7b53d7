package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/foundrygate/gateway-validator/internal/models"
	srvErrors "github.com/foundrygate/gateway-validator/pkg/errors"
)

// RunStore persists validation run records.
type RunStore struct {
	db *sql.DB
}

func NewRunStore(db *sql.DB) *RunStore {
	return &RunStore{db: db}
}

// Save inserts a finished run.
func (s *RunStore) Save(ctx context.Context, run *models.ValidationRun) error {
	stages, err := json.Marshal(run.Stages)
	if err != nil {
		return fmt.Errorf("failed to encode stage results: %w", err)
	}
	_, err = s.db.ExecContext(ctx, queryInsertRun,
		run.ID.String(),
		run.ConnectionName,
		string(run.Variant),
		run.TargetURL,
		run.DeploymentName,
		string(run.Status),
		string(stages),
		run.StartedAt,
		run.FinishedAt,
	)
	return err
}

// Get retrieves one run by id.
func (s *RunStore) Get(ctx context.Context, id uuid.UUID) (*models.ValidationRun, error) {
	row := s.db.QueryRowContext(ctx, queryGetRun, id.String())
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, srvErrors.NewRunNotFoundError(id.String())
	}
	return run, err
}

// ListOption customizes the run listing query.
type ListOption func(sq.SelectBuilder) sq.SelectBuilder

// ByConnection filters runs by connection name.
func ByConnection(name string) ListOption {
	return func(b sq.SelectBuilder) sq.SelectBuilder {
		return b.Where(sq.Eq{"connection_name": name})
	}
}

// ByStatus filters runs by final status.
func ByStatus(status models.RunStatus) ListOption {
	return func(b sq.SelectBuilder) sq.SelectBuilder {
		return b.Where(sq.Eq{"status": string(status)})
	}
}

// Since filters runs started at or after t.
func Since(t time.Time) ListOption {
	return func(b sq.SelectBuilder) sq.SelectBuilder {
		return b.Where(sq.GtOrEq{"started_at": t})
	}
}

// WithLimit caps the number of returned runs.
func WithLimit(limit uint64) ListOption {
	return func(b sq.SelectBuilder) sq.SelectBuilder {
		return b.Limit(limit)
	}
}

// List returns runs newest first.
func (s *RunStore) List(ctx context.Context, opts ...ListOption) ([]models.ValidationRun, error) {
	builder := sq.Select(
		"id", "connection_name", "variant", "target_url", "deployment_name",
		"status", "stages", "started_at", "finished_at").
		From("validation_runs").
		OrderBy("started_at DESC")
	for _, opt := range opts {
		builder = opt(builder)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []models.ValidationRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*models.ValidationRun, error) {
	var (
		id, connectionName, variant, targetURL string
		deploymentName, status, stages         string
		startedAt, finishedAt                  time.Time
	)
	if err := row.Scan(&id, &connectionName, &variant, &targetURL, &deploymentName, &status, &stages, &startedAt, &finishedAt); err != nil {
		return nil, err
	}

	runID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid run id %q: %w", id, err)
	}

	run := &models.ValidationRun{
		ID:             runID,
		ConnectionName: connectionName,
		Variant:        models.Variant(variant),
		TargetURL:      targetURL,
		DeploymentName: deploymentName,
		Status:         models.RunStatus(status),
		StartedAt:      startedAt,
		FinishedAt:     finishedAt,
	}
	if err := json.Unmarshal([]byte(stages), &run.Stages); err != nil {
		return nil, fmt.Errorf("failed to decode stage results: %w", err)
	}
	return run, nil
}
