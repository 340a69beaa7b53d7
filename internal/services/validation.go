package services

import (
	"bytes"
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/foundrygate/gateway-validator/internal/models"
	"github.com/foundrygate/gateway-validator/internal/params"
	"github.com/foundrygate/gateway-validator/internal/store"
	"github.com/foundrygate/gateway-validator/pkg/gateway"
	"github.com/foundrygate/gateway-validator/pkg/pipeline"
	"github.com/foundrygate/gateway-validator/pkg/printer"
	"github.com/foundrygate/gateway-validator/pkg/scheduler"
)

// Request describes one connection to validate.
type Request struct {
	ParamsPath string
	Variant    models.Variant
	Secrets    params.Secrets
	Verbose    bool
}

// Outcome pairs a run record with the terminal output it produced.
type Outcome struct {
	Run    *models.ValidationRun
	Output string
	Err    error
}

// Validation orchestrates pipeline runs: bounded-parallel execution via the
// scheduler, terminal rendering, and persistence of run history and
// connection health when a store is configured.
type Validation struct {
	scheduler *scheduler.Scheduler[Outcome]
	client    *gateway.Client
	store     *store.Store
	log       *zap.SugaredLogger
}

// NewValidationService creates the service. st may be nil, which disables
// run history and the health cache.
func NewValidationService(s *scheduler.Scheduler[Outcome], client *gateway.Client, st *store.Store) *Validation {
	return &Validation{
		scheduler: s,
		client:    client,
		store:     st,
		log:       zap.S().Named("validation_service"),
	}
}

// ValidateAll runs every request through the pipeline, with parallelism
// bounded by the scheduler's worker count. Each run renders into its own
// buffer so concurrent runs never interleave their terminal output.
func (s *Validation) ValidateAll(ctx context.Context, reqs []Request) []Outcome {
	futures := make([]*scheduler.Future[scheduler.Result[Outcome]], 0, len(reqs))
	for _, req := range reqs {
		req := req
		futures = append(futures, s.scheduler.AddWork(func(ctx context.Context) (Outcome, error) {
			return s.validateOne(ctx, req)
		}))
	}

	outcomes := make([]Outcome, 0, len(reqs))
	for i, future := range futures {
		select {
		case result := <-future.C():
			outcome := result.Data
			if result.Err != nil && outcome.Err == nil {
				outcome.Err = result.Err
			}
			outcomes = append(outcomes, outcome)
		case <-ctx.Done():
			future.Stop()
			outcomes = append(outcomes, Outcome{Err: ctx.Err()})
			s.log.Warnw("validation canceled", "params", reqs[i].ParamsPath)
		}
	}
	return outcomes
}

// Validate runs a single request synchronously on the caller's goroutine.
func (s *Validation) Validate(ctx context.Context, req Request) Outcome {
	outcome, err := s.validateOne(ctx, req)
	if err != nil {
		outcome.Err = err
	}
	return outcome
}

func (s *Validation) validateOne(ctx context.Context, req Request) (Outcome, error) {
	var buf bytes.Buffer
	out := printer.New(syncWriter(&buf)).WithVerbose(req.Verbose)

	file, err := params.Load(req.ParamsPath)
	if err != nil {
		out.Failure("%v", err)
		return Outcome{Output: buf.String()}, err
	}
	cfg, err := file.Resolve(req.Variant, req.Secrets)
	if err != nil {
		out.Failure("%v", err)
		return Outcome{Output: buf.String()}, err
	}

	run := pipeline.New(s.client, out).Validate(ctx, cfg)
	s.persist(ctx, run)
	return Outcome{Run: run, Output: buf.String()}, nil
}

func (s *Validation) persist(ctx context.Context, run *models.ValidationRun) {
	if s.store == nil {
		return
	}
	if run.ConnectionName == "" {
		s.log.Debugw("skipping persistence for unnamed connection", "run", run.ID)
		return
	}
	if err := s.store.Runs().Save(ctx, run); err != nil {
		s.log.Warnw("failed to save validation run", "run", run.ID, "error", err)
		return
	}
	if err := s.store.Health().Record(ctx, run); err != nil {
		s.log.Warnw("failed to record connection health", "connection", run.ConnectionName, "error", err)
	}
}

// Runs returns recent run history, newest first.
func (s *Validation) Runs(ctx context.Context, connection string, limit uint64) ([]models.ValidationRun, error) {
	if s.store == nil {
		return nil, fmt.Errorf("run history is disabled (no data folder configured)")
	}
	opts := []store.ListOption{store.WithLimit(limit)}
	if connection != "" {
		opts = append(opts, store.ByConnection(connection))
	}
	return s.store.Runs().List(ctx, opts...)
}

// Run returns one run by id.
func (s *Validation) Run(ctx context.Context, id uuid.UUID) (*models.ValidationRun, error) {
	if s.store == nil {
		return nil, fmt.Errorf("run history is disabled (no data folder configured)")
	}
	return s.store.Runs().Get(ctx, id)
}

// syncWriter serializes writes from pipeline stages; stages themselves are
// sequential but the gateway client logs may write from retries.
func syncWriter(buf *bytes.Buffer) *lockedWriter {
	return &lockedWriter{buf: buf}
}

type lockedWriter struct {
	mu  sync.Mutex
	buf *bytes.Buffer
}

func (w *lockedWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.buf.Write(p)
}
