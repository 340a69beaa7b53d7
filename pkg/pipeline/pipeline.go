// Package pipeline implements the four-stage connection validation pipeline:
// parameter validation, model discovery validation, model validation and the
// end-to-end chat completions test. Stages run in order and the pipeline
// stops at the first failure; each stage records its verdict and duration so
// service-mode callers can persist the full breakdown.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/foundrygate/gateway-validator/internal/models"
	"github.com/foundrygate/gateway-validator/pkg/gateway"
	"github.com/foundrygate/gateway-validator/pkg/printer"
)

// State is the mutable context shared by the stages of one run.
type State struct {
	Config *models.ConnectionConfig

	// AccessToken holds the OAuth2 token obtained during parameter
	// validation, empty for api-key connections.
	AccessToken string

	// Discovered holds the deployment names returned by the list-models
	// endpoint when dynamic discovery is configured.
	Discovered []string

	warnings []string
}

// Warn records a non-fatal finding on the current stage.
func (s *State) Warn(format string, args ...any) {
	s.warnings = append(s.warnings, fmt.Sprintf(format, args...))
}

// Headers builds the request headers for the connection using whatever
// token the run has acquired.
func (s *State) Headers() map[string]string {
	return gateway.BuildHeaders(s.Config, s.AccessToken)
}

// Stage is one step of the validation pipeline.
type Stage interface {
	Name() string
	Run(ctx context.Context, state *State) error
}

type Pipeline struct {
	client *gateway.Client
	out    *printer.Printer
	log    *zap.SugaredLogger
}

func New(client *gateway.Client, out *printer.Printer) *Pipeline {
	return &Pipeline{
		client: client,
		out:    out,
		log:    zap.S().Named("pipeline"),
	}
}

func (p *Pipeline) stages() []Stage {
	return []Stage{
		&parametersStage{client: p.client, out: p.out},
		&discoveryStage{client: p.client, out: p.out},
		&modelStage{out: p.out},
		&chatStage{client: p.client, out: p.out},
	}
}

// Validate runs the full pipeline against one connection and returns the
// run record. The pipeline never returns an error: failures are captured in
// the run's stage results.
func (p *Pipeline) Validate(ctx context.Context, cfg *models.ConnectionConfig) *models.ValidationRun {
	run := &models.ValidationRun{
		ID:             uuid.New(),
		ConnectionName: cfg.ConnectionName,
		Variant:        cfg.Variant,
		TargetURL:      cfg.TargetURL,
		DeploymentName: cfg.DeploymentName,
		Status:         models.RunStatusPassed,
		StartedAt:      time.Now(),
	}

	state := &State{Config: cfg}
	failed := false
	for _, stage := range p.stages() {
		if failed {
			run.Stages = append(run.Stages, models.StageResult{
				Name:   stage.Name(),
				Status: models.StageStatusSkipped,
			})
			continue
		}

		state.warnings = nil
		start := time.Now()
		err := stage.Run(ctx, state)
		result := models.StageResult{
			Name:     stage.Name(),
			Status:   models.StageStatusPassed,
			Warnings: state.warnings,
			Duration: time.Since(start),
		}
		if err != nil {
			result.Status = models.StageStatusFailed
			result.Error = err.Error()
			failed = true
			p.log.Infow("stage failed",
				"connection", cfg.ConnectionName,
				"stage", stage.Name(),
				"error", err)
		}
		run.Stages = append(run.Stages, result)
	}

	run.FinishedAt = time.Now()
	if failed {
		run.Status = models.RunStatusFailed
	} else {
		p.printVerdict(cfg)
	}
	return run
}

func (p *Pipeline) printVerdict(cfg *models.ConnectionConfig) {
	p.out.Blank()
	p.out.Success("ALL VALIDATION STAGES PASSED")
	p.out.Success("Connection %q is ready for deployment.", cfg.ConnectionName)
	p.out.Blank()
}
