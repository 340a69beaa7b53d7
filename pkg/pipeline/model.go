package pipeline

import (
	"context"

	valErrors "github.com/foundrygate/gateway-validator/pkg/errors"
	"github.com/foundrygate/gateway-validator/pkg/printer"
)

// modelStage confirms the requested deployment exists. Static connections
// are checked against the declared list; dynamic ones were already proven
// by the discovery stage's get-model probe.
type modelStage struct {
	out *printer.Printer
}

func (s *modelStage) Name() string { return "model validation" }

func (s *modelStage) Run(ctx context.Context, state *State) error {
	s.out.Header("Model Validation")
	cfg := state.Config

	if !cfg.HasStaticModels() {
		s.out.Success("Model %q validation completed (via dynamic discovery)", cfg.DeploymentName)
		return nil
	}

	s.out.Info("Checking if deployment %q exists in static models...", cfg.DeploymentName)
	for _, model := range cfg.StaticModels {
		if model.Name != cfg.DeploymentName {
			continue
		}
		info := model.Properties.Model
		s.out.Success("Found deployment %q", cfg.DeploymentName)
		s.out.Detail("Model: %s", orDefault(info.Name, "Unknown"))
		s.out.Detail("Version: %s", orDefault(info.Version, "Not specified"))
		s.out.Detail("Format: %s", orDefault(info.Format, "Unknown"))
		return nil
	}

	s.out.Failure("Error: Deployment %q not found in static models", cfg.DeploymentName)
	s.out.Warn("Available deployments:")
	for _, name := range cfg.StaticModelNames() {
		s.out.Detail("  - %s", name)
	}
	return valErrors.NewDeploymentNotFoundError(cfg.DeploymentName)
}
