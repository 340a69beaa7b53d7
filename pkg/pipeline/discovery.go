package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/foundrygate/gateway-validator/internal/models"
	valErrors "github.com/foundrygate/gateway-validator/pkg/errors"
	"github.com/foundrygate/gateway-validator/pkg/gateway"
	"github.com/foundrygate/gateway-validator/pkg/printer"
)

// discoveryStage validates model discovery. Static connections get a
// structural walk of the declared deployments; dynamic ones get live probes
// of the list-models and get-model endpoints with provider-shaped response
// parsing.
type discoveryStage struct {
	client *gateway.Client
	out    *printer.Printer
}

func (s *discoveryStage) Name() string { return "model discovery validation" }

func (s *discoveryStage) Run(ctx context.Context, state *State) error {
	s.out.Header("Model Discovery Validation")
	cfg := state.Config

	if cfg.HasStaticModels() {
		return s.validateStatic(cfg)
	}
	return s.validateDynamic(ctx, state)
}

func (s *discoveryStage) validateStatic(cfg *models.ConnectionConfig) error {
	s.out.Info("Validating static models configuration...")

	for i, model := range cfg.StaticModels {
		name := model.Name
		if name == "" {
			name = fmt.Sprintf("Model %d", i+1)
		}
		s.out.Detail("📋 Validating model: %s", name)

		info := model.Properties.Model
		if info.Name == "" {
			s.out.Failure("   Missing model name for %s", name)
			return valErrors.NewParameterError("static model %s missing model name", name)
		}
		if info.Format == "" {
			s.out.Failure("   Missing model format for %s", name)
			return valErrors.NewParameterError("static model %s missing model format", name)
		}
		if !knownModelFormat(info.Format) {
			s.out.Warn("Warning: Unexpected model format %q for %s", info.Format, name)
			s.out.Detail("Valid formats: %s", strings.Join(knownModelFormats, ", "))
		}

		s.out.Detail("   Model: %s", info.Name)
		s.out.Detail("   Version: %s", orDefault(info.Version, "Not specified"))
		s.out.Detail("   Format: %s", info.Format)
	}

	s.out.Success("Static models validation completed - %d models configured", len(cfg.StaticModels))
	return nil
}

var knownModelFormats = []string{"OpenAI", "Anthropic", "NonOpenAI"}

func knownModelFormat(format string) bool {
	for _, f := range knownModelFormats {
		if f == format {
			return true
		}
	}
	return false
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func (s *discoveryStage) validateDynamic(ctx context.Context, state *State) error {
	s.out.Info("Testing dynamic discovery endpoints...")
	cfg := state.Config
	d := cfg.ModelDiscovery
	headers := state.Headers()

	names, err := s.probeListModels(ctx, cfg, d, headers)
	if err != nil {
		return err
	}
	state.Discovered = names
	s.out.Success("Found %d models in discovery response", len(names))

	return s.probeGetModel(ctx, cfg, d, headers, names)
}

func (s *discoveryStage) probeListModels(ctx context.Context, cfg *models.ConnectionConfig, d *models.ModelDiscovery, headers map[string]string) ([]string, error) {
	listURL := cfg.TargetURL + d.ListModelsEndpoint
	if cfg.DeploymentAPIVersion != "" {
		listURL += "?api-version=" + cfg.DeploymentAPIVersion
	}

	s.out.Info("Testing list models endpoint:")
	s.out.Detail("URL: %s", listURL)
	s.out.Plain("%s", gateway.CurlGet(listURL, headers, gateway.AuthHeaderName(cfg)))
	s.out.Blank()

	resp, err := s.client.Get(ctx, listURL, headers)
	if err != nil {
		s.out.Failure("Error testing list models endpoint: %v", err)
		return nil, err
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		s.printDiscoveryAuthGuidance(cfg)
		return nil, valErrors.NewUnauthorizedError(listURL)
	case resp.StatusCode != http.StatusOK:
		s.out.Failure("List models endpoint failed: %d", resp.StatusCode)
		s.out.Plain("The list models endpoint is not working correctly")
		s.out.Plain("Response: %s", resp.BodyPreview(200))
		return nil, valErrors.NewDiscoveryError("list models endpoint failed: %d", resp.StatusCode)
	}
	s.out.Success("List models endpoint working")

	names, err := parseModelList(resp.Body, d.Provider)
	if err != nil {
		s.out.Failure("Error: List models response is not valid JSON")
		return nil, valErrors.NewDiscoveryError("list models response is not valid JSON")
	}
	if len(names) == 0 {
		s.out.Failure("Error: No models found in list response")
		s.out.Info("Actual Response:")
		s.out.Detail("%s", resp.BodyPreview(500))
		s.out.Warn("Response not in expected format for dynamic discovery")
		return nil, valErrors.NewDiscoveryError("no models found in list response")
	}
	return names, nil
}

// parseModelList extracts deployment names from a list-models response.
// AzureOpenAI gateways answer {"value": [{"name": ...}]}, OpenAI ones
// {"data": [{"id": ...}]}.
func parseModelList(body []byte, provider models.Provider) ([]string, error) {
	switch provider {
	case models.ProviderAzureOpenAI:
		var payload struct {
			Value []struct {
				Name string `json:"name"`
			} `json:"value"`
		}
		if err := json.Unmarshal(body, &payload); err != nil {
			return nil, err
		}
		names := make([]string, 0, len(payload.Value))
		for _, m := range payload.Value {
			if m.Name != "" {
				names = append(names, m.Name)
			}
		}
		return names, nil
	default:
		var payload struct {
			Data []struct {
				ID string `json:"id"`
			} `json:"data"`
		}
		if err := json.Unmarshal(body, &payload); err != nil {
			return nil, err
		}
		names := make([]string, 0, len(payload.Data))
		for _, m := range payload.Data {
			if m.ID != "" {
				names = append(names, m.ID)
			}
		}
		return names, nil
	}
}

func (s *discoveryStage) probeGetModel(ctx context.Context, cfg *models.ConnectionConfig, d *models.ModelDiscovery, headers map[string]string, available []string) error {
	if !contains(available, cfg.DeploymentName) {
		s.out.Failure("Error: Deployment %q not found in available models", cfg.DeploymentName)
		s.out.Warn("Available models: %s", previewList(available, 5))
		return valErrors.NewDeploymentNotFoundError(cfg.DeploymentName)
	}

	getURL := cfg.TargetURL + strings.ReplaceAll(d.GetModelEndpoint, deploymentNamePlaceholder, cfg.DeploymentName)
	if cfg.DeploymentAPIVersion != "" {
		getURL += "?api-version=" + cfg.DeploymentAPIVersion
	}

	s.out.Info("Testing get model endpoint:")
	s.out.Detail("URL: %s", getURL)
	s.out.Plain("%s", gateway.CurlGet(getURL, headers, gateway.AuthHeaderName(cfg)))
	s.out.Blank()

	resp, err := s.client.Get(ctx, getURL, headers)
	if err != nil {
		s.out.Failure("Error testing get model endpoint: %v", err)
		return err
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		s.printDiscoveryAuthGuidance(cfg)
		return valErrors.NewUnauthorizedError(getURL)
	case resp.StatusCode != http.StatusOK:
		s.out.Failure("Get model endpoint failed: %d", resp.StatusCode)
		s.out.Plain("The get model endpoint is not working correctly")
		s.out.Plain("Response: %s", resp.BodyPreview(200))
		return valErrors.NewDiscoveryError("get model endpoint failed: %d", resp.StatusCode)
	}
	s.out.Success("Get model endpoint working")

	return s.checkGetModelShape(resp.Body, cfg, d)
}

// checkGetModelShape validates the get-model response against the declared
// provider dialect and flags a misdeclared provider.
func (s *discoveryStage) checkGetModelShape(body []byte, cfg *models.ConnectionConfig, d *models.ModelDiscovery) error {
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		s.out.Failure("Error: Get model response is not valid JSON")
		return valErrors.NewDiscoveryError("get model response is not valid JSON")
	}

	azureShaped := false
	if props, ok := payload["properties"].(map[string]any); ok {
		_, azureShaped = props["model"]
	}

	if d.Provider == models.ProviderAzureOpenAI {
		if !azureShaped {
			s.out.Failure("Error: Response format doesn't match Azure OpenAI expected structure")
			s.out.Info("Actual Response:")
			s.out.Detail("%s", preview(body, 500))
			return valErrors.NewDiscoveryError("get model response not in Azure OpenAI format")
		}
		props := payload["properties"].(map[string]any)
		info, _ := props["model"].(map[string]any)
		name, _ := info["name"].(string)
		version, _ := info["version"].(string)
		format, _ := info["format"].(string)

		s.out.Detail("Model details: %s", orDefault(name, "Unknown"))
		s.out.Detail("Model version: %s", version)
		s.out.Detail("Model format: %s", format)

		if name == "" {
			s.out.Failure("Error: Model name not found in Azure OpenAI response")
			return valErrors.NewDiscoveryError("model name not found in Azure OpenAI response")
		}
		if format == "" {
			s.out.Failure("Error: Model format not specified in Azure OpenAI response")
			return valErrors.NewDiscoveryError("model format not specified in Azure OpenAI response")
		}
		return nil
	}

	// OpenAI provider declared.
	if azureShaped {
		s.out.Failure("Error: Deployment provider mismatch detected!")
		s.out.Failure("   Configuration says: OpenAI")
		s.out.Failure("   Actual response format: Azure OpenAI")
		s.out.Warn("Fix: Change deploymentProvider to 'AzureOpenAI'")
		return valErrors.NewDiscoveryError("deployment provider mismatch: response is Azure OpenAI shaped")
	}

	id, _ := payload["id"].(string)
	if id == "" {
		s.out.Failure("Error: Unexpected response format for OpenAI provider")
		s.out.Info("Actual Response:")
		s.out.Detail("%s", preview(body, 500))
		return valErrors.NewDiscoveryError("get model response not in OpenAI format")
	}
	s.out.Detail("Model ID: %s", id)
	if id != cfg.DeploymentName {
		s.out.Warn("Warning: Model ID %q doesn't match deployment name %q", id, cfg.DeploymentName)
	}
	return nil
}

func (s *discoveryStage) printDiscoveryAuthGuidance(cfg *models.ConnectionConfig) {
	s.out.Failure("Authentication failed: 401 - Unauthorized")
	s.out.Blank()
	printAuthTroubleshooting(s.out, cfg)
	s.out.Plain("💡 Fix the authentication issue before proceeding")
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

func previewList(list []string, n int) string {
	if len(list) <= n {
		return strings.Join(list, ", ")
	}
	return strings.Join(list[:n], ", ") + "..."
}

func preview(body []byte, n int) string {
	if len(body) <= n {
		return string(body)
	}
	return string(body[:n]) + "..."
}
