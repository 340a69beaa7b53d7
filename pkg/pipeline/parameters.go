package pipeline

import (
	"context"
	"strings"
	"time"

	"github.com/foundrygate/gateway-validator/internal/models"
	valErrors "github.com/foundrygate/gateway-validator/pkg/errors"
	"github.com/foundrygate/gateway-validator/pkg/gateway"
	"github.com/foundrygate/gateway-validator/pkg/printer"
)

const deploymentNamePlaceholder = "{deploymentName}"

var validProviders = []models.Provider{models.ProviderAzureOpenAI, models.ProviderOpenAI}

// parametersStage checks the resolved configuration before any gateway
// traffic: required fields per variant, discovery method exclusivity,
// static and dynamic structure, and the auth scheme. For OAuth2 connections
// it also acquires the access token so later stages fail on gateway
// problems, not auth plumbing.
type parametersStage struct {
	client *gateway.Client
	out    *printer.Printer
}

func (s *parametersStage) Name() string { return "parameter validation" }

func (s *parametersStage) Run(ctx context.Context, state *State) error {
	s.out.Header("Parameter Validation")
	cfg := state.Config

	if err := s.checkBasics(cfg); err != nil {
		return err
	}
	if err := s.checkDiscoveryExclusivity(cfg); err != nil {
		return err
	}
	if err := s.checkStaticStructure(cfg, state); err != nil {
		return err
	}
	if err := s.checkDynamicStructure(cfg); err != nil {
		return err
	}
	if err := s.checkAuth(ctx, cfg, state); err != nil {
		return err
	}

	s.printSummary(cfg)
	s.out.Success("Parameter validation completed successfully")
	return nil
}

func (s *parametersStage) checkBasics(cfg *models.ConnectionConfig) error {
	s.out.Check("Basic Configuration Check:")

	if cfg.TargetURL == "" {
		if cfg.Variant == models.VariantAPIM {
			s.out.Failure("Target URL is required. Get it from APIM Settings tab (Base URL field).")
			s.out.Blank()
			s.out.Info("How to get Target URL:")
			s.out.Plain("1. Go to your APIM API in Azure portal")
			s.out.Plain("2. Click on 'Settings' tab")
			s.out.Plain("3. Copy the complete 'Base URL' value")
			s.out.Plain("4. Use that exact URL with --target-url")
			return valErrors.NewParameterError("target URL is required (use --target-url)")
		}
		s.out.Failure("Error: targetUrl is required in parameter file")
		return valErrors.NewParameterError("targetUrl is required in parameter file")
	}
	s.out.Plain("✅ Target URL configured")

	if cfg.DeploymentName == "" {
		s.out.Failure("Error: deployment name is required (use --deployment-name)")
		return valErrors.NewParameterError("deployment name is required")
	}
	s.out.Plain("✅ Deployment name provided")

	switch cfg.Variant {
	case models.VariantAPIM:
		if cfg.APIMResourceID == "" {
			s.out.Failure("Error: apimResourceId is required in parameter file")
			return valErrors.NewParameterError("apimResourceId is required in parameter file")
		}
		s.out.Plain("✅ APIM Resource ID configured")

		if cfg.APIName == "" {
			s.out.Failure("Error: apiName is required in parameter file")
			return valErrors.NewParameterError("apiName is required in parameter file")
		}
		s.out.Plain("✅ API Name configured")

		if cfg.AuthType != models.AuthTypeAPIKey {
			s.out.Failure("Error: APIM connections support ApiKey authentication only")
			return valErrors.NewParameterError("APIM connections support ApiKey authentication only")
		}
	case models.VariantModelGateway:
		if cfg.GatewayName == "" {
			s.out.Warn("Warning: gatewayName not set in parameter file")
		}
	}

	s.out.Plain("✅ Basic configuration valid")
	return nil
}

func (s *parametersStage) checkDiscoveryExclusivity(cfg *models.ConnectionConfig) error {
	s.out.Check("Model Discovery Method Check:")

	hasStatic := cfg.HasStaticModels()
	hasDynamic := cfg.HasDynamicDiscovery()
	hasPartialDynamic := cfg.ModelDiscovery != nil && !hasDynamic

	switch {
	case hasStatic && (hasDynamic || hasPartialDynamic):
		s.out.Failure("Error: Both static models and dynamic discovery configured")
		s.out.Plain("You must configure exactly one model discovery method, not both.")
		s.out.Blank()
		s.out.Info("Fix in your parameter file:")
		s.out.Plain("Choose one of these approaches:")
		s.out.Plain("1. Use static models: Keep 'staticModels' and remove dynamic discovery parameters")
		s.out.Plain("   - Remove: listModelsEndpoint, getModelEndpoint, deploymentProvider")
		s.out.Plain("2. Use dynamic discovery: Remove 'staticModels' and keep dynamic parameters")
		s.out.Plain("   - Keep: listModelsEndpoint, getModelEndpoint, deploymentProvider")
		return valErrors.NewDiscoveryConflictError()

	case hasPartialDynamic:
		s.out.Failure("Error: Incomplete dynamic discovery configuration")
		s.out.Plain("All three parameters are required for dynamic discovery.")
		s.out.Blank()
		s.out.Info("Missing or incomplete parameters in your parameter file:")
		s.printDynamicChecklist(cfg.ModelDiscovery)
		return valErrors.NewParameterError("incomplete dynamic discovery configuration")

	case !hasStatic && !hasDynamic:
		s.out.Failure("Error: No model discovery configuration found")
		s.out.Plain("Your parameter file must configure exactly one model discovery method.")
		s.out.Blank()
		s.out.Info("Fix in your parameter file:")
		s.out.Plain("Choose one of these approaches:")
		s.out.Plain("1. Static models: Add 'staticModels' array with your model deployments")
		s.out.Plain("2. Dynamic discovery: Add all three required parameters:")
		s.out.Plain(`   - listModelsEndpoint: "/deployments"`)
		s.out.Plain(`   - getModelEndpoint: "/deployments/{deploymentName}"`)
		s.out.Plain(`   - deploymentProvider: "AzureOpenAI" or "OpenAI"`)
		return valErrors.NewParameterError("no model discovery configuration found")
	}

	if hasStatic {
		s.out.Plain("✅ Using static model discovery")
	} else {
		s.out.Plain("✅ Using dynamic model discovery")
	}
	return nil
}

func (s *parametersStage) printDynamicChecklist(d *models.ModelDiscovery) {
	if d.ListModelsEndpoint == "" {
		s.out.Plain(`❌ listModelsEndpoint: Required (e.g., "/deployments")`)
	} else {
		s.out.Plain("✅ listModelsEndpoint: Configured")
	}
	if d.GetModelEndpoint == "" {
		s.out.Plain(`❌ getModelEndpoint: Required (e.g., "/deployments/{deploymentName}")`)
	} else {
		s.out.Plain("✅ getModelEndpoint: Configured")
	}
	if d.Provider == "" {
		s.out.Plain(`❌ deploymentProvider: Required ("AzureOpenAI" or "OpenAI")`)
	} else {
		s.out.Plain("✅ deploymentProvider: Configured")
	}
}

func (s *parametersStage) checkStaticStructure(cfg *models.ConnectionConfig, state *State) error {
	if !cfg.HasStaticModels() {
		return nil
	}
	s.out.Check("Static Model Structure Check:")

	for i, model := range cfg.StaticModels {
		if model.Name == "" {
			s.out.Failure("Error: staticModels[%d] missing 'name' field", i)
			return valErrors.NewParameterError("staticModels[%d] missing 'name' field", i)
		}
		if model.Properties.Model.Name == "" {
			s.out.Failure("Error: staticModels[%d].properties.model missing 'name' field", i)
			return valErrors.NewParameterError("staticModels[%d].properties.model missing 'name' field", i)
		}
		if model.Properties.Model.Format == "" {
			s.out.Warn("Warning: staticModels[%d].properties.model missing 'format' field", i)
			state.Warn("staticModels[%d].properties.model missing 'format' field", i)
		}
	}

	s.out.Plain("✅ Static model structure valid (%d models)", len(cfg.StaticModels))
	return nil
}

func (s *parametersStage) checkDynamicStructure(cfg *models.ConnectionConfig) error {
	if !cfg.HasDynamicDiscovery() {
		return nil
	}
	s.out.Check("Dynamic Discovery Structure Check:")

	d := cfg.ModelDiscovery
	if !d.Provider.Valid() {
		s.out.Failure("Error: Invalid deploymentProvider value")
		s.out.Plain("Current value: %s", d.Provider)
		s.out.Blank()
		s.out.Info("Fix in your parameter file:")
		s.out.Plain("Set deploymentProvider to one of these exact values:")
		for _, p := range validProviders {
			s.out.Plain("  - %q", string(p))
		}
		return valErrors.NewParameterError("invalid deploymentProvider value: %s", d.Provider)
	}

	if !strings.Contains(d.GetModelEndpoint, deploymentNamePlaceholder) {
		s.out.Failure("Error: getModelEndpoint must contain '{deploymentName}' template")
		s.out.Plain("Current value: %s", d.GetModelEndpoint)
		s.out.Blank()
		s.out.Info("Fix in your parameter file:")
		s.out.Plain("Update getModelEndpoint to include the {deploymentName} placeholder:")
		s.out.Plain(`Example: "/deployments/{deploymentName}" or "/models/{deploymentName}"`)
		return valErrors.NewParameterError("getModelEndpoint must contain '{deploymentName}' template")
	}

	s.out.Plain("✅ Dynamic discovery structure valid")
	return nil
}

func (s *parametersStage) checkAuth(ctx context.Context, cfg *models.ConnectionConfig, state *State) error {
	switch cfg.AuthType {
	case models.AuthTypeAPIKey:
		if cfg.APIKey == "" {
			s.out.Failure("Error: API key is required for ApiKey authentication")
			return valErrors.NewParameterError("API key is required for ApiKey authentication")
		}
	case models.AuthTypeOAuth2:
		s.out.Check("OAuth2 Configuration Check:")
		oauth := cfg.OAuth2
		if oauth == nil || oauth.ClientID == "" || oauth.TokenURL == "" || oauth.ClientSecret == "" {
			s.out.Failure("Error: OAuth2 requires clientId, tokenUrl, and clientSecret")
			s.out.Blank()
			s.out.Info("Required parameters:")
			s.out.Plain("- clientId: Your OAuth2 client identifier")
			s.out.Plain("- tokenUrl: Your OAuth2 token endpoint URL")
			s.out.Plain("- clientSecret: Provided via --client-secret")
			return valErrors.NewParameterError("OAuth2 requires clientId, tokenUrl, and clientSecret")
		}
		s.out.Plain("✅ OAuth2 configuration valid")

		s.out.Warn("Requesting OAuth2 token...")
		token, err := s.client.RequestToken(ctx, oauth)
		if err != nil {
			s.out.Failure("%v", err)
			return err
		}
		state.AccessToken = token
		s.out.Success("OAuth2 token obtained successfully")
		s.describeToken(token, state)
	}
	return nil
}

func (s *parametersStage) describeToken(token string, state *State) {
	details, err := gateway.InspectToken(token)
	if err != nil {
		// Opaque tokens are fine; the gateway decides what it accepts.
		return
	}
	if !details.ExpiresAt.IsZero() {
		s.out.Detail("Token expires: %s", details.ExpiresAt.Format(time.RFC3339))
		if time.Until(details.ExpiresAt) < time.Minute {
			s.out.Warn("Warning: token expires in under a minute")
			state.Warn("OAuth2 token expires in under a minute")
		}
	}
	if len(details.Audience) > 0 {
		s.out.Detail("Token audience: %s", strings.Join(details.Audience, ", "))
	}
}

func (s *parametersStage) printSummary(cfg *models.ConnectionConfig) {
	s.out.Info("Configuration Summary:")
	s.out.Detail("Target URL: %s", cfg.TargetURL)
	switch cfg.Variant {
	case models.VariantAPIM:
		s.out.Detail("API Name: %s", cfg.APIName)
	case models.VariantModelGateway:
		s.out.Detail("Gateway Name: %s", cfg.GatewayName)
	}
	if cfg.ConnectionName != "" {
		s.out.Detail("Connection Name: %s", cfg.ConnectionName)
	}
	s.out.Detail("Auth Type: %s", cfg.AuthType)
	s.out.Detail("Deployment Name: %s", cfg.DeploymentName)
	s.out.Detail("Deployment in Path: %t", cfg.DeploymentInPath)
	if cfg.InferenceAPIVersion != "" {
		s.out.Detail("Inference API Version: %s", cfg.InferenceAPIVersion)
	}
	if cfg.DeploymentAPIVersion != "" {
		s.out.Detail("Deployment API Version: %s", cfg.DeploymentAPIVersion)
	}
	if cfg.HasStaticModels() {
		s.out.Detail("Static Models: %d configured", len(cfg.StaticModels))
	} else if cfg.ModelDiscovery != nil {
		s.out.Detail("Dynamic Discovery: %s format", cfg.ModelDiscovery.Provider)
	}
	if len(cfg.CustomHeaders) > 0 {
		s.out.Detail("Custom Headers: %d configured", len(cfg.CustomHeaders))
	}
	if cfg.AuthHeader != nil {
		s.out.Detail("Custom Auth Config: Configured")
	}
}
