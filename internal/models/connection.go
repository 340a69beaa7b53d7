package models

import (
	"fmt"
	"strings"
)

// Variant selects which gateway product the connection fronts. The two
// variants share the validation pipeline but differ in required parameters
// and supported auth schemes.
type Variant string

const (
	VariantAPIM         Variant = "apim"
	VariantModelGateway Variant = "model-gateway"
)

func ParseVariant(s string) (Variant, error) {
	switch strings.ToLower(s) {
	case "apim":
		return VariantAPIM, nil
	case "model-gateway", "modelgateway":
		return VariantModelGateway, nil
	default:
		return "", fmt.Errorf("invalid variant: %s (expected apim or model-gateway)", s)
	}
}

type AuthType string

const (
	AuthTypeAPIKey AuthType = "apikey"
	AuthTypeOAuth2 AuthType = "oauth2"
)

// ParseAuthType accepts the spellings both parameter file dialects use
// ("ApiKey" for APIM, "apikey"/"oauth2" for ModelGateway). Empty input
// defaults to ApiKey.
func ParseAuthType(s string) (AuthType, error) {
	switch strings.ToLower(s) {
	case "", "apikey":
		return AuthTypeAPIKey, nil
	case "oauth2":
		return AuthTypeOAuth2, nil
	default:
		return "", fmt.Errorf("invalid auth type: %s", s)
	}
}

// Provider is the response dialect of the gateway's discovery endpoints.
type Provider string

const (
	ProviderAzureOpenAI Provider = "AzureOpenAI"
	ProviderOpenAI      Provider = "OpenAI"
)

func (p Provider) Valid() bool {
	return p == ProviderAzureOpenAI || p == ProviderOpenAI
}

// ModelInfo is the inner model descriptor of a static deployment entry.
type ModelInfo struct {
	Name    string `json:"name"`
	Version string `json:"version,omitempty"`
	Format  string `json:"format,omitempty"`
}

// StaticModelProperties wraps the model descriptor the way the parameter
// file nests it.
type StaticModelProperties struct {
	Model ModelInfo `json:"model"`
}

// StaticModel is one entry of the staticModels parameter array.
type StaticModel struct {
	Name       string                `json:"name"`
	Properties StaticModelProperties `json:"properties"`
}

// ModelDiscovery holds the dynamic discovery endpoints. GetModelEndpoint
// carries a {deploymentName} placeholder.
type ModelDiscovery struct {
	ListModelsEndpoint string
	GetModelEndpoint   string
	Provider           Provider
}

// AuthHeaderConfig customizes how the api key is sent. Format contains an
// {api_key} placeholder, e.g. {"name": "Authorization", "format": "Bearer {api_key}"}.
type AuthHeaderConfig struct {
	Name   string
	Format string
}

// OAuth2Config holds the client-credentials grant settings for the
// ModelGateway variant.
type OAuth2Config struct {
	ClientID     string
	ClientSecret string
	TokenURL     string
	Scopes       []string
}

// ConnectionConfig is the fully resolved connection under validation,
// combining the parameter file with command-line supplied secrets.
type ConnectionConfig struct {
	Variant        Variant
	ConnectionName string
	TargetURL      string

	// APIM-only identity parameters.
	APIMResourceID string
	APIName        string

	// ModelGateway-only.
	GatewayName string

	AuthType      AuthType
	APIKey        string
	AuthHeader    *AuthHeaderConfig
	OAuth2        *OAuth2Config
	CustomHeaders map[string]string

	DeploymentName       string
	DeploymentInPath     bool
	InferenceAPIVersion  string
	DeploymentAPIVersion string

	StaticModels   []StaticModel
	ModelDiscovery *ModelDiscovery
}

// HasStaticModels reports whether the connection declares at least one
// static deployment.
func (c *ConnectionConfig) HasStaticModels() bool {
	return len(c.StaticModels) > 0
}

// HasDynamicDiscovery reports whether a complete dynamic discovery
// configuration is present.
func (c *ConnectionConfig) HasDynamicDiscovery() bool {
	return c.ModelDiscovery != nil &&
		c.ModelDiscovery.ListModelsEndpoint != "" &&
		c.ModelDiscovery.GetModelEndpoint != "" &&
		c.ModelDiscovery.Provider != ""
}

// StaticModelNames returns the deployment names of the static list.
func (c *ConnectionConfig) StaticModelNames() []string {
	names := make([]string, 0, len(c.StaticModels))
	for _, m := range c.StaticModels {
		names = append(names, m.Name)
	}
	return names
}
