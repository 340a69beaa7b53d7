// Package params loads Bicep-style parameter files and resolves them into
// connection configurations. A parameter file has the shape
//
//	{"parameters": {"targetUrl": {"value": "https://..."}, ...}}
//
// where each parameter is either wrapped in a {"value": ...} object or given
// directly. Secrets (api key, client secret) never appear in the file; they
// are supplied on the command line and merged here.
package params

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/foundrygate/gateway-validator/internal/models"
	valErrors "github.com/foundrygate/gateway-validator/pkg/errors"
)

// File is a parsed parameter file.
type File struct {
	params map[string]any
}

// Load reads and parses a parameter file from disk.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, valErrors.NewParameterError("parameter file not found: %s", path)
		}
		return nil, fmt.Errorf("failed to read parameter file %s: %w", path, err)
	}
	return Parse(data)
}

// Parse parses raw parameter file content.
func Parse(data []byte) (*File, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, valErrors.NewParameterError("invalid JSON in parameter file: %v", err)
	}

	raw, ok := doc["parameters"]
	if !ok {
		return nil, valErrors.NewParameterError("invalid parameter file format - missing 'parameters' section")
	}

	var params map[string]any
	if err := json.Unmarshal(raw, &params); err != nil {
		return nil, valErrors.NewParameterError("invalid 'parameters' section: %v", err)
	}
	return &File{params: params}, nil
}

// ExtractValue unwraps the Bicep {"value": X} envelope. Bare values pass
// through unchanged.
func ExtractValue(v any) any {
	if m, ok := v.(map[string]any); ok {
		if inner, ok := m["value"]; ok {
			return inner
		}
	}
	return v
}

// String returns the named parameter as a string, or "" when absent.
func (f *File) String(name string) string {
	v := ExtractValue(f.params[name])
	s, _ := v.(string)
	return s
}

// Bool returns the named parameter as a bool. Both JSON booleans and the
// strings "true"/"false" are accepted, matching how Bicep templates pass
// boolean-ish values.
func (f *File) Bool(name string) bool {
	v := ExtractValue(f.params[name])
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return strings.EqualFold(t, "true")
	default:
		return false
	}
}

// StringMap returns the named parameter as a map of strings. Non-string
// values are stringified with fmt.Sprint.
func (f *File) StringMap(name string) map[string]string {
	v := ExtractValue(f.params[name])
	m, ok := v.(map[string]any)
	if !ok || len(m) == 0 {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, val := range m {
		if s, ok := val.(string); ok {
			out[k] = s
		} else {
			out[k] = fmt.Sprint(val)
		}
	}
	return out
}

// StringSlice returns the named parameter as a slice of strings.
func (f *File) StringSlice(name string) []string {
	v := ExtractValue(f.params[name])
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// Raw returns the unwrapped parameter value without type conversion.
func (f *File) Raw(name string) any {
	return ExtractValue(f.params[name])
}

// Has reports whether the parameter is present at all.
func (f *File) Has(name string) bool {
	_, ok := f.params[name]
	return ok
}

// Secrets carries command-line supplied values merged into the resolved
// configuration.
type Secrets struct {
	APIKey         string
	ClientSecret   string
	DeploymentName string
	TargetURL      string
}

// Resolve builds the connection configuration for the given variant from the
// parameter file plus command-line secrets. Structural validation beyond
// what is needed to build the config is left to the pipeline's parameter
// stage so failures surface with operator guidance.
func (f *File) Resolve(variant models.Variant, secrets Secrets) (*models.ConnectionConfig, error) {
	authType, err := models.ParseAuthType(f.String("authType"))
	if err != nil {
		return nil, valErrors.NewParameterError("%v", err)
	}

	cfg := &models.ConnectionConfig{
		Variant:              variant,
		ConnectionName:       f.String("connectionName"),
		AuthType:             authType,
		APIKey:               secrets.APIKey,
		DeploymentName:       secrets.DeploymentName,
		DeploymentInPath:     f.Bool("deploymentInPath"),
		InferenceAPIVersion:  f.String("inferenceAPIVersion"),
		DeploymentAPIVersion: f.String("deploymentAPIVersion"),
		CustomHeaders:        f.StringMap("customHeaders"),
	}

	switch variant {
	case models.VariantAPIM:
		// APIM connections take the gateway base URL from the command
		// line (the portal's Base URL field), not the parameter file.
		cfg.TargetURL = secrets.TargetURL
		cfg.APIMResourceID = f.String("apimResourceId")
		cfg.APIName = f.String("apiName")
	case models.VariantModelGateway:
		cfg.TargetURL = f.String("targetUrl")
		if secrets.TargetURL != "" {
			cfg.TargetURL = secrets.TargetURL
		}
		cfg.GatewayName = f.String("gatewayName")
	}
	cfg.TargetURL = strings.TrimRight(cfg.TargetURL, "/")

	if err := f.resolveAuth(cfg, secrets); err != nil {
		return nil, err
	}
	if err := f.resolveModels(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (f *File) resolveAuth(cfg *models.ConnectionConfig, secrets Secrets) error {
	if ac := f.StringMap("authConfig"); ac != nil {
		header := &models.AuthHeaderConfig{
			Name:   ac["name"],
			Format: ac["format"],
		}
		if header.Name == "" {
			header.Name = "api-key"
		}
		if header.Format == "" {
			header.Format = "{api_key}"
		}
		cfg.AuthHeader = header
	}

	if cfg.AuthType == models.AuthTypeOAuth2 {
		cfg.OAuth2 = &models.OAuth2Config{
			ClientID:     f.String("clientId"),
			ClientSecret: secrets.ClientSecret,
			TokenURL:     f.String("tokenUrl"),
			Scopes:       f.StringSlice("scopes"),
		}
	}
	return nil
}

func (f *File) resolveModels(cfg *models.ConnectionConfig) error {
	if f.Has("staticModels") {
		raw := f.Raw("staticModels")
		data, err := json.Marshal(raw)
		if err != nil {
			return valErrors.NewParameterError("staticModels is not valid JSON: %v", err)
		}
		var staticModels []models.StaticModel
		if err := json.Unmarshal(data, &staticModels); err != nil {
			return valErrors.NewParameterError("staticModels must be an array of deployment objects: %v", err)
		}
		cfg.StaticModels = staticModels
	}

	// Any dynamic discovery parameter present produces a discovery config;
	// completeness is checked by the parameter stage so the operator sees
	// exactly which of the three parameters is missing.
	listEndpoint := f.String("listModelsEndpoint")
	getEndpoint := f.String("getModelEndpoint")
	provider := f.String("deploymentProvider")
	if listEndpoint != "" || getEndpoint != "" || provider != "" {
		// APIM connections default to the AzureOpenAI response dialect;
		// ModelGateway ones must name the provider explicitly, so the
		// parameter stage can report it missing.
		if provider == "" && cfg.Variant == models.VariantAPIM && listEndpoint != "" {
			provider = string(models.ProviderAzureOpenAI)
		}
		cfg.ModelDiscovery = &models.ModelDiscovery{
			ListModelsEndpoint: listEndpoint,
			GetModelEndpoint:   getEndpoint,
			Provider:           models.Provider(provider),
		}
	}
	return nil
}
