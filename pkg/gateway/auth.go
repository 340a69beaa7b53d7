package gateway

import (
	"strings"

	"github.com/foundrygate/gateway-validator/internal/models"
)

const defaultAPIKeyHeader = "api-key"

// BuildHeaders assembles the request headers for a connection. The header
// negotiation order is fixed: content type, then the auth scheme header,
// then custom headers. Custom headers win on conflict so operators can
// override anything the scheme produced.
func BuildHeaders(cfg *models.ConnectionConfig, accessToken string) map[string]string {
	headers := map[string]string{"Content-Type": "application/json"}

	switch cfg.AuthType {
	case models.AuthTypeAPIKey:
		name, value := apiKeyHeader(cfg)
		headers[name] = value
	case models.AuthTypeOAuth2:
		if accessToken != "" {
			headers["Authorization"] = "Bearer " + accessToken
		}
	}

	for k, v := range cfg.CustomHeaders {
		headers[k] = v
	}
	return headers
}

// AuthHeaderName returns the header that carries the credential for a
// connection, so curl rendering can redact it.
func AuthHeaderName(cfg *models.ConnectionConfig) string {
	switch cfg.AuthType {
	case models.AuthTypeAPIKey:
		name, _ := apiKeyHeader(cfg)
		return name
	case models.AuthTypeOAuth2:
		return "Authorization"
	}
	return ""
}

// apiKeyHeader resolves the api-key header name and value, honoring the
// authConfig {name, format} override where format carries an {api_key}
// placeholder.
func apiKeyHeader(cfg *models.ConnectionConfig) (string, string) {
	if cfg.AuthHeader != nil {
		value := strings.ReplaceAll(cfg.AuthHeader.Format, "{api_key}", cfg.APIKey)
		return cfg.AuthHeader.Name, value
	}
	return defaultAPIKeyHeader, cfg.APIKey
}
