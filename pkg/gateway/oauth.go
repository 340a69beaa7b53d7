package gateway

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/foundrygate/gateway-validator/internal/models"
	valErrors "github.com/foundrygate/gateway-validator/pkg/errors"
)

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// RequestToken runs the OAuth2 client-credentials grant against the
// connection's token endpoint and returns the access token.
func (c *Client) RequestToken(ctx context.Context, oauth *models.OAuth2Config) (string, error) {
	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", oauth.ClientID)
	form.Set("client_secret", oauth.ClientSecret)
	if len(oauth.Scopes) > 0 {
		form.Set("scope", strings.Join(oauth.Scopes, " "))
	}

	resp, err := c.PostForm(ctx, oauth.TokenURL, form.Encode())
	if err != nil {
		return "", valErrors.NewTokenRequestError("token request failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", valErrors.NewTokenRequestError("token request failed: %d: %s", resp.StatusCode, resp.BodyPreview(200))
	}

	var token tokenResponse
	if err := resp.JSON(&token); err != nil {
		return "", valErrors.NewTokenRequestError("token response is not valid JSON: %v", err)
	}
	if token.AccessToken == "" {
		return "", valErrors.NewTokenRequestError("no access_token in token response")
	}
	return token.AccessToken, nil
}

// TokenDetails carries the claims surfaced for operator diagnostics.
type TokenDetails struct {
	ExpiresAt time.Time
	Audience  []string
	Issuer    string
}

// InspectToken parses the access token without verifying its signature and
// extracts the claims worth showing to the operator. Signature verification
// is the gateway's job, not the validator's; the point here is to catch
// expired tokens and wrong audiences before blaming the gateway.
func InspectToken(token string) (*TokenDetails, error) {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return nil, err
	}

	details := &TokenDetails{}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		details.ExpiresAt = exp.Time
	}
	if aud, err := claims.GetAudience(); err == nil {
		details.Audience = aud
	}
	if iss, err := claims.GetIssuer(); err == nil {
		details.Issuer = iss
	}
	return details, nil
}
