package gateway_test

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/foundrygate/gateway-validator/internal/models"
	valErrors "github.com/foundrygate/gateway-validator/pkg/errors"
	"github.com/foundrygate/gateway-validator/pkg/gateway"
)

func TestGateway(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Gateway Suite")
}

var _ = Describe("Client", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	Describe("retry policy", func() {
		// Given a server that fails twice with 503 before succeeding
		// When we issue a GET
		// Then the client should retry and return the final 200
		It("should retry transient statuses until success", func() {
			var calls atomic.Int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if calls.Add(1) <= 2 {
					w.WriteHeader(http.StatusServiceUnavailable)
					return
				}
				fmt.Fprint(w, `{"ok": true}`)
			}))
			defer srv.Close()

			client := gateway.NewClient(gateway.WithMaxTries(4))
			resp, err := client.Get(ctx, srv.URL, nil)

			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(calls.Load()).To(Equal(int32(3)))
		})

		// Given a server that always answers 404
		// When we issue a GET
		// Then the client should not retry and hand the 404 back
		It("should not retry non-transient statuses", func() {
			var calls atomic.Int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				w.WriteHeader(http.StatusNotFound)
			}))
			defer srv.Close()

			client := gateway.NewClient(gateway.WithMaxTries(4))
			resp, err := client.Get(ctx, srv.URL, nil)

			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusNotFound))
			Expect(calls.Load()).To(Equal(int32(1)))
		})

		// Given a server that never stops answering 429
		// When the retry budget is exhausted
		// Then the final 429 response is returned without an error
		It("should return the last transient response after exhausting retries", func() {
			var calls atomic.Int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				w.WriteHeader(http.StatusTooManyRequests)
			}))
			defer srv.Close()

			client := gateway.NewClient(gateway.WithMaxTries(2))
			resp, err := client.Get(ctx, srv.URL, nil)

			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusTooManyRequests))
			Expect(calls.Load()).To(Equal(int32(2)))
		})

		It("should report unreachable gateways with a typed error", func() {
			client := gateway.NewClient(
				gateway.WithMaxTries(1),
				gateway.WithTimeout(time.Second),
			)
			_, err := client.Get(ctx, "http://127.0.0.1:1", nil)

			Expect(err).To(HaveOccurred())
			Expect(valErrors.IsGatewayUnreachableError(err)).To(BeTrue())
		})
	})

	Describe("requests", func() {
		It("should send headers and JSON bodies", func() {
			var gotHeader string
			var gotBody []byte
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotHeader = r.Header.Get("api-key")
				gotBody, _ = io.ReadAll(r.Body)
				fmt.Fprint(w, `{}`)
			}))
			defer srv.Close()

			client := gateway.NewClient()
			_, err := client.PostJSON(ctx, srv.URL, map[string]string{"api-key": "secret"}, map[string]any{
				"messages": []string{"hi"},
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(gotHeader).To(Equal("secret"))
			Expect(string(gotBody)).To(MatchJSON(`{"messages": ["hi"]}`))
		})

		It("should measure latency and preview long bodies", func() {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, "0123456789")
			}))
			defer srv.Close()

			client := gateway.NewClient()
			resp, err := client.Get(ctx, srv.URL, nil)

			Expect(err).NotTo(HaveOccurred())
			Expect(resp.Latency).To(BeNumerically(">", 0))
			Expect(resp.BodyPreview(4)).To(Equal("0123..."))
			Expect(resp.BodyPreview(100)).To(Equal("0123456789"))
		})
	})
})

var _ = Describe("BuildHeaders", func() {
	It("should use the default api-key header", func() {
		cfg := &models.ConnectionConfig{
			AuthType: models.AuthTypeAPIKey,
			APIKey:   "key-1",
		}
		headers := gateway.BuildHeaders(cfg, "")

		Expect(headers).To(HaveKeyWithValue("Content-Type", "application/json"))
		Expect(headers).To(HaveKeyWithValue("api-key", "key-1"))
	})

	// Given an authConfig with a custom name and format
	// When headers are built
	// Then the {api_key} placeholder is substituted into the format
	It("should honor the authConfig header template", func() {
		cfg := &models.ConnectionConfig{
			AuthType: models.AuthTypeAPIKey,
			APIKey:   "key-1",
			AuthHeader: &models.AuthHeaderConfig{
				Name:   "Authorization",
				Format: "Bearer {api_key}",
			},
		}
		headers := gateway.BuildHeaders(cfg, "")

		Expect(headers).To(HaveKeyWithValue("Authorization", "Bearer key-1"))
		Expect(headers).NotTo(HaveKey("api-key"))
	})

	It("should use the bearer token for oauth2 connections", func() {
		cfg := &models.ConnectionConfig{AuthType: models.AuthTypeOAuth2}
		headers := gateway.BuildHeaders(cfg, "tok-123")

		Expect(headers).To(HaveKeyWithValue("Authorization", "Bearer tok-123"))
	})

	It("should let custom headers win on conflict", func() {
		cfg := &models.ConnectionConfig{
			AuthType:      models.AuthTypeAPIKey,
			APIKey:        "key-1",
			CustomHeaders: map[string]string{"api-key": "override", "X-Extra": "1"},
		}
		headers := gateway.BuildHeaders(cfg, "")

		Expect(headers).To(HaveKeyWithValue("api-key", "override"))
		Expect(headers).To(HaveKeyWithValue("X-Extra", "1"))
	})
})

var _ = Describe("Curl rendering", func() {
	It("should render GET commands without Content-Type", func() {
		cmd := gateway.CurlGet("https://gw/models", map[string]string{
			"Content-Type": "application/json",
			"api-key":      "secret",
		}, "api-key")

		Expect(cmd).To(HavePrefix(`curl -X GET "https://gw/models"`))
		Expect(cmd).NotTo(ContainSubstring("Content-Type"))
	})

	It("should render POST commands with an indented JSON body", func() {
		cmd := gateway.CurlPost("https://gw/chat", map[string]string{"api-key": "secret"}, map[string]any{
			"messages": []map[string]string{{"role": "user", "content": "hi"}},
		}, "api-key")

		Expect(cmd).To(HavePrefix(`curl -X POST "https://gw/chat"`))
		Expect(cmd).To(ContainSubstring(`"role": "user"`))
	})

	// Given headers carrying live credentials
	// When the replay command is rendered
	// Then the credential values are replaced with placeholders
	It("should redact api-key and Authorization values", func() {
		cmd := gateway.CurlGet("https://gw/models", map[string]string{
			"api-key":       "live-key-123",
			"Authorization": "Bearer live-token-456",
			"X-Request-ID":  "req-1",
		}, "api-key")

		Expect(cmd).NotTo(ContainSubstring("live-key-123"))
		Expect(cmd).NotTo(ContainSubstring("live-token-456"))
		Expect(cmd).To(ContainSubstring(`-H "api-key: YOUR_API_KEY"`))
		Expect(cmd).To(ContainSubstring(`-H "Authorization: Bearer YOUR_TOKEN"`))
		Expect(cmd).To(ContainSubstring(`-H "X-Request-ID: req-1"`))
	})

	It("should redact custom auth headers by name", func() {
		cfg := &models.ConnectionConfig{
			AuthType:   models.AuthTypeAPIKey,
			APIKey:     "live-key-123",
			AuthHeader: &models.AuthHeaderConfig{Name: "Ocp-Apim-Subscription-Key", Format: "{api_key}"},
		}
		headers := gateway.BuildHeaders(cfg, "")

		cmd := gateway.CurlPost("https://gw/chat", headers, map[string]any{}, gateway.AuthHeaderName(cfg))

		Expect(cmd).NotTo(ContainSubstring("live-key-123"))
		Expect(cmd).To(ContainSubstring(`-H "Ocp-Apim-Subscription-Key: YOUR_API_KEY"`))
	})
})

var _ = Describe("OAuth2", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	Describe("RequestToken", func() {
		// Given a token endpoint expecting client credentials
		// When we request a token
		// Then the grant parameters should be form-encoded and the token returned
		It("should run the client credentials grant", func() {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				Expect(r.ParseForm()).To(Succeed())
				Expect(r.PostForm.Get("grant_type")).To(Equal("client_credentials"))
				Expect(r.PostForm.Get("client_id")).To(Equal("client-1"))
				Expect(r.PostForm.Get("client_secret")).To(Equal("s3cret"))
				Expect(r.PostForm.Get("scope")).To(Equal("api://gw/.default"))
				fmt.Fprint(w, `{"access_token": "tok-123", "token_type": "Bearer", "expires_in": 3600}`)
			}))
			defer srv.Close()

			client := gateway.NewClient()
			token, err := client.RequestToken(ctx, &models.OAuth2Config{
				ClientID:     "client-1",
				ClientSecret: "s3cret",
				TokenURL:     srv.URL,
				Scopes:       []string{"api://gw/.default"},
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(token).To(Equal("tok-123"))
		})

		It("should fail when the endpoint rejects the credentials", func() {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
				fmt.Fprint(w, `{"error": "invalid_client"}`)
			}))
			defer srv.Close()

			client := gateway.NewClient()
			_, err := client.RequestToken(ctx, &models.OAuth2Config{TokenURL: srv.URL})

			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("invalid_client"))
		})

		It("should fail when no access_token is returned", func() {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, `{"token_type": "Bearer"}`)
			}))
			defer srv.Close()

			client := gateway.NewClient()
			_, err := client.RequestToken(ctx, &models.OAuth2Config{TokenURL: srv.URL})

			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("no access_token"))
		})
	})

	Describe("InspectToken", func() {
		It("should extract expiry, audience and issuer without verification", func() {
			exp := time.Now().Add(time.Hour).Truncate(time.Second)
			raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
				"exp": exp.Unix(),
				"aud": "api://gw",
				"iss": "https://login.example.com",
			}).SignedString([]byte("test-key"))
			Expect(err).NotTo(HaveOccurred())

			details, err := gateway.InspectToken(raw)
			Expect(err).NotTo(HaveOccurred())
			Expect(details.ExpiresAt.Unix()).To(Equal(exp.Unix()))
			Expect(details.Audience).To(ConsistOf("api://gw"))
			Expect(details.Issuer).To(Equal("https://login.example.com"))
		})

		It("should reject malformed tokens", func() {
			_, err := gateway.InspectToken("not-a-jwt")
			Expect(err).To(HaveOccurred())
		})
	})
})
