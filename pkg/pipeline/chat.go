package pipeline

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/foundrygate/gateway-validator/internal/models"
	valErrors "github.com/foundrygate/gateway-validator/pkg/errors"
	"github.com/foundrygate/gateway-validator/pkg/gateway"
	"github.com/foundrygate/gateway-validator/pkg/printer"
)

const testPrompt = "Hello! This is a test message from the gateway connection validator. Please respond briefly."

// chatStage runs the end-to-end smoke test: a real chat completions request
// through the gateway, with status-specific troubleshooting on failure.
type chatStage struct {
	client *gateway.Client
	out    *printer.Printer
}

func (s *chatStage) Name() string { return "chat completions validation" }

func (s *chatStage) Run(ctx context.Context, state *State) error {
	s.out.Header("Chat Completions Validation")
	cfg := state.Config

	chatURL := ChatCompletionsURL(cfg)
	body := chatRequestBody(cfg)
	headers := state.Headers()

	s.out.Info("Testing chat completions endpoint:")
	s.out.Detail("URL: %s", chatURL)
	s.out.Detail("Deployment in path: %t", cfg.DeploymentInPath)
	s.out.Blank()
	s.out.Plain("%s", gateway.CurlPost(chatURL, headers, body, gateway.AuthHeaderName(cfg)))
	s.out.Blank()

	s.out.Info("🚀 Making chat completions request...")
	resp, err := s.client.PostJSON(ctx, chatURL, headers, body)
	if err != nil {
		if valErrors.IsGatewayUnreachableError(err) {
			s.out.Failure("Connection error: %v", err)
			s.out.Warn("Check if the target URL is correct and accessible")
		} else {
			s.out.Failure("Error making chat completions request: %v", err)
		}
		return err
	}

	s.out.Info("Response Summary:")
	s.out.Detail("HTTP Status: %d", resp.StatusCode)
	s.out.Detail("Response Time: %.2fs", resp.Latency.Seconds())
	s.out.Verbose("Full response body: %s", string(resp.Body))
	s.out.Blank()

	switch resp.StatusCode {
	case http.StatusOK:
		s.printSuccess(resp.Body)
		return nil
	case http.StatusUnauthorized:
		printAuthTroubleshooting(s.out, cfg)
		return valErrors.NewUnauthorizedError(chatURL)
	case http.StatusNotFound:
		s.printNotFoundGuidance(cfg, chatURL)
		return valErrors.NewEndpointNotFoundError(chatURL)
	case http.StatusBadRequest:
		s.printBadRequestGuidance(resp)
		return valErrors.NewBadRequestError(resp.BodyPreview(200))
	default:
		s.out.Failure("Unexpected response: %d", resp.StatusCode)
		s.out.Plain("Response: %s", resp.BodyPreview(500))
		return valErrors.NewDiscoveryError("chat completions returned unexpected status %d", resp.StatusCode)
	}
}

// ChatCompletionsURL builds the chat completions URL for a connection.
// Deployment-in-path connections embed the deployment in the URL, the rest
// pass the model in the request body.
func ChatCompletionsURL(cfg *models.ConnectionConfig) string {
	url := cfg.TargetURL
	if cfg.DeploymentInPath {
		url += "/deployments/" + cfg.DeploymentName + "/chat/completions"
	} else {
		url += "/chat/completions"
	}
	if cfg.InferenceAPIVersion != "" {
		url += "?api-version=" + cfg.InferenceAPIVersion
	}
	return url
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Messages []chatMessage `json:"messages"`
	Model    string        `json:"model,omitempty"`
}

func chatRequestBody(cfg *models.ConnectionConfig) chatRequest {
	req := chatRequest{
		Messages: []chatMessage{{Role: "user", Content: testPrompt}},
	}
	if !cfg.DeploymentInPath {
		req.Model = cfg.DeploymentName
	}
	return req
}

func (s *chatStage) printSuccess(body []byte) {
	s.out.Success("SUCCESS! Your gateway configuration is working correctly.")
	s.out.Blank()

	var payload struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	s.out.Info("Response Preview:")
	if err := json.Unmarshal(body, &payload); err != nil {
		s.out.Plain("Valid response received (not JSON)")
	} else if len(payload.Choices) == 0 {
		s.out.Plain("Valid response received but no content found")
	} else {
		content := payload.Choices[0].Message.Content
		if len(content) > 200 {
			content = content[:200] + "..."
		}
		s.out.Plain("%s", content)
	}
	s.out.Blank()
	s.out.Success("🎉 This connection should work when deployed.")
}

func (s *chatStage) printNotFoundGuidance(cfg *models.ConnectionConfig, url string) {
	s.out.Failure("HTTP 404 - Not Found")
	s.out.Blank()
	s.out.Info("We tried this URL:")
	s.out.Detail("%s", url)
	s.out.Blank()
	s.out.Warn("Common fixes to try:")
	s.out.Blank()

	s.out.Plain("1. Check deploymentInPath setting:")
	if cfg.DeploymentInPath {
		s.out.Plain("   Current: deploymentInPath = true (deployment in URL)")
		s.out.Plain("   Try: deploymentInPath = false (deployment in body)")
	} else {
		s.out.Plain("   Current: deploymentInPath = false (deployment in body)")
		s.out.Plain("   Try: deploymentInPath = true (deployment in URL)")
	}
	s.out.Blank()

	s.out.Plain("2. API Version:")
	if cfg.InferenceAPIVersion != "" {
		s.out.Plain("   Current: %q", cfg.InferenceAPIVersion)
		s.out.Plain("   Try: Remove API version")
	} else {
		s.out.Plain("   Current: No API version")
		s.out.Plain(`   Try: Add API version (e.g., "2024-02-01")`)
	}
	s.out.Blank()

	if cfg.Variant == models.VariantAPIM {
		s.out.Plain("3. Check APIM API configuration:")
		s.out.Plain("   - Verify the API path in APIM matches expected endpoints")
		s.out.Plain("   - Check if APIM API policies are blocking requests")
		s.out.Plain("   - Ensure chat completions operations are configured in APIM")
		s.out.Blank()
	}
}

func (s *chatStage) printBadRequestGuidance(resp *gateway.Response) {
	s.out.Failure("HTTP 400 - Bad Request")
	s.out.Blank()
	s.out.Info("Error Details:")
	s.out.Plain("%s", resp.BodyPreview(500))
	s.out.Blank()
	s.out.Warn("Common fixes:")
	s.out.Plain("- Check if the model name/deployment is correct")
	s.out.Plain("- Verify the request body format matches API expectations")
	s.out.Plain("- Ensure gateway policies aren't modifying the request")
	s.out.Blank()
}

// printAuthTroubleshooting prints the 401 guidance shared by the discovery
// and chat stages.
func printAuthTroubleshooting(out *printer.Printer, cfg *models.ConnectionConfig) {
	out.Warn("🔧 Option 1: FIX YOUR API KEY FIRST (Most Common - 90%% of cases)")
	out.Plain("❗ Check this first - most 401 errors are wrong/expired keys")
	switch cfg.AuthType {
	case models.AuthTypeAPIKey:
		if cfg.APIKey == "" {
			out.Plain("   ❌ No API key provided - add --api-key")
		} else {
			out.Plain("   - Double-check your key is copied correctly (no extra spaces)")
			out.Plain("   - Verify the key is active and not expired")
			out.Plain("   - Confirm the key has access to this API")
			out.Plain("   - Test with a fresh key from the gateway portal")
		}
	case models.AuthTypeOAuth2:
		out.Plain("   - Verify the client id and secret are current")
		out.Plain("   - Confirm the token audience/scope matches the gateway")
	}
	out.Blank()
}
