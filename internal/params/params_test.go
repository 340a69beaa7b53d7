package params_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/foundrygate/gateway-validator/internal/models"
	"github.com/foundrygate/gateway-validator/internal/params"
	valErrors "github.com/foundrygate/gateway-validator/pkg/errors"
)

func TestParams(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Params Suite")
}

var _ = Describe("Parse", func() {
	// Given a file without a parameters section
	// When we parse it
	// Then it should return a parameter error
	It("should reject files without a parameters section", func() {
		_, err := params.Parse([]byte(`{"other": {}}`))
		Expect(err).To(HaveOccurred())
		Expect(valErrors.IsParameterError(err)).To(BeTrue())
	})

	It("should reject invalid JSON", func() {
		_, err := params.Parse([]byte(`{not json`))
		Expect(err).To(HaveOccurred())
		Expect(valErrors.IsParameterError(err)).To(BeTrue())
	})

	// Given parameters wrapped in {"value": ...} envelopes and bare ones
	// When we read them
	// Then both forms should resolve to the inner value
	It("should unwrap value envelopes and accept bare values", func() {
		file, err := params.Parse([]byte(`{
			"parameters": {
				"wrapped": {"value": "inner"},
				"bare": "direct",
				"flag": {"value": true},
				"flagString": {"value": "True"}
			}
		}`))
		Expect(err).NotTo(HaveOccurred())

		Expect(file.String("wrapped")).To(Equal("inner"))
		Expect(file.String("bare")).To(Equal("direct"))
		Expect(file.Bool("flag")).To(BeTrue())
		Expect(file.Bool("flagString")).To(BeTrue())
		Expect(file.String("missing")).To(BeEmpty())
		Expect(file.Has("missing")).To(BeFalse())
	})
})

var _ = Describe("Resolve", func() {
	Context("APIM variant", func() {
		// Given an APIM parameter file and command-line secrets
		// When we resolve the configuration
		// Then the target URL should come from the secrets, not the file
		It("should take the target URL from the command line", func() {
			file, err := params.Parse([]byte(`{
				"parameters": {
					"connectionName": {"value": "my-apim"},
					"apimResourceId": {"value": "/subscriptions/s/resourceGroups/g/providers/Microsoft.ApiManagement/service/svc"},
					"apiName": {"value": "openai-api"},
					"authType": {"value": "ApiKey"},
					"deploymentInPath": {"value": true},
					"inferenceAPIVersion": {"value": "2024-02-01"}
				}
			}`))
			Expect(err).NotTo(HaveOccurred())

			cfg, err := file.Resolve(models.VariantAPIM, params.Secrets{
				APIKey:         "key-123",
				DeploymentName: "gpt-4o",
				TargetURL:      "https://my-apim.azure-api.net/openai/",
			})
			Expect(err).NotTo(HaveOccurred())

			Expect(cfg.Variant).To(Equal(models.VariantAPIM))
			Expect(cfg.ConnectionName).To(Equal("my-apim"))
			Expect(cfg.TargetURL).To(Equal("https://my-apim.azure-api.net/openai"), "trailing slash is trimmed")
			Expect(cfg.APIMResourceID).To(ContainSubstring("Microsoft.ApiManagement"))
			Expect(cfg.APIName).To(Equal("openai-api"))
			Expect(cfg.AuthType).To(Equal(models.AuthTypeAPIKey))
			Expect(cfg.APIKey).To(Equal("key-123"))
			Expect(cfg.DeploymentName).To(Equal("gpt-4o"))
			Expect(cfg.DeploymentInPath).To(BeTrue())
			Expect(cfg.InferenceAPIVersion).To(Equal("2024-02-01"))
		})

		// Given a listModelsEndpoint but no deploymentProvider
		// When we resolve an APIM configuration
		// Then the provider should default to AzureOpenAI
		It("should default the discovery provider to AzureOpenAI", func() {
			file, err := params.Parse([]byte(`{
				"parameters": {
					"listModelsEndpoint": {"value": "https://gw/models"},
					"getModelEndpoint": {"value": "https://gw/models/{deploymentName}"}
				}
			}`))
			Expect(err).NotTo(HaveOccurred())

			cfg, err := file.Resolve(models.VariantAPIM, params.Secrets{})
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.ModelDiscovery).NotTo(BeNil())
			Expect(cfg.ModelDiscovery.Provider).To(Equal(models.ProviderAzureOpenAI))
		})
	})

	Context("ModelGateway variant", func() {
		// Given a ModelGateway parameter file carrying its own targetUrl
		// When we resolve without a command-line target
		// Then the file's target should be used
		It("should take the target URL from the parameter file", func() {
			file, err := params.Parse([]byte(`{
				"parameters": {
					"connectionName": {"value": "my-gateway"},
					"gatewayName": {"value": "prod-gw"},
					"targetUrl": {"value": "https://gateway.internal/v1/"},
					"authType": {"value": "apikey"}
				}
			}`))
			Expect(err).NotTo(HaveOccurred())

			cfg, err := file.Resolve(models.VariantModelGateway, params.Secrets{APIKey: "key"})
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.TargetURL).To(Equal("https://gateway.internal/v1"))
			Expect(cfg.GatewayName).To(Equal("prod-gw"))
		})

		It("should let the command line override the file's target URL", func() {
			file, err := params.Parse([]byte(`{
				"parameters": {
					"targetUrl": {"value": "https://gateway.internal/v1"}
				}
			}`))
			Expect(err).NotTo(HaveOccurred())

			cfg, err := file.Resolve(models.VariantModelGateway, params.Secrets{TargetURL: "https://other.internal"})
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.TargetURL).To(Equal("https://other.internal"))
		})

		// Given only some of the three dynamic discovery parameters
		// When we resolve a ModelGateway configuration
		// Then the discovery config should keep the provider empty so the
		// pipeline can report exactly what is missing
		It("should not default the provider for partial dynamic discovery", func() {
			file, err := params.Parse([]byte(`{
				"parameters": {
					"listModelsEndpoint": {"value": "https://gw/models"}
				}
			}`))
			Expect(err).NotTo(HaveOccurred())

			cfg, err := file.Resolve(models.VariantModelGateway, params.Secrets{})
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.ModelDiscovery).NotTo(BeNil())
			Expect(cfg.ModelDiscovery.Provider).To(BeEmpty())
			Expect(cfg.ModelDiscovery.GetModelEndpoint).To(BeEmpty())
		})
	})

	Context("auth resolution", func() {
		It("should apply authConfig defaults for name and format", func() {
			file, err := params.Parse([]byte(`{
				"parameters": {
					"authConfig": {"value": {"name": "", "format": ""}}
				}
			}`))
			Expect(err).NotTo(HaveOccurred())

			cfg, err := file.Resolve(models.VariantModelGateway, params.Secrets{})
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.AuthHeader).NotTo(BeNil())
			Expect(cfg.AuthHeader.Name).To(Equal("api-key"))
			Expect(cfg.AuthHeader.Format).To(Equal("{api_key}"))
		})

		// Given authType oauth2 with client credentials parameters
		// When we resolve the configuration
		// Then the OAuth2 config should merge the command-line secret
		It("should build the OAuth2 config with the command-line secret", func() {
			file, err := params.Parse([]byte(`{
				"parameters": {
					"authType": {"value": "OAuth2"},
					"clientId": {"value": "client-1"},
					"tokenUrl": {"value": "https://login/token"},
					"scopes": {"value": ["api://gw/.default"]}
				}
			}`))
			Expect(err).NotTo(HaveOccurred())

			cfg, err := file.Resolve(models.VariantModelGateway, params.Secrets{ClientSecret: "s3cret"})
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.AuthType).To(Equal(models.AuthTypeOAuth2))
			Expect(cfg.OAuth2).NotTo(BeNil())
			Expect(cfg.OAuth2.ClientID).To(Equal("client-1"))
			Expect(cfg.OAuth2.ClientSecret).To(Equal("s3cret"))
			Expect(cfg.OAuth2.TokenURL).To(Equal("https://login/token"))
			Expect(cfg.OAuth2.Scopes).To(ConsistOf("api://gw/.default"))
		})

		It("should reject unknown auth types", func() {
			file, err := params.Parse([]byte(`{
				"parameters": {"authType": {"value": "certificate"}}
			}`))
			Expect(err).NotTo(HaveOccurred())

			_, err = file.Resolve(models.VariantModelGateway, params.Secrets{})
			Expect(err).To(HaveOccurred())
			Expect(valErrors.IsParameterError(err)).To(BeTrue())
		})
	})

	Context("static models", func() {
		It("should parse static model deployments", func() {
			file, err := params.Parse([]byte(`{
				"parameters": {
					"staticModels": {"value": [
						{"name": "gpt-4o", "properties": {"model": {"name": "gpt-4o", "format": "OpenAI"}}},
						{"name": "claude", "properties": {"model": {"name": "claude-3", "format": "Anthropic"}}}
					]}
				}
			}`))
			Expect(err).NotTo(HaveOccurred())

			cfg, err := file.Resolve(models.VariantModelGateway, params.Secrets{})
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.StaticModels).To(HaveLen(2))
			Expect(cfg.StaticModels[0].Name).To(Equal("gpt-4o"))
			Expect(cfg.StaticModels[1].Properties.Model.Format).To(Equal("Anthropic"))
			Expect(cfg.HasStaticModels()).To(BeTrue())
			Expect(cfg.StaticModelNames()).To(ConsistOf("gpt-4o", "claude"))
		})

		It("should reject staticModels that is not an array of objects", func() {
			file, err := params.Parse([]byte(`{
				"parameters": {"staticModels": {"value": "gpt-4o"}}
			}`))
			Expect(err).NotTo(HaveOccurred())

			_, err = file.Resolve(models.VariantModelGateway, params.Secrets{})
			Expect(err).To(HaveOccurred())
			Expect(valErrors.IsParameterError(err)).To(BeTrue())
		})
	})
})
