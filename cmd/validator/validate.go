package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/foundrygate/gateway-validator/internal/models"
	"github.com/foundrygate/gateway-validator/internal/params"
	"github.com/foundrygate/gateway-validator/internal/services"
	"github.com/foundrygate/gateway-validator/pkg/gateway"
	"github.com/foundrygate/gateway-validator/pkg/scheduler"
)

// errValidationFailed signals a non-zero exit after the deferred cleanup
// (scheduler drain, database close) has run.
var errValidationFailed = errors.New("one or more validations failed")

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Run the connection validation pipeline",
	Long: `Runs the four-stage validation pipeline against one or more
parameters files: parameter validation, model discovery validation,
model existence validation and a chat completion smoke test.

Secrets are taken from flags or from the environment:
API_KEY, CLIENT_SECRET, DEPLOYMENT_NAME, TARGET_URL.`,
	RunE: runValidate,
}

func init() {
	flags := validateCmd.Flags()
	flags.StringArray("params", nil, "path to a parameters file (repeatable)")
	flags.String("variant", "", "connection variant: apim or model-gateway")
	flags.String("api-key", "", "gateway API key (overrides API_KEY)")
	flags.String("client-secret", "", "OAuth2 client secret (overrides CLIENT_SECRET)")
	flags.String("deployment-name", "", "deployment to validate (overrides DEPLOYMENT_NAME)")
	flags.String("target-url", "", "gateway base URL (overrides TARGET_URL)")
	flags.Bool("verbose", false, "print full request and response details")
	cobra.CheckErr(validateCmd.MarkFlagRequired("params"))
	cobra.CheckErr(validateCmd.MarkFlagRequired("variant"))

	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	paths, _ := cmd.Flags().GetStringArray("params")
	rawVariant, _ := cmd.Flags().GetString("variant")
	verbose, _ := cmd.Flags().GetBool("verbose")

	variant, err := models.ParseVariant(rawVariant)
	if err != nil {
		return err
	}

	secrets := params.Secrets{
		APIKey:         flagOrEnv(cmd, "api-key", "API_KEY"),
		ClientSecret:   flagOrEnv(cmd, "client-secret", "CLIENT_SECRET"),
		DeploymentName: flagOrEnv(cmd, "deployment-name", "DEPLOYMENT_NAME"),
		TargetURL:      flagOrEnv(cmd, "target-url", "TARGET_URL"),
	}

	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	if st != nil {
		defer st.Close()
	}

	client := gateway.NewClient(
		gateway.WithTimeout(cfg.Validator.RequestTimeout),
		gateway.WithMaxTries(cfg.Validator.MaxRetries),
	)
	sched := scheduler.NewScheduler[services.Outcome](cfg.Validator.NumWorkers)
	defer sched.Close()

	svc := services.NewValidationService(sched, client, st)

	reqs := make([]services.Request, 0, len(paths))
	for _, path := range paths {
		reqs = append(reqs, services.Request{
			ParamsPath: path,
			Variant:    variant,
			Secrets:    secrets,
			Verbose:    verbose,
		})
	}

	failed := false
	for _, outcome := range svc.ValidateAll(cmd.Context(), reqs) {
		fmt.Fprint(cmd.OutOrStdout(), outcome.Output)
		if outcome.Err != nil {
			zap.S().Named("validate_cmd").Errorw("validation failed to run", "error", outcome.Err)
			failed = true
			continue
		}
		if !outcome.Run.Passed() {
			failed = true
		}
	}
	if failed {
		return errValidationFailed
	}
	return nil
}

func flagOrEnv(cmd *cobra.Command, flag, env string) string {
	if value, _ := cmd.Flags().GetString(flag); value != "" {
		return value
	}
	return os.Getenv(env)
}
