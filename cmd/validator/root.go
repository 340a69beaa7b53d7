package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/foundrygate/gateway-validator/internal/config"
	"github.com/foundrygate/gateway-validator/internal/store"
	"github.com/foundrygate/gateway-validator/internal/store/migrations"
)

var (
	v   = viper.New()
	cfg *config.Configuration

	rootCmd = &cobra.Command{
		Use:           "validator",
		Short:         "Validate AI gateway connection configurations",
		Long:          "Validates AI gateway connections end to end: parameters file, model discovery, model existence and a chat completion smoke test.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Secrets commonly live in a local .env during development.
			_ = godotenv.Load()

			var err error
			cfg, err = config.Load(v)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return setupLogger(cfg)
		},
	}
)

func init() {
	v.SetEnvPrefix("VALIDATOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	flags := rootCmd.PersistentFlags()
	flags.Int("workers", 3, "number of parallel validation workers")
	flags.String("data-folder", "", "folder for the run history database (empty disables persistence)")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.String("log-format", "console", "log format (console, json)")

	cobra.CheckErr(v.BindPFlag("validator.num_workers", flags.Lookup("workers")))
	cobra.CheckErr(v.BindPFlag("validator.data_folder", flags.Lookup("data-folder")))
	cobra.CheckErr(v.BindPFlag("log_level", flags.Lookup("log-level")))
	cobra.CheckErr(v.BindPFlag("log_format", flags.Lookup("log-format")))
}

func setupLogger(cfg *config.Configuration) error {
	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}

	zapCfg := zap.NewProductionConfig()
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	zapCfg.Encoding = cfg.LogFormat
	if cfg.LogFormat == "console" {
		zapCfg.EncoderConfig = zap.NewDevelopmentEncoderConfig()
	}
	zapCfg.OutputPaths = []string{"stderr"}

	logger, err := zapCfg.Build()
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	zap.ReplaceGlobals(logger)
	return nil
}

// openStore opens the run history database under the configured data
// folder, or returns nil when persistence is disabled.
func openStore(cmd *cobra.Command) (*store.Store, error) {
	if cfg.Validator.DataFolder == "" {
		return nil, nil
	}
	if err := os.MkdirAll(cfg.Validator.DataFolder, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data folder: %w", err)
	}

	db, err := store.NewDB(filepath.Join(cfg.Validator.DataFolder, "validator.db"))
	if err != nil {
		return nil, err
	}
	if err := migrations.Run(cmd.Context(), db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store.NewStore(db), nil
}

// requireStore is openStore for commands that cannot run without history.
func requireStore(cmd *cobra.Command) (*store.Store, error) {
	st, err := openStore(cmd)
	if err != nil {
		return nil, err
	}
	if st == nil {
		return nil, fmt.Errorf("this command requires --data-folder (or VALIDATOR_VALIDATOR_DATA_FOLDER)")
	}
	return st, nil
}
