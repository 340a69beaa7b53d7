// Package config defines the configuration structure for the gateway
// validator.
//
// # Configuration Structure
//
//	Configuration
//	├── Server         - HTTP server settings (service mode)
//	├── Validator      - Pipeline workers, data folder, HTTP client tuning
//	├── LogFormat      - Logging format ("console" or "json")
//	└── LogLevel       - Logging verbosity
//
// # Server Configuration
//
//	┌───────────┬─────────┬───────────────────────────────┐
//	│ Field     │ Default │ Description                   │
//	├───────────┼─────────┼───────────────────────────────┤
//	│ Mode      │ "dev"   │ Server mode: "prod" or "dev"  │
//	│ HTTPPort  │ 8000    │ HTTP server listen port       │
//	└───────────┴─────────┴───────────────────────────────┘
//
// # Validator Configuration
//
//	┌────────────────┬─────────┬──────────────────────────────────────┐
//	│ Field          │ Default │ Description                          │
//	├────────────────┼─────────┼──────────────────────────────────────┤
//	│ NumWorkers     │ 3       │ Scheduler worker count               │
//	│ DataFolder     │ ""      │ DuckDB location; empty disables the  │
//	│                │         │ run history / health cache           │
//	│ RequestTimeout │ 30s     │ Per-request gateway timeout          │
//	│ MaxRetries     │ 4       │ Gateway retry attempts               │
//	└────────────────┴─────────┴──────────────────────────────────────┘
//
// Defaults come from creasty/defaults struct tags; overrides arrive via
// viper from flags, VALIDATOR_-prefixed environment variables, or an
// optional config file.
package config
