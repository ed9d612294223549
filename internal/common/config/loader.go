// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

func Load() (*Config, error) {
	loadEnvFile()

	// Base config
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath("../../configs")
	viper.AddConfigPath(".")

	// Enable ENV override like SERVER_PORT, DATABASE_POSTGRES_HOST
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	// Environment overlay, e.g. config.production.yaml
	viper.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = viper.MergeInConfig() // ignore error if not found

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// loadEnvFile tries .env from the locations a dev shell may run from.
func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
	}
	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "loan-orchestrator"
	}
	if cfg.App.Environment == "" {
		cfg.App.Environment = "development"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.AdminPort == 0 {
		cfg.Server.AdminPort = 9090
	}
	if cfg.Server.RateLimit.Capacity == 0 {
		cfg.Server.RateLimit.Capacity = 50
	}
	if cfg.Server.RateLimit.RefillMS == 0 {
		cfg.Server.RateLimit.RefillMS = 1000
	}
	if cfg.Storage.Profiles.Backend == "" {
		cfg.Storage.Profiles.Backend = "csv"
	}
	if cfg.Storage.Profiles.CSVPath == "" {
		cfg.Storage.Profiles.CSVPath = "data/applicants.csv"
	}
	if cfg.Storage.Audit.Backend == "" {
		cfg.Storage.Audit.Backend = "csv"
	}
	if cfg.Storage.Audit.CSVPath == "" {
		cfg.Storage.Audit.CSVPath = "data/audit_log.csv"
	}
	if cfg.Storage.Metrics.Backend == "" {
		cfg.Storage.Metrics.Backend = "csv"
	}
	if cfg.Storage.Metrics.CSVPath == "" {
		cfg.Storage.Metrics.CSVPath = "data/metrics.csv"
	}
	if cfg.Underwriting.AnnualRatePercent == 0 {
		cfg.Underwriting.AnnualRatePercent = 12.0
	}
	if cfg.Underwriting.DefaultTenure == 0 {
		cfg.Underwriting.DefaultTenure = 36
	}
	if len(cfg.Underwriting.QuoteTenures) == 0 {
		cfg.Underwriting.QuoteTenures = []int{12, 24, 36, 48, 60}
	}
	if cfg.Documents.Dir == "" {
		cfg.Documents.Dir = "data/pdfs"
	}
	if cfg.Documents.BaseURL == "" {
		cfg.Documents.BaseURL = "/pdf"
	}
	if cfg.Database.Elasticsearch.AuditIndex == "" {
		cfg.Database.Elasticsearch.AuditIndex = "loan-audit"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "console"
	}
}

func validateConfig(cfg *Config) error {
	switch cfg.Storage.Profiles.Backend {
	case "csv", "postgres":
	default:
		return fmt.Errorf("unknown profiles backend %q", cfg.Storage.Profiles.Backend)
	}
	switch cfg.Storage.Audit.Backend {
	case "csv", "postgres", "redis", "elasticsearch":
	default:
		return fmt.Errorf("unknown audit backend %q", cfg.Storage.Audit.Backend)
	}
	switch cfg.Storage.Metrics.Backend {
	case "csv", "postgres", "redis":
	default:
		return fmt.Errorf("unknown metrics backend %q", cfg.Storage.Metrics.Backend)
	}
	if cfg.Underwriting.AnnualRatePercent < 0 {
		return fmt.Errorf("annual_rate_percent must be >= 0")
	}
	return nil
}
