// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App           AppConfig          `mapstructure:"app"`
	Server        ServerConfig       `mapstructure:"server"`
	Database      DatabaseConfig     `mapstructure:"database"`
	Storage       StorageConfig      `mapstructure:"storage"`
	Underwriting  UnderwritingConfig `mapstructure:"underwriting"`
	Documents     DocumentsConfig    `mapstructure:"documents"`
	Notifications NotificationConfig `mapstructure:"notifications"`
	Logging       LoggingConfig      `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Port      int `mapstructure:"port"`
	AdminPort int `mapstructure:"admin_port"` // prometheus + pprof

	RateLimit struct {
		Enabled  bool `mapstructure:"enabled"`
		Capacity int  `mapstructure:"capacity"`
		RefillMS int  `mapstructure:"refill_ms"`
	} `mapstructure:"rate_limit"`
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type ElasticsearchConfig struct {
	Addresses  []string `mapstructure:"addresses"`
	Username   string   `mapstructure:"username"`
	Password   string   `mapstructure:"password"`
	AuditIndex string   `mapstructure:"audit_index"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// --- Storage backend selection ---

// StorageConfig selects the backend for each external collaborator. The
// pipeline only sees the store/sink interfaces; the flat-file backends mirror
// the original deployment, the others are drop-in durable replacements.
type StorageConfig struct {
	Profiles ProfileStorageConfig `mapstructure:"profiles"`
	Audit    SinkStorageConfig    `mapstructure:"audit"`
	Metrics  SinkStorageConfig    `mapstructure:"metrics"`
}

type ProfileStorageConfig struct {
	Backend string `mapstructure:"backend"` // csv | postgres
	CSVPath string `mapstructure:"csv_path"`
}

type SinkStorageConfig struct {
	Backend string `mapstructure:"backend"` // csv | postgres | redis | elasticsearch (audit only)
	CSVPath string `mapstructure:"csv_path"`
}

// --- Domain Configuration ---

type UnderwritingConfig struct {
	AnnualRatePercent float64 `mapstructure:"annual_rate_percent"`
	DefaultTenure     int     `mapstructure:"default_tenure"`
	QuoteTenures      []int   `mapstructure:"quote_tenures"`
}

type DocumentsConfig struct {
	Dir     string `mapstructure:"dir"`
	BaseURL string `mapstructure:"base_url"`
}

// NotificationConfig holds settings for the decision-notification step.
type NotificationConfig struct {
	Email struct {
		Enabled   bool   `mapstructure:"enabled"`
		FromEmail string `mapstructure:"from_email"`
	} `mapstructure:"email"`
	SMS struct {
		Enabled bool `mapstructure:"enabled"`
	} `mapstructure:"sms"`
	AWS struct {
		Region string `mapstructure:"region"`
	} `mapstructure:"aws"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
