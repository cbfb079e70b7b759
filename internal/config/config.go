package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	DefaultUserHeader = "X-Sharer-User-Id"
)

type Config struct {
	App        AppConfig        `yaml:"app"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	Kafka      KafkaConfig      `yaml:"kafka"`
	API        APIConfig        `yaml:"api"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Logging    LoggingConfig    `yaml:"logging"`
	Backup     BackupConfig     `yaml:"backup"`
	Exports    ExportConfig     `yaml:"exports"`
	Pagination PaginationConfig `yaml:"pagination"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

type DatabaseConfig struct {
	Driver   string         `yaml:"driver"`
	Path     string         `yaml:"path"`
	Postgres PostgresConfig `yaml:"postgres"`
}

type PostgresConfig struct {
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	User           string `yaml:"user"`
	Password       string `yaml:"password"`
	DBName         string `yaml:"dbname"`
	SSLMode        string `yaml:"sslmode"`
	MaxConnections int    `yaml:"max_connections"`
}

// DSN renders a libpq style connection string understood by pgx.
func (p PostgresConfig) DSN() string {
	parts := []string{
		fmt.Sprintf("host=%s", p.Host),
		fmt.Sprintf("port=%d", p.Port),
		fmt.Sprintf("dbname=%s", p.DBName),
		fmt.Sprintf("sslmode=%s", p.SSLMode),
	}
	if p.User != "" {
		parts = append(parts, fmt.Sprintf("user=%s", p.User))
	}
	if p.Password != "" {
		parts = append(parts, fmt.Sprintf("password=%s", p.Password))
	}
	return strings.Join(parts, " ")
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

type KafkaConfig struct {
	Brokers      []string `yaml:"brokers"`
	Topic        string   `yaml:"topic"`
	PollInterval int      `yaml:"poll_interval_ms"`
	BatchSize    int      `yaml:"batch_size"`
	MaxRetries   int      `yaml:"max_retries"`
}

func (k KafkaConfig) Enabled() bool {
	return len(k.Brokers) > 0 && k.Topic != ""
}

type APIConfig struct {
	HTTP       APIHTTPConfig      `yaml:"http"`
	GRPC       APIGRPCConfig      `yaml:"grpc"`
	UserHeader string             `yaml:"user_header"`
	RateLimit  APIRateLimitConfig `yaml:"rate_limit"`
}

type APIHTTPConfig struct {
	Port           int `yaml:"port"`
	RequestTimeout int `yaml:"request_timeout_seconds"`
}

type APIGRPCConfig struct {
	Enabled    bool `yaml:"enabled"`
	Port       int  `yaml:"port"`
	Reflection bool `yaml:"reflection"`
}

type APIRateLimitConfig struct {
	Enabled       bool `yaml:"enabled"`
	Requests      int  `yaml:"requests"`
	WindowSeconds int  `yaml:"window_seconds"`
	Burst         int  `yaml:"burst"`
}

type MonitoringConfig struct {
	PrometheusEnabled bool `yaml:"prometheus_enabled"`
	PrometheusPort    int  `yaml:"prometheus_port"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

type BackupConfig struct {
	Enabled       bool   `yaml:"enabled"`
	IntervalHours int    `yaml:"interval_hours"`
	RetentionDays int    `yaml:"retention_days"`
	StoragePath   string `yaml:"storage_path"`
}

type ExportConfig struct {
	Path string `yaml:"path"`
}

type PaginationConfig struct {
	RequestsPageSize int `yaml:"requests_page_size"`
}

// Load reads an optional .env file, expands ${VARS} in the YAML and applies defaults.
func Load(configPath string) (*Config, error) {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	expanded := []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err := yaml.Unmarshal(expanded, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverSQLite:
		if c.Database.Path == "" {
			return errors.New("database path is required")
		}
	case DriverPostgres:
		if c.Database.Postgres.Host == "" || c.Database.Postgres.DBName == "" {
			return errors.New("postgres host and dbname are required")
		}
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}

	if c.API.HTTP.Port <= 0 || c.API.HTTP.Port > 65535 {
		return fmt.Errorf("invalid http port %d", c.API.HTTP.Port)
	}
	if c.API.GRPC.Enabled && c.API.GRPC.Port == c.API.HTTP.Port {
		return errors.New("grpc and http ports must differ")
	}
	if len(c.Kafka.Brokers) > 0 && c.Kafka.Topic == "" {
		return errors.New("kafka topic is required when brokers are set")
	}
	if c.Backup.Enabled && c.Database.Driver != DriverSQLite {
		return errors.New("backups are only supported for the sqlite driver")
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.App.Name == "" {
		c.App.Name = "shareit"
	}
	if c.Database.Driver == "" {
		c.Database.Driver = DriverSQLite
	}
	c.Database.Driver = strings.ToLower(c.Database.Driver)
	if c.Database.Postgres.Port == 0 {
		c.Database.Postgres.Port = 5432
	}
	if c.Database.Postgres.SSLMode == "" {
		c.Database.Postgres.SSLMode = "disable"
	}
	if c.Database.Postgres.MaxConnections == 0 {
		c.Database.Postgres.MaxConnections = 10
	}

	if c.API.HTTP.Port == 0 {
		c.API.HTTP.Port = 8080
	}
	if c.API.HTTP.RequestTimeout == 0 {
		c.API.HTTP.RequestTimeout = 30
	}
	if c.API.GRPC.Port == 0 {
		c.API.GRPC.Port = 8081
	}
	if c.API.UserHeader == "" {
		c.API.UserHeader = DefaultUserHeader
	}
	if c.API.RateLimit.Requests == 0 {
		c.API.RateLimit.Requests = 20
	}
	if c.API.RateLimit.WindowSeconds == 0 {
		c.API.RateLimit.WindowSeconds = 1
	}
	if c.API.RateLimit.Burst == 0 {
		c.API.RateLimit.Burst = c.API.RateLimit.Requests
	}

	if c.Monitoring.PrometheusEnabled && c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}

	if c.Kafka.PollInterval == 0 {
		c.Kafka.PollInterval = 2000
	}
	if c.Kafka.BatchSize == 0 {
		c.Kafka.BatchSize = 20
	}
	if c.Kafka.MaxRetries == 0 {
		c.Kafka.MaxRetries = 5
	}

	if c.Backup.IntervalHours == 0 {
		c.Backup.IntervalHours = 24
	}
	if c.Backup.RetentionDays == 0 {
		c.Backup.RetentionDays = 7
	}
	if c.Backup.StoragePath == "" {
		c.Backup.StoragePath = "backups"
	}
	if c.Exports.Path == "" {
		c.Exports.Path = "exports"
	}
	if c.Pagination.RequestsPageSize == 0 {
		c.Pagination.RequestsPageSize = 10
	}
}
