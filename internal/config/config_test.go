package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("SHAREIT_DB_PATH", "shareit-test.db")

	path := writeConfig(t, `
app:
  name: shareit
  environment: test
database:
  path: "${SHAREIT_DB_PATH}"
api:
  http:
    port: 9000
kafka:
  brokers: ["localhost:9092"]
  topic: shareit.events
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, "shareit-test.db", cfg.Database.Path)
	assert.Equal(t, 9000, cfg.API.HTTP.Port)
	assert.Equal(t, 8081, cfg.API.GRPC.Port)
	assert.Equal(t, "X-Sharer-User-Id", cfg.API.UserHeader)
	assert.Equal(t, 10, cfg.Pagination.RequestsPageSize)
	assert.True(t, cfg.Kafka.Enabled())
	assert.Equal(t, 20, cfg.API.RateLimit.Burst)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidateConfig(t *testing.T) {
	base := func() Config {
		c := Config{Database: DatabaseConfig{Path: "shareit.db"}}
		c.applyDefaults()
		return c
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "valid sqlite", mutate: func(c *Config) {}},
		{name: "missing sqlite path", mutate: func(c *Config) { c.Database.Path = "" }, wantErr: true},
		{name: "unknown driver", mutate: func(c *Config) { c.Database.Driver = "oracle" }, wantErr: true},
		{
			name: "postgres without host",
			mutate: func(c *Config) {
				c.Database.Driver = DriverPostgres
				c.Database.Postgres.DBName = "shareit"
			},
			wantErr: true,
		},
		{
			name: "postgres valid",
			mutate: func(c *Config) {
				c.Database.Driver = DriverPostgres
				c.Database.Postgres.Host = "localhost"
				c.Database.Postgres.DBName = "shareit"
			},
		},
		{
			name: "kafka brokers without topic",
			mutate: func(c *Config) {
				c.Kafka.Brokers = []string{"localhost:9092"}
				c.Kafka.Topic = ""
			},
			wantErr: true,
		},
		{
			name: "grpc port clash",
			mutate: func(c *Config) {
				c.API.GRPC.Enabled = true
				c.API.GRPC.Port = c.API.HTTP.Port
			},
			wantErr: true,
		},
		{
			name: "backup on postgres",
			mutate: func(c *Config) {
				c.Database.Driver = DriverPostgres
				c.Database.Postgres.Host = "localhost"
				c.Database.Postgres.DBName = "shareit"
				c.Backup.Enabled = true
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPostgresDSN(t *testing.T) {
	p := PostgresConfig{Host: "db", Port: 5432, User: "app", Password: "secret", DBName: "shareit", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 dbname=shareit sslmode=disable user=app password=secret", p.DSN())
}
