package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
[server]
http_port = 8090

[database]
host = "db"
dbname = "courts"
user = "app"
password = "from-file"

[reservation]
base_timeout_ms = 3000
per_occurrence_timeout_ms = 100

[[pricing.discount_tiers]]
min_sessions = 16
percentage = 15

[[pricing.discount_tiers]]
min_sessions = 4
percentage = 5

[midtrans]
server_key = "SB-Mid-server-file"

[admin]
user_ids = [1, 42]
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, sampleConfig)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8090, cfg.Server.HTTPPort)
	assert.Equal(t, "db", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port, "default kept")
	assert.Equal(t, 3000, cfg.Reservation.BaseTimeoutMs)
	assert.Equal(t, 60, cfg.Reservation.SlotDurationMinutes, "default kept")
	assert.Len(t, cfg.Pricing.DiscountTiers, 2)
	assert.True(t, cfg.Admin.IsAdmin(42))
	assert.False(t, cfg.Admin.IsAdmin(7))
}

func TestLoad_EnvOverridesSecrets(t *testing.T) {
	path := writeConfig(t, sampleConfig)
	t.Setenv("MIDTRANS_SERVER_KEY", "SB-Mid-server-env")
	t.Setenv("DB_PASSWORD", "from-env")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "SB-Mid-server-env", cfg.Midtrans.ServerKey)
	assert.Equal(t, "from-env", cfg.Database.Password)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := Default()
		cfg.Database.DBName = "courts"
		cfg.Midtrans.ServerKey = "key"
		return cfg
	}

	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"bad port", func(c *Config) { c.Server.HTTPPort = 0 }},
		{"no db name", func(c *Config) { c.Database.DBName = "" }},
		{"no server key", func(c *Config) { c.Midtrans.ServerKey = "" }},
		{"zero base timeout", func(c *Config) { c.Reservation.BaseTimeoutMs = 0 }},
		{"rabbit without url", func(c *Config) { c.RabbitMQ.Enabled = true }},
		{"bad tier percentage", func(c *Config) {
			c.Pricing.DiscountTiers = []DiscountTierConfig{{MinSessions: 4, Percentage: 120}}
		}},
		{"duplicate tier", func(c *Config) {
			c.Pricing.DiscountTiers = []DiscountTierConfig{{MinSessions: 4, Percentage: 5}, {MinSessions: 4, Percentage: 6}}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}
}

func TestDSN(t *testing.T) {
	d := DatabaseConfig{Host: "h", Port: 1, User: "u", Password: "p", DBName: "d", SSLMode: "disable"}
	assert.Equal(t, "host=h port=1 user=u password=p dbname=d sslmode=disable", d.DSN())
}
