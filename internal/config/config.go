package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// ErrInvalidConfig возвращается, если конфигурация не прошла валидацию
var ErrInvalidConfig = errors.New("config: invalid configuration")

// Config конфигурация сервиса
type Config struct {
	Server      ServerConfig      `toml:"server"`
	Database    DatabaseConfig    `toml:"database"`
	Logs        LogsConfig        `toml:"logs"`
	Metrics     MetricsConfig     `toml:"metrics"`
	Reservation ReservationConfig `toml:"reservation"`
	Pricing     PricingConfig     `toml:"pricing"`
	Midtrans    MidtransConfig    `toml:"midtrans"`
	RabbitMQ    RabbitMQConfig    `toml:"rabbitmq"`
	Redis       RedisConfig       `toml:"redis"`
	RateLimit   RateLimitConfig   `toml:"rate_limit"`
	Admin       AdminConfig       `toml:"admin"`
}

type ServerConfig struct {
	HTTPPort        int `toml:"http_port"`
	ReadTimeout     int `toml:"read_timeout"`  // секунды
	WriteTimeout    int `toml:"write_timeout"` // секунды
	IdleTimeout     int `toml:"idle_timeout"`  // секунды
	ShutdownTimeout int `toml:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	DBName          string `toml:"dbname"`
	SSLMode         string `toml:"sslmode"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime"` // секунды
	AutoMigrate     bool   `toml:"auto_migrate"`
	MigrationsDir   string `toml:"migrations_dir"`
}

// DSN строка подключения к PostgreSQL
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

type LogsConfig struct {
	File  string `toml:"file"`
	Level string `toml:"level"`
}

type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	Path        string `toml:"path"`
	ServiceName string `toml:"service_name"`
}

// ReservationConfig параметры транзакции бронирования
type ReservationConfig struct {
	BaseTimeoutMs          int `toml:"base_timeout_ms"`
	PerOccurrenceTimeoutMs int `toml:"per_occurrence_timeout_ms"`
	SlotDurationMinutes    int `toml:"slot_duration_minutes"`
	PaymentExpiryMinutes   int `toml:"payment_expiry_minutes"`
	MaxOccurrences         int `toml:"max_occurrences"`
}

// DiscountTierConfig ступень скидки в конфиге
type DiscountTierConfig struct {
	MinSessions int `toml:"min_sessions"`
	Percentage  int `toml:"percentage"`
}

// PricingConfig таблица скидок по умолчанию (используется, если в БД пусто)
type PricingConfig struct {
	DiscountTiers []DiscountTierConfig `toml:"discount_tiers"`
}

type MidtransConfig struct {
	BaseURL   string `toml:"base_url"`
	ServerKey string `toml:"server_key"`
	Timeout   int    `toml:"timeout"` // секунды
}

type RabbitMQConfig struct {
	Enabled  bool   `toml:"enabled"`
	URL      string `toml:"url"`
	Exchange string `toml:"exchange"`
}

type RedisConfig struct {
	Enabled           bool   `toml:"enabled"`
	Addr              string `toml:"addr"`
	Password          string `toml:"password"`
	DB                int    `toml:"db"`
	Prefix            string `toml:"prefix"`
	PreviewTTLSeconds int    `toml:"preview_ttl_seconds"`
}

type RateLimitConfig struct {
	Enabled bool    `toml:"enabled"`
	RPS     float64 `toml:"rps"`
	Burst   int     `toml:"burst"`
}

type AdminConfig struct {
	UserIDs []int64 `toml:"user_ids"`
}

// secrets значения, которые переопределяются переменными окружения
type secrets struct {
	DBPassword        string `envconfig:"DB_PASSWORD"`
	MidtransServerKey string `envconfig:"MIDTRANS_SERVER_KEY"`
	RabbitMQURL       string `envconfig:"RABBITMQ_URL"`
	RedisPassword     string `envconfig:"REDIS_PASSWORD"`
}

// Load читает config.toml, затем .env (если есть) и переменные окружения
func Load(path string) (*Config, error) {
	cfg := Default()

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("config: decode %s: %w", path, err)
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config: load .env: %w", err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Default конфигурация со значениями по умолчанию
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort:        8080,
			ReadTimeout:     10,
			WriteTimeout:    30,
			IdleTimeout:     60,
			ShutdownTimeout: 15,
		},
		Database: DatabaseConfig{
			Host:            "localhost",
			Port:            5432,
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 300,
			MigrationsDir:   "migrations",
		},
		Logs: LogsConfig{Level: "info"},
		Metrics: MetricsConfig{
			Path:        "/metrics",
			ServiceName: "court_booking_service",
		},
		Reservation: ReservationConfig{
			BaseTimeoutMs:          5000,
			PerOccurrenceTimeoutMs: 200,
			SlotDurationMinutes:    60,
			PaymentExpiryMinutes:   60,
			MaxOccurrences:         104,
		},
		Midtrans: MidtransConfig{
			BaseURL: "https://app.sandbox.midtrans.com",
			Timeout: 10,
		},
		RabbitMQ: RabbitMQConfig{Exchange: "court_booking.events"},
		Redis: RedisConfig{
			Addr:              "localhost:6379",
			Prefix:            "court_booking",
			PreviewTTLSeconds: 60,
		},
		RateLimit: RateLimitConfig{RPS: 5, Burst: 10},
	}
}

func (c *Config) applyEnv() error {
	var s secrets
	if err := envconfig.Process("", &s); err != nil {
		return fmt.Errorf("config: read environment: %w", err)
	}
	if s.DBPassword != "" {
		c.Database.Password = s.DBPassword
	}
	if s.MidtransServerKey != "" {
		c.Midtrans.ServerKey = s.MidtransServerKey
	}
	if s.RabbitMQURL != "" {
		c.RabbitMQ.URL = s.RabbitMQURL
	}
	if s.RedisPassword != "" {
		c.Redis.Password = s.RedisPassword
	}
	return nil
}

// Validate проверяет согласованность конфигурации
func (c *Config) Validate() error {
	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		return fmt.Errorf("%w: server.http_port out of range: %d", ErrInvalidConfig, c.Server.HTTPPort)
	}
	if c.Database.Host == "" || c.Database.DBName == "" {
		return fmt.Errorf("%w: database.host and database.dbname are required", ErrInvalidConfig)
	}
	if c.Reservation.BaseTimeoutMs <= 0 || c.Reservation.PerOccurrenceTimeoutMs < 0 {
		return fmt.Errorf("%w: reservation timeouts must be positive", ErrInvalidConfig)
	}
	if c.Reservation.SlotDurationMinutes <= 0 {
		return fmt.Errorf("%w: reservation.slot_duration_minutes must be positive", ErrInvalidConfig)
	}
	if c.Reservation.MaxOccurrences <= 0 {
		return fmt.Errorf("%w: reservation.max_occurrences must be positive", ErrInvalidConfig)
	}
	if c.Midtrans.ServerKey == "" {
		return fmt.Errorf("%w: midtrans.server_key is required (or MIDTRANS_SERVER_KEY)", ErrInvalidConfig)
	}
	if c.RabbitMQ.Enabled && c.RabbitMQ.URL == "" {
		return fmt.Errorf("%w: rabbitmq.url is required when rabbitmq is enabled", ErrInvalidConfig)
	}
	if c.RateLimit.Enabled && (c.RateLimit.RPS <= 0 || c.RateLimit.Burst <= 0) {
		return fmt.Errorf("%w: rate_limit.rps and rate_limit.burst must be positive", ErrInvalidConfig)
	}

	seen := make(map[int]struct{}, len(c.Pricing.DiscountTiers))
	for _, tier := range c.Pricing.DiscountTiers {
		if tier.MinSessions <= 0 || tier.Percentage < 0 || tier.Percentage > 100 {
			return fmt.Errorf("%w: invalid discount tier %+v", ErrInvalidConfig, tier)
		}
		if _, dup := seen[tier.MinSessions]; dup {
			return fmt.Errorf("%w: duplicate discount tier min_sessions=%d", ErrInvalidConfig, tier.MinSessions)
		}
		seen[tier.MinSessions] = struct{}{}
	}

	return nil
}

// IsAdmin проверяет, входит ли пользователь в список администраторов
func (a AdminConfig) IsAdmin(userID int64) bool {
	for _, id := range a.UserIDs {
		if id == userID {
			return true
		}
	}
	return false
}
