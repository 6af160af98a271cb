// Package config loads application configuration from file and environment.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"opstock/internal/domain/consumption"
)

// Config holds all application configuration.
type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	Logger      LoggerConfig
	JWT         JWTConfig
	Consumption ConsumptionConfig
	Migrations  MigrationsConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string

	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// DSN builds a PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode)
}

// LoggerConfig holds logging settings.
type LoggerConfig struct {
	Level       string
	Development bool
}

// JWTConfig holds authentication settings. When Enabled is false the API
// runs without authentication (development mode).
type JWTConfig struct {
	Enabled        bool
	Secret         string
	Issuer         string
	AccessTokenTTL time.Duration
}

// ConsumptionConfig holds production consumption settings.
type ConsumptionConfig struct {
	// OnMissingStock: "skip" reports zero consumption for materials
	// without a stock record, "fail" rejects the whole call
	OnMissingStock consumption.MissingStockPolicy
}

// MigrationsConfig holds schema migration settings.
type MigrationsConfig struct {
	Enabled bool
	Path    string
}

// Load reads configuration from config.yaml and OPSTOCK_* environment
// variables. Env vars win over the file; both fall back to defaults.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	v.AddConfigPath("/etc/opstock")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		// No config file is fine, defaults and env vars apply
	}

	v.SetEnvPrefix("OPSTOCK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		Server: ServerConfig{
			Host:            v.GetString("server.host"),
			Port:            v.GetInt("server.port"),
			ReadTimeout:     v.GetDuration("server.read_timeout"),
			WriteTimeout:    v.GetDuration("server.write_timeout"),
			ShutdownTimeout: v.GetDuration("server.shutdown_timeout"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			Name:            v.GetString("database.name"),
			SSLMode:         v.GetString("database.sslmode"),
			MaxConns:        v.GetInt32("database.max_conns"),
			MinConns:        v.GetInt32("database.min_conns"),
			MaxConnLifetime: v.GetDuration("database.max_conn_lifetime"),
			MaxConnIdleTime: v.GetDuration("database.max_conn_idle_time"),
		},
		Logger: LoggerConfig{
			Level:       v.GetString("logger.level"),
			Development: v.GetBool("logger.development"),
		},
		JWT: JWTConfig{
			Enabled:        v.GetBool("jwt.enabled"),
			Secret:         v.GetString("jwt.secret"),
			Issuer:         v.GetString("jwt.issuer"),
			AccessTokenTTL: v.GetDuration("jwt.access_token_ttl"),
		},
		Consumption: ConsumptionConfig{
			OnMissingStock: consumption.MissingStockPolicy(v.GetString("consumption.on_missing_stock")),
		},
		Migrations: MigrationsConfig{
			Enabled: v.GetBool("migrations.enabled"),
			Path:    v.GetString("migrations.path"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "opstock")
	v.SetDefault("database.password", "opstock")
	v.SetDefault("database.name", "opstock")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.max_conn_lifetime", time.Hour)
	v.SetDefault("database.max_conn_idle_time", 30*time.Minute)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.development", false)

	v.SetDefault("jwt.enabled", false)
	v.SetDefault("jwt.issuer", "opstock")
	v.SetDefault("jwt.access_token_ttl", 15*time.Minute)

	v.SetDefault("consumption.on_missing_stock", string(consumption.PolicySkip))

	v.SetDefault("migrations.enabled", true)
	v.SetDefault("migrations.path", "migrations")
}

func (c *Config) validate() error {
	if c.JWT.Enabled && c.JWT.Secret == "" {
		return fmt.Errorf("jwt.secret is required when jwt.enabled is true")
	}
	if !c.Consumption.OnMissingStock.Valid() {
		return fmt.Errorf("consumption.on_missing_stock must be %q or %q",
			consumption.PolicySkip, consumption.PolicyFail)
	}
	return nil
}
