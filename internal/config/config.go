// Package config loads application configuration from environment
// variables and an optional config file.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the full application configuration.
type Config struct {
	App         AppConfig         `mapstructure:"app"`
	HTTP        HTTPConfig        `mapstructure:"http"`
	DB          DBConfig          `mapstructure:"db"`
	Auth        AuthConfig        `mapstructure:"auth"`
	Log         LogConfig         `mapstructure:"log"`
	Reservation ReservationConfig `mapstructure:"reservation"`
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Env     string `mapstructure:"env"`
	Version string `mapstructure:"version"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Addr            string        `mapstructure:"addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
}

// DBConfig holds database connection settings.
type DBConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime time.Duration `mapstructure:"max_conn_idle_time"`
}

// AuthConfig holds JWT settings.
type AuthConfig struct {
	JWTSecret      string        `mapstructure:"jwt_secret"`
	Issuer         string        `mapstructure:"issuer"`
	AccessTokenTTL time.Duration `mapstructure:"access_token_ttl"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// ReservationConfig tunes the reservation coordinator and background
// sweeps.
type ReservationConfig struct {
	NotifyBeforeAllotment bool          `mapstructure:"notify_before_allotment"`
	ConflictRetries       int           `mapstructure:"conflict_retries"`
	DefaultValidity       time.Duration `mapstructure:"default_validity"`
	SweepSchedule         string        `mapstructure:"sweep_schedule"`
	StaleGrace            time.Duration `mapstructure:"stale_grace"`
	SweepBatchSize        int           `mapstructure:"sweep_batch_size"`
}

// Load reads configuration from config.yaml (if present) and the
// environment. Environment variables use the SHOWROOM_ prefix with
// underscores, e.g. SHOWROOM_DB_DSN.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/showroom")

	v.SetEnvPrefix("SHOWROOM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// Config file is optional; env vars and defaults suffice.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.env", "development")
	v.SetDefault("app.version", "dev")

	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.read_timeout", 15*time.Second)
	v.SetDefault("http.write_timeout", 30*time.Second)
	v.SetDefault("http.idle_timeout", 60*time.Second)
	v.SetDefault("http.shutdown_timeout", 30*time.Second)

	v.SetDefault("db.max_conns", 25)
	v.SetDefault("db.min_conns", 5)
	v.SetDefault("db.max_conn_lifetime", time.Hour)
	v.SetDefault("db.max_conn_idle_time", 30*time.Minute)

	v.SetDefault("auth.issuer", "showroom")
	v.SetDefault("auth.access_token_ttl", 15*time.Minute)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)

	v.SetDefault("reservation.notify_before_allotment", false)
	v.SetDefault("reservation.conflict_retries", 1)
	v.SetDefault("reservation.default_validity", 7*24*time.Hour)
	v.SetDefault("reservation.sweep_schedule", "@every 1m")
	v.SetDefault("reservation.stale_grace", 72*time.Hour)
	v.SetDefault("reservation.sweep_batch_size", 100)
}

func (c *Config) validate() error {
	if c.DB.DSN == "" {
		return fmt.Errorf("db.dsn is required (SHOWROOM_DB_DSN)")
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is required (SHOWROOM_AUTH_JWT_SECRET)")
	}
	return nil
}
