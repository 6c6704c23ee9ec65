package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Port           string   `mapstructure:"PORT"`
	Env            string   `mapstructure:"ENV"`
	DatabaseURL    string   `mapstructure:"DATABASE_URL"`
	DBMaxConns     int32    `mapstructure:"DB_MAX_CONNS"`
	DBMinConns     int32    `mapstructure:"DB_MIN_CONNS"`
	JWTSecret      string   `mapstructure:"JWT_SECRET"`
	JWTIssuer      string   `mapstructure:"JWT_ISSUER"`
	TokenTTLHours  int      `mapstructure:"TOKEN_TTL_HOURS"`
	AdminEmails    []string `mapstructure:"ADMIN_EMAILS"`
	CORSOrigins    []string `mapstructure:"CORS_ORIGINS"`
	VerboseTracing bool     `mapstructure:"VERBOSE_TRACING"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MIN_CONNS", 5)
	v.SetDefault("JWT_ISSUER", "pdalabel")
	v.SetDefault("TOKEN_TTL_HOURS", 12)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("VERBOSE_TRACING", false)

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("ENV")
	v.BindEnv("DATABASE_URL")
	v.BindEnv("DB_MAX_CONNS")
	v.BindEnv("DB_MIN_CONNS")
	v.BindEnv("JWT_SECRET")
	v.BindEnv("JWT_ISSUER")
	v.BindEnv("TOKEN_TTL_HOURS")
	v.BindEnv("ADMIN_EMAILS")
	v.BindEnv("CORS_ORIGINS")
	v.BindEnv("VERBOSE_TRACING")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.CORSOrigins == nil {
		if origins := v.GetString("CORS_ORIGINS"); origins != "" {
			cfg.CORSOrigins = splitCSV(origins)
		}
	}
	if cfg.AdminEmails == nil {
		if emails := v.GetString("ADMIN_EMAILS"); emails != "" {
			cfg.AdminEmails = splitCSV(emails)
		}
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	return cfg, nil
}

func splitCSV(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// Validate checks that the configuration is safe to run. Outside development
// a JWT secret and at least one admin email must be configured so that the
// server never boots without a way to authenticate or administer it.
func (c *Config) Validate() error {
	if !c.IsDev() {
		if c.JWTSecret == "" {
			return fmt.Errorf("JWT_SECRET is required when ENV is not development")
		}
		if len(c.JWTSecret) < 32 {
			return fmt.Errorf("JWT_SECRET must be at least 32 characters, got %d", len(c.JWTSecret))
		}
		if len(c.AdminEmails) == 0 {
			return fmt.Errorf("ADMIN_EMAILS must list at least one administrator address")
		}
	}
	if c.TokenTTLHours <= 0 {
		return fmt.Errorf("TOKEN_TTL_HOURS must be positive, got %d", c.TokenTTLHours)
	}
	for _, e := range c.AdminEmails {
		if !strings.Contains(e, "@") {
			return fmt.Errorf("ADMIN_EMAILS entry %q is not an email address", e)
		}
	}
	return nil
}

// IsAdminEmail reports whether the given address is in the configured
// administrator allowlist. Comparison is case-insensitive.
func (c *Config) IsAdminEmail(email string) bool {
	for _, e := range c.AdminEmails {
		if strings.EqualFold(e, email) {
			return true
		}
	}
	return false
}
