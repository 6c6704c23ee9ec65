package config

import (
	"os"
	"testing"
)

func setEnv(t *testing.T, key, value string) {
	t.Helper()
	old, had := os.LookupEnv(key)
	os.Setenv(key, value)
	t.Cleanup(func() {
		if had {
			os.Setenv(key, old)
		} else {
			os.Unsetenv(key)
		}
	})
}

func TestLoad_Defaults(t *testing.T) {
	setEnv(t, "DATABASE_URL", "postgres://localhost/pda_test")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "8000" {
		t.Errorf("expected default port 8000, got %s", cfg.Port)
	}
	if cfg.Env != "development" {
		t.Errorf("expected default env development, got %s", cfg.Env)
	}
	if cfg.TokenTTLHours != 12 {
		t.Errorf("expected default token TTL 12h, got %d", cfg.TokenTTLHours)
	}
	if !cfg.IsDev() {
		t.Error("expected IsDev true for default config")
	}
}

func TestLoad_MissingDatabaseURL(t *testing.T) {
	setEnv(t, "DATABASE_URL", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error when DATABASE_URL is unset")
	}
}

func TestLoad_AdminEmailsCSV(t *testing.T) {
	setEnv(t, "DATABASE_URL", "postgres://localhost/pda_test")
	setEnv(t, "ADMIN_EMAILS", "admin@pharmacy.test, second@pharmacy.test")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.AdminEmails) != 2 {
		t.Fatalf("expected 2 admin emails, got %d: %v", len(cfg.AdminEmails), cfg.AdminEmails)
	}
	if !cfg.IsAdminEmail("ADMIN@pharmacy.test") {
		t.Error("expected admin check to be case-insensitive")
	}
	if cfg.IsAdminEmail("nobody@pharmacy.test") {
		t.Error("unexpected admin match for unknown address")
	}
}

func TestValidate_ProductionRequiresSecret(t *testing.T) {
	cfg := &Config{
		Env:           "production",
		DatabaseURL:   "postgres://localhost/pda",
		TokenTTLHours: 12,
		AdminEmails:   []string{"admin@pharmacy.test"},
	}
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation failure without JWT_SECRET in production")
	}

	cfg.JWTSecret = "short"
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation failure for short JWT_SECRET")
	}

	cfg.JWTSecret = "0123456789abcdef0123456789abcdef"
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected valid production config, got %v", err)
	}
}

func TestValidate_AdminEmailFormat(t *testing.T) {
	cfg := &Config{
		Env:           "development",
		DatabaseURL:   "postgres://localhost/pda",
		TokenTTLHours: 12,
		AdminEmails:   []string{"not-an-email"},
	}
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation failure for malformed admin email")
	}
}
