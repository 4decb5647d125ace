package api

import (
	"flag"
	"testing"
)

func TestParseConfigDefaults(t *testing.T) {
	fs := flag.NewFlagSet("api", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.HTTPAddr != "localhost:8000" {
		t.Fatalf("http addr = %q, want localhost:8000", cfg.HTTPAddr)
	}
	if cfg.Runtime.DBPath != "data/leaveledger.db" {
		t.Fatalf("db path = %q, want data/leaveledger.db", cfg.Runtime.DBPath)
	}
	if cfg.Runtime.BcryptCost != 10 {
		t.Fatalf("bcrypt cost = %d, want 10", cfg.Runtime.BcryptCost)
	}
	if cfg.Log.Level != "info" {
		t.Fatalf("log level = %q, want info", cfg.Log.Level)
	}
}

func TestParseConfigOverrides(t *testing.T) {
	t.Setenv("LEAVELEDGER_HTTP_ADDR", "env-http")
	t.Setenv("LEAVELEDGER_DB_PATH", "env.db")
	t.Setenv("LEAVELEDGER_ADMIN_EMAIL", "ops@example.com")

	fs := flag.NewFlagSet("api", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, []string{"-http-addr", "flag-http"})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.HTTPAddr != "flag-http" {
		t.Fatalf("http addr = %q, want flag-http", cfg.HTTPAddr)
	}
	if cfg.Runtime.DBPath != "env.db" {
		t.Fatalf("db path = %q, want env.db", cfg.Runtime.DBPath)
	}
	if cfg.Runtime.AdminEmail != "ops@example.com" {
		t.Fatalf("admin email = %q, want ops@example.com", cfg.Runtime.AdminEmail)
	}
}

func TestParseConfigRejectsBadEnv(t *testing.T) {
	t.Setenv("LEAVELEDGER_BCRYPT_COST", "lots")

	fs := flag.NewFlagSet("api", flag.ContinueOnError)
	if _, err := ParseConfig(fs, nil); err == nil {
		t.Fatal("expected error for non-numeric bcrypt cost")
	}
}
