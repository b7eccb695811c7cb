package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  port: 9090
database:
  host: db.internal
approval:
  expiry_hours: 24
  finance_amount_threshold: 50000
  on_policy_error:
    finance: fail_closed
    system: fail_closed
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Expected port 9090, got %d", cfg.Server.Port)
	}
	if cfg.Database.Host != "db.internal" {
		t.Errorf("Expected overridden host, got %s", cfg.Database.Host)
	}
	/* Untouched defaults survive */
	if cfg.Database.Port != 5432 {
		t.Errorf("Expected default DB port, got %d", cfg.Database.Port)
	}
	if cfg.Approval.ExpiryHours != 24 {
		t.Errorf("Expected expiry 24, got %d", cfg.Approval.ExpiryHours)
	}
	if cfg.Approval.PolicyErrorMode("system") != PolicyErrorFailClosed {
		t.Error("Expected configured fail_closed for system")
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig("/nonexistent/config.yaml"); err == nil {
		t.Fatal("Expected error for missing config file")
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("SERVER_PORT", "7070")
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("APPROVAL_FINANCE_THRESHOLD", "250000")

	cfg := DefaultConfig()
	LoadFromEnv(cfg)

	if cfg.Server.Port != 7070 {
		t.Errorf("Expected port 7070, got %d", cfg.Server.Port)
	}
	if cfg.Database.Password != "secret" {
		t.Errorf("Expected env password, got %s", cfg.Database.Password)
	}
	if cfg.Approval.FinanceAmountThreshold != 250000 {
		t.Errorf("Expected threshold 250000, got %f", cfg.Approval.FinanceAmountThreshold)
	}
}

func TestPolicyErrorMode(t *testing.T) {
	cfg := DefaultConfig().Approval

	if cfg.PolicyErrorMode("finance") != PolicyErrorFailClosed {
		t.Error("Finance fails closed by default")
	}
	if cfg.PolicyErrorMode("business") != PolicyErrorFailOpen {
		t.Error("Unlisted categories fail open")
	}
}

func TestDSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host: "localhost", Port: 5432, User: "u", Password: "p", Database: "d", SSLMode: "disable",
	}
	want := "host=localhost port=5432 user=u password=p dbname=d sslmode=disable"
	if got := cfg.DSN(); got != want {
		t.Errorf("DSN() = %q, want %q", got, want)
	}
}
