/*-------------------------------------------------------------------------
 *
 * config.go
 *    Configuration for the approval server
 *
 * Configuration is loaded from a YAML file when a path is given,
 * otherwise from environment variables on top of built-in defaults.
 *
 * Copyright (c) 2024-2026, Sysafari Logistics <dev@sysafari.com>
 *
 * IDENTIFICATION
 *    sysafari-logistics/internal/config/config.go
 *
 *-------------------------------------------------------------------------
 */

package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

/* Policy error modes for CheckAndCreate (per operation category) */
const (
	PolicyErrorFailOpen   = "fail_open"
	PolicyErrorFailClosed = "fail_closed"
)

type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Database      DatabaseConfig      `yaml:"database"`
	Logging       LoggingConfig       `yaml:"logging"`
	Approval      ApprovalConfig      `yaml:"approval"`
	Notifications NotificationsConfig `yaml:"notifications"`
	Roles         []RoleConfig        `yaml:"roles"`
}

type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

type DatabaseConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	Database        string        `yaml:"database"`
	SSLMode         string        `yaml:"ssl_mode"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `yaml:"conn_max_idle_time"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

/* ApprovalConfig holds the policy knobs of the approval engine */
type ApprovalConfig struct {
	/* Hours from creation until a pending request is considered expired.
	 * Expiry is advisory: pending requests stay decidable past it. */
	ExpiryHours int `yaml:"expiry_hours"`

	/* Threshold for amount-gated finance triggers. An amount equal to
	 * the threshold meets it. */
	FinanceAmountThreshold float64 `yaml:"finance_amount_threshold"`

	/* Behavior of the gate when the approval record cannot be persisted,
	 * keyed by operation category. Unlisted categories fail open. */
	OnPolicyError map[string]string `yaml:"on_policy_error"`
}

type NotificationsConfig struct {
	Workers      int           `yaml:"workers"`
	PollInterval time.Duration `yaml:"poll_interval"`
	Webhook      WebhookConfig `yaml:"webhook"`
	SMTP         SMTPConfig    `yaml:"smtp"`
}

type WebhookConfig struct {
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout"`
}

type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
}

/* RoleConfig overrides or extends the built-in role hierarchy */
type RoleConfig struct {
	Code          string `yaml:"code"`
	Level         int    `yaml:"level"`
	CanManageTeam bool   `yaml:"can_manage_team"`
	CanApprove    bool   `yaml:"can_approve"`
}

/* DefaultConfig returns the built-in defaults */
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		Database: DatabaseConfig{
			Host:            "localhost",
			Port:            5432,
			User:            "sysafari",
			Password:        "sysafari",
			Database:        "sysafari",
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
			ConnMaxIdleTime: 10 * time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Approval: ApprovalConfig{
			ExpiryHours:            72,
			FinanceAmountThreshold: 100000,
			OnPolicyError: map[string]string{
				"finance": PolicyErrorFailClosed,
			},
		},
		Notifications: NotificationsConfig{
			Workers:      2,
			PollInterval: 5 * time.Second,
			Webhook: WebhookConfig{
				Timeout: 30 * time.Second,
			},
		},
	}
}

/* LoadConfig loads configuration from a YAML file on top of defaults */
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

/* LoadFromEnv overrides configuration from environment variables */
func LoadFromEnv(cfg *Config) {
	cfg.Server.Host = getEnv("SERVER_HOST", cfg.Server.Host)
	cfg.Server.Port = getEnvInt("SERVER_PORT", cfg.Server.Port)
	cfg.Server.ReadTimeout = getEnvDuration("SERVER_READ_TIMEOUT", cfg.Server.ReadTimeout)
	cfg.Server.WriteTimeout = getEnvDuration("SERVER_WRITE_TIMEOUT", cfg.Server.WriteTimeout)

	cfg.Database.Host = getEnv("DB_HOST", cfg.Database.Host)
	cfg.Database.Port = getEnvInt("DB_PORT", cfg.Database.Port)
	cfg.Database.User = getEnv("DB_USER", cfg.Database.User)
	cfg.Database.Password = getEnv("DB_PASSWORD", cfg.Database.Password)
	cfg.Database.Database = getEnv("DB_NAME", cfg.Database.Database)
	cfg.Database.SSLMode = getEnv("DB_SSL_MODE", cfg.Database.SSLMode)
	cfg.Database.MaxOpenConns = getEnvInt("DB_MAX_OPEN_CONNS", cfg.Database.MaxOpenConns)
	cfg.Database.MaxIdleConns = getEnvInt("DB_MAX_IDLE_CONNS", cfg.Database.MaxIdleConns)
	cfg.Database.ConnMaxLifetime = getEnvDuration("DB_CONN_MAX_LIFETIME", cfg.Database.ConnMaxLifetime)

	cfg.Logging.Level = getEnv("LOG_LEVEL", cfg.Logging.Level)
	cfg.Logging.Format = getEnv("LOG_FORMAT", cfg.Logging.Format)

	cfg.Approval.ExpiryHours = getEnvInt("APPROVAL_EXPIRY_HOURS", cfg.Approval.ExpiryHours)
	cfg.Approval.FinanceAmountThreshold = getEnvFloat("APPROVAL_FINANCE_THRESHOLD", cfg.Approval.FinanceAmountThreshold)

	cfg.Notifications.Webhook.URL = getEnv("NOTIFY_WEBHOOK_URL", cfg.Notifications.Webhook.URL)
	cfg.Notifications.SMTP.Host = getEnv("NOTIFY_SMTP_HOST", cfg.Notifications.SMTP.Host)
	cfg.Notifications.SMTP.Port = getEnvInt("NOTIFY_SMTP_PORT", cfg.Notifications.SMTP.Port)
	cfg.Notifications.SMTP.User = getEnv("NOTIFY_SMTP_USER", cfg.Notifications.SMTP.User)
	cfg.Notifications.SMTP.Password = getEnv("NOTIFY_SMTP_PASSWORD", cfg.Notifications.SMTP.Password)
	cfg.Notifications.SMTP.From = getEnv("NOTIFY_SMTP_FROM", cfg.Notifications.SMTP.From)
}

/* DSN builds a lib/pq connection string */
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode)
}

/* PolicyErrorMode returns the configured gate failure mode for a category */
func (c ApprovalConfig) PolicyErrorMode(category string) string {
	if mode, ok := c.OnPolicyError[category]; ok {
		return mode
	}
	return PolicyErrorFailOpen
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
