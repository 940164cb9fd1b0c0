// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
}

// JWTConfig provides JWT validation settings for middleware.
type JWTConfig interface {
	GetJWTAccessSecret() string
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
}

// EmailConfig provides settings for outbound email sending.
type EmailConfig interface {
	GetEmailEnabled() bool
	GetEmailProvider() string
	GetMailgunAPIKey() string
	GetMailgunDomain() string
	GetMailgunBaseURL() string
	GetSMTPHost() string
	GetSMTPPort() int
	GetSMTPUsername() string
	GetSMTPPassword() string
	GetEmailFromName() string
	GetEmailFromAddress() string
}

// WebhookConfig provides settings for inbound email webhook verification.
type WebhookConfig interface {
	GetMailgunSigningKey() string
}

// AIConfig provides settings for the OpenRouter text-generation service.
type AIConfig interface {
	GetOpenRouterAPIKey() string
	GetOpenRouterBaseURL() string
	GetOpenRouterModel() string
	GetGenerationTimeout() time.Duration
	IsAIEnabled() bool
}

// HandoverConfig provides defaults for handover notifications.
type HandoverConfig interface {
	GetHandoverDefaultRecipient() string
	GetHandoverFinanceRecipient() string
	GetHandoverServiceRecipient() string
}

// CRMConfig provides settings for the CRM relay.
type CRMConfig interface {
	GetCRMWebhookURL() string
	GetCRMAuthToken() string
	IsCRMEnabled() bool
}

// SchedulerConfig provides settings for the asynq scheduler/worker.
type SchedulerConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
	GetAsynqQueueName() string
	GetAsynqConcurrency() int
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env             string
	HTTPAddr        string
	DatabaseURL     string
	JWTAccessSecret string
	CORSAllowAll    bool
	CORSOrigins     []string
	CORSAllowCreds  bool

	EmailEnabled     bool
	EmailProvider    string // "mailgun" or "smtp"
	MailgunAPIKey    string
	MailgunDomain    string
	MailgunBaseURL   string
	MailgunSigningKey string
	SMTPHost         string
	SMTPPort         int
	SMTPUsername     string
	SMTPPassword     string
	EmailFromName    string
	EmailFromAddress string

	OpenRouterAPIKey  string
	OpenRouterBaseURL string
	OpenRouterModel   string
	GenerationTimeout time.Duration

	HandoverDefaultRecipient string
	HandoverFinanceRecipient string
	HandoverServiceRecipient string

	CRMWebhookURL string
	CRMAuthToken  string

	RedisURL         string
	RedisTLSInsecure bool
	AsynqQueueName   string
	AsynqConcurrency int
}

// Load reads configuration from the environment (and .env if present).
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:5173"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	cfg := &Config{
		Env:             getEnv("APP_ENV", "development"),
		HTTPAddr:        getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:     getEnv("DATABASE_URL", ""),
		JWTAccessSecret: getEnv("JWT_ACCESS_SECRET", ""),
		CORSAllowAll:    corsAllowAll,
		CORSOrigins:     corsOrigins,
		CORSAllowCreds:  strings.EqualFold(getEnv("CORS_ALLOW_CREDENTIALS", "true"), "true"),

		EmailEnabled:      strings.EqualFold(getEnv("EMAIL_ENABLED", "true"), "true"),
		EmailProvider:     strings.ToLower(getEnv("EMAIL_PROVIDER", "mailgun")),
		MailgunAPIKey:     getEnv("MAILGUN_API_KEY", ""),
		MailgunDomain:     getEnv("MAILGUN_DOMAIN", ""),
		MailgunBaseURL:    getEnv("MAILGUN_BASE_URL", "https://api.mailgun.net/v3"),
		MailgunSigningKey: getEnv("MAILGUN_SIGNING_KEY", ""),
		SMTPHost:          getEnv("SMTP_HOST", ""),
		SMTPPort:          getEnvInt("SMTP_PORT", 587),
		SMTPUsername:      getEnv("SMTP_USERNAME", ""),
		SMTPPassword:      getEnv("SMTP_PASSWORD", ""),
		EmailFromName:     getEnv("EMAIL_FROM_NAME", "MailMind"),
		EmailFromAddress:  getEnv("EMAIL_FROM_ADDRESS", ""),

		OpenRouterAPIKey:  getEnv("OPENROUTER_API_KEY", ""),
		OpenRouterBaseURL: getEnv("OPENROUTER_BASE_URL", "https://openrouter.ai/api/v1"),
		OpenRouterModel:   getEnv("OPENROUTER_MODEL", "openai/gpt-4o-mini"),
		GenerationTimeout: mustDuration(getEnv("GENERATION_TIMEOUT", "30s")),

		HandoverDefaultRecipient: getEnv("HANDOVER_DEFAULT_RECIPIENT", ""),
		HandoverFinanceRecipient: getEnv("HANDOVER_FINANCE_RECIPIENT", ""),
		HandoverServiceRecipient: getEnv("HANDOVER_SERVICE_RECIPIENT", ""),

		CRMWebhookURL: getEnv("CRM_WEBHOOK_URL", ""),
		CRMAuthToken:  getEnv("CRM_AUTH_TOKEN", ""),

		RedisURL:         getEnv("REDIS_URL", ""),
		RedisTLSInsecure: strings.EqualFold(getEnv("REDIS_TLS_INSECURE", "false"), "true"),
		AsynqQueueName:   getEnv("ASYNQ_QUEUE", "default"),
		AsynqConcurrency: getEnvInt("ASYNQ_CONCURRENCY", 10),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.JWTAccessSecret == "" {
		return nil, fmt.Errorf("JWT_ACCESS_SECRET is required")
	}
	if cfg.EmailProvider != "mailgun" && cfg.EmailProvider != "smtp" {
		return nil, fmt.Errorf("EMAIL_PROVIDER must be mailgun or smtp")
	}
	if cfg.EmailEnabled && cfg.EmailProvider == "mailgun" && (cfg.MailgunAPIKey == "" || cfg.MailgunDomain == "") {
		return nil, fmt.Errorf("MAILGUN_API_KEY and MAILGUN_DOMAIN are required when email is enabled with the mailgun provider")
	}
	if cfg.EmailEnabled && cfg.EmailProvider == "smtp" && cfg.SMTPHost == "" {
		return nil, fmt.Errorf("SMTP_HOST is required when email is enabled with the smtp provider")
	}
	if cfg.EmailEnabled && cfg.EmailFromAddress == "" {
		return nil, fmt.Errorf("EMAIL_FROM_ADDRESS is required when email is enabled")
	}
	if cfg.HandoverDefaultRecipient == "" {
		return nil, fmt.Errorf("HANDOVER_DEFAULT_RECIPIENT is required")
	}
	if cfg.CORSAllowAll && cfg.CORSAllowCreds {
		return nil, fmt.Errorf("CORS_ALLOW_CREDENTIALS cannot be true when CORS_ALLOW_ALL is true")
	}

	return cfg, nil
}

// =============================================================================
// Interface Implementations
// =============================================================================

func (c *Config) GetDatabaseURL() string { return c.DatabaseURL }

func (c *Config) GetJWTAccessSecret() string { return c.JWTAccessSecret }

func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool  { return c.CORSAllowCreds }

func (c *Config) GetEmailEnabled() bool     { return c.EmailEnabled }
func (c *Config) GetEmailProvider() string  { return c.EmailProvider }
func (c *Config) GetMailgunAPIKey() string  { return c.MailgunAPIKey }
func (c *Config) GetMailgunDomain() string  { return c.MailgunDomain }
func (c *Config) GetMailgunBaseURL() string { return c.MailgunBaseURL }
func (c *Config) GetSMTPHost() string       { return c.SMTPHost }
func (c *Config) GetSMTPPort() int          { return c.SMTPPort }
func (c *Config) GetSMTPUsername() string   { return c.SMTPUsername }
func (c *Config) GetSMTPPassword() string   { return c.SMTPPassword }
func (c *Config) GetEmailFromName() string  { return c.EmailFromName }
func (c *Config) GetEmailFromAddress() string { return c.EmailFromAddress }

func (c *Config) GetMailgunSigningKey() string { return c.MailgunSigningKey }

func (c *Config) GetOpenRouterAPIKey() string        { return c.OpenRouterAPIKey }
func (c *Config) GetOpenRouterBaseURL() string       { return c.OpenRouterBaseURL }
func (c *Config) GetOpenRouterModel() string         { return c.OpenRouterModel }
func (c *Config) GetGenerationTimeout() time.Duration { return c.GenerationTimeout }
func (c *Config) IsAIEnabled() bool                  { return c.OpenRouterAPIKey != "" }

func (c *Config) GetHandoverDefaultRecipient() string { return c.HandoverDefaultRecipient }
func (c *Config) GetHandoverFinanceRecipient() string { return c.HandoverFinanceRecipient }
func (c *Config) GetHandoverServiceRecipient() string { return c.HandoverServiceRecipient }

func (c *Config) GetCRMWebhookURL() string { return c.CRMWebhookURL }
func (c *Config) GetCRMAuthToken() string  { return c.CRMAuthToken }
func (c *Config) IsCRMEnabled() bool       { return c.CRMWebhookURL != "" }

func (c *Config) GetRedisURL() string      { return c.RedisURL }
func (c *Config) GetRedisTLSInsecure() bool { return c.RedisTLSInsecure }
func (c *Config) GetAsynqQueueName() string { return c.AsynqQueueName }
func (c *Config) GetAsynqConcurrency() int  { return c.AsynqConcurrency }

// =============================================================================
// Helpers
// =============================================================================

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	val, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return n
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}
