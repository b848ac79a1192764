package app

import (
	"time"

	"github.com/deangilmoreremix/smartcrm-backend/internal/platform/envutil"
	"github.com/deangilmoreremix/smartcrm-backend/internal/platform/logger"
)

type Config struct {
	Port        string
	Environment string
	Version     string

	JWTSecretKey    string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	WebhookSecret string
	SMSDailyLimit int
	AIProvider    string
	RulesPath     string

	MetricsAddr string
}

func LoadConfig(log *logger.Logger) Config {
	cfg := Config{
		Port:            envutil.String("PORT", "8080"),
		Environment:     envutil.String("ENVIRONMENT", "development"),
		Version:         envutil.String("SERVICE_VERSION", "dev"),
		JWTSecretKey:    envutil.String("JWT_SECRET_KEY", "defaultsecret"),
		AccessTokenTTL:  time.Duration(envutil.Int("ACCESS_TOKEN_TTL", 3600)) * time.Second,
		RefreshTokenTTL: time.Duration(envutil.Int("REFRESH_TOKEN_TTL", 86400)) * time.Second,
		WebhookSecret:   envutil.String("WEBHOOK_SECRET", ""),
		SMSDailyLimit:   envutil.Int("SMS_DAILY_LIMIT", 10),
		AIProvider:      envutil.String("AI_PROVIDER", "openai"),
		RulesPath:       envutil.String("RULES_PATH", ""),
		MetricsAddr:     envutil.String("METRICS_ADDR", ""),
	}
	if cfg.JWTSecretKey == "defaultsecret" {
		log.Warn("JWT_SECRET_KEY not set; using insecure default")
	}
	if cfg.WebhookSecret == "" {
		log.Warn("WEBHOOK_SECRET not set; inbound webhooks will be rejected")
	}
	return cfg
}
