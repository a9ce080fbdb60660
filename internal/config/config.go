package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the procurement API service.
type Config struct {
	AppName                string
	AppEnv                 string
	AppPort                string
	DatabaseURL            string
	RedisURL               string
	NATSURL                string
	StorageEndpoint        string
	StorageAccessKey       string
	StorageSecretKey       string
	StorageUseSSL          bool
	AIProvider             string
	OpenAIAPIKey           string
	OpenAIModel            string
	GeminiAPIKey           string
	GeminiModel            string
	RaterTimeout           time.Duration
	DashboardCacheTTL      time.Duration
	QualificationThreshold float64
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("PROCURA")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "Procura API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("ai.provider", "gemini")
	v.SetDefault("rating.timeout", "45s")
	v.SetDefault("rating.qualification_threshold", 6.0)
	v.SetDefault("dashboard.cache_ttl", "5m")

	raterTimeout, err := time.ParseDuration(v.GetString("rating.timeout"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid rating timeout: %w", err)
	}
	if raterTimeout <= 0 {
		raterTimeout = 45 * time.Second
	}

	cacheTTL, err := time.ParseDuration(v.GetString("dashboard.cache_ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid dashboard cache ttl: %w", err)
	}

	cfg := Config{
		AppName:                v.GetString("app.name"),
		AppEnv:                 v.GetString("app.env"),
		AppPort:                v.GetString("app.port"),
		DatabaseURL:            v.GetString("database.url"),
		RedisURL:               v.GetString("redis.url"),
		NATSURL:                v.GetString("nats.url"),
		StorageEndpoint:        v.GetString("storage.endpoint"),
		StorageAccessKey:       v.GetString("storage.access_key"),
		StorageSecretKey:       v.GetString("storage.secret_key"),
		StorageUseSSL:          v.GetBool("storage.use_ssl"),
		AIProvider:             strings.ToLower(v.GetString("ai.provider")),
		OpenAIAPIKey:           v.GetString("openai_api_key"),
		OpenAIModel:            v.GetString("openai_model"),
		GeminiAPIKey:           v.GetString("gemini_api_key"),
		GeminiModel:            v.GetString("gemini_model"),
		RaterTimeout:           raterTimeout,
		DashboardCacheTTL:      cacheTTL,
		QualificationThreshold: v.GetFloat64("rating.qualification_threshold"),
	}

	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("database url must be provided")
	}

	if cfg.QualificationThreshold < 0 || cfg.QualificationThreshold > 10 {
		return Config{}, fmt.Errorf("qualification threshold must be within [0,10]")
	}

	return cfg, nil
}
