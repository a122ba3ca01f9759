package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName                string
	AppEnv                 string
	AppPort                string
	DatabaseURL            string
	RedisURL               string
	NATSURL                string
	JWTSecret              string
	SessionTTL             time.Duration
	TeacherID              string
	TeacherPasswordHash    string
	TeacherPasswordSalt    string
	CloudinaryCloudName    string
	CloudinaryAPIKey       string
	CloudinaryAPISecret    string
	CloudinaryUploadFolder string
	AnalyticsCacheTTL      time.Duration
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
	v.SetEnvPrefix("QUIZDECK")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "QuizDeck API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("session.ttl", "8h")
	v.SetDefault("cloudinary.folder", "quizdeck/papers")
	v.SetDefault("analytics.cache_ttl", "5m")

	sessionTTL, err := time.ParseDuration(v.GetString("session.ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid session ttl: %w", err)
	}

	cacheTTL, err := time.ParseDuration(v.GetString("analytics.cache_ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid analytics cache ttl: %w", err)
	}

	cfg := Config{
		AppName:                v.GetString("app.name"),
		AppEnv:                 v.GetString("app.env"),
		AppPort:                v.GetString("app.port"),
		DatabaseURL:            v.GetString("database.url"),
		RedisURL:               v.GetString("redis.url"),
		NATSURL:                v.GetString("nats.url"),
		JWTSecret:              v.GetString("jwt.secret"),
		SessionTTL:             sessionTTL,
		TeacherID:              v.GetString("teacher.id"),
		TeacherPasswordHash:    v.GetString("teacher.password_hash"),
		TeacherPasswordSalt:    v.GetString("teacher.password_salt"),
		CloudinaryCloudName:    v.GetString("cloudinary.cloud_name"),
		CloudinaryAPIKey:       v.GetString("cloudinary.api_key"),
		CloudinaryAPISecret:    v.GetString("cloudinary.api_secret"),
		CloudinaryUploadFolder: v.GetString("cloudinary.folder"),
		AnalyticsCacheTTL:      cacheTTL,
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	if cfg.TeacherID == "" || cfg.TeacherPasswordHash == "" {
		return Config{}, fmt.Errorf("teacher credentials must be provided")
	}

	return cfg, nil
}
