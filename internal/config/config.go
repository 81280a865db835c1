package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// VisionConfig holds external vision-model settings.
type VisionConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// IdentityConfig holds the federated identity provider settings.
type IdentityConfig struct {
	Domain       string
	ClientID     string
	ClientSecret string
}

// S3Config holds S3-compatible backup storage settings.
type S3Config struct {
	Endpoint  string
	Bucket    string
	Region    string
	AccessKey string
	SecretKey string
}

// PushConfig holds VAPID keys for web push. Empty keys disable push.
type PushConfig struct {
	VAPIDPublicKey  string
	VAPIDPrivateKey string
}

// Config is the full server configuration, read from STEWARD_* env vars.
type Config struct {
	Port          string
	BaseURL       string
	DBPath        string
	Env           string // "production" enables Secure cookies
	LogLevel      string
	SessionSecret string
	AdminEmail    string // account allowed to manage backups; empty disables the backup API

	Vision           VisionConfig
	Identity         IdentityConfig
	BackupS3         S3Config
	BackupPassphrase string
	Push             PushConfig
}

// Production reports whether the server runs in production mode.
func (c Config) Production() bool {
	return c.Env == "production"
}

// Load reads configuration from the environment, first loading a .env
// file if one exists in the working directory.
func Load() (Config, error) {
	// Missing .env is fine; explicit env vars still apply.
	_ = godotenv.Load()

	cfg := Config{
		Port:          envOr("STEWARD_PORT", "8080"),
		DBPath:        envOr("STEWARD_DB_PATH", "steward.db"),
		Env:           envOr("STEWARD_ENV", "development"),
		LogLevel:      envOr("STEWARD_LOG_LEVEL", "info"),
		SessionSecret: os.Getenv("STEWARD_SESSION_SECRET"),
		AdminEmail:    os.Getenv("STEWARD_ADMIN_EMAIL"),
		Vision: VisionConfig{
			APIKey:  os.Getenv("STEWARD_VISION_API_KEY"),
			BaseURL: envOr("STEWARD_VISION_BASE_URL", "https://generativelanguage.googleapis.com"),
			Model:   envOr("STEWARD_VISION_MODEL", "gemini-2.0-flash"),
			Timeout: 30 * time.Second,
		},
		Identity: IdentityConfig{
			Domain:       os.Getenv("STEWARD_OAUTH_DOMAIN"),
			ClientID:     os.Getenv("STEWARD_OAUTH_CLIENT_ID"),
			ClientSecret: os.Getenv("STEWARD_OAUTH_CLIENT_SECRET"),
		},
		BackupS3: S3Config{
			Endpoint:  os.Getenv("STEWARD_S3_ENDPOINT"),
			Bucket:    os.Getenv("STEWARD_S3_BUCKET"),
			Region:    envOr("STEWARD_S3_REGION", "auto"),
			AccessKey: os.Getenv("STEWARD_S3_ACCESS_KEY"),
			SecretKey: os.Getenv("STEWARD_S3_SECRET_KEY"),
		},
		BackupPassphrase: os.Getenv("STEWARD_BACKUP_PASSPHRASE"),
		Push: PushConfig{
			VAPIDPublicKey:  os.Getenv("STEWARD_VAPID_PUBLIC_KEY"),
			VAPIDPrivateKey: os.Getenv("STEWARD_VAPID_PRIVATE_KEY"),
		},
	}
	cfg.BaseURL = envOr("STEWARD_BASE_URL", "http://localhost:"+cfg.Port)

	if cfg.SessionSecret == "" {
		return Config{}, fmt.Errorf("STEWARD_SESSION_SECRET is required")
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
