// Package config loads server configuration from the environment, with an
// optional .env file for local development.
package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Config holds all server configuration. Values come from LARDER_* environment
// variables; anything unset falls back to a sensible self-hosted default.
type Config struct {
	Port     string
	DBPath   string
	LogLevel string

	S3Endpoint  string
	S3Bucket    string
	S3Region    string
	S3AccessKey string
	S3SecretKey string

	BackupPassphrase string

	VAPIDPublicKey  string
	VAPIDPrivateKey string
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first if present; real environment variables win.
func Load() Config {
	godotenv.Load()

	return Config{
		Port:     envOr("LARDER_PORT", "8080"),
		DBPath:   envOr("LARDER_DB_PATH", "larder.db"),
		LogLevel: envOr("LARDER_LOG_LEVEL", "info"),

		S3Endpoint:  os.Getenv("LARDER_S3_ENDPOINT"),
		S3Bucket:    os.Getenv("LARDER_S3_BUCKET"),
		S3Region:    envOr("LARDER_S3_REGION", "auto"),
		S3AccessKey: os.Getenv("LARDER_S3_ACCESS_KEY"),
		S3SecretKey: os.Getenv("LARDER_S3_SECRET_KEY"),

		BackupPassphrase: os.Getenv("LARDER_BACKUP_PASSPHRASE"),

		VAPIDPublicKey:  os.Getenv("LARDER_VAPID_PUBLIC_KEY"),
		VAPIDPrivateKey: os.Getenv("LARDER_VAPID_PRIVATE_KEY"),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
