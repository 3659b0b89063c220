package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

// parseEnv overlays configuration from environment variables. A .env file
// in the working directory is loaded first if present; real environment
// variables take precedence over it.
//
// Recognized variables:
//
//	FICOM_ENDPOINT_ADDR
//	FICOM_DATABASE_DSN
//	FICOM_JWT_SECRET
//	FICOM_SESSION_SECRET
//	FICOM_ENVIRONMENT
//	FICOM_ACCESS_TOKEN_TTL   (Go duration string, e.g. "15m")
//	FICOM_REFRESH_TOKEN_TTL  (Go duration string, e.g. "168h")
//
// Unset variables leave the current value untouched. Malformed durations
// are ignored.
func parseEnv(config *Config) {
	_ = godotenv.Load()

	if v := os.Getenv("FICOM_ENDPOINT_ADDR"); v != "" {
		config.EndpointAddr = v
	}
	if v := os.Getenv("FICOM_DATABASE_DSN"); v != "" {
		config.DatabaseDSN = v
	}
	if v := os.Getenv("FICOM_JWT_SECRET"); v != "" {
		config.JWTSecret = v
	}
	if v := os.Getenv("FICOM_SESSION_SECRET"); v != "" {
		config.SessionSecret = v
	}
	if v := os.Getenv("FICOM_ENVIRONMENT"); v != "" {
		config.Environment = v
	}
	if v := os.Getenv("FICOM_ACCESS_TOKEN_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			config.AccessTokenValidityDuration = d
		}
	}
	if v := os.Getenv("FICOM_REFRESH_TOKEN_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			config.RefreshTokenValidityDuration = d
		}
	}
}
