package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// parseEnv overlays configuration from environment variables, loading an
// optional .env file first. Missing variables leave the current values
// untouched.
//
// Recognized variables: ADDRESS, DATABASE_URL (or DB_URL), SECRET_KEY (or
// APP_SECRET_KEY), JWT_ALGORITHM, ACCESS_TOKEN_EXP_MINUTES,
// REFRESH_TOKEN_EXP_MINUTES, S3_ROOT_USER, S3_ROOT_PASSWORD, S3_BUCKET,
// S3_REGION, S3_BASE_ENDPOINT.
func parseEnv(config *Config) {
	// Absence of a .env file is not an error.
	_ = godotenv.Load()

	setString := func(dst *string, keys ...string) {
		for _, k := range keys {
			if v, ok := os.LookupEnv(k); ok && v != "" {
				*dst = v
				return
			}
		}
	}

	setMinutes := func(dst *time.Duration, key string) {
		if v, ok := os.LookupEnv(key); ok {
			if minutes, err := strconv.Atoi(v); err == nil {
				*dst = time.Duration(minutes) * time.Minute
			}
		}
	}

	setString(&config.EndpointAddrHTTP, "ADDRESS")
	setString(&config.DatabaseDSN, "DATABASE_URL", "DB_URL")
	setString(&config.SecretKey, "APP_SECRET_KEY", "SECRET_KEY")
	setString(&config.JWTAlgorithm, "JWT_ALGORITHM")
	setMinutes(&config.AccessTokenValidityDuration, "ACCESS_TOKEN_EXP_MINUTES")
	setMinutes(&config.RefreshTokenValidityDuration, "REFRESH_TOKEN_EXP_MINUTES")
	setString(&config.S3RootUser, "S3_ROOT_USER")
	setString(&config.S3RootPassword, "S3_ROOT_PASSWORD")
	setString(&config.S3Bucket, "S3_BUCKET")
	setString(&config.S3Region, "S3_REGION")
	setString(&config.S3BaseEndpoint, "S3_BASE_ENDPOINT")
}
