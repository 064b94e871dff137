package config

import (
	"fmt"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// dotEnvFile is loaded when present; it never overrides variables that are
// already set in the process environment.
var dotEnvFile = ".env"

func loadDotEnv() {
	_ = godotenv.Load(dotEnvFile)
}

// parseEnv overlays BIR_* environment variables onto config.
func parseEnv(config *Config, lookupEnv func(string) (string, bool)) error {
	strs := map[string]*string{
		"BIR_HTTP_ADDR":              &config.EndpointAddrHTTP,
		"BIR_GRPC_ADDR":              &config.EndpointAddrGRPC,
		"BIR_DATABASE_DSN":           &config.DatabaseDSN,
		"BIR_REDIS_URL":              &config.RedisURL,
		"BIR_IDENTITY_SECRET":        &config.IdentitySecret,
		"BIR_IDENTITY_ISSUER":        &config.IdentityIssuer,
		"BIR_IDENTITY_AUDIENCE":      &config.IdentityAudience,
		"BIR_SESSION_COOKIE_NAME":    &config.SessionCookieName,
		"BIR_SESSION_PURGE_SCHEDULE": &config.SessionPurgeSchedule,
		"BIR_CLAIM_DUPLICATES":       &config.ClaimDuplicates,
		"BIR_S3_ROOT_USER":           &config.S3RootUser,
		"BIR_S3_ROOT_PASSWORD":       &config.S3RootPassword,
		"BIR_S3_BUCKET":              &config.S3Bucket,
		"BIR_S3_REGION":              &config.S3Region,
		"BIR_S3_BASE_ENDPOINT":       &config.S3BaseEndpoint,
		"BIR_ENVIRONMENT":            &config.Environment,
		"BIR_LOG_LEVEL":              &config.LogLevel,
	}
	for name, dst := range strs {
		if v, ok := lookupEnv(name); ok {
			*dst = v
		}
	}

	durations := map[string]*time.Duration{
		"BIR_SESSION_TTL":     &config.SessionTTL,
		"BIR_CLAIM_CACHE_TTL": &config.ClaimCacheTTL,
	}
	for name, dst := range durations {
		if v, ok := lookupEnv(name); ok {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			*dst = d
		}
	}

	if v, ok := lookupEnv("BIR_SESSION_COOKIE_SECURE"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("BIR_SESSION_COOKIE_SECURE: %w", err)
		}
		config.SessionCookieSecure = b
	}
	if v, ok := lookupEnv("BIR_AUTH_RATE_LIMIT"); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("BIR_AUTH_RATE_LIMIT: %w", err)
		}
		config.AuthRateLimit = f
	}
	if v, ok := lookupEnv("BIR_AUTH_RATE_BURST"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("BIR_AUTH_RATE_BURST: %w", err)
		}
		config.AuthRateBurst = n
	}

	return nil
}
