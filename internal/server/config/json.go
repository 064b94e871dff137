package config

import (
	"encoding/json"
	"os"

	"github.com/businessinrwanda/marketplace/internal/flagx"
	"github.com/businessinrwanda/marketplace/internal/timex"
)

// JsonConfig is the on-disk shape of the configuration file. Only fields
// present in the file override earlier values; durations accept "15m" and
// integer nanoseconds.
type JsonConfig struct {
	EndpointAddrHTTP     *string         `json:"endpoint_addr_http"`
	EndpointAddrGRPC     *string         `json:"endpoint_addr_grpc"`
	DatabaseDSN          *string         `json:"database_dsn"`
	RedisURL             *string         `json:"redis_url"`
	IdentitySecret       *string         `json:"identity_secret"`
	IdentityIssuer       *string         `json:"identity_issuer"`
	IdentityAudience     *string         `json:"identity_audience"`
	SessionTTL           *timex.Duration `json:"session_ttl"`
	SessionCookieName    *string         `json:"session_cookie_name"`
	SessionCookieSecure  *bool           `json:"session_cookie_secure"`
	SessionPurgeSchedule *string         `json:"session_purge_schedule"`
	ClaimCacheTTL        *timex.Duration `json:"claim_cache_ttl"`
	ClaimDuplicates      *string         `json:"claim_duplicates"`
	AuthRateLimit        *float64        `json:"auth_rate_limit"`
	AuthRateBurst        *int            `json:"auth_rate_burst"`
	S3RootUser           *string         `json:"s3_root_user"`
	S3RootPassword       *string         `json:"s3_root_password"`
	S3Bucket             *string         `json:"s3_bucket"`
	S3Region             *string         `json:"s3_region"`
	S3BaseEndpoint       *string         `json:"s3_base_endpoint"`
	Environment          *string         `json:"environment"`
	LogLevel             *string         `json:"log_level"`
}

// parseJson loads the file named by -c/-config, if any, into config.
func parseJson(config *Config, args []string) error {
	path := flagx.ConfigFilePath(args)
	if path == "" {
		return nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return err
	}

	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.RedisURL, c.RedisURL)
	setString(&config.IdentitySecret, c.IdentitySecret)
	setString(&config.IdentityIssuer, c.IdentityIssuer)
	setString(&config.IdentityAudience, c.IdentityAudience)
	setString(&config.SessionCookieName, c.SessionCookieName)
	setString(&config.SessionPurgeSchedule, c.SessionPurgeSchedule)
	setString(&config.ClaimDuplicates, c.ClaimDuplicates)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setString(&config.Environment, c.Environment)
	setString(&config.LogLevel, c.LogLevel)

	if c.SessionTTL != nil {
		config.SessionTTL = c.SessionTTL.Duration
	}
	if c.ClaimCacheTTL != nil {
		config.ClaimCacheTTL = c.ClaimCacheTTL.Duration
	}
	if c.SessionCookieSecure != nil {
		config.SessionCookieSecure = *c.SessionCookieSecure
	}
	if c.AuthRateLimit != nil {
		config.AuthRateLimit = *c.AuthRateLimit
	}
	if c.AuthRateBurst != nil {
		config.AuthRateBurst = *c.AuthRateBurst
	}
	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
