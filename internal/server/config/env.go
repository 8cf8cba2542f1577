package config

import (
	"os"
	"time"
)

// parseEnv overlays Config fields from environment variables. Variables are
// usually provided by the process environment or a .env file loaded with
// godotenv before LoadConfig runs. Unset variables leave the current value.
func parseEnv(config *Config) {
	if v, ok := os.LookupEnv("ENDPOINT_ADDR"); ok {
		config.EndpointAddr = v
	}
	if v, ok := os.LookupEnv("DATABASE_DSN"); ok {
		config.DatabaseDSN = v
	}
	if v, ok := os.LookupEnv("SECRET_KEY"); ok {
		config.SecretKey = v
	}
	if v, ok := os.LookupEnv("BATCH_TOKEN_VALIDITY_DURATION"); ok {
		if d, err := time.ParseDuration(v); err == nil {
			config.BatchTokenValidityDuration = d
		}
	}
	if v, ok := os.LookupEnv("CREDENTIAL_VALIDITY_DURATION"); ok {
		if d, err := time.ParseDuration(v); err == nil {
			config.CredentialValidityDuration = d
		}
	}
	if v, ok := os.LookupEnv("S3_ROOT_USER"); ok {
		config.S3RootUser = v
	}
	if v, ok := os.LookupEnv("S3_ROOT_PASSWORD"); ok {
		config.S3RootPassword = v
	}
	if v, ok := os.LookupEnv("S3_BUCKET"); ok {
		config.S3Bucket = v
	}
	if v, ok := os.LookupEnv("S3_REGION"); ok {
		config.S3Region = v
	}
	if v, ok := os.LookupEnv("S3_BASE_ENDPOINT"); ok {
		config.S3BaseEndpoint = v
	}
}
