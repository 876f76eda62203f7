package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port               string        `json:"port"`
	BucketName         string        `json:"bucketName"`
	Region             string        `json:"region"`
	AwsAccessKeyID     string        `json:"awsAccessKeyId"`
	AwsSecretAccessKey string        `json:"awsSecretAccessKey"`
	DatabaseURL        string        `json:"databaseUrl"`
	JWTSecret          string        `json:"jwtSecret"`
	JWTIssuer          string        `json:"jwtIssuer"`
	UploadURLExpiry    time.Duration `json:"uploadUrlExpiry"`
	DownloadURLExpiry  time.Duration `json:"downloadUrlExpiry"`
	ShutdownTimeout    time.Duration `json:"shutdownTimeout"`
	RateLimitPerSecond int           `json:"rateLimitPerSecond"`
	RateLimitBurst     int           `json:"rateLimitBurst"`
}

const (
	defaultPort               = "8080"
	defaultUploadURLMinutes   = 15
	defaultDownloadURLDays    = 7
	defaultShutdownSeconds    = 10
	defaultRateLimitPerSecond = 20
	defaultRateLimitBurst     = 40
)

func LoadConfig() (*Config, error) {
	// Create a new Config instance
	config := &Config{}

	// Retrieve and assign the values from environment variables
	config.Port = os.Getenv("PORT")
	config.BucketName = os.Getenv("BUCKET_NAME")
	config.Region = os.Getenv("REGION")
	config.AwsAccessKeyID = os.Getenv("AWS_ACCESS_KEY_ID")
	config.AwsSecretAccessKey = os.Getenv("AWS_SECRET_ACCESS_KEY")
	config.DatabaseURL = os.Getenv("DATABASE_URL")
	config.JWTSecret = os.Getenv("JWT_SECRET")
	config.JWTIssuer = os.Getenv("JWT_ISSUER")

	config.UploadURLExpiry = minutesFromEnv("UPLOAD_URL_EXPIRY_MINUTES", defaultUploadURLMinutes)
	config.DownloadURLExpiry = time.Duration(intFromEnv("DOWNLOAD_URL_EXPIRY_DAYS", defaultDownloadURLDays)) * 24 * time.Hour
	config.ShutdownTimeout = time.Duration(intFromEnv("SHUTDOWN_TIMEOUT_SECONDS", defaultShutdownSeconds)) * time.Second
	config.RateLimitPerSecond = intFromEnv("RATE_LIMIT_PER_SECOND", defaultRateLimitPerSecond)
	config.RateLimitBurst = intFromEnv("RATE_LIMIT_BURST", defaultRateLimitBurst)

	if config.Port == "" {
		config.Port = defaultPort
	}

	if config.BucketName == "" {
		return nil, fmt.Errorf("BUCKET_NAME must be set")
	}

	if config.Region == "" {
		return nil, fmt.Errorf("REGION must be set")
	}

	if config.AwsAccessKeyID == "" {
		return nil, fmt.Errorf("AWS_ACCESS_KEY_ID must be set")
	}

	if config.AwsSecretAccessKey == "" {
		return nil, fmt.Errorf("AWS_SECRET_ACCESS_KEY must be set")
	}

	if config.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL must be set")
	}

	if config.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET must be set")
	}

	return config, nil
}

func intFromEnv(name string, fallback int) int {
	val := os.Getenv(name)
	if val == "" {
		return fallback
	}

	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		fmt.Fprintf(os.Stderr, "Warning: Invalid %s value '%s', using default\n", name, val)
		return fallback
	}
	return parsed
}

func minutesFromEnv(name string, fallback int) time.Duration {
	return time.Duration(intFromEnv(name, fallback)) * time.Minute
}
