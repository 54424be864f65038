package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds everything read from the environment at startup
type Config struct {
	HTTPAddr    string
	DatabaseURL string
	RedisAddr   string
	AMQPURL     string

	JWTSecret string
	JWTIssuer string
	TokenTTL  time.Duration

	UploadDir       string
	UploadURLPath   string
	LockTimeout     time.Duration
	SweepInterval   time.Duration
	ListingCacheTTL time.Duration

	// RequireApproval makes new listings start at pending so an admin
	// has to approve them before bidding opens
	RequireApproval bool
}

// Load reads configuration from the environment. A .env.local file
// overrides .env; both are optional.
func Load() (*Config, error) {
	_ = godotenv.Load(".env.local")
	_ = godotenv.Load()

	cfg := &Config{
		HTTPAddr:        getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		RedisAddr:       os.Getenv("REDIS_ADDR"),
		AMQPURL:         os.Getenv("AMQP_URL"),
		JWTSecret:       os.Getenv("JWT_SECRET"),
		JWTIssuer:       getEnv("JWT_ISSUER", "auctionhouse"),
		TokenTTL:        getDuration("TOKEN_TTL", 24*time.Hour),
		UploadDir:       getEnv("UPLOAD_DIR", "uploads"),
		UploadURLPath:   getEnv("UPLOAD_URL_PATH", "/uploads"),
		LockTimeout:     getDuration("DB_LOCK_TIMEOUT", 3*time.Second),
		SweepInterval:   getDuration("SWEEP_INTERVAL", time.Minute),
		ListingCacheTTL: getDuration("LISTING_CACHE_TTL", 15*time.Second),
		RequireApproval: getBool("AUCTION_REQUIRE_APPROVAL", false),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is not set")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func getBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
