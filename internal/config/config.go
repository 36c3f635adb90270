package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	CORS      CORSConfig
	Admin     AdminConfig
	Earnings  EarningsConfig
	RateLimit RateLimitConfig
}

type ServerConfig struct {
	Port string
	Env  string
}

type DatabaseConfig struct {
	URL           string
	ReferralURL   string // optional read-only referral/identity store
	TestURL       string
	MaxConns      int
	RunMigrations bool
}

type RedisConfig struct {
	URL string
}

type JWTConfig struct {
	Secret       string
	AccessExpiry time.Duration
}

type CORSConfig struct {
	Origin string
}

type AdminConfig struct {
	Username     string
	PasswordHash string
}

type EarningsConfig struct {
	// RewardPerReferral is the payout in whole currency units for each
	// approved referral.
	RewardPerReferral int64
}

type RateLimitConfig struct {
	Requests int
	Window   time.Duration
}

func Load() (*Config, error) {
	// Load .env file if exists
	_ = godotenv.Load()

	accessExpiry, _ := time.ParseDuration(getEnv("JWT_ACCESS_EXPIRY", "24h"))
	rateWindow, _ := time.ParseDuration(getEnv("RATE_LIMIT_WINDOW", "1m"))

	cfg := &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
			Env:  getEnv("ENV", "development"),
		},
		Database: DatabaseConfig{
			URL:           getEnv("DATABASE_URL", ""),
			ReferralURL:   getEnv("REFERRAL_DATABASE_URL", ""),
			TestURL:       getEnv("DATABASE_TEST_URL", ""),
			MaxConns:      getEnvInt("DB_MAX_CONNS", 25),
			RunMigrations: getEnv("RUN_MIGRATIONS", "false") == "true",
		},
		Redis: RedisConfig{
			URL: getEnv("REDIS_URL", "redis://localhost:6379"),
		},
		JWT: JWTConfig{
			Secret:       getEnv("JWT_SECRET", ""),
			AccessExpiry: accessExpiry,
		},
		CORS: CORSConfig{
			Origin: getEnv("CORS_ORIGIN", "http://localhost:5173"),
		},
		Admin: AdminConfig{
			Username:     getEnv("ADMIN_USERNAME", "admin"),
			PasswordHash: getEnv("ADMIN_PASSWORD_HASH", ""),
		},
		Earnings: EarningsConfig{
			RewardPerReferral: int64(getEnvInt("REWARD_PER_REFERRAL", 100)),
		},
		RateLimit: RateLimitConfig{
			Requests: getEnvInt("RATE_LIMIT_REQUESTS", 100),
			Window:   rateWindow,
		},
	}

	// Validate critical configuration
	if cfg.JWT.Secret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.Database.URL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.Admin.PasswordHash == "" {
		return nil, fmt.Errorf("ADMIN_PASSWORD_HASH is required")
	}
	if cfg.Earnings.RewardPerReferral <= 0 {
		return nil, fmt.Errorf("REWARD_PER_REFERRAL must be positive")
	}

	return cfg, nil
}

// RewardCents returns the per-referral reward in cents.
func (c *Config) RewardCents() int64 {
	return c.Earnings.RewardPerReferral * 100
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		var result int
		_, err := fmt.Sscanf(value, "%d", &result)
		if err == nil {
			return result
		}
	}
	return fallback
}
