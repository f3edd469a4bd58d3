package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string

	AppPort string
	AppEnv  string

	// PublicBaseURL is the customer-facing site root used to build
	// balance payment links embedded in deposit receipts.
	PublicBaseURL string

	RedisAddr     string
	RedisPassword string

	MedusaBaseURL string
	MedusaAPIKey  string

	NotifyWebhookURL string

	JWTSecret          string
	BalanceTokenSecret string
	BalanceTokenTTLH   int

	// DepositPercent is the share of the quote total collected up front.
	// Applied once at quote creation; the snapshot is never recomputed.
	DepositPercent int
	TaxRateBps     int
}

func LoadConfig() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		DBHost:     os.Getenv("DB_HOST"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),
		DBPort:     os.Getenv("DB_PORT"),

		AppPort: os.Getenv("APP_PORT"),
		AppEnv:  os.Getenv("APP_ENV"),

		PublicBaseURL: os.Getenv("PUBLIC_BASE_URL"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		MedusaBaseURL: os.Getenv("MEDUSA_BASE_URL"),
		MedusaAPIKey:  os.Getenv("MEDUSA_APIKEY"),

		NotifyWebhookURL: os.Getenv("NOTIFY_WEBHOOK_URL"),

		JWTSecret:          os.Getenv("JWT_SECRET"),
		BalanceTokenSecret: os.Getenv("BALANCE_TOKEN_SECRET"),
		BalanceTokenTTLH:   envInt("BALANCE_TOKEN_TTL_HOURS", 168),

		DepositPercent: envInt("DEPOSIT_PERCENT", 20),
		TaxRateBps:     envInt("TAX_RATE_BPS", 825),
	}

	if cfg.DBHost == "" {
		log.Fatal("Environment variables not loaded properly")
	}

	return cfg
}

func envInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("invalid %s=%q, using default %d", key, raw, fallback)
		return fallback
	}
	return n
}
