package config

import (
	"errors"
	"flag"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

var (
	ErrMissingDatabaseURI    = errors.New("DATABASE_URI is required")
	ErrMissingPaymentsSecret = errors.New("TOSS_PAYMENTS_SECRET_KEY is required")
	ErrMissingPaymentsClient = errors.New("TOSS_PAYMENTS_CLIENT_KEY is required")
)

// Config содержит конфигурацию приложения.
type Config struct {
	RunAddress      string
	DatabaseURI     string
	PublicBaseURL   string
	JWTSecret       string
	TokenExpiration time.Duration

	PaymentsAPIURL    string
	PaymentsSecretKey string
	PaymentsClientKey string
	PaymentsTimeout   time.Duration

	FreeShippingThreshold int64
	ShippingFee           int64

	KafkaBrokers      string
	StalePendingAfter time.Duration
	MonitorInterval   time.Duration
}

// Load загружает конфигурацию из .env, флагов командной строки и переменных окружения.
// Приоритет: переменные окружения > флаги > значения по умолчанию.
func Load() *Config {
	_ = godotenv.Load() // .env необязателен

	cfg := &Config{}

	flag.StringVar(&cfg.RunAddress, "a", "localhost:8080", "адрес и порт запуска сервиса")
	flag.StringVar(&cfg.DatabaseURI, "d", "", "строка подключения к PostgreSQL")
	flag.StringVar(&cfg.PaymentsAPIURL, "p", "https://api.tosspayments.com", "адрес API платёжного провайдера")
	flag.StringVar(&cfg.PublicBaseURL, "b", "http://localhost:3000", "публичный адрес витрины для редиректов оплаты")
	flag.StringVar(&cfg.KafkaBrokers, "k", "", "брокеры Kafka через запятую")
	flag.DurationVar(&cfg.TokenExpiration, "t", 24*time.Hour, "время жизни токена")
	flag.Parse()

	if v := os.Getenv("RUN_ADDRESS"); v != "" {
		cfg.RunAddress = v
	}
	if v := os.Getenv("DATABASE_URI"); v != "" {
		cfg.DatabaseURI = v
	}
	if v := os.Getenv("TOSS_PAYMENTS_API_URL"); v != "" {
		cfg.PaymentsAPIURL = v
	}
	if v := os.Getenv("PUBLIC_BASE_URL"); v != "" {
		cfg.PublicBaseURL = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		cfg.KafkaBrokers = v
	}
	if v := os.Getenv("TOKEN_EXPIRATION"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.TokenExpiration = d
		}
	}

	// Ключи провайдера только из окружения
	cfg.PaymentsSecretKey = os.Getenv("TOSS_PAYMENTS_SECRET_KEY")
	cfg.PaymentsClientKey = os.Getenv("TOSS_PAYMENTS_CLIENT_KEY")
	cfg.PaymentsTimeout = envDuration("PAYMENTS_TIMEOUT", 10*time.Second)

	cfg.FreeShippingThreshold = envInt("FREE_SHIPPING_THRESHOLD", 50000)
	cfg.ShippingFee = envInt("SHIPPING_FEE", 3000)

	cfg.StalePendingAfter = envDuration("STALE_PENDING_AFTER", 30*time.Minute)
	cfg.MonitorInterval = envDuration("MONITOR_INTERVAL", time.Minute)

	// JWT секрет
	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "default-secret-change-in-production"
	}

	return cfg
}

// Validate проверяет обязательные параметры до старта сервиса.
func (c *Config) Validate() error {
	if c.DatabaseURI == "" {
		return ErrMissingDatabaseURI
	}
	if c.PaymentsSecretKey == "" {
		return ErrMissingPaymentsSecret
	}
	if c.PaymentsClientKey == "" {
		return ErrMissingPaymentsClient
	}
	return nil
}

func envDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func envInt(key string, def int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return def
}
