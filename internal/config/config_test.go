package config

import (
	"errors"
	"flag"
	"os"
	"testing"
	"time"
)

// resetFlags даёт Load чистый набор флагов и аргументы командной строки.
func resetFlags(t *testing.T, args []string) {
	t.Helper()
	originalArgs := os.Args
	t.Cleanup(func() {
		os.Args = originalArgs
		flag.CommandLine = flag.NewFlagSet(originalArgs[0], flag.ExitOnError)
	})
	os.Args = args
	flag.CommandLine = flag.NewFlagSet(args[0], flag.ExitOnError)
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		args        []string
		envVars     map[string]string
		wantAddress string
		wantDBURI   string
		wantAPIURL  string
		wantKafka   string
		wantSecret  string
		wantExp     time.Duration
		wantFee     int64
	}{
		{
			name:        "default values",
			args:        []string{"cmd"},
			wantAddress: "localhost:8080",
			wantAPIURL:  "https://api.tosspayments.com",
			wantSecret:  "default-secret-change-in-production",
			wantExp:     24 * time.Hour,
			wantFee:     3000,
		},
		{
			name:        "flags only",
			args:        []string{"cmd", "-a", "localhost:9090", "-d", "postgresql://db", "-p", "http://toss", "-k", "k1:9092", "-t", "36h"},
			wantAddress: "localhost:9090",
			wantDBURI:   "postgresql://db",
			wantAPIURL:  "http://toss",
			wantKafka:   "k1:9092",
			wantSecret:  "default-secret-change-in-production",
			wantExp:     36 * time.Hour,
			wantFee:     3000,
		},
		{
			name: "env overrides flags",
			args: []string{"cmd", "-a", "localhost:9090", "-d", "postgresql://flagdb", "-t", "72h"},
			envVars: map[string]string{
				"RUN_ADDRESS":      "localhost:7070",
				"DATABASE_URI":     "postgresql://envdb",
				"JWT_SECRET":       "env-secret",
				"TOKEN_EXPIRATION": "48h",
				"SHIPPING_FEE":     "2500",
			},
			wantAddress: "localhost:7070",
			wantDBURI:   "postgresql://envdb",
			wantAPIURL:  "https://api.tosspayments.com",
			wantSecret:  "env-secret",
			wantExp:     48 * time.Hour,
			wantFee:     2500,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, key := range []string{"RUN_ADDRESS", "DATABASE_URI", "TOSS_PAYMENTS_API_URL", "KAFKA_BROKERS", "JWT_SECRET", "TOKEN_EXPIRATION", "SHIPPING_FEE"} {
				t.Setenv(key, "")
			}
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}
			resetFlags(t, tt.args)

			cfg := Load()

			if cfg.RunAddress != tt.wantAddress {
				t.Errorf("RunAddress = %v, want %v", cfg.RunAddress, tt.wantAddress)
			}
			if cfg.DatabaseURI != tt.wantDBURI {
				t.Errorf("DatabaseURI = %v, want %v", cfg.DatabaseURI, tt.wantDBURI)
			}
			if cfg.PaymentsAPIURL != tt.wantAPIURL {
				t.Errorf("PaymentsAPIURL = %v, want %v", cfg.PaymentsAPIURL, tt.wantAPIURL)
			}
			if cfg.KafkaBrokers != tt.wantKafka {
				t.Errorf("KafkaBrokers = %v, want %v", cfg.KafkaBrokers, tt.wantKafka)
			}
			if cfg.JWTSecret != tt.wantSecret {
				t.Errorf("JWTSecret = %v, want %v", cfg.JWTSecret, tt.wantSecret)
			}
			if cfg.TokenExpiration != tt.wantExp {
				t.Errorf("TokenExpiration = %v, want %v", cfg.TokenExpiration, tt.wantExp)
			}
			if cfg.ShippingFee != tt.wantFee {
				t.Errorf("ShippingFee = %v, want %v", cfg.ShippingFee, tt.wantFee)
			}
			if cfg.FreeShippingThreshold != 50000 {
				t.Errorf("FreeShippingThreshold = %v, want 50000", cfg.FreeShippingThreshold)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	valid := Config{DatabaseURI: "postgresql://db", PaymentsSecretKey: "sk", PaymentsClientKey: "ck"}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr error
	}{
		{name: "complete", mutate: func(c *Config) {}, wantErr: nil},
		{name: "no database", mutate: func(c *Config) { c.DatabaseURI = "" }, wantErr: ErrMissingDatabaseURI},
		{name: "no secret key", mutate: func(c *Config) { c.PaymentsSecretKey = "" }, wantErr: ErrMissingPaymentsSecret},
		{name: "no client key", mutate: func(c *Config) { c.PaymentsClientKey = "" }, wantErr: ErrMissingPaymentsClient},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			if err := cfg.Validate(); !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
