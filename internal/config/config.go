package config

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// BankAccount holds the SePay-linked bank account that payers transfer to.
// MemoPrefix is prepended to the order id to form the transfer content.
type BankAccount struct {
	Code          string
	Name          string
	AccountNumber string
	AccountName   string
	MemoPrefix    string
}

type Config struct {
	Addr        string
	DatabaseURL string
	JWTSecret   string
	LogLevel    string
	CORSOrigins []string
	MetricsUser string
	MetricsPass string
	Bank        BankAccount
}

var bankNames = map[string]string{
	"MB":   "MB Bank",
	"VCB":  "Vietcombank",
	"TCB":  "Techcombank",
	"BIDV": "BIDV",
	"VPB":  "VPBank",
	"ACB":  "ACB",
	"VIB":  "VIB",
	"TPB":  "TPBank",
	"STB":  "Sacombank",
	"HDB":  "HDBank",
	"MSB":  "MSB",
	"OCB":  "OCB",
	"SHB":  "SHB",
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	cfg := &Config{
		Addr:        getenv("ADDR", ":8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		JWTSecret:   os.Getenv("JWT_SECRET"),
		LogLevel:    getenv("LOG_LEVEL", "info"),
		MetricsUser: getenv("METRICS_USER", "metrics"),
		MetricsPass: os.Getenv("METRICS_PASS"),
		Bank: BankAccount{
			Code:          getenv("SEPAY_BANK_CODE", "TPB"),
			AccountNumber: os.Getenv("SEPAY_ACCOUNT_NUMBER"),
			AccountName:   os.Getenv("SEPAY_ACCOUNT_NAME"),
			MemoPrefix:    getenv("SEPAY_MEMO_PREFIX", "DH"),
		},
	}

	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		cfg.CORSOrigins = strings.Split(origins, ",")
	} else {
		cfg.CORSOrigins = []string{"http://localhost:3000"}
	}

	if name, ok := bankNames[cfg.Bank.Code]; ok {
		cfg.Bank.Name = name
	} else {
		cfg.Bank.Name = cfg.Bank.Code
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	return cfg, nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
