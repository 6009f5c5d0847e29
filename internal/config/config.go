package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Session JWT issued after Google sign-in
	JWTSecret        string
	JWTSessionExpiry time.Duration
	OAuthStateExpiry time.Duration

	// Key material for encrypting stored Google access tokens
	TokenEncryptionKey string

	// Google identity + Sheets
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
	GoogleUserInfoURL  string
	SheetID            string
	SheetRange         string
	SheetsEndpoint     string

	// Razorpay
	PaymentAPIURL      string
	RazorpayKeyID      string
	RazorpayScriptURL  string
	PaymentAmount      int64
	PaymentCurrency    string
	CheckoutName       string
	CheckoutDesc       string
	CheckoutThemeColor string
	CheckoutTimeout    time.Duration
	GatewayInitTimeout time.Duration

	// Outbound HTTP
	HTTPTimeout time.Duration

	// Admin
	AdminEmails string
	AdminToken  string

	// Server
	Port        string
	CORSOrigins string
	AppEnv      string
	SentryDSN   string
}

// Load reads .env (if present) and then the process environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to load .env file", "error", err)
	}

	return &Config{
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "acres_intake"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		JWTSecret:        getEnv("JWT_SECRET", ""),
		JWTSessionExpiry: parseDuration(getEnv("JWT_SESSION_EXPIRY", "168h"), 168*time.Hour),
		OAuthStateExpiry: parseDuration(getEnv("OAUTH_STATE_EXPIRY", "10m"), 10*time.Minute),

		TokenEncryptionKey: getEnv("TOKEN_ENCRYPTION_KEY", ""),

		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		GoogleRedirectURL:  getEnv("GOOGLE_REDIRECT_URL", "http://localhost:8080/api/auth/google/callback"),
		GoogleUserInfoURL:  getEnv("GOOGLE_USERINFO_URL", "https://www.googleapis.com/oauth2/v3/userinfo"),
		SheetID:            getEnv("SHEET_ID", ""),
		SheetRange:         getEnv("SHEET_RANGE", "Sheet1!A1"),
		SheetsEndpoint:     getEnv("SHEETS_ENDPOINT", ""),

		PaymentAPIURL:      getEnv("PAYMENT_API_URL", "https://test-be-repo.onrender.com"),
		RazorpayKeyID:      getEnv("RAZORPAY_KEY_ID", ""),
		RazorpayScriptURL:  getEnv("RAZORPAY_SCRIPT_URL", "https://checkout.razorpay.com/v1/checkout.js"),
		PaymentAmount:      parseInt(getEnv("PAYMENT_AMOUNT", "350"), 350),
		PaymentCurrency:    getEnv("PAYMENT_CURRENCY", "INR"),
		CheckoutName:       getEnv("CHECKOUT_NAME", "Test Payment"),
		CheckoutDesc:       getEnv("CHECKOUT_DESCRIPTION", "Test Mode"),
		CheckoutThemeColor: getEnv("CHECKOUT_THEME_COLOR", "#5f63b8"),
		CheckoutTimeout:    parseDuration(getEnv("CHECKOUT_TIMEOUT", "15m"), 15*time.Minute),
		GatewayInitTimeout: parseDuration(getEnv("GATEWAY_INIT_TIMEOUT", "10s"), 10*time.Second),

		HTTPTimeout: parseDuration(getEnv("HTTP_TIMEOUT", "15s"), 15*time.Second),

		AdminEmails: getEnv("ADMIN_EMAILS", ""),
		AdminToken:  getEnv("ADMIN_TOKEN", ""),

		Port:        getEnv("PORT", "8080"),
		CORSOrigins: getEnv("CORS_ORIGINS", "*"),
		AppEnv:      getEnv("APP_ENV", "development"),
		SentryDSN:   getEnv("SENTRY_DSN", ""),
	}
}

// Missing returns the names of required variables that are unset.
func (c *Config) Missing() []string {
	required := []struct {
		name  string
		value string
	}{
		{"JWT_SECRET", c.JWTSecret},
		{"DB_PASSWORD", c.DBPassword},
		{"TOKEN_ENCRYPTION_KEY", c.TokenEncryptionKey},
		{"GOOGLE_CLIENT_ID", c.GoogleClientID},
		{"GOOGLE_CLIENT_SECRET", c.GoogleClientSecret},
		{"SHEET_ID", c.SheetID},
		{"RAZORPAY_KEY_ID", c.RazorpayKeyID},
	}

	var missing []string
	for _, r := range required {
		if r.value == "" {
			missing = append(missing, r.name)
		}
	}
	return missing
}

func (c *Config) DSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}

func parseInt(s string, fallback int64) int64 {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
