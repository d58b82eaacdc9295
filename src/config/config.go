package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Provider names accepted by PRICE_PROVIDER and FX_PROVIDER.
const (
	ProviderNone        = "none"
	ProviderYahoo       = "yahoo"
	ProviderFrankfurter = "frankfurter"
)

// AppConfig holds all configuration for the application.
// The values are loaded from environment variables.
type AppConfig struct {
	// Core settings
	Port         string
	DatabasePath string
	LogLevel     string

	// Security settings
	JWTSecret         string
	AccessTokenExpiry time.Duration
	SessionExpiry     time.Duration
	AllowedOrigins    []string
	RateLimitEvery    time.Duration
	RateLimitBurst    int

	// Admin users. Matching emails are promoted to the admin role on login.
	AdminEmails []string

	// Finance settings
	ReportingCurrency    string
	PriceProvider        string
	PriceProviderURL     string
	FXProvider           string
	FXProviderURL        string
	QuoteCacheTTL        time.Duration
	QuoteFallbackEnabled bool

	// Board settings
	BoardSeedPath   string
	BoardSessionTTL time.Duration

	// Google Calendar sync
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
	CalendarAPIURL     string

	FrontendBaseURL string
}

// Cfg is a global instance of the AppConfig.
var Cfg *AppConfig

// Default returns a configuration with every default applied and no secrets set.
// It does not read the environment.
func Default() *AppConfig {
	return &AppConfig{
		Port:                 "8080",
		DatabasePath:         "./homedash.db",
		LogLevel:             "info",
		AccessTokenExpiry:    60 * time.Minute,
		SessionExpiry:        168 * time.Hour,
		AllowedOrigins:       []string{"http://localhost:3000"},
		RateLimitEvery:       100 * time.Millisecond,
		RateLimitBurst:       30,
		AdminEmails:          []string{},
		ReportingCurrency:    "DKK",
		PriceProvider:        ProviderYahoo,
		PriceProviderURL:     "https://query1.finance.yahoo.com",
		FXProvider:           ProviderFrankfurter,
		FXProviderURL:        "https://api.frankfurter.app",
		QuoteCacheTTL:        5 * time.Minute,
		QuoteFallbackEnabled: true,
		BoardSessionTTL:      12 * time.Hour,
		CalendarAPIURL:       "https://www.googleapis.com/calendar/v3",
		FrontendBaseURL:      "http://localhost:3000",
	}
}

// LoadConfig loads configuration from environment variables or a .env file.
func LoadConfig() {
	errEnv := godotenv.Load()
	if errEnv != nil {
		errEnv = godotenv.Load("../.env")
	}

	if errEnv != nil {
		if os.IsNotExist(errEnv) {
			log.Println("Info: No .env file found in current or parent directory. Relying on OS environment variables.")
		} else {
			log.Printf("Warning: Error loading .env file: %v. Relying on OS environment variables.", errEnv)
		}
	} else {
		log.Println(".env file loaded successfully.")
	}

	log.Println("Loading application configuration...")

	d := Default()
	frontendBaseURL := getEnv("FRONTEND_BASE_URL", d.FrontendBaseURL)

	Cfg = &AppConfig{
		Port:         getEnv("PORT", d.Port),
		DatabasePath: getEnv("DATABASE_PATH", d.DatabasePath),
		LogLevel:     getEnv("LOG_LEVEL", d.LogLevel),

		JWTSecret:         getRequiredEnv("JWT_SECRET"),
		AccessTokenExpiry: getEnvAsDuration("ACCESS_TOKEN_EXPIRY", d.AccessTokenExpiry),
		SessionExpiry:     getEnvAsDuration("SESSION_EXPIRY", d.SessionExpiry),
		AllowedOrigins:    getEnvAsList("ALLOWED_ORIGINS", d.AllowedOrigins),
		RateLimitEvery:    getEnvAsDuration("RATE_LIMIT_EVERY", d.RateLimitEvery),
		RateLimitBurst:    getEnvAsInt("RATE_LIMIT_BURST", d.RateLimitBurst),

		AdminEmails: getEnvAsList("ADMIN_EMAILS", nil),

		ReportingCurrency:    strings.ToUpper(getEnv("REPORTING_CURRENCY", d.ReportingCurrency)),
		PriceProvider:        strings.ToLower(getEnv("PRICE_PROVIDER", d.PriceProvider)),
		PriceProviderURL:     getEnv("PRICE_PROVIDER_URL", d.PriceProviderURL),
		FXProvider:           strings.ToLower(getEnv("FX_PROVIDER", d.FXProvider)),
		FXProviderURL:        getEnv("FX_PROVIDER_URL", d.FXProviderURL),
		QuoteCacheTTL:        getEnvAsDuration("QUOTE_CACHE_TTL", d.QuoteCacheTTL),
		QuoteFallbackEnabled: getEnvAsBool("QUOTE_FALLBACK_ENABLED", d.QuoteFallbackEnabled),

		BoardSeedPath:   getEnv("BOARD_SEED_PATH", ""),
		BoardSessionTTL: getEnvAsDuration("BOARD_SESSION_TTL", d.BoardSessionTTL),

		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		GoogleRedirectURL:  getEnv("GOOGLE_REDIRECT_URL", "http://localhost:8080/api/calendar/callback"),
		CalendarAPIURL:     getEnv("CALENDAR_API_URL", d.CalendarAPIURL),

		FrontendBaseURL: frontendBaseURL,
	}

	if err := Cfg.Validate(); err != nil {
		log.Fatalf("FATAL: %v", err)
	}

	log.Printf("Configuration loaded: Port=%s, LogLevel=%s, DBPath=%s, PriceProvider=%s, FXProvider=%s",
		Cfg.Port, Cfg.LogLevel, Cfg.DatabasePath, Cfg.PriceProvider, Cfg.FXProvider)
	log.Printf("Admin emails loaded: %d", len(Cfg.AdminEmails))
}

// Validate reports configuration values the server cannot start with.
func (c *AppConfig) Validate() error {
	if len(c.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 characters")
	}
	switch c.PriceProvider {
	case ProviderYahoo, ProviderNone:
	default:
		return fmt.Errorf("unknown PRICE_PROVIDER %q", c.PriceProvider)
	}
	switch c.FXProvider {
	case ProviderFrankfurter, ProviderNone:
	default:
		return fmt.Errorf("unknown FX_PROVIDER %q", c.FXProvider)
	}
	if len(c.ReportingCurrency) != 3 {
		return fmt.Errorf("REPORTING_CURRENCY must be a 3 letter code, got %q", c.ReportingCurrency)
	}
	if c.QuoteCacheTTL <= 0 {
		return fmt.Errorf("QUOTE_CACHE_TTL must be positive")
	}
	return nil
}

// CalendarConfigured reports whether Google Calendar credentials are present.
func (c *AppConfig) CalendarConfigured() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != ""
}

// IsAdminEmail reports whether email is listed in ADMIN_EMAILS.
func (c *AppConfig) IsAdminEmail(email string) bool {
	for _, adminEmail := range c.AdminEmails {
		if strings.EqualFold(strings.TrimSpace(email), adminEmail) {
			return true
		}
	}
	return false
}

// getEnv retrieves an environment variable or returns a fallback value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getRequiredEnv retrieves an environment variable or terminates the application if not set.
func getRequiredEnv(key string) string {
	value, exists := os.LookupEnv(key)
	if !exists || strings.TrimSpace(value) == "" {
		log.Fatalf("FATAL: Required environment variable %s is not set or is empty. Application cannot start securely.", key)
	}
	return value
}

// getEnvAsInt retrieves an environment variable as an integer or returns a fallback.
func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	log.Printf("Invalid integer value for %s ('%s'), using default: %d", key, valueStr, fallback)
	return fallback
}

// getEnvAsBool retrieves an environment variable as a bool or returns a fallback.
func getEnvAsBool(key string, fallback bool) bool {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	log.Printf("Invalid boolean value for %s ('%s'), using default: %t", key, valueStr, fallback)
	return fallback
}

// getEnvAsDuration retrieves an environment variable as a time.Duration or returns a fallback.
func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	log.Printf("Invalid duration value for %s ('%s'), using default: %s", key, valueStr, fallback.String())
	return fallback
}

// getEnvAsList parses a comma-separated variable, trimming and dropping empty entries.
func getEnvAsList(key string, fallback []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		if fallback == nil {
			return []string{}
		}
		return fallback
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
