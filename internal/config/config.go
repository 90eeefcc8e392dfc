package config

import (
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/sumire/phlink/internal/domain"
)

// Storage backend selectors.
const (
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Port int

	StorageBackend string
	DatabaseURL    string
	SQLitePath     string

	ProductHuntClientID     string
	ProductHuntClientSecret string
	ProductHuntRedirectURI  string
	ProductHuntAuthURL      string
	ProductHuntTokenURL     string
	ProductHuntGraphQLURL   string

	TelegramBotToken    string
	TelegramAPIBase     string
	TelegramBotUsername string

	JWTSecret string
}

// Load reads configuration from environment variables and validates required fields.
func Load() (Config, error) {
	port, err := getEnvInt("PORT", 8080)
	if err != nil {
		return Config{}, fmt.Errorf("parse PORT: %w", err)
	}

	cfg := Config{
		Port:                    port,
		StorageBackend:          getEnv("STORAGE_BACKEND", BackendPostgres),
		DatabaseURL:             getEnv("DATABASE_URL", ""),
		SQLitePath:              getEnv("SQLITE_PATH", ""),
		ProductHuntClientID:     getEnv("PRODUCTHUNT_CLIENT_ID", ""),
		ProductHuntClientSecret: getEnv("PRODUCTHUNT_CLIENT_SECRET", ""),
		ProductHuntRedirectURI:  getEnv("PRODUCTHUNT_REDIRECT_URI", ""),
		ProductHuntAuthURL:      getEnv("PRODUCTHUNT_AUTH_URL", "https://api.producthunt.com/v2/oauth/authorize"),
		ProductHuntTokenURL:     getEnv("PRODUCTHUNT_TOKEN_URL", "https://api.producthunt.com/v2/oauth/token"),
		ProductHuntGraphQLURL:   getEnv("PRODUCTHUNT_GRAPHQL_URL", "https://api.producthunt.com/v2/api/graphql"),
		TelegramBotToken:        getEnv("TELEGRAM_BOT_TOKEN", ""),
		TelegramAPIBase:         getEnv("TELEGRAM_API_BASE", "https://api.telegram.org"),
		TelegramBotUsername:     getEnv("TELEGRAM_BOT_USERNAME", ""),
		JWTSecret:               getEnv("JWT_SECRET", ""),
	}

	switch cfg.StorageBackend {
	case BackendPostgres, BackendSQLite:
	default:
		return Config{}, fmt.Errorf("unknown STORAGE_BACKEND %q", cfg.StorageBackend)
	}

	if missing := cfg.MissingKeys(); len(missing) > 0 {
		return Config{}, &domain.ConfigError{Missing: missing}
	}

	return cfg, nil
}

// MissingKeys returns every required key that is absent. Callers rely on the
// full list being reported in one pass, so this never stops at the first miss.
func (c Config) MissingKeys() []string {
	required := map[string]string{
		"PRODUCTHUNT_CLIENT_ID":     c.ProductHuntClientID,
		"PRODUCTHUNT_CLIENT_SECRET": c.ProductHuntClientSecret,
		"PRODUCTHUNT_REDIRECT_URI":  c.ProductHuntRedirectURI,
		"TELEGRAM_BOT_TOKEN":        c.TelegramBotToken,
		"JWT_SECRET":                c.JWTSecret,
	}
	if c.StorageBackend == BackendSQLite {
		required["SQLITE_PATH"] = c.SQLitePath
	} else {
		required["DATABASE_URL"] = c.DatabaseURL
	}

	var missing []string
	for key, value := range required {
		if value == "" {
			missing = append(missing, key)
		}
	}
	sort.Strings(missing)
	return missing
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}
	return strconv.Atoi(v)
}
