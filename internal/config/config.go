package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Database DatabaseConfig
	Redis    RedisConfig
	Session  SessionConfig
	Server   ServerConfig
	WhatsApp WhatsAppConfig
	Engine   EngineConfig
	Vault    VaultConfig
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
	MaxConns int
}

// RedisConfig holds Redis connection settings for the limit-snapshot cache.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	// SnapshotTTL bounds the staleness of cached quota snapshots.
	SnapshotTTL time.Duration
}

// SessionConfig holds session-cookie JWT settings.
type SessionConfig struct {
	Secret string
	TTL    time.Duration
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	CORSOrigins  []string
}

// WhatsAppConfig holds Graph API client settings.
type WhatsAppConfig struct {
	BaseURL string
	Timeout time.Duration
}

// EngineConfig holds the shared key the external workflow execution engine
// uses to report run results.
type EngineConfig struct {
	APIKey string
}

// VaultConfig holds the key encrypting WABA access tokens at rest.
type VaultConfig struct {
	KeyHex string
}

// Load reads configuration from environment variables.
// Defaults are safe for local development only.
func Load() (*Config, error) {
	dbPort, err := getEnvInt("SENDLOOP_DB_PORT", 5432)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	dbMaxConns, err := getEnvInt("SENDLOOP_DB_MAX_CONNS", 25)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	redisDB, err := getEnvInt("SENDLOOP_REDIS_DB", 0)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	snapshotTTL, err := getEnvDuration("SENDLOOP_LIMIT_CACHE_TTL", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	sessionTTL, err := getEnvDuration("SENDLOOP_SESSION_TTL", 24*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	readTimeout, err := getEnvDuration("SENDLOOP_SERVER_READ_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	writeTimeout, err := getEnvDuration("SENDLOOP_SERVER_WRITE_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	graphTimeout, err := getEnvDuration("SENDLOOP_GRAPH_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	corsOrigins := getEnvList("SENDLOOP_CORS_ORIGINS", []string{"http://localhost:3000"})

	cfg := &Config{
		Database: DatabaseConfig{
			Host:     getEnv("SENDLOOP_DB_HOST", "localhost"),
			Port:     dbPort,
			User:     getEnv("SENDLOOP_DB_USER", "sendloop"),
			Password: getEnv("SENDLOOP_DB_PASSWORD", ""),
			DBName:   getEnv("SENDLOOP_DB_NAME", "sendloop_dev"),
			SSLMode:  getEnv("SENDLOOP_DB_SSLMODE", "disable"),
			MaxConns: dbMaxConns,
		},
		Redis: RedisConfig{
			Addr:        getEnv("SENDLOOP_REDIS_ADDR", "localhost:6379"),
			Password:    getEnv("SENDLOOP_REDIS_PASSWORD", ""),
			DB:          redisDB,
			SnapshotTTL: snapshotTTL,
		},
		Session: SessionConfig{
			Secret: getEnv("SENDLOOP_SESSION_SECRET", ""),
			TTL:    sessionTTL,
		},
		Server: ServerConfig{
			Addr:         getEnv("SENDLOOP_SERVER_ADDR", ":8080"),
			ReadTimeout:  readTimeout,
			WriteTimeout: writeTimeout,
			CORSOrigins:  corsOrigins,
		},
		WhatsApp: WhatsAppConfig{
			BaseURL: getEnv("SENDLOOP_GRAPH_BASE_URL", ""),
			Timeout: graphTimeout,
		},
		Engine: EngineConfig{
			APIKey: getEnv("SENDLOOP_ENGINE_API_KEY", ""),
		},
		Vault: VaultConfig{
			KeyHex: getEnv("SENDLOOP_VAULT_KEY", ""),
		},
	}

	err = cfg.validate()
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	return cfg, nil
}

// validate checks required fields and value bounds.
func (c *Config) validate() error {
	if c.Session.Secret == "" {
		return errors.New("SENDLOOP_SESSION_SECRET is required")
	}
	if len(c.Session.Secret) < 32 {
		return errors.New("SENDLOOP_SESSION_SECRET must be at least 32 characters")
	}

	if c.Vault.KeyHex == "" {
		return errors.New("SENDLOOP_VAULT_KEY is required")
	}
	key, err := hex.DecodeString(c.Vault.KeyHex)
	if err != nil || len(key) != 32 {
		return errors.New("SENDLOOP_VAULT_KEY must be 64 hex characters (32 bytes)")
	}

	if c.Engine.APIKey == "" {
		log.Warn().Msg("SENDLOOP_ENGINE_API_KEY is empty; execution reporting is disabled")
	}

	if c.Database.Port < 1 || c.Database.Port > 65535 {
		return fmt.Errorf("SENDLOOP_DB_PORT must be 1-65535, got %d", c.Database.Port)
	}
	if c.Database.MaxConns < 1 {
		return fmt.Errorf("SENDLOOP_DB_MAX_CONNS must be >= 1, got %d", c.Database.MaxConns)
	}
	if c.Session.TTL <= 0 {
		return fmt.Errorf("SENDLOOP_SESSION_TTL must be positive, got %s", c.Session.TTL)
	}
	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("SENDLOOP_SERVER_READ_TIMEOUT must be positive, got %s", c.Server.ReadTimeout)
	}
	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("SENDLOOP_SERVER_WRITE_TIMEOUT must be positive, got %s", c.Server.WriteTimeout)
	}

	return nil
}

// VaultKey returns the decoded 32-byte vault key. validate guarantees it parses.
func (c *Config) VaultKey() []byte {
	key, _ := hex.DecodeString(c.Vault.KeyHex)
	return key
}

// DSN returns the PostgreSQL connection string.
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("parsing %s=%q as int: %w", key, v, err)
	}
	return n, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("parsing %s=%q as duration: %w", key, v, err)
	}
	return d, nil
}

func getEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parts := strings.Split(v, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}
