package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Storage backends for browser-scoped state such as the post-login destination.
const (
	StorageBackendCookie = "cookie"
	StorageBackendRedis  = "redis"
)

type Config struct {
	Env         string
	Port        int
	FrontendURL string
	ProfilesDir string

	Backend  BackendConfig
	Auth     AuthConfig
	Storage  StorageConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Audit    AuditConfig
	CORS     CORSConfig
	Log      LogConfig
}

// BackendConfig points the portal at the REST backend holding students and sessions.
type BackendConfig struct {
	BaseURL string
	// Timeout of zero leaves outbound calls unbounded.
	Timeout time.Duration
	// SessionCookies lists the browser cookies forwarded on credentialed calls.
	SessionCookies []string
}

// AuthConfig governs the provider login flow and the session gate.
type AuthConfig struct {
	DefaultProvider    string
	AutoRedirect       bool
	ProviderLogoutURL  string
	CallbackErrorDelay time.Duration
}

// StorageConfig selects how browser-scoped values survive the OAuth round trip.
type StorageConfig struct {
	Backend      string
	Secret       string
	TTL          time.Duration
	CookieSecure bool
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// AuditConfig toggles the edit/login audit trail.
type AuditConfig struct {
	Enabled bool
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !isMissingFile(err) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.FrontendURL = strings.TrimRight(v.GetString("FRONTEND_URL"), "/")
	cfg.ProfilesDir = v.GetString("PROFILES_DIR")

	cfg.Backend = BackendConfig{
		BaseURL:        strings.TrimRight(v.GetString("BACKEND_URL"), "/"),
		Timeout:        parseDuration(v.GetString("BACKEND_TIMEOUT"), 0),
		SessionCookies: splitAndTrim(v.GetString("SESSION_COOKIE_NAMES")),
	}

	cfg.Auth = AuthConfig{
		DefaultProvider:    v.GetString("AUTH_DEFAULT_PROVIDER"),
		AutoRedirect:       v.GetBool("AUTH_AUTO_REDIRECT"),
		ProviderLogoutURL:  v.GetString("AUTH_PROVIDER_LOGOUT_URL"),
		CallbackErrorDelay: parseDuration(v.GetString("AUTH_CALLBACK_ERROR_DELAY"), 3*time.Second),
	}

	cfg.Storage = StorageConfig{
		Backend:      strings.ToLower(v.GetString("STORAGE_BACKEND")),
		Secret:       v.GetString("STORAGE_SECRET"),
		TTL:          parseDuration(v.GetString("STORAGE_TTL"), 15*time.Minute),
		CookieSecure: cfg.Env == EnvProduction,
	}

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.Audit = AuditConfig{Enabled: v.GetBool("AUDIT_ENABLED")}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Backend.BaseURL == "" {
		return errors.New("BACKEND_URL is required")
	}
	switch c.Storage.Backend {
	case StorageBackendCookie, StorageBackendRedis:
	default:
		return errors.New("STORAGE_BACKEND must be cookie or redis")
	}
	if c.Storage.Backend == StorageBackendCookie && c.Storage.Secret == "" {
		return errors.New("STORAGE_SECRET is required for cookie storage")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 5173)
	v.SetDefault("FRONTEND_URL", "http://localhost:5173")
	v.SetDefault("PROFILES_DIR", "./public/profiles")

	v.SetDefault("BACKEND_URL", "http://localhost:8080")
	v.SetDefault("BACKEND_TIMEOUT", "")
	v.SetDefault("SESSION_COOKIE_NAMES", "JSESSIONID")

	v.SetDefault("AUTH_DEFAULT_PROVIDER", "google")
	v.SetDefault("AUTH_AUTO_REDIRECT", false)
	v.SetDefault("AUTH_PROVIDER_LOGOUT_URL", "https://mail.google.com/mail/logout")
	v.SetDefault("AUTH_CALLBACK_ERROR_DELAY", "3s")

	v.SetDefault("STORAGE_BACKEND", StorageBackendCookie)
	v.SetDefault("STORAGE_SECRET", "dev_storage_secret")
	v.SetDefault("STORAGE_TTL", "15m")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "student_portal")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 5)
	v.SetDefault("DB_MAX_IDLE_CONNS", 2)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("AUDIT_ENABLED", false)

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
}

// isMissingFile reports a missing .env, which viper surfaces as a plain fs error
// when the config file is set explicitly.
func isMissingFile(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
