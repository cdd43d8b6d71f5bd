package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	App      AppConfig
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Auth     AuthConfig
	OTP      OTPConfig
	SMTP     SMTPConfig
	Log      LogConfig
	Tracing  TracingConfig
}

type AppConfig struct {
	Name        string
	Environment string
	Version     string
}

type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type DatabaseConfig struct {
	// Path is the SQLite database file. ":memory:" is accepted for tests.
	Path            string
	BusyTimeout     time.Duration
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DSN builds the SQLite connection string. busy_timeout makes
// concurrent writers queue instead of failing immediately with
// SQLITE_BUSY.
func (d DatabaseConfig) DSN() string {
	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=%d",
		d.Path, d.BusyTimeout.Milliseconds(),
	)
	// A plain file::memory: DSN gives every pooled connection its own
	// private database; shared cache keeps the pool on one.
	if d.Path == ":memory:" {
		dsn += "&cache=shared"
	}
	return dsn
}

type JWTConfig struct {
	Secret          string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	Issuer          string
}

// AuthConfig covers registration/login rules plus the operator
// bootstrap credential. The operator pair lives in the environment so
// it can be rotated without a rebuild; when either value is empty the
// bootstrap path is disabled entirely.
type AuthConfig struct {
	NationalIDLength     int
	OperatorID           string
	OperatorPasswordHash string
}

func (a AuthConfig) OperatorEnabled() bool {
	return a.OperatorID != "" && a.OperatorPasswordHash != ""
}

type OTPConfig struct {
	Digits          int
	TTL             time.Duration
	MaxAttempts     int
	DeliveryTimeout time.Duration
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

func (s SMTPConfig) Configured() bool {
	return s.Host != "" && s.From != ""
}

type LogConfig struct {
	Level      string
	Format     string
	OutputPath string
}

type TracingConfig struct {
	Enabled     bool
	ServiceName string
	Endpoint    string
	SampleRate  float64
}

func Load() (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "arogya-api"),
			Environment: getEnv("APP_ENV", "development"),
			Version:     getEnv("APP_VERSION", "0.0.0"),
		},
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getEnvInt("SERVER_PORT", 8080),
			ReadTimeout:     getEnvDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getEnvDuration("SERVER_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:     getEnvDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getEnvDuration("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Database: DatabaseConfig{
			Path:            getEnv("DB_PATH", "arogya.db"),
			BusyTimeout:     getEnvDuration("DB_BUSY_TIMEOUT", 5*time.Second),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
		},
		JWT: JWTConfig{
			Secret:          getEnv("JWT_SECRET", ""),
			AccessTokenTTL:  getEnvDuration("JWT_ACCESS_TTL", 15*time.Minute),
			RefreshTokenTTL: getEnvDuration("JWT_REFRESH_TTL", 7*24*time.Hour),
			Issuer:          getEnv("JWT_ISSUER", "arogya-api"),
		},
		Auth: AuthConfig{
			NationalIDLength:     getEnvInt("AUTH_NATIONAL_ID_LENGTH", 12),
			OperatorID:           getEnv("AUTH_OPERATOR_ID", ""),
			OperatorPasswordHash: getEnv("AUTH_OPERATOR_PASSWORD_HASH", ""),
		},
		OTP: OTPConfig{
			Digits:          getEnvInt("OTP_DIGITS", 6),
			TTL:             getEnvDuration("OTP_TTL", 5*time.Minute),
			MaxAttempts:     getEnvInt("OTP_MAX_ATTEMPTS", 5),
			DeliveryTimeout: getEnvDuration("OTP_DELIVERY_TIMEOUT", 5*time.Second),
		},
		SMTP: SMTPConfig{
			Host:     getEnv("SMTP_HOST", ""),
			Port:     getEnvInt("SMTP_PORT", 587),
			Username: getEnv("SMTP_USERNAME", ""),
			Password: getEnv("SMTP_PASSWORD", ""),
			From:     getEnv("SMTP_FROM", ""),
		},
		Log: LogConfig{
			Level:      getEnv("LOG_LEVEL", "info"),
			Format:     getEnv("LOG_FORMAT", "json"),
			OutputPath: getEnv("LOG_OUTPUT", "stdout"),
		},
		Tracing: TracingConfig{
			Enabled:     getEnvBool("TRACING_ENABLED", false),
			ServiceName: getEnv("TRACING_SERVICE_NAME", "arogya-api"),
			Endpoint:    getEnv("OTLP_ENDPOINT", "localhost:4318"),
			SampleRate:  getEnvFloat("TRACING_SAMPLE_RATE", 0.1),
		},
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validate enforces production security requirements.
func validate(cfg *Config) error {
	var errs []string

	if cfg.JWT.Secret == "" {
		errs = append(errs, "JWT_SECRET is required")
	} else if len(cfg.JWT.Secret) < 32 && cfg.App.Environment == "production" {
		errs = append(errs, "JWT_SECRET must be at least 32 characters in production")
	}

	if cfg.Auth.NationalIDLength < 4 || cfg.Auth.NationalIDLength > 20 {
		errs = append(errs, "AUTH_NATIONAL_ID_LENGTH must be between 4 and 20")
	}

	if cfg.Auth.OperatorID != "" && cfg.Auth.OperatorPasswordHash == "" {
		errs = append(errs, "AUTH_OPERATOR_PASSWORD_HASH is required when AUTH_OPERATOR_ID is set")
	}
	if cfg.Auth.OperatorPasswordHash != "" && !strings.HasPrefix(cfg.Auth.OperatorPasswordHash, "$2") {
		errs = append(errs, "AUTH_OPERATOR_PASSWORD_HASH must be a bcrypt hash, not a plaintext password")
	}

	if cfg.OTP.Digits < 4 || cfg.OTP.Digits > 8 {
		errs = append(errs, "OTP_DIGITS must be between 4 and 8")
	}
	if cfg.OTP.TTL <= 0 {
		errs = append(errs, "OTP_TTL must be positive")
	}

	if cfg.App.Environment == "production" && !cfg.SMTP.Configured() {
		errs = append(errs, "SMTP_HOST and SMTP_FROM are required in production (OTP delivery)")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
