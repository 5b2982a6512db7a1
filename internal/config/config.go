package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Environment string
	Server      ServerConfig
	Redis       RedisConfig
	JWT         JWTConfig
	OTP         OTPConfig
	SMTP        SMTPConfig
	Kafka       KafkaConfig
	Clickhouse  ClickhouseConfig
	Activity    ActivityConfig
	Logging     LoggingConfig
}

type ServerConfig struct {
	Host          string
	Port          int
	TLSPort       int
	ReadTimeout   time.Duration
	WriteTimeout  time.Duration
	IdleTimeout   time.Duration
	EnableTLS     bool
	CertFile      string
	KeyFile       string
	Domain        string
	AutoCert      bool
	AutoCertDir   string
	AutoCertEmail string
}

type RedisConfig struct {
	URL      string
	Password string
	DB       int
	PoolSize int
}

type JWTConfig struct {
	Secret string
	TTL    time.Duration
	Issuer string
}

type OTPConfig struct {
	TTL         time.Duration
	MaxAttempts int
	// DebugResponse allows the passcode to be echoed in the API response
	// when email delivery is unavailable. Never honored in production.
	DebugResponse bool
}

type SMTPConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
	AppName  string
}

type KafkaConfig struct {
	Enabled bool
	Brokers []string
	Topic   string
}

type ClickhouseConfig struct {
	Enabled  bool
	URL      string
	Database string
	Username string
	Password string
	Table    string
}

type ActivityConfig struct {
	MaxEntries int
}

type LoggingConfig struct {
	Level  string
	Format string
}

// LoadConfig reads configuration from the environment, loading a .env file
// first when one is present.
func LoadConfig() *Config {
	_ = godotenv.Load()

	return &Config{
		Environment: GetEnv("ENVIRONMENT", "development"),
		Server: ServerConfig{
			Host:          GetEnv("SERVER_HOST", "0.0.0.0"),
			Port:          getEnvInt("SERVER_PORT", 8080),
			TLSPort:       getEnvInt("SERVER_TLS_PORT", 8443),
			ReadTimeout:   getEnvDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:  getEnvDuration("SERVER_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:   getEnvDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
			EnableTLS:     getEnvBool("SERVER_ENABLE_TLS", false),
			CertFile:      GetEnv("SERVER_CERT_FILE", ""),
			KeyFile:       GetEnv("SERVER_KEY_FILE", ""),
			Domain:        GetEnv("SERVER_DOMAIN", "localhost"),
			AutoCert:      getEnvBool("SERVER_AUTOCERT", false),
			AutoCertDir:   GetEnv("SERVER_AUTOCERT_DIR", "./certs"),
			AutoCertEmail: GetEnv("SERVER_AUTOCERT_EMAIL", ""),
		},
		Redis: RedisConfig{
			URL:      GetEnv("REDIS_URL", "redis://localhost:6379"),
			Password: GetEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
			PoolSize: getEnvInt("REDIS_POOL_SIZE", 50),
		},
		JWT: JWTConfig{
			Secret: GetEnv("JWT_SECRET", "dev-secret-change-me"),
			TTL:    getEnvDuration("JWT_TTL", 24*time.Hour),
			Issuer: GetEnv("JWT_ISSUER", "backoffice-service"),
		},
		OTP: OTPConfig{
			TTL:           getEnvDuration("OTP_TTL", 5*time.Minute),
			MaxAttempts:   getEnvInt("OTP_MAX_ATTEMPTS", 3),
			DebugResponse: getEnvBool("OTP_DEBUG_RESPONSE", true),
		},
		SMTP: SMTPConfig{
			Enabled:  getEnvBool("SMTP_ENABLED", false),
			Host:     GetEnv("SMTP_HOST", ""),
			Port:     getEnvInt("SMTP_PORT", 587),
			Username: GetEnv("SMTP_USERNAME", ""),
			Password: GetEnv("SMTP_PASSWORD", ""),
			From:     GetEnv("SMTP_FROM", "no-reply@localhost"),
			FromName: GetEnv("SMTP_FROM_NAME", "Back Office"),
			AppName:  GetEnv("APP_NAME", "Back Office"),
		},
		Kafka: KafkaConfig{
			Enabled: getEnvBool("KAFKA_ENABLED", false),
			Brokers: getEnvList("KAFKA_BROKERS", "localhost:9092"),
			Topic:   GetEnv("KAFKA_ACTIVITY_TOPIC", "backoffice-activity"),
		},
		Clickhouse: ClickhouseConfig{
			Enabled:  getEnvBool("CLICKHOUSE_ENABLED", false),
			URL:      GetEnv("CLICKHOUSE_URL", "localhost:9000"),
			Database: GetEnv("CLICKHOUSE_DATABASE", "backoffice"),
			Username: GetEnv("CLICKHOUSE_USERNAME", "default"),
			Password: GetEnv("CLICKHOUSE_PASSWORD", ""),
			Table:    GetEnv("CLICKHOUSE_ACTIVITY_TABLE", "activity_archive"),
		},
		Activity: ActivityConfig{
			MaxEntries: getEnvInt("ACTIVITY_MAX_ENTRIES", 1000),
		},
		Logging: LoggingConfig{
			Level:  GetEnv("LOG_LEVEL", "info"),
			Format: GetEnv("LOG_FORMAT", "console"),
		},
	}
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// OTPFallbackAllowed reports whether an undelivered passcode may be returned
// in the API response. Hard-disabled in production regardless of the flag.
func (c *Config) OTPFallbackAllowed() bool {
	return c.OTP.DebugResponse && !c.IsProduction()
}

func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvList(key, defaultValue string) []string {
	raw := GetEnv(key, defaultValue)
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
