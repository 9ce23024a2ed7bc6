package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	DriverMemory   = "memory"
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	TelegramConfig TelegramConfig
	StoreConfig    StoreConfig
	MongoConfig    MongoConfig
	PostgresConfig PostgresConfig
	SQLiteConfig   SQLiteConfig
	KafkaConfig    KafkaConfig
	TracingConfig  TracingConfig
	MetricsConfig  MetricsConfig
	LogConfig      LogConfig
}

type TelegramConfig struct {
	TokenNotesBot  string
	TokenNotifyBot string
	// NotifyChatID receives a message per consumed event when set.
	NotifyChatID int64
}

type StoreConfig struct {
	Driver string
}

type MongoConfig struct {
	URI      string
	Database string
}

type PostgresConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// DSN is the lib/pq connection string.
func (c PostgresConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

type SQLiteConfig struct {
	Path string
}

type KafkaConfig struct {
	Enabled bool
	Brokers []string
	Topic   string
	GroupID string
}

type TracingConfig struct {
	Endpoint string
}

type MetricsConfig struct {
	Addr string
}

type LogConfig struct {
	Level       string
	Format      string
	Environment string
}

// LoadConfig reads .env when present, then the process environment.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug(".env file not found, using environment variables")
	}

	config := &Config{
		TelegramConfig: TelegramConfig{
			TokenNotesBot:  getEnv("TOKEN_NOTES_BOT", ""),
			TokenNotifyBot: getEnv("TOKEN_NOTIFY_BOT", ""),
		},
		StoreConfig: StoreConfig{
			Driver: strings.ToLower(getEnv("STORE_DRIVER", DriverMemory)),
		},
		MongoConfig: MongoConfig{
			URI:      getEnv("MONGO_URI", "mongodb://localhost:27017"),
			Database: getEnv("MONGO_DB", "notes"),
		},
		PostgresConfig: PostgresConfig{
			Host:     getEnv("POSTGRES_HOST", "localhost"),
			Port:     getEnv("POSTGRES_PORT", "5432"),
			User:     getEnv("POSTGRES_USER", "user"),
			Password: getEnv("POSTGRES_PASSWORD", "password"),
			DBName:   getEnv("POSTGRES_DB", "dbname"),
			SSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		},
		SQLiteConfig: SQLiteConfig{
			Path: getEnv("SQLITE_PATH", "notes.db"),
		},
		KafkaConfig: KafkaConfig{
			Enabled: getEnvBool("KAFKA_ENABLED", false),
			Brokers: splitList(getEnv("KAFKA_BROKERS", "localhost:9092")),
			Topic:   getEnv("KAFKA_TOPIC", "note-events"),
			GroupID: getEnv("KAFKA_GROUP_ID", "note-event-consumers"),
		},
		TracingConfig: TracingConfig{
			Endpoint: getEnv("JAEGER_ENDPOINT", ""),
		},
		MetricsConfig: MetricsConfig{
			Addr: getEnv("METRICS_ADDR", ":8080"),
		},
		LogConfig: LogConfig{
			Level:       getEnv("LOG_LEVEL", "info"),
			Format:      getEnv("LOG_FORMAT", ""),
			Environment: getEnv("APP_ENV", "development"),
		},
	}

	if raw := getEnv("NOTIFY_CHAT_ID", ""); raw != "" {
		chatID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("failed to parse NOTIFY_CHAT_ID: %w", err)
		}
		config.TelegramConfig.NotifyChatID = chatID
	}

	switch config.StoreConfig.Driver {
	case DriverMemory, DriverMongo, DriverPostgres, DriverSQLite:
	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q", config.StoreConfig.Driver)
	}

	return config, nil
}

// RequireBotToken is checked only by the bot binary; the notifier runs without one.
func (c *Config) RequireBotToken() error {
	if c.TelegramConfig.TokenNotesBot == "" {
		return fmt.Errorf("TOKEN_NOTES_BOT is required")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	switch strings.ToLower(getEnv(key, "")) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return defaultValue
	}
}

func splitList(value string) []string {
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
