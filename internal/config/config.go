package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Kafka     KafkaConfig
	Providers ProvidersConfig
	Schedule  ScheduleConfig
	Log       LogConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port string
	Host string
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// RedisConfig holds Redis configuration for the distributed job lock
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// KafkaConfig holds Kafka configuration
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// ProvidersConfig holds market-data provider credentials and tuning
type ProvidersConfig struct {
	AlphaVantageKey  string
	HTTPTimeout      time.Duration
	MaxRetries       int
	RetryBaseDelay   time.Duration
	BreakerThreshold int
	BreakerCooldown  time.Duration
	CacheCapacity    int
}

// ScheduleConfig holds trading-window and job-lock settings
type ScheduleConfig struct {
	Timezone      string
	OpenHour      int
	CloseHour     int
	LockTTL       time.Duration
	LockRetries   int
	LockRetryWait time.Duration
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string
	Pretty bool
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "portfolioadvisor"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Kafka: KafkaConfig{
			Brokers: strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ","),
			Topic:   getEnv("KAFKA_TOPIC", "action-changes"),
		},
		Providers: ProvidersConfig{
			AlphaVantageKey:  getEnv("ALPHAVANTAGE_API_KEY", ""),
			HTTPTimeout:      getEnvDuration("PROVIDER_HTTP_TIMEOUT", 5*time.Second),
			MaxRetries:       getEnvInt("PROVIDER_MAX_RETRIES", 3),
			RetryBaseDelay:   getEnvDuration("PROVIDER_RETRY_BASE_DELAY", 500*time.Millisecond),
			BreakerThreshold: getEnvInt("BREAKER_FAILURE_THRESHOLD", 5),
			BreakerCooldown:  getEnvDuration("BREAKER_COOLDOWN", 60*time.Second),
			CacheCapacity:    getEnvInt("QUOTE_CACHE_CAPACITY", 1000),
		},
		Schedule: ScheduleConfig{
			Timezone:      getEnv("TRADING_TIMEZONE", "America/New_York"),
			OpenHour:      getEnvInt("TRADING_OPEN_HOUR", 9),
			CloseHour:     getEnvInt("TRADING_CLOSE_HOUR", 16),
			LockTTL:       getEnvDuration("JOB_LOCK_TTL", 5*time.Minute),
			LockRetries:   getEnvInt("JOB_LOCK_RETRIES", 2),
			LockRetryWait: getEnvDuration("JOB_LOCK_RETRY_WAIT", 2*time.Second),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Pretty: getEnv("LOG_PRETTY", "false") == "true",
		},
	}
}

// HourAfterClose returns the wall-clock hour offset hours after the
// close hour, wrapping past midnight. Keeps cron hour fields valid for
// markets that close late in the day.
func (s *ScheduleConfig) HourAfterClose(offset int) int {
	return (s.CloseHour + offset) % 24
}

// ConnectionString returns the PostgreSQL connection string
func (d *DatabaseConfig) ConnectionString() string {
	return "postgres://" + d.User + ":" + d.Password + "@" + d.Host + ":" + d.Port + "/" + d.DBName + "?sslmode=" + d.SSLMode
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
