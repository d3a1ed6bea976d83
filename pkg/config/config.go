package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/gorm/logger"
)

// DBConfig holds database configuration
type DBConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	LogLevel        logger.LogLevel
}

// GetDSN returns the PostgreSQL connection string
func (c *DBConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port string
	Env  string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	SigningKey      string
	ExpirationHours int
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string
}

// MetricsConfig holds metrics configuration
type MetricsConfig struct {
	Prefix string
}

// OrderConfig tunes the order engine
type OrderConfig struct {
	// MinEstimatedMinutes is used when the summed preparation time of an order is zero.
	MinEstimatedMinutes int
	// LockTimeout bounds how long a transaction waits on a row lock before failing with a conflict.
	LockTimeout time.Duration
}

// ImageGenConfig configures the custom dish image service. An empty URL disables it.
type ImageGenConfig struct {
	URL     string
	Timeout time.Duration
}

// Enabled reports whether image generation is configured
func (c *ImageGenConfig) Enabled() bool {
	return c.URL != ""
}

// Config holds all configuration
type Config struct {
	ServiceName string
	DB          DBConfig
	Server      ServerConfig
	JWT         JWTConfig
	Log         LogConfig
	Metrics     MetricsConfig
	Order       OrderConfig
	ImageGen    ImageGenConfig
}

// Load loads configuration from the optional .env file and environment variables
func Load() (*Config, error) {
	// .env is optional, plain environment variables are enough
	_ = godotenv.Load()

	config := &Config{
		ServiceName: getEnv("SERVICE_NAME", "smartdine"),
		DB: DBConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", "password"),
			DBName:          getEnv("DB_NAME", "smartdine"),
			SSLMode:         getEnv("DB_SSL_MODE", "disable"),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 10),
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 100),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 1*time.Hour),
			LogLevel:        getEnvAsLogLevel("DB_LOG_LEVEL", logger.Warn),
		},
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8000"),
			Env:  getEnv("APP_ENV", "development"),
		},
		JWT: JWTConfig{
			SigningKey:      getEnv("JWT_SIGNING_KEY", "smartdinesecretkey"),
			ExpirationHours: getEnvAsInt("JWT_EXPIRATION_HOURS", 12),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Metrics: MetricsConfig{
			Prefix: getEnv("METRICS_PREFIX", "smartdine"),
		},
		Order: OrderConfig{
			MinEstimatedMinutes: getEnvAsInt("ORDER_MIN_ETA_MINUTES", 10),
			LockTimeout:         getEnvAsDuration("ORDER_LOCK_TIMEOUT", 5*time.Second),
		},
		ImageGen: ImageGenConfig{
			URL:     getEnv("IMAGE_SERVICE_URL", ""),
			Timeout: getEnvAsDuration("IMAGE_SERVICE_TIMEOUT", 60*time.Second),
		},
	}

	if config.Order.MinEstimatedMinutes < 0 {
		return nil, fmt.Errorf("ORDER_MIN_ETA_MINUTES must not be negative, got %d", config.Order.MinEstimatedMinutes)
	}

	return config, nil
}

// LogConfig returns the configuration as a zap logger-friendly format
func (c *Config) LogConfig() []zap.Field {
	return []zap.Field{
		zap.String("service", c.ServiceName),
		zap.String("environment", c.Server.Env),
		zap.String("db_host", c.DB.Host),
		zap.String("db_port", c.DB.Port),
		zap.String("db_user", c.DB.User),
		zap.String("db_name", c.DB.DBName),
		zap.String("server_port", c.Server.Port),
		zap.Int("min_eta_minutes", c.Order.MinEstimatedMinutes),
		zap.Duration("lock_timeout", c.Order.LockTimeout),
		zap.Bool("image_generation", c.ImageGen.Enabled()),
	}
}

// Helper function to get environment variables with defaults
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// Helper function to get environment variables as integers
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// Helper function to get environment variables as durations
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// Helper function to get environment variables as log levels
func getEnvAsLogLevel(key string, defaultValue logger.LogLevel) logger.LogLevel {
	valueStr := getEnv(key, "")
	switch valueStr {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "warn":
		return logger.Warn
	case "info":
		return logger.Info
	default:
		return defaultValue
	}
}
