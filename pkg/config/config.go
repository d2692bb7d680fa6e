package config

import (
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the storefront service configuration. Values come from the
// environment (optionally bootstrapped from a .env file), with sane local
// defaults for development.
type Config struct {
	ServiceName string
	Environment string
	LogLevel    string
	HTTPPort    string

	Storage  StorageConfig
	Redis    RedisConfig
	Postgres PostgresConfig
	Kafka    KafkaConfig
	Admin    AdminConfig
}

// StorageConfig selects the persistence backends. Primary is tried first on
// every write; Fallback takes writes the primary refuses.
type StorageConfig struct {
	// Primary: "redis", "postgres", "postgres-gorm", "file" or "memory".
	Primary string
	// Fallback: "file" or "memory".
	Fallback string
	// DataDir is the directory for the file backend.
	DataDir string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type PostgresConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type KafkaConfig struct {
	Enabled bool
	Brokers []string
}

// AdminConfig describes the reserved admin account seeded at startup.
// Registrations using this email are always refused.
type AdminConfig struct {
	Email    string
	Password string
}

// Load reads the configuration. A missing .env file is not an error.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("SERVICE_NAME", "storefront")
	v.SetDefault("ENVIRONMENT", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("HTTP_PORT", "8080")

	v.SetDefault("STORAGE_PRIMARY", "file")
	v.SetDefault("STORAGE_FALLBACK", "memory")
	v.SetDefault("STORAGE_DATA_DIR", "./data")

	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "storefront")
	v.SetDefault("DB_SSLMODE", "disable")

	v.SetDefault("KAFKA_ENABLED", false)
	v.SetDefault("KAFKA_BROKERS", "localhost:9092")

	v.SetDefault("ADMIN_EMAIL", "admin@storefront.dev")
	v.SetDefault("ADMIN_PASSWORD", "admin123")

	cfg := &Config{
		ServiceName: v.GetString("SERVICE_NAME"),
		Environment: v.GetString("ENVIRONMENT"),
		LogLevel:    v.GetString("LOG_LEVEL"),
		HTTPPort:    v.GetString("HTTP_PORT"),
		Storage: StorageConfig{
			Primary:  v.GetString("STORAGE_PRIMARY"),
			Fallback: v.GetString("STORAGE_FALLBACK"),
			DataDir:  v.GetString("STORAGE_DATA_DIR"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		Postgres: PostgresConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			DBName:   v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSLMODE"),
		},
		Kafka: KafkaConfig{
			Enabled: v.GetBool("KAFKA_ENABLED"),
			Brokers: strings.Split(v.GetString("KAFKA_BROKERS"), ","),
		},
		Admin: AdminConfig{
			Email:    v.GetString("ADMIN_EMAIL"),
			Password: v.GetString("ADMIN_PASSWORD"),
		},
	}

	return cfg, nil
}

// IsDevelopment reports whether the service runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}
