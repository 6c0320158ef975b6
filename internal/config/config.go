package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type DBConfig struct {
	Host     string `env:"DB_HOST"`
	Port     int    `env:"DB_PORT"`
	User     string `env:"DB_USER"`
	Password string `env:"DB_PASSWORD"`
	Name     string `env:"DB_NAME"`
	SSLMode  string `env:"DB_SSLMODE"`
}

type Config struct {
	HTTPPort int `env:"HTTP_PORT"`

	DBConfig       DBConfig
	MigrationsPath string `env:"MIGRATIONS_PATH"`

	KafkaBrokerURL       string `env:"KAFKA_BROKER_URL"`
	KafkaSettlementTopic string `env:"KAFKA_SETTLEMENT_TOPIC"`
	KafkaLocationTopic   string `env:"KAFKA_LOCATION_TOPIC"`
	KafkaConsumerGroup   string `env:"KAFKA_CONSUMER_GROUP"`

	OutboxPollInterval time.Duration `env:"OUTBOX_POLL_INTERVAL"`
	OutboxPollTimeout  time.Duration `env:"OUTBOX_POLL_TIMEOUT"`
	OutboxBatchSize    int           `env:"OUTBOX_BATCH_SIZE"`

	RedisAddr     string        `env:"REDIS_ADDR"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	RedisDB       int           `env:"REDIS_DB"`
	TrackingTTL   time.Duration `env:"TRACKING_TTL"`

	UsersFile              string `env:"USERS_FILE"`
	DefaultDeliveryAddress string `env:"DEFAULT_DELIVERY_ADDRESS"`

	TaxRate     decimal.Decimal `env:"TAX_RATE"`
	DeliveryFee decimal.Decimal `env:"DELIVERY_FEE"`
	DeliveryETA time.Duration   `env:"DELIVERY_ETA"`

	CatalogueCacheTTL  time.Duration `env:"CATALOGUE_CACHE_TTL"`
	CORSAllowedOrigins []string      `env:"CORS_ALLOWED_ORIGINS"`
}

// LoadConfig reads the configuration from the environment. Outside of
// production a .env file in the working directory is loaded first; variables
// already set in the environment take precedence over it.
func LoadConfig() (*Config, error) {
	if os.Getenv("APP_ENV") != "production" {
		_ = godotenv.Load()
	}

	cfg := &Config{}

	cfg.HTTPPort = getEnvAsInt("HTTP_PORT", 8080)

	cfg.DBConfig.Host = getEnvOrDefault("DB_HOST", "localhost")
	cfg.DBConfig.Port = getEnvAsInt("DB_PORT", 5432)
	cfg.DBConfig.User = getEnvOrDefault("DB_USER", "postgres")
	cfg.DBConfig.Password = getEnvOrDefault("DB_PASSWORD", "postgres")
	cfg.DBConfig.Name = getEnvOrDefault("DB_NAME", "fooddelivery")
	cfg.DBConfig.SSLMode = getEnvOrDefault("DB_SSLMODE", "disable")
	cfg.MigrationsPath = getEnvOrDefault("MIGRATIONS_PATH", "file://migrations")

	cfg.KafkaBrokerURL = getEnvOrDefault("KAFKA_BROKER_URL", "localhost:9092")
	cfg.KafkaSettlementTopic = getEnvOrDefault("KAFKA_SETTLEMENT_TOPIC", "payment_settlements")
	cfg.KafkaLocationTopic = getEnvOrDefault("KAFKA_LOCATION_TOPIC", "courier_location_updates")
	cfg.KafkaConsumerGroup = getEnvOrDefault("KAFKA_CONSUMER_GROUP", "fooddelivery-tracking-group")

	cfg.OutboxPollInterval = getEnvAsDuration("OUTBOX_POLL_INTERVAL", 1*time.Second)
	cfg.OutboxPollTimeout = getEnvAsDuration("OUTBOX_POLL_TIMEOUT", 500*time.Millisecond)
	cfg.OutboxBatchSize = getEnvAsInt("OUTBOX_BATCH_SIZE", 10)

	cfg.RedisAddr = getEnvOrDefault("REDIS_ADDR", "localhost:6379")
	cfg.RedisPassword = getEnvOrDefault("REDIS_PASSWORD", "")
	cfg.RedisDB = getEnvAsInt("REDIS_DB", 0)
	cfg.TrackingTTL = getEnvAsDuration("TRACKING_TTL", 24*time.Hour)

	cfg.UsersFile = getEnvOrDefault("USERS_FILE", "users.json")
	cfg.DefaultDeliveryAddress = getEnvOrDefault("DEFAULT_DELIVERY_ADDRESS", "123 Main St")

	var err error
	if cfg.TaxRate, err = getEnvAsDecimal("TAX_RATE", "0.08"); err != nil {
		return nil, err
	}
	if cfg.DeliveryFee, err = getEnvAsDecimal("DELIVERY_FEE", "5.00"); err != nil {
		return nil, err
	}
	if cfg.TaxRate.IsNegative() || cfg.DeliveryFee.IsNegative() {
		return nil, fmt.Errorf("TAX_RATE and DELIVERY_FEE must not be negative")
	}
	cfg.DeliveryETA = getEnvAsDuration("DELIVERY_ETA", 40*time.Minute)

	cfg.CatalogueCacheTTL = getEnvAsDuration("CATALOGUE_CACHE_TTL", 30*time.Second)
	cfg.CORSAllowedOrigins = getEnvAsList("CORS_ALLOWED_ORIGINS", "http://localhost:5173")

	return cfg, nil
}

func (c *Config) GetDBConnectionString() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.DBConfig.Host, c.DBConfig.Port, c.DBConfig.User, c.DBConfig.Password, c.DBConfig.Name, c.DBConfig.SSLMode)
}

func (c *Config) GetDBMigrationConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.DBConfig.User, c.DBConfig.Password, c.DBConfig.Host, c.DBConfig.Port, c.DBConfig.Name, c.DBConfig.SSLMode)
}

func (c *Config) GetKafkaBrokers() []string {
	return getList(c.KafkaBrokerURL)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnvOrDefault(key, strconv.Itoa(defaultValue))
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnvOrDefault(key, defaultValue.String())
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDecimal(key, defaultValue string) (decimal.Decimal, error) {
	valueStr := getEnvOrDefault(key, defaultValue)
	value, err := decimal.NewFromString(strings.TrimSpace(valueStr))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s: %w", key, err)
	}
	return value, nil
}

func getEnvAsList(key, defaultValue string) []string {
	return getList(getEnvOrDefault(key, defaultValue))
}

func getList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
