package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Delivery DeliveryConfig
	Seed     SeedConfig
	Features FeatureFlags
}

type ServerConfig struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	Host          string
	Port          int
	User          string
	Password      string
	Name          string
	SSLMode       string
	MaxOpenConns  int
	MaxIdleConns  int
	MaxLifetime   time.Duration
	MigrationsDir string
}

func (d DatabaseConfig) ConnectionString() string {
	return "host=" + d.Host +
		" port=" + strconv.Itoa(d.Port) +
		" user=" + d.User +
		" password=" + d.Password +
		" dbname=" + d.Name +
		" sslmode=" + d.SSLMode
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
	CartTTL  time.Duration
}

type KafkaConfig struct {
	Brokers     []string
	OrdersTopic string
}

// DeliveryConfig drives ETA estimation at checkout.
type DeliveryConfig struct {
	AverageSpeedKmh float64
}

// SeedConfig controls the administrative catalog batch load.
type SeedConfig struct {
	Shops        int
	ItemsPerShop int
	CenterLat    float64
	CenterLng    float64
}

type FeatureFlags struct {
	EnableOrderEvents  bool
	EnableSeedEndpoint bool
	AutoMigrate        bool
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnvInt("SERVER_PORT", 8080),
			ReadTimeout:  time.Duration(getEnvInt("SERVER_READ_TIMEOUT", 30)) * time.Second,
			WriteTimeout: time.Duration(getEnvInt("SERVER_WRITE_TIMEOUT", 30)) * time.Second,
		},
		Database: DatabaseConfig{
			Host:          getEnvString("DB_HOST", "localhost"),
			Port:          getEnvInt("DB_PORT", 5432),
			User:          getEnvString("DB_USER", "grocerease"),
			Password:      getEnvString("DB_PASSWORD", "grocerease"),
			Name:          getEnvString("DB_NAME", "grocerease"),
			SSLMode:       getEnvString("DB_SSLMODE", "disable"),
			MaxOpenConns:  getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:  getEnvInt("DB_MAX_IDLE_CONNS", 5),
			MaxLifetime:   time.Duration(getEnvInt("DB_CONN_MAX_LIFETIME", 300)) * time.Second,
			MigrationsDir: getEnvString("DB_MIGRATIONS_DIR", "migrations"),
		},
		Redis: RedisConfig{
			Host:     getEnvString("REDIS_HOST", "localhost"),
			Port:     getEnvInt("REDIS_PORT", 6379),
			Password: getEnvString("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
			CartTTL:  time.Duration(getEnvInt("CART_TTL_HOURS", 168)) * time.Hour,
		},
		Kafka: KafkaConfig{
			Brokers:     strings.Split(getEnvString("KAFKA_BROKERS", "localhost:9092"), ","),
			OrdersTopic: getEnvString("KAFKA_ORDERS_TOPIC", "grocerease.orders"),
		},
		Delivery: DeliveryConfig{
			AverageSpeedKmh: getEnvFloat("DELIVERY_SPEED_KMH", 20),
		},
		Seed: SeedConfig{
			Shops:        getEnvInt("SEED_SHOPS", 5),
			ItemsPerShop: getEnvInt("SEED_ITEMS_PER_SHOP", 30),
			CenterLat:    getEnvFloat("SEED_CENTER_LAT", 28.6),
			CenterLng:    getEnvFloat("SEED_CENTER_LNG", 77.2),
		},
		Features: FeatureFlags{
			EnableOrderEvents:  getEnvBool("ENABLE_ORDER_EVENTS", false),
			EnableSeedEndpoint: getEnvBool("ENABLE_SEED_ENDPOINT", true),
			AutoMigrate:        getEnvBool("DB_AUTO_MIGRATE", false),
		},
	}
}

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
