package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config содержит все настройки приложения Catalog Service
// Включает конфигурацию для HTTP сервера, MongoDB, Redis, Kafka, Stripe и JWT
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Kafka     KafkaConfig
	JWT       JWTConfig
	Stripe    StripeConfig
	Scheduler SchedulerConfig
	Log       LogConfig
}

// ServerConfig - настройки HTTP сервера
type ServerConfig struct {
	Host         string   // Адрес хоста (по умолчанию 0.0.0.0)
	Port         string   // Порт сервера (по умолчанию 8081)
	AllowOrigins []string // Пустой список - разрешены все origin
}

// DatabaseConfig - настройки подключения к MongoDB
type DatabaseConfig struct {
	URI            string
	Name           string
	ConnectTimeout time.Duration
}

// RedisConfig - настройки Redis для кеша количества документов.
// Пустой Host отключает кеш.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	CountTTL time.Duration
}

// KafkaConfig - настройки Kafka для событий изменения каталога.
// Пустой список брокеров отключает публикацию.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// JWTConfig - настройки проверки токенов сессии
type JWTConfig struct {
	Secret     string // HS256
	PublicKey  string // PEM для RS256, имеет приоритет над Secret
	StaffOrgID string // Организация, члены которой считаются сотрудниками
}

// StripeConfig - настройки платежного шлюза.
// Пустой SecretKey отключает checkout.
type StripeConfig struct {
	SecretKey string
	Currency  string
}

// SchedulerConfig - расписание пересчета количества документов
type SchedulerConfig struct {
	CountRefresh string
}

type LogConfig struct {
	Level        string
	LogstashAddr string
}

// Load загружает конфигурацию из переменных окружения и опционального .env файла.
// Переменные окружения имеют приоритет над файлом.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // файла может не быть

	v.AutomaticEnv()
	setDefaults(v)

	redisDB, err := getInt(v, "REDIS_DB")
	if err != nil {
		return nil, err
	}

	connectTimeout, err := getDuration(v, "MONGODB_CONNECT_TIMEOUT")
	if err != nil {
		return nil, err
	}

	countTTL, err := getDuration(v, "COUNT_CACHE_TTL")
	if err != nil {
		return nil, err
	}

	return &Config{
		Server: ServerConfig{
			Host:         v.GetString("SERVER_HOST"),
			Port:         v.GetString("SERVER_PORT"),
			AllowOrigins: splitList(v.GetString("CORS_ALLOW_ORIGINS")),
		},
		Database: DatabaseConfig{
			URI:            v.GetString("MONGODB_URI"),
			Name:           v.GetString("MONGODB_DATABASE"),
			ConnectTimeout: connectTimeout,
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetString("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       redisDB,
			CountTTL: countTTL,
		},
		Kafka: KafkaConfig{
			Brokers: splitList(v.GetString("KAFKA_BROKERS")),
			Topic:   v.GetString("KAFKA_TOPIC"),
		},
		JWT: JWTConfig{
			Secret:     v.GetString("JWT_SECRET"),
			PublicKey:  v.GetString("JWT_PUBLIC_KEY"),
			StaffOrgID: v.GetString("STAFF_ORG_ID"),
		},
		Stripe: StripeConfig{
			SecretKey: v.GetString("STRIPE_SECRET_KEY"),
			Currency:  strings.ToLower(v.GetString("STRIPE_CURRENCY")),
		},
		Scheduler: SchedulerConfig{
			CountRefresh: v.GetString("COUNT_REFRESH_SCHEDULE"),
		},
		Log: LogConfig{
			Level:        v.GetString("LOG_LEVEL"),
			LogstashAddr: v.GetString("LOGSTASH_ADDR"),
		},
	}, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", "8081")
	v.SetDefault("MONGODB_URI", "mongodb://localhost:27017")
	v.SetDefault("MONGODB_DATABASE", "storefront")
	v.SetDefault("MONGODB_CONNECT_TIMEOUT", "10s")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_DB", "0")
	v.SetDefault("COUNT_CACHE_TTL", "5m")
	v.SetDefault("KAFKA_TOPIC", "catalog_events")
	v.SetDefault("STRIPE_CURRENCY", "usd")
	v.SetDefault("COUNT_REFRESH_SCHEDULE", "@every 5m")
	v.SetDefault("LOG_LEVEL", "info")
}

// Address возвращает адрес сервера в формате host:port для HTTP сервера
func (c *ServerConfig) Address() string {
	return c.Host + ":" + c.Port
}

// Address возвращает адрес Redis в формате host:port.
// Пустая строка, если Redis не настроен.
func (c *RedisConfig) Address() string {
	if c.Host == "" {
		return ""
	}
	return c.Host + ":" + c.Port
}

func getInt(v *viper.Viper, key string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(v.GetString(key)))
	if err != nil {
		return 0, fmt.Errorf("invalid %s value: %w", key, err)
	}
	return n, nil
}

func getDuration(v *viper.Viper, key string) (time.Duration, error) {
	d, err := time.ParseDuration(strings.TrimSpace(v.GetString(key)))
	if err != nil {
		return 0, fmt.Errorf("invalid %s value: %w", key, err)
	}
	return d, nil
}

// splitList разбирает список через запятую, пропуская пустые элементы
func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
