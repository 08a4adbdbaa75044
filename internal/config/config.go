package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server   ServerConfig
	Game     GameConfig
	Database DatabaseConfig
	Kafka    KafkaConfig
	Redis    RedisConfig
	Security SecurityConfig
	Debug    bool
}

type ServerConfig struct {
	Port           int
	RateLimitRPS   float64
	RateLimitBurst float64
}

type GameConfig struct {
	DefaultBoardSize int
	MaxBoardSize     int
	BotMoveDelay     time.Duration
	BotName          string
}

type DatabaseConfig struct {
	URL      string
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
}

// Enabled reports whether a database was configured at all.
func (c DatabaseConfig) Enabled() bool {
	return c.URL != "" || c.Host != ""
}

// DSN returns the connection string for lib/pq.
func (c DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		c.Host, c.Port, c.User, c.Password, c.DBName)
}

type KafkaConfig struct {
	Brokers []string
	Topic   string
	GroupID string
}

type RedisConfig struct {
	Addr     string
	Password string
	StatsTTL time.Duration
}

type SecurityConfig struct {
	AllowedOrigins []string
}

func LoadConfig() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:           getEnvInt("SERVER_PORT", getEnvInt("PORT", 8080)),
			RateLimitRPS:   float64(getEnvInt("RATE_LIMIT_RPS", 20)),
			RateLimitBurst: float64(getEnvInt("RATE_LIMIT_BURST", 40)),
		},
		Game: GameConfig{
			DefaultBoardSize: getEnvInt("DEFAULT_BOARD_SIZE", 7),
			MaxBoardSize:     getEnvInt("MAX_BOARD_SIZE", 10),
			BotMoveDelay:     getEnvDuration("BOT_MOVE_DELAY", 500*time.Millisecond),
			BotName:          getEnv("BOT_NAME", "BOT"),
		},
		Database: DatabaseConfig{
			URL:      getEnv("DATABASE_URL", ""),
			Host:     getEnv("DB_HOST", ""),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "fourinarow"),
		},
		Kafka: KafkaConfig{
			Brokers: splitList(getEnv("KAFKA_BROKERS", "")),
			Topic:   getEnv("KAFKA_TOPIC", "game-events"),
			GroupID: getEnv("KAFKA_GROUP_ID", "analytics-group"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			StatsTTL: getEnvDuration("STATS_CACHE_TTL", 30*time.Second),
		},
		Security: SecurityConfig{
			AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "")),
		},
		Debug: getEnvBool("DEBUG", false),
	}

	if cfg.Game.MaxBoardSize < 1 {
		return nil, fmt.Errorf("MAX_BOARD_SIZE must be positive, got %d", cfg.Game.MaxBoardSize)
	}
	if cfg.Game.DefaultBoardSize < 1 || cfg.Game.DefaultBoardSize > cfg.Game.MaxBoardSize {
		return nil, fmt.Errorf("DEFAULT_BOARD_SIZE must be between 1 and %d, got %d",
			cfg.Game.MaxBoardSize, cfg.Game.DefaultBoardSize)
	}
	if cfg.Server.RateLimitRPS <= 0 || cfg.Server.RateLimitBurst < 1 {
		return nil, fmt.Errorf("rate limit must be positive, got %v/s burst %v",
			cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst)
	}
	return cfg, nil
}

func getEnv(key, defaultValue string) string {
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

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
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

// splitList splits a comma separated value, dropping blanks.
func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
