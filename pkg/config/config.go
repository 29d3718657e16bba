package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	CORS      CORSConfig
	Log       LogConfig
	Engine    EngineConfig
	Scenarios ScenariosConfig
	Queue     QueueConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret string
	Issuer string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// EngineConfig tunes the timetable grid and the generator's search.
type EngineConfig struct {
	Days                  int
	PeriodsPerDay         int
	ProtectedPeriod       int
	SatisfactionWeight    float64
	BalanceWeight         float64
	UtilizationWeight     float64
	ImprovementIterations int
	Seed                  int64
	RunTTL                time.Duration
}

// ScenariosConfig governs scenario cache behaviour.
type ScenariosConfig struct {
	ActiveCacheTTL time.Duration
}

// QueueConfig sizes the background generation worker pool.
type QueueConfig struct {
	Workers    int
	BufferSize int
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret: v.GetString("JWT_SECRET"),
		Issuer: v.GetString("JWT_ISSUER"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Engine = EngineConfig{
		Days:                  v.GetInt("ENGINE_DAYS"),
		PeriodsPerDay:         v.GetInt("ENGINE_PERIODS_PER_DAY"),
		ProtectedPeriod:       v.GetInt("ENGINE_PROTECTED_PERIOD"),
		SatisfactionWeight:    v.GetFloat64("ENGINE_WEIGHT_SATISFACTION"),
		BalanceWeight:         v.GetFloat64("ENGINE_WEIGHT_BALANCE"),
		UtilizationWeight:     v.GetFloat64("ENGINE_WEIGHT_UTILIZATION"),
		ImprovementIterations: v.GetInt("ENGINE_IMPROVEMENT_ITERATIONS"),
		Seed:                  v.GetInt64("ENGINE_SEED"),
		RunTTL:                parseDuration(v.GetString("ENGINE_RUN_TTL"), time.Hour),
	}

	cfg.Scenarios = ScenariosConfig{
		ActiveCacheTTL: parseDuration(v.GetString("SCENARIO_ACTIVE_CACHE_TTL"), 10*time.Minute),
	}

	cfg.Queue = QueueConfig{
		Workers:    v.GetInt("QUEUE_WORKERS"),
		BufferSize: v.GetInt("QUEUE_BUFFER_SIZE"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "campus_timetable")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 25)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("ENGINE_DAYS", 5)
	v.SetDefault("ENGINE_PERIODS_PER_DAY", 8)
	v.SetDefault("ENGINE_PROTECTED_PERIOD", 4)
	v.SetDefault("ENGINE_WEIGHT_SATISFACTION", 40)
	v.SetDefault("ENGINE_WEIGHT_BALANCE", 35)
	v.SetDefault("ENGINE_WEIGHT_UTILIZATION", 25)
	v.SetDefault("ENGINE_IMPROVEMENT_ITERATIONS", 500)
	v.SetDefault("ENGINE_SEED", 1)

	v.SetDefault("QUEUE_WORKERS", 2)
	v.SetDefault("QUEUE_BUFFER_SIZE", 8)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}
	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
