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

	Database     DatabaseConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Auth         AuthConfig
	CORS         CORSConfig
	Log          LogConfig
	Scheduling   SchedulingConfig
	Extraction   ExtractionConfig
	CalendarFeed CalendarFeedConfig
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
	Secret     string
	Expiration time.Duration
	Issuer     string
}

// AuthConfig holds the single-operator credentials. The password is stored
// as a bcrypt hash, never in plain text.
type AuthConfig struct {
	OperatorEmail        string
	OperatorPasswordHash string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// SchedulingConfig carries the calendar parameters fed into the allocation
// engine: grid granularity, working window, and batch limits.
type SchedulingConfig struct {
	GranularityMinutes int
	WorkingDays        []string
	DayStart           string
	DayEnd             string
	MaxClientBatch     int
	RunTTL             time.Duration
}

// ExtractionConfig configures the OpenRouter-backed preference extraction.
type ExtractionConfig struct {
	Enabled bool
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// CalendarFeedConfig points at the operator's public ICS feed used to
// resolve busy intervals.
type CalendarFeedConfig struct {
	URL      string
	Timeout  time.Duration
	CacheTTL time.Duration
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
		Secret:     v.GetString("JWT_SECRET"),
		Expiration: parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
		Issuer:     v.GetString("JWT_ISSUER"),
	}

	cfg.Auth = AuthConfig{
		OperatorEmail:        v.GetString("OPERATOR_EMAIL"),
		OperatorPasswordHash: v.GetString("OPERATOR_PASSWORD_HASH"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Scheduling = SchedulingConfig{
		GranularityMinutes: v.GetInt("SCHEDULING_GRANULARITY_MINUTES"),
		WorkingDays:        splitAndTrim(v.GetString("SCHEDULING_WORKING_DAYS")),
		DayStart:           v.GetString("SCHEDULING_DAY_START"),
		DayEnd:             v.GetString("SCHEDULING_DAY_END"),
		MaxClientBatch:     v.GetInt("SCHEDULING_MAX_CLIENT_BATCH"),
		RunTTL:             parseDuration(v.GetString("SCHEDULING_RUN_TTL"), 30*time.Minute),
	}

	cfg.Extraction = ExtractionConfig{
		Enabled: v.GetBool("EXTRACTION_ENABLED"),
		BaseURL: v.GetString("EXTRACTION_BASE_URL"),
		APIKey:  v.GetString("EXTRACTION_API_KEY"),
		Model:   v.GetString("EXTRACTION_MODEL"),
		Timeout: parseDuration(v.GetString("EXTRACTION_TIMEOUT"), 30*time.Second),
	}

	cfg.CalendarFeed = CalendarFeedConfig{
		URL:      v.GetString("CALENDAR_FEED_URL"),
		Timeout:  parseDuration(v.GetString("CALENDAR_FEED_TIMEOUT"), 15*time.Second),
		CacheTTL: parseDuration(v.GetString("CALENDAR_FEED_CACHE_TTL"), 10*time.Minute),
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
	v.SetDefault("DB_NAME", "session_scheduler")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "24h")
	v.SetDefault("JWT_ISSUER", "scheduler-api")

	v.SetDefault("OPERATOR_EMAIL", "operator@example.com")
	v.SetDefault("OPERATOR_PASSWORD_HASH", "")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("SCHEDULING_GRANULARITY_MINUTES", 15)
	v.SetDefault("SCHEDULING_WORKING_DAYS", "Monday,Tuesday,Wednesday,Thursday,Friday")
	v.SetDefault("SCHEDULING_DAY_START", "07:00")
	v.SetDefault("SCHEDULING_DAY_END", "15:00")
	v.SetDefault("SCHEDULING_MAX_CLIENT_BATCH", 30)
	v.SetDefault("SCHEDULING_RUN_TTL", "30m")

	v.SetDefault("EXTRACTION_ENABLED", false)
	v.SetDefault("EXTRACTION_BASE_URL", "https://openrouter.ai/api/v1")
	v.SetDefault("EXTRACTION_API_KEY", "")
	v.SetDefault("EXTRACTION_MODEL", "openai/gpt-4o-mini")
	v.SetDefault("EXTRACTION_TIMEOUT", "30s")

	v.SetDefault("CALENDAR_FEED_URL", "")
	v.SetDefault("CALENDAR_FEED_TIMEOUT", "15s")
	v.SetDefault("CALENDAR_FEED_CACHE_TTL", "10m")
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
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
