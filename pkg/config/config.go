package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Forum display modes, matching the values stored in user preferences.
const (
	DisplayModeFlatOldest = 1
	DisplayModeFlatNewest = -1
	DisplayModeThreaded   = 2
	DisplayModeNested     = 3
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	CORS     CORSConfig
	Log      LogConfig
	Forum    ForumConfig
	Storage  StorageConfig
	Summary  SummaryCacheConfig
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

// ForumConfig carries the site-wide forum settings consulted while collecting and rendering posts.
type ForumConfig struct {
	WWWRoot           string
	EnableTimedPosts  bool
	UserMarksRead     bool
	LongPost          int
	ShortPost         int
	DisplayMode       int
	MaxEditingTime    time.Duration
	EnablePortfolios  bool
	TrackReadingPosts bool
}

// StorageConfig locates the submission file area and signs export downloads.
type StorageConfig struct {
	BaseDir         string
	SignedURLSecret string
	SignedURLTTL    time.Duration
	IncludePDF      bool
}

// SummaryCacheConfig toggles the Redis-backed submission summary cache.
type SummaryCacheConfig struct {
	Enabled bool
	TTL     time.Duration
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
		if !errors.As(err, &notFound) && !isMissingFile(err) {
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

	cfg.Forum = ForumConfig{
		WWWRoot:           strings.TrimRight(v.GetString("FORUM_WWWROOT"), "/"),
		EnableTimedPosts:  v.GetBool("FORUM_ENABLE_TIMED_POSTS"),
		UserMarksRead:     v.GetBool("FORUM_USER_MARKS_READ"),
		LongPost:          positiveOr(v.GetInt("FORUM_LONGPOST"), 600),
		ShortPost:         positiveOr(v.GetInt("FORUM_SHORTPOST"), 300),
		DisplayMode:       v.GetInt("FORUM_DISPLAY_MODE"),
		MaxEditingTime:    parseDuration(v.GetString("FORUM_MAX_EDITING_TIME"), 30*time.Minute),
		EnablePortfolios:  v.GetBool("FORUM_ENABLE_PORTFOLIOS"),
		TrackReadingPosts: v.GetBool("FORUM_TRACK_READING_POSTS"),
	}

	cfg.Storage = StorageConfig{
		BaseDir:         v.GetString("SUBMISSION_STORAGE_DIR"),
		SignedURLSecret: v.GetString("EXPORT_SIGNED_URL_SECRET"),
		SignedURLTTL:    parseDuration(v.GetString("EXPORT_SIGNED_URL_TTL"), 30*time.Minute),
		IncludePDF:      v.GetBool("EXPORT_INCLUDE_PDF"),
	}

	cfg.Summary = SummaryCacheConfig{
		Enabled: v.GetBool("ENABLE_SUMMARY_CACHE"),
		TTL:     parseDuration(v.GetString("SUMMARY_CACHE_TTL"), 10*time.Minute),
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
	v.SetDefault("DB_NAME", "forum_submission")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_ISSUER", "")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("FORUM_WWWROOT", "http://localhost")
	v.SetDefault("FORUM_ENABLE_TIMED_POSTS", true)
	v.SetDefault("FORUM_USER_MARKS_READ", false)
	v.SetDefault("FORUM_LONGPOST", 600)
	v.SetDefault("FORUM_SHORTPOST", 300)
	v.SetDefault("FORUM_DISPLAY_MODE", DisplayModeNested)
	v.SetDefault("FORUM_MAX_EDITING_TIME", "30m")
	v.SetDefault("FORUM_ENABLE_PORTFOLIOS", false)
	v.SetDefault("FORUM_TRACK_READING_POSTS", true)

	v.SetDefault("SUBMISSION_STORAGE_DIR", "./filedir")
	v.SetDefault("EXPORT_SIGNED_URL_SECRET", "dev_export_secret")
	v.SetDefault("EXPORT_SIGNED_URL_TTL", "30m")
	v.SetDefault("EXPORT_INCLUDE_PDF", true)

	v.SetDefault("ENABLE_SUMMARY_CACHE", false)
	v.SetDefault("SUMMARY_CACHE_TTL", "10m")
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

func positiveOr(value, fallback int) int {
	if value <= 0 {
		return fallback
	}
	return value
}

func isMissingFile(err error) bool {
	return errors.Is(err, os.ErrNotExist)
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
