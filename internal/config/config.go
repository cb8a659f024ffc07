package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

type DB struct {
	Driver          string `validate:"oneof=postgres pgx"`
	DbHOST          string `validate:"required"`
	DbPORT          string `validate:"required,numeric"`
	DbUSER          string `validate:"required"`
	DbPASSWORD      string
	DbNAME          string `validate:"required"`
	DbSSLMODE       string `validate:"oneof=disable allow prefer require verify-ca verify-full"`
	MaxOpenConns    int    `validate:"gte=1"`
	MaxIdleConns    int    `validate:"gte=0"`
	ConnMaxLifetime time.Duration
}

// DSN returns a keyword/value connection string understood by both lib/pq and pgx.
func (d DB) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.DbHOST,
		d.DbPORT,
		d.DbUSER,
		d.DbPASSWORD,
		d.DbNAME,
		d.DbSSLMODE,
	)
}

type Redis struct {
	Enabled  bool
	Addr     string `validate:"required_if=Enabled true"`
	Password string
	DB       int `validate:"gte=0"`
}

type MinIO struct {
	Enabled    bool
	Endpoint   string `validate:"required_if=Enabled true"`
	AccessKey  string
	SecretKey  string
	BucketName string `validate:"required_if=Enabled true"`
	UseSSL     bool
	Region     string
}

// Report holds the limits and windows used by the report assemblers.
type Report struct {
	DashboardLimit      int           `validate:"gte=1"`
	SidebarTags         int           `validate:"gte=1,lte=10"`
	SidebarRecentPosts  int           `validate:"gte=1,lte=5"`
	ActiveUsersWindow   time.Duration `validate:"gt=0"`
	PopularPostsWindow  time.Duration `validate:"gt=0"`
	MinApprovedComments int           `validate:"gte=0"`
	RecentCommentsLimit int           `validate:"gte=1"`
}

type Batch struct {
	Size    int           `validate:"gte=1"`
	Timeout time.Duration `validate:"gt=0"`
}

type Cache struct {
	SidebarTTL time.Duration `validate:"gte=0"`
}

type Config struct {
	DB           DB
	Redis        Redis
	MinIO        MinIO
	Report       Report
	Batch        Batch
	Cache        Cache
	QueryTimeout time.Duration `validate:"gt=0"`
	LogLevel     string        `validate:"oneof=trace debug info warn warning error"`
	LogFormat    string        `validate:"oneof=json text"`
	MetricsAddr  string
}

func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return fallback
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func LoadDB() DB {
	return DB{
		Driver:          getEnv("DB_DRIVER", "postgres"),
		DbHOST:          getEnv("DB_HOST", "localhost"),
		DbPORT:          getEnv("DB_PORT", "5432"),
		DbUSER:          getEnv("DB_USER", "postgres"),
		DbPASSWORD:      getEnv("DB_PASSWORD", "password"),
		DbNAME:          getEnv("DB_NAME", "blog"),
		DbSSLMODE:       getEnv("DB_SSLMODE", "disable"),
		MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
		MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
		ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
	}
}

func LoadRedis() Redis {
	return Redis{
		Enabled:  getEnvBool("REDIS_ENABLED", false),
		Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       getEnvAsInt("REDIS_DB", 0),
	}
}

func LoadMinIO() MinIO {
	return MinIO{
		Enabled:    getEnvBool("MINIO_ENABLED", false),
		Endpoint:   getEnv("MINIO_ENDPOINT", "localhost:9000"),
		AccessKey:  getEnv("MINIO_ACCESS_KEY", "minioadmin"),
		SecretKey:  getEnv("MINIO_SECRET_KEY", "minioadmin"),
		BucketName: getEnv("MINIO_BUCKET_NAME", "exports"),
		UseSSL:     getEnvBool("MINIO_USE_SSL", false),
		Region:     getEnv("MINIO_REGION", "us-east-1"),
	}
}

func LoadReport() Report {
	return Report{
		DashboardLimit:      getEnvAsInt("REPORT_DASHBOARD_LIMIT", 10),
		SidebarTags:         getEnvAsInt("REPORT_SIDEBAR_TAGS", 10),
		SidebarRecentPosts:  getEnvAsInt("REPORT_SIDEBAR_RECENT_POSTS", 5),
		ActiveUsersWindow:   getEnvDuration("REPORT_ACTIVE_USERS_WINDOW", 7*24*time.Hour),
		PopularPostsWindow:  getEnvDuration("REPORT_POPULAR_POSTS_WINDOW", 30*24*time.Hour),
		MinApprovedComments: getEnvAsInt("REPORT_MIN_APPROVED_COMMENTS", 2),
		RecentCommentsLimit: getEnvAsInt("REPORT_RECENT_COMMENTS_LIMIT", 3),
	}
}

// LoadConfig reads the optional env files (".env" when none are given) and builds the config.
func LoadConfig(envFiles ...string) *Config {
	if err := godotenv.Load(envFiles...); err != nil {
		log.Debug("env file not found, using environment variables")
	}

	return &Config{
		DB:     LoadDB(),
		Redis:  LoadRedis(),
		MinIO:  LoadMinIO(),
		Report: LoadReport(),
		Batch: Batch{
			Size:    getEnvAsInt("BATCH_SIZE", 1000),
			Timeout: getEnvDuration("BATCH_TIMEOUT", 30*time.Minute),
		},
		Cache: Cache{
			SidebarTTL: getEnvDuration("CACHE_SIDEBAR_TTL", 5*time.Minute),
		},
		QueryTimeout: getEnvDuration("QUERY_TIMEOUT", 30*time.Second),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		LogFormat:    getEnv("LOG_FORMAT", "text"),
		MetricsAddr:  getEnv("METRICS_ADDR", ""),
	}
}

func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
