package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"bgpiesa-backend/internal/infrastructure/database"
)

// Config holds the complete application configuration.
// Built once at startup by Load and passed by value/pointer to constructors;
// nothing mutates it afterwards.
type Config struct {
	App      AppConfig
	Database database.DBConfig
	Admin    AdminConfig
	JWT      JWTConfig
	CORS     CORSConfig
	Media    MediaConfig
	Storage  StorageConfig
	Redis    RedisConfig
}

type AppConfig struct {
	Name        string
	Environment string // development, production, test
	Port        string
	Version     string
	LogLevel    string
}

type AdminConfig struct {
	Password string // plain text or bcrypt hash ($2a$/$2b$/$2y$)
}

type JWTConfig struct {
	Secret            string
	Algorithm         string // HS256, HS384, HS512
	AccessTokenExpiry time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type MediaConfig struct {
	Root      string // local fallback directory for non-store pdf paths
	URLPrefix string // static mount point for Root
}

type StorageConfig struct {
	Driver         string // minio, memory
	PublicURL      string // base URL of managed assets; objects live below it
	MaxUploadBytes int64
	FetchTimeout   time.Duration // ceiling for proxying an asset through the server
	MinIO          MinIOConfig
}

type MinIOConfig struct {
	Endpoint  string // localhost:9000
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

type RedisConfig struct {
	Addr     string // empty disables the read cache
	Password string
	DB       int
	TTL      time.Duration
}

const (
	StorageDriverMinIO  = "minio"
	StorageDriverMemory = "memory"
)

// Load reads config from environment variables
func Load() (*Config, error) {
	dbConfig, err := LoadDatabaseConfig()
	if err != nil {
		return nil, err
	}

	fetchTimeout, err := getEnvDuration("ASSET_FETCH_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, err
	}
	cacheTTL, err := getEnvDuration("CACHE_TTL", 5*time.Minute)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "bgpiesa"),
			Environment: getEnv("APP_ENV", "development"),
			Port:        getEnv("APP_PORT", "8000"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
		},
		Database: *dbConfig,
		Admin: AdminConfig{
			Password: os.Getenv("ADMIN_PASSWORD"),
		},
		JWT: JWTConfig{
			Secret:            os.Getenv("JWT_SECRET"),
			Algorithm:         getEnv("JWT_ALGORITHM", "HS256"),
			AccessTokenExpiry: time.Duration(getEnvInt("ACCESS_TOKEN_EXPIRE_MINUTES", 60*12)) * time.Minute,
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvList("BACKEND_CORS_ORIGINS", []string{"*"}),
		},
		Media: MediaConfig{
			Root:      getEnv("MEDIA_ROOT", "media"),
			URLPrefix: getEnv("MEDIA_URL_PREFIX", "/media"),
		},
		Storage: StorageConfig{
			Driver:         strings.ToLower(getEnv("STORAGE_DRIVER", StorageDriverMinIO)),
			PublicURL:      strings.TrimRight(os.Getenv("STORAGE_PUBLIC_URL"), "/"),
			MaxUploadBytes: int64(getEnvInt("MAX_UPLOAD_MB", 50)) << 20,
			FetchTimeout:   fetchTimeout,
			MinIO: MinIOConfig{
				Endpoint:  getEnv("MINIO_ENDPOINT", "localhost:9000"),
				AccessKey: os.Getenv("MINIO_ACCESS_KEY"),
				SecretKey: os.Getenv("MINIO_SECRET_KEY"),
				Bucket:    getEnv("MINIO_BUCKET", "bgpiesa"),
				UseSSL:    getEnvBool("MINIO_USE_SSL", false),
			},
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       getEnvInt("REDIS_DB", 0),
			TTL:      cacheTTL,
		},
	}

	if cfg.Storage.PublicURL == "" {
		cfg.Storage.PublicURL = cfg.Storage.defaultPublicURL(cfg.App.Port)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// MemoryStorePath is where the router serves the in-memory store
const MemoryStorePath = "/store"

func (s StorageConfig) defaultPublicURL(port string) string {
	switch s.Driver {
	case StorageDriverMemory:
		return "http://localhost:" + port + MemoryStorePath
	default:
		scheme := "http"
		if s.MinIO.UseSSL {
			scheme = "https"
		}
		return fmt.Sprintf("%s://%s/%s", scheme, s.MinIO.Endpoint, s.MinIO.Bucket)
	}
}

// Validate checks required values. All problems are reported at once.
func (c *Config) Validate() error {
	var errs []error

	if c.Admin.Password == "" {
		errs = append(errs, errors.New("ADMIN_PASSWORD must be set"))
	}
	if c.JWT.Secret == "" {
		errs = append(errs, errors.New("JWT_SECRET must be set"))
	}
	switch c.JWT.Algorithm {
	case "HS256", "HS384", "HS512":
	default:
		errs = append(errs, fmt.Errorf("JWT_ALGORITHM %q is not supported", c.JWT.Algorithm))
	}
	if c.JWT.AccessTokenExpiry <= 0 {
		errs = append(errs, errors.New("ACCESS_TOKEN_EXPIRE_MINUTES must be positive"))
	}

	switch c.App.Environment {
	case "development", "production", "test":
	default:
		errs = append(errs, fmt.Errorf("APP_ENV %q is not one of development, production, test", c.App.Environment))
	}

	switch c.Storage.Driver {
	case StorageDriverMinIO:
		if c.Storage.MinIO.AccessKey == "" || c.Storage.MinIO.SecretKey == "" {
			errs = append(errs, errors.New("MINIO_ACCESS_KEY and MINIO_SECRET_KEY must be set"))
		}
	case StorageDriverMemory:
		if c.App.Environment == "production" {
			errs = append(errs, errors.New("STORAGE_DRIVER=memory is not allowed in production"))
		}
	default:
		errs = append(errs, fmt.Errorf("STORAGE_DRIVER %q is not supported", c.Storage.Driver))
	}

	if c.Database.URL == "" && c.Database.Host == "" {
		errs = append(errs, errors.New("DATABASE_URL or DB_HOST must be set"))
	}

	return errors.Join(errs...)
}

// IsProduction reports APP_ENV=production
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// Helper functions
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue, nil
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return value, nil
}

// getEnvList splits a comma separated value, dropping blanks
func getEnvList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if strings.TrimSpace(valueStr) == "" {
		return defaultValue
	}

	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
