package config

import (
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config holds all application configuration in a structured way.
type Config struct {
	App          AppConfig
	API          APIConfig
	Cache        CacheConfig
	Queue        QueueConfig
	Storage      StorageConfig
	Database     DatabaseConfig
	Valkey       ValkeyConfig
	Connectivity ConnectivityConfig
	Session      SessionConfig
}

type AppConfig struct {
	Version       string
	Port          string
	Debug         bool
	Environment   string
	LoginPath     string
	RedirectDelay time.Duration
}

type APIConfig struct {
	BaseURL       string
	Timeout       time.Duration
	BackupTimeout time.Duration
	AuthPrefix    string
}

type CacheConfig struct {
	KeyPrefix         string
	LongTTL           time.Duration
	ShortTTL          time.Duration
	CriticalEndpoints []string
	DedupeRefresh     bool
	RefreshTimeout    time.Duration
}

type QueueConfig struct {
	Key            string
	FailedKey      string
	AutoReplay     bool
	ReplayInterval time.Duration
}

type StorageConfig struct {
	Driver      string // memory, sqlite, postgres, gorm, valkey
	Path        string // SQLite file
	GormDialect string // sqlite or postgres
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
}

type ValkeyConfig struct {
	Address   string
	Password  string
	DB        int
	KeyPrefix string
}

type ConnectivityConfig struct {
	Mode          string // static or probe
	Online        bool
	ProbePath     string
	ProbeInterval time.Duration
	ProbeTimeout  time.Duration
}

type SessionConfig struct {
	Key string
}

// Global provides access to the loaded configuration for the CLI layer.
var Global *Config

// DefaultCriticalEndpoints are the reference collections that get long-TTL
// caching and canonical-alias fallback.
var DefaultCriticalEndpoints = []string{"/customers", "/services", "/discounts", "/stations"}

// LoadConfig loads configuration from a .env file (if present), environment
// variables, and defaults.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err == nil {
		logrus.Debug("[CONFIG] loaded .env file")
	}

	storages := getEnv("APP_BASE_DIR", "storages")

	cfg := &Config{
		App: AppConfig{
			Version:       "v1.4.0",
			Port:          getEnv("APP_PORT", "3100"),
			Debug:         getEnvBool("APP_DEBUG", false),
			Environment:   getEnv("APP_ENV", "development"),
			LoginPath:     getEnv("APP_LOGIN_PATH", "/login"),
			RedirectDelay: getEnvMs("APP_REDIRECT_DELAY_MS", 100*time.Millisecond),
		},
		API: APIConfig{
			BaseURL:       getEnv("API_BASE_URL", "http://localhost:5000/api"),
			Timeout:       getEnvMs("API_TIMEOUT_MS", 30*time.Second),
			BackupTimeout: getEnvMs("API_BACKUP_TIMEOUT_MS", 5*time.Minute),
			AuthPrefix:    getEnv("API_AUTH_PREFIX", "/auth"),
		},
		Cache: CacheConfig{
			KeyPrefix:         getEnv("CACHE_KEY_PREFIX", "api_cache_"),
			LongTTL:           getEnvMs("CACHE_LONG_TTL_MS", time.Hour),
			ShortTTL:          getEnvMs("CACHE_SHORT_TTL_MS", 5*time.Minute),
			CriticalEndpoints: getEnvList("CACHE_CRITICAL_ENDPOINTS", DefaultCriticalEndpoints),
			DedupeRefresh:     getEnvBool("CACHE_DEDUPE_REFRESH", false),
			RefreshTimeout:    getEnvMs("CACHE_REFRESH_TIMEOUT_MS", 30*time.Second),
		},
		Queue: QueueConfig{
			Key:            getEnv("QUEUE_KEY", "offline_queue"),
			FailedKey:      getEnv("QUEUE_FAILED_KEY", "offline_queue_failed"),
			AutoReplay:     getEnvBool("QUEUE_AUTO_REPLAY", true),
			ReplayInterval: getEnvMs("QUEUE_REPLAY_INTERVAL_MS", 30*time.Second),
		},
		Storage: StorageConfig{
			Driver:      getEnv("STORAGE_DRIVER", "sqlite"),
			Path:        getEnv("STORAGE_PATH", filepath.Join(storages, "laundry.db")),
			GormDialect: getEnv("STORAGE_GORM_DIALECT", "sqlite"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "laundry_client"),
		},
		Valkey: ValkeyConfig{
			Address:   getEnv("VALKEY_ADDRESS", "localhost:6379"),
			Password:  getEnv("VALKEY_PASSWORD", ""),
			DB:        getEnvInt("VALKEY_DB", 0),
			KeyPrefix: getEnv("VALKEY_KEY_PREFIX", "azlaundry:"),
		},
		Connectivity: ConnectivityConfig{
			Mode:          getEnv("CONNECTIVITY_MODE", "probe"),
			Online:        getEnvBool("CONNECTIVITY_ONLINE", true),
			ProbePath:     getEnv("CONNECTIVITY_PROBE_PATH", "/health"),
			ProbeInterval: getEnvMs("CONNECTIVITY_PROBE_INTERVAL_MS", 15*time.Second),
			ProbeTimeout:  getEnvMs("CONNECTIVITY_PROBE_TIMEOUT_MS", 3*time.Second),
		},
		Session: SessionConfig{
			Key: getEnv("SESSION_KEY", "auth_session"),
		},
	}

	Global = cfg
	return cfg, nil
}
