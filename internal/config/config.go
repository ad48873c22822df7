package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tschickel22/PLATFORM-DMS-CRM-7-11-25-sub001/internal/mergefields"
)

type Config struct {
	HTTPAddr        string        `yaml:"httpAddr"`
	Store           string        `yaml:"store"`
	DataDir         string        `yaml:"dataDir"`
	RedisAddr       string        `yaml:"redisAddr"`
	RedisPassword   string        `yaml:"redisPassword"`
	RedisDB         int           `yaml:"redisDB"`
	DatabaseURL     string        `yaml:"databaseURL"`
	JWTSecret       string        `yaml:"jwtSecret"`
	AdminEmail      string        `yaml:"adminEmail"`
	AdminPass       string        `yaml:"adminPass"`
	AdminTenant     string        `yaml:"adminTenant"`
	GELFAddr        string        `yaml:"gelfAddr"`
	LogLevel        string        `yaml:"logLevel"`
	LogFormat       string        `yaml:"logFormat"`
	EventsStream    string        `yaml:"eventsStream"`
	DocumentRoot    string        `yaml:"documentRoot"`
	DocumentTimeout time.Duration `yaml:"documentTimeout"`

	// DocumentHosts allow-lists remote document hosts; empty disables
	// http(s) sources.
	DocumentHosts    []string `yaml:"documentHosts"`
	DocumentMaxBytes int      `yaml:"documentMaxBytes"`

	// CustomMergeFields seed every editor session's registry.
	CustomMergeFields []mergefields.MergeField `yaml:"customMergeFields"`
}

const (
	StoreMemory   = "memory"
	StoreJSON     = "json"
	StoreRedis    = "redis"
	StorePostgres = "postgres"
)

// Load reads the environment and, when DMS_CONFIG_FILE is set, overlays the
// YAML file on top of it.
func Load() (*Config, error) {
	cfg := &Config{
		HTTPAddr:        getEnv("DMS_ADDR", ":8080"),
		Store:           getEnv("DMS_STORE", StoreMemory),
		DataDir:         getEnv("DMS_DATA_DIR", "./data/templates"),
		RedisAddr:       getEnv("REDIS_ADDR", "127.0.0.1:6379"),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		RedisDB:         getEnvInt("REDIS_DB", 0),
		DatabaseURL:     getEnv("DATABASE_URL", ""),
		JWTSecret:       getEnv("DMS_JWT_SECRET", "dms-dev-secret-change-me"),
		AdminEmail:      getEnv("DMS_ADMIN_EMAIL", "admin@dms.local"),
		AdminPass:       getEnv("DMS_ADMIN_PASS", "admin123"),
		AdminTenant:     getEnv("DMS_ADMIN_TENANT", "default"),
		GELFAddr:        getEnv("DMS_GELF_ADDR", ""),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogFormat:       getEnv("LOG_FORMAT", "json"),
		EventsStream:    getEnv("DMS_EVENTS_STREAM", ""),
		DocumentRoot:    getEnv("DMS_DOCUMENT_ROOT", "./data/documents"),
		DocumentTimeout: getEnvDuration("DMS_DOCUMENT_TIMEOUT", 30*time.Second),

		DocumentHosts:    getEnvList("DMS_DOCUMENT_HOSTS"),
		DocumentMaxBytes: getEnvInt("DMS_DOCUMENT_MAX_BYTES", 25<<20),
	}

	if path := os.Getenv("DMS_CONFIG_FILE"); path != "" {
		if err := cfg.overlay(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) overlay(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) validate() error {
	switch c.Store {
	case StoreMemory, StoreJSON, StoreRedis:
	case StorePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the %s store", StorePostgres)
		}
	default:
		return fmt.Errorf("unknown store %q", c.Store)
	}
	for _, f := range c.CustomMergeFields {
		if !mergefields.ValidKey(f.Key) {
			return fmt.Errorf("custom merge field %q: key must match [A-Za-z0-9_]+", f.Key)
		}
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvList(key string) []string {
	var out []string
	for _, v := range strings.Split(os.Getenv(key), ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
