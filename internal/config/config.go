package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type BotConfig struct {
	Token         string `yaml:"token"`
	AdminID       int64  `yaml:"admin_id"`
	AdminUsername string `yaml:"admin_username"`
	Name          string `yaml:"name"`
	Workers       int    `yaml:"workers"` // polling workers
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type StorageConfig struct {
	Driver string `yaml:"driver"` // file | redis | postgres
	Dir    string `yaml:"dir"`    // file driver
}

type DatabaseConfig struct {
	URL      string `yaml:"url"`
	MaxConns int32  `yaml:"max_conns"`
}

type RedisConfig struct {
	URL      string `yaml:"url"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix"`
}

type AdminConfig struct {
	Port      int           `yaml:"port"` // 0 disables the admin HTTP API
	APIKey    string        `yaml:"api_key"`
	JWTSecret string        `yaml:"jwt_secret"`
	TokenTTL  time.Duration `yaml:"token_ttl"`
}

type BroadcastConfig struct {
	Workers    int `yaml:"workers"`
	RatePerSec int `yaml:"rate_per_sec"`
}

type Config struct {
	Bot       BotConfig       `yaml:"bot"`
	Log       LogConfig       `yaml:"log"`
	Storage   StorageConfig   `yaml:"storage"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Admin     AdminConfig     `yaml:"admin"`
	Broadcast BroadcastConfig `yaml:"broadcast"`

	Runtime RuntimeConfig `yaml:"-"`
}

// envOverrides are read after the YAML file; set variables win.
type envOverrides struct {
	BotToken      string `envconfig:"BOT_TOKEN"`
	AdminID       int64  `envconfig:"ADMIN_ID"`
	AdminUsername string `envconfig:"ADMIN_USERNAME"`
	DataDir       string `envconfig:"DATA_DIR"`
	StorageDriver string `envconfig:"STORAGE_DRIVER"`
	DatabaseURL   string `envconfig:"DATABASE_URL"`
	RedisURL      string `envconfig:"REDIS_URL"`
	LogLevel      string `envconfig:"LOG_LEVEL"`
	AdminAPIKey   string `envconfig:"ADMIN_API_KEY"`
	AdminJWT      string `envconfig:"ADMIN_JWT_SECRET"`
}

// LoadConfig reads the YAML file at path (a missing file is fine), applies
// environment overrides and defaults, then validates.
func LoadConfig(path string, dev bool) (*Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	case errors.Is(err, fs.ErrNotExist):
		// environment-only deployment
	default:
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.Runtime.Dev = dev
	return &cfg, nil
}

func applyEnv(cfg *Config) error {
	var env envOverrides
	if err := envconfig.Process("", &env); err != nil {
		return fmt.Errorf("environment: %w", err)
	}
	if env.BotToken != "" {
		cfg.Bot.Token = env.BotToken
	}
	if env.AdminID != 0 {
		cfg.Bot.AdminID = env.AdminID
	}
	if env.AdminUsername != "" {
		cfg.Bot.AdminUsername = env.AdminUsername
	}
	if env.DataDir != "" {
		cfg.Storage.Dir = env.DataDir
	}
	if env.StorageDriver != "" {
		cfg.Storage.Driver = env.StorageDriver
	}
	if env.DatabaseURL != "" {
		cfg.Database.URL = env.DatabaseURL
	}
	if env.RedisURL != "" {
		cfg.Redis.URL = env.RedisURL
	}
	if env.LogLevel != "" {
		cfg.Log.Level = env.LogLevel
	}
	if env.AdminAPIKey != "" {
		cfg.Admin.APIKey = env.AdminAPIKey
	}
	if env.AdminJWT != "" {
		cfg.Admin.JWTSecret = env.AdminJWT
	}
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.Bot.Workers <= 0 {
		cfg.Bot.Workers = 4
	}
	if cfg.Bot.Name == "" {
		cfg.Bot.Name = "Giveaway Bot"
	}
	cfg.Bot.AdminUsername = strings.TrimPrefix(strings.TrimSpace(cfg.Bot.AdminUsername), "@")
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	cfg.Storage.Driver = strings.ToLower(strings.TrimSpace(cfg.Storage.Driver))
	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = "file"
	}
	if cfg.Storage.Dir == "" {
		cfg.Storage.Dir = "/app/data"
	}
	if cfg.Database.MaxConns <= 0 {
		cfg.Database.MaxConns = 4
	}
	if cfg.Redis.Prefix == "" {
		cfg.Redis.Prefix = "giveaway:doc:"
	}
	if cfg.Admin.TokenTTL <= 0 {
		cfg.Admin.TokenTTL = 30 * time.Minute
	}
	if cfg.Broadcast.Workers <= 0 {
		cfg.Broadcast.Workers = 4
	}
	if cfg.Broadcast.RatePerSec <= 0 {
		cfg.Broadcast.RatePerSec = 25
	}
}

// Validate enforces the two required values and a usable storage driver.
func (c *Config) Validate() error {
	if c.Bot.Token == "" {
		return errors.New("bot.token (BOT_TOKEN) is required")
	}
	if c.Bot.AdminID == 0 {
		return errors.New("bot.admin_id (ADMIN_ID) is required")
	}
	switch c.Storage.Driver {
	case "file":
		if c.Storage.Dir == "" {
			return errors.New("storage.dir is required for the file driver")
		}
	case "redis":
		if c.Redis.URL == "" {
			return errors.New("redis.url is required for the redis driver")
		}
	case "postgres":
		if c.Database.URL == "" {
			return errors.New("database.url is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unknown storage.driver %q", c.Storage.Driver)
	}
	if c.Admin.Port > 0 && (c.Admin.APIKey == "" || c.Admin.JWTSecret == "") {
		return errors.New("admin.api_key and admin.jwt_secret are required when admin.port is set")
	}
	return nil
}
