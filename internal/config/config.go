// Package config loads builder settings from a YAML file, a .env file and
// BUILDER_* environment variables, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"sitebuilder/internal/logging"
)

type Config struct {
	DataDir  string         `mapstructure:"data_dir"`
	Log      logging.Config `mapstructure:"log"`
	HTTP     HTTPConfig     `mapstructure:"http"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Autosave AutosaveConfig `mapstructure:"autosave"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Backup   BackupConfig   `mapstructure:"backup"`
	Catalog  CatalogConfig  `mapstructure:"catalog"`
}

type HTTPConfig struct {
	Addr            string        `mapstructure:"addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	LoginRate       float64       `mapstructure:"login_rate"` // requests per second per client
	LoginBurst      int           `mapstructure:"login_burst"`
}

// StorageConfig selects the persisted-state backend.
type StorageConfig struct {
	Driver   string `mapstructure:"driver"` // sqlite, postgres, mysql, mongodb, redis
	Path     string `mapstructure:"path"`   // sqlite file
	DSN      string `mapstructure:"dsn"`    // overrides the host fields below
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
	SSLMode  string `mapstructure:"ssl_mode"`
	RedisDB  int    `mapstructure:"redis_db"`
}

type AutosaveConfig struct {
	Delay time.Duration `mapstructure:"delay"`
}

type AuthConfig struct {
	Endpoint     string        `mapstructure:"endpoint"`
	Timeout      time.Duration `mapstructure:"timeout"`
	RedirectPath string        `mapstructure:"redirect_path"`
}

type BackupConfig struct {
	Schedule string `mapstructure:"schedule"` // cron spec; empty disables backups
	Dir      string `mapstructure:"dir"`
	Keep     int    `mapstructure:"keep"`
}

type CatalogConfig struct {
	OverridePath string `mapstructure:"override_path"`
	Watch        bool   `mapstructure:"watch"`
}

const envPrefix = "BUILDER"

// Load reads configuration. An explicit path must exist; without one,
// builder.yaml is looked up in the working directory and ./configs.
func Load(path string) (*Config, error) {
	loadEnvFile()

	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("builder")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.resolvePaths()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func loadEnvFile() {
	for _, p := range []string{".env", "../.env"} {
		if _, err := os.Stat(p); err == nil {
			_ = godotenv.Load(p)
			return
		}
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("data_dir", defaultDataDir())

	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)
	v.SetDefault("log.output_paths", []string{"stderr"})

	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.shutdown_timeout", 10*time.Second)
	v.SetDefault("http.login_rate", 1.0)
	v.SetDefault("http.login_burst", 5)

	v.SetDefault("storage.driver", "sqlite")
	v.SetDefault("storage.path", "")
	v.SetDefault("storage.dsn", "")
	v.SetDefault("storage.host", "localhost")
	v.SetDefault("storage.port", 0)
	v.SetDefault("storage.user", "")
	v.SetDefault("storage.password", "")
	v.SetDefault("storage.database", "sitebuilder")
	v.SetDefault("storage.ssl_mode", "")
	v.SetDefault("storage.redis_db", 0)

	v.SetDefault("autosave.delay", time.Second)

	v.SetDefault("auth.endpoint", "https://alltrades.ru/cp/?show=login&act=auth&key=")
	v.SetDefault("auth.timeout", 15*time.Second)
	v.SetDefault("auth.redirect_path", "/dashboard")

	v.SetDefault("backup.schedule", "@every 1h")
	v.SetDefault("backup.dir", "")
	v.SetDefault("backup.keep", 24)

	v.SetDefault("catalog.override_path", "")
	v.SetDefault("catalog.watch", true)
}

func defaultDataDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".sitebuilder"
	}
	return filepath.Join(homeDir, ".local", "share", "sitebuilder")
}

func (c *Config) resolvePaths() {
	if c.Storage.Path == "" {
		c.Storage.Path = filepath.Join(c.DataDir, "builder.db")
	}
	if c.Backup.Dir == "" {
		c.Backup.Dir = filepath.Join(c.DataDir, "backups")
	}
}

// Validate checks the fields the rest of the program relies on.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case "sqlite", "postgres", "mysql", "mongodb", "redis":
	default:
		return fmt.Errorf("unsupported storage driver: %q", c.Storage.Driver)
	}
	if c.Autosave.Delay <= 0 {
		return fmt.Errorf("autosave.delay must be positive, got %s", c.Autosave.Delay)
	}
	if c.Auth.Endpoint == "" {
		return errors.New("auth.endpoint is required")
	}
	if c.Auth.Timeout <= 0 {
		return fmt.Errorf("auth.timeout must be positive, got %s", c.Auth.Timeout)
	}
	if c.Backup.Keep < 0 {
		return fmt.Errorf("backup.keep must not be negative, got %d", c.Backup.Keep)
	}
	return nil
}
