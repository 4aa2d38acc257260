package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	envPrefix = "TRINITY"

	// DefaultSessionSigningKey is the development key shipped in config.yml.
	DefaultSessionSigningKey = "change-me-in-production"

	productionEnvironment = "production"
)

var (
	ErrInsecureSigningKey = errors.New("api.session_signing_key must be set to a private value in production")
	ErrInvalidProxy       = errors.New("api.trusted_proxies entry is neither an IP nor a CIDR")
)

type AppConfig struct {
	API        *APIConfig        `mapstructure:"api"`
	Gin        *GinConfig        `mapstructure:"gin"`
	Database   *DatabaseConfig   `mapstructure:"database"`
	Pagination *PaginationConfig `mapstructure:"pagination"`
}

type APIConfig struct {
	Environment        string        `mapstructure:"environment"`
	Port               string        `mapstructure:"port"`
	BaseURL            string        `mapstructure:"base_url"`
	AllowedCORSDomains []string      `mapstructure:"allowed_cors_domains"`
	// TrustedProxies may set X-Forwarded-For. Empty means the peer address
	// is the client address.
	TrustedProxies     []string      `mapstructure:"trusted_proxies"`
	SessionSigningKey  string        `mapstructure:"session_signing_key"`
	SessionTTL         time.Duration `mapstructure:"session_ttl"`
	SecureCookies      bool          `mapstructure:"secure_cookies"`
	LogLevel           string        `mapstructure:"log_level"`
	AuthRateLimit      float64       `mapstructure:"auth_rate_limit"`
	AuthRateBurst      int           `mapstructure:"auth_rate_burst"`
	ShutdownTimeout    time.Duration `mapstructure:"shutdown_timeout"`
}

type GinConfig struct {
	Mode string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	// Driver is either "postgres" or "sqlite".
	Driver       string          `mapstructure:"driver"`
	SQLitePath   string          `mapstructure:"sqlite_path"`
	Postgres     *PostgresConfig `mapstructure:"postgres"`
	MaxIdleConns int             `mapstructure:"max_idle_conns"`
	MaxOpenConns int             `mapstructure:"max_open_conns"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"db_name"`
	SSLMode  string `mapstructure:"ssl_mode"`
}

type PaginationConfig struct {
	CardPerPage   int `mapstructure:"card_per_page"`
	TablePerPage  int `mapstructure:"table_per_page"`
	APIPerPage    int `mapstructure:"api_per_page"`
	APIMaxPerPage int `mapstructure:"api_max_per_page"`
}

// Load reads the YAML file at path, applies TRINITY_* environment overrides
// and fills every missing key with its default. A missing file is not an
// error. A production config still carrying the development signing key is.
func Load(path string) (*AppConfig, error) {
	v := newViper(path)
	if err := readInConfig(v); err != nil {
		return nil, err
	}

	conf, err := decode(v)
	if err != nil {
		return nil, err
	}
	if err = conf.validate(); err != nil {
		return nil, err
	}

	return conf, nil
}

// Watch calls onChange with the re-decoded config every time the file at
// path is written.
func Watch(path string, onChange func(fsnotify.Event, *AppConfig)) error {
	v := newViper(path)
	if err := readInConfig(v); err != nil {
		return err
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		conf, err := decode(v)
		if err != nil {
			zap.L().Warn("ignoring unreadable config", zap.String("file", e.Name), zap.Error(err))
			return
		}
		onChange(e, conf)
	})
	v.WatchConfig()

	return nil
}

func newViper(path string) *viper.Viper {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	return v
}

func readInConfig(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist) {
			return nil
		}

		return fmt.Errorf("v.ReadInConfig -> %w", err)
	}

	return nil
}

func decode(v *viper.Viper) (*AppConfig, error) {
	conf := &AppConfig{}
	if err := v.Unmarshal(conf); err != nil {
		return nil, fmt.Errorf("v.Unmarshal -> %w", err)
	}

	return conf, nil
}

func (c *AppConfig) validate() error {
	if c.API.Environment == productionEnvironment {
		if key := strings.TrimSpace(c.API.SessionSigningKey); key == "" || key == DefaultSessionSigningKey {
			return ErrInsecureSigningKey
		}
	}

	for _, proxy := range c.API.TrustedProxies {
		if net.ParseIP(proxy) != nil {
			continue
		}
		if _, _, err := net.ParseCIDR(proxy); err != nil {
			return fmt.Errorf("%w: %q", ErrInvalidProxy, proxy)
		}
	}

	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.environment", "development")
	v.SetDefault("api.port", "5002")
	v.SetDefault("api.base_url", "localhost:5002")
	v.SetDefault("api.allowed_cors_domains", []string{"http://localhost:5002"})
	v.SetDefault("api.trusted_proxies", []string{})
	v.SetDefault("api.session_signing_key", DefaultSessionSigningKey)
	v.SetDefault("api.session_ttl", 7*24*time.Hour)
	v.SetDefault("api.secure_cookies", false)
	v.SetDefault("api.log_level", "info")
	v.SetDefault("api.auth_rate_limit", 1.0)
	v.SetDefault("api.auth_rate_burst", 10)
	v.SetDefault("api.shutdown_timeout", 5*time.Second)

	v.SetDefault("gin.mode", "release")

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.sqlite_path", "database.db")
	v.SetDefault("database.postgres.host", "localhost")
	v.SetDefault("database.postgres.port", "5432")
	v.SetDefault("database.postgres.user", "postgres")
	v.SetDefault("database.postgres.password", "")
	v.SetDefault("database.postgres.db_name", "impossible_trinity")
	v.SetDefault("database.postgres.ssl_mode", "disable")
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.max_open_conns", 100)

	v.SetDefault("pagination.card_per_page", 12)
	v.SetDefault("pagination.table_per_page", 20)
	v.SetDefault("pagination.api_per_page", 12)
	v.SetDefault("pagination.api_max_per_page", 100)
}
