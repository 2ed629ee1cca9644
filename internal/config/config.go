package config

import (
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds all configuration for the application.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	NewRelic NewRelicConfig `mapstructure:"newrelic"`
	Log      LogConfig      `mapstructure:"log"`
	Admin    AdminConfig    `mapstructure:"admin"`
	Surge    SurgeConfig    `mapstructure:"surge"`
	Zones    ZonesConfig    `mapstructure:"zones"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	CORSOrigins     []string      `mapstructure:"cors_origins"`
	ChatRateLimit   float64       `mapstructure:"chat_rate_limit"` // requests per second per client
	ChatBurst       int           `mapstructure:"chat_burst"`
	AdminRateLimit  float64       `mapstructure:"admin_rate_limit"` // zero disables the admin limiter
	AdminBurst      int           `mapstructure:"admin_burst"`
}

// DatabaseConfig holds ledger storage configuration. Driver is "sqlite" or
// "postgres"; the Postgres fields are ignored for SQLite.
type DatabaseConfig struct {
	Driver   string `mapstructure:"driver"`
	Path     string `mapstructure:"path"`
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

// RedisConfig holds Redis configuration.
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// NewRelicConfig holds New Relic configuration.
type NewRelicConfig struct {
	AppName    string `mapstructure:"app_name"`
	LicenseKey string `mapstructure:"license_key"`
	Enabled    bool   `mapstructure:"enabled"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "json" or "console"
}

// AdminConfig holds the incident admin gate. An empty password leaves the
// gate open.
type AdminConfig struct {
	Password string `mapstructure:"password"`
}

// SurgeConfig configures the weather snapshot.
type SurgeConfig struct {
	WeatherTTL time.Duration `mapstructure:"weather_ttl"`
	// Weather pins the weather label instead of sampling it.
	Weather string `mapstructure:"weather"`
	// Timezone is the IANA zone peak windows and the hub clock are read in.
	Timezone string `mapstructure:"timezone"`
}

// Location loads the configured timezone. An empty name is UTC.
func (c SurgeConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, eris.Wrapf(err, "config: unknown timezone %q", c.Timezone)
	}
	return loc, nil
}

// ZonesConfig points at an alternative zone table.
type ZonesConfig struct {
	Path string `mapstructure:"path"`
}

// Addr returns the listen address for the HTTP server.
func (c ServerConfig) Addr() string {
	return ":" + c.Port
}

// Load reads configuration from an optional bits.yaml in the working
// directory and BITS_* environment variables.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("bits")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("BITS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 10*time.Second)
	v.SetDefault("server.shutdown_timeout", 15*time.Second)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("server.chat_rate_limit", 2.0)
	v.SetDefault("server.chat_burst", 5)
	v.SetDefault("server.admin_rate_limit", 1.0)
	v.SetDefault("server.admin_burst", 10)
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "bits.db")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.dbname", "bits")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("newrelic.app_name", "bits")
	v.SetDefault("newrelic.license_key", "")
	v.SetDefault("newrelic.enabled", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("admin.password", "admin123")
	v.SetDefault("surge.weather_ttl", 5*time.Minute)
	v.SetDefault("surge.weather", "")
	v.SetDefault("surge.timezone", "Asia/Baghdad")
	v.SetDefault("zones.path", "")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	switch cfg.Database.Driver {
	case "sqlite", "postgres":
	default:
		return nil, eris.Errorf("config: unsupported database driver %q", cfg.Database.Driver)
	}
	if _, err := cfg.Surge.Location(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// InitLogger builds the zap logger described by cfg and installs it as the
// global logger.
func InitLogger(cfg LogConfig) (*zap.Logger, error) {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return logger, nil
}
