package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// MovingAveragePolicy controls whether a series gets MA5/MA20 columns.
// "auto" keeps the legacy behavior of inferring from the data (first hourly
// value above 1000); "always" and "never" are explicit overrides.
const (
	MovingAveragesAuto   = "auto"
	MovingAveragesAlways = "always"
	MovingAveragesNever  = "never"
)

type Config struct {
	Environment string          `mapstructure:"environment"`
	LogLevel    string          `mapstructure:"log_level"`
	Server      ServerConfig    `mapstructure:"server"`
	Cache       CacheConfig     `mapstructure:"cache"`
	Telemetry   TelemetryConfig `mapstructure:"telemetry"`
	Series      SeriesConfig    `mapstructure:"series"`
	Dashboard   DashboardConfig `mapstructure:"dashboard"`
}

type ServerConfig struct {
	Port         int    `mapstructure:"port"`
	ReadTimeout  string `mapstructure:"read_timeout"`
	WriteTimeout string `mapstructure:"write_timeout"`
}

type CacheConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	TTL      string `mapstructure:"ttl"`
}

type TelemetryConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	OTLPEndpoint   string `mapstructure:"otlp_endpoint"`
	ServiceName    string `mapstructure:"service_name"`
	ServiceVersion string `mapstructure:"service_version"`
}

type SeriesConfig struct {
	Primary   SeriesFileConfig `mapstructure:"primary"`
	Secondary SeriesFileConfig `mapstructure:"secondary"`
}

type SeriesFileConfig struct {
	Name           string `mapstructure:"name"`
	Path           string `mapstructure:"path"`
	Label          string `mapstructure:"label"`
	Currency       string `mapstructure:"currency"`
	MovingAverages string `mapstructure:"moving_averages"`
}

type DashboardConfig struct {
	TableLimit  int `mapstructure:"table_limit"`
	ChartHeight int `mapstructure:"chart_height"`
}

func Load() (*Config, error) {
	// Local .env is optional; real deployments set variables directly
	_ = godotenv.Load()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath(".")

	// Set default values
	setDefaults()

	// Enable environment variable support
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Bind specific environment variables
	if err := viper.BindEnv("cache.password", "REDIS_PASSWORD"); err != nil {
		return nil, fmt.Errorf("failed to bind REDIS_PASSWORD environment variable: %w", err)
	}

	// Read config file
	if err := viper.ReadInConfig(); err != nil {
		// Config file not found, use defaults and environment variables
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	// Normalize environment to lowercase for consistent comparison
	config.Environment = strings.ToLower(config.Environment)

	if err := config.validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server port must be between 1 and 65535, got %d", c.Server.Port)
	}
	for name, value := range map[string]string{
		"server.read_timeout":  c.Server.ReadTimeout,
		"server.write_timeout": c.Server.WriteTimeout,
		"cache.ttl":            c.Cache.TTL,
	} {
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid %s duration: %w", name, err)
		}
	}
	if c.Series.Primary.Path == "" {
		return fmt.Errorf("series.primary.path must be set")
	}
	if c.Series.Secondary.Path == "" {
		return fmt.Errorf("series.secondary.path must be set")
	}
	for _, series := range []*SeriesFileConfig{&c.Series.Primary, &c.Series.Secondary} {
		series.MovingAverages = strings.ToLower(series.MovingAverages)
		switch series.MovingAverages {
		case MovingAveragesAuto, MovingAveragesAlways, MovingAveragesNever:
		default:
			return fmt.Errorf("invalid moving_averages policy %q for series %s (want auto, always or never)",
				series.MovingAverages, series.Name)
		}
	}
	if c.Dashboard.TableLimit < 1 {
		return fmt.Errorf("dashboard.table_limit must be positive, got %d", c.Dashboard.TableLimit)
	}
	if c.Dashboard.ChartHeight < 1 {
		return fmt.Errorf("dashboard.chart_height must be positive, got %d", c.Dashboard.ChartHeight)
	}
	return nil
}

// ReadTimeoutDuration returns the parsed server read timeout.
func (c *Config) ReadTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Server.ReadTimeout)
	return d
}

// WriteTimeoutDuration returns the parsed server write timeout.
func (c *Config) WriteTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Server.WriteTimeout)
	return d
}

// CacheTTL returns the parsed snapshot cache TTL.
func (c *Config) CacheTTL() time.Duration {
	d, _ := time.ParseDuration(c.Cache.TTL)
	return d
}

func setDefaults() {
	// Environment
	viper.SetDefault("environment", "development")
	viper.SetDefault("log_level", "info")

	// Server
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", "10s")
	viper.SetDefault("server.write_timeout", "10s")

	// Snapshot cache
	viper.SetDefault("cache.enabled", false)
	viper.SetDefault("cache.host", "localhost")
	viper.SetDefault("cache.port", 6379)
	viper.SetDefault("cache.password", "")
	viper.SetDefault("cache.db", 0)
	viper.SetDefault("cache.ttl", "1h")

	// Telemetry
	viper.SetDefault("telemetry.enabled", false)
	viper.SetDefault("telemetry.otlp_endpoint", "")
	viper.SetDefault("telemetry.service_name", "marketboard")
	viper.SetDefault("telemetry.service_version", "dev")

	// Series inputs
	viper.SetDefault("series.primary.name", "SPX")
	viper.SetDefault("series.primary.path", "data/SPX.parquet")
	viper.SetDefault("series.primary.label", "SPX")
	viper.SetDefault("series.primary.currency", "$")
	viper.SetDefault("series.primary.moving_averages", MovingAveragesAuto)
	viper.SetDefault("series.secondary.name", "VIX")
	viper.SetDefault("series.secondary.path", "data/VIX4y.parquet")
	viper.SetDefault("series.secondary.label", "VIX")
	viper.SetDefault("series.secondary.currency", "")
	viper.SetDefault("series.secondary.moving_averages", MovingAveragesAuto)

	// Dashboard presentation
	viper.SetDefault("dashboard.table_limit", 50)
	viper.SetDefault("dashboard.chart_height", 700)
}
