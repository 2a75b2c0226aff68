// Package config loads application configuration and installs the global logger.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Dataset DatasetConfig `yaml:"dataset" mapstructure:"dataset"`
	Geocode GeocodeConfig `yaml:"geocode" mapstructure:"geocode"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// DatasetConfig configures the GeoNames dataset cache.
type DatasetConfig struct {
	// CacheDir overrides the platform cache directory. Empty means the
	// per-user default is resolved at startup.
	CacheDir     string `yaml:"cache_dir" mapstructure:"cache_dir"`
	ArchiveURL   string `yaml:"archive_url" mapstructure:"archive_url"`
	ArchiveName  string `yaml:"archive_name" mapstructure:"archive_name"`
	FlatFileName string `yaml:"flat_file_name" mapstructure:"flat_file_name"`
	MaxAgeDays   int    `yaml:"max_age_days" mapstructure:"max_age_days"`
	TimeoutSecs  int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	UserAgent    string `yaml:"user_agent" mapstructure:"user_agent"`
}

// GeocodeConfig configures the Nominatim reverse-geocoding client.
type GeocodeConfig struct {
	BaseURL     string `yaml:"base_url" mapstructure:"base_url"`
	UserAgent   string `yaml:"user_agent" mapstructure:"user_agent"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxAttempts int    `yaml:"max_attempts" mapstructure:"max_attempts"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("ZIPLOOKUP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("dataset.archive_url", "https://download.geonames.org/export/zip/US.zip")
	v.SetDefault("dataset.archive_name", "US.zip")
	v.SetDefault("dataset.flat_file_name", "US.txt")
	v.SetDefault("dataset.max_age_days", 180)
	v.SetDefault("dataset.timeout_secs", 60)
	v.SetDefault("dataset.user_agent", "ziplookup/1.0")
	v.SetDefault("geocode.base_url", "https://nominatim.openstreetmap.org/reverse")
	v.SetDefault("geocode.user_agent", "ziplookup/1.0")
	v.SetDefault("geocode.timeout_secs", 30)
	v.SetDefault("geocode.max_attempts", 3)
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "console")

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

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
