// Package config loads application configuration from file and environment
// and installs the global logger.
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
	Addresses AddressConfig `yaml:"addresses" mapstructure:"addresses"`
	Rules     RulesConfig   `yaml:"rules" mapstructure:"rules"`
	Merge     MergeConfig   `yaml:"merge" mapstructure:"merge"`
	Lookup    LookupConfig  `yaml:"lookup" mapstructure:"lookup"`
	Mapping   MappingConfig `yaml:"mapping" mapstructure:"mapping"`
	Report    ReportConfig  `yaml:"report" mapstructure:"report"`
	Server    ServerConfig  `yaml:"server" mapstructure:"server"`
	Log       LogConfig     `yaml:"log" mapstructure:"log"`
}

// AddressConfig holds the key addresses trips are classified against.
type AddressConfig struct {
	Home string `yaml:"home" mapstructure:"home"`
	Work string `yaml:"work" mapstructure:"work"`
}

// RulesConfig tunes the categorization decision list.
type RulesConfig struct {
	BusinessDistanceThreshold float64  `yaml:"business_distance_threshold" mapstructure:"business_distance_threshold"`
	RemoteLeisureName         string   `yaml:"remote_leisure_name" mapstructure:"remote_leisure_name"`
	RemoteLeisureKeywords     []string `yaml:"remote_leisure_keywords" mapstructure:"remote_leisure_keywords"`
	LocalMetroKeywords        []string `yaml:"local_metro_keywords" mapstructure:"local_metro_keywords"`
	ZonesFile                 string   `yaml:"zones_file" mapstructure:"zones_file"`
}

// MergeConfig tunes the stop merger and micro-trip flagger.
type MergeConfig struct {
	MaxGapMinutes    float64 `yaml:"max_gap_minutes" mapstructure:"max_gap_minutes"`
	MaxStopDistance  float64 `yaml:"max_stop_distance" mapstructure:"max_stop_distance"`
	MicroMaxDistance float64 `yaml:"micro_max_distance" mapstructure:"micro_max_distance"`
}

// LookupConfig configures live business resolution.
type LookupConfig struct {
	Enabled            bool   `yaml:"enabled" mapstructure:"enabled"`
	PlacesAPIKey       string `yaml:"places_api_key" mapstructure:"places_api_key"`
	PlacesBaseURL      string `yaml:"places_base_url" mapstructure:"places_base_url"`
	NominatimBaseURL   string `yaml:"nominatim_base_url" mapstructure:"nominatim_base_url"`
	NominatimUserAgent string `yaml:"nominatim_user_agent" mapstructure:"nominatim_user_agent"`
}

// MappingConfig configures the business mapping store backend.
type MappingConfig struct {
	Driver string `yaml:"driver" mapstructure:"driver"` // "file" or "sqlite"
	Path   string `yaml:"path" mapstructure:"path"`
}

// ReportConfig configures report output.
type ReportConfig struct {
	Dir string `yaml:"dir" mapstructure:"dir"`
}

// ServerConfig configures the HTTP surface for GUI embeddings.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
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
	v.SetEnvPrefix("MILEAGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("addresses.home", "15815 61st Ln NE, Kenmore")
	v.SetDefault("addresses.work", "9227 NE 180th St, Bothell")
	v.SetDefault("rules.business_distance_threshold", 8.0)
	v.SetDefault("rules.remote_leisure_name", "Whidbey")
	v.SetDefault("rules.remote_leisure_keywords", []string{"Coupeville", "Oak Harbor", "Clinton", "Whidbey"})
	v.SetDefault("rules.local_metro_keywords", []string{"bothell", "kenmore"})
	v.SetDefault("merge.max_gap_minutes", 3.0)
	v.SetDefault("merge.max_stop_distance", 0.2)
	v.SetDefault("merge.micro_max_distance", 0.15)
	v.SetDefault("lookup.enabled", false)
	v.SetDefault("lookup.nominatim_base_url", "https://nominatim.openstreetmap.org")
	v.SetDefault("lookup.nominatim_user_agent", "dewart_mileage_tracker")
	v.SetDefault("mapping.driver", "file")
	v.SetDefault("mapping.path", "business_mapping.json")
	v.SetDefault("report.dir", ".")
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

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
