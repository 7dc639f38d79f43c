// Package config loads runtime settings from an optional config file and
// BPEARL_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/banshee-data/bpearl/internal/lidar/l1packets"
	"github.com/banshee-data/bpearl/internal/lidar/parse"
)

// EnvPrefix is prepended to environment overrides, e.g. BPEARL_MSOP_PORT.
const EnvPrefix = "BPEARL"

// Config holds all runtime settings.
type Config struct {
	SensorModel string `mapstructure:"sensor_model"`
	// SensorID labels stored telemetry; defaults to the reported serial.
	SensorID string `mapstructure:"sensor_id"`

	UDPAddr     string        `mapstructure:"udp_addr"`
	MSOPPort    int           `mapstructure:"msop_port"`
	DIFOPPort   int           `mapstructure:"difop_port"`
	RcvBuf      int           `mapstructure:"rcvbuf"`
	LogInterval time.Duration `mapstructure:"log_interval"`

	FallbackReturnMode string  `mapstructure:"fallback_return_mode"`
	TimestampMode      string  `mapstructure:"timestamp_mode"`
	MinRange           float64 `mapstructure:"min_range"` // meters, 0 = model default
	MaxRange           float64 `mapstructure:"max_range"`

	DBPath            string        `mapstructure:"db_path"` // empty disables persistence
	TelemetryInterval time.Duration `mapstructure:"telemetry_interval"`

	Log LogConfig `mapstructure:"log"`
}

// LogConfig enables the optional log streams. The ops stream is always on.
type LogConfig struct {
	Diag  bool `mapstructure:"diag"`
	Trace bool `mapstructure:"trace"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("sensor_model", "bpearl_v4")
	v.SetDefault("sensor_id", "")
	v.SetDefault("udp_addr", "")
	v.SetDefault("msop_port", 6699)
	v.SetDefault("difop_port", 7788)
	v.SetDefault("rcvbuf", 4<<20)
	v.SetDefault("log_interval", time.Minute)
	v.SetDefault("fallback_return_mode", "strongest")
	v.SetDefault("timestamp_mode", "device")
	v.SetDefault("min_range", 0.0)
	v.SetDefault("max_range", 0.0)
	v.SetDefault("db_path", "bpearl.db")
	v.SetDefault("telemetry_interval", 10*time.Minute)
	v.SetDefault("log.diag", true)
	v.SetDefault("log.trace", false)
}

// Default returns the built-in configuration.
func Default() *Config {
	cfg, err := load(viper.New(), "")
	if err != nil {
		panic(err) // defaults are static and always valid
	}
	return cfg
}

// Load reads configFile if given, otherwise searches for bpearl.{yaml,json,toml}
// in the working directory and /etc/bpearl. A missing search-path file is not
// an error; a missing explicit file is.
func Load(configFile string) (*Config, error) {
	v := viper.New()
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("bpearl")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/bpearl")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}
	return load(v, configFile)
}

func load(v *viper.Viper, source string) (*Config, error) {
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config %s: %w", source, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// Validate checks value ranges and enumerations.
func (c *Config) Validate() error {
	var errs []error

	format, err := parse.LookupSensorFormat(c.SensorModel)
	if err != nil {
		errs = append(errs, err)
	}
	if err := validPort("msop_port", c.MSOPPort); err != nil {
		errs = append(errs, err)
	}
	if err := validPort("difop_port", c.DIFOPPort); err != nil {
		errs = append(errs, err)
	}
	if c.MSOPPort == c.DIFOPPort {
		errs = append(errs, fmt.Errorf("msop_port and difop_port must differ (both %d)", c.MSOPPort))
	}
	if c.RcvBuf < 0 {
		errs = append(errs, fmt.Errorf("rcvbuf must not be negative, got %d", c.RcvBuf))
	}
	if c.LogInterval < 0 {
		errs = append(errs, fmt.Errorf("log_interval must not be negative, got %s", c.LogInterval))
	}
	if c.TelemetryInterval < 0 {
		errs = append(errs, fmt.Errorf("telemetry_interval must not be negative, got %s", c.TelemetryInterval))
	}
	if _, err := c.ReturnMode(); err != nil {
		errs = append(errs, err)
	}
	if _, err := l1packets.ParseTimestampMode(c.TimestampMode); err != nil {
		errs = append(errs, err)
	}
	if c.MinRange < 0 || c.MaxRange < 0 {
		errs = append(errs, fmt.Errorf("min_range and max_range must not be negative"))
	}
	maxRange := c.MaxRange
	if maxRange <= 0 && format != nil {
		maxRange = format.MaxRange()
	}
	if maxRange > 0 && c.MinRange >= maxRange {
		errs = append(errs, fmt.Errorf("min_range %.3f must be below max_range %.3f", c.MinRange, maxRange))
	}

	return errors.Join(errs...)
}

// ReturnMode parses FallbackReturnMode.
func (c *Config) ReturnMode() (parse.ReturnMode, error) {
	m, err := parse.ParseReturnMode(c.FallbackReturnMode)
	if err != nil {
		return m, fmt.Errorf("fallback_return_mode: %w", err)
	}
	return m, nil
}

// DecoderConfig translates the settings into l1packets.DecoderConfig. The
// config must have passed Validate.
func (c *Config) DecoderConfig() l1packets.DecoderConfig {
	mode, _ := c.ReturnMode()
	ts, _ := l1packets.ParseTimestampMode(c.TimestampMode)
	return l1packets.DecoderConfig{
		FallbackReturnMode: mode,
		TimestampMode:      ts,
		MinRange:           c.MinRange,
		MaxRange:           c.MaxRange,
	}
}

func validPort(name string, port int) error {
	if port < 1 || port > 65535 {
		return fmt.Errorf("%s must be in 1..65535, got %d", name, port)
	}
	return nil
}
