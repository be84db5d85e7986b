// Package config loads alhost's static configuration from built-in
// defaults, a YAML file, and ALHOST_-prefixed environment variables, in
// that order of increasing precedence, following the teacher's
// viper+mapstructure+validator idiom.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config is the complete static configuration for an alhost process.
//
// Dynamic state -- registered threads, semaphores, queues, timers,
// connections -- lives in memory inside pkg/osal/pkg/ipclient/
// pkg/ipserver and is reachable only through pkg/osal/api and
// pkg/status, never through this struct.
//
// Configuration sources (in order of precedence):
//  1. Environment variables (ALHOST_*)
//  2. Configuration file (YAML)
//  3. Default values (lowest priority)
type Config struct {
	// Logging controls log output behavior.
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`

	// Telemetry controls OpenTelemetry distributed tracing of
	// ipclient/ipserver serialise-and-wait calls.
	Telemetry TelemetryConfig `mapstructure:"telemetry" yaml:"telemetry"`

	// ShutdownTimeout is the maximum time to wait for the event-queue
	// worker goroutines to drain before a forced exit.
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"required,gt=0" yaml:"shutdown_timeout"`

	// Metrics contains Prometheus metrics server configuration.
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`

	// OsalAPI contains the read-only OS-capability admin HTTP server
	// configuration.
	OsalAPI OsalAPIConfig `mapstructure:"osal_api" yaml:"osal_api"`

	// Status contains status-snapshot aggregation and archival
	// configuration.
	Status StatusConfig `mapstructure:"status" yaml:"status"`

	// Network lists the network interfaces to bring up at startup.
	Network NetworkConfig `mapstructure:"network" yaml:"network"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	// Level is the minimum log level to output.
	// Valid values: DEBUG, INFO, WARN, ERROR (case-insensitive).
	Level string `mapstructure:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error" yaml:"level"`

	// Format specifies the log output encoding.
	// Valid values: text, json.
	Format string `mapstructure:"format" validate:"required,oneof=text json" yaml:"format"`

	// Output specifies where logs are written.
	// Valid values: stdout, stderr, or a file path.
	Output string `mapstructure:"output" validate:"required" yaml:"output"`
}

// TelemetryConfig controls OpenTelemetry distributed tracing.
// When enabled, spans opened by pkg/ipclient and pkg/ipserver (and the
// controlplane-style protocol spans) are exported to an OTLP-compatible
// collector.
type TelemetryConfig struct {
	// Enabled controls whether distributed tracing is active.
	// Default: false (opt-in).
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Endpoint is the OTLP collector endpoint (host:port).
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint"`

	// Insecure controls whether to use a non-TLS connection to the
	// collector. Default: false (require TLS).
	Insecure bool `mapstructure:"insecure" yaml:"insecure"`

	// SampleRate controls the trace sampling rate, 0.0 to 1.0.
	SampleRate float64 `mapstructure:"sample_rate" validate:"omitempty,gte=0,lte=1" yaml:"sample_rate"`

	// Profiling contains Pyroscope continuous profiling configuration.
	Profiling ProfilingConfig `mapstructure:"profiling" yaml:"profiling"`
}

// ProfilingConfig controls Pyroscope continuous profiling of the
// alhost process.
type ProfilingConfig struct {
	// Enabled controls whether continuous profiling is active.
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Endpoint is the Pyroscope server endpoint (URL).
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint"`

	// ApplicationName tags uploaded profiles.
	ApplicationName string `mapstructure:"application_name" yaml:"application_name"`

	// ProfileTypes selects which Pyroscope profile types to collect.
	// Valid values: cpu, alloc_objects, alloc_space, inuse_objects,
	// inuse_space, goroutines, mutex_count, mutex_duration, block_count,
	// block_duration.
	ProfileTypes []string `mapstructure:"profile_types" yaml:"profile_types"`
}

// MetricsConfig configures the Prometheus metrics HTTP endpoint.
// When Enabled is false, pkg/metrics.IsEnabled reports false and every
// metrics constructor in the module returns nil (zero overhead).
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
	Port    int  `mapstructure:"port" validate:"omitempty,min=1,max=65535" yaml:"port"`
}

// OsalAPIConfig configures the read-only pkg/osal/api admin server.
type OsalAPIConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
	Port    int  `mapstructure:"port" validate:"omitempty,min=1,max=65535" yaml:"port"`
}

// StatusConfig configures status-snapshot aggregation and optional
// archival sinks. SinkKind selects at most one concrete pkg/status.Sink;
// an empty SinkKind means snapshots are aggregated in memory for
// pkg/status.Collector's Prometheus scrape path but never archived.
type StatusConfig struct {
	// SinkKind selects the archival sink. Valid values: "", "gorm",
	// "badger", "s3".
	SinkKind string `mapstructure:"sink" validate:"omitempty,oneof=gorm badger s3" yaml:"sink"`

	// Interval is how often a snapshot is captured and, if a sink is
	// configured, recorded.
	Interval time.Duration `mapstructure:"interval" validate:"omitempty,gt=0" yaml:"interval"`

	Gorm   GormSinkConfig   `mapstructure:"gorm" yaml:"gorm"`
	Badger BadgerSinkConfig `mapstructure:"badger" yaml:"badger"`
	S3     S3SinkConfig     `mapstructure:"s3" yaml:"s3"`
}

// GormSinkConfig configures the Postgres-backed status.Sink. DSN's
// required-ness is conditional on StatusConfig.SinkKind and checked by
// Validate, since validator's struct tags can't see a sibling struct's
// field.
type GormSinkConfig struct {
	DSN string `mapstructure:"dsn" yaml:"dsn"`
}

// BadgerSinkConfig configures the embedded-Badger status.Sink.
type BadgerSinkConfig struct {
	Dir      string `mapstructure:"dir" yaml:"dir"`
	Capacity int    `mapstructure:"capacity" validate:"omitempty,gt=0" yaml:"capacity"`
}

// S3SinkConfig configures the object-store-backed status.Sink.
type S3SinkConfig struct {
	Bucket    string `mapstructure:"bucket" yaml:"bucket"`
	KeyPrefix string `mapstructure:"key_prefix" yaml:"key_prefix"`
	Region    string `mapstructure:"region" yaml:"region"`
	Endpoint  string `mapstructure:"endpoint" yaml:"endpoint,omitempty"`
}

// NetworkConfig lists the network interfaces alhost brings up at
// startup.
type NetworkConfig struct {
	Interfaces []InterfaceConfig `mapstructure:"interfaces" yaml:"interfaces"`
}

// InterfaceConfig configures one network.NetworkInterface.
type InterfaceConfig struct {
	// Name identifies the interface in logs, status snapshots, and
	// pkg/status registration.
	Name string `mapstructure:"name" validate:"required" yaml:"name"`

	// Kind selects the concrete implementation. Valid values: "posix",
	// "sim".
	Kind string `mapstructure:"kind" validate:"required,oneof=posix sim" yaml:"kind"`

	// MTU is passed through to network.Params; ignored by interfaces
	// that don't use it (e.g. simnet).
	MTU int `mapstructure:"mtu" validate:"omitempty,gt=0" yaml:"mtu,omitempty"`
}

// Load loads configuration from file, environment, and defaults.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setupViper(v, configPath)

	configFileFound, err := readConfigFile(v)
	if err != nil {
		return nil, err
	}

	if !configFileFound {
		cfg := GetDefaultConfig()
		return cfg, nil
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(configDecodeHooks())); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// MustLoad loads configuration with helpful error messages when no
// config file can be found at a caller-specified path.
func MustLoad(configPath string) (*Config, error) {
	if configPath != "" {
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("configuration file not found: %s\n\n"+
				"Please create the configuration file, or run without --config to use built-in defaults",
				configPath)
		}
	}

	cfg, err := Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

// SaveConfig saves the configuration to path in YAML form.
func SaveConfig(cfg *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// setupViper configures viper with environment variable and config
// file search settings.
func setupViper(v *viper.Viper, configPath string) {
	v.SetEnvPrefix("ALHOST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		configDir := getConfigDir()
		v.AddConfigPath(configDir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
}

// readConfigFile reads the configuration file if it exists. Returns
// (fileFound, error).
func readConfigFile(v *viper.Viper) (bool, error) {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return false, nil
		}
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read config file: %w", err)
	}
	return true, nil
}

// configDecodeHooks returns the combined mapstructure decode hook for
// this config's custom scalar types.
func configDecodeHooks() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		durationDecodeHook(),
	)
}

// durationDecodeHook converts strings and numbers to time.Duration so
// config files can use human-readable durations like "30s" or "5m".
func durationDecodeHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != reflect.TypeOf(time.Duration(0)) {
			return data, nil
		}

		switch v := data.(type) {
		case string:
			return time.ParseDuration(v)
		case int:
			return time.Duration(v), nil
		case int64:
			return time.Duration(v), nil
		case float64:
			return time.Duration(v), nil
		default:
			return data, nil
		}
	}
}

// getConfigDir returns the configuration directory path, preferring
// XDG_CONFIG_HOME then ~/.config, falling back to the current
// directory if the home directory can't be determined.
func getConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "alhost")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "alhost")
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() string {
	return filepath.Join(getConfigDir(), "config.yaml")
}

// DefaultConfigExists reports whether a config file exists at the
// default location.
func DefaultConfigExists() bool {
	_, err := os.Stat(GetDefaultConfigPath())
	return err == nil
}

// GetConfigDir returns the configuration directory path (exposed for
// the CLI's init command).
func GetConfigDir() string {
	return getConfigDir()
}
