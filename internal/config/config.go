package config

import (
	"log/slog"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"rule628/internal/logger"
)

const (
	// EnvPrefix is prepended to every environment override, e.g. RULE628_SERVER_LISTEN.
	EnvPrefix = "RULE628"
	// FileName is the config file looked up in $HOME and the working directory.
	FileName = ".rule628"
)

// Config is the full runtime configuration of the CLI and the service.
type Config struct {
	LogLevel string       `mapstructure:"log-level" yaml:"log-level"`
	Scan     ScanConfig   `mapstructure:"scan" yaml:"scan"`
	Server   ServerConfig `mapstructure:"server" yaml:"server"`
	Rules    RulesConfig  `mapstructure:"rules" yaml:"rules"`
}

type ScanConfig struct {
	Extensions    []string `mapstructure:"extensions" yaml:"extensions"`
	Excludes      []string `mapstructure:"excludes" yaml:"excludes"`
	Concurrency   int      `mapstructure:"concurrency" yaml:"concurrency"`
	Report        string   `mapstructure:"report" yaml:"report"`
	Out           string   `mapstructure:"out" yaml:"out"`
	FailOnWarning bool     `mapstructure:"fail-on-warning" yaml:"fail-on-warning"`
}

type ServerConfig struct {
	Listen           string        `mapstructure:"listen" yaml:"listen"`
	ShutdownTimeout  time.Duration `mapstructure:"shutdown-timeout" yaml:"shutdown-timeout"`
	MaxBodyBytes     int64         `mapstructure:"max-body-bytes" yaml:"max-body-bytes"`
	BatchConcurrency int           `mapstructure:"batch-concurrency" yaml:"batch-concurrency"`
}

type RulesConfig struct {
	// Disabled lists rule names (direct_read, disallowed_write) to skip.
	Disabled []string `mapstructure:"disabled" yaml:"disabled"`
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("log-level", "info")

	v.SetDefault("scan.extensions", []string{"abap", "json", "yaml", "yml"})
	v.SetDefault("scan.excludes", []string{".git", "vendor"})
	v.SetDefault("scan.concurrency", runtime.NumCPU())
	v.SetDefault("scan.report", "text")
	v.SetDefault("scan.out", "")
	v.SetDefault("scan.fail-on-warning", false)

	v.SetDefault("server.listen", ":8000")
	v.SetDefault("server.shutdown-timeout", 10*time.Second)
	v.SetDefault("server.max-body-bytes", int64(32<<20))
	v.SetDefault("server.batch-concurrency", runtime.NumCPU())

	v.SetDefault("rules.disabled", []string{})
}

// Load reads the config file (explicit path, or FileName in $HOME or the
// working directory) and environment overrides into a validated Config.
// A missing default config file is not an error.
func Load(v *viper.Viper, file string) (*Config, error) {
	SetDefaults(v)

	if file != "" {
		v.SetConfigFile(file)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName(FileName)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, errors.Wrap(err, "failed to read config")
		}
		slog.Debug("no config file found, using defaults")
	} else {
		slog.Debug("using config file", "file", v.ConfigFileUsed())
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to decode config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that cannot be fixed up silently and normalises
// the rest.
func (c *Config) Validate() error {
	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		return err
	}

	switch c.Scan.Report {
	case "text", "json", "yaml":
	default:
		return errors.Errorf("unsupported report format: %s", c.Scan.Report)
	}
	if c.Scan.Concurrency < 1 {
		c.Scan.Concurrency = runtime.NumCPU()
	}
	for i, ext := range c.Scan.Extensions {
		c.Scan.Extensions[i] = strings.TrimPrefix(strings.ToLower(ext), ".")
	}

	if c.Server.Listen == "" {
		return errors.New("server.listen must not be empty")
	}
	if c.Server.MaxBodyBytes <= 0 {
		return errors.Errorf("server.max-body-bytes must be positive, got %d", c.Server.MaxBodyBytes)
	}
	if c.Server.BatchConcurrency < 1 {
		c.Server.BatchConcurrency = runtime.NumCPU()
	}
	return nil
}

// Level returns the configured slog level; Validate has already checked it.
func (c *Config) Level() slog.Level {
	level, _ := logger.ParseLevel(c.LogLevel)
	return level
}
