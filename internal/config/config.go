// Package config loads bastion settings from defaults, an optional YAML file
// and BASTION_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for environment overrides (BASTION_LOG_LEVEL, ...).
const EnvPrefix = "BASTION"

// Config is the full application configuration.
type Config struct {
	Log     LogConfig   `mapstructure:"log"`
	Catalog string      `mapstructure:"catalog"`
	Probe   ProbeConfig `mapstructure:"probe"`
	Sweep   SweepConfig `mapstructure:"sweep"`
}

// LogConfig controls the logger.
type LogConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=text json"`
}

// ProbeConfig controls external command execution.
type ProbeConfig struct {
	// CheckTimeout bounds each read-only probe.
	CheckTimeout time.Duration `mapstructure:"check_timeout" validate:"gt=0"`
	// FixTimeout bounds each remediation command.
	FixTimeout time.Duration `mapstructure:"fix_timeout" validate:"gt=0"`
}

// SweepConfig holds sweep defaults used when flags are not given.
type SweepConfig struct {
	Extensions    []string      `mapstructure:"extensions"`
	MinSizeMB     float64       `mapstructure:"min_size_mb" validate:"gte=0"`
	IncludeSystem bool          `mapstructure:"include_system"`
	Interval      time.Duration `mapstructure:"interval" validate:"gt=0"`
	Locations     Locations     `mapstructure:"locations"`
}

// Locations overrides the platform default sweep roots. Empty values keep
// the defaults.
type Locations struct {
	User   string   `mapstructure:"user"`
	Temp   string   `mapstructure:"temp"`
	System []string `mapstructure:"system" validate:"omitempty,max=3"`
}

// DefaultExtensions are the file types swept for when none are configured.
var DefaultExtensions = []string{".mp3", ".mp4", ".avi", ".mkv", ".exe", ".msi", ".bat", ".ps1", ".vbs", ".zip"}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("catalog", "")
	v.SetDefault("probe.check_timeout", 30*time.Second)
	v.SetDefault("probe.fix_timeout", 5*time.Minute)
	v.SetDefault("sweep.extensions", DefaultExtensions)
	v.SetDefault("sweep.min_size_mb", 0)
	v.SetDefault("sweep.include_system", false)
	v.SetDefault("sweep.interval", 200*time.Millisecond)
	v.SetDefault("sweep.locations.user", "")
	v.SetDefault("sweep.locations.temp", "")
	v.SetDefault("sweep.locations.system", []string{})
}

// Load reads configuration. When path is empty, bastion.yaml is searched in
// the working directory and the user config directory; a missing file is
// not an error. An explicit path must exist.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("bastion")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "bastion"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field constraints and reports them in one error.
func Validate(cfg *Config) error {
	err := validator.New().Struct(cfg)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	var messages []string
	for _, fe := range verrs {
		messages = append(messages, fmt.Sprintf("%s failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(messages, "; "))
}
