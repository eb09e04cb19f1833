// Package config loads mdcodemod settings from an optional YAML file,
// MDCODEMOD_* environment variables and command line flags, in increasing
// order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gobwas/glob"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// DefaultFile is read from the working directory when no file is given.
	DefaultFile = ".mdcodemod.yaml"

	envPrefix = "MDCODEMOD"
)

// Config holds the settings of a run.
type Config struct {
	// Dir is the directory whose documents are processed.
	Dir string `mapstructure:"dir" yaml:"dir"`
	// Pattern selects document file names.
	Pattern string `mapstructure:"pattern" yaml:"pattern"`
	// Langs are glob patterns selecting the qualifying block tags.
	Langs []string `mapstructure:"langs" yaml:"langs"`
	// Commands maps a tag, or "*", to a command template.
	Commands map[string]string `mapstructure:"commands" yaml:"commands,omitempty"`
	Shell    bool              `mapstructure:"shell" yaml:"shell"`
	Timeout  time.Duration     `mapstructure:"timeout" yaml:"timeout"`
	TempDir  string            `mapstructure:"temp_dir" yaml:"temp_dir,omitempty"`
	Keep     bool              `mapstructure:"keep" yaml:"keep"`
	LogLevel string            `mapstructure:"log_level" yaml:"log_level"`
}

// Default returns the configuration used when nothing else is set.
func Default() *Config {
	return &Config{
		Dir:      "docs",
		Pattern:  "*.md",
		Langs:    []string{"jsx", "tsx"},
		Shell:    true,
		Timeout:  time.Minute,
		LogLevel: "warn",
	}
}

var (
	errNoLangs    = errors.New("at least one language is required")
	errNoDir      = errors.New("directory is required")
	errBadTimeout = errors.New("timeout must be positive")
)

// Validate checks that the configuration can drive a run.
func (c *Config) Validate() error {
	if len(c.Dir) == 0 {
		return errNoDir
	}

	if _, err := glob.Compile(c.Pattern); err != nil {
		return fmt.Errorf("invalid pattern %q: %w", c.Pattern, err)
	}

	if len(c.Langs) == 0 {
		return errNoLangs
	}

	for _, lang := range c.Langs {
		if _, err := glob.Compile(lang); err != nil {
			return fmt.Errorf("invalid language pattern %q: %w", lang, err)
		}
	}

	if c.Timeout <= 0 {
		return errBadTimeout
	}

	return nil
}

// flagKeys maps flag names to configuration keys.
var flagKeys = map[string]string{
	"dir":       "dir",
	"pattern":   "pattern",
	"lang":      "langs",
	"shell":     "shell",
	"timeout":   "timeout",
	"temp-dir":  "temp_dir",
	"keep":      "keep",
	"log-level": "log_level",
}

// Load reads the configuration file at path, or DefaultFile when path is
// empty and that file exists, then applies environment variables and the
// flags of flags that were set explicitly.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	def := Default()
	v.SetDefault("dir", def.Dir)
	v.SetDefault("pattern", def.Pattern)
	v.SetDefault("langs", def.Langs)
	v.SetDefault("shell", def.Shell)
	v.SetDefault("timeout", def.Timeout)
	v.SetDefault("log_level", def.LogLevel)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if len(path) == 0 {
		if _, err := os.Stat(DefaultFile); err == nil {
			path = DefaultFile
		}
	}

	if len(path) != 0 {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")

		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if flags != nil {
		for name, key := range flagKeys {
			flag := flags.Lookup(name)
			if flag == nil {
				continue
			}

			if err := v.BindPFlag(key, flag); err != nil {
				return nil, err
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}
