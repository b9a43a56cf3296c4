package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// EnvVar names the config file used when no --config flag is given.
const EnvVar = "CUT_CONFIG"

// Config holds the settings of the cut command
type Config struct {
	Verbosity int           `toml:"verbosity" yaml:"verbosity"`
	LogFile   string        `toml:"log_file" yaml:"log_file"`
	Format    string        `toml:"format" yaml:"format"`
	Grammar   GrammarConfig `toml:"grammar" yaml:"grammar"`
}

// GrammarConfig selects the EBNF grammar used by "cut ebnf parse" when none
// is given on the command line
type GrammarConfig struct {
	Path  string `toml:"path" yaml:"path"`
	Start string `toml:"start" yaml:"start"`
}

var Formats = []string{"json", "yaml"}

// Default returns a configuration with every default applied
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load loads configuration from a TOML or YAML file, chosen by extension
func Load(path string) (*Config, error) {
	path = os.ExpandEnv(path)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	var cfg Config
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	case ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format %q: %s", ext, path)
	}

	cfg.applyDefaults()
	cfg.expandEnvVars()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadFromEnv loads the file named by CUT_CONFIG, or the defaults when it
// is unset
func LoadFromEnv() (*Config, error) {
	path := os.Getenv(EnvVar)
	if path == "" {
		return Default(), nil
	}
	return Load(path)
}

func (c *Config) applyDefaults() {
	if c.Format == "" {
		c.Format = "json"
	}
	if c.Verbosity < 0 {
		c.Verbosity = 0
	}
}

func (c *Config) expandEnvVars() {
	c.LogFile = os.ExpandEnv(c.LogFile)
	c.Grammar.Path = os.ExpandEnv(c.Grammar.Path)
}

// Validate reports settings that no command can use
func (c *Config) Validate() error {
	for _, f := range Formats {
		if c.Format == f {
			return nil
		}
	}
	return fmt.Errorf("unknown output format %q, expected one of %s", c.Format, strings.Join(Formats, ", "))
}

// LogPath returns the log file for commonlog.Configure, nil meaning stderr
func (c *Config) LogPath() *string {
	if c.LogFile == "" {
		return nil
	}
	path := c.LogFile
	return &path
}
