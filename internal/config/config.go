// Package config provides user-level configuration for gittwo,
// read from a TOML file.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config represents the user configuration
type Config struct {
	User UserConfig `toml:"user"`
	Auth AuthConfig `toml:"auth"`
	Log  LogConfig  `toml:"log"`
}

// UserConfig holds the commit author identity
type UserConfig struct {
	Name  string `toml:"name"`
	Email string `toml:"email"`
}

// AuthConfig holds default HTTPS credentials for remote operations
type AuthConfig struct {
	Username string `toml:"username"`
	Password string `toml:"password"`
	Token    string `toml:"token"`
}

// LogConfig holds file logging settings
type LogConfig struct {
	File string `toml:"file"`
}

// Path returns the configuration file location: $GITTWO_CONFIG if set,
// otherwise ~/.config/gittwo/config.toml.
func Path() (string, error) {
	if p := os.Getenv("GITTWO_CONFIG"); p != "" {
		return p, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, ".config", "gittwo", "config.toml"), nil
}

// Load reads the user configuration. A missing file is not an error and
// yields the zero configuration.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	return LoadFile(path)
}

// LoadFile reads the configuration from an explicit path
func LoadFile(path string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return &cfg, nil
}
