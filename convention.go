package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// ConfigFileName is the project configuration file. Its directory is the
// project root.
const ConfigFileName = ".dagger-auto.yaml"

const envPrefix = "DAGGER_AUTO"

// flagKeys maps configuration keys to the flags overriding them.
var flagKeys = map[string]string{
	"out":     "out",
	"dry_run": "dry-run",
	"verbose": "verbose",
	"jobs":    "jobs",
}

// findConfigFile walks up from dir to the nearest ConfigFileName.
func findConfigFile(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	for {
		path := filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		} else if !errors.Is(err, fs.ErrNotExist) {
			return "", err
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

// LoadConfig builds the configuration and the project root. An explicit
// config file wins over discovery from dir; without any file, dir is the
// project root. Flags may be nil.
func LoadConfig(explicit, dir string, flags *pflag.FlagSet) (*Config, string, error) {
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("out", defaults.Out)
	v.SetDefault("include", defaults.Include)
	v.SetDefault("exclude", defaults.Exclude)
	v.SetDefault("foreign.suffixes", defaults.Foreign.Suffixes)
	v.SetDefault("foreign.exempt", defaults.Foreign.Exempt)
	v.SetDefault("dry_run", defaults.DryRun)
	v.SetDefault("verbose", defaults.Verbose)
	v.SetDefault("jobs", defaults.Jobs)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	path := explicit
	if path == "" {
		found, err := findConfigFile(dir)
		if err != nil {
			return nil, "", fmt.Errorf("find %s: %w", ConfigFileName, err)
		}
		path = found
	}

	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, "", err
	}
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, "", fmt.Errorf("read config %s: %w", path, err)
		}
		if root, err = filepath.Abs(filepath.Dir(path)); err != nil {
			return nil, "", err
		}
	}

	if flags != nil {
		for key, name := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, "", fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, "", fmt.Errorf("decode config: %w", err)
	}
	if cfg.Jobs < 1 {
		return nil, "", fmt.Errorf("jobs must be positive, got %d", cfg.Jobs)
	}
	return cfg, root, nil
}

// outDir is the absolute output root.
func outDir(cfg *Config, root string) string {
	if filepath.IsAbs(cfg.Out) {
		return cfg.Out
	}
	return filepath.Join(root, cfg.Out)
}
