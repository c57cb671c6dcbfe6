package main

import (
	"github.com/azahnen/dagger-auto/internal/compiler"
	"github.com/azahnen/dagger-auto/internal/resolver"
)

// Config holds dagger-auto configuration, merged from flags, DAGGER_AUTO_*
// environment variables, .dagger-auto.yaml and defaults.
type Config struct {
	Out     string        `mapstructure:"out"`     // output root, relative to the project root
	Include []string      `mapstructure:"include"` // declaration file globs
	Exclude []string      `mapstructure:"exclude"` // path prefixes skipped while scanning
	Foreign ForeignConfig `mapstructure:"foreign"`
	DryRun  bool          `mapstructure:"dry_run"`
	Verbose bool          `mapstructure:"verbose"`
	Jobs    int           `mapstructure:"jobs"`
}

// ForeignConfig selects aggregation points owned by another compilation unit.
type ForeignConfig struct {
	Suffixes []string `mapstructure:"suffixes"` // interface name suffixes
	Exempt   []string `mapstructure:"exempt"`   // package prefixes never treated as foreign
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() *Config {
	return &Config{
		Out:     "build/generated/sources/dagger-auto",
		Include: append([]string(nil), resolver.DefaultInclude...),
		Exclude: []string{},
		Foreign: ForeignConfig{Suffixes: []string{}, Exempt: []string{}},
		Jobs:    4,
	}
}

func (c *Config) ScanOptions() resolver.ScanOptions {
	return resolver.ScanOptions{Include: c.Include, Exclude: c.Exclude}
}

func (c *Config) Policy() compiler.ForeignPolicy {
	return compiler.SuffixPolicy{Suffixes: c.Foreign.Suffixes, Exempt: c.Foreign.Exempt}
}
