// Package config loads the application configuration from a YAML file.
// A missing file yields the built-in defaults so that a fresh checkout
// runs without any setup.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds everything the application needs to start. The first
// entry of Currencies is the primary currency; the first entry of
// Languages is used when no language is requested.
type Config struct {
	DataFolder      string   `yaml:"data_folder"`
	LogFile         string   `yaml:"log_file"`
	DefaultLanguage string   `yaml:"default_language"`
	Languages       []string `yaml:"languages"`
	Currencies      []string `yaml:"currencies"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		DataFolder:      ".",
		LogFile:         "artkeep.log",
		DefaultLanguage: "en",
		Languages:       []string{"en"},
		Currencies:      []string{"usd"},
	}
}

// Load reads a configuration file, filling unset fields from the
// defaults. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg.Languages = dropEmpty(cfg.Languages)
	cfg.Currencies = dropEmpty(cfg.Currencies)

	defaults := Default()
	if cfg.DataFolder == "" {
		cfg.DataFolder = defaults.DataFolder
	}
	if cfg.LogFile == "" {
		cfg.LogFile = defaults.LogFile
	}
	if cfg.DefaultLanguage == "" {
		cfg.DefaultLanguage = defaults.DefaultLanguage
	}
	if len(cfg.Languages) == 0 {
		cfg.Languages = defaults.Languages
	}
	if len(cfg.Currencies) == 0 {
		cfg.Currencies = defaults.Currencies
	}
	return cfg, nil
}

func dropEmpty(list []string) []string {
	out := list[:0]
	for _, entry := range list {
		if entry != "" {
			out = append(out, entry)
		}
	}
	return out
}
