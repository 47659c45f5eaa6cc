package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
)

// LoadConfig loads the configuration from path, or config.json in the data
// directory when path is empty. A missing file yields the defaults. Fields
// absent from the file take their defaults and invalid fields are reset
// with a warning. A file that cannot be parsed is an error.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		var err error
		if path, err = GetConfigPath(); err != nil {
			return nil, err
		}
	}

	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return nil, err
	}

	config := &Config{}
	if err := json.Unmarshal(raw, config); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	ApplyMissingDefaults(config, detectPresentKeys(raw))
	config = migrateConfig(config)

	if problems := ValidateConfig(config); len(problems) > 0 {
		for _, p := range problems {
			log.Printf("Warning: config %s: invalid %s, using default", path, p)
		}
		config = CorrectConfig(config)
	}
	return config, nil
}

// SaveConfig saves the configuration atomically to path, or config.json in
// the data directory when path is empty.
func SaveConfig(path string, config *Config) error {
	if path == "" {
		var err error
		if path, err = GetConfigPath(); err != nil {
			return err
		}
	}
	return AtomicWriteJSON(path, config)
}

// migrateConfig upgrades configs written by older versions.
func migrateConfig(config *Config) *Config {
	// Version 0 predates the version field.
	if config.Version == 0 {
		config.Version = 1
	}
	return config
}
