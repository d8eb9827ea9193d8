package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Load builds the run configuration: defaults, then the YAML file at path
// (skipped when path is empty), then environment overrides. The result is
// not validated; callers run Validate once they know they need the settings.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		// #nosec G304
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal yaml: %w", err)
		}
	}

	applyEnv(cfg)

	return cfg, nil
}
