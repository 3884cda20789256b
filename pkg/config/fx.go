package config

import (
	"os"

	"github.com/pseudomuto/schemakeeper/pkg/consts"
	"github.com/pseudomuto/schemakeeper/pkg/ignore"
	"go.uber.org/fx"
)

var Module = fx.Module("config", fx.Provide(
	// Function attempts to load the configuration from schemakeeper.yaml if it exists.
	// Returns nil if the file doesn't exist, allowing commands that don't require config
	// (like init, help, version) to function properly.
	func() (*Config, error) {
		// Check if schemakeeper.yaml exists
		if _, err := os.Stat(consts.ConfigFile); os.IsNotExist(err) {
			// Return nil config for commands that don't need it
			return nil, nil
		}

		// Load and return the config
		return LoadConfigFile(consts.ConfigFile)
	},
	func(c *Config) (*ignore.Matcher, error) {
		return c.GetIgnoreMatcher()
	},
))
