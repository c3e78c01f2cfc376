package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/blokengine/blok/engine/core"
)

/** @brief Asset-related configuration. */
type AssetsConfig struct {
	/** @brief Ordered base directories logical asset names are resolved against. */
	SearchPaths []string `toml:"search_paths"`
	/** @brief Logical mesh names resolved eagerly at startup. */
	Preload []string `toml:"preload"`
}

/** @brief Logging configuration. */
type LoggingConfig struct {
	Level core.LogLevel `toml:"level"`
}

/**
 * @brief The engine configuration, read from a TOML file. Collaborators
 * populate the search paths here before the first resolution; the mesh
 * pipeline itself treats them as read-only.
 */
type Config struct {
	AppName string        `toml:"app_name"`
	Assets  AssetsConfig  `toml:"assets"`
	Logging LoggingConfig `toml:"logging"`
}

func Default() *Config {
	return &Config{
		AppName: "Blok",
		Assets: AssetsConfig{
			SearchPaths: []string{"assets"},
		},
		Logging: LoggingConfig{
			Level: core.InfoLevel,
		},
	}
}

/**
 * @brief Loads the configuration from the given TOML file. A missing file
 * is not an error: the defaults are returned so a bare checkout still
 * runs. Fields absent from the file keep their default values.
 */
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			core.LogWarn("config file '%s' not found, using defaults.", path)
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config '%s': %w", path, err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config '%s': %w", path, err)
	}
	if len(cfg.Assets.SearchPaths) == 0 {
		cfg.Assets.SearchPaths = Default().Assets.SearchPaths
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = Default().Logging.Level
	}
	return cfg, nil
}
