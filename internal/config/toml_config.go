package config

import (
	"fmt"

	"github.com/pelletier/go-toml/v2"
)

// parseTOML overlays a .nowmeta.toml document onto cfg. Keys absent from the
// document keep their current values.
func parseTOML(content []byte, cfg *Config) error {
	if err := toml.Unmarshal(content, cfg); err != nil {
		return fmt.Errorf("failed to parse TOML config: %w", err)
	}
	if cfg.Remote.URL != "" {
		u, err := normalizeInstanceURL(cfg.Remote.URL)
		if err != nil {
			return fmt.Errorf("remote.url: %w", err)
		}
		cfg.Remote.URL = u
	}
	return nil
}
