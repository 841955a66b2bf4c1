package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateSync(); err != nil {
		return err
	}
	if err := c.validateEngines(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateSync() error {
	if c.Sync.MaxConcurrent < 1 {
		return errors.New("sync.max_concurrent must be at least 1")
	}
	if c.Sync.LockTimeoutMinutes <= 0 {
		return errors.New("sync.lock_timeout_minutes must be positive")
	}
	if len(c.Sync.IncludeEngines) == 0 {
		return errors.New("sync.include_engines must list at least one engine")
	}
	var unknown []string
	for _, name := range c.Sync.IncludeEngines {
		if !slices.Contains(KnownEngines, name) {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		return fmt.Errorf("sync.include_engines: unknown engines %s (valid: %s)",
			strings.Join(unknown, ", "), strings.Join(KnownEngines, ", "))
	}
	return nil
}

func (c *Config) validateEngines() error {
	for key, value := range map[string]string{
		"engines.ffprobe_binary":     c.Engines.FFprobeBinary,
		"engines.ffsubsync_binary":   c.Engines.FFsubsyncBinary,
		"engines.autosubsync_binary": c.Engines.AutosubsyncBinary,
		"engines.alass_binary":       c.Engines.AlassBinary,
	} {
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("%s must be set", key)
		}
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
}
