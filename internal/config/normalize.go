package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeScan(); err != nil {
		return err
	}
	if err := c.normalizeSync(); err != nil {
		return err
	}
	c.normalizeEngines()
	c.normalizeNotifications()
	c.normalizeLogging()
	return nil
}

// lookupEnv returns a trimmed environment value. Blank values count as unset.
func lookupEnv(key string) (string, bool) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return "", false
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return "", false
	}
	return value, true
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if port, ok := lookupEnv("PORT"); ok {
		c.Paths.APIBind = net.JoinHostPort("0.0.0.0", port)
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	if c.Paths.APIBind == "" {
		c.Paths.APIBind = defaultAPIBind
	}
	if token, ok := lookupEnv("API_TOKEN"); ok {
		c.Paths.APIToken = token
	}
	c.Paths.APIToken = strings.TrimSpace(c.Paths.APIToken)
	return nil
}

func (c *Config) normalizeScan() error {
	if value, ok := lookupEnv("SCAN_PATHS"); ok {
		c.Scan.IncludePaths = splitList(value)
	}
	if value, ok := lookupEnv("EXCLUDE_PATHS"); ok {
		c.Scan.ExcludePaths = splitList(value)
	}
	var err error
	if c.Scan.IncludePaths, err = expandList(c.Scan.IncludePaths); err != nil {
		return fmt.Errorf("scan.include_paths: %w", err)
	}
	if c.Scan.ExcludePaths, err = expandList(c.Scan.ExcludePaths); err != nil {
		return fmt.Errorf("scan.exclude_paths: %w", err)
	}
	return nil
}

func (c *Config) normalizeSync() error {
	if value, ok := lookupEnv("MAX_CONCURRENT_SYNC_TASKS"); ok {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("MAX_CONCURRENT_SYNC_TASKS: %w", err)
		}
		c.Sync.MaxConcurrent = parsed
	}
	if value, ok := lookupEnv("INCLUDE_ENGINES"); ok {
		c.Sync.IncludeEngines = splitList(value)
	}
	engines := make([]string, 0, len(c.Sync.IncludeEngines))
	seen := make(map[string]struct{}, len(c.Sync.IncludeEngines))
	for _, name := range c.Sync.IncludeEngines {
		normalized := strings.ToLower(strings.TrimSpace(name))
		if normalized == "" {
			continue
		}
		if _, exists := seen[normalized]; exists {
			continue
		}
		seen[normalized] = struct{}{}
		engines = append(engines, normalized)
	}
	if len(engines) == 0 {
		engines = append(engines, KnownEngines...)
	}
	c.Sync.IncludeEngines = engines

	if value, ok := lookupEnv("AUDIO_TRACK_LANGUAGE"); ok {
		c.Sync.AudioTrackLanguage = value
	}
	c.Sync.AudioTrackLanguage = strings.TrimSpace(c.Sync.AudioTrackLanguage)

	if value, ok := lookupEnv("OVERWRITE"); ok {
		parsed, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("OVERWRITE: %w", err)
		}
		c.Sync.Overwrite = parsed
	}
	if c.Sync.LockTimeoutMinutes == 0 {
		c.Sync.LockTimeoutMinutes = defaultLockTimeoutMinutes
	}
	return nil
}

func (c *Config) normalizeEngines() {
	c.Engines.FFprobeBinary = fallback(c.Engines.FFprobeBinary, defaultFFprobeBinary)
	c.Engines.FFsubsyncBinary = fallback(c.Engines.FFsubsyncBinary, defaultFFsubsyncBinary)
	c.Engines.AutosubsyncBinary = fallback(c.Engines.AutosubsyncBinary, defaultAutosubsyncBinary)
	c.Engines.AlassBinary = fallback(c.Engines.AlassBinary, defaultAlassBinary)

	if value, ok := lookupEnv("FFSUBSYNC_ARGS"); ok {
		c.Engines.FFsubsyncArgs = value
	}
	if value, ok := lookupEnv("AUTOSUBSYNC_ARGS"); ok {
		c.Engines.AutosubsyncArgs = value
	}
	if value, ok := lookupEnv("ALASS_ARGS"); ok {
		c.Engines.AlassArgs = value
	}
	c.Engines.FFsubsyncArgs = strings.TrimSpace(c.Engines.FFsubsyncArgs)
	c.Engines.AutosubsyncArgs = strings.TrimSpace(c.Engines.AutosubsyncArgs)
	c.Engines.AlassArgs = strings.TrimSpace(c.Engines.AlassArgs)
}

func (c *Config) normalizeNotifications() {
	if value, ok := lookupEnv("NTFY_TOPIC"); ok {
		c.Notifications.NtfyTopic = value
	}
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeoutSeconds <= 0 {
		c.Notifications.RequestTimeoutSeconds = defaultNtfyTimeoutSeconds
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func fallback(value, def string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return def
	}
	return value
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func expandList(values []string) ([]string, error) {
	out := make([]string, 0, len(values))
	for _, value := range values {
		if strings.TrimSpace(value) == "" {
			continue
		}
		expanded, err := expandPath(strings.TrimSpace(value))
		if err != nil {
			return nil, err
		}
		out = append(out, expanded)
	}
	return out, nil
}
