package config

const (
	defaultStateDir           = "~/.local/share/subsyncarr"
	defaultLogDir             = "~/.local/share/subsyncarr/logs"
	defaultAPIBind            = "127.0.0.1:3000"
	defaultMaxConcurrent      = 1
	defaultLockTimeoutMinutes = 360
	defaultFFprobeBinary      = "ffprobe"
	defaultFFsubsyncBinary    = "ffsubsync"
	defaultAutosubsyncBinary  = "autosubsync"
	defaultAlassBinary        = "alass"
	defaultNtfyTimeoutSeconds = 10
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
)

// KnownEngines lists the engine names accepted by sync.include_engines, in
// canonical execution order.
var KnownEngines = []string{"ffsubsync", "autosubsync", "alass"}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir: defaultStateDir,
			LogDir:   defaultLogDir,
			APIBind:  defaultAPIBind,
		},
		Sync: Sync{
			MaxConcurrent:      defaultMaxConcurrent,
			IncludeEngines:     append([]string(nil), KnownEngines...),
			LockTimeoutMinutes: defaultLockTimeoutMinutes,
		},
		Engines: Engines{
			FFprobeBinary:     defaultFFprobeBinary,
			FFsubsyncBinary:   defaultFFsubsyncBinary,
			AutosubsyncBinary: defaultAutosubsyncBinary,
			AlassBinary:       defaultAlassBinary,
		},
		Notifications: Notifications{
			RequestTimeoutSeconds: defaultNtfyTimeoutSeconds,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
