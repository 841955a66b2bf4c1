package deps

import (
	"fmt"
	"os/exec"
	"slices"
	"strings"

	"subsyncarr/internal/config"
)

// Requirement defines an external dependency subsyncarr relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// Requirements lists the binaries the configuration refers to. ffprobe is
// always required; an engine is optional when include_engines leaves it out.
func Requirements(cfg *config.Config) []Requirement {
	if cfg == nil {
		return nil
	}
	enabled := func(name string) bool {
		return slices.Contains(cfg.Sync.IncludeEngines, name)
	}
	return []Requirement{
		{
			Name:        "ffprobe",
			Command:     cfg.Engines.FFprobeBinary,
			Description: "Audio and subtitle stream lookup",
		},
		{
			Name:        "ffsubsync",
			Command:     cfg.Engines.FFsubsyncBinary,
			Description: "Audio-based subtitle alignment",
			Optional:    !enabled("ffsubsync"),
		},
		{
			Name:        "autosubsync",
			Command:     cfg.Engines.AutosubsyncBinary,
			Description: "Speech-detection subtitle alignment",
			Optional:    !enabled("autosubsync"),
		},
		{
			Name:        "alass",
			Command:     cfg.Engines.AlassBinary,
			Description: "Language-agnostic subtitle alignment",
			Optional:    !enabled("alass"),
		},
	}
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Available = false
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		if _, err := exec.LookPath(cmd); err != nil {
			status.Available = false
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Available = true
		results = append(results, status)
	}
	return results
}

// MissingRequired returns the names of unavailable, non-optional dependencies.
func MissingRequired(statuses []Status) []string {
	var missing []string
	for _, status := range statuses {
		if !status.Available && !status.Optional {
			missing = append(missing, status.Name)
		}
	}
	return missing
}
