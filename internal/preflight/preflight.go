package preflight

import (
	"subsyncarr/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail"`
}

// RunAll checks the state directory and every configured scan root.
// Excluded roots are not checked.
func RunAll(cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{CheckDirectoryAccess("State directory", cfg.Paths.StateDir)}
	if len(cfg.Scan.IncludePaths) == 0 {
		results = append(results, Result{Name: "Scan paths", Detail: "none configured (set scan.include_paths or SCAN_PATHS)"})
	}
	for _, root := range cfg.Scan.IncludePaths {
		results = append(results, CheckScanRoot("Scan path", root))
	}
	return results
}

// Failed returns the checks that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, result := range results {
		if !result.Passed {
			failed = append(failed, result)
		}
	}
	return failed
}
