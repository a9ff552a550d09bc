package preflight

import (
	"context"

	"reelcut/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// CheckDirectories verifies the directories a run writes to. The final
// directory is checked only when publishing is enabled. A missing fonts
// directory is not an error: libass falls back to system fonts.
func CheckDirectories(cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}
	results := []Result{
		CheckDirectoryAccess("Data directory", cfg.Paths.DataDir),
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
	}
	if cfg.Workflow.Publish {
		results = append(results, CheckDirectoryAccess("Final directory", cfg.Paths.FinalDir))
	}
	if fonts := CheckReadableDirectory("Fonts directory", cfg.Paths.FontsDir); fonts.Passed {
		results = append(results, fonts)
	}
	return results
}

// RunAll executes all applicable preflight checks for the given config.
// The LLM check runs only when an API key is configured.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}
	results := CheckDirectories(cfg)
	if cfg.LLM.APIKey != "" {
		results = append(results, CheckLLM(ctx, "LLM", cfg.LLM))
	}
	return results
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}
