package preflight

import (
	"context"
	"strings"

	"factcheck/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// Options selects the checks that reach the network.
type Options struct {
	// CheckLLM probes the chat-completions endpoint with a minimal request.
	CheckLLM bool
}

// RunAll executes the preflight checks applicable to cfg.
func RunAll(ctx context.Context, cfg *config.Config, opts Options) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result
	results = append(results, CheckDirectoryAccess("Work directory", cfg.Paths.WorkDir))
	if strings.TrimSpace(cfg.Paths.LogDir) != "" {
		results = append(results, CheckDirectoryAccess("Log directory", cfg.Paths.LogDir))
	}
	results = append(results, CheckTranscriptionBackend(cfg))

	llmCfg := cfg.GetLLM()
	switch {
	case opts.CheckLLM:
		results = append(results, CheckLLM(ctx, "Claim LLM", llmCfg))
	case llmCfg.APIKey == "":
		results = append(results, Result{Name: "Claim LLM", Detail: "API key missing"})
	default:
		results = append(results, Result{Name: "Claim LLM", Passed: true, Detail: "API key configured (" + llmCfg.Model + ")"})
	}
	return results
}

// AllPassed reports whether every result passed.
func AllPassed(results []Result) bool {
	for _, r := range results {
		if !r.Passed {
			return false
		}
	}
	return true
}
