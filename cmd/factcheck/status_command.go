package main

import (
	"github.com/spf13/cobra"

	"factcheck/internal/deps"
	"factcheck/internal/preflight"
)

type statusCheck struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail,omitempty"`
}

type statusDependency struct {
	Name      string `json:"name"`
	Command   string `json:"command"`
	Optional  bool   `json:"optional"`
	Available bool   `json:"available"`
	Version   string `json:"version,omitempty"`
	Detail    string `json:"detail,omitempty"`
}

type statusReport struct {
	ConfigPath   string             `json:"config_path"`
	ConfigExists bool               `json:"config_exists"`
	Backend      string             `json:"backend"`
	LLMModel     string             `json:"llm_model"`
	Ready        bool               `json:"ready"`
	Checks       []statusCheck      `json:"checks"`
	Dependencies []statusDependency `json:"dependencies"`
}

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var checkLLM bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Check configuration, external tools, and model access",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			results := preflight.RunAll(cmd.Context(), cfg, preflight.Options{CheckLLM: checkLLM})
			depStatus := preflight.CheckSystemDeps(cfg)
			report := buildStatusReport(ctx, results, depStatus)
			report.Backend = cfg.Transcription.Backend
			report.LLMModel = cfg.GetLLM().Model

			if ctx.jsonOutput(cmd) {
				return writeJSON(cmd, report)
			}
			renderStatusReport(cmd, report)
			return nil
		},
	}

	cmd.Flags().BoolVar(&checkLLM, "check-llm", false, "Send a minimal request to the claim extraction model")
	return cmd
}

func buildStatusReport(ctx *commandContext, results []preflight.Result, depStatus []deps.Status) statusReport {
	report := statusReport{
		ConfigPath:   ctx.configPath,
		ConfigExists: ctx.configExists,
		Ready:        preflight.AllPassed(results) && len(deps.Missing(depStatus)) == 0,
		Checks:       make([]statusCheck, 0, len(results)),
		Dependencies: make([]statusDependency, 0, len(depStatus)),
	}
	for _, r := range results {
		report.Checks = append(report.Checks, statusCheck(r))
	}
	for _, d := range depStatus {
		report.Dependencies = append(report.Dependencies, statusDependency{
			Name:      d.Name,
			Command:   d.Command,
			Optional:  d.Optional,
			Available: d.Available,
			Version:   d.Version,
			Detail:    d.Detail,
		})
	}
	return report
}

func renderStatusReport(cmd *cobra.Command, report statusReport) {
	p := newStatusPrinter(cmd.OutOrStdout())

	p.section("Configuration")
	if report.ConfigExists {
		p.line("Config file", levelOK, report.ConfigPath)
	} else {
		p.line("Config file", levelWarn, report.ConfigPath+" (missing, defaults used)")
	}
	p.line("Transcription backend", levelInfo, report.Backend)
	p.line("Claim model", levelInfo, report.LLMModel)

	p.section("Checks")
	for _, check := range report.Checks {
		level := levelOK
		if !check.Passed {
			level = levelError
		}
		p.line(check.Name, level, check.Detail)
	}

	p.section("Dependencies")
	rows := make([][]string, 0, len(report.Dependencies))
	for _, d := range report.Dependencies {
		detail := d.Version
		if !d.Available {
			detail = d.Detail
		}
		rows = append(rows, []string{d.Name, d.Command, yesNo(d.Available), yesNo(d.Optional), detail})
	}
	p.block(renderTable([]string{"Tool", "Command", "Available", "Optional", "Detail"}, rows))

	p.section("Summary")
	if report.Ready {
		p.line("Overall", levelOK, "ready")
	} else {
		p.line("Overall", levelWarn, "not ready")
	}
}
