package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"reelcut/internal/deps"
	"reelcut/internal/preflight"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify directories, external tools, and LLM access",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			results := preflight.RunAll(cmd.Context(), cfg)
			if cfg.LLM.APIKey == "" {
				results = append(results, preflight.Result{Name: "LLM", Detail: "API key missing"})
			}
			statuses := preflight.CheckSystemDeps(cmd.Context(), cfg)

			failed := len(preflight.Failed(results)) + len(deps.Missing(statuses))
			if ctx.JSONMode() {
				if err := writeJSON(cmd, map[string]any{
					"checks":       results,
					"dependencies": statuses,
					"failed":       failed,
				}); err != nil {
					return err
				}
			} else {
				printCheckResults(cmd, results, statuses)
			}
			if failed > 0 {
				return errors.New("preflight checks failed")
			}
			return nil
		},
	}
}

func printCheckResults(cmd *cobra.Command, results []preflight.Result, statuses []deps.Status) {
	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)

	for _, line := range renderSectionHeader("Environment", colorize) {
		fmt.Fprintln(out, line)
	}
	for _, r := range results {
		kind := statusOK
		if !r.Passed {
			kind = statusError
		}
		fmt.Fprintln(out, renderStatusLine(r.Name, kind, r.Detail, colorize))
	}
	fmt.Fprintln(out)

	rows := make([][]string, 0, len(statuses))
	for _, status := range statuses {
		state := "ok"
		switch {
		case status.Available:
		case status.Optional:
			state = "optional, missing"
		default:
			state = "missing"
		}
		rows = append(rows, []string{status.Name, status.Command, state, status.Description, status.Detail})
	}
	fmt.Fprint(out, renderTable(
		[]string{"Dependency", "Command", "State", "Purpose", "Detail"},
		rows,
		nil,
	))
	fmt.Fprintln(out)
}
