package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"reelcut/internal/runstate"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "status [run-id]",
		Short: "Show recent runs or the stage table of one run",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *runstate.Store) error {
				if len(args) == 1 {
					return showRun(cmd, ctx, store, args[0])
				}
				runs, err := store.ListRuns(cmd.Context(), limit)
				if err != nil {
					return err
				}
				if ctx.JSONMode() {
					if runs == nil {
						runs = []*runstate.Run{}
					}
					return writeJSON(cmd, runs)
				}
				out := cmd.OutOrStdout()
				if len(runs) == 0 {
					fmt.Fprintln(out, "No runs recorded")
					return nil
				}
				rows := make([][]string, 0, len(runs))
				for _, run := range runs {
					rows = append(rows, []string{
						shortID(run.ID),
						run.MediaID,
						string(run.Status),
						strconv.Itoa(run.Clips),
						strconv.Itoa(run.Failed),
						run.UpdatedAt.Local().Format(time.DateTime),
					})
				}
				fmt.Fprint(out, renderTable(
					[]string{"Run", "Media", "Status", "Clips", "Failed", "Updated"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignLeft},
				))
				fmt.Fprintln(out)
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of runs to list")
	return cmd
}

func showRun(cmd *cobra.Command, ctx *commandContext, store *runstate.Store, id string) error {
	run, err := findRun(cmd, store, id)
	if err != nil {
		return err
	}
	stages, err := store.Stages(cmd.Context(), run.MediaID)
	if err != nil {
		return err
	}
	if ctx.JSONMode() {
		if stages == nil {
			stages = []runstate.StageRecord{}
		}
		return writeJSON(cmd, map[string]any{"run": run, "stages": stages})
	}

	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)
	for _, line := range renderSectionHeader("Run "+shortID(run.ID), colorize) {
		fmt.Fprintln(out, line)
	}
	fmt.Fprintln(out, renderStatusLine("Source", statusInfo, run.Source, colorize))
	fmt.Fprintln(out, renderStatusLine("Media", statusInfo, run.MediaID, colorize))
	fmt.Fprintln(out, renderStatusLine("Status", runStatusKind(run.Status), string(run.Status), colorize))
	fmt.Fprintln(out, renderStatusLine("Clips", statusInfo, fmt.Sprintf("%d produced, %d failed", run.Clips, run.Failed), colorize))
	if run.ErrorMessage != "" {
		fmt.Fprintln(out, renderStatusLine("Error", statusError, run.ErrorMessage, colorize))
	}
	fmt.Fprintln(out)

	if len(stages) == 0 {
		fmt.Fprintln(out, "No stages recorded")
		return nil
	}
	rows := make([][]string, 0, len(stages))
	for _, rec := range stages {
		chapter := "-"
		if rec.Chapter != runstate.NoChapter {
			chapter = strconv.Itoa(rec.Chapter)
		}
		rows = append(rows, []string{
			rec.Stage,
			chapter,
			string(rec.Status),
			shortID(rec.RunID),
			rec.UpdatedAt.Local().Format(time.DateTime),
			rec.ErrorMessage,
		})
	}
	fmt.Fprint(out, renderTable(
		[]string{"Stage", "Chapter", "Status", "Run", "Updated", "Error"},
		rows,
		[]columnAlignment{alignLeft, alignRight, alignLeft, alignLeft, alignLeft, alignLeft},
	))
	fmt.Fprintln(out)
	return nil
}

// findRun accepts a full run id or the short prefix printed by the list view.
func findRun(cmd *cobra.Command, store *runstate.Store, id string) (*runstate.Run, error) {
	run, err := store.GetRun(cmd.Context(), id)
	if err != nil {
		return nil, err
	}
	if run != nil {
		return run, nil
	}
	runs, err := store.ListRuns(cmd.Context(), 0)
	if err != nil {
		return nil, err
	}
	var match *runstate.Run
	for _, candidate := range runs {
		if id != "" && strings.HasPrefix(candidate.ID, id) {
			if match != nil {
				return nil, fmt.Errorf("run id %q is ambiguous", id)
			}
			match = candidate
		}
	}
	if match == nil {
		return nil, errors.New("run not found: " + id)
	}
	return match, nil
}

func runStatusKind(status runstate.RunStatus) statusKind {
	switch status {
	case runstate.RunCompleted:
		return statusOK
	case runstate.RunAborted:
		return statusError
	default:
		return statusWarn
	}
}
