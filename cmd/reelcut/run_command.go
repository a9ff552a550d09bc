package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"reelcut/internal/runstate"
	"reelcut/internal/services"
	"reelcut/internal/workflow"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var threshold float64
	var workers int
	var publish bool
	var cleanup bool

	cmd := &cobra.Command{
		Use:   "run <url|file>",
		Short: "Produce shorts from a URL or local video file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("threshold") {
				cfg.Selection.EngagementThreshold = threshold
			}
			if cmd.Flags().Changed("workers") {
				cfg.Workflow.Workers = workers
			}
			if cmd.Flags().Changed("publish") {
				cfg.Workflow.Publish = publish
			}
			if cmd.Flags().Changed("cleanup") {
				cfg.Workflow.Cleanup = cleanup
			}

			logger, err := ctx.logger()
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			return ctx.withStore(func(store *runstate.Store) error {
				pipeline, err := workflow.NewPipeline(cfg, workflow.NewDeps(cfg, store, logger), logger)
				if err != nil {
					return err
				}
				result, runErr := pipeline.Run(cmd.Context(), args[0])
				if ctx.JSONMode() {
					if err := writeJSON(cmd, runResultJSON(result, runErr)); err != nil {
						return err
					}
					return runErr
				}
				printRunResult(cmd, result)
				return runErr
			})
		},
	}

	cmd.Flags().Float64Var(&threshold, "threshold", 0, "Engagement threshold override (0-1)")
	cmd.Flags().IntVar(&workers, "workers", 0, "Parallel chapter workers override")
	cmd.Flags().BoolVar(&publish, "publish", false, "Move finished clips to the final directory")
	cmd.Flags().BoolVar(&cleanup, "cleanup", false, "Empty the working directories after publishing")
	return cmd
}

func printRunResult(cmd *cobra.Command, result workflow.Result) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Run %s %s", shortID(result.RunID), result.Status)
	if result.MediaID != "" {
		fmt.Fprintf(out, " (%s)", result.MediaID)
	}
	fmt.Fprintln(out)

	if len(result.Clips) == 0 && len(result.Failed) == 0 {
		if result.Status == workflow.Completed {
			fmt.Fprintln(out, "No chapters met the engagement threshold")
		}
		return
	}

	rows := make([][]string, 0, len(result.Clips)+len(result.Failed))
	for _, clip := range result.Clips {
		rows = append(rows, []string{
			strconv.Itoa(clip.Index),
			clip.Chapter.Title,
			formatSeconds(clip.Chapter.Duration()),
			"ok",
			clip.FinalPath,
		})
	}
	for _, failure := range result.Failed {
		rows = append(rows, []string{
			strconv.Itoa(failure.Index),
			failure.Chapter.Title,
			formatSeconds(failure.Chapter.Duration()),
			services.Kind(failure.Err),
			strings.TrimSpace(fmt.Sprint(failure.Err)),
		})
	}
	fmt.Fprint(out, renderTable(
		[]string{"#", "Title", "Length", "Result", "Output"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignRight, alignLeft, alignLeft},
	))
	fmt.Fprintln(out)
}

type runJSON struct {
	RunID   string     `json:"run_id"`
	MediaID string     `json:"media_id"`
	Status  string     `json:"status"`
	Error   string     `json:"error,omitempty"`
	Clips   []clipJSON `json:"clips"`
	Failed  []clipJSON `json:"failed"`
}

type clipJSON struct {
	Index    int     `json:"index"`
	Title    string  `json:"title"`
	Start    float64 `json:"start"`
	End      float64 `json:"end"`
	Final    string  `json:"final,omitempty"`
	Subtitle string  `json:"subtitle,omitempty"`
	Error    string  `json:"error,omitempty"`
}

func runResultJSON(result workflow.Result, runErr error) runJSON {
	payload := runJSON{
		RunID:   result.RunID,
		MediaID: result.MediaID,
		Status:  string(result.Status),
		Clips:   []clipJSON{},
		Failed:  []clipJSON{},
	}
	if runErr != nil {
		payload.Error = runErr.Error()
	}
	for _, clip := range result.Clips {
		payload.Clips = append(payload.Clips, clipJSON{
			Index:    clip.Index,
			Title:    clip.Chapter.Title,
			Start:    clip.Chapter.Start,
			End:      clip.Chapter.End,
			Final:    clip.FinalPath,
			Subtitle: clip.SubtitlePath,
		})
	}
	for _, failure := range result.Failed {
		entry := clipJSON{
			Index: failure.Index,
			Title: failure.Chapter.Title,
			Start: failure.Chapter.Start,
			End:   failure.Chapter.End,
		}
		if failure.Err != nil {
			entry.Error = failure.Err.Error()
		}
		payload.Failed = append(payload.Failed, entry)
	}
	return payload
}
