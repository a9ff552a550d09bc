package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"reelcut/internal/chapters"
)

func newClipsCommand(ctx *commandContext) *cobra.Command {
	var threshold float64

	cmd := &cobra.Command{
		Use:   "clips <chapter.json>",
		Short: "List the chapters a run would cut from a chapter document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("threshold") {
				threshold = cfg.Selection.EngagementThreshold
			}
			if threshold < 0 || threshold > 1 {
				return fmt.Errorf("threshold must be within [0,1], got %g", threshold)
			}

			doc, err := chapters.Load(args[0])
			if err != nil {
				return err
			}
			issues := chapters.Inspect(doc.Chapters)
			selected := make(map[chapters.Chapter]bool)
			for _, ch := range chapters.Select(chapters.Playable(doc.Chapters), threshold) {
				selected[ch] = true
			}

			if ctx.JSONMode() {
				picked := make([]chapters.Chapter, 0, len(selected))
				for _, ch := range doc.Chapters {
					if selected[ch] {
						picked = append(picked, ch)
					}
				}
				notes := make([]string, 0, len(issues))
				for _, issue := range issues {
					notes = append(notes, issue.String())
				}
				return writeJSON(cmd, map[string]any{
					"threshold": threshold,
					"selected":  picked,
					"issues":    notes,
				})
			}

			out := cmd.OutOrStdout()
			rows := make([][]string, 0, len(doc.Chapters))
			count := 0
			for i, ch := range doc.Chapters {
				if selected[ch] {
					count++
				}
				rows = append(rows, []string{
					strconv.Itoa(i),
					ch.Title,
					formatSeconds(ch.Start),
					formatSeconds(ch.End),
					strconv.FormatFloat(ch.EngagementScore, 'f', 2, 64),
					yesNo(selected[ch]),
				})
			}
			fmt.Fprint(out, renderTable(
				[]string{"#", "Title", "Start", "End", "Score", "Selected"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignRight, alignRight, alignRight, alignLeft},
			))
			fmt.Fprintln(out)
			for _, issue := range issues {
				fmt.Fprintf(out, "Warning: %s\n", issue)
			}
			fmt.Fprintf(out, "%d of %d chapters selected at threshold %.2f\n", count, len(doc.Chapters), threshold)
			return nil
		},
	}

	cmd.Flags().Float64Var(&threshold, "threshold", 0, "Engagement threshold (defaults to selection.engagement_threshold)")
	return cmd
}
