package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"reelcut/internal/staging"
)

func newCleanCommand(ctx *commandContext) *cobra.Command {
	var listOnly bool

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove working directories under the data directory",
		Long: `Remove the intermediate audio, transcript, video, frame, subtitle, and
short directories under paths.data_dir.

Nothing is removed while keep.lock exists in the data directory or while a
run holds the data directory lock. The run-state database is preserved.

Use --list to show the directories and their sizes without removing them.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := ctx.registry()
			if err != nil {
				return err
			}
			if listOnly {
				dirs, err := staging.ListDirectories(reg)
				if err != nil {
					return fmt.Errorf("list workspace directories: %w", err)
				}
				return printWorkspaceDirs(cmd, ctx, reg.Root(), dirs)
			}

			logger, err := ctx.logger()
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			result := staging.Cleanup(cmd.Context(), reg, staging.CleanupOptions{Logger: logger})
			if ctx.JSONMode() {
				errs := make([]string, 0, len(result.Errors))
				for _, e := range result.Errors {
					errs = append(errs, fmt.Sprintf("%s: %v", e.Path, e.Error))
				}
				return writeJSON(cmd, map[string]any{
					"removed": len(result.Removed),
					"skipped": string(result.Skipped),
					"errors":  errs,
				})
			}
			return printCleanResult(cmd, result)
		},
	}

	cmd.Flags().BoolVar(&listOnly, "list", false, "List working directories without removing them")
	return cmd
}

func printWorkspaceDirs(cmd *cobra.Command, ctx *commandContext, root string, dirs []staging.DirInfo) error {
	if ctx.JSONMode() {
		if dirs == nil {
			dirs = []staging.DirInfo{}
		}
		var totalSize int64
		for _, dir := range dirs {
			totalSize += dir.Size
		}
		return writeJSON(cmd, map[string]any{
			"data_dir":         root,
			"directories":      dirs,
			"total_size_bytes": totalSize,
		})
	}

	out := cmd.OutOrStdout()
	if len(dirs) == 0 {
		fmt.Fprintln(out, "No working directories found")
		return nil
	}
	fmt.Fprintf(out, "Data directory: %s\n\n", root)

	var totalSize int64
	rows := make([][]string, 0, len(dirs))
	for _, dir := range dirs {
		age := time.Since(dir.ModTime).Truncate(time.Minute)
		totalSize += dir.Size
		rows = append(rows, []string{dir.Name, formatDuration(age), formatBytes(dir.Size)})
	}
	fmt.Fprint(out, renderTable(
		[]string{"Directory", "Age", "Size"},
		rows,
		[]columnAlignment{alignLeft, alignRight, alignRight},
	))
	fmt.Fprintf(out, "\nTotal: %d directories, %s\n", len(dirs), formatBytes(totalSize))
	return nil
}

func printCleanResult(cmd *cobra.Command, result staging.CleanupResult) error {
	out := cmd.OutOrStdout()
	if result.Skipped != staging.SkipNone {
		fmt.Fprintf(out, "Cleanup skipped: %s\n", result.Skipped)
		return nil
	}
	if len(result.Removed) == 0 && len(result.Errors) == 0 {
		fmt.Fprintln(out, "No working directories to clean")
		return nil
	}
	if len(result.Errors) > 0 {
		fmt.Fprintf(out, "Removed %d directories, %d errors\n", len(result.Removed), len(result.Errors))
		for _, e := range result.Errors {
			fmt.Fprintf(out, "  Error: %s: %v\n", e.Path, e.Error)
		}
		return nil
	}
	fmt.Fprintf(out, "Removed %d directories\n", len(result.Removed))
	return nil
}
