package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/ersonp/etov/internal/domain/entities"
)

type historyFlags struct {
	limit      int
	unresolved string
}

func newHistoryCmd() *cobra.Command {
	var flags historyFlags

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List past runs",
		Long:  "Lists recorded runs, newest first. With --unresolved, lists the accord rows of one run that matched no perfume.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(cmd, flags)
		},
	}

	cmd.Flags().IntVarP(&flags.limit, "limit", "l", DefaultHistoryLimit, "Maximum number of runs to display")
	cmd.Flags().StringVarP(&flags.unresolved, "unresolved", "u", "", "Show unresolved keys of the given run ID")

	return cmd
}

func runHistory(cmd *cobra.Command, flags historyFlags) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	return withDeps(func(deps *Deps) error {
		if flags.unresolved != "" {
			keys, err := deps.HistoryHandler.Unresolved(ctx, flags.unresolved)
			if err != nil {
				return err
			}
			displayUnresolved(out, flags.unresolved, keys)
			return nil
		}

		runs, err := deps.HistoryHandler.List(ctx, flags.limit)
		if err != nil {
			return err
		}
		displayRuns(out, runs)
		return nil
	})
}

func displayRuns(w io.Writer, runs []entities.Run) {
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return
	}

	fmt.Fprintf(w, "Showing %d runs:\n\n", len(runs))
	for i := range runs {
		displayRun(w, &runs[i])
	}
}

func displayRun(w io.Writer, run *entities.Run) {
	fmt.Fprintf(w, "ID: %s\n", run.ID)
	fmt.Fprintf(w, "  [%s] %s\n", run.Status, run.StartedAt.Local().Format(time.DateTime))
	fmt.Fprintf(w, "  Source: %s -> %s\n", run.SourcePath, run.OutputDir)
	fmt.Fprintf(w, "  Perfumes: %d  Accords: %d  Files: %d  Unresolved: %d\n",
		run.Perfumes, run.Accords, run.FilesWritten, len(run.Unresolved))
	if d := run.Duration(); d > 0 {
		fmt.Fprintf(w, "  Duration: %s\n", d.Round(time.Millisecond))
	}
	if run.Error != "" {
		fmt.Fprintf(w, "  Error: %s\n", run.Error)
	}
	fmt.Fprintln(w)
}

func displayUnresolved(w io.Writer, runID string, keys []entities.UnresolvedKey) {
	if len(keys) == 0 {
		fmt.Fprintf(w, "No unresolved keys for run %s.\n", runID)
		return
	}

	fmt.Fprintf(w, "%d unresolved keys for run %s:\n", len(keys), runID)
	for _, k := range keys {
		fmt.Fprintf(w, "  %s\n", k)
	}
}
