package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ersonp/etov/internal/application/handlers"
)

func newRunCmd() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Generate perfume and accord notes from the workbook",
		Long: `Reads the keyword and accord sheets of the configured workbook and writes
one note per perfume plus one empty note per accord into the output directory.
Existing perfume notes are overwritten.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(cmd, dryRun)
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Build the notes in memory without writing anything")

	return cmd
}

func runRun(cmd *cobra.Command, dryRun bool) error {
	return withDeps(func(deps *Deps) error {
		result, err := deps.RunHandler.Handle(cmd.Context(), deps.Source, deps.OutputDir, handlers.RunOptions{DryRun: dryRun})
		if err != nil {
			return err
		}

		displayRunResult(cmd.OutOrStdout(), result)
		return nil
	})
}

func displayRunResult(w io.Writer, result *handlers.RunResult) {
	run := result.Run

	if result.Materialize == nil {
		fmt.Fprintf(w, "Dry run: %d perfumes, %d accords\n", run.Perfumes, run.Accords)
	} else {
		m := result.Materialize
		fmt.Fprintf(w, "Wrote %d files for %d perfumes and %d accords (created %d, overwritten %d, skipped %d)\n",
			m.Written(), run.Perfumes, run.Accords, m.Created, m.Overwritten, m.Skipped)
	}

	if len(run.Unresolved) > 0 {
		fmt.Fprintf(w, "\n%d accord rows matched no perfume:\n", len(run.Unresolved))
		for _, u := range run.Unresolved {
			fmt.Fprintf(w, "  %s\n", u)
		}
	}
}
