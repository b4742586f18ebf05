package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ersonp/etov/internal/application/handlers"
	"github.com/ersonp/etov/internal/infrastructure/config"
	"github.com/ersonp/etov/internal/infrastructure/relationaldb/sqlite"
)

type initFlags struct {
	source       string
	keywordSheet string
	accordSheet  string
	output       string
}

func newInitCmd() *cobra.Command {
	var flags initFlags

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize etov in the current vault",
		Long:  "Creates a .etov directory with default configuration and the run history database.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(cmd, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.source, "source", "s", "", "Workbook path")
	cmd.Flags().StringVar(&flags.keywordSheet, "keyword-sheet", "", "Name of the keyword sheet")
	cmd.Flags().StringVar(&flags.accordSheet, "accord-sheet", "", "Name of the accord sheet")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "Output directory inside the vault")

	return cmd
}

func runInit(cmd *cobra.Command, flags initFlags) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	settings := make(map[string]string)
	setIfChanged(cmd, settings, "source", "source.path", flags.source)
	setIfChanged(cmd, settings, "keyword-sheet", "source.keyword_sheet", flags.keywordSheet)
	setIfChanged(cmd, settings, "accord-sheet", "source.accord_sheet", flags.accordSheet)
	setIfChanged(cmd, settings, "output", "output.directory", flags.output)

	handler := handlers.NewInitHandler(openHistory)
	result, err := handler.Handle(cmd.Context(), cwd, handlers.InitOptions{Settings: settings})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created %s\n", result.ConfigPath)
	if result.HistoryPath != "" {
		fmt.Fprintf(out, "Created run history: %s\n", result.HistoryPath)
	}
	fmt.Fprintln(out, "etov initialized successfully!")

	return nil
}

func setIfChanged(cmd *cobra.Command, settings map[string]string, flag, key, value string) {
	if cmd.Flags().Changed(flag) {
		settings[key] = value
	}
}

// openHistory opens the sqlite run history of a vault.
func openHistory(basePath string) (handlers.SchemaEnsurer, func() error, error) {
	repo, err := sqlite.NewRepository(config.HistoryPath(basePath))
	if err != nil {
		return nil, nil, err
	}
	return repo, repo.Close, nil
}

var _ handlers.SchemaEnsurer = (*sqlite.Repository)(nil)
