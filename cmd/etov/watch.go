package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ersonp/etov/internal/application/handlers"
	"github.com/ersonp/etov/internal/domain/services"
	"github.com/ersonp/etov/internal/infrastructure/config"
	"github.com/ersonp/etov/internal/infrastructure/watcher"
)

type watchFlags struct {
	debounce time.Duration
	initial  bool
}

func newWatchCmd() *cobra.Command {
	var flags watchFlags

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Regenerate notes whenever the workbook changes",
		Long:  "Watches the configured workbook and runs the pipeline after each settled change. Stop with Ctrl+C.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, flags)
		},
	}

	cmd.Flags().DurationVar(&flags.debounce, "debounce", watcher.DefaultDebounce, "Quiet period before a change triggers a run")
	cmd.Flags().BoolVar(&flags.initial, "initial", true, "Run once before watching")

	return cmd
}

func runWatch(cmd *cobra.Command, flags watchFlags) error {
	ctx := cmd.Context()

	var switchedPolicy bool
	return withDeps(func(deps *Deps) error {
		if deps.Source.Path == "" {
			return fmt.Errorf("source.path is not set (use 'etov config set source.path <file>')")
		}
		if switchedPolicy {
			deps.Logger.Warn("accords.file_policy create fails once accord notes exist; watching with skip",
				zap.String("policy", string(services.AccordSkip)))
		}

		trigger := func(ctx context.Context) error {
			result, err := deps.RunHandler.Handle(ctx, deps.Source, deps.OutputDir, handlers.RunOptions{})
			if err != nil {
				return err
			}
			displayRunResult(cmd.OutOrStdout(), result)
			return nil
		}

		if flags.initial {
			if err := trigger(ctx); err != nil {
				deps.Logger.Error("initial run failed", zap.Error(err))
			}
		}

		w, err := watcher.New(deps.Source.Path, flags.debounce, trigger, deps.Logger)
		if err != nil {
			return fmt.Errorf("creating watcher: %w", err)
		}
		if err := w.Start(ctx); err != nil {
			return err
		}
		defer w.Stop()

		fmt.Fprintf(cmd.OutOrStdout(), "Watching %s (Ctrl+C to stop)\n", deps.Source.Path)
		<-w.Done()

		stats := w.Stats()
		fmt.Fprintf(cmd.OutOrStdout(), "Stopped after %d runs (%d failed)\n", stats.Runs, stats.Failures)
		return nil
	}, watchAccordPolicy(&switchedPolicy))
}

// watchAccordPolicy replaces the create policy with skip. Under create every
// run after the first fails on the accord notes already written.
func watchAccordPolicy(switched *bool) depsOption {
	return func(cfg *config.Config) {
		if services.AccordFilePolicy(cfg.Accords.FilePolicy) == services.AccordCreate {
			cfg.Accords.FilePolicy = string(services.AccordSkip)
			*switched = true
		}
	}
}
