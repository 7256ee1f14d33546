package main

import (
	"cvewatch/internal/di"
	"cvewatch/internal/models"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

type exitError struct {
	code    int
	outcome models.Outcome
}

func (e *exitError) Error() string {
	return fmt.Sprintf("cycle finished with outcome %s", e.outcome)
}

var onceCmd = &cobra.Command{
	Use:   "once",
	Short: "Run a single cycle and exit",
	Long: "Run a single cycle and exit. The exit status is 0 when the cycle succeeded or had\n" +
		"nothing to do, 2 on partial success and 1 when nothing could be delivered.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cycleRunner, err := di.InitRunner(&flags)
		if err != nil {
			return err
		}
		if err = cycleRunner.Restore(); err != nil {
			return fmt.Errorf("restore watermarks: %w", err)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		summary, _ := cycleRunner.Trigger(ctx)
		fmt.Fprintf(cmd.OutOrStdout(), "cycle %s: %s\n", summary.ID, summary)
		return outcomeError(summary)
	},
}

func outcomeError(summary *models.CycleSummary) error {
	switch summary.Outcome {
	case models.OutcomePartial:
		return &exitError{code: 2, outcome: summary.Outcome}
	case models.OutcomeFailure:
		return &exitError{code: 1, outcome: summary.Outcome}
	}
	return nil
}
