// Package summarize implements the summarize stage command.
package summarize

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/CyborPunk-2077/article-scraper/cmd/common"
)

// Command returns the summarize command for use in the root command.
func Command() *cobra.Command {
	var sessionID string

	cmd := &cobra.Command{
		Use:   "summarize",
		Short: "Summarize a session's converted articles",
		Long: `Send every converted article of a session to the inference service for
a text summary, caption its stored image when one exists, and write the
results to the summary bucket. Requires the convert stage to have run.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			deps, err := common.NewCommandDeps()
			if err != nil {
				return fmt.Errorf("initialize dependencies: %w", err)
			}

			app, err := common.BuildApp(cmd.Context(), deps)
			if err != nil {
				return err
			}

			return run(cmd.Context(), app, sessionID)
		},
	}

	cmd.Flags().StringVar(&sessionID, "session", "", "session id whose articles to summarize")
	_ = cmd.MarkFlagRequired("session")

	return cmd
}

func run(ctx context.Context, app *common.App, sessionID string) error {
	if err := app.Pipeline.Summarize(ctx, sessionID); err != nil {
		return fmt.Errorf("summarize session %s: %w", sessionID, err)
	}

	snap, err := app.Pipeline.Status(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("session status: %w", err)
	}

	app.Deps.Logger.Info("Summarize stage finished",
		"session_id", sessionID,
		"processed", snap.Summarize.Processed,
		"failed", snap.Summarize.Failed,
	)
	return nil
}
