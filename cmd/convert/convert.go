// Package convert implements the convert stage command.
package convert

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/CyborPunk-2077/article-scraper/cmd/common"
)

// Command returns the convert command for use in the root command.
func Command() *cobra.Command {
	var sessionID string

	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert a session's article records to plain text",
		Long: `Render every raw article record of a scrape session into a plain-text
artifact (Title/Author/Date header plus body) in the text bucket. The session
may come from an earlier process; only its stored artifacts are required.`,
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

	cmd.Flags().StringVar(&sessionID, "session", "", "session id whose records to convert")
	_ = cmd.MarkFlagRequired("session")

	return cmd
}

func run(ctx context.Context, app *common.App, sessionID string) error {
	if err := app.Pipeline.ConvertToText(ctx, sessionID); err != nil {
		return fmt.Errorf("convert session %s: %w", sessionID, err)
	}

	snap, err := app.Pipeline.Status(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("session status: %w", err)
	}

	app.Deps.Logger.Info("Convert stage finished",
		"session_id", sessionID,
		"processed", snap.Convert.Processed,
		"failed", snap.Convert.Failed,
	)
	return nil
}
