// Package scrape implements the one-shot scrape command.
package scrape

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/CyborPunk-2077/article-scraper/cmd/common"
	"github.com/CyborPunk-2077/article-scraper/internal/session"
)

// pollInterval is how often the command checks the session status.
const pollInterval = 500 * time.Millisecond

// Command returns the scrape command for use in the root command.
func Command() *cobra.Command {
	var (
		seedURL string
		count   int
	)

	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Scrape a news site until the article target is reached",
		Long: `Start a scrape session from the given seed URL and wait for it to
finish. The session crawls same-host pages, keeps article-like ones, and
stores raw records, page HTML, and images in the blob store.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			deps, err := common.NewCommandDeps()
			if err != nil {
				return fmt.Errorf("initialize dependencies: %w", err)
			}

			app, err := common.BuildApp(cmd.Context(), deps)
			if err != nil {
				return err
			}

			return run(cmd.Context(), app, seedURL, count)
		},
	}

	cmd.Flags().StringVar(&seedURL, "url", "", "seed URL to scrape from")
	cmd.Flags().IntVar(&count, "count", 0,
		"article target for the session (0 uses crawler.default_target_count)")
	_ = cmd.MarkFlagRequired("url")

	return cmd
}

func run(ctx context.Context, app *common.App, seedURL string, count int) error {
	id, err := app.Pipeline.StartScrape(ctx, seedURL, count)
	if err != nil {
		return fmt.Errorf("start scrape: %w", err)
	}
	app.Deps.Logger.Info("Scrape session started", "session_id", id, "url", seedURL)

	snap, err := waitForTerminal(ctx, app, id)
	if err != nil {
		return err
	}

	renderSummary(snap)

	if snap.Status == session.StatusFailed {
		return fmt.Errorf("session %s failed: %s", id, snap.Error)
	}
	return nil
}

// waitForTerminal polls the session until it reaches a terminal status. An
// interrupt requests a stop and keeps waiting so in-flight pages drain.
func waitForTerminal(ctx context.Context, app *common.App, id string) (session.Snapshot, error) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case sig := <-sigChan:
			app.Deps.Logger.Info("Interrupt received, stopping session",
				"session_id", id,
				"signal", sig.String(),
			)
			if err := app.Pipeline.Stop(ctx, id); err != nil {
				return session.Snapshot{}, fmt.Errorf("stop session: %w", err)
			}
		case <-ticker.C:
			snap, err := app.Pipeline.Status(ctx, id)
			if err != nil {
				return session.Snapshot{}, fmt.Errorf("session status: %w", err)
			}
			switch snap.Status {
			case session.StatusCompleted, session.StatusStopped, session.StatusFailed:
				return snap, nil
			}
		}
	}
}

func renderSummary(snap session.Snapshot) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)

	t.AppendHeader(table.Row{
		"Session", "Status", "Accepted", "Target", "Discovered", "Rejected", "Failed", "Images", "Elapsed",
	})
	t.AppendRow(table.Row{
		snap.ID,
		snap.Status,
		snap.Counters.Accepted,
		snap.Target,
		snap.Counters.Discovered,
		snap.Counters.Rejected,
		snap.Counters.Failed,
		snap.Counters.ImagesResolved,
		elapsed(snap),
	})

	t.Render()
}

func elapsed(snap session.Snapshot) string {
	if snap.StartedAt.IsZero() || snap.FinishedAt.IsZero() {
		return "-"
	}
	return snap.FinishedAt.Sub(snap.StartedAt).Round(time.Millisecond).String()
}
