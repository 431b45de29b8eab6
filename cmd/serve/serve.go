// Package serve implements the API server command.
package serve

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/CyborPunk-2077/article-scraper/cmd/common"
	"github.com/CyborPunk-2077/article-scraper/internal/api"
	"github.com/CyborPunk-2077/article-scraper/internal/schedule"
)

const errChanBuffer = 1

// Command returns the serve command for use in the root command.
func Command() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the scraper API server",
		Long: `Serve the HTTP control surface for starting and inspecting scrape
sessions, running pipeline stages, and downloading artifacts. Configured
schedule jobs start recurring scrapes alongside the server.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			deps, err := common.NewCommandDeps()
			if err != nil {
				return fmt.Errorf("initialize dependencies: %w", err)
			}

			app, err := common.BuildApp(cmd.Context(), deps)
			if err != nil {
				return err
			}

			return run(app)
		},
	}
}

func run(app *common.App) error {
	log := app.Deps.Logger
	cfg := app.Deps.Config

	router := api.NewRouter(api.Deps{
		Pipeline: app.Pipeline,
		Store:    app.Store,
		Recorder: app.Recorder,
		Logger:   log,
	})
	server := api.NewServer(cfg.Server, router, log)

	var runner *schedule.Runner
	if len(cfg.Schedule.Jobs) > 0 {
		runner = schedule.NewRunner(cfg.Schedule.Jobs, app.Pipeline, log)
		if err := runner.Start(); err != nil {
			return fmt.Errorf("start schedule: %w", err)
		}
	}

	errChan := make(chan error, errChanBuffer)
	go func() {
		log.Info("Starting HTTP server", "address", cfg.Server.Address)
		if err := server.Start(); err != nil {
			errChan <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errChan:
		log.Error("Server error", "error", err)
		return fmt.Errorf("server error: %w", err)
	case sig := <-sigChan:
		return shutdown(app, server, runner, sig)
	}
}

// shutdown stops the schedule first so no new sessions start, then drains
// the HTTP server within the configured timeout.
func shutdown(app *common.App, server *api.Server, runner *schedule.Runner, sig os.Signal) error {
	log := app.Deps.Logger
	log.Info("Shutdown signal received", "signal", sig.String())

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		app.Deps.Config.Server.ShutdownTimeout,
	)
	defer cancel()

	if runner != nil {
		runner.Stop()
	}

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("stop server: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
