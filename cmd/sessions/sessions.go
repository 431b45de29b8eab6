// Package sessions implements the session listing command.
package sessions

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/CyborPunk-2077/article-scraper/cmd/common"
	"github.com/CyborPunk-2077/article-scraper/internal/storage"
)

// Command returns the sessions command for use in the root command.
func Command() *cobra.Command {
	var role string

	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List scrape sessions found in the blob store",
		Long: `List every session that left artifacts in the chosen role bucket,
with its article and artifact counts. Sessions live in this process show
their current status; sessions from earlier runs show as stored.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			deps, err := common.NewCommandDeps()
			if err != nil {
				return fmt.Errorf("initialize dependencies: %w", err)
			}

			app, err := common.BuildApp(cmd.Context(), deps)
			if err != nil {
				return err
			}

			return run(cmd.Context(), app, role)
		},
	}

	cmd.Flags().StringVar(&role, "role", string(storage.RoleRaw),
		"artifact role to inspect (raw, text, summary)")

	return cmd
}

type row struct {
	id        string
	status    string
	articles  int
	artifacts int
}

func run(ctx context.Context, app *common.App, role string) error {
	if !storage.ValidRole(role) {
		return fmt.Errorf("%w: %q", storage.ErrUnknownRole, role)
	}

	ids, err := app.Store.Sessions(ctx, storage.Role(role))
	if err != nil {
		return fmt.Errorf("list sessions: %w", err)
	}

	rows := make(map[string]*row, len(ids))
	for _, id := range ids {
		keys, listErr := app.Store.List(ctx, storage.Role(role), id+"/")
		if listErr != nil {
			return fmt.Errorf("list artifacts for %s: %w", id, listErr)
		}
		rows[id] = &row{
			id:        id,
			status:    "stored",
			articles:  countArticles(keys),
			artifacts: len(keys),
		}
	}

	// Sessions registered in this process override the stored placeholder.
	for _, snap := range app.Arena.Snapshots() {
		r, ok := rows[snap.ID]
		if !ok {
			r = &row{id: snap.ID}
			rows[snap.ID] = r
		}
		r.status = snap.Status
	}

	if len(rows) == 0 {
		app.Deps.Logger.Info("No sessions found", "role", role)
		return nil
	}

	render(rows)
	return nil
}

// countArticles counts the distinct article ids under a session prefix.
func countArticles(keys []string) int {
	seen := make(map[string]struct{})
	for _, key := range keys {
		parts := strings.Split(key, "/")
		if len(parts) != 3 {
			continue
		}
		seen[parts[1]] = struct{}{}
	}
	return len(seen)
}

func render(rows map[string]*row) {
	ids := make([]string, 0, len(rows))
	for id := range rows {
		ids = append(ids, id)
	}
	// session_<unix-seconds> ids sort chronologically; newest first.
	sort.Sort(sort.Reverse(sort.StringSlice(ids)))

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)

	t.AppendHeader(table.Row{"Session", "Status", "Articles", "Artifacts"})
	for _, id := range ids {
		r := rows[id]
		t.AppendRow(table.Row{r.id, r.status, r.articles, r.artifacts})
	}

	t.Render()
}
