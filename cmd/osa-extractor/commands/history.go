package commands

import (
	"context"
	"fmt"
	"log/slog"
	"text/tabwriter"
	"time"

	"github.com/osallek/osa-extractor/internal/history"
	"github.com/spf13/cobra"
)

type historyConfig struct {
	Remote bool
	Limit  int
}

func installHistoryCmd(app *App) {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "List past submissions",
		Long: `List the saves submitted from this installation, newest first.

With --remote, the list is asked to the server instead, which also knows about submissions made
before the local history existed.`,
		Args: cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if app.config.History.Limit < 0 {
				app.cmd.SilenceUsage = false
				return fmt.Errorf("limit must be positive, got %d", app.config.History.Limit)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			slog.Debug("Running history command", "remote", app.config.History.Remote)
			if app.config.History.Remote {
				return app.remoteHistoryRun(cmd.Context())
			}
			return app.historyRun(cmd.Context())
		},
	}

	historyCmd.Flags().BoolVarP(&app.config.History.Remote, "remote", "r", false, "list the submissions known by the server")
	historyCmd.Flags().IntVarP(&app.config.History.Limit, "limit", "n", 0, "maximum number of submissions to list, 0 for all")

	app.cmd.AddCommand(historyCmd)
}

func (a App) historyRun(ctx context.Context) error {
	store, err := history.Open(a.config.DataDir)
	if err != nil {
		return err
	}
	defer store.Close()

	records, err := store.List(ctx, a.config.History.Limit)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(a.cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	for _, r := range records {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.SubmittedAt.Local().Format(time.DateTime), r.SaveName, r.SnapshotID, r.Link)
	}
	return w.Flush()
}

func (a App) remoteHistoryRun(ctx context.Context) error {
	client, err := a.newClient()
	if err != nil {
		return err
	}
	saves, err := client.ListSaves(ctx)
	if err != nil {
		return err
	}
	if n := a.config.History.Limit; n > 0 && len(saves) > n {
		saves = saves[:n]
	}

	w := tabwriter.NewWriter(a.cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	for _, s := range saves {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", s.CreationDate.Local().Format(time.DateTime), s.Name, s.ID, s.Link)
	}
	return w.Flush()
}
