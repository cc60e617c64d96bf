package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/osallek/osa-extractor/internal/extractor"
	"github.com/osallek/osa-extractor/internal/history"
	"github.com/osallek/osa-extractor/internal/identity"
	"github.com/osallek/osa-extractor/internal/progress"
	"github.com/osallek/osa-extractor/internal/savefile"
	"github.com/osallek/osa-extractor/internal/uploader"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

// errNoSave is returned when no save was given and none could be found.
var errNoSave = errors.New("no save to extract")

type extractConfig struct {
	PreviousID string
	Update     bool
}

func installExtractCmd(app *App) {
	extractCmd := &cobra.Command{
		Use:   "extract [SAVE](optional argument)",
		Short: "Extract a save and send it to the server",
		Long: `Extract a save and send it to the synchronization server.

SAVE is either a path or the name of a save of the saves directory. When it is not given, the most
recently modified save is extracted.`,
		Args: cobra.MaximumNArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if app.config.Extract.Update && app.config.Extract.PreviousID != "" {
				app.cmd.SilenceUsage = false
				return errors.New("--update and --previous-id cannot be used together")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			var name string
			if len(args) > 0 {
				name = args[0]
			}

			slog.Debug("Running extract command", "save", name)
			return app.extractRun(cmd.Context(), name)
		},
	}

	extractCmd.Flags().StringVar(&app.config.Extract.PreviousID, "previous-id", "", "id of an earlier submission of the same campaign, to update it")
	extractCmd.Flags().BoolVarP(&app.config.Extract.Update, "update", "u", false, "update the last submission of this save, as recorded in the history")

	app.cmd.AddCommand(extractCmd)
}

func (a App) extractRun(ctx context.Context, name string) error {
	save, err := a.findSave(name)
	if err != nil {
		return err
	}

	store, err := history.Open(a.config.DataDir)
	if err != nil {
		return err
	}
	defer store.Close()

	previousID := a.config.Extract.PreviousID
	if a.config.Extract.Update {
		r, ok, err := store.Latest(ctx, save.Name)
		if err != nil {
			return err
		}
		if ok {
			previousID = r.SnapshotID
		} else {
			slog.Warn("Save was never submitted, creating a new submission", "save", save.Name)
		}
	}

	client, err := a.newClient()
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	defer func() {
		if a.config.MetricsFile == "" {
			return
		}
		if mErr := prometheus.WriteToTextfile(a.config.MetricsFile, reg); mErr != nil {
			slog.Warn("Could not write metrics file", "file", a.config.MetricsFile, "error", mErr)
		}
	}()

	e := extractor.New(a.newParser(a.fs), client,
		extractor.WithFs(a.fs),
		extractor.WithTempDir(a.config.TempDir),
		extractor.WithWorkers(a.config.Workers),
		extractor.WithMaxImageSize(a.config.MaxImageSize),
		extractor.WithHistory(store),
		extractor.WithRegistry(reg),
	)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	run := e.Start(ctx, save.Path, previousID)
	printProgress(a.cmd.OutOrStdout(), run, a.config.Locale)

	res, err := run.Wait()
	if err != nil {
		return fmt.Errorf("extraction failed with code %s: %w", extractor.ErrorCode(err), err)
	}
	fmt.Fprintln(a.cmd.OutOrStdout(), res.Link)
	return nil
}

// findSave returns the save called name, or the most recent one when name is empty.
func (a App) findSave(name string) (savefile.File, error) {
	if name != "" {
		return savefile.Find(a.fs, a.config.SavesDir, a.config.SaveExtension, name)
	}

	files, err := savefile.List(a.fs, a.config.SavesDir, a.config.SaveExtension)
	if err != nil {
		return savefile.File{}, err
	}
	if len(files) == 0 {
		return savefile.File{}, fmt.Errorf("%w in %s", errNoSave, a.config.SavesDir)
	}
	return files[0], nil
}

// newClient returns a client of the server identified by the client id of this installation.
func (a App) newClient() (*uploader.Client, error) {
	clientID, err := identity.New(a.fs, a.config.DataDir).ClientID()
	if err != nil {
		return nil, err
	}

	return uploader.New(clientID,
		uploader.WithBaseServerURL(a.config.ServerURL),
		uploader.WithResponseTimeout(a.config.ResponseTimeout),
		uploader.WithFs(a.fs),
	)
}

// printProgress writes a line each time the run moves to another step or percentage, until it ends.
func printProgress(w io.Writer, run *extractor.Run, locale string) {
	states, unsubscribe := run.Subscribe()
	defer unsubscribe()

	var last progress.State
	for st := range states {
		if st.Stage == last.Stage && st.SubStage == last.SubStage && st.Percent == last.Percent {
			continue
		}
		last = st

		step := st.Stage
		if st.SubStage != progress.None {
			step = st.SubStage
		}
		fmt.Fprintf(w, "[%3d%%] %s\n", st.Percent, progress.Label(step, locale))
	}
}
