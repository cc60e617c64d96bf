package commands

import (
	"fmt"
	"log/slog"
	"text/tabwriter"
	"time"

	"github.com/osallek/osa-extractor/internal/savefile"
	"github.com/spf13/cobra"
)

func installListCmd(app *App) {
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List the saves which can be extracted",
		Long:  "List the saves found in the saves directory, most recently modified first.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			slog.Debug("Running list command")
			return app.listRun()
		},
	}

	app.cmd.AddCommand(listCmd)
}

func (a App) listRun() error {
	files, err := savefile.List(a.fs, a.config.SavesDir, a.config.SaveExtension)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		slog.Warn("No save found", "dir", a.config.SavesDir, "extension", a.config.SaveExtension)
		return nil
	}

	w := tabwriter.NewWriter(a.cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	for _, f := range files {
		fmt.Fprintf(w, "%s\t%s\t%s\n", f.Name, f.ModTime.Local().Format(time.DateTime), f.Path)
	}
	return w.Flush()
}
