package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newWatchCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "watch [file...]",
		Short: "Re-ingest history export files whenever they change",
		Long: "Watches the given export files (or watch.files from the config), ingests\n" +
			"them once at startup, and again after every change, until interrupted.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := g.setup(false)
			if err != nil {
				return err
			}
			defer logger.Sync()

			files := args
			if len(files) == 0 {
				files = cfg.Watch.Files
			}
			if len(files) == 0 {
				return fmt.Errorf("no files to watch: pass paths or set watch.files in the config")
			}

			components, err := initializeComponents(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer components.Close()

			w := newExportWatcher(files, components.Indexer, logger)
			if err := w.Start(cmd.Context()); err != nil {
				return fmt.Errorf("failed to start watcher: %w", err)
			}
			defer w.Stop()
			w.SyncExistingFiles()
			fmt.Fprintf(cmd.ErrOrStderr(), "Watching %d file(s); press Ctrl+C to stop.\n", len(w.Files()))

			<-cmd.Context().Done()
			return nil
		},
	}
}
