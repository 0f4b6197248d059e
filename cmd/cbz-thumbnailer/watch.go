package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/user-none/comicthumb/batch"
	"github.com/user-none/comicthumb/watch"
)

func newWatchCmd(a *app) *cobra.Command {
	var flags outputFlags
	var initial bool

	cmd := &cobra.Command{
		Use:   "watch DIR...",
		Short: "Regenerate thumbnails when archives change",
		Long: `Watch directories and regenerate an archive's thumbnail after it is
created or modified. Subdirectories are not watched.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ext, err := flags.resolve(cmd, a)
			if err != nil {
				return err
			}

			handler := func(path string) {
				job := batch.Jobs([]string{path}, flags.outDir, ext)[0]
				if err := a.thumbnailFile(job.Input, job.Output, flags.size); err != nil {
					a.logger.Error("thumbnail failed", slog.String("input", path), slog.Any("error", err))
				}
			}

			w, err := watch.New(handler,
				watch.WithExtensions(a.cfg.ArchiveExtensions),
				watch.WithLogger(a.logger))
			if err != nil {
				return err
			}
			defer w.Close()

			for _, dir := range args {
				if err := w.Add(dir); err != nil {
					return err
				}
			}

			if initial {
				inputs, err := a.expandInputs(args)
				if err != nil {
					return err
				}
				// failures are already logged and must not stop the watcher
				_ = a.runBatch(cmd.Context(), batch.Jobs(inputs, flags.outDir, ext), flags)
			}

			return w.Run(cmd.Context())
		},
	}

	flags.bind(cmd)
	cmd.Flags().BoolVar(&initial, "initial", false, "thumbnail existing archives before watching")
	return cmd
}
