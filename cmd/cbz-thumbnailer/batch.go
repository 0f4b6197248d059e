package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/user-none/comicthumb/batch"
	"github.com/user-none/comicthumb/katalog"
	"github.com/user-none/comicthumb/thumbnail"
)

// outputFlags are the output settings shared by batch and watch
type outputFlags struct {
	outDir  string
	format  string
	size    thumbnail.Size
	workers int
}

func (f *outputFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.outDir, "out-dir", "o", "", "directory for thumbnails (default: next to each archive)")
	cmd.Flags().StringVar(&f.format, "format", "", "output format: png or jpeg (default from config)")
	cmd.Flags().Var(&f.size, "size", "thumbnail size, WIDTHxHEIGHT or DIM (default from config)")
	cmd.Flags().IntVarP(&f.workers, "workers", "j", 0, "concurrent thumbnails (default from config)")
}

// resolve fills unset flags from the config and returns the output extension
func (f *outputFlags) resolve(cmd *cobra.Command, a *app) (string, error) {
	if !cmd.Flags().Changed("size") {
		f.size = a.cfg.Size
	}
	if err := f.size.Validate(); err != nil {
		return "", err
	}
	if !cmd.Flags().Changed("workers") {
		f.workers = a.cfg.Workers
	}

	name := f.format
	if name == "" {
		name = a.cfg.Format
	}
	format, err := thumbnail.ParseFormat(name)
	if err != nil {
		return "", err
	}
	if format == thumbnail.FormatJPEG {
		return ".jpg", nil
	}
	return ".png", nil
}

func newBatchCmd(a *app) *cobra.Command {
	var flags outputFlags

	cmd := &cobra.Command{
		Use:   "batch ARCHIVE|DIR...",
		Short: "Generate thumbnails for many archives",
		Long: `Generate thumbnails for many archives concurrently. Directories are
searched recursively for archives. One failing archive does not stop the
others; the command exits non-zero if any failed.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ext, err := flags.resolve(cmd, a)
			if err != nil {
				return err
			}

			inputs, err := a.expandInputs(args)
			if err != nil {
				return err
			}
			return a.runBatch(cmd.Context(), batch.Jobs(inputs, flags.outDir, ext), flags)
		},
	}

	flags.bind(cmd)
	return cmd
}

func (a *app) runBatch(ctx context.Context, jobs []batch.Job, flags outputFlags) error {
	results := batch.Run(ctx, jobs, flags.workers, func(ctx context.Context, job batch.Job) error {
		return a.thumbnailFile(job.Input, job.Output, flags.size)
	})

	failed := batch.Failed(results)
	for _, r := range failed {
		a.logger.Error("thumbnail failed", slog.String("input", r.Job.Input), slog.Any("error", r.Err))
	}
	a.logger.Info("batch finished",
		slog.Int("total", len(results)),
		slog.Int("failed", len(failed)))

	if len(failed) > 0 {
		return fmt.Errorf("%d of %d thumbnails failed", len(failed), len(results))
	}
	return nil
}

// expandInputs replaces directory arguments with the archives inside them
func (a *app) expandInputs(args []string) ([]string, error) {
	scanner := katalog.NewScanner(
		katalog.WithArchiveExtensions(a.cfg.ArchiveExtensions),
		katalog.WithLogger(a.logger))

	var inputs []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("could not open %q: %w", arg, err)
		}
		if !info.IsDir() {
			inputs = append(inputs, arg)
			continue
		}

		found, err := scanner.Scan(arg)
		if err != nil {
			return nil, err
		}
		for _, f := range found {
			if f.Kind == katalog.KindArchive {
				inputs = append(inputs, f.Path)
			}
		}
	}
	return inputs, nil
}
