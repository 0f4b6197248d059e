package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/user-none/comicthumb/config"
	"github.com/user-none/comicthumb/internal/cli"
	"github.com/user-none/comicthumb/thumbnail"
)

// app carries the state shared by all subcommands once flags are parsed
type app struct {
	opts   cli.Options
	cfg    *config.Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "cbz-thumbnailer INPUT OUTPUT [SIZE]",
		Short: "Generate a thumbnail for a comic book archive",
		Long: `Generate a thumbnail for a comic book archive (cbz, cbr, cb7, cbt).

The first entry, in byte-wise name order, that decodes as an image is
scaled to fit SIZE, given as WIDTHxHEIGHT or a single dimension. The
output format follows the OUTPUT extension (png or jpeg).`,
		Args:          cobra.RangeArgs(2, 3),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := a.opts.Load(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			a.cfg, a.logger = cfg, logger
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			size := a.cfg.Size
			if len(args) == 3 {
				parsed, err := thumbnail.ParseSize(args[2])
				if err != nil {
					return err
				}
				size = parsed
			}
			if err := size.Validate(); err != nil {
				return err
			}
			return a.thumbnailFile(args[0], args[1], size)
		},
	}

	a.opts.Bind(rootCmd.PersistentFlags())
	rootCmd.AddCommand(newBatchCmd(a), newWatchCmd(a))
	return rootCmd
}

// thumbnailFile writes the thumbnail of the archive at input to output
func (a *app) thumbnailFile(input, output string, size thumbnail.Size) error {
	file, err := os.Open(input)
	if err != nil {
		return fmt.Errorf("could not open %q: %w", input, err)
	}
	defer file.Close()

	img, err := thumbnail.Extract(file, size.Width, size.Height, a.cfg.ThumbnailOptions(a.logger)...)
	if err != nil {
		return fmt.Errorf("could not generate thumbnail for %q: %w", input, err)
	}

	enc := a.cfg.Encoder()
	enc.Format = thumbnail.FormatFromPath(output, enc.Format)
	if err := enc.Save(output, img); err != nil {
		return fmt.Errorf("could not save thumbnail for %q to %q: %w", input, output, err)
	}

	a.logger.Debug("thumbnail written",
		slog.String("input", input),
		slog.String("output", output),
		slog.String("size", size.String()))
	return nil
}
