// Command katalog-proxy-thumbnailer writes a preview image for a catalog
// proxy file, taken from the catalog's cover image or its first readable
// archive.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/user-none/comicthumb/internal/cli"
	"github.com/user-none/comicthumb/katalog"
	"github.com/user-none/comicthumb/proxy"
	"github.com/user-none/comicthumb/thumbnail"
)

func newRootCmd() *cobra.Command {
	var opts cli.Options

	rootCmd := &cobra.Command{
		Use:           "katalog-proxy-thumbnailer INPUT OUTPUT [SIZE]",
		Short:         "Generate thumbnails for katalog proxies",
		Args:          cobra.RangeArgs(2, 3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := opts.Load(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			size := cfg.Size
			if len(args) == 3 {
				if size, err = thumbnail.ParseSize(args[2]); err != nil {
					return err
				}
			}
			if err := size.Validate(); err != nil {
				return err
			}
			input, output := args[0], args[1]

			contents, err := proxy.ReadFile(input)
			if err != nil {
				return fmt.Errorf("could not read/parse %q: %w", input, err)
			}

			scanner := katalog.NewScanner(cfg.KatalogOptions(logger)...)
			img, src, err := scanner.Thumbnail(contents.KatalogPath(input), size.Width, size.Height)
			if err != nil {
				return fmt.Errorf("could not generate thumbnail for %q: %w", input, err)
			}

			enc := cfg.Encoder()
			enc.Format = thumbnail.FormatFromPath(output, enc.Format)
			if err := enc.Save(output, img); err != nil {
				return fmt.Errorf("could not save cover thumbnail read from %q to %q: %w", src, output, err)
			}

			logger.Debug("thumbnail written", slog.String("source", src), slog.String("output", output))
			return nil
		},
	}

	opts.Bind(rootCmd.Flags())
	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		cli.NewLogger(os.Stderr, slog.LevelInfo).Error("katalog-proxy-thumbnailer exited with an error", slog.Any("error", err))
		os.Exit(1)
	}
}
