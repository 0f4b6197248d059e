// Command cbz-thumbnailer writes a preview image for a comic book archive.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/user-none/comicthumb/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := newRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		cli.NewLogger(os.Stderr, slog.LevelInfo).Error("cbz-thumbnailer exited with an error", slog.Any("error", err))
		stop()
		os.Exit(1)
	}
}
