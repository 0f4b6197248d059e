// Command katalog-proxy creates and opens catalog proxy files.
//
// With a CATALOG argument it writes a proxy for that directory. Without
// one it opens the catalog named by the proxy in the file manager and
// refreshes the stored name hash.
package main

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/user-none/comicthumb/internal/cli"
	"github.com/user-none/comicthumb/proxy"
)

// openCatalog is replaced in tests
var openCatalog = proxy.Open

func newRootCmd() *cobra.Command {
	var skipHash proxy.TriState
	var logLevel string

	rootCmd := &cobra.Command{
		Use:   "katalog-proxy PROXY_FILE [CATALOG]",
		Short: "Create and open proxies for catalogs",
		Long: `Create and open proxies for catalogs.

PROXY_FILE is the file to open or create; '-' uses stdin/stdout.
When CATALOG is given a proxy pointing at it is written, otherwise the
catalog named by the proxy is opened.`,
		Args:          cobra.RangeArgs(1, 2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			level := slog.LevelInfo
			if logLevel != "" {
				if err := level.UnmarshalText([]byte(logLevel)); err != nil {
					return err
				}
			}
			r := runner{
				stdin:  cmd.InOrStdin(),
				stdout: cmd.OutOrStdout(),
				logger: cli.NewLogger(cmd.ErrOrStderr(), level),
			}

			if len(args) == 2 {
				return r.create(args[0], args[1], skipHash)
			}
			return r.open(args[0], skipHash)
		},
	}

	flags := rootCmd.Flags()
	flags.Var(&skipHash, "skip-hash", "do not update/include name hash (always, never or auto)")
	flags.Lookup("skip-hash").NoOptDefVal = "always"
	flags.StringVar(&logLevel, "log-level", "", "log level: debug, info, warn or error")
	return rootCmd
}

type runner struct {
	stdin  io.Reader
	stdout io.Writer
	logger *slog.Logger
}

// create writes a proxy for catalog. In auto mode the name hash is included.
// A relative catalog is hashed from the proxy's directory, the same place
// open resolves it from.
func (r runner) create(proxyFile, catalog string, skip proxy.TriState) error {
	contents := &proxy.Contents{Katalog: catalog}
	if !skip.Resolve(func() bool { return false }) {
		h := proxy.FromKatalog(contents.KatalogPath(proxyFile))
		contents.NameHash = &h
	}

	if err := r.write(proxyFile, contents); err != nil {
		return fmt.Errorf("could not write to %q: %w", proxyFile, err)
	}
	r.logger.Debug("proxy written", slog.String("proxy", proxyFile), slog.String("katalog", catalog))
	return nil
}

// open opens the proxied catalog and rewrites the proxy if its hash changed
func (r runner) open(proxyFile string, skip proxy.TriState) error {
	contents, err := r.read(proxyFile)
	if err != nil {
		return fmt.Errorf("could not read/parse %q: %w", proxyFile, err)
	}

	dir := contents.KatalogPath(proxyFile)
	if err := openCatalog(dir); err != nil {
		return fmt.Errorf("could not open %q: %w", dir, err)
	}

	changed := contents.Refresh(dir, skip)
	if !changed && proxyFile != "-" {
		return nil
	}

	if err := r.write(proxyFile, contents); err != nil {
		return fmt.Errorf("could not write to %q: %w", proxyFile, err)
	}
	if changed {
		r.logger.Info("name hash updated", slog.String("proxy", proxyFile), slog.String("katalog", dir))
	}
	return nil
}

func (r runner) read(proxyFile string) (*proxy.Contents, error) {
	if proxyFile == "-" {
		return proxy.Read(bufio.NewReader(r.stdin))
	}
	return proxy.ReadFile(proxyFile)
}

func (r runner) write(proxyFile string, contents *proxy.Contents) error {
	if proxyFile == "-" {
		return contents.Write(r.stdout)
	}
	return contents.WriteFile(proxyFile)
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		cli.NewLogger(os.Stderr, slog.LevelInfo).Error("katalog-proxy exited with an error", slog.Any("error", err))
		os.Exit(1)
	}
}
