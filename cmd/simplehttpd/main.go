// Command simplehttpd runs simplehttp.Server as a standalone process,
// serving a static-file handler rooted at a configurable directory. It is
// not part of the embeddable core (spec.md §1 scopes the core to a
// library); this is the ambient CLI entry point grounded in the cobra +
// pflag command trees docker-compose and aws-karpenter-provider-aws both
// build on.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	simplehttp "github.com/trequend/http-server"
	"github.com/trequend/http-server/examples/staticfs"
)

func newRootCommand() *cobra.Command {
	var (
		addr       string
		root       string
		timeout    time.Duration
		workers    int
		backlog    int
		verbose    bool
	)

	cmd := &cobra.Command{
		Use:   "simplehttpd",
		Short: "Serve a directory over HTTP/1.x using simplehttp",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger(verbose)
			if err != nil {
				return fmt.Errorf("simplehttpd: %w", err)
			}
			defer logger.Sync() //nolint:errcheck

			handler, err := staticfs.NewHandler(root)
			if err != nil {
				return fmt.Errorf("simplehttpd: %w", err)
			}

			options := simplehttp.DefaultOptions()
			options.Logger = logger
			if timeout > 0 {
				options.Timeout = timeout
			}
			if workers > 0 {
				options.WorkerCount = workers
			}
			if backlog > 0 {
				options.Backlog = backlog
			}

			server := simplehttp.NewServer(handler, options)
			logger.Info("listening", zap.String("addr", addr), zap.String("root", root))
			return server.Listen(addr)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&addr, "addr", "127.0.0.1:3000", "address to bind")
	flags.StringVar(&root, "root", ".", "directory to serve")
	flags.DurationVar(&timeout, "timeout", 0, "per-connection read/write timeout (0 = server default)")
	flags.IntVar(&workers, "workers", 0, "fixed worker count (0 = one per logical CPU)")
	flags.IntVar(&backlog, "backlog", 0, "listen backlog (0 = server default)")
	flags.BoolVar(&verbose, "verbose", false, "enable debug logging")

	return cmd
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
