package cli

import (
	"github.com/spf13/cobra"

	"github.com/sagenex/teamtree/internal/server"
	"github.com/sagenex/teamtree/pkg/snapshot"
)

// serveCommand creates the serve command, which runs the HTTP service until
// interrupted.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr        string
		noCache     bool
		noSnapshots bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP service",
		Long: `Run the teamtree HTTP service.

Every request's bearer token is forwarded to the Sagenex API, so the service
itself holds no member credentials. Rendered artifacts go through the
configured cache; snapshot routes use the configured snapshot store.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := c.Config

			runner, err := c.newRunner(ctx, noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			var store snapshot.Store
			if !noSnapshots {
				if store, err = c.newSnapshotStore(ctx); err != nil {
					return err
				}
				defer store.Close()
			}

			if addr == "" {
				addr = cfg.Server.Addr
			}
			srv, err := server.New(server.Config{
				Addr:            addr,
				BackendURL:      cfg.API.URL,
				Runner:          runner,
				Snapshots:       store,
				Defaults:        c.pipelineOptions(),
				Logger:          c.Logger,
				ReadTimeout:     cfg.Server.ReadTimeout,
				WriteTimeout:    cfg.Server.WriteTimeout,
				ShutdownTimeout: cfg.Server.ShutdownTimeout,
			})
			if err != nil {
				return err
			}
			return srv.Serve(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8090)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the artifact cache")
	cmd.Flags().BoolVar(&noSnapshots, "no-snapshots", false, "disable the snapshot routes")

	return cmd
}
