package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/ontolayout/internal/api"
	"github.com/matzehuels/ontolayout/pkg/config"
	"github.com/matzehuels/ontolayout/pkg/store"
	"github.com/matzehuels/ontolayout/pkg/store/mongo"
)

// serveCommand creates the serve command running the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
		noStore bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the layout API over HTTP",
		Long: `Serve the layout API over HTTP.

The server uses the [server], [cache] and [store] sections of the config
file. Without a [store] uri, diagrams are kept in memory and lost on exit.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.Server.Addr = addr
			}
			return c.runServe(cmd.Context(), cfg, noCache, noStore)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&noStore, "no-store", false, "disable the /v1/diagrams routes")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, cfg config.Config, noCache, noStore bool) error {
	runner, err := c.newRunner(ctx, cfg, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	var st store.Store
	switch {
	case noStore:
	case cfg.Store.URI != "":
		ms, err := mongo.Open(ctx, mongo.Options{
			URI:        cfg.Store.URI,
			Database:   cfg.Store.Database,
			Collection: cfg.Store.Collection,
		})
		if err != nil {
			return fmt.Errorf("open diagram store: %w", err)
		}
		st = ms
		c.Logger.Info("diagram store", "backend", "mongodb", "database", cfg.Store.Database)
	default:
		st = store.NewMemory()
		c.Logger.Info("diagram store", "backend", "memory")
	}
	if st != nil {
		defer st.Close(context.Background())
	}

	srv := api.New(runner, st, c.Logger)
	srv.Defaults = cfg.ApplyTo
	srv.Timeout = cfg.Server.RequestTimeout
	srv.MaxBodyBytes = cfg.Server.MaxBodyBytes

	printInfo("Serving on %s", StyleHighlight.Render(cfg.Server.Addr))
	return srv.ListenAndServe(ctx, cfg.Server.Addr)
}
