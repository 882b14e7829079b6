package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/reqtrace/internal/server"
	"github.com/matzehuels/reqtrace/pkg/cache"
	"github.com/matzehuels/reqtrace/pkg/observability"
	"github.com/matzehuels/reqtrace/pkg/schema"
)

// apiKeyPrefix scopes server cache keys away from CLI runs.
const apiKeyPrefix = "api:"

// serveCommand runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr      string
		noCache   bool
		noMetrics bool
		useDB     bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the traceability API over HTTP",
		Long: `Serve the traceability API over HTTP.

Document generation is enabled when an API key is available. Prometheus
metrics are served on /metrics unless --no-metrics is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if addr != "" {
				cfg.Server.Addr = addr
			}

			runner, err := c.newRunner(ctx, cfg, noCache)
			if err != nil {
				return err
			}
			defer runner.Close()
			runner.Keyer = cache.NewScopedKeyer(runner.Keyer, apiKeyPrefix)

			deps := server.Deps{
				Runner:     runner,
				Examples:   cfg.Examples,
				SampleSize: cfg.Database.SampleSize,
				Logger:     c.Logger,
			}

			if !noMetrics {
				m := observability.NewMetrics(appName)
				observability.SetPipelineHooks(m)
				observability.SetCacheHooks(m)
				observability.SetGenerationHooks(m)
				defer observability.Reset()
				deps.Metrics = m
			}

			if useDB {
				pool, err := schema.Connect(ctx, cfg.Database.DSN)
				if err != nil {
					return err
				}
				defer pool.Close()
				in, err := schema.New(ctx, pool, cfg.Database.Schema)
				if err != nil {
					return err
				}
				runner.Schema = in
				deps.Database = in
			}

			if cfg.APIKey() != "" {
				gen, err := c.newGenerator(ctx, cfg, runner.Cache, runner.Keyer)
				if err != nil {
					return err
				}
				deps.Generator = gen
			} else {
				c.Logger.Warn("no API key, /v1/generate is disabled", "env", cfg.APIKeyEnv)
			}

			srv := server.New(deps, server.Options{
				Addr:         cfg.Server.Addr,
				ReadTimeout:  cfg.Server.ReadTimeout.Duration,
				WriteTimeout: cfg.Server.WriteTimeout.Duration,
				MaxBodyBytes: cfg.Server.MaxBodyBytes,
			})
			return srv.ListenAndServe(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&noMetrics, "no-metrics", false, "do not serve /metrics")
	cmd.Flags().BoolVar(&useDB, "db", false, "add database tables from the configured database")
	return cmd
}
