package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/matzehuels/reqtrace/pkg/schema"
)

// schemaCommand prints what the configured database contributes to graphs
// and prompts.
func (c *CLI) schemaCommand() *cobra.Command {
	var (
		sample string
		rows   int
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Inspect the configured database schema",
		Long: `Inspect the configured database schema.

The connection string comes from database.dsn in the config or
REQTRACE_DATABASE_URL.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			pool, err := schema.Connect(ctx, cfg.Database.DSN)
			if err != nil {
				return err
			}
			defer pool.Close()
			in, err := schema.New(ctx, pool, cfg.Database.Schema)
			if err != nil {
				return err
			}

			snap, err := in.Schema(ctx)
			if err != nil {
				return err
			}
			var sampled *schema.Rows
			if sample != "" {
				if rows <= 0 {
					rows = cfg.Database.SampleSize
				}
				if sampled, err = in.Sample(ctx, sample, rows); err != nil {
					return err
				}
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), map[string]any{"schema": snap, "sample": sampled})
			}
			printSchema(cmd.OutOrStdout(), snap)
			if sampled != nil {
				fmt.Fprintln(cmd.OutOrStdout())
				fmt.Fprint(cmd.OutOrStdout(), sampled.Format())
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&sample, "sample", "", "also print sample rows of this table")
	cmd.Flags().IntVar(&rows, "rows", 0, "number of sample rows (default from config)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func printSchema(w io.Writer, snap schema.Snapshot) {
	if len(snap.Tables()) == 0 {
		fmt.Fprintln(w, styleMuted.Render("no tables"))
		return
	}
	for _, t := range snap.Tables() {
		fmt.Fprintln(w, styleHeading.Render(t))
		for _, col := range snap.Columns(t) {
			printKeyValueTo(w, "  "+col, snap[t][col])
		}
	}
}
