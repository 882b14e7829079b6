package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/reqtrace/pkg/graph"
	"github.com/matzehuels/reqtrace/pkg/layout"
	"github.com/matzehuels/reqtrace/pkg/render"
)

// renderCommand re-renders a graph saved with --format json. Positions are
// recomputed, so hand-edited graphs render too.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		formatsStr string
		output     string
		title      string
		idCode     string
		detailed   bool
		width      float64
		height     float64
	)

	cmd := &cobra.Command{
		Use:   "render [graph.json]",
		Short: "Render a saved traceability graph",
		Long: `Render a saved traceability graph.

The input is the JSON written by 'reqtrace graph --format json'. Use --id to
force another system's color scheme.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			formats, err := parseFormats(formatsStr, cfg.RenderFormat())
			if err != nil {
				return err
			}

			g, err := graph.ReadGraphFile(args[0])
			if err != nil {
				return fmt.Errorf("load graph %s: %w", args[0], err)
			}
			coords := layout.Compute(g)

			artifacts := make(map[render.Format][]byte, len(formats))
			for _, f := range formats {
				data, err := render.Render(cmd.Context(), g, coords, render.Options{
					Format:   f,
					Palette:  cfg.Palette,
					IDCode:   idCode,
					Title:    title,
					Width:    firstNonZero(width, cfg.Render.Width),
					Height:   firstNonZero(height, cfg.Render.Height),
					Detailed: detailed || cfg.Render.Detailed,
				})
				if err != nil {
					return err
				}
				artifacts[f] = data
			}

			paths, err := writeArtifacts(artifacts, formats, output)
			if err != nil {
				return err
			}
			printSuccess("Rendered %s", args[0])
			printStats(g.NodeCount(), g.EdgeCount(), false)
			for _, p := range paths {
				printFile(p)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVar(&formatsStr, "format", "", "output format(s) (comma-separated)")
	cmd.Flags().StringVar(&title, "title", "", "override the stored title")
	cmd.Flags().StringVar(&idCode, "id", "", "system id code selecting the color scheme")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "add node metadata to Graphviz labels")
	cmd.Flags().Float64Var(&width, "width", 0, "canvas width in pixels")
	cmd.Flags().Float64Var(&height, "height", 0, "canvas height in pixels")

	return cmd
}
