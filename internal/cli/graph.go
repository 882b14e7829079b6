package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/reqtrace/pkg/config"
	"github.com/matzehuels/reqtrace/pkg/pipeline"
	"github.com/matzehuels/reqtrace/pkg/render"
	"github.com/matzehuels/reqtrace/pkg/schema"
	"github.com/matzehuels/reqtrace/pkg/trace"
)

const defaultOutputBase = "traceability"

// graphOpts holds the command-line flags for the graph command.
type graphOpts struct {
	input    inputFlags
	output   string
	formats  string
	title    string
	width    float64
	height   float64
	detailed bool
	noCache  bool
	refresh  bool
	useDB    bool
	base64   bool
}

// graphCommand creates the graph command, the main entry point: requirement
// text in, traceability diagram out.
func (c *CLI) graphCommand() *cobra.Command {
	var opts graphOpts

	cmd := &cobra.Command{
		Use:   "graph [text]",
		Short: "Build and render the traceability graph for requirement text",
		Long: `Build and render the traceability graph for requirement text.

The text is taken from the arguments, --file, or stdin with --file -.
Sentences are classified into performance, stability, safety and
verification requirements; each becomes a leaf under its constraint or
model node. The system type, and with it the color scheme and title, is
detected from keywords in the text.`,
		Example: `  reqtrace graph "The autonomous vehicle must brake safely."
  reqtrace graph -f requirements.txt --format svg,png -o out/trace
  reqtrace graph -f reqs.txt --pdf spec.pdf --db --detailed
  reqtrace graph -f reqs.txt --format png --base64 > trace.b64`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			return c.runGraph(cmd, args, cfg, &opts)
		},
	}

	opts.input.register(cmd)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVar(&opts.formats, "format", "", "output format(s): dot, svg, png, pdf, raster, json (comma-separated)")
	cmd.Flags().StringVar(&opts.title, "title", "", "diagram title (default derived from the detected system)")
	cmd.Flags().Float64Var(&opts.width, "width", 0, "canvas width in pixels")
	cmd.Flags().Float64Var(&opts.height, "height", 0, "canvas height in pixels")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "add node metadata to Graphviz labels")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "re-render even when cached")
	cmd.Flags().BoolVar(&opts.useDB, "db", false, "add database tables from the configured database")
	cmd.Flags().BoolVar(&opts.base64, "base64", false, "print the artifact base64-encoded to stdout instead of writing a file")

	return cmd
}

func (c *CLI) runGraph(cmd *cobra.Command, args []string, cfg *config.Config, opts *graphOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	text, document, err := opts.input.read(cmd, args)
	if err != nil {
		return err
	}
	formats, err := parseFormats(opts.formats, cfg.RenderFormat())
	if err != nil {
		return err
	}
	if opts.base64 && len(formats) != 1 {
		return fmt.Errorf("--base64 needs exactly one format, got %d", len(formats))
	}

	runner, err := c.newRunner(ctx, cfg, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	if opts.useDB {
		closeDB, err := attachSchema(ctx, runner, cfg)
		if err != nil {
			return err
		}
		defer closeDB()
	}

	popts := pipeline.Options{
		Text:     text,
		Document: document,
		HasPDF:   opts.input.pdf != "",
		Formats:  formats,
		Palette:  cfg.Palette,
		Title:    opts.title,
		Width:    firstNonZero(opts.width, cfg.Render.Width),
		Height:   firstNonZero(opts.height, cfg.Render.Height),
		Detailed: opts.detailed || cfg.Render.Detailed,
		Refresh:  opts.refresh,
		Logger:   logger,
	}

	done := startTimer(logger)
	res, err := runner.Execute(ctx, popts)
	if err != nil {
		return err
	}
	done("Traced %s", res.Profile.TypeName)

	for _, w := range res.Warnings {
		printWarning("%s", w)
	}
	if res.PaletteFallback {
		printDetail("No color scheme for %s, using the default palette", res.Palette)
	}
	if len(res.Artifacts) == 0 {
		return fmt.Errorf("no output could be rendered")
	}

	if opts.base64 {
		data := res.Artifacts[formats[0]]
		_, err := fmt.Fprintln(cmd.OutOrStdout(), render.EncodeBase64(data))
		return err
	}

	paths, err := writeArtifacts(res.Artifacts, formats, opts.output)
	if err != nil {
		return err
	}
	printSuccess("%s", displayTitle(res, popts.Title))
	printStats(res.Stats.NodeCount, res.Stats.EdgeCount, res.CacheInfo.RenderHit)
	for _, p := range paths {
		printFile(p)
		if filepath.Ext(p) == ".json" {
			printNextStep("Re-render with", appName+" render "+p)
		}
	}
	return nil
}

// attachSchema connects to the configured database and lets the runner add
// table nodes. The returned func closes the pool.
func attachSchema(ctx context.Context, runner *pipeline.Runner, cfg *config.Config) (func(), error) {
	pool, err := schema.Connect(ctx, cfg.Database.DSN)
	if err != nil {
		return nil, err
	}
	in, err := schema.New(ctx, pool, cfg.Database.Schema)
	if err != nil {
		pool.Close()
		return nil, err
	}
	runner.Schema = in
	return pool.Close, nil
}

// writeArtifacts writes each rendered format and returns the paths in
// format order. A single format goes to output as given; several formats
// share output as a base name with per-format extensions.
func writeArtifacts(artifacts map[render.Format][]byte, formats []render.Format, output string) ([]string, error) {
	var rendered []render.Format
	for _, f := range formats {
		if _, ok := artifacts[f]; ok {
			rendered = append(rendered, f)
		}
	}

	var paths []string
	for _, f := range rendered {
		path := artifactPath(output, f, len(rendered) > 1)
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create output dir: %w", err)
			}
		}
		if err := os.WriteFile(path, artifacts[f], 0o644); err != nil {
			return nil, fmt.Errorf("write %s: %w", f, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func artifactPath(output string, f render.Format, multiple bool) string {
	if output == "" {
		output, multiple = defaultOutputBase, true
	}
	if !multiple {
		return output
	}
	base := strings.TrimSuffix(output, filepath.Ext(output))
	if f == render.FormatRaster {
		// png and raster share an extension
		return base + ".raster.png"
	}
	return base + "." + f.Extension()
}

func displayTitle(res *pipeline.Result, override string) string {
	if override != "" {
		return override
	}
	if t, ok := res.Graph.Meta()[trace.MetaTitle].(string); ok && t != "" {
		return t
	}
	return res.Profile.TypeName
}

func firstNonZero(vals ...float64) float64 {
	for _, v := range vals {
		if v != 0 {
			return v
		}
	}
	return 0
}
