// Package cli implements the reqtrace command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/reqtrace/pkg/artifacts"
	"github.com/matzehuels/reqtrace/pkg/buildinfo"
	"github.com/matzehuels/reqtrace/pkg/cache"
	"github.com/matzehuels/reqtrace/pkg/classify"
	"github.com/matzehuels/reqtrace/pkg/config"
	"github.com/matzehuels/reqtrace/pkg/llm"
	"github.com/matzehuels/reqtrace/pkg/pdftext"
	"github.com/matzehuels/reqtrace/pkg/pipeline"
	"github.com/matzehuels/reqtrace/pkg/render"
)

const appName = "reqtrace"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	cfg        *config.Config

	// Factories replaced in tests.
	newClassifier func() (*classify.Classifier, error)
	newModel      func(ctx context.Context, cfg *config.Config) (llm.Generator, error)
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger:        newLogger(w, level),
		newClassifier: classify.New,
		newModel:      newGeminiModel,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "reqtrace turns requirement text into traceability diagrams",
		Long: `reqtrace classifies free-form requirement text, detects the kind of system it
describes and draws the layered traceability graph from system requirements
down to individual requirement sentences. It can also generate design and
verification documents with a language model.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/reqtrace/config.toml)")

	root.AddCommand(c.graphCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.classifyCommand())
	root.AddCommand(c.detectCommand())
	root.AddCommand(c.generateCommand())
	root.AddCommand(c.schemaCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig loads and validates the configuration once per process.
func (c *CLI) loadConfig() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	if err := config.LoadEnv(); err != nil {
		c.Logger.Warn("ignoring .env", "err", err)
	}
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c.cfg = cfg
	return cfg, nil
}

// =============================================================================
// Factories
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, cfg *config.Config, noCache bool) (*pipeline.Runner, error) {
	classifier, err := c.newClassifier()
	if err != nil {
		return nil, fmt.Errorf("load sentence tokenizer: %w", err)
	}
	ch, err := c.newCache(ctx, cfg, noCache)
	if err != nil {
		return nil, err
	}
	r := pipeline.NewRunner(classifier, ch, nil, c.Logger)
	if cfg.Cache.TTL.Duration > 0 {
		r.TTL = cfg.Cache.TTL.Duration
	}
	return r, nil
}

// newCache picks Redis when an address is configured, else the file cache.
// An unusable file cache directory degrades to no caching.
func (c *CLI) newCache(ctx context.Context, cfg *config.Config, noCache bool) (cache.Cache, error) {
	if noCache || cfg.Cache.Disabled {
		return cache.NewNullCache(), nil
	}
	if cfg.Cache.RedisAddr != "" {
		return cache.NewRedisCache(ctx, cache.RedisOptions{
			Addr: cfg.Cache.RedisAddr,
			DB:   cfg.Cache.RedisDB,
		})
	}
	dir, err := c.cacheDir(cfg)
	if err != nil {
		c.Logger.Debug("no cache directory", "err", err)
		return cache.NewNullCache(), nil
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		c.Logger.Warn("file cache unavailable", "dir", dir, "err", err)
		return cache.NewNullCache(), nil
	}
	return fc, nil
}

func (c *CLI) cacheDir(cfg *config.Config) (string, error) {
	if cfg.Cache.Dir != "" {
		return cfg.Cache.Dir, nil
	}
	return cache.DefaultDir()
}

// newGenerator wraps the configured model with caching, retries and a
// circuit breaker. A nil keyer uses the default keys.
func (c *CLI) newGenerator(ctx context.Context, cfg *config.Config, ch cache.Cache, keyer cache.Keyer) (*artifacts.Generator, error) {
	model, err := c.newModel(ctx, cfg)
	if err != nil {
		return nil, err
	}
	breaker := llm.NewBreaker(model, llm.DefaultBreakerConfig(cfg.Model))
	cached := llm.NewCached(breaker, ch, keyer, cfg.Model)
	return artifacts.New(cached, c.Logger).WithConcurrency(cfg.Concurrency), nil
}

func newGeminiModel(ctx context.Context, cfg *config.Config) (llm.Generator, error) {
	return llm.NewGemini(ctx, llm.GeminiConfig{
		APIKey:      cfg.APIKey(),
		Model:       cfg.Model,
		Temperature: cfg.Temperature,
	})
}

// =============================================================================
// Input
// =============================================================================

// inputFlags are shared by the commands that read requirement text.
type inputFlags struct {
	file string
	pdf  string
}

func (f *inputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.file, "file", "f", "", "read requirement text from a file (- for stdin)")
	cmd.Flags().StringVar(&f.pdf, "pdf", "", "attach a PDF document")
}

// read returns the requirement text from args, --file or stdin, and the
// extracted text of --pdf.
func (f *inputFlags) read(cmd *cobra.Command, args []string) (text, document string, err error) {
	switch {
	case len(args) > 0:
		text = strings.Join(args, " ")
	case f.file == "-":
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", "", fmt.Errorf("read stdin: %w", err)
		}
		text = string(data)
	case f.file != "":
		data, err := os.ReadFile(f.file)
		if err != nil {
			return "", "", fmt.Errorf("read requirements: %w", err)
		}
		text = string(data)
	}

	if f.pdf != "" {
		fh, err := os.Open(f.pdf)
		if err != nil {
			return "", "", fmt.Errorf("open PDF: %w", err)
		}
		defer fh.Close()
		document, err = pdftext.ReadAll(fh)
		if err != nil {
			return "", "", err
		}
	}
	return text, document, nil
}

// parseFormats parses a comma-separated format list.
func parseFormats(s string, fallback render.Format) ([]render.Format, error) {
	if strings.TrimSpace(s) == "" {
		return []render.Format{fallback}, nil
	}
	var out []render.Format
	for _, part := range strings.Split(s, ",") {
		f, err := render.ParseFormat(part)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}
