package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/reqtrace/pkg/artifacts"
	"github.com/matzehuels/reqtrace/pkg/config"
	"github.com/matzehuels/reqtrace/pkg/detect"
	"github.com/matzehuels/reqtrace/pkg/errors"
	"github.com/matzehuels/reqtrace/pkg/prompts"
	"github.com/matzehuels/reqtrace/pkg/schema"
)

type generateOpts struct {
	input   inputFlags
	kinds   []string
	outDir  string
	table   string
	useDB   bool
	noCache bool
}

// generateCommand asks the model for the design and verification documents.
func (c *CLI) generateCommand() *cobra.Command {
	var opts generateOpts

	cmd := &cobra.Command{
		Use:   "generate [text]",
		Short: "Generate design and verification documents with a language model",
		Long: `Generate design and verification documents with a language model.

Four documents are produced concurrently: system designs, verification
requirements and models, traceability, and verification conditions. With
--db the database schema and a few sample rows of the table named in the
text ("... table orders ...") or by --table are added to the design prompt.

The API key is read from the variable named by api_key_env in the config
(GEMINI_API_KEY by default), or from a .env file.`,
		Example: `  reqtrace generate -f requirements.txt
  reqtrace generate -f reqs.txt --kind traceability --kind verification_conditions
  reqtrace generate -f reqs.txt --db --table sensors -o docs/`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			return c.runGenerate(cmd, args, cfg, &opts)
		},
	}

	opts.input.register(cmd)
	cmd.Flags().StringSliceVar(&opts.kinds, "kind", nil, "documents to generate (default all): "+kindList())
	cmd.Flags().StringVarP(&opts.outDir, "output", "o", "", "write one markdown file per document into this directory")
	cmd.Flags().StringVar(&opts.table, "table", "", "table to sample for the design prompt")
	cmd.Flags().BoolVar(&opts.useDB, "db", false, "add schema context from the configured database")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "do not reuse cached model responses")
	return cmd
}

func kindList() string {
	names := make([]string, len(prompts.Kinds))
	for i, k := range prompts.Kinds {
		names[i] = string(k)
	}
	return strings.Join(names, ", ")
}

func parseKinds(names []string) ([]prompts.Kind, error) {
	var kinds []prompts.Kind
	for _, n := range names {
		k := prompts.Kind(strings.TrimSpace(n))
		if !slices.Contains(prompts.Kinds, k) {
			return nil, errors.New(errors.ErrCodeInvalidInput, "unknown document kind %q (want one of %s)", n, kindList())
		}
		kinds = append(kinds, k)
	}
	return kinds, nil
}

func (c *CLI) runGenerate(cmd *cobra.Command, args []string, cfg *config.Config, opts *generateOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	text, document, err := opts.input.read(cmd, args)
	if err != nil {
		return err
	}
	if strings.TrimSpace(text) == "" {
		return errors.New(errors.ErrCodeInvalidInput, "no requirement text given")
	}
	if err := errors.ValidateText(text); err != nil {
		return err
	}
	kinds, err := parseKinds(opts.kinds)
	if err != nil {
		return err
	}
	if opts.table != "" {
		if err := errors.ValidateTableName(opts.table); err != nil {
			return err
		}
	}

	classifier, err := c.newClassifier()
	if err != nil {
		return fmt.Errorf("load sentence tokenizer: %w", err)
	}
	ch, err := c.newCache(ctx, cfg, opts.noCache)
	if err != nil {
		return err
	}
	defer ch.Close()
	gen, err := c.newGenerator(ctx, cfg, ch, nil)
	if err != nil {
		return err
	}

	req := artifacts.Request{
		Requirements: text,
		Categories:   classifier.Classify(text),
		Profile:      detect.DetectSystemType(text),
		Examples:     cfg.Examples,
		Document:     document,
		SampleTable:  opts.table,
		Kinds:        kinds,
	}
	if opts.useDB {
		pool, err := schema.Connect(ctx, cfg.Database.DSN)
		if err != nil {
			return err
		}
		defer pool.Close()
		in, err := schema.New(ctx, pool, cfg.Database.Schema)
		if err != nil {
			return err
		}
		for _, w := range artifacts.AttachDatabase(ctx, &req, in, cfg.Database.SampleSize) {
			printWarning("%s", w)
		}
	}

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Generating documents for %s...", req.Profile.TypeName))
	spinner.Start()
	done := startTimer(logger)
	res, err := gen.Generate(ctx, req)
	if err != nil {
		spinner.StopWithError("Generation cancelled")
		return err
	}
	spinner.Stop()
	done("Generated %d documents", len(res.Documents))

	if opts.outDir == "" {
		fmt.Fprintln(cmd.OutOrStdout(), res.Combined())
	} else if err := writeDocuments(opts.outDir, res.Documents); err != nil {
		return err
	}

	if failed := res.Err(); failed != nil {
		for _, d := range res.Documents {
			if d.Err != nil {
				printError("%s: %v", d.Title, d.Err)
			}
		}
		return fmt.Errorf("some documents failed: %w", failed)
	}
	return nil
}

// writeDocuments writes each successful document to dir/<kind>.md.
func writeDocuments(dir string, docs []artifacts.Document) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	for _, d := range docs {
		if d.Err != nil {
			continue
		}
		path := filepath.Join(dir, string(d.Kind)+".md")
		body := "# " + d.Title + "\n\n" + strings.TrimSpace(d.Text) + "\n"
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		printFile(path)
	}
	return nil
}
