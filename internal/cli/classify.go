package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/matzehuels/reqtrace/pkg/classify"
	"github.com/matzehuels/reqtrace/pkg/detect"
	"github.com/matzehuels/reqtrace/pkg/trace"
)

// classifyCommand prints the sentences of each requirement category.
func (c *CLI) classifyCommand() *cobra.Command {
	var (
		input  inputFlags
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "classify [text]",
		Short: "Show which sentences fall into which requirement category",
		RunE: func(cmd *cobra.Command, args []string) error {
			text, _, err := input.read(cmd, args)
			if err != nil {
				return err
			}
			classifier, err := c.newClassifier()
			if err != nil {
				return fmt.Errorf("load sentence tokenizer: %w", err)
			}
			cats := classifier.Classify(text)
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), cats)
			}
			printCategories(cmd.OutOrStdout(), cats)
			return nil
		},
	}

	cmd.Flags().StringVarP(&input.file, "file", "f", "", "read requirement text from a file (- for stdin)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

// detectCommand prints the detected system profile.
func (c *CLI) detectCommand() *cobra.Command {
	var (
		input  inputFlags
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "detect [text]",
		Short: "Detect the kind of system the requirements describe",
		RunE: func(cmd *cobra.Command, args []string) error {
			text, _, err := input.read(cmd, args)
			if err != nil {
				return err
			}
			profile, keyword := detect.New(nil).Match(text)
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), map[string]any{
					"profile": profile,
					"keyword": keyword,
					"title":   trace.Title(profile),
				})
			}
			w := cmd.OutOrStdout()
			printKeyValueTo(w, "System", profile.TypeName)
			printKeyValueTo(w, "ID code", profile.IDCode)
			if keyword != "" {
				printKeyValueTo(w, "Keyword", keyword)
			} else {
				printKeyValueTo(w, "Keyword", styleMuted.Render("none, generic profile"))
			}
			printKeyValueTo(w, "Title", trace.Title(profile))
			return nil
		},
	}

	cmd.Flags().StringVarP(&input.file, "file", "f", "", "read requirement text from a file (- for stdin)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printCategories lists each category with its sentences, in canonical order.
func printCategories(w io.Writer, cats classify.CategoryMap) {
	for _, cat := range classify.Categories() {
		sentences := cats[cat]
		fmt.Fprintf(w, "%s %s\n", styleHeading.Render(string(cat)), styleMuted.Render(fmt.Sprintf("(%d)", len(sentences))))
		for i, s := range sentences {
			fmt.Fprintf(w, "  %s %s\n", styleID.Render(fmt.Sprintf("%s_%d", cat.Prefix(), i)), s)
		}
	}
}
