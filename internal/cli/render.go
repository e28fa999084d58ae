package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/scribe/pkg/document"
	"github.com/matzehuels/scribe/pkg/pipeline"
)

// renderOpts holds the command-line flags for the render command that are
// not part of the configuration. Indentation flags are read through config.
type renderOpts struct {
	output  string // output file path; empty writes to stdout
	refresh bool   // skip the cache lookup
	stats   bool   // print document statistics after writing a file
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Render a document to indented text",
		Long: `Render a JSON, TOML or YAML document as brace-delimited, indented text.

Each block is written as "name {", its children one level deeper, and a
closing "}". An empty block is written as "name {}".`,
		Example: `  scribe render site.yaml
  scribe render site.toml --indent 4 -o site.conf
  scribe render site.json --tabs --max-depth 16`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd.Context(), cmd.OutOrStdout(), args[0], opts)
		},
	}

	addIndentFlags(cmd)
	cmd.Flags().Int("max-depth", pipeline.DefaultMaxDepth, "maximum block nesting (0 = unlimited)")
	cmd.Flags().Bool("trailing-newline", true, "end the output with a newline")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "ignore cached output")
	cmd.Flags().BoolVar(&opts.stats, "stats", false, "print document statistics")

	return cmd
}

// addIndentFlags registers the flags bound to render.indent_width and
// render.tabs.
func addIndentFlags(cmd *cobra.Command) {
	cmd.Flags().Int("indent", 1, "spaces per nesting level")
	cmd.Flags().Bool("tabs", false, "indent with one tab per level")
}

// runRender imports input and writes the rendered text to opts.output or w.
func (c *CLI) runRender(ctx context.Context, w io.Writer, input string, opts renderOpts) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	doc, err := document.Import(input)
	if err != nil {
		return err
	}
	logger.Debug("loaded document", "path", input, "roots", doc.Len())

	runner, err := c.newRunner(ctx)
	if err != nil {
		return err
	}
	defer runner.Close()

	popts := c.settings().PipelineOptions()
	popts.Refresh = opts.refresh
	popts.Logger = logger

	out, cached, err := runner.RenderWithCacheInfo(ctx, doc, popts)
	if err != nil {
		return fmt.Errorf("render %s: %w", input, err)
	}

	if opts.output == "" {
		_, err := io.WriteString(w, out)
		return err
	}

	if err := writeOutput(opts.output, []byte(out)); err != nil {
		return err
	}
	prog.done("Rendered "+input, doc)
	printSuccess("Rendered %s", input)
	printFile(opts.output)
	if opts.stats {
		printStats(doc.Stats(), cached)
	}
	return nil
}

// writeOutput writes data to path, creating parent directories.
func writeOutput(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	return os.WriteFile(path, data, 0o644)
}
