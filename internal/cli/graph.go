package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/scribe/pkg/document"
	"github.com/matzehuels/scribe/pkg/pipeline"
)

// graphOpts holds the command-line flags for the graph command.
type graphOpts struct {
	output   string // output file path; empty writes to stdout
	format   string // dot or svg; inferred from output extension when empty
	detailed bool   // add depth and child counts to labels
	refresh  bool   // skip the cache lookup
}

// graphCommand creates the graph command.
func (c *CLI) graphCommand() *cobra.Command {
	var opts graphOpts

	cmd := &cobra.Command{
		Use:   "graph [file]",
		Short: "Draw a document as a tree diagram",
		Long: `Draw a document as a top-down tree diagram.

Blocks become boxes and lines become notes, with an edge from each block to
its children. DOT output is produced directly; SVG output is laid out by
Graphviz.`,
		Example: `  scribe graph site.yaml > site.dot
  scribe graph site.yaml -o site.svg
  scribe graph site.yaml -f svg --detailed -o site.svg`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runGraph(cmd.Context(), cmd.OutOrStdout(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "output format: dot, svg (default from -o extension, else dot)")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show depth and child count in labels")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "ignore cached output")

	return cmd
}

// graphFormat picks the diagram format from the flag or the output extension.
func graphFormat(flag, output string) string {
	if flag != "" {
		return strings.ToLower(flag)
	}
	if ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(output), ".")); ext == pipeline.FormatSVG {
		return pipeline.FormatSVG
	}
	return pipeline.FormatDOT
}

func (c *CLI) runGraph(ctx context.Context, w io.Writer, input string, opts graphOpts) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	doc, err := document.Import(input)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx)
	if err != nil {
		return err
	}
	defer runner.Close()

	popts := pipeline.Options{
		Format:   graphFormat(opts.format, opts.output),
		Detailed: opts.detailed,
		Refresh:  opts.refresh,
		Logger:   logger,
	}

	var spinner *Spinner
	if opts.output != "" && popts.Format == pipeline.FormatSVG {
		spinner = newSpinner(ctx, os.Stderr, layoutMessage(doc, popts.Format))
		spinner.Start()
	}
	data, cached, err := runner.GraphWithCacheInfo(ctx, doc, popts)
	if spinner != nil {
		spinner.Stop()
		if spinner.Cancelled() {
			logger.Warn("layout interrupted", "path", input)
		}
	}
	if err != nil {
		return fmt.Errorf("graph %s: %w", input, err)
	}

	if opts.output == "" {
		_, err := w.Write(data)
		return err
	}

	if err := writeOutput(opts.output, data); err != nil {
		return err
	}
	prog.done("Generated "+popts.Format+" diagram", doc)
	printSuccess("Generated %s diagram", strings.ToUpper(popts.Format))
	printFile(opts.output)
	printStats(doc.Stats(), cached)
	return nil
}
