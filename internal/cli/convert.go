package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/scribe/pkg/document"
)

// convertCommand creates the convert command.
func (c *CLI) convertCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "convert [input] [output]",
		Short: "Convert a document between JSON, TOML and YAML",
		Long: `Convert a document between JSON, TOML and YAML.

Both formats are chosen by file extension (.json, .toml, .yaml, .yml).
The document is validated on the way in.`,
		Example: `  scribe convert site.json site.yaml`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())
			prog := newProgress(logger)

			doc, err := document.Import(args[0])
			if err != nil {
				return err
			}
			if err := document.Export(doc, args[1]); err != nil {
				return err
			}

			prog.done("Converted "+args[0], doc)
			printSuccess("Converted %s", args[0])
			printFile(args[1])
			printNextStep("Render it", "scribe render "+args[1])
			return nil
		},
	}
}
