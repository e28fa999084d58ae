package cli

import (
	"fmt"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/matzehuels/scribe/internal/config"
)

// configCommand creates the config inspection command.
func (c *CLI) configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the effective configuration",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the merged configuration as TOML",
		RunE: func(cmd *cobra.Command, args []string) error {
			return toml.NewEncoder(cmd.OutOrStdout()).Encode(configView(c.settings()))
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the default config file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			if c.configFile != "" {
				fmt.Fprintln(cmd.OutOrStdout(), c.configFile)
				return nil
			}
			dir, err := config.Dir()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), filepath.Join(dir, config.FileName))
			return nil
		},
	})

	return cmd
}

// configView mirrors the config file layout, with durations spelled the way
// they are written in the file ("24h0m0s" rather than nanoseconds).
func configView(cfg *config.Config) map[string]map[string]any {
	return map[string]map[string]any{
		"render": {
			"indent_unit":      cfg.Render.IndentUnit,
			"indent_width":     cfg.Render.IndentWidth,
			"tabs":             cfg.Render.Tabs,
			"max_depth":        cfg.Render.MaxDepth,
			"trailing_newline": cfg.Render.TrailingNewline,
		},
		"cache": {
			"backend":        cfg.Cache.Backend,
			"dir":            cfg.Cache.Dir,
			"ttl":            cfg.Cache.TTL.String(),
			"memory_entries": cfg.Cache.MemoryEntries,
			"prefix":         cfg.Cache.Prefix,
		},
		"redis": {
			"addr": cfg.Redis.Addr,
			"db":   cfg.Redis.DB,
		},
		"server": {
			"addr":             cfg.Server.Addr,
			"shutdown_timeout": cfg.Server.ShutdownTimeout.String(),
		},
	}
}
