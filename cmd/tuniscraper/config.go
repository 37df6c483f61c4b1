package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
	"tuniscraper/pkg/config"
	"tuniscraper/pkg/ui"
)

const defaultConfigPath = ".tuniscraper.yaml"

func newConfigCmd(opts *options) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration files",
	}

	configCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Write the default configuration to a file",
		Long: `Write the default configuration, including the CSS selectors matching the
site's markup, to ./.tuniscraper.yaml or the path given with --config.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := opts.configFile
			if path == "" {
				path = defaultConfigPath
			}
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("configuration file %s already exists", path)
			}
			if err := config.DefaultConfig().Save(path); err != nil {
				return err
			}
			ui.PrintSuccess(cmd.OutOrStdout(), "Configuration written to "+path)
			return nil
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Long: `Show the configuration after applying the config file, environment
variables and defaults.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.configFile, nil)
			if err != nil {
				return err
			}
			data, err := yaml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("failed to marshal config: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := config.Load(opts.configFile, nil); err != nil {
				var joined interface{ Unwrap() []error }
				if errors.As(err, &joined) {
					for _, e := range joined.Unwrap() {
						fmt.Fprintln(cmd.ErrOrStderr(), ui.Red("  - "+e.Error()))
					}
				}
				return err
			}
			ui.PrintSuccess(cmd.OutOrStdout(), "Configuration is valid")
			return nil
		},
	})

	return configCmd
}
