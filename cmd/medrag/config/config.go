// Package configcmder provides the config command for managing persistent
// medrag configuration stored in the .medrag/ directory.
package configcmder

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/medrag/pkg/cliui"
	"github.com/papercomputeco/medrag/pkg/config"
)

const configLongDesc string = `Manage persistent medrag configuration.

Configuration is stored as config.toml in the .medrag/ directory and provides
default values for command flags. CLI flags and MEDRAG_ environment variables
always take precedence over config file values.

Keys use dotted notation matching the TOML section structure, for example:
  corpus.source_path, snapshot.provider, embedding.model,
  retrieval.threshold, completion.model, api.listen, eventstream.brokers

Use subcommands to get, set, or list configuration values:
  medrag config set <key> <value>    Set a configuration value
  medrag config get <key>            Get a configuration value
  medrag config list                 List all configuration values

Examples:
  medrag config set corpus.source_path ./medical_encyclopedia.txt
  medrag config set embedding.model nomic-embed-text
  medrag config get completion.model
  medrag config list`

const configShortDesc string = "Manage persistent medrag configuration"

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}

// completeKeys offers config keys for the first positional argument.
func completeKeys(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) == 0 {
		return config.ValidConfigKeys(), cobra.ShellCompDirectiveNoFileComp
	}
	return nil, cobra.ShellCompDirectiveNoFileComp
}

func checkKey(key string) error {
	if !config.IsValidConfigKey(key) {
		return fmt.Errorf("unknown config key: %q\n\nValid keys: %s",
			key, strings.Join(config.ValidConfigKeys(), ", "))
	}
	return nil
}

// printTarget reports which config file is in effect.
func printTarget(w io.Writer, cfger *config.Configer) {
	target := cfger.GetTarget()
	if target != "" {
		fmt.Fprintf(w, "\n  %s %s\n\n",
			cliui.KeyStyle.Render("Config file:"),
			cliui.DimStyle.Render(target),
		)
		return
	}
	fmt.Fprintf(w, "\n  %s\n\n", cliui.DimStyle.Render("No config file found. Using defaults."))
}
