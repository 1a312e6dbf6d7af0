package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Commands to manage the p4oo configuration",
	Long: `Commands to manage the p4oo configuration.

The configuration is read from p4oo.yaml in the current directory, $HOME/.p4oo or /etc/p4oo,
or from the file set by P4OO_CONFIG. Environment variables and flags take precedence.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if p4ooConfig == nil {
			wrapFatalln("no configuration loaded", nil)
			return
		}
		cfg := *p4ooConfig
		if cfg.Password != "" {
			cfg.Password = "****"
		}
		o, err := yaml.Marshal(cfg)
		if err != nil {
			wrapFatalln("could not serialize config to yaml", err)
			return
		}
		fmt.Fprint(cmd.OutOrStdout(), string(o))
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}
