// Copyright © 2018 One Concern

package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/oneconcern/p4oo/pkg/config"
	"github.com/oneconcern/p4oo/pkg/core"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "p4oo",
	Short: "p4oo manipulates perforce objects",
	Long: `p4oo manipulates perforce changes, clients, labels, users and other specs as objects.

Queries are validated against a schema describing the perforce commands, before being run
with the p4 command line client.

Connection settings are taken from the usual P4PORT, P4USER, P4CLIENT... environment variables,
or from a p4oo.yaml configuration file.
`,
	SilenceUsage: true,
}

var p4ooConfig *config.Config

// extraConnectionOptions are appended to the options of every connection. Tests use it to plug a fake server.
var extraConnectionOptions []core.ConnectionOption

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		osExit(1)
	}
}

func init() {
	log.SetFlags(0)
	cobra.OnInitialize(initConfig)

	addPortFlag(rootCmd)
	addUserFlag(rootCmd)
	addClientFlag(rootCmd)
	addProgramFlag(rootCmd)
	addSchemaFlag(rootCmd)
	addLogLevelFlag(rootCmd)
	addTemplateFlag(rootCmd)

	bindFlags(rootCmd.PersistentFlags(), map[string]string{
		"port":     "port",
		"user":     "user",
		"client":   "client",
		"program":  "program",
		"schema":   "schema",
		"loglevel": "log-level",
	})
}

// bindFlags lets flags take precedence over configuration keys
func bindFlags(fs *pflag.FlagSet, keys map[string]string) {
	for key, flag := range keys {
		if err := viper.BindPFlag(key, fs.Lookup(flag)); err != nil {
			wrapFatalln("binding flag "+flag, err)
		}
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	var err error
	p4ooConfig, err = config.Load(viper.GetViper())
	if err != nil {
		logFatalln(err)
		return
	}
	if used := viper.ConfigFileUsed(); used != "" {
		if _, statErr := os.Stat(used); statErr == nil {
			infoLogger.Println("Using config file:", used)
		}
	}
}

func newConnection() (*core.Connection, error) {
	cfg := config.Config{}
	if p4ooConfig != nil {
		cfg = *p4ooConfig
	}
	return core.NewConnectionFromConfig(&cfg, extraConnectionOptions...)
}
