package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/oneconcern/p4oo/pkg/schema"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Commands to explore the schema of perforce commands",
}

var schemaListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the commands known to the schema",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		conn, err := newConnection()
		if err != nil {
			wrapFatalln("load schema", err)
			return
		}
		for _, name := range conn.Registry().Commands() {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
	},
}

var schemaShowCmd = &cobra.Command{
	Use:   "show [<command>]",
	Short: "Describe a command, or print the built-in schema document",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			fmt.Fprint(cmd.OutOrStdout(), string(schema.DefaultDocument()))
			return
		}
		conn, err := newConnection()
		if err != nil {
			wrapFatalln("load schema", err)
			return
		}
		desc, err := conn.Registry().Lookup(args[0])
		if err != nil {
			wrapFatalln("lookup", err)
			return
		}
		describeCommand(cmd, desc)
	},
}

func describeCommand(cmd *cobra.Command, desc *schema.Command) {
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "command: %s\n", desc.Name())
	if desc.IsSpecCommand() {
		idAttr, _ := desc.IDAttribute()
		fmt.Fprintf(w, "spec: id=%s required=%t forceable=%t\n", idAttr, desc.IsIDRequired(), desc.IsForceable())
		fmt.Fprintf(w, "attributes: %s\n", strings.Join(desc.Attributes(), ", "))
	}
	for _, opt := range desc.Filters() {
		kind := "filter"
		if opt.Config {
			kind = "config"
		}
		fmt.Fprintf(w, "%s: %s option=%q types=[%s] multiplicity=%s\n", kind, opt.Name, opt.Flag, opt.AcceptedTypes(), opt.Multiplicity)
	}
	if out, ok := desc.Output(); ok {
		fmt.Fprintf(w, "output: %s by %s\n", out.Type, out.IDField)
	}
}

func init() {
	schemaCmd.AddCommand(schemaListCmd, schemaShowCmd)
	rootCmd.AddCommand(schemaCmd)
}
