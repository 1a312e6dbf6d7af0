package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oneconcern/p4oo/pkg/entity"
)

var counterCmd = &cobra.Command{
	Use:   "counter",
	Short: "Commands to read and set counters",
}

var counterGetCmd = &cobra.Command{
	Use:   "get <name>",
	Short: "Print the value of a counter",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		conn, err := newConnection()
		if err != nil {
			wrapFatalln("connect", err)
			return
		}
		value, err := entity.NewCounter(args[0], entity.WithConnection(conn)).Value(context.Background())
		if err != nil {
			wrapFatalln("read counter "+args[0], err)
			return
		}
		fmt.Fprintln(cmd.OutOrStdout(), value)
	},
}

var counterSetCmd = &cobra.Command{
	Use:   "set <name> <value>",
	Short: "Set the value of a counter",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		conn, err := newConnection()
		if err != nil {
			wrapFatalln("connect", err)
			return
		}
		value, err := entity.NewCounter(args[0], entity.WithConnection(conn)).SetValue(context.Background(), args[1])
		if err != nil {
			wrapFatalln("set counter "+args[0], err)
			return
		}
		fmt.Fprintln(cmd.OutOrStdout(), value)
	},
}

func init() {
	counterCmd.AddCommand(counterGetCmd, counterSetCmd)
	rootCmd.AddCommand(counterCmd)
}
