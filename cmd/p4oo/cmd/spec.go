package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/oneconcern/p4oo/pkg/core"
	"github.com/oneconcern/p4oo/pkg/model"

	// registers typed entities with the materializer
	_ "github.com/oneconcern/p4oo/pkg/entity"
)

// specCmd is the root command for spec related subcommands
var specCmd = &cobra.Command{
	Use:   "spec",
	Short: "Commands to read, save and delete specs",
	Long: `Commands to read, save and delete perforce specs: branch, change, client, depot, group, job, label, user.

Types are case insensitive. "workspace" stands for client and "changelist" for change.`,
}

// parseType resolves a type name given on the command line, e.g. "client" or "Changelist"
func parseType(name string) (model.Type, error) {
	if typ, isSet, ok := model.ParseType(name); ok && !isSet {
		return typ, nil
	}
	if name != "" {
		title := strings.ToUpper(name[:1]) + strings.ToLower(name[1:])
		if typ, isSet, ok := model.ParseType(title); ok && !isSet {
			return typ, nil
		}
	}
	return "", fmt.Errorf("unknown type %q", name)
}

// specFromArgs builds a spec object from a type and an optional identifier
func specFromArgs(args []string) (*core.Spec, error) {
	typ, err := parseType(args[0])
	if err != nil {
		return nil, err
	}
	if !typ.IsSpec() {
		return nil, fmt.Errorf("%s is not a spec type", typ)
	}
	var id string
	if len(args) > 1 {
		id = args[1]
	}

	conn, err := newConnection()
	if err != nil {
		return nil, err
	}
	obj, err := core.Construct(typ, id, conn)
	if err != nil {
		return nil, err
	}
	sb, ok := obj.(interface{ AsSpec() *core.Spec })
	if !ok {
		return nil, fmt.Errorf("%s is not a spec type", typ)
	}
	return sb.AsSpec(), nil
}

var specGetCmd = &cobra.Command{
	Use:   "get <type> [<id>] [<attribute>...]",
	Short: "Read a spec",
	Long: `Read a spec and print its attributes as JSON, or only the requested attributes.

Without an identifier, clients and users default to the current ones.`,
	Example: `% p4oo spec get client
% p4oo spec get change 1234 description status`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		spec, err := specFromArgs(args)
		if err != nil {
			wrapFatalln("spec", err)
			return
		}

		if len(args) <= 2 {
			data, err := spec.JSON(ctx)
			if err != nil {
				wrapFatalln("read "+spec.String(), err)
				return
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return
		}

		for _, attr := range args[2:] {
			value, err := spec.GetString(ctx, attr)
			if err != nil {
				wrapFatalln("read "+attr, err)
				return
			}
			fmt.Fprintln(cmd.OutOrStdout(), value)
		}
	},
}

var specSetCmd = &cobra.Command{
	Use:   "set <type> <id> [<attribute>=<value>...]",
	Short: "Save a spec",
	Long: `Set attributes of a spec and save it. The identifier of the saved spec is printed.

Use "new" as the identifier to create changes and jobs, which are named by the server.
List attributes, such as a view, take one line per value separated by new lines.`,
	Example: `% p4oo spec set change new description="fix the build"
% p4oo spec set client ws --clear host
% p4oo spec set label release-1.0 owner=alice --force`,
	Args: cobra.MinimumNArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		spec, err := specFromArgs(args[:2])
		if err != nil {
			wrapFatalln("spec", err)
			return
		}
		attrs, order, err := parseAttributes(args[2:])
		if err != nil {
			wrapFatalln("invalid attribute", err)
			return
		}

		for _, name := range order {
			value := attrs[name]
			if strings.Contains(value, "\n") && !strings.EqualFold(name, "description") {
				_ = spec.Set(name, strings.Split(strings.TrimRight(value, "\n"), "\n"))
				continue
			}
			_ = spec.Set(name, value)
		}
		for _, name := range p4ooFlags.spec.clear {
			_ = spec.Clear(name)
		}

		if err := spec.Save(ctx, p4ooFlags.spec.force); err != nil {
			wrapFatalln("save "+spec.String(), err)
			return
		}
		if p4ooFlags.spec.json {
			data, err := spec.JSON(ctx)
			if err != nil {
				wrapFatalln("read "+spec.String(), err)
				return
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return
		}
		fmt.Fprintln(cmd.OutOrStdout(), spec.ObjectID())
	},
}

var specDeleteCmd = &cobra.Command{
	Use:     "delete <type> <id>",
	Short:   "Delete a spec",
	Example: `% p4oo spec delete client old-ws --force`,
	Args:    cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		spec, err := specFromArgs(args)
		if err != nil {
			wrapFatalln("spec", err)
			return
		}
		deleted, err := spec.Delete(context.Background(), p4ooFlags.spec.force)
		if err != nil {
			wrapFatalln("delete "+spec.String(), err)
			return
		}
		if !deleted {
			infoLogger.Printf("nothing to delete for %s", spec)
			return
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s deleted\n", spec)
	},
}

func init() {
	addForceFlag(specSetCmd)
	addClearFlag(specSetCmd)
	addJSONFlag(specSetCmd)
	addForceFlag(specDeleteCmd)

	specCmd.AddCommand(specGetCmd, specSetCmd, specDeleteCmd)
	rootCmd.AddCommand(specCmd)
}
