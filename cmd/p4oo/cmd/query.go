package cmd

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"text/template"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"

	"github.com/oneconcern/p4oo/pkg/core"
	"github.com/oneconcern/p4oo/pkg/model"
)

// objectLine is the data passed to output templates
type objectLine struct {
	Type model.Type
	ID   string
}

var objectTemplate func(flagsT) *template.Template

func init() {
	objectTemplate = func(opts flagsT) *template.Template {
		if opts.root.template != "" {
			t, err := template.New("object").Parse(opts.root.template)
			if err != nil {
				wrapFatalln("invalid template", err)
			}
			return t
		}
		const objectLineTemplateString = `{{.ID}}`
		return template.Must(template.New("object").Parse(objectLineTemplateString))
	}
}

func printObjects(w io.Writer, set *core.Set) error {
	tpl := objectTemplate(p4ooFlags)
	for _, o := range set.Objects() {
		var buf bytes.Buffer
		if err := tpl.Execute(&buf, objectLine{Type: o.ObjectType(), ID: o.ObjectID()}); err != nil {
			return fmt.Errorf("executing template: %w", err)
		}
		fmt.Fprintln(w, buf.String())
	}
	return nil
}

func printJSON(w io.Writer, v interface{}) error {
	data, err := jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(v)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, string(data))
	return nil
}

// queryCmd runs a perforce command with validated filters
var queryCmd = &cobra.Command{
	Use:   "query <command>",
	Short: "Run a perforce query",
	Long: `Run a perforce command with filters validated against the schema.

Filters are passed as name=value. The objects found are printed, one per line.`,
	Example: `% p4oo query changes -f status=pending -f maxresults=10
% p4oo query files -f files=//depot/main/... -f files=//depot/lib/... --format '{{.Type}} {{.ID}}'
% p4oo query opened -f client=ws --raw`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		q, err := parseFilters(p4ooFlags.query.filters)
		if err != nil {
			wrapFatalln("invalid filter", err)
			return
		}
		conn, err := newConnection()
		if err != nil {
			wrapFatalln("connect", err)
			return
		}

		if p4ooFlags.query.raw {
			out, err := conn.Run(ctx, args[0], q)
			if err != nil {
				wrapFatalln("run "+args[0], err)
				return
			}
			for _, rec := range out {
				if err := printJSON(cmd.OutOrStdout(), rec); err != nil {
					wrapFatalln("print record", err)
					return
				}
			}
			return
		}

		set, err := conn.Query(ctx, args[0], q)
		if err != nil {
			wrapFatalln("query "+args[0], err)
			return
		}
		if err := printObjects(cmd.OutOrStdout(), set); err != nil {
			wrapFatalln("print objects", err)
		}
	},
}

func init() {
	addFilterFlag(queryCmd)
	addRawFlag(queryCmd)

	rootCmd.AddCommand(queryCmd)
}
