// Copyright © 2018 One Concern

package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/oneconcern/p4oo/pkg/schema"
)

type flagsT struct {
	root struct {
		port     string
		user     string
		client   string
		program  string
		schema   string
		logLevel string
		template string
	}
	query struct {
		filters []string
		raw     bool
	}
	spec struct {
		force bool
		clear []string
		json  bool
	}
}

var p4ooFlags = flagsT{}

func addPortFlag(cmd *cobra.Command) string {
	c := "port"
	cmd.PersistentFlags().StringVarP(&p4ooFlags.root.port, c, "p", "", "The perforce server address (defaults to P4PORT)")
	return c
}

func addUserFlag(cmd *cobra.Command) string {
	c := "user"
	cmd.PersistentFlags().StringVarP(&p4ooFlags.root.user, c, "u", "", "The perforce user (defaults to P4USER)")
	return c
}

func addClientFlag(cmd *cobra.Command) string {
	c := "client"
	cmd.PersistentFlags().StringVarP(&p4ooFlags.root.client, c, "c", "", "The perforce client workspace (defaults to P4CLIENT)")
	return c
}

func addProgramFlag(cmd *cobra.Command) string {
	c := "program"
	cmd.PersistentFlags().StringVar(&p4ooFlags.root.program, c, "", "Path to the p4 command line client")
	return c
}

func addSchemaFlag(cmd *cobra.Command) string {
	c := "schema"
	cmd.PersistentFlags().StringVar(&p4ooFlags.root.schema, c, "", "A schema document describing perforce commands, replacing the built-in one")
	return c
}

func addLogLevelFlag(cmd *cobra.Command) string {
	c := "log-level"
	cmd.PersistentFlags().StringVar(&p4ooFlags.root.logLevel, c, "", "The logging level. Levels by increasing order of verbosity: none, error, warn, info, debug")
	return c
}

func addTemplateFlag(cmd *cobra.Command) string {
	c := "format"
	cmd.PersistentFlags().StringVar(&p4ooFlags.root.template, c, "", `Pretty-print objects using a Go template. Use '{{ printf "%#v" . }}' to explore available fields`)
	return c
}

func addFilterFlag(cmd *cobra.Command) string {
	c := "filter"
	cmd.Flags().StringArrayVarP(&p4ooFlags.query.filters, c, "f", nil,
		"A query filter as name=value. Repeat a filter to pass several values. Integers and booleans are converted")
	return c
}

func addRawFlag(cmd *cobra.Command) string {
	c := "raw"
	cmd.Flags().BoolVar(&p4ooFlags.query.raw, c, false, "Print output records as JSON, instead of the objects they describe")
	return c
}

func addForceFlag(cmd *cobra.Command) string {
	c := "force"
	cmd.Flags().BoolVar(&p4ooFlags.spec.force, c, false, "Force the operation, for specs which support it")
	return c
}

func addClearFlag(cmd *cobra.Command) string {
	c := "clear"
	cmd.Flags().StringSliceVar(&p4ooFlags.spec.clear, c, nil, "Attributes to remove from the spec")
	return c
}

func addJSONFlag(cmd *cobra.Command) string {
	c := "json"
	cmd.Flags().BoolVar(&p4ooFlags.spec.json, c, false, "Print the spec as JSON")
	return c
}

// parseFilters builds a query from name=value pairs.
//
// Filters keep the order of their first occurrence. A repeated filter
// collects all its values.
func parseFilters(pairs []string) (schema.Query, error) {
	var q schema.Query
	index := make(map[string]int)
	for _, pair := range pairs {
		name, raw, err := splitPair(pair)
		if err != nil {
			return nil, err
		}
		value := parseValue(raw)

		i, seen := index[name]
		if !seen {
			index[name] = len(q)
			q = append(q, schema.F(name, value))
			continue
		}
		switch values := q[i].Value.(type) {
		case []interface{}:
			q[i].Value = append(values, value)
		default:
			q[i].Value = []interface{}{values, value}
		}
	}
	return q, nil
}

// parseAttributes reads attr=value pairs
func parseAttributes(pairs []string) (map[string]string, []string, error) {
	attrs := make(map[string]string, len(pairs))
	order := make([]string, 0, len(pairs))
	for _, pair := range pairs {
		name, value, err := splitPair(pair)
		if err != nil {
			return nil, nil, err
		}
		if _, seen := attrs[name]; !seen {
			order = append(order, name)
		}
		attrs[name] = value
	}
	return attrs, order, nil
}

func splitPair(pair string) (string, string, error) {
	parts := strings.SplitN(pair, "=", 2)
	if len(parts) != 2 || strings.TrimSpace(parts[0]) == "" {
		return "", "", fmt.Errorf("expected name=value, got %q", pair)
	}
	return strings.TrimSpace(parts[0]), parts[1], nil
}

func parseValue(raw string) interface{} {
	if n, err := strconv.Atoi(raw); err == nil {
		return n
	}
	switch strings.ToLower(raw) {
	case "true":
		return true
	case "false":
		return false
	}
	return raw
}
