// Package schema describes perforce commands: how spec forms map onto
// canonical attributes, which query filters a command accepts, and what
// domain objects its output stands for.
//
// A Registry is built from a YAML document. The default registry is
// embedded in the package.
package schema

import (
	_ "embed" // embedded default schema
	"sort"
	"strings"
	"sync"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v2"

	"github.com/oneconcern/p4oo/pkg/status"
)

//go:embed p4schema.yaml
var defaultDocument []byte

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
	defaultErr      error
)

// Registry of command descriptors, keyed by command name
type Registry struct {
	commands map[string]*Command
}

// Default returns the built-in registry
func Default() (*Registry, error) {
	defaultOnce.Do(func() {
		defaultRegistry, defaultErr = Parse(defaultDocument)
	})
	return defaultRegistry, defaultErr
}

// DefaultDocument returns the built-in schema document
func DefaultDocument() []byte {
	return append([]byte(nil), defaultDocument...)
}

// LoadFile builds a registry from a schema document on some file system
func LoadFile(fs afero.Fs, path string) (*Registry, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, status.ErrSchemaFatal.WithDetail("cannot read %s", path).Wrap(err)
	}
	r, err := Parse(data)
	if err != nil {
		return nil, err
	}
	return r, nil
}

// Parse a YAML schema document
func Parse(data []byte) (*Registry, error) {
	var doc Document
	if err := yaml.UnmarshalStrict(data, &doc); err != nil {
		return nil, status.ErrSchemaFatal.Wrap(err)
	}
	return New(doc)
}

// New builds a registry from a schema document
func New(doc Document) (*Registry, error) {
	if len(doc.Commands) == 0 {
		return nil, status.ErrSchemaFatal.WithDetail("no COMMANDS declared")
	}
	r := &Registry{commands: make(map[string]*Command, len(doc.Commands))}
	for name, cd := range doc.Commands {
		cmd, err := newCommand(name, cd)
		if err != nil {
			return nil, err
		}
		r.commands[name] = cmd
	}
	for _, cmd := range r.commands {
		if cmd.specCmd != "" && cmd.specCmd != cmd.name {
			if _, ok := r.commands[cmd.specCmd]; !ok {
				return nil, status.ErrSchemaFatal.WithDetail("command %q refers to unknown spec command %q", cmd.name, cmd.specCmd)
			}
		}
	}
	return r, nil
}

// Lookup a command descriptor
func (r *Registry) Lookup(name string) (*Command, error) {
	cmd, ok := r.commands[name]
	if !ok {
		cmd, ok = r.commands[strings.ToLower(name)]
	}
	if !ok {
		return nil, status.ErrUnsupportedCommand.WithDetail("%q", name)
	}
	return cmd, nil
}

// LookupSpec looks up a command descriptor which manipulates a spec form
func (r *Registry) LookupSpec(name string) (*Command, error) {
	cmd, err := r.Lookup(name)
	if err != nil {
		return nil, err
	}
	if !cmd.IsSpecCommand() {
		return nil, status.ErrUnsupportedSpec.WithDetail("%q", name)
	}
	return cmd, nil
}

// Commands lists the names of all known commands, sorted
func (r *Registry) Commands() []string {
	names := make([]string, 0, len(r.commands))
	for name := range r.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
