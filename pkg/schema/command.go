package schema

import (
	"fmt"
	"sort"
	"strings"

	"github.com/oneconcern/p4oo/pkg/model"
	"github.com/oneconcern/p4oo/pkg/status"
)

// Multiplicity of the arguments of a filter
type Multiplicity int

const (
	// MultiplicityNone is for flags, which accept no argument
	MultiplicityNone Multiplicity = iota

	// MultiplicityOne is for options accepting exactly one argument
	MultiplicityOne

	// MultiplicityMany is for options accepting any number of arguments
	MultiplicityMany
)

func (m Multiplicity) String() string {
	switch m {
	case MultiplicityNone:
		return "0"
	case MultiplicityOne:
		return "1"
	default:
		return "n"
	}
}

type tokenKind uint8

const (
	tokenString tokenKind = iota
	tokenInteger
	tokenObject
	tokenSet
)

// TypeToken is a type accepted by a filter: string, integer, a domain type or a set of some domain type.
type TypeToken struct {
	raw    string
	kind   tokenKind
	domain model.Type
}

func (t TypeToken) String() string {
	return t.raw
}

func parseToken(raw string) (TypeToken, bool) {
	switch strings.TrimSpace(raw) {
	case "string":
		return TypeToken{raw: raw, kind: tokenString}, true
	case "integer":
		return TypeToken{raw: raw, kind: tokenInteger}, true
	}
	typ, isSet, ok := model.ParseType(raw)
	if !ok {
		return TypeToken{}, false
	}
	if isSet {
		return TypeToken{raw: raw, kind: tokenSet, domain: typ}, true
	}
	return TypeToken{raw: raw, kind: tokenObject, domain: typ}, true
}

// Option describes a query filter or a config option
type Option struct {
	Name         string
	Flag         string
	Types        []TypeToken
	Multiplicity Multiplicity
	Bundled      bool

	// Config options are applied as transient connection settings
	Config bool
}

// AcceptedTypes lists the accepted type tokens, e.g. "string, Client"
func (o *Option) AcceptedTypes() string {
	names := make([]string, 0, len(o.Types))
	for _, t := range o.Types {
		names = append(names, t.raw)
	}
	return strings.Join(names, ", ")
}

// Output shape of a command: the domain type of its records and the field holding identifiers
type Output struct {
	Type    model.Type
	IDField string
}

// Command describes a perforce command
type Command struct {
	name        string
	specCmd     string
	idAttr      string
	idRequired  bool
	numericID   bool
	forceOption string

	// canonical name -> backend field
	attrs map[string]string
	dates map[string]string

	filters map[string]*Option
	configs map[string]*Option
	output  *Output
}

func newCommand(name string, doc CommandDocument) (*Command, error) {
	fatal := func(format string, args ...interface{}) error {
		return status.ErrSchemaFatal.WithDetail("command %q: %s", name, fmt.Sprintf(format, args...))
	}

	c := &Command{
		name:        name,
		specCmd:     doc.SpecCmd,
		idAttr:      strings.ToLower(doc.IDAttr),
		idRequired:  doc.IDRequired,
		numericID:   doc.NumericID,
		forceOption: doc.ForceOption,
		attrs:       make(map[string]string, len(doc.SpecAttrs)),
		dates:       make(map[string]string, len(doc.DateAttrs)),
		filters:     make(map[string]*Option, len(doc.QueryOptions)),
		configs:     make(map[string]*Option, len(doc.ConfigOptions)),
	}

	backends := make(map[string]string)
	addAttr := func(target map[string]string, canonical, backend string) error {
		key := strings.ToLower(canonical)
		if _, dup := c.attrs[key]; dup {
			return fatal("duplicate attribute %q", canonical)
		}
		if _, dup := c.dates[key]; dup {
			return fatal("duplicate attribute %q", canonical)
		}
		if backend == "" {
			return fatal("attribute %q has no spec field", canonical)
		}
		if other, dup := backends[strings.ToLower(backend)]; dup {
			return fatal("spec field %q is mapped by both %q and %q", backend, other, canonical)
		}
		backends[strings.ToLower(backend)] = key
		target[key] = backend
		return nil
	}
	for canonical, backend := range doc.SpecAttrs {
		if err := addAttr(c.attrs, canonical, backend); err != nil {
			return nil, err
		}
	}
	for canonical, backend := range doc.DateAttrs {
		if err := addAttr(c.dates, canonical, backend); err != nil {
			return nil, err
		}
	}

	if c.specCmd != "" {
		if c.idAttr == "" {
			return nil, fatal("spec command without idAttr")
		}
		if _, ok := c.attrs[c.idAttr]; !ok {
			return nil, fatal("idAttr %q is not a spec attribute", c.idAttr)
		}
	}

	for optName, od := range doc.QueryOptions {
		opt, err := newOption(optName, od, false)
		if err != nil {
			return nil, fatal("%v", err)
		}
		c.filters[opt.Name] = opt
	}
	for optName, od := range doc.ConfigOptions {
		opt, err := newOption(optName, od, true)
		if err != nil {
			return nil, fatal("%v", err)
		}
		if _, dup := c.filters[opt.Name]; dup {
			return nil, fatal("%q is both a query and a config option", optName)
		}
		c.configs[opt.Name] = opt
	}

	if doc.Output != nil {
		typ, isSet, ok := model.ParseType(doc.Output.P4ooType)
		if !ok || isSet {
			return nil, fatal("unknown output type %q", doc.Output.P4ooType)
		}
		if doc.Output.IDAttr == "" {
			return nil, fatal("output without idAttr")
		}
		c.output = &Output{Type: typ, IDField: doc.Output.IDAttr}
	}
	return c, nil
}

func newOption(name string, od OptionDocument, config bool) (*Option, error) {
	opt := &Option{
		Name:    strings.ToLower(name),
		Flag:    od.Option,
		Bundled: od.BundledArgs,
		Config:  config,
	}

	switch m := od.Multiplicity.(type) {
	case nil:
		opt.Multiplicity = MultiplicityMany
	case int:
		switch m {
		case 0:
			opt.Multiplicity = MultiplicityNone
		case 1:
			opt.Multiplicity = MultiplicityOne
		default:
			return nil, fmt.Errorf("option %q: invalid multiplicity %d", name, m)
		}
	case string:
		if !strings.EqualFold(m, "n") {
			return nil, fmt.Errorf("option %q: invalid multiplicity %q", name, m)
		}
		opt.Multiplicity = MultiplicityMany
	default:
		return nil, fmt.Errorf("option %q: invalid multiplicity %v", name, m)
	}

	for _, raw := range od.Type {
		token, ok := parseToken(raw)
		if !ok {
			return nil, fmt.Errorf("option %q: unknown type %q", name, raw)
		}
		opt.Types = append(opt.Types, token)
	}

	if opt.Multiplicity != MultiplicityNone && len(opt.Types) == 0 {
		return nil, fmt.Errorf("option %q accepts arguments of no type", name)
	}
	if opt.Bundled && (opt.Flag == "" || opt.Multiplicity != MultiplicityOne) {
		return nil, fmt.Errorf("option %q: bundled arguments require an option with multiplicity 1", name)
	}
	if config && opt.Flag == "" {
		return nil, fmt.Errorf("config option %q has no setting", name)
	}
	return opt, nil
}

// Name of the command
func (c *Command) Name() string {
	return c.name
}

// IsSpecCommand tells if this command manipulates a spec form
func (c *Command) IsSpecCommand() bool {
	return c.specCmd != ""
}

// SpecCommand yields the command manipulating the spec form
func (c *Command) SpecCommand() (string, error) {
	if !c.IsSpecCommand() {
		return "", status.ErrUnsupportedSpec.WithDetail("%q", c.name)
	}
	return c.specCmd, nil
}

// IsIDRequired tells if an identifier is required to read the spec
func (c *Command) IsIDRequired() bool {
	return c.idRequired
}

// NumericID tells if identifiers are integers
func (c *Command) NumericID() bool {
	return c.numericID
}

// IsForceable tells if saves and deletes may be forced
func (c *Command) IsForceable() bool {
	return c.forceOption != ""
}

// ForceOption yields the option forcing a save or delete
func (c *Command) ForceOption() (string, error) {
	if !c.IsForceable() {
		return "", status.ErrUnsupportedForce.WithDetail("%q", c.name)
	}
	return c.forceOption, nil
}

// IDAttribute yields the canonical name of the identifier attribute
func (c *Command) IDAttribute() (string, error) {
	if c.idAttr == "" {
		return "", status.ErrUnsupportedSpec.WithDetail("%q has no identifier attribute", c.name)
	}
	return c.idAttr, nil
}

// IDField yields the spec form field holding the identifier
func (c *Command) IDField() (string, error) {
	id, err := c.IDAttribute()
	if err != nil {
		return "", err
	}
	field, ok := c.attrs[id]
	if !ok {
		return "", status.ErrUnsupportedSpec.WithDetail("%q has no identifier field", c.name)
	}
	return field, nil
}

// CanonicalToBackend translates a canonical attribute name into a spec form field
func (c *Command) CanonicalToBackend(name string) (string, bool) {
	key := strings.ToLower(name)
	if field, ok := c.attrs[key]; ok {
		return field, true
	}
	field, ok := c.dates[key]
	return field, ok
}

// BackendToCanonical translates a spec form field into a canonical attribute name
func (c *Command) BackendToCanonical(field string) (string, bool) {
	for canonical, f := range c.attrs {
		if strings.EqualFold(f, field) {
			return canonical, true
		}
	}
	for canonical, f := range c.dates {
		if strings.EqualFold(f, field) {
			return canonical, true
		}
	}
	return "", false
}

// IsAttribute tells if a canonical attribute is known for this spec
func (c *Command) IsAttribute(name string) bool {
	_, ok := c.CanonicalToBackend(name)
	return ok
}

// IsDateAttribute tells if a canonical attribute is a read-only date
func (c *Command) IsDateAttribute(name string) bool {
	_, ok := c.dates[strings.ToLower(name)]
	return ok
}

// Attributes lists the canonical names of all attributes, including dates, sorted
func (c *Command) Attributes() []string {
	names := make([]string, 0, len(c.attrs)+len(c.dates))
	for k := range c.attrs {
		names = append(names, k)
	}
	for k := range c.dates {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Filters lists the query and config options of this command, sorted by name
func (c *Command) Filters() []*Option {
	opts := make([]*Option, 0, len(c.filters)+len(c.configs))
	for _, o := range c.filters {
		opts = append(opts, o)
	}
	for _, o := range c.configs {
		opts = append(opts, o)
	}
	sort.Slice(opts, func(i, j int) bool { return opts[i].Name < opts[j].Name })
	return opts
}

// Output yields the output shape of this command, if any
func (c *Command) Output() (Output, bool) {
	if c.output == nil {
		return Output{}, false
	}
	return *c.output, true
}
