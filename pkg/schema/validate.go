package schema

import (
	"strconv"
	"strings"

	"github.com/oneconcern/p4oo/pkg/model"
	"github.com/oneconcern/p4oo/pkg/p4"
	"github.com/oneconcern/p4oo/pkg/status"
)

// configTrue is the value of an enabled boolean config option
const configTrue = "true"

// Validate translates a query into command arguments and transient connection settings.
//
// Filters are processed in order. Null values and false booleans are ignored.
// Filter names are matched case-insensitively against query options, then
// config options. Each value is checked against the accepted types, in
// declaration order: the first match wins.
//
// Arguments are emitted according to the filter multiplicity:
//   - 0: the flag is prepended, or a config option is enabled
//   - 1: the bundled option+value, or the option and value, is prepended, or a config option is set
//   - n: the option, if any, then all values are appended
func (c *Command) Validate(q Query) ([]string, p4.Overrides, error) {
	if len(c.filters) == 0 {
		return nil, nil, status.ErrQueryNotSupported.WithDetail("%q", c.name)
	}

	args := []string{}
	overrides := p4.Overrides{}

	for _, f := range q {
		value, err := ValueOf(f.Value)
		if err != nil {
			return nil, nil, status.ErrTypeMismatch.WithDetail("filter key %q for command %q", f.Name, c.name).Wrap(err)
		}
		if value.IsNull() || (value.kind == KindBool && !value.b) {
			continue
		}

		key := strings.ToLower(f.Name)
		opt, ok := c.filters[key]
		if !ok {
			opt, ok = c.configs[key]
		}
		if !ok {
			return nil, nil, status.ErrInvalidFilter.WithDetail("%q for command %q", f.Name, c.name)
		}

		translated, err := opt.translate(f.Name, value)
		if err != nil {
			return nil, nil, err
		}

		switch opt.Multiplicity {
		case MultiplicityNone:
			if len(translated) != 0 {
				return nil, nil, status.ErrMultiplicity.WithDetail("filter key %q accepts no arguments, got %v", f.Name, value)
			}
			if opt.Config {
				overrides[opt.Flag] = configTrue
			} else {
				args = prepend(args, opt.Flag)
			}

		case MultiplicityOne:
			if len(translated) != 1 {
				return nil, nil, status.ErrMultiplicity.WithDetail("filter key %q accepts exactly 1 argument, got %v", f.Name, value)
			}
			switch {
			case opt.Bundled:
				args = prepend(args, opt.Flag+translated[0])
			case opt.Config:
				overrides[opt.Flag] = translated[0]
			case opt.Flag == "":
				args = prepend(args, translated[0])
			default:
				args = prepend(args, opt.Flag, translated[0])
			}

		default:
			if opt.Flag != "" {
				args = append(args, opt.Flag)
			}
			args = append(args, translated...)
		}
	}
	return args, overrides, nil
}

// translate a value into string arguments
func (o *Option) translate(name string, value Value) ([]string, error) {
	var candidates []Value
	if value.kind == KindList {
		candidates = value.list
	} else {
		candidates = []Value{value}
	}

	translated := make([]string, 0, len(candidates))
	for _, candidate := range candidates {
		args, err := o.translateOne(name, candidate)
		if err != nil {
			return nil, err
		}
		translated = append(translated, args...)
	}
	return translated, nil
}

func (o *Option) translateOne(name string, value Value) ([]string, error) {
	if value.kind == KindNull || value.kind == KindBool {
		// a true flag contributes no argument
		return nil, nil
	}

	if len(o.Types) == 0 {
		return nil, status.ErrMultiplicity.WithDetail("filter key %q accepts no arguments, got %v", name, value)
	}

	for _, token := range o.Types {
		if args, ok := token.match(value); ok {
			return args, nil
		}
	}

	// a set with no matching set type is taken as a list of its members
	if value.kind == KindSet {
		var args []string
		for _, member := range value.set.Members() {
			memberArgs, err := o.translateOne(name, ObjectValue(member))
			if err != nil {
				return nil, err
			}
			args = append(args, memberArgs...)
		}
		return args, nil
	}

	return nil, status.ErrTypeMismatch.WithDetail("got %v, but filter key %q accepts arguments of only these types: %s",
		value, name, o.AcceptedTypes())
}

func (t TypeToken) match(value Value) ([]string, bool) {
	switch t.kind {
	case tokenString:
		if value.kind == KindString {
			return []string{value.s}, true
		}
	case tokenInteger:
		if value.kind == KindInteger {
			return []string{strconv.Itoa(value.n)}, true
		}
	case tokenObject:
		if value.kind == KindObject && sameType(value.obj, t) {
			return []string{value.obj.ObjectID()}, true
		}
	case tokenSet:
		if value.kind == KindSet && value.set.SetType() == t.domain.SetType() {
			members := value.set.Members()
			ids := make([]string, 0, len(members))
			for _, m := range members {
				ids = append(ids, m.ObjectID())
			}
			return ids, true
		}
	}
	return nil, false
}

func sameType(o Object, t TypeToken) bool {
	return model.Canonical(o.ObjectType()) == t.domain
}

func prepend(args []string, head ...string) []string {
	return append(head, args...)
}
