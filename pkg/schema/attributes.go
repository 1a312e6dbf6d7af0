package schema

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/oneconcern/p4oo/pkg/p4"
	"github.com/oneconcern/p4oo/pkg/status"
)

// DateLayout is the layout of dates in spec forms
const DateLayout = "2006/01/02 15:04:05"

var epochRex = regexp.MustCompile(`^\d+$`)

// Attributes of a spec, keyed by canonical name.
//
// Values are string, int (numeric identifiers), []string (list fields),
// time.Time (dates), or nil for a cleared attribute.
type Attributes map[string]interface{}

// Clone the attributes
func (a Attributes) Clone() Attributes {
	c := make(Attributes, len(a))
	for k, v := range a {
		if list, ok := v.([]string); ok {
			v = append([]string(nil), list...)
		}
		c[k] = v
	}
	return c
}

// Names of the attributes, sorted
func (a Attributes) Names() []string {
	names := make([]string, 0, len(a))
	for k := range a {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Decode a spec form into canonical attributes.
//
// Fields are matched case-insensitively. List fields are carried by indexed
// keys (View0, View1...). Dates are either epoch seconds or formatted as
// DateLayout: the latter carry no time zone and are decoded as UTC.
func (c *Command) Decode(raw p4.Record) (Attributes, error) {
	if !c.IsSpecCommand() {
		return nil, status.ErrUnsupportedSpec.WithDetail("%q", c.name)
	}

	attrs := make(Attributes, len(c.attrs)+len(c.dates))
	for canonical, field := range c.attrs {
		if v, ok := raw.Lookup(field); ok {
			attrs[canonical] = c.decodeScalar(canonical, v)
			continue
		}
		if list, ok := raw.List(field); ok {
			attrs[canonical] = list
		}
	}

	for canonical, field := range c.dates {
		v, ok := raw.Lookup(field)
		if !ok {
			continue
		}
		date, err := DecodeDate(v)
		if err != nil {
			return nil, status.ErrMalformedRecord.WithDetail("field %q of %q", field, c.name).Wrap(err)
		}
		attrs[canonical] = date
	}
	return attrs, nil
}

func (c *Command) decodeScalar(canonical, v string) interface{} {
	if canonical == c.idAttr && c.numericID {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	}
	return v
}

// DecodeDate parses a date as found in spec forms or tagged output
func DecodeDate(v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	if epochRex.MatchString(v) {
		secs, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return time.Time{}, err
		}
		return time.Unix(secs, 0), nil
	}
	return time.Parse(DateLayout, v)
}

// Encode canonical attributes into a spec form, starting from a copy of base.
//
// A nil value removes the field. Dates are read-only and never written.
// Attributes unknown to this command are ignored.
func (c *Command) Encode(attrs Attributes, base p4.Record) (p4.Record, error) {
	if !c.IsSpecCommand() {
		return nil, status.ErrUnsupportedSpec.WithDetail("%q", c.name)
	}

	raw := base.Clone()
	if raw == nil {
		raw = make(p4.Record)
	}

	for _, canonical := range attrs.Names() {
		field, ok := c.attrs[canonical]
		if !ok {
			continue
		}
		value := attrs[canonical]
		if value == nil {
			raw.Remove(field)
			continue
		}
		if list, isList := value.([]string); isList {
			raw.SetList(field, list)
			continue
		}
		s, err := encodeScalar(value)
		if err != nil {
			return nil, status.ErrTypeMismatch.WithDetail("attribute %q of %q", canonical, c.name).Wrap(err)
		}
		raw.Remove(field)
		raw[field] = s
	}
	return raw, nil
}

func encodeScalar(value interface{}) (string, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case int:
		return strconv.Itoa(v), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case bool:
		return strconv.FormatBool(v), nil
	case time.Time:
		return v.Format(DateLayout), nil
	case fmt.Stringer:
		return v.String(), nil
	default:
		return "", fmt.Errorf("unsupported attribute value of type %T", value)
	}
}
