package schema

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/oneconcern/p4oo/pkg/model"
	"github.com/oneconcern/p4oo/pkg/status"
)

// Object is a domain object which may be passed as a filter value
type Object interface {
	ObjectType() model.Type
	ObjectID() string
}

// Collection is a set of domain objects which may be passed as a filter value
type Collection interface {
	SetType() model.Type
	Members() []Object
}

// Kind of a filter value
type Kind uint8

// Kinds of filter values
const (
	KindNull Kind = iota
	KindBool
	KindString
	KindInteger
	KindObject
	KindSet
	KindList
)

// Value is a filter value
type Value struct {
	kind Kind
	b    bool
	s    string
	n    int
	obj  Object
	set  Collection
	list []Value
}

// Null value, which filters ignore
func Null() Value { return Value{} }

// Bool value, enabling or disabling a flag
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// String value
func String(s string) Value { return Value{kind: KindString, s: s} }

// Int value
func Int(n int) Value { return Value{kind: KindInteger, n: n} }

// ObjectValue wraps a domain object
func ObjectValue(o Object) Value {
	if o == nil {
		return Null()
	}
	return Value{kind: KindObject, obj: o}
}

// SetValue wraps a collection of domain objects
func SetValue(c Collection) Value {
	if c == nil {
		return Null()
	}
	return Value{kind: KindSet, set: c}
}

// List of values
func List(values ...Value) Value {
	return Value{kind: KindList, list: values}
}

// Kind of this value
func (v Value) Kind() Kind { return v.kind }

// IsNull tells if the value is null
func (v Value) IsNull() bool { return v.kind == KindNull }

func (v Value) String() string {
	switch v.kind {
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindString:
		return strconv.Quote(v.s)
	case KindInteger:
		return strconv.Itoa(v.n)
	case KindObject:
		return fmt.Sprintf("%s(%s)", v.obj.ObjectType(), v.obj.ObjectID())
	case KindSet:
		return fmt.Sprintf("%s(%d)", v.set.SetType(), len(v.set.Members()))
	case KindList:
		parts := make([]string, 0, len(v.list))
		for _, e := range v.list {
			parts = append(parts, e.String())
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return "null"
	}
}

// ValueOf converts a native value into a filter value.
//
// Supported are: nil, bool, string, integers, Object, Collection, Value,
// and slices of those.
func ValueOf(x interface{}) (Value, error) {
	switch v := x.(type) {
	case nil:
		return Null(), nil
	case Value:
		return v, nil
	case bool:
		return Bool(v), nil
	case string:
		return String(v), nil
	case int:
		return Int(v), nil
	case int8:
		return Int(int(v)), nil
	case int16:
		return Int(int(v)), nil
	case int32:
		return Int(int(v)), nil
	case int64:
		return Int(int(v)), nil
	case uint:
		return Int(int(v)), nil
	case uint8:
		return Int(int(v)), nil
	case uint16:
		return Int(int(v)), nil
	case uint32:
		return Int(int(v)), nil
	case Collection:
		return SetValue(v), nil
	case Object:
		return ObjectValue(v), nil
	case []Value:
		return List(v...), nil
	case []string:
		list := make([]Value, 0, len(v))
		for _, s := range v {
			list = append(list, String(s))
		}
		return List(list...), nil
	case []int:
		list := make([]Value, 0, len(v))
		for _, n := range v {
			list = append(list, Int(n))
		}
		return List(list...), nil
	case []Object:
		list := make([]Value, 0, len(v))
		for _, o := range v {
			list = append(list, ObjectValue(o))
		}
		return List(list...), nil
	case []interface{}:
		list := make([]Value, 0, len(v))
		for _, e := range v {
			ev, err := ValueOf(e)
			if err != nil {
				return Value{}, err
			}
			list = append(list, ev)
		}
		return List(list...), nil
	default:
		return Value{}, status.ErrTypeMismatch.WithDetail("unsupported filter value of type %T", x)
	}
}
