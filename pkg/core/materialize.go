// Copyright © 2018 One Concern

package core

import (
	"strconv"
	"strings"
	"sync"

	"github.com/oneconcern/p4oo/pkg/model"
	"github.com/oneconcern/p4oo/pkg/p4"
	"github.com/oneconcern/p4oo/pkg/schema"
	"github.com/oneconcern/p4oo/pkg/status"
)

// Constructor builds a domain object of some type from its identifier
type Constructor func(id string, conn *Connection) Object

type specBacked interface {
	AsSpec() *Spec
}

var (
	constructorsMx sync.RWMutex
	constructors   = map[model.Type]Constructor{}
)

func init() {
	for _, t := range model.Types() {
		typ := t
		info, _ := model.Lookup(typ)
		if info.Kind == model.KindSpec {
			constructors[typ] = func(id string, conn *Connection) Object { return NewSpec(typ, id, conn) }
		} else {
			constructors[typ] = func(id string, conn *Connection) Object { return NewRef(typ, id, conn) }
		}
	}
}

// RegisterConstructor replaces the constructor of domain objects of some type.
//
// Constructors of spec types must build objects exposing their spec with AsSpec().
func RegisterConstructor(typ model.Type, ctor Constructor) {
	constructorsMx.Lock()
	defer constructorsMx.Unlock()
	constructors[model.Canonical(typ)] = ctor
}

// Construct a domain object of some type
func Construct(typ model.Type, id string, conn *Connection) (Object, error) {
	constructorsMx.RLock()
	ctor, ok := constructors[model.Canonical(typ)]
	constructorsMx.RUnlock()
	if !ok {
		return nil, status.ErrUnsupportedSpec.WithDetail("no domain type %q", typ)
	}
	return ctor(id, conn), nil
}

// Materialize turns the output records of a command into a set of domain objects.
//
// Each record yields one object, identified by the field declared in the
// command's output shape. Objects are in output order, duplicates are
// dropped. Spec objects are populated with the attributes found in records.
func Materialize(conn *Connection, cmd *schema.Command, records []p4.Record) (*Set, error) {
	out, ok := cmd.Output()
	if !ok {
		return nil, status.ErrNoOutputShape.WithDetail("%q", cmd.Name())
	}
	info, ok := model.Lookup(out.Type)
	if !ok {
		return nil, status.ErrNoOutputShape.WithDetail("%q has an unknown output type %q", cmd.Name(), out.Type)
	}

	var specDesc *schema.Command
	if info.Kind == model.KindSpec {
		var err error
		specDesc, err = conn.registry.LookupSpec(info.SpecCommand)
		if err != nil {
			return nil, err
		}
	}

	set := NewSet(info.Type)
	set.conn = conn
	for i, rec := range records {
		id, ok := rec.Lookup(out.IDField)
		if !ok {
			return nil, status.ErrMalformedRecord.WithDetail("record %d from %s has no %q field", i, cmd.Name(), out.IDField)
		}
		id = strings.TrimSpace(id)
		if specDesc != nil && specDesc.NumericID() {
			n, err := strconv.Atoi(id)
			if err != nil {
				return nil, status.ErrMalformedRecord.WithDetail("record %d from %s has a non-numeric identifier %q", i, cmd.Name(), id)
			}
			id = strconv.Itoa(n)
		}

		obj, err := Construct(info.Type, id, conn)
		if err != nil {
			return nil, err
		}
		if specDesc != nil {
			if sb, ok := obj.(specBacked); ok {
				attrs, err := specDesc.Decode(rec)
				if err != nil {
					return nil, err
				}
				sb.AsSpec().adopt(attrs)
			}
		}
		set.Add(obj)
	}
	return set, nil
}
