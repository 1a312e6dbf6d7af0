// Copyright © 2018 One Concern

// Package entity exposes typed perforce domain objects.
//
// Spec-backed entities (Branch, Change, Client, Depot, Group, Job, Label, User)
// embed the spec lifecycle engine of package core: attributes are read lazily,
// then saved or deleted on the server. Counters and files are plain objects,
// known by their name.
//
// Query results are materialized as these types:
//
//	changes, err := entity.Changes(ctx, conn, schema.NewQuery(schema.F("status", "pending")))
package entity

import (
	"context"

	"github.com/oneconcern/p4oo/pkg/core"
	"github.com/oneconcern/p4oo/pkg/model"
	"github.com/oneconcern/p4oo/pkg/schema"
)

type options struct {
	id   string
	conn *core.Connection
}

// Option is a functor to build entities
type Option func(*options)

// WithID sets the identifier of an entity
func WithID(id string) Option {
	return func(o *options) {
		o.id = id
	}
}

// WithConnection binds an entity to a connection. Without it, the default connection is used.
func WithConnection(conn *core.Connection) Option {
	return func(o *options) {
		o.conn = conn
	}
}

func buildOptions(opts []Option) options {
	o := options{}
	for _, apply := range opts {
		apply(&o)
	}
	return o
}

func init() {
	core.RegisterConstructor(model.TypeBranch, func(id string, conn *core.Connection) core.Object {
		return NewBranch(WithID(id), WithConnection(conn))
	})
	core.RegisterConstructor(model.TypeChange, func(id string, conn *core.Connection) core.Object {
		return NewChange(WithID(id), WithConnection(conn))
	})
	core.RegisterConstructor(model.TypeClient, func(id string, conn *core.Connection) core.Object {
		return NewClient(WithID(id), WithConnection(conn))
	})
	core.RegisterConstructor(model.TypeCounter, func(id string, conn *core.Connection) core.Object {
		return NewCounter(id, WithConnection(conn))
	})
	core.RegisterConstructor(model.TypeDepot, func(id string, conn *core.Connection) core.Object {
		return NewDepot(WithID(id), WithConnection(conn))
	})
	core.RegisterConstructor(model.TypeFile, func(id string, conn *core.Connection) core.Object {
		return NewFile(id, WithConnection(conn))
	})
	core.RegisterConstructor(model.TypeGroup, func(id string, conn *core.Connection) core.Object {
		return NewGroup(WithID(id), WithConnection(conn))
	})
	core.RegisterConstructor(model.TypeJob, func(id string, conn *core.Connection) core.Object {
		return NewJob(WithID(id), WithConnection(conn))
	})
	core.RegisterConstructor(model.TypeLabel, func(id string, conn *core.Connection) core.Object {
		return NewLabel(WithID(id), WithConnection(conn))
	})
	core.RegisterConstructor(model.TypeUser, func(id string, conn *core.Connection) core.Object {
		return NewUser(WithID(id), WithConnection(conn))
	})
}

func connection(conn *core.Connection) (*core.Connection, error) {
	if conn != nil {
		return conn, nil
	}
	return core.DefaultConnection()
}

// query runs a command and returns its output as typed entities
func query[T core.Object](ctx context.Context, conn *core.Connection, command string, q schema.Query) ([]T, error) {
	conn, err := connection(conn)
	if err != nil {
		return nil, err
	}
	set, err := conn.Query(ctx, command, q)
	if err != nil {
		return nil, err
	}
	return members[T](set), nil
}

// queryFor runs a command on behalf of an entity, with its connection
func queryFor[T core.Object](ctx context.Context, o core.Object, command string, q schema.Query) ([]T, error) {
	conn, err := o.Conn()
	if err != nil {
		return nil, err
	}
	return query[T](ctx, conn, command, q)
}

func members[T core.Object](set *core.Set) []T {
	out := make([]T, 0, set.Len())
	for _, o := range set.Objects() {
		if t, ok := o.(T); ok {
			out = append(out, t)
		}
	}
	return out
}

// filesQuery builds a query on some file specs, with extra filters
func filesQuery(files []string, extra []schema.Filter, filters ...schema.Filter) schema.Query {
	q := schema.NewQuery(filters...)
	q = append(q, extra...)
	if len(files) > 0 {
		q = q.With("files", files)
	}
	return q
}
