package core

import (
	"context"

	"github.com/oneconcern/p4oo/pkg/model"
	"github.com/oneconcern/p4oo/pkg/schema"
)

// Object is a domain object bound to a connection
type Object interface {
	schema.Object

	// Conn yields the connection of this object, or the default connection if none was given
	Conn() (*Connection, error)
}

var (
	_ Object = &Ref{}
	_ Object = &Spec{}
)

// Ref is a plain object, known only by its identifier (e.g. a file or a counter)
type Ref struct {
	typ  model.Type
	id   string
	conn *Connection
}

// NewRef builds a plain object
func NewRef(typ model.Type, id string, conn *Connection) *Ref {
	return &Ref{typ: model.Canonical(typ), id: id, conn: conn}
}

// ObjectType of this object
func (r *Ref) ObjectType() model.Type {
	return r.typ
}

// ObjectID of this object
func (r *Ref) ObjectID() string {
	return r.id
}

// ResolveIdentifier of a plain object is always known
func (r *Ref) ResolveIdentifier(context.Context) (string, error) {
	return r.id, nil
}

// Conn yields the connection of this object
func (r *Ref) Conn() (*Connection, error) {
	if r.conn != nil {
		return r.conn, nil
	}
	return DefaultConnection()
}

func (r *Ref) String() string {
	return string(r.typ) + "(" + r.id + ")"
}
