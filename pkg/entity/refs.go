package entity

import (
	"context"
	"strconv"
	"strings"

	"github.com/oneconcern/p4oo/pkg/core"
	"github.com/oneconcern/p4oo/pkg/model"
	"github.com/oneconcern/p4oo/pkg/schema"
	"github.com/oneconcern/p4oo/pkg/status"
)

// Counter is a named server counter.
//
// Counter values are never cached: they are expected to change often.
type Counter struct {
	*core.Ref
}

// NewCounter builds a counter. Only WithConnection applies.
func NewCounter(name string, opts ...Option) *Counter {
	o := buildOptions(opts)
	return &Counter{Ref: core.NewRef(model.TypeCounter, name, o.conn)}
}

// Value of the counter
func (c *Counter) Value(ctx context.Context) (string, error) {
	conn, err := c.Conn()
	if err != nil {
		return "", err
	}
	return conn.ReadCounter(ctx, c.ObjectID())
}

// IntValue is the value of the counter, as an integer
func (c *Counter) IntValue(ctx context.Context) (int, error) {
	v, err := c.Value(ctx)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, status.ErrTypeMismatch.WithDetail("counter %q has a non-numeric value %q", c.ObjectID(), v)
	}
	return n, nil
}

// SetValue sets the counter and returns its new value
func (c *Counter) SetValue(ctx context.Context, value string) (string, error) {
	conn, err := c.Conn()
	if err != nil {
		return "", err
	}
	return conn.SetCounter(ctx, c.ObjectID(), value)
}

// Counters runs a "p4 counters" query. Filters: maxresults, namefilter.
func Counters(ctx context.Context, conn *core.Connection, q schema.Query) ([]*Counter, error) {
	return query[*Counter](ctx, conn, "counters", q)
}

// File is a depot file, known by its depot path
type File struct {
	*core.Ref
}

// NewFile builds a file. Only WithConnection applies.
func NewFile(path string, opts ...Option) *File {
	o := buildOptions(opts)
	return &File{Ref: core.NewRef(model.TypeFile, path, o.conn)}
}

// Files runs a "p4 files" query. Filters: allrevisions, archived, excludedeleted, maxresults, files.
func Files(ctx context.Context, conn *core.Connection, q schema.Query) ([]*File, error) {
	return query[*File](ctx, conn, "files", q)
}

// FileSet builds a set of files bound to a connection, to be passed as a filter value
func FileSet(conn *core.Connection, paths ...string) *core.Set {
	set := core.NewSet(model.TypeFile)
	for _, p := range paths {
		set.Add(NewFile(p, WithConnection(conn)))
	}
	return set
}
