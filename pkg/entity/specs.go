package entity

import (
	"context"

	"github.com/oneconcern/p4oo/pkg/core"
	"github.com/oneconcern/p4oo/pkg/model"
	"github.com/oneconcern/p4oo/pkg/schema"
)

// Branch spec. The identifier is required.
type Branch struct {
	*core.Spec
}

// NewBranch builds a branch spec
func NewBranch(opts ...Option) *Branch {
	o := buildOptions(opts)
	return &Branch{Spec: core.NewSpec(model.TypeBranch, o.id, o.conn)}
}

// Branches runs a "p4 branches" query. Filters: user, maxresults, namefilter.
func Branches(ctx context.Context, conn *core.Connection, q schema.Query) ([]*Branch, error) {
	return query[*Branch](ctx, conn, "branches", q)
}

// Depot spec. The identifier is required and the spec cannot be forced.
type Depot struct {
	*core.Spec
}

// NewDepot builds a depot spec
func NewDepot(opts ...Option) *Depot {
	o := buildOptions(opts)
	return &Depot{Spec: core.NewSpec(model.TypeDepot, o.id, o.conn)}
}

// Depots runs a "p4 depots" query. Filters: depottype, namefilter.
func Depots(ctx context.Context, conn *core.Connection, q schema.Query) ([]*Depot, error) {
	return query[*Depot](ctx, conn, "depots", q)
}

// Group spec
type Group struct {
	*core.Spec
}

// NewGroup builds a group spec
func NewGroup(opts ...Option) *Group {
	o := buildOptions(opts)
	return &Group{Spec: core.NewSpec(model.TypeGroup, o.id, o.conn)}
}

// Groups runs a "p4 groups" query. Filters: member, maxresults.
func Groups(ctx context.Context, conn *core.Connection, q schema.Query) ([]*Group, error) {
	return query[*Group](ctx, conn, "groups", q)
}

// Job spec. New jobs are named by the server.
type Job struct {
	*core.Spec
}

// NewJob builds a job spec
func NewJob(opts ...Option) *Job {
	o := buildOptions(opts)
	return &Job{Spec: core.NewSpec(model.TypeJob, o.id, o.conn)}
}

// Jobs runs a "p4 jobs" query. Filters: jobview, maxresults, longoutput, files.
func Jobs(ctx context.Context, conn *core.Connection, q schema.Query) ([]*Job, error) {
	return query[*Job](ctx, conn, "jobs", q)
}
