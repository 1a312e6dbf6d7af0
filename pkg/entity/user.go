package entity

import (
	"context"

	"go.uber.org/multierr"

	"github.com/oneconcern/p4oo/pkg/core"
	"github.com/oneconcern/p4oo/pkg/model"
	"github.com/oneconcern/p4oo/pkg/schema"
)

// User spec. Without an identifier, it is the current user of the connection.
type User struct {
	*core.Spec
}

// NewUser builds a user spec
func NewUser(opts ...Option) *User {
	o := buildOptions(opts)
	return &User{Spec: core.NewSpec(model.TypeUser, o.id, o.conn)}
}

// Users runs a "p4 users" query. Filters: allusers, longoutput, maxresults, users.
func Users(ctx context.Context, conn *core.Connection, q schema.Query) ([]*User, error) {
	return query[*User](ctx, conn, "users", q)
}

// OpenedFiles lists the files opened by this user, in any client unless one is given
func (u *User) OpenedFiles(ctx context.Context, client *Client) ([]*File, error) {
	q := schema.NewQuery(schema.F("user", u))
	if client != nil {
		q = q.With("client", client)
	}
	return queryFor[*File](ctx, u, "opened", q)
}

// Clients owned by this user
func (u *User) Clients(ctx context.Context) ([]*Client, error) {
	return queryFor[*Client](ctx, u, "clients", schema.NewQuery(schema.F("user", u)))
}

// Changes of this user, optionally with some status. A zero maxResults means no limit.
func (u *User) Changes(ctx context.Context, changeStatus string, maxResults int) ([]*Change, error) {
	q := schema.NewQuery(schema.F("user", u))
	if changeStatus != "" {
		q = q.With("status", changeStatus)
	}
	if maxResults > 0 {
		q = q.With("maxresults", maxResults)
	}
	return queryFor[*Change](ctx, u, "changes", q)
}

// DeleteWithVengeance removes everything this user owns, then forces the deletion of the user.
//
// Files opened in the user's clients are reverted, pending changes are deleted,
// then clients. Cleanup faults are collected: the user is only deleted when
// all cleanups succeed.
func (u *User) DeleteWithVengeance(ctx context.Context) error {
	clients, err := u.Clients(ctx)
	if err != nil {
		return err
	}

	var errs error
	for _, client := range clients {
		_, rerr := client.RevertOpenedFiles(ctx)
		errs = multierr.Append(errs, rerr)
	}

	pending, err := u.Changes(ctx, "pending", 0)
	if err != nil {
		return multierr.Append(errs, err)
	}
	for _, change := range pending {
		errs = multierr.Append(errs, change.DeleteWithVengeance(ctx))
	}

	for _, client := range clients {
		errs = multierr.Append(errs, client.DeleteWithVengeance(ctx))
	}
	if errs != nil {
		return errs
	}

	_, err = u.Delete(ctx, true)
	return err
}
