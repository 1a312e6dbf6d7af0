package entity

import (
	"context"
	"regexp"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/oneconcern/p4oo/pkg/core"
	"github.com/oneconcern/p4oo/pkg/model"
	"github.com/oneconcern/p4oo/pkg/p4"
	"github.com/oneconcern/p4oo/pkg/schema"
	"github.com/oneconcern/p4oo/pkg/status"
)

var upToDateRex = regexp.MustCompile(`(?i)file\(s\) up-to-date\.$`)

// Client workspace spec. Without an identifier, it is the current client of the connection.
type Client struct {
	*core.Spec
}

// Workspace is another name for a client
type Workspace = Client

// NewClient builds a client spec
func NewClient(opts ...Option) *Client {
	o := buildOptions(opts)
	return &Client{Spec: core.NewSpec(model.TypeClient, o.id, o.conn)}
}

// NewWorkspace builds a client spec
func NewWorkspace(opts ...Option) *Workspace {
	return NewClient(opts...)
}

// Clients runs a "p4 clients" query. Filters: user, maxresults, namefilter.
func Clients(ctx context.Context, conn *core.Connection, q schema.Query) ([]*Client, error) {
	return query[*Client](ctx, conn, "clients", q)
}

// AddFiles opens files for add in this client
func (c *Client) AddFiles(ctx context.Context, files []string, extra ...schema.Filter) ([]*File, error) {
	return queryFor[*File](ctx, c, "add", filesQuery(files, extra, schema.F("p4client", c)))
}

// EditFiles opens files for edit in this client
func (c *Client) EditFiles(ctx context.Context, files []string, extra ...schema.Filter) ([]*File, error) {
	return queryFor[*File](ctx, c, "edit", filesQuery(files, extra, schema.F("p4client", c)))
}

// Submit files opened in this client, e.g. with the filter schema.F("description", "fix")
func (c *Client) Submit(ctx context.Context, files []string, extra ...schema.Filter) ([]p4.Record, error) {
	conn, err := c.Conn()
	if err != nil {
		return nil, err
	}
	return conn.Run(ctx, "submit", filesQuery(files, extra, schema.F("p4client", c)))
}

// Sync this client. A client already up to date yields no file and no error.
func (c *Client) Sync(ctx context.Context, files []string, extra ...schema.Filter) ([]*File, error) {
	synced, err := queryFor[*File](ctx, c, "sync", filesQuery(files, extra, schema.F("p4client", c)))
	if err != nil {
		if p4.IsWarning(err, upToDateRex) {
			return nil, nil
		}
		return nil, err
	}
	return synced, nil
}

// Changes synced to this client, optionally with some status (pending, shelved, submitted)
func (c *Client) Changes(ctx context.Context, changeStatus string) ([]*Change, error) {
	q := schema.NewQuery(schema.F("client", c))
	if changeStatus != "" {
		q = q.With("status", changeStatus)
	}
	return queryFor[*Change](ctx, c, "changes", q)
}

// LatestChange is the most recent change this client has synced, or nil
func (c *Client) LatestChange(ctx context.Context) (*Change, error) {
	changes, err := queryFor[*Change](ctx, c, "changes", schema.NewQuery(
		schema.F("files", "#have"),
		schema.F("maxresults", 1),
		schema.F("client", c),
	))
	if err != nil || len(changes) == 0 {
		return nil, err
	}
	return changes[0], nil
}

// OpenedFiles lists the files opened in this client, e.g. by some user with the filter schema.F("user", "bob")
func (c *Client) OpenedFiles(ctx context.Context, extra ...schema.Filter) ([]*File, error) {
	q := schema.NewQuery(extra...).With("client", c)
	return queryFor[*File](ctx, c, "opened", q)
}

// ReopenFiles clears the host of this client, then reopens all its opened files. Warnings are ignored.
func (c *Client) ReopenFiles(ctx context.Context) ([]*File, error) {
	if err := c.Clear("host"); err != nil {
		return nil, err
	}
	if err := c.Save(ctx, false); err != nil {
		return nil, err
	}
	return c.allFiles(ctx, "reopen")
}

// RevertOpenedFiles reopens then reverts all files opened in this client, without refreshing it.
// Warnings are ignored.
func (c *Client) RevertOpenedFiles(ctx context.Context) ([]*File, error) {
	if _, err := c.ReopenFiles(ctx); err != nil {
		return nil, err
	}
	return c.allFiles(ctx, "revert", schema.F("noclientrefresh", true))
}

func (c *Client) allFiles(ctx context.Context, command string, extra ...schema.Filter) ([]*File, error) {
	id, err := c.ResolveIdentifier(ctx)
	if err != nil {
		return nil, err
	}
	files, err := queryFor[*File](ctx, c, command, filesQuery([]string{"//" + id + "/..."}, extra, schema.F("p4client", c)))
	if err != nil {
		if p4.IsWarning(err, nil) {
			return nil, nil
		}
		return nil, err
	}
	return files, nil
}

// DeleteWithVengeance forces the deletion of this client.
//
// When the server refuses, the host is cleared and all pending changes
// of the client are deleted before trying again.
func (c *Client) DeleteWithVengeance(ctx context.Context) error {
	_, err := c.Delete(ctx, true)
	if err == nil || !status.IsFatal(err) {
		return err
	}
	if conn, cerr := c.Conn(); cerr == nil {
		conn.Logger().Info("forced deletion refused, cleaning up client", zap.Stringer("client", c), zap.Error(err))
	}

	if err = c.Clear("host"); err != nil {
		return err
	}
	if err = c.Save(ctx, false); err != nil {
		return err
	}
	pending, err := c.Changes(ctx, "pending")
	if err != nil {
		return err
	}
	var errs error
	for _, change := range pending {
		errs = multierr.Append(errs, change.DeleteWithVengeance(ctx))
	}
	if errs != nil {
		return errs
	}
	_, err = c.Delete(ctx, true)
	return err
}
