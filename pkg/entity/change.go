package entity

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/oneconcern/p4oo/pkg/core"
	"github.com/oneconcern/p4oo/pkg/model"
	"github.com/oneconcern/p4oo/pkg/p4"
	"github.com/oneconcern/p4oo/pkg/schema"
	"github.com/oneconcern/p4oo/pkg/status"
)

// Change is a numbered changelist. New changes are numbered by the server on save.
type Change struct {
	*core.Spec
}

// Changelist is another name for a change
type Changelist = Change

// NewChange builds a change spec
func NewChange(opts ...Option) *Change {
	o := buildOptions(opts)
	return &Change{Spec: core.NewSpec(model.TypeChange, o.id, o.conn)}
}

// NewChangelist builds a change spec
func NewChangelist(opts ...Option) *Changelist {
	return NewChange(opts...)
}

// Changes runs a "p4 changes" query, most recent first.
//
// Filters: client, user, maxresults, status, longoutput, files, p4client.
func Changes(ctx context.Context, conn *core.Connection, q schema.Query) ([]*Change, error) {
	return query[*Change](ctx, conn, "changes", q)
}

// Number of this change
func (c *Change) Number(ctx context.Context) (int, error) {
	id, err := c.ResolveIdentifier(ctx)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(id)
	if err != nil {
		return 0, status.ErrMalformedRecord.WithDetail("change %q is not a number", id)
	}
	return n, nil
}

// ChangesTo lists the changes after this one, up to another change, seen through the view of a client.
//
// This change is expected to be the lower of the two.
func (c *Change) ChangesTo(ctx context.Context, other *Change, client *Client) ([]*Change, error) {
	first, err := c.Number(ctx)
	if err != nil {
		return nil, err
	}
	last, err := other.Number(ctx)
	if err != nil {
		return nil, err
	}
	view, err := client.GetStrings(ctx, "view")
	if err != nil {
		return nil, err
	}
	conn, err := c.Conn()
	if err != nil {
		return nil, err
	}

	all := core.NewSet(model.TypeChange)
	for _, line := range view {
		depotPath := viewDepotPath(line)
		if depotPath == "" {
			continue
		}
		set, err := conn.Query(ctx, "changes", schema.NewQuery(
			schema.F("files", fmt.Sprintf("%s@%d,%d", depotPath, first+1, last)),
			schema.F("longoutput", true),
		))
		if err != nil {
			return nil, err
		}
		all = all.Union(set)
	}
	return members[*Change](all), nil
}

// RevertOpenedFiles reverts all files opened in this change, without refreshing the client
func (c *Change) RevertOpenedFiles(ctx context.Context) ([]*File, error) {
	client, err := c.GetString(ctx, "client")
	if err != nil {
		return nil, err
	}
	return queryFor[*File](ctx, c, "revert", schema.NewQuery(
		schema.F("change", c),
		schema.F("noclientrefresh", true),
		schema.F("files", "//"+client+"/..."),
		schema.F("p4client", client),
	))
}

// DeleteShelf deletes the files shelved in this change. Failures are logged and ignored.
func (c *Change) DeleteShelf(ctx context.Context) error {
	client, err := c.GetString(ctx, "client")
	if err != nil {
		return err
	}
	conn, err := c.Conn()
	if err != nil {
		return err
	}
	_, err = conn.Run(ctx, "shelve", schema.NewQuery(
		schema.F("delete", true),
		schema.F("change", c),
		schema.F("force", true),
		schema.F("p4client", client),
	))
	if _, isCommandError := p4.AsCommandError(err); isCommandError {
		conn.Logger().Info("ignored shelf deletion failure", zap.Stringer("change", c), zap.Error(err))
		return nil
	}
	return err
}

// DeleteWithVengeance deletes the shelf of this change, then forces its deletion
func (c *Change) DeleteWithVengeance(ctx context.Context) error {
	if err := c.DeleteShelf(ctx); err != nil {
		return err
	}
	_, err := c.Delete(ctx, true)
	return err
}

// viewDepotPath is the depot side of a view mapping, e.g. "//depot/main/..." for "//depot/main/... //ws/main/..."
func viewDepotPath(line string) string {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
