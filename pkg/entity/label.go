package entity

import (
	"context"

	"github.com/oneconcern/p4oo/pkg/core"
	"github.com/oneconcern/p4oo/pkg/model"
	"github.com/oneconcern/p4oo/pkg/p4"
	"github.com/oneconcern/p4oo/pkg/schema"
	"github.com/oneconcern/p4oo/pkg/status"
)

// Label spec
type Label struct {
	*core.Spec
}

// NewLabel builds a label spec
func NewLabel(opts ...Option) *Label {
	o := buildOptions(opts)
	return &Label{Spec: core.NewSpec(model.TypeLabel, o.id, o.conn)}
}

// Labels runs a "p4 labels" query. Filters: user, maxresults, namefilter, files.
func Labels(ctx context.Context, conn *core.Connection, q schema.Query) ([]*Label, error) {
	return query[*Label](ctx, conn, "labels", q)
}

// Revision spec of an automatic label
func (l *Label) Revision(ctx context.Context) (string, error) {
	return l.GetString(ctx, "revision")
}

// TagFiles tags files with this label
func (l *Label) TagFiles(ctx context.Context, files []string, extra ...schema.Filter) ([]*File, error) {
	return queryFor[*File](ctx, l, "tag", filesQuery(files, extra, schema.F("label", l)))
}

// LastChange is the most recent change included in this label, or nil for an empty label
func (l *Label) LastChange(ctx context.Context) (*Change, error) {
	id, err := l.ResolveIdentifier(ctx)
	if err != nil {
		return nil, err
	}
	changes, err := queryFor[*Change](ctx, l, "changes", schema.NewQuery(
		schema.F("files", "@"+id),
		schema.F("maxresults", 1),
	))
	if err != nil || len(changes) == 0 {
		return nil, err
	}
	return changes[0], nil
}

// ChangesTo lists the changes between this label and another one, seen through the view of a client.
//
// This label is expected to be the lower of the two.
func (l *Label) ChangesTo(ctx context.Context, other *Label, client *Client) ([]*Change, error) {
	first, err := l.LastChange(ctx)
	if err != nil {
		return nil, err
	}
	last, err := other.LastChange(ctx)
	if err != nil {
		return nil, err
	}
	if first == nil || last == nil {
		return nil, status.ErrCannotIdentify.WithDetail("no change in labels %v and %v", l, other)
	}
	return first.ChangesTo(ctx, last, client)
}

// DiffsTo returns the raw diff lines between this label and another one, seen through the view of a client.
//
// View lines with nothing to compare are skipped. Filters such as
// schema.F("unified", 3) tune the diff.
func (l *Label) DiffsTo(ctx context.Context, other *Label, client *Client, extra ...schema.Filter) ([]string, error) {
	from, err := l.ResolveIdentifier(ctx)
	if err != nil {
		return nil, err
	}
	to, err := other.ResolveIdentifier(ctx)
	if err != nil {
		return nil, err
	}
	view, err := client.GetStrings(ctx, "view")
	if err != nil {
		return nil, err
	}
	conn, err := l.Conn()
	if err != nil {
		return nil, err
	}

	var diffs []string
	for _, line := range view {
		depotPath := viewDepotPath(line)
		if depotPath == "" {
			continue
		}
		q := filesQuery([]string{depotPath + "@" + from, depotPath + "@" + to}, extra)
		out, err := conn.Run(ctx, "diff2", q, core.RawOutput())
		if err != nil {
			if p4.IsWarning(err, nil) {
				continue
			}
			return nil, err
		}
		diffs = append(diffs, p4.Messages(out)...)
	}
	return diffs, nil
}
