package entity

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oneconcern/p4oo/pkg/errors"
	"github.com/oneconcern/p4oo/pkg/p4"
	"github.com/oneconcern/p4oo/pkg/schema"
	"github.com/oneconcern/p4oo/pkg/status"
)

// changesByRange answers "p4 changes" for labels release-1.0 (change 10) and release-2.0 (change 20)
func changesByRange(_ context.Context, req p4.Request) ([]p4.Record, error) {
	files := req.Args[len(req.Args)-1]
	switch {
	case files == "@release-1.0":
		return []p4.Record{{"change": "10", "status": "submitted"}}, nil
	case files == "@release-2.0":
		return []p4.Record{{"change": "20", "status": "submitted"}}, nil
	case files == "@empty":
		return nil, nil
	case strings.HasPrefix(files, "//depot/main/...@11,20"):
		return []p4.Record{{"change": "18"}, {"change": "12"}}, nil
	case strings.HasPrefix(files, "//depot/lib/...@11,20"):
		return []p4.Record{{"change": "19"}, {"change": "12"}}, nil
	default:
		return nil, nil
	}
}

func TestLabelChanges(t *testing.T) {
	server := newTestServer(t)
	server.Handle("changes", changesByRange)
	conn := newTestConnection(t, server)
	ctx := context.Background()

	from := NewLabel(WithID("release-1.0"), WithConnection(conn))
	to := NewLabel(WithID("release-2.0"), WithConnection(conn))

	last, err := from.LastChange(ctx)
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, "10", last.ObjectID())
	assert.Equal(t, []string{"-m", "1", "@release-1.0"}, server.CallsTo("changes")[0].Args)

	last, err = NewLabel(WithID("empty"), WithConnection(conn)).LastChange(ctx)
	require.NoError(t, err)
	assert.Nil(t, last)

	changes, err := from.ChangesTo(ctx, to, NewClient(WithID("ws"), WithConnection(conn)))
	require.NoError(t, err)
	ids := make([]string, 0, len(changes))
	for _, c := range changes {
		ids = append(ids, c.ObjectID())
	}
	assert.Equal(t, []string{"18", "12", "19"}, ids)

	calls := server.CallsTo("changes")
	assert.Equal(t, []string{"-l", "//depot/main/...@11,20"}, calls[len(calls)-2].Args)

	_, err = NewLabel(WithID("empty"), WithConnection(conn)).ChangesTo(ctx, to, NewClient(WithID("ws"), WithConnection(conn)))
	assert.True(t, errors.Is(err, status.ErrCannotIdentify))
}

func TestLabelDiffsTo(t *testing.T) {
	server := newTestServer(t)
	server.Handle("diff2", func(_ context.Context, req p4.Request) ([]p4.Record, error) {
		if strings.HasPrefix(req.Args[len(req.Args)-1], "//depot/lib/") {
			return nil, &p4.CommandError{Command: req.Command, Warnings: []string{"//depot/lib/...@release-2.0 - no such file(s)."}}
		}
		return []p4.Record{
			{p4.MessageKey: "==== //depot/main/a.go#1 (text) - //depot/main/a.go#2 (text) ==== content"},
			{p4.MessageKey: "@@ -1 +1 @@"},
		}, nil
	})
	conn := newTestConnection(t, server)

	from := NewLabel(WithID("release-1.0"), WithConnection(conn))
	to := NewLabel(WithID("release-2.0"), WithConnection(conn))
	diffs, err := from.DiffsTo(context.Background(), to, NewClient(WithID("ws"), WithConnection(conn)), schema.F("unified", 3))
	require.NoError(t, err)
	assert.Len(t, diffs, 2)
	assert.Equal(t, "@@ -1 +1 @@", diffs[1])

	calls := server.CallsTo("diff2")
	require.Len(t, calls, 2)
	assert.Equal(t, []string{"-du3", "//depot/main/...@release-1.0", "//depot/main/...@release-2.0"}, calls[0].Args)
	assert.Equal(t, "false", calls[0].Settings[p4.SettingTagged])
}

func TestLabelTagFiles(t *testing.T) {
	server := newTestServer(t)
	server.Put("label", p4.Record{"Label": "release-1.0", "Revision": "@10"})
	server.Handle("tag", echoFiles)
	conn := newTestConnection(t, server)
	ctx := context.Background()

	label := NewLabel(WithID("release-1.0"), WithConnection(conn))
	tagged, err := label.TagFiles(ctx, []string{"//depot/main/...@10"})
	require.NoError(t, err)
	require.Len(t, tagged, 1)
	assert.Equal(t, []string{"-l", "release-1.0", "//depot/main/...@10"}, server.CallsTo("tag")[0].Args)

	rev, err := label.Revision(ctx)
	require.NoError(t, err)
	assert.Equal(t, "@10", rev)
}
