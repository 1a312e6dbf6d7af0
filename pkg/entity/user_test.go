package entity

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"github.com/oneconcern/p4oo/pkg/errors"
	"github.com/oneconcern/p4oo/pkg/p4"
	"github.com/oneconcern/p4oo/pkg/status"
)

func notOpened(_ context.Context, req p4.Request) ([]p4.Record, error) {
	return nil, &p4.CommandError{Command: req.Command, Warnings: []string{"//ws/... - file(s) not opened on this client."}}
}

func TestUserQueries(t *testing.T) {
	server := newTestServer(t)
	server.Handle("opened", echoFiles)
	conn := newTestConnection(t, server)
	ctx := context.Background()

	user := NewUser(WithConnection(conn))
	email, err := user.GetString(ctx, "email")
	require.NoError(t, err)
	assert.Equal(t, "bob@example.com", email)
	assert.Equal(t, "bob", user.ObjectID())

	clients, err := user.Clients(ctx)
	require.NoError(t, err)
	require.Len(t, clients, 1)

	_, err = user.Changes(ctx, "submitted", 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"-m", "5", "-s", "submitted", "-u", "bob"}, server.CallsTo("changes")[0].Args)

	_, err = user.OpenedFiles(ctx, nil)
	require.NoError(t, err)
	_, err = user.OpenedFiles(ctx, NewClient(WithID("ws"), WithConnection(conn)))
	require.NoError(t, err)
	opened := server.CallsTo("opened")
	assert.Equal(t, []string{"-u", "bob"}, opened[0].Args)
	assert.Equal(t, []string{"-C", "ws", "-u", "bob"}, opened[1].Args)
}

func TestUserDeleteWithVengeance(t *testing.T) {
	server := newTestServer(t)
	server.Handle("reopen", notOpened)
	server.Handle("revert", notOpened)
	server.Handle("shelve", func(context.Context, p4.Request) ([]p4.Record, error) {
		return nil, nil
	})
	conn := newTestConnection(t, server)

	require.NoError(t, NewUser(WithID("bob"), WithConnection(conn)).DeleteWithVengeance(context.Background()))

	for _, spec := range [][2]string{{"user", "bob"}, {"client", "ws"}, {"change", "7"}} {
		_, ok := server.Form(spec[0], spec[1])
		assert.False(t, ok, "%s %s should be deleted", spec[0], spec[1])
	}
}

func TestUserDeleteWithVengeanceFaults(t *testing.T) {
	server := newTestServer(t)
	server.Put("client", p4.Record{"Client": "ws2", "Owner": "bob"})
	server.Handle("reopen", notOpened)
	server.Handle("revert", func(_ context.Context, req p4.Request) ([]p4.Record, error) {
		return nil, &p4.CommandError{Command: req.Command, Args: req.Args, Errors: []string{"Client unknown."}, ExitCode: 1}
	})
	server.Handle("shelve", func(context.Context, p4.Request) ([]p4.Record, error) {
		return nil, nil
	})
	conn := newTestConnection(t, server)

	err := NewUser(WithID("bob"), WithConnection(conn)).DeleteWithVengeance(context.Background())
	require.Error(t, err)
	assert.Len(t, multierr.Errors(err), 2, "one fault per client")
	assert.True(t, errors.Is(err, status.ErrCommandFailed))

	_, ok := server.Form("user", "bob")
	assert.True(t, ok, "the user is kept when cleanups fail")
}
