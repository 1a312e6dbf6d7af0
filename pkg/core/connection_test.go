package core

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/oneconcern/p4oo/pkg/config"
	"github.com/oneconcern/p4oo/pkg/errors"
	"github.com/oneconcern/p4oo/pkg/model"
	"github.com/oneconcern/p4oo/pkg/p4"
	"github.com/oneconcern/p4oo/pkg/p4/mockp4"
	"github.com/oneconcern/p4oo/pkg/schema"
	"github.com/oneconcern/p4oo/pkg/status"
)

func TestConnectionRun(t *testing.T) {
	defer goleak.VerifyNone(t)

	server, conn := newTestServer(t)
	ctx := context.Background()

	files := NewSet(model.TypeFile, NewRef(model.TypeFile, "//depot/main/a.go", conn), NewRef(model.TypeFile, "//depot/main/b.go", conn))
	_, err := conn.Run(ctx, "changes", schema.NewQuery(
		schema.F("user", "bob"),
		schema.F("maxResults", 5),
		schema.F("files", files),
		schema.F("p4client", NewSpec(model.TypeClient, "", conn)),
		schema.F("longoutput", true),
		schema.F("status", nil),
	))
	require.NoError(t, err)

	calls := server.CallsTo("changes")
	require.Len(t, calls, 1)
	assert.Equal(t, []string{"-l", "-m", "5", "-u", "bob", "//depot/main/a.go", "//depot/main/b.go"}, calls[0].Args)
	assert.Equal(t, "ws", calls[0].Settings[p4.SettingClient])
	assert.Equal(t, "bob", calls[0].Settings[p4.SettingUser])

	// the current client was read to identify it
	require.Len(t, server.CallsTo("client"), 1)
	assert.Equal(t, []string{"-o"}, server.CallsTo("client")[0].Args)
}

func TestConnectionRunOverridesAreTransient(t *testing.T) {
	exec := mockp4.Reply(nil, nil)
	conn := newTestConnection(t, exec)

	_, err := conn.Run(context.Background(), "sync", schema.NewQuery(
		schema.F("p4client", "other"),
		schema.F("files", []interface{}{"//depot/a/...", "//depot/b/..."}),
	), RawOutput())
	require.NoError(t, err)

	last, ok := exec.LastCall()
	require.True(t, ok)
	assert.Equal(t, "other", last.Settings[p4.SettingClient])
	assert.Equal(t, "false", last.Settings[p4.SettingTagged])
	assert.Equal(t, []string{"//depot/a/...", "//depot/b/..."}, last.Args)

	assert.Equal(t, "ws", conn.Settings()[p4.SettingClient])
	_, tagged := conn.Settings()[p4.SettingTagged]
	assert.False(t, tagged)
}

func TestConnectionRunErrors(t *testing.T) {
	exec := mockp4.Reply(nil, nil)
	conn := newTestConnection(t, exec)
	ctx := context.Background()

	_, err := conn.Run(ctx, "frobnicate", nil)
	assert.True(t, errors.Is(err, status.ErrUnsupportedCommand))

	_, err = conn.Run(ctx, "changes", schema.NewQuery(schema.F("colour", "blue")))
	assert.True(t, errors.Is(err, status.ErrInvalidFilter))

	_, err = conn.Run(ctx, "changes", schema.NewQuery(schema.F("maxresults", "many")))
	assert.True(t, errors.Is(err, status.ErrTypeMismatch))

	_, err = conn.Run(ctx, "change", nil)
	assert.True(t, errors.Is(err, status.ErrQueryNotSupported))

	// a change cannot be identified without a number
	_, err = conn.Run(ctx, "opened", schema.NewQuery(schema.F("change", NewSpec(model.TypeChange, "", conn))))
	assert.True(t, errors.Is(err, status.ErrCannotIdentify))

	assert.Empty(t, exec.Calls())
}

func TestConnectionQuery(t *testing.T) {
	defer goleak.VerifyNone(t)

	server, conn := newTestServer(t)
	server.Put("change", p4.Record{"Change": "12", "Client": "ws", "User": "bob", "Status": "submitted", "Description": "done\n"})
	ctx := context.Background()

	changes, err := conn.Query(ctx, "changes", schema.NewQuery(schema.F("client", "ws")))
	require.NoError(t, err)
	assert.Equal(t, model.Type("ChangeSet"), changes.SetType())
	assert.Equal(t, []string{"12", "7"}, changes.IDs())

	latest, ok := changes.At(0).(*Spec)
	require.True(t, ok)
	st, err := latest.GetString(ctx, "status")
	require.NoError(t, err)
	assert.Equal(t, "submitted", st)
	assert.Empty(t, server.CallsTo("change"), "attributes come from the query output")

	_, err = conn.Query(ctx, "submit", nil)
	assert.True(t, errors.Is(err, status.ErrNoOutputShape))
}

func TestConnectionCounters(t *testing.T) {
	server, conn := newTestServer(t)
	ctx := context.Background()

	v, err := conn.ReadCounter(ctx, "change")
	require.NoError(t, err)
	assert.Equal(t, "0", v)

	v, err = conn.SetCounter(ctx, "build", "42")
	require.NoError(t, err)
	assert.Equal(t, "42", v)
	assert.Equal(t, "42", server.Counter("build"))

	_, err = newTestConnection(t, mockp4.Reply([]p4.Record{{p4.MessageKey: "?"}}, nil)).ReadCounter(ctx, "x")
	assert.True(t, errors.Is(err, status.ErrMalformedRecord))
}

func TestConnectionMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()

	instrumented, err := NewConnection(
		WithExecutor(mockp4.Reply([]p4.Record{{"counter": "c", "value": "1"}}, nil)),
		WithSettings(testSettings()),
		WithMetrics(reg),
	)
	require.NoError(t, err)
	_, err = instrumented.ReadCounter(context.Background(), "c")
	require.NoError(t, err)

	count, err := testutil.GatherAndCount(reg, "p4oo_commands_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestNewConnectionFromConfig(t *testing.T) {
	dir := t.TempDir()
	schemaFile := filepath.Join(dir, "schema.yaml")
	require.NoError(t, os.WriteFile(schemaFile, []byte(`COMMANDS:
  counters:
    queryOptions:
      maxresults:
        type: [integer]
        option: -m
        multiplicity: 1
    output:
      p4ooType: Counter
      idAttr: counter
`), 0o600))

	exec := mockp4.Reply([]p4.Record{{"counter": "change", "value": "12"}, {"counter": "job", "value": "3"}}, nil)
	conn, err := NewConnectionFromConfig(&config.Config{
		Port:     "ssl:perforce:1666",
		User:     "alice",
		Schema:   schemaFile,
		LogLevel: "error",
	}, WithExecutor(exec))
	require.NoError(t, err)

	assert.Equal(t, []string{"counters"}, conn.Registry().Commands())
	assert.Equal(t, "alice", conn.Settings()[p4.SettingUser])

	counters, err := conn.Query(context.Background(), "counters", schema.NewQuery(schema.F("maxresults", 2)))
	require.NoError(t, err)
	assert.Equal(t, []string{"change", "job"}, counters.IDs())
	_, isRef := counters.At(0).(*Ref)
	assert.True(t, isRef)

	last, _ := exec.LastCall()
	assert.Equal(t, "ssl:perforce:1666", last.Settings[p4.SettingPort])
	assert.Equal(t, []string{"-m", "2"}, last.Args)

	_, err = NewConnectionFromConfig(&config.Config{Schema: filepath.Join(dir, "missing.yaml")})
	assert.Error(t, err)

	_, err = NewConnectionFromConfig(&config.Config{LogLevel: "loud"})
	assert.Error(t, err)
}
