package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oneconcern/p4oo/pkg/p4"
	"github.com/oneconcern/p4oo/pkg/p4/mockp4"
)

var testNow = time.Date(2020, 5, 1, 10, 0, 0, 0, time.UTC)

func testSettings() p4.Settings {
	return p4.Settings{p4.SettingUser: "bob", p4.SettingClient: "ws"}
}

func newTestConnection(t testing.TB, exec p4.Executor) *Connection {
	conn, err := NewConnection(WithExecutor(exec), WithSettings(testSettings()))
	require.NoError(t, err)
	return conn
}

// newTestServer builds an in-memory server with a client, a label and a pending change
func newTestServer(t testing.TB) (*mockp4.SpecServer, *Connection) {
	server := mockp4.NewSpecServer()
	server.Now = func() time.Time { return testNow }

	server.Put("client", p4.Record{
		"Client": "ws",
		"Owner":  "bob",
		"Host":   "laptop",
		"Root":   "/home/bob/ws",
		"View0":  "//depot/main/... //ws/main/...",
		"Update": "2019/01/02 03:04:05",
	})
	server.Put("label", p4.Record{
		"Label":       "release-1.0",
		"Owner":       "bob",
		"Description": "first release\n",
		"View0":       "//depot/main/...",
	})
	server.Put("change", p4.Record{
		"Change":      "7",
		"Client":      "ws",
		"User":        "bob",
		"Status":      "pending",
		"Description": "wip\n",
	})
	return server, newTestConnection(t, server)
}
