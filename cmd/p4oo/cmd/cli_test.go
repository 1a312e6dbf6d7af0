package cmd

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oneconcern/p4oo/pkg/core"
	"github.com/oneconcern/p4oo/pkg/p4"
	"github.com/oneconcern/p4oo/pkg/p4/mockp4"
)

func newTestServer() *mockp4.SpecServer {
	server := mockp4.NewSpecServer()
	server.Put("client", p4.Record{"Client": "ws", "Owner": "bob", "Root": "/home/bob/ws"})
	server.Put("label", p4.Record{"Label": "release-1.0", "Owner": "bob"})
	server.Put("change", p4.Record{"Change": "7", "Client": "ws", "User": "bob", "Status": "pending", "Description": "wip\n"})
	return server
}

// runCLI runs the p4oo command line against a fake server, returning the output and any fatal message
func runCLI(t *testing.T, server p4.Executor, args ...string) (string, string) {
	t.Setenv("P4OO_LOGLEVEL", "none")
	t.Setenv("P4OO_CONFIG", "")

	var fatal string
	savedFatalln, savedFatalf := logFatalln, logFatalf
	logFatalln = func(v ...interface{}) {
		if fatal == "" {
			fatal = fmt.Sprintln(v...)
		}
	}
	logFatalf = func(format string, v ...interface{}) {
		if fatal == "" {
			fatal = fmt.Sprintf(format, v...)
		}
	}
	extraConnectionOptions = []core.ConnectionOption{
		core.WithExecutor(server),
		core.WithSettings(p4.Settings{p4.SettingUser: "bob", p4.SettingClient: "ws"}),
	}
	defer func() {
		logFatalln, logFatalf = savedFatalln, savedFatalf
		extraConnectionOptions = nil
		p4ooFlags = flagsT{}
	}()

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.Execute())
	return out.String(), fatal
}

func TestCLIQuery(t *testing.T) {
	server := newTestServer()
	server.Put("change", p4.Record{"Change": "9", "Client": "ws", "User": "bob", "Status": "pending"})

	out, fatal := runCLI(t, server, "query", "changes", "-f", "status=pending", "-f", "maxresults=5")
	require.Empty(t, fatal)
	assert.Equal(t, "9\n7\n", out)
	assert.Equal(t, []string{"-m", "5", "-s", "pending"}, server.CallsTo("changes")[0].Args)

	out, fatal = runCLI(t, server, "query", "changes", "--format", "{{.Type}}:{{.ID}}")
	require.Empty(t, fatal)
	assert.Equal(t, "Change:9\nChange:7\n", out)

	out, fatal = runCLI(t, server, "query", "changes", "--raw", "-f", "maxresults=1")
	require.Empty(t, fatal)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], `"change":"9"`)

	_, fatal = runCLI(t, server, "query", "changes", "-f", "colour=blue")
	assert.Contains(t, fatal, "query changes")

	_, fatal = runCLI(t, server, "query", "changes", "-f", "status")
	assert.Contains(t, fatal, "invalid filter")
}

func TestCLISpec(t *testing.T) {
	server := newTestServer()

	out, fatal := runCLI(t, server, "spec", "get", "workspace")
	require.Empty(t, fatal)
	assert.Contains(t, out, `"id":"ws"`)
	assert.Contains(t, out, `"root":"/home/bob/ws"`)

	out, fatal = runCLI(t, server, "spec", "get", "change", "7", "status", "client")
	require.Empty(t, fatal)
	assert.Equal(t, "pending\nws\n", out)

	out, fatal = runCLI(t, server, "spec", "set", "change", "new", "description=fix the build")
	require.Empty(t, fatal)
	assert.Equal(t, "8\n", out)
	form, ok := server.Form("change", "8")
	require.True(t, ok)
	assert.Equal(t, "fix the build", form["Description"])

	out, fatal = runCLI(t, server, "spec", "set", "client", "ws", "view=//depot/a/... //ws/a/...\n//depot/b/... //ws/b/...", "--clear", "root")
	require.Empty(t, fatal)
	assert.Equal(t, "ws\n", out)
	form, _ = server.Form("client", "ws")
	assert.Equal(t, "//depot/b/... //ws/b/...", form["View1"])
	assert.NotContains(t, form, "Root")

	out, fatal = runCLI(t, server, "spec", "delete", "label", "release-1.0")
	require.Empty(t, fatal)
	assert.Equal(t, "Label(release-1.0) deleted\n", out)

	_, fatal = runCLI(t, server, "spec", "set", "depot", "depot", "description=x", "--force")
	assert.Contains(t, fatal, "save Depot(depot)")

	_, fatal = runCLI(t, server, "spec", "get", "counter", "change")
	assert.Contains(t, fatal, "not a spec type")
}

func TestCLICounter(t *testing.T) {
	server := newTestServer()

	out, fatal := runCLI(t, server, "counter", "set", "build", "42")
	require.Empty(t, fatal)
	assert.Equal(t, "42\n", out)

	out, fatal = runCLI(t, server, "counter", "get", "build")
	require.Empty(t, fatal)
	assert.Equal(t, "42\n", out)
}

func TestCLISchema(t *testing.T) {
	out, fatal := runCLI(t, mockp4.Reply(nil, nil), "schema", "list")
	require.Empty(t, fatal)
	assert.Contains(t, strings.Split(out, "\n"), "changes")

	out, fatal = runCLI(t, mockp4.Reply(nil, nil), "schema", "show", "changes")
	require.Empty(t, fatal)
	assert.Contains(t, out, `filter: status option="-s" types=[string] multiplicity=1`)
	assert.Contains(t, out, `config: p4client option="client"`)
	assert.Contains(t, out, "output: Change by change")

	out, fatal = runCLI(t, mockp4.Reply(nil, nil), "schema", "show")
	require.Empty(t, fatal)
	assert.Contains(t, out, "COMMANDS:")
}
