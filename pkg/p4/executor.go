// Package p4 runs perforce commands.
//
// The Executor interface abstracts the actual transport: the CLI executor
// drives the p4 command line client, while tests provide scripted executors.
//
// A Conn holds the connection settings (port, user, client...) and applies
// transient overrides for the duration of a single command.
package p4

import (
	"context"
	"strconv"
)

// Connection settings understood by executors
const (
	SettingPort     = "port"
	SettingUser     = "user"
	SettingClient   = "client"
	SettingPassword = "password"
	SettingCharset  = "charset"
	SettingHost     = "host"

	// SettingTagged selects tagged (keyed) output. It defaults to true.
	SettingTagged = "tagged"
)

// Settings of a connection, e.g. port, user, client
type Settings map[string]string

// Overrides are transient settings applied to a single command
type Overrides map[string]string

// Clone the settings
func (s Settings) Clone() Settings {
	c := make(Settings, len(s))
	for k, v := range s {
		c[k] = v
	}
	return c
}

// Tagged tells if the output should be tagged
func (s Settings) Tagged() bool {
	v, ok := s[SettingTagged]
	if !ok || v == "" {
		return true
	}
	tagged, err := strconv.ParseBool(v)
	if err != nil {
		return true
	}
	return tagged
}

// Request to run a perforce command
type Request struct {
	Command string
	Args    []string

	// Input is a spec form, submitted to commands run with -i
	Input Record

	// Settings in effect for this command
	Settings Settings
}

// Executor runs perforce commands.
//
// An Executor reports backend failures as a *CommandError. When only warnings
// were raised, the output is returned alongside the error.
type Executor interface {
	Execute(context.Context, Request) ([]Record, error)
}

// ExecutorFunc adapts a function to the Executor interface
type ExecutorFunc func(context.Context, Request) ([]Record, error)

// Execute the request
func (f ExecutorFunc) Execute(ctx context.Context, req Request) ([]Record, error) {
	return f(ctx, req)
}
