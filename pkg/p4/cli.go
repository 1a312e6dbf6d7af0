package p4

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"go.uber.org/zap"

	"github.com/oneconcern/p4oo/pkg/errors"
	"github.com/oneconcern/p4oo/pkg/status"
)

// DefaultProgram is the perforce command line client
const DefaultProgram = "p4"

// EnvPassword carries the password to the p4 binary, which never sees it as an argument
const EnvPassword = "P4PASSWD"

var globalFlags = []struct {
	setting string
	flag    string
}{
	{setting: SettingPort, flag: "-p"},
	{setting: SettingUser, flag: "-u"},
	{setting: SettingClient, flag: "-c"},
	{setting: SettingCharset, flag: "-C"},
	{setting: SettingHost, flag: "-H"},
}

var _ Executor = &CLI{}

// CLI executes commands with the p4 command line client.
//
// Tagged output is requested with -ztag. A non-zero exit status is reported
// as an error; anything written on stderr by a successful command is
// reported as a warning.
type CLI struct {
	program string
	dir     string
	env     map[string]string
	logger  *zap.Logger
}

// CLIOption is a functor to build a CLI executor
type CLIOption func(*CLI)

// WithProgram sets the path to the p4 binary
func WithProgram(program string) CLIOption {
	return func(c *CLI) {
		if program != "" {
			c.program = program
		}
	}
}

// WithWorkingDir sets the working directory of executed commands
func WithWorkingDir(dir string) CLIOption {
	return func(c *CLI) {
		c.dir = dir
	}
}

// WithEnvVar adds an environment variable to executed commands
func WithEnvVar(key, value string) CLIOption {
	return func(c *CLI) {
		c.env[key] = value
	}
}

// WithCLILogger sets a logger for the executor
func WithCLILogger(l *zap.Logger) CLIOption {
	return func(c *CLI) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewCLI builds an executor running the p4 command line client
func NewCLI(opts ...CLIOption) *CLI {
	c := &CLI{
		program: DefaultProgram,
		env:     make(map[string]string),
		logger:  zap.NewNop(),
	}
	for _, apply := range opts {
		apply(c)
	}
	return c
}

// CommandLine yields the arguments passed to the p4 binary for a request
func (c *CLI) CommandLine(req Request) []string {
	args := make([]string, 0, len(req.Args)+len(globalFlags)*2+2)
	for _, g := range globalFlags {
		if v := req.Settings[g.setting]; v != "" {
			args = append(args, g.flag, v)
		}
	}
	if req.Settings.Tagged() {
		args = append(args, "-ztag")
	}
	args = append(args, req.Command)
	return append(args, req.Args...)
}

// environ yields the environment of a command, or nil to inherit the current one
func (c *CLI) environ(req Request) []string {
	password := req.Settings[SettingPassword]
	if len(c.env) == 0 && password == "" {
		return nil
	}
	env := os.Environ()
	for k, v := range c.env {
		env = append(env, fmt.Sprintf("%s=%s", k, v))
	}
	if password != "" {
		env = append(env, fmt.Sprintf("%s=%s", EnvPassword, password))
	}
	return env
}

// Execute the request with the p4 binary
func (c *CLI) Execute(ctx context.Context, req Request) ([]Record, error) {
	cmd := exec.CommandContext(ctx, c.program, c.CommandLine(req)...) // #nosec
	if c.dir != "" {
		cmd.Dir = c.dir
	}
	cmd.Env = c.environ(req)
	if req.Input != nil {
		cmd.Stdin = strings.NewReader(RenderForm(req.Input))
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, status.ErrCommandFailed.WithDetail("p4 %s", req.Command).Wrap(ctxErr)
	}

	var exitErr *exec.ExitError
	if runErr != nil && !errors.As(runErr, &exitErr) {
		// the binary could not be started
		return nil, status.ErrCommandFailed.WithDetail("p4 %s", req.Command).Wrap(runErr)
	}

	var (
		records  []Record
		parseErr error
	)
	if req.Settings.Tagged() {
		records, parseErr = ParseTagged(&stdout)
	} else {
		records, parseErr = ParseRaw(&stdout)
	}
	if parseErr != nil {
		return nil, status.ErrMalformedRecord.WithDetail("p4 %s", req.Command).Wrap(parseErr)
	}

	messages := splitLines(stderr.String())
	if exitErr != nil {
		if len(messages) == 0 {
			messages = []string{exitErr.Error()}
		}
		return records, &CommandError{
			Command:  req.Command,
			Args:     req.Args,
			Errors:   messages,
			ExitCode: exitErr.ExitCode(),
		}
	}
	if len(messages) > 0 {
		c.logger.Debug("p4 warnings", zap.String("command", req.Command), zap.Strings("warnings", messages))
		return records, &CommandError{
			Command:  req.Command,
			Args:     req.Args,
			Warnings: messages,
		}
	}
	return records, nil
}
