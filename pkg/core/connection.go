// Copyright © 2018 One Concern

package core

import (
	"context"
	"strconv"
	"strings"
	"sync"

	"github.com/spf13/afero"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/oneconcern/p4oo/pkg/config"
	"github.com/oneconcern/p4oo/pkg/dlogger"
	"github.com/oneconcern/p4oo/pkg/p4"
	"github.com/oneconcern/p4oo/pkg/schema"
	"github.com/oneconcern/p4oo/pkg/status"
)

var (
	defaultOnce sync.Once
	defaultConn *Connection
	defaultErr  error
)

// Connection to a perforce server, with the schema describing its commands.
type Connection struct {
	conn     *p4.Conn
	registry *schema.Registry
	logger   *zap.Logger
}

// NewConnection builds a connection.
//
// The default executor is the p4 command line client, and the default
// schema is the built-in one.
func NewConnection(opts ...ConnectionOption) (*Connection, error) {
	o := defaultConnectionOptions()
	for _, apply := range opts {
		apply(o)
	}

	registry := o.registry
	if registry == nil {
		var err error
		registry, err = schema.Default()
		if err != nil {
			return nil, err
		}
	}

	exec := o.exec
	if exec == nil {
		exec = p4.NewCLI(p4.WithProgram(o.program), p4.WithCLILogger(o.logger))
	}
	if o.instrumented {
		var err error
		exec, err = p4.Instrument(exec,
			p4.WithTracer(o.tracer),
			p4.WithRegisterer(o.registerer),
			p4.WithInstrumentLogger(o.logger),
		)
		if err != nil {
			return nil, err
		}
	}

	return &Connection{
		conn:     p4.NewConn(exec, p4.WithSettings(o.settings), p4.WithConnLogger(o.logger)),
		registry: registry,
		logger:   o.logger,
	}, nil
}

// NewConnectionFromConfig builds a connection from configuration settings.
//
// Extra options take precedence over the configuration.
func NewConnectionFromConfig(cfg *config.Config, opts ...ConnectionOption) (*Connection, error) {
	logger, err := dlogger.GetLogger(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	base := []ConnectionOption{
		WithSettings(cfg.Settings()),
		WithProgram(cfg.Program),
		WithLogger(logger),
	}
	if cfg.Schema != "" {
		registry, err := schema.LoadFile(afero.NewOsFs(), cfg.Schema)
		if err != nil {
			return nil, err
		}
		base = append(base, WithRegistry(registry))
	}
	return NewConnection(append(base, opts...)...)
}

// DefaultConnection is the connection used by objects built without one.
//
// It is configured once from the environment and the p4oo configuration file.
func DefaultConnection() (*Connection, error) {
	defaultOnce.Do(func() {
		cfg, err := config.Load(viper.New())
		if err != nil {
			defaultErr = err
			return
		}
		defaultConn, defaultErr = NewConnectionFromConfig(cfg)
	})
	return defaultConn, defaultErr
}

// Registry of commands known to this connection
func (c *Connection) Registry() *schema.Registry {
	return c.registry
}

// Logger for this connection
func (c *Connection) Logger() *zap.Logger {
	return c.logger
}

// Settings currently in effect
func (c *Connection) Settings() p4.Settings {
	return c.conn.Settings()
}

// Set a connection setting, e.g. the current client
func (c *Connection) Set(key, value string) {
	c.conn.Set(key, value)
}

// Run a command with a query, returning raw output records.
//
// Domain objects passed as filter values are identified first.
func (c *Connection) Run(ctx context.Context, command string, q schema.Query, opts ...RunOption) ([]p4.Record, error) {
	ro := runOptions{}
	for _, apply := range opts {
		apply(&ro)
	}

	cmd, err := c.registry.Lookup(command)
	if err != nil {
		return nil, err
	}
	if err = resolveQuery(ctx, q); err != nil {
		return nil, err
	}
	args, overrides, err := cmd.Validate(q)
	if err != nil {
		return nil, err
	}
	if ro.raw {
		overrides[p4.SettingTagged] = "false"
	}
	return c.exec(ctx, cmd.Name(), args, nil, overrides)
}

// Query runs a command and materializes its output as a set of domain objects
func (c *Connection) Query(ctx context.Context, command string, q schema.Query) (*Set, error) {
	cmd, err := c.registry.Lookup(command)
	if err != nil {
		return nil, err
	}
	if _, ok := cmd.Output(); !ok {
		return nil, status.ErrNoOutputShape.WithDetail("%q", command)
	}
	out, err := c.Run(ctx, command, q)
	if err != nil {
		return nil, err
	}
	return Materialize(c, cmd, out)
}

// ReadCounter returns the value of a counter
func (c *Connection) ReadCounter(ctx context.Context, name string) (string, error) {
	out, err := c.exec(ctx, "counter", []string{name}, nil, nil)
	if err != nil {
		return "", err
	}
	return counterValue(name, out)
}

// SetCounter sets the value of a counter
func (c *Connection) SetCounter(ctx context.Context, name, value string) (string, error) {
	out, err := c.exec(ctx, "counter", []string{name, value}, nil, nil)
	if err != nil {
		return "", err
	}
	return counterValue(name, out)
}

func counterValue(name string, out []p4.Record) (string, error) {
	for _, rec := range out {
		if v, ok := rec.Lookup("value"); ok {
			return strings.TrimSpace(v), nil
		}
	}
	return "", status.ErrMalformedRecord.WithDetail("no value for counter %q", name)
}

func (c *Connection) exec(ctx context.Context, command string, args []string, input p4.Record, overrides p4.Overrides) ([]p4.Record, error) {
	return c.conn.Run(ctx, command, args, input, overrides)
}

type identifiable interface {
	ResolveIdentifier(context.Context) (string, error)
}

// resolveQuery identifies the objects passed as filter values, so they may be translated into arguments
func resolveQuery(ctx context.Context, q schema.Query) error {
	for _, f := range q {
		if err := resolveValue(ctx, f.Value); err != nil {
			return err
		}
	}
	return nil
}

func resolveValue(ctx context.Context, value interface{}) error {
	switch v := value.(type) {
	case identifiable:
		_, err := v.ResolveIdentifier(ctx)
		return err
	case *Set:
		for _, o := range v.Objects() {
			if err := resolveValue(ctx, o); err != nil {
				return err
			}
		}
	case []interface{}:
		for _, e := range v {
			if err := resolveValue(ctx, e); err != nil {
				return err
			}
		}
	case []Object:
		for _, e := range v {
			if err := resolveValue(ctx, e); err != nil {
				return err
			}
		}
	}
	return nil
}

func formatID(v interface{}) string {
	switch id := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(id)
	case int:
		return strconv.Itoa(id)
	default:
		return ""
	}
}
