package p4

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// Conn runs commands against an executor with a set of connection settings.
//
// Commands on a Conn are serialized: overrides are applied to the shared
// settings for the duration of one command, then restored.
type Conn struct {
	mx       sync.Mutex
	exec     Executor
	settings Settings
	logger   *zap.Logger
}

// ConnOption is a functor to build connections
type ConnOption func(*Conn)

// WithSettings sets the initial connection settings
func WithSettings(s Settings) ConnOption {
	return func(c *Conn) {
		c.settings = s.Clone()
	}
}

// WithConnLogger sets a logger for this connection
func WithConnLogger(l *zap.Logger) ConnOption {
	return func(c *Conn) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewConn builds a connection over some executor
func NewConn(exec Executor, opts ...ConnOption) *Conn {
	c := &Conn{
		exec:     exec,
		settings: make(Settings),
		logger:   zap.NewNop(),
	}
	for _, apply := range opts {
		apply(c)
	}
	return c
}

// Setting returns the current value of a setting
func (c *Conn) Setting(key string) (string, bool) {
	c.mx.Lock()
	defer c.mx.Unlock()
	v, ok := c.settings[key]
	return v, ok
}

// Set a setting for all subsequent commands
func (c *Conn) Set(key, value string) {
	c.mx.Lock()
	defer c.mx.Unlock()
	c.settings[key] = value
}

// Settings returns a copy of the current settings
func (c *Conn) Settings() Settings {
	c.mx.Lock()
	defer c.mx.Unlock()
	return c.settings.Clone()
}

// Run a command.
//
// Trailing empty arguments are dropped. Overrides apply to this command only:
// prior settings are restored whatever the outcome.
func (c *Conn) Run(ctx context.Context, command string, args []string, input Record, overrides Overrides) ([]Record, error) {
	args = trimArgs(args)

	c.mx.Lock()
	defer c.mx.Unlock()

	restore := c.override(overrides)
	defer restore()

	req := Request{
		Command:  command,
		Args:     args,
		Input:    input.Clone(),
		Settings: c.settings.Clone(),
	}
	c.logger.Debug("p4 command",
		zap.String("command", command),
		zap.Strings("args", args),
		zap.Bool("with input", input != nil),
	)

	out, err := c.exec.Execute(ctx, req)
	if err != nil {
		if IsWarning(err, nil) {
			c.logger.Debug("p4 command warned", zap.String("command", command), zap.Error(err))
		} else {
			c.logger.Debug("p4 command failed", zap.String("command", command), zap.Error(err))
		}
		return out, err
	}
	c.logger.Debug("p4 command done", zap.String("command", command), zap.Int("records", len(out)))
	return out, nil
}

// override applies transient settings and returns a closure restoring prior values.
func (c *Conn) override(overrides Overrides) func() {
	if len(overrides) == 0 {
		return func() {}
	}

	type prior struct {
		value   string
		present bool
	}
	saved := make(map[string]prior, len(overrides))
	for k, v := range overrides {
		old, present := c.settings[k]
		saved[k] = prior{value: old, present: present}
		c.settings[k] = v
		c.logger.Debug("override setting", zap.String("key", k), zap.String("value", redact(k, v)))
	}

	return func() {
		for k, p := range saved {
			if p.present {
				c.settings[k] = p.value
			} else {
				delete(c.settings, k)
			}
		}
	}
}

func trimArgs(args []string) []string {
	end := len(args)
	for end > 0 && args[end-1] == "" {
		end--
	}
	return args[:end]
}

func redact(key, value string) string {
	if strings.EqualFold(key, SettingPassword) {
		return "****"
	}
	return value
}
