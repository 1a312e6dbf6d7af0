// Copyright © 2018 One Concern

package core

import (
	opentracing "github.com/opentracing/opentracing-go"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/oneconcern/p4oo/pkg/p4"
	"github.com/oneconcern/p4oo/pkg/schema"
)

type connectionOptions struct {
	exec     p4.Executor
	registry *schema.Registry
	settings p4.Settings
	program  string
	logger   *zap.Logger

	instrumented bool
	tracer       opentracing.Tracer
	registerer   prometheus.Registerer
}

func defaultConnectionOptions() *connectionOptions {
	return &connectionOptions{
		settings: make(p4.Settings),
		program:  p4.DefaultProgram,
		logger:   zap.NewNop(),
	}
}

// ConnectionOption is a functor to build connections
type ConnectionOption func(*connectionOptions)

// WithExecutor sets the executor running commands
func WithExecutor(exec p4.Executor) ConnectionOption {
	return func(o *connectionOptions) {
		o.exec = exec
	}
}

// WithRegistry sets the schema describing commands
func WithRegistry(r *schema.Registry) ConnectionOption {
	return func(o *connectionOptions) {
		o.registry = r
	}
}

// WithSettings sets connection settings (port, user, client...)
func WithSettings(s p4.Settings) ConnectionOption {
	return func(o *connectionOptions) {
		for k, v := range s {
			o.settings[k] = v
		}
	}
}

// WithSetting sets a single connection setting
func WithSetting(key, value string) ConnectionOption {
	return func(o *connectionOptions) {
		o.settings[key] = value
	}
}

// WithProgram sets the path to the p4 binary used by the default executor
func WithProgram(program string) ConnectionOption {
	return func(o *connectionOptions) {
		if program != "" {
			o.program = program
		}
	}
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) ConnectionOption {
	return func(o *connectionOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMetrics collects command metrics on a prometheus registry
func WithMetrics(reg prometheus.Registerer) ConnectionOption {
	return func(o *connectionOptions) {
		o.instrumented = true
		o.registerer = reg
	}
}

// WithTracer traces commands
func WithTracer(tr opentracing.Tracer) ConnectionOption {
	return func(o *connectionOptions) {
		o.instrumented = true
		o.tracer = tr
	}
}

type runOptions struct {
	raw bool
}

// RunOption is a functor to tune the execution of a command
type RunOption func(*runOptions)

// RawOutput requests untagged output, returned as message records
func RawOutput() RunOption {
	return func(o *runOptions) {
		o.raw = true
	}
}
