// Copyright © 2018 One Concern

package p4

import (
	"context"
	"strings"
	"time"

	opentracing "github.com/opentracing/opentracing-go"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/oneconcern/p4oo/pkg/errors"
)

const (
	outcomeOK      = "ok"
	outcomeWarning = "warning"
	outcomeError   = "error"
)

// InstrumentOption is a functor to configure an instrumented executor
type InstrumentOption func(*instrumentedExecutor)

// WithTracer traces each command as a span
func WithTracer(tr opentracing.Tracer) InstrumentOption {
	return func(i *instrumentedExecutor) {
		if tr != nil {
			i.tr = tr
		}
	}
}

// WithRegisterer collects command metrics on some prometheus registry
func WithRegisterer(reg prometheus.Registerer) InstrumentOption {
	return func(i *instrumentedExecutor) {
		i.reg = reg
	}
}

// WithInstrumentLogger logs each command
func WithInstrumentLogger(l *zap.Logger) InstrumentOption {
	return func(i *instrumentedExecutor) {
		if l != nil {
			i.logger = l
		}
	}
}

// Instrument decorates an executor with tracing, metrics and logs.
//
// Metrics are registered once per registry: an already registered collector is reused.
func Instrument(exec Executor, opts ...InstrumentOption) (Executor, error) {
	i := &instrumentedExecutor{
		exec:   exec,
		tr:     opentracing.NoopTracer{},
		logger: zap.NewNop(),
	}
	for _, apply := range opts {
		apply(i)
	}

	i.commands = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "p4oo",
		Name:      "commands_total",
		Help:      "Number of perforce commands executed, by command and outcome.",
	}, []string{"command", "outcome"})

	i.durations = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "p4oo",
		Name:      "command_duration_seconds",
		Help:      "Duration of perforce commands, by command.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"command"})

	if i.reg != nil {
		var err error
		if i.commands, err = registerCounter(i.reg, i.commands); err != nil {
			return nil, err
		}
		if i.durations, err = registerHistogram(i.reg, i.durations); err != nil {
			return nil, err
		}
	}
	return i, nil
}

type instrumentedExecutor struct {
	exec   Executor
	tr     opentracing.Tracer
	reg    prometheus.Registerer
	logger *zap.Logger

	commands  *prometheus.CounterVec
	durations *prometheus.HistogramVec
}

func (i *instrumentedExecutor) Execute(ctx context.Context, req Request) ([]Record, error) {
	span := i.spanFromContext(ctx, i.opName(req.Command))
	defer span.Finish()
	span.SetTag("p4.args", strings.Join(req.Args, " "))
	ctx = opentracing.ContextWithSpan(ctx, span)

	start := time.Now()
	out, err := i.exec.Execute(ctx, req)
	i.durations.WithLabelValues(req.Command).Observe(time.Since(start).Seconds())

	outcome := outcomeOK
	switch {
	case err == nil:
	case IsWarning(err, nil):
		outcome = outcomeWarning
	default:
		outcome = outcomeError
		span.SetTag("error", true)
	}
	i.commands.WithLabelValues(req.Command, outcome).Inc()
	i.logger.Info("p4 command",
		zap.String("command", req.Command),
		zap.String("outcome", outcome),
		zap.Int("records", len(out)),
		zap.Duration("duration", time.Since(start)),
	)
	return out, err
}

func (i *instrumentedExecutor) opName(command string) string {
	return strings.Join([]string{"p4", command}, ".")
}

func (i *instrumentedExecutor) spanFromContext(ctx context.Context, name string) opentracing.Span {
	parent := opentracing.SpanFromContext(ctx)
	if parent != nil {
		return i.tr.StartSpan(name, opentracing.ChildOf(parent.Context()))
	}
	return i.tr.StartSpan(name)
}

func registerCounter(reg prometheus.Registerer, c *prometheus.CounterVec) (*prometheus.CounterVec, error) {
	if err := reg.Register(c); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
		}
		return nil, err
	}
	return c, nil
}

func registerHistogram(reg prometheus.Registerer, h *prometheus.HistogramVec) (*prometheus.HistogramVec, error) {
	if err := reg.Register(h); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(*prometheus.HistogramVec); ok {
				return existing, nil
			}
		}
		return nil, err
	}
	return h, nil
}
