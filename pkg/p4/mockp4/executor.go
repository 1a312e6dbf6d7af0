// Package mockp4 provides executors standing in for a perforce server in tests.
package mockp4

import (
	"context"
	"sync"

	"github.com/oneconcern/p4oo/pkg/p4"
)

// HandlerFunc answers a request
type HandlerFunc func(context.Context, p4.Request) ([]p4.Record, error)

var _ p4.Executor = &Executor{}

// Executor records all requests and answers them with a handler
type Executor struct {
	mx      sync.Mutex
	handler HandlerFunc
	calls   []p4.Request
}

// New scripted executor
func New(handler HandlerFunc) *Executor {
	return &Executor{handler: handler}
}

// Reply builds an executor answering all requests with the same output
func Reply(out []p4.Record, err error) *Executor {
	return New(func(context.Context, p4.Request) ([]p4.Record, error) {
		return out, err
	})
}

// Execute records the request then calls the handler
func (e *Executor) Execute(ctx context.Context, req p4.Request) ([]p4.Record, error) {
	e.mx.Lock()
	e.calls = append(e.calls, copyRequest(req))
	handler := e.handler
	e.mx.Unlock()

	if handler == nil {
		return nil, nil
	}
	return handler(ctx, req)
}

// Calls returns all recorded requests
func (e *Executor) Calls() []p4.Request {
	e.mx.Lock()
	defer e.mx.Unlock()
	return append([]p4.Request(nil), e.calls...)
}

// LastCall returns the last recorded request
func (e *Executor) LastCall() (p4.Request, bool) {
	e.mx.Lock()
	defer e.mx.Unlock()
	if len(e.calls) == 0 {
		return p4.Request{}, false
	}
	return e.calls[len(e.calls)-1], true
}

// Reset forgets recorded requests
func (e *Executor) Reset() {
	e.mx.Lock()
	defer e.mx.Unlock()
	e.calls = nil
}

func copyRequest(req p4.Request) p4.Request {
	return p4.Request{
		Command:  req.Command,
		Args:     append([]string(nil), req.Args...),
		Input:    req.Input.Clone(),
		Settings: req.Settings.Clone(),
	}
}
