package mockp4

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/oneconcern/p4oo/pkg/p4"
)

const dateLayout = "2006/01/02 15:04:05"

type specKind struct {
	command string
	plural  string
	idField string
	numeric bool
	dates   []string

	// setting providing the identifier when none is given, e.g. the current client
	defaultFrom string

	forms map[string]p4.Record
}

var _ p4.Executor = &SpecServer{}

// SpecServer is an in-memory perforce server which reads, saves and deletes spec forms.
//
// Listing commands (changes, clients...) return all stored forms of that kind,
// unless a handler is registered for them. Counters are supported as well.
type SpecServer struct {
	mx       sync.Mutex
	kinds    map[string]*specKind
	plurals  map[string]*specKind
	handlers map[string]HandlerFunc
	counters map[string]string
	locked   map[string]bool
	calls    []p4.Request
	next     int

	// Now stamps dates on saved forms
	Now func() time.Time
}

// NewSpecServer builds an empty server
func NewSpecServer() *SpecServer {
	s := &SpecServer{
		kinds:    make(map[string]*specKind),
		plurals:  make(map[string]*specKind),
		handlers: make(map[string]HandlerFunc),
		counters: make(map[string]string),
		locked:   make(map[string]bool),
		Now:      time.Now,
	}
	for _, k := range []*specKind{
		{command: "branch", plural: "branches", idField: "Branch", dates: []string{"Update", "Access"}},
		{command: "change", plural: "changes", idField: "Change", numeric: true, dates: []string{"Date"}},
		{command: "client", plural: "clients", idField: "Client", dates: []string{"Update", "Access"}, defaultFrom: p4.SettingClient},
		{command: "depot", plural: "depots", idField: "Depot", dates: []string{"Date"}},
		{command: "group", plural: "groups", idField: "Group"},
		{command: "job", plural: "jobs", idField: "Job", dates: []string{"Date"}},
		{command: "label", plural: "labels", idField: "Label", dates: []string{"Update", "Access"}},
		{command: "user", plural: "users", idField: "User", dates: []string{"Update", "Access"}, defaultFrom: p4.SettingUser},
	} {
		k.forms = make(map[string]p4.Record)
		s.kinds[k.command] = k
		s.plurals[k.plural] = k
	}
	return s
}

// Put stores a spec form, e.g. Put("client", p4.Record{"Client": "ws", ...})
func (s *SpecServer) Put(command string, form p4.Record) {
	s.mx.Lock()
	defer s.mx.Unlock()
	k := s.mustKind(command)
	id, _ := form.Lookup(k.idField)
	if k.numeric {
		if n, err := strconv.Atoi(id); err == nil && n > s.next {
			s.next = n
		}
	}
	k.forms[id] = form.Clone()
}

// Form returns a copy of a stored spec form
func (s *SpecServer) Form(command, id string) (p4.Record, bool) {
	s.mx.Lock()
	defer s.mx.Unlock()
	form, ok := s.mustKind(command).forms[id]
	return form.Clone(), ok
}

// Lock a spec: it may then only be deleted with the force option
func (s *SpecServer) Lock(command, id string) {
	s.mx.Lock()
	defer s.mx.Unlock()
	s.locked[command+"/"+id] = true
}

// Handle registers a handler for some command, taking precedence over built-in behavior
func (s *SpecServer) Handle(command string, handler HandlerFunc) {
	s.mx.Lock()
	defer s.mx.Unlock()
	s.handlers[command] = handler
}

// Counter returns the value of a counter
func (s *SpecServer) Counter(name string) string {
	s.mx.Lock()
	defer s.mx.Unlock()
	return s.counters[name]
}

// Calls returns all received requests
func (s *SpecServer) Calls() []p4.Request {
	s.mx.Lock()
	defer s.mx.Unlock()
	return append([]p4.Request(nil), s.calls...)
}

// CallsTo returns the received requests for some command
func (s *SpecServer) CallsTo(command string) []p4.Request {
	s.mx.Lock()
	defer s.mx.Unlock()
	var calls []p4.Request
	for _, c := range s.calls {
		if c.Command == command {
			calls = append(calls, c)
		}
	}
	return calls
}

// Execute a request
func (s *SpecServer) Execute(ctx context.Context, req p4.Request) ([]p4.Record, error) {
	s.mx.Lock()
	s.calls = append(s.calls, copyRequest(req))
	handler, hasHandler := s.handlers[req.Command]
	s.mx.Unlock()

	if hasHandler {
		return handler(ctx, req)
	}

	s.mx.Lock()
	defer s.mx.Unlock()

	if k, ok := s.kinds[req.Command]; ok {
		return s.spec(k, req)
	}
	if k, ok := s.plurals[req.Command]; ok {
		return s.list(k), nil
	}
	if req.Command == "counter" {
		return s.counter(req)
	}
	return nil, fail(req, "Unknown command.  Try 'p4 help' for info.")
}

func (s *SpecServer) spec(k *specKind, req p4.Request) ([]p4.Record, error) {
	var (
		mode  string
		force bool
		id    string
	)
	for _, arg := range req.Args {
		switch arg {
		case "-o", "-i", "-d":
			mode = arg
		case "-f":
			force = true
		default:
			id = arg
		}
	}

	switch mode {
	case "-o":
		return s.output(k, req, id)
	case "-i":
		return s.input(k, req)
	case "-d":
		return s.delete(k, req, id, force)
	default:
		return nil, fail(req, fmt.Sprintf("Usage: %s [ -o | -i | -d ] [%s]", k.command, strings.ToLower(k.idField)))
	}
}

func (s *SpecServer) output(k *specKind, req p4.Request, id string) ([]p4.Record, error) {
	if id == "" && k.defaultFrom != "" {
		id = req.Settings[k.defaultFrom]
	}
	if id == "" {
		if !k.numeric && k.command != "job" {
			return nil, fail(req, fmt.Sprintf("Missing %s name.", strings.ToLower(k.idField)))
		}
		id = "new"
	}

	if form, ok := k.forms[id]; ok {
		return []p4.Record{form.Clone()}, nil
	}
	if k.numeric && id != "new" {
		return nil, fail(req, fmt.Sprintf("%s %s unknown.", k.idField, id))
	}

	form := p4.Record{
		k.idField:     id,
		"Description": fmt.Sprintf("Created by %s.\n", req.Settings[p4.SettingUser]),
	}
	if k.command == "change" {
		form["Status"] = "new"
		form["Client"] = req.Settings[p4.SettingClient]
		form["User"] = req.Settings[p4.SettingUser]
	}
	return []p4.Record{form}, nil
}

func (s *SpecServer) input(k *specKind, req p4.Request) ([]p4.Record, error) {
	if req.Input == nil {
		return nil, fail(req, "Error in "+k.command+" specification: no input.")
	}
	form := req.Input.Clone()
	id, _ := form.Lookup(k.idField)
	if id == "" {
		return nil, fail(req, fmt.Sprintf("Error in %s specification.\nMissing required field '%s'.", k.command, k.idField))
	}

	verb := "saved"
	switch {
	case k.numeric && id == "new":
		s.next++
		id = strconv.Itoa(s.next)
		verb = "created"
	case k.numeric:
		if _, exists := k.forms[id]; !exists {
			return nil, fail(req, fmt.Sprintf("%s %s unknown.", k.idField, id))
		}
		verb = "updated"
	case k.command == "job" && id == "new":
		s.next++
		id = fmt.Sprintf("job%06d", s.next)
	}

	form.Remove(k.idField)
	form[k.idField] = id
	now := s.Now()
	for _, date := range k.dates {
		form.Remove(date)
		form[date] = now.Format(dateLayout)
	}
	if k.numeric {
		if _, ok := form.Lookup("Status"); !ok || form["Status"] == "new" {
			form["Status"] = "pending"
		}
	}
	k.forms[id] = form

	return []p4.Record{{p4.MessageKey: fmt.Sprintf("%s %s %s.", k.idField, id, verb)}}, nil
}

func (s *SpecServer) delete(k *specKind, req p4.Request, id string, force bool) ([]p4.Record, error) {
	if _, ok := k.forms[id]; !ok {
		return nil, fail(req, fmt.Sprintf("%s %s doesn't exist.", k.idField, id))
	}
	if s.locked[k.command+"/"+id] && !force {
		return nil, fail(req, fmt.Sprintf("%s %s is locked; use -f to force deletion.", k.idField, id))
	}
	delete(k.forms, id)
	delete(s.locked, k.command+"/"+id)
	return []p4.Record{{p4.MessageKey: fmt.Sprintf("%s %s deleted.", k.idField, id)}}, nil
}

func (s *SpecServer) list(k *specKind) []p4.Record {
	ids := make([]string, 0, len(k.forms))
	for id := range k.forms {
		ids = append(ids, id)
	}
	if k.numeric {
		// most recent first
		sort.Slice(ids, func(i, j int) bool {
			a, _ := strconv.Atoi(ids[i])
			b, _ := strconv.Atoi(ids[j])
			return a > b
		})
	} else {
		sort.Strings(ids)
	}

	out := make([]p4.Record, 0, len(ids))
	for _, id := range ids {
		rec := make(p4.Record, len(k.forms[id]))
		for field, v := range k.forms[id] {
			rec[strings.ToLower(field[:1])+field[1:]] = v
		}
		if k.command == "depot" {
			rec["name"] = id
		}
		out = append(out, rec)
	}
	return out
}

func (s *SpecServer) counter(req p4.Request) ([]p4.Record, error) {
	switch len(req.Args) {
	case 1:
		value, ok := s.counters[req.Args[0]]
		if !ok {
			value = "0"
		}
		return []p4.Record{{"counter": req.Args[0], "value": value}}, nil
	case 2:
		s.counters[req.Args[0]] = req.Args[1]
		return []p4.Record{{"counter": req.Args[0], "value": req.Args[1]}}, nil
	default:
		return nil, fail(req, "Usage: counter [ -d | -f ] name [ value ]")
	}
}

func (s *SpecServer) mustKind(command string) *specKind {
	k, ok := s.kinds[command]
	if !ok {
		panic(fmt.Sprintf("mockp4: unsupported spec command %q", command))
	}
	return k
}

func fail(req p4.Request, msg string) error {
	return &p4.CommandError{
		Command:  req.Command,
		Args:     append([]string(nil), req.Args...),
		Errors:   []string{msg},
		ExitCode: 1,
	}
}
