// Copyright © 2018 One Concern

package core

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/oneconcern/p4oo/pkg/errors"
	"github.com/oneconcern/p4oo/pkg/model"
	"github.com/oneconcern/p4oo/pkg/p4"
	"github.com/oneconcern/p4oo/pkg/schema"
	"github.com/oneconcern/p4oo/pkg/status"
)

// NewSpecID is the identifier of specs which have not been created yet
const NewSpecID = "new"

var savedRex = regexp.MustCompile(`^\S+ (\S+) (?:created|saved)`)

// State of a spec in its lifecycle
type State uint8

// Lifecycle states
const (
	StateUnread State = iota
	StateIdentified
	StateRead
	StateModified
	StateSaved
	StateDeleted
)

func (s State) String() string {
	switch s {
	case StateUnread:
		return "unread"
	case StateIdentified:
		return "identified"
	case StateRead:
		return "read"
	case StateModified:
		return "modified"
	case StateSaved:
		return "saved"
	case StateDeleted:
		return "deleted"
	default:
		return "unknown"
	}
}

// Spec is a domain object backed by a perforce spec form.
//
// A spec holds the form last read from the server, and working attributes.
// Reading merges the server's attributes into the working set without
// overwriting values set by the caller. Saving writes the working set on
// top of the last form read.
//
// A Spec is not safe for concurrent use.
type Spec struct {
	typ       model.Type
	id        string
	state     State
	dirty     bool
	persisted p4.Record
	working   schema.Attributes
	conn      *Connection
}

// NewSpec builds a spec object of some type, with an optional identifier and connection.
//
// With no connection, the default connection is used.
func NewSpec(typ model.Type, id string, conn *Connection) *Spec {
	s := &Spec{
		typ:     model.Canonical(typ),
		id:      strings.TrimSpace(id),
		working: make(schema.Attributes),
		conn:    conn,
	}
	if s.id == NewSpecID {
		s.id = ""
	}
	if s.id != "" {
		s.state = StateIdentified
	}
	return s
}

// AsSpec exposes the spec engine of a domain object
func (s *Spec) AsSpec() *Spec {
	return s
}

// ObjectType of this spec
func (s *Spec) ObjectType() model.Type {
	return s.typ
}

// ObjectID of this spec. It is empty until the spec is identified.
func (s *Spec) ObjectID() string {
	return s.id
}

// State of this spec
func (s *Spec) State() State {
	return s.state
}

// Conn yields the connection of this spec
func (s *Spec) Conn() (*Connection, error) {
	if s.conn != nil {
		return s.conn, nil
	}
	return DefaultConnection()
}

func (s *Spec) String() string {
	return string(s.typ) + "(" + s.id + ")"
}

func (s *Spec) descriptor() (*schema.Command, *Connection, error) {
	conn, err := s.Conn()
	if err != nil {
		return nil, nil, err
	}
	info, ok := model.Lookup(s.typ)
	if !ok || info.Kind != model.KindSpec {
		return nil, nil, status.ErrUnsupportedSpec.WithDetail("%q", s.typ)
	}
	desc, err := conn.registry.LookupSpec(info.SpecCommand)
	if err != nil {
		return nil, nil, err
	}
	return desc, conn, nil
}

// Get an attribute.
//
// The spec is read first, unless the caller already set this attribute.
// A known attribute absent from the spec yields nil.
func (s *Spec) Get(ctx context.Context, name string) (interface{}, error) {
	if s.state == StateDeleted {
		return nil, status.ErrDeleted.WithDetail("%v", s)
	}
	desc, _, err := s.descriptor()
	if err != nil {
		return nil, err
	}
	key := strings.ToLower(name)
	if !desc.IsAttribute(key) {
		return nil, status.ErrUnknownAttribute.WithDetail("%q for %s", name, s.typ)
	}
	if v, ok := s.working[key]; ok {
		return v, nil
	}
	if err := s.Read(ctx, false); err != nil {
		return nil, err
	}
	return s.working[key], nil
}

// GetString gets an attribute as a string. List attributes are joined with new lines.
func (s *Spec) GetString(ctx context.Context, name string) (string, error) {
	v, err := s.Get(ctx, name)
	if err != nil {
		return "", err
	}
	switch value := v.(type) {
	case nil:
		return "", nil
	case string:
		return value, nil
	case int:
		return strconv.Itoa(value), nil
	case []string:
		return strings.Join(value, "\n"), nil
	case time.Time:
		return value.Format(schema.DateLayout), nil
	default:
		return "", status.ErrTypeMismatch.WithDetail("attribute %q is a %T", name, v)
	}
}

// GetStrings gets an attribute as a list of strings
func (s *Spec) GetStrings(ctx context.Context, name string) ([]string, error) {
	v, err := s.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	switch value := v.(type) {
	case nil:
		return nil, nil
	case []string:
		return append([]string(nil), value...), nil
	case string:
		return []string{value}, nil
	default:
		return nil, status.ErrTypeMismatch.WithDetail("attribute %q is a %T", name, v)
	}
}

// GetTime gets a date attribute. A missing date yields the zero time.
func (s *Spec) GetTime(ctx context.Context, name string) (time.Time, error) {
	v, err := s.Get(ctx, name)
	if err != nil {
		return time.Time{}, err
	}
	switch value := v.(type) {
	case nil:
		return time.Time{}, nil
	case time.Time:
		return value, nil
	default:
		return time.Time{}, status.ErrTypeMismatch.WithDetail("attribute %q is a %T", name, v)
	}
}

// Set an attribute. The spec is not read.
func (s *Spec) Set(name string, value interface{}) error {
	if s.state == StateDeleted {
		return status.ErrDeleted.WithDetail("%v", s)
	}
	if t, ok := value.(time.Time); ok && t.IsZero() {
		value = nil
	}
	s.working[strings.ToLower(name)] = value
	s.dirty = true
	if s.state == StateRead || s.state == StateSaved {
		s.state = StateModified
	}
	return nil
}

// Clear an attribute: it is removed from the spec on save
func (s *Spec) Clear(name string) error {
	return s.Set(name, nil)
}

// Attributes returns a copy of the working attributes
func (s *Spec) Attributes() schema.Attributes {
	return s.working.Clone()
}

// Persisted returns a copy of the spec form last read
func (s *Spec) Persisted() p4.Record {
	return s.persisted.Clone()
}

func (s *Spec) idFromWorking(desc *schema.Command) string {
	idAttr, err := desc.IDAttribute()
	if err != nil {
		return ""
	}
	id := formatID(s.working[idAttr])
	if id == NewSpecID {
		return ""
	}
	return id
}

func (s *Spec) identifiable(desc *schema.Command) bool {
	return s.id != "" || s.idFromWorking(desc) != "" || !desc.IsIDRequired()
}

// ResolveIdentifier determines the identifier of this spec.
//
// The identifier is either already known, set as an attribute, or read from
// the server for specs which do not require one (e.g. the current client).
func (s *Spec) ResolveIdentifier(ctx context.Context) (string, error) {
	if s.id != "" {
		return s.id, nil
	}
	desc, _, err := s.descriptor()
	if err != nil {
		return "", err
	}
	if id := s.idFromWorking(desc); id != "" {
		s.id = id
		if s.state == StateUnread {
			s.state = StateIdentified
		}
		return s.id, nil
	}
	if desc.IsIDRequired() {
		return "", status.ErrCannotIdentify.WithDetail("%s without identifier", s.typ)
	}
	if err := s.Read(ctx, false); err != nil {
		return "", err
	}
	if s.id == "" {
		return "", status.ErrCannotIdentify.WithDetail("%s without identifier", s.typ)
	}
	return s.id, nil
}

// Read the spec form from the server.
//
// Unless forced, a spec is only read once. Attributes set by the caller are kept.
func (s *Spec) Read(ctx context.Context, force bool) error {
	if s.state == StateDeleted {
		return status.ErrDeleted.WithDetail("%v", s)
	}
	if s.persisted != nil && !force {
		return nil
	}
	desc, conn, err := s.descriptor()
	if err != nil {
		return err
	}
	if s.id == "" {
		s.id = s.idFromWorking(desc)
	}
	if s.id == "" && desc.IsIDRequired() {
		return status.ErrCannotIdentify.WithDetail("%s without identifier", s.typ)
	}

	specCmd, _ := desc.SpecCommand()
	out, err := conn.exec(ctx, specCmd, []string{"-o", s.id}, nil, nil)
	if err != nil {
		return err
	}
	form, ok := firstForm(out)
	if !ok {
		return status.ErrMalformedRecord.WithDetail("no spec form from %s -o %s", specCmd, s.id)
	}
	attrs, err := desc.Decode(form)
	if err != nil {
		return err
	}
	s.persisted = form.Clone()
	s.merge(attrs)

	if s.id == "" {
		s.id = s.idFromWorking(desc)
	}
	if s.state == StateUnread || s.state == StateIdentified {
		if s.dirty {
			s.state = StateModified
		} else {
			s.state = StateRead
		}
	}
	return nil
}

// merge attributes read from the server, without overwriting values set by the caller
func (s *Spec) merge(attrs schema.Attributes) {
	for k, v := range attrs {
		if _, set := s.working[k]; !set {
			s.working[k] = v
		}
	}
}

// adopt attributes decoded from query output, e.g. for a materialized object
func (s *Spec) adopt(attrs schema.Attributes) {
	for k, v := range attrs {
		s.working[k] = v
	}
}

// Refresh discards all attributes and reads the spec again
func (s *Spec) Refresh(ctx context.Context) error {
	if s.state == StateDeleted {
		return status.ErrDeleted.WithDetail("%v", s)
	}
	s.persisted = nil
	s.working = make(schema.Attributes)
	s.dirty = false
	if s.id != "" {
		s.state = StateIdentified
	} else {
		s.state = StateUnread
	}
	return s.Read(ctx, false)
}

// Save the spec.
//
// Working attributes are written on top of the form read from the server.
// New specs get their identifier from the server's confirmation. The spec
// is read again after saving.
func (s *Spec) Save(ctx context.Context, force bool) error {
	if s.state == StateDeleted {
		return status.ErrDeleted.WithDetail("%v", s)
	}
	desc, conn, err := s.descriptor()
	if err != nil {
		return err
	}
	specCmd, _ := desc.SpecCommand()

	var args []string
	if force {
		forceOption, err := desc.ForceOption()
		if err != nil {
			return err
		}
		args = []string{"-i", forceOption}
	} else {
		args = []string{"-i"}
	}

	if s.id == "" && len(s.working) == 0 && s.persisted == nil {
		return status.ErrNothingToSave.WithDetail("%s", s.typ)
	}
	for _, name := range s.working.Names() {
		if !desc.IsAttribute(name) {
			return status.ErrUnknownAttribute.WithDetail("%q for %s", name, s.typ)
		}
	}

	if s.persisted == nil && s.identifiable(desc) {
		if err := s.Read(ctx, false); err != nil {
			return err
		}
	}

	form, err := desc.Encode(s.working, s.persisted)
	if err != nil {
		return err
	}
	idField, _ := desc.IDField()
	if v, ok := form.Lookup(idField); ok && strings.TrimSpace(v) != "" {
		if s.id == "" && strings.TrimSpace(v) != NewSpecID {
			s.id = strings.TrimSpace(v)
		}
	} else {
		form.Remove(idField)
		if s.id != "" {
			form[idField] = s.id
		} else {
			form[idField] = NewSpecID
		}
	}

	out, err := conn.exec(ctx, specCmd, args, form, nil)
	if err != nil {
		if !p4.IsWarning(err, nil) {
			return err
		}
		conn.logger.Warn("spec saved with warnings", zap.Stringer("spec", s), zap.Error(err))
	}

	if s.id == "" {
		id, ok := savedID(out)
		if !ok {
			return status.ErrCannotIdentify.WithDetail("no identifier in the output of %s -i: %q", specCmd, strings.Join(p4.Messages(out), "\n"))
		}
		s.id = id
	}

	if err := s.Refresh(ctx); err != nil {
		return err
	}
	s.state = StateSaved
	return nil
}

// Delete the spec.
//
// It returns false when there is nothing identified to delete: a spec with neither
// an identifier nor any attribute is never resolved to the current user or client.
// A failure to read the spec beforehand is tolerated: the server has the final word.
func (s *Spec) Delete(ctx context.Context, force bool) (bool, error) {
	if s.state == StateDeleted {
		return false, status.ErrDeleted.WithDetail("%v", s)
	}
	if s.id == "" && len(s.working) == 0 && s.persisted == nil {
		return false, nil
	}
	desc, conn, err := s.descriptor()
	if err != nil {
		return false, err
	}
	specCmd, _ := desc.SpecCommand()

	args := []string{"-d"}
	if force {
		forceOption, err := desc.ForceOption()
		if err != nil {
			return false, err
		}
		args = append(args, forceOption)
	}

	if s.persisted == nil {
		if err := s.Read(ctx, false); err != nil {
			_, isCommandError := p4.AsCommandError(err)
			if !isCommandError && !errors.Is(err, status.ErrCannotIdentify) {
				return false, err
			}
			conn.logger.Debug("deleting unread spec", zap.Stringer("spec", s), zap.Error(err))
		}
	}
	if s.id == "" {
		return false, nil
	}

	out, err := conn.exec(ctx, specCmd, append(args, s.id), nil, nil)
	if err != nil {
		return false, err
	}

	idField, _ := desc.IDField()
	if err := VerifyDeletion(idField, s.id, p4.Messages(out)); err != nil {
		return false, err
	}
	s.state = StateDeleted
	s.persisted = nil
	return true, nil
}

// VerifyDeletion checks the server's confirmation of a deletion, e.g. "Client ws deleted."
//
// Any of the returned messages may confirm the deletion, regardless of case.
func VerifyDeletion(idField, id string, messages []string) error {
	rex, err := regexp.Compile(`(?i)^` + regexp.QuoteMeta(idField) + ` ` + regexp.QuoteMeta(id) + ` (.*)deleted\.$`)
	if err != nil {
		return status.ErrDeleteMismatch.Wrap(err)
	}
	for _, msg := range messages {
		m := rex.FindStringSubmatch(strings.TrimSpace(msg))
		if m != nil && m[1] == "" {
			return nil
		}
	}
	return status.ErrDeleteMismatch.WithDetail("%q", strings.Join(messages, "\n"))
}

// JSON renders the spec attributes as JSON. The spec is read first when possible.
func (s *Spec) JSON(ctx context.Context) ([]byte, error) {
	desc, _, err := s.descriptor()
	if err != nil {
		return nil, err
	}
	if s.state != StateDeleted && s.identifiable(desc) {
		if err := s.Read(ctx, false); err != nil {
			return nil, err
		}
	}
	doc := map[string]interface{}{
		"type":       s.typ,
		"id":         s.id,
		"state":      s.state.String(),
		"attributes": s.working,
	}
	return jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(doc)
}

func firstForm(out []p4.Record) (p4.Record, bool) {
	for _, rec := range out {
		if _, isMessage := rec.Message(); isMessage && len(rec) == 1 {
			continue
		}
		return rec, true
	}
	return nil, false
}

func savedID(out []p4.Record) (string, bool) {
	for _, msg := range p4.Messages(out) {
		if m := savedRex.FindStringSubmatch(strings.TrimSpace(msg)); m != nil {
			return m[1], true
		}
	}
	return "", false
}
