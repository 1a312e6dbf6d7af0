package core

import (
	"fmt"

	"github.com/oneconcern/p4oo/pkg/model"
	"github.com/oneconcern/p4oo/pkg/schema"
)

var _ schema.Collection = &Set{}

// Set is an ordered collection of domain objects of one type, without duplicates.
//
// Objects are told apart by their type and identifier. Objects not identified
// yet are told apart by reference.
type Set struct {
	typ   model.Type
	conn  *Connection
	items []Object
	index map[string]int
}

// NewSet builds a set of objects of some type
func NewSet(typ model.Type, objs ...Object) *Set {
	s := &Set{
		typ:   model.Canonical(typ),
		index: make(map[string]int),
	}
	s.Add(objs...)
	return s
}

// Type of the members of this set
func (s *Set) Type() model.Type {
	return s.typ
}

// SetType is the type tag of this set, e.g. "ChangeSet"
func (s *Set) SetType() model.Type {
	return s.typ.SetType()
}

// Conn yields the connection of this set, if any
func (s *Set) Conn() (*Connection, error) {
	if s.conn != nil {
		return s.conn, nil
	}
	return DefaultConnection()
}

// Len is the number of members
func (s *Set) Len() int {
	return len(s.items)
}

// At returns the i-th member
func (s *Set) At(i int) Object {
	return s.items[i]
}

// Objects returns the members, in order
func (s *Set) Objects() []Object {
	return append([]Object(nil), s.items...)
}

// Members returns the members as filter values
func (s *Set) Members() []schema.Object {
	members := make([]schema.Object, 0, len(s.items))
	for _, o := range s.items {
		members = append(members, o)
	}
	return members
}

// IDs of the members, in order
func (s *Set) IDs() []string {
	ids := make([]string, 0, len(s.items))
	for _, o := range s.items {
		ids = append(ids, o.ObjectID())
	}
	return ids
}

// Contains tells if an object is a member
func (s *Set) Contains(o Object) bool {
	_, ok := s.index[key(o)]
	return ok
}

// Add objects, skipping those already present. It returns the number of objects actually added.
func (s *Set) Add(objs ...Object) int {
	added := 0
	for _, o := range objs {
		if o == nil {
			continue
		}
		k := key(o)
		if _, ok := s.index[k]; ok {
			continue
		}
		s.index[k] = len(s.items)
		s.items = append(s.items, o)
		added++
	}
	return added
}

// Remove objects. It returns the number of objects actually removed.
func (s *Set) Remove(objs ...Object) int {
	drop := make(map[string]struct{}, len(objs))
	for _, o := range objs {
		if o == nil {
			continue
		}
		k := key(o)
		if _, ok := s.index[k]; ok {
			drop[k] = struct{}{}
		}
	}
	if len(drop) == 0 {
		return 0
	}

	kept := make([]Object, 0, len(s.items)-len(drop))
	s.index = make(map[string]int, len(s.items)-len(drop))
	for _, o := range s.items {
		k := key(o)
		if _, ok := drop[k]; ok {
			continue
		}
		s.index[k] = len(kept)
		kept = append(kept, o)
	}
	s.items = kept
	return len(drop)
}

// Union of this set with another, in order: members of this set first
func (s *Set) Union(other *Set) *Set {
	u := s.Clone()
	if other != nil {
		u.Add(other.items...)
	}
	return u
}

// Intersect keeps the members of this set which also belong to the other
func (s *Set) Intersect(other *Set) *Set {
	i := s.empty()
	if other == nil {
		return i
	}
	for _, o := range s.items {
		if other.Contains(o) {
			i.Add(o)
		}
	}
	return i
}

// Difference keeps the members of this set which do not belong to the other
func (s *Set) Difference(other *Set) *Set {
	d := s.empty()
	for _, o := range s.items {
		if other == nil || !other.Contains(o) {
			d.Add(o)
		}
	}
	return d
}

// Clone the set. Members are shared.
func (s *Set) Clone() *Set {
	c := s.empty()
	c.Add(s.items...)
	return c
}

func (s *Set) empty() *Set {
	return &Set{typ: s.typ, conn: s.conn, index: make(map[string]int)}
}

func (s *Set) String() string {
	return fmt.Sprintf("%s%v", s.SetType(), s.IDs())
}

func key(o Object) string {
	if id := o.ObjectID(); id != "" {
		return string(model.Canonical(o.ObjectType())) + "\x00" + id
	}
	return fmt.Sprintf("%p", o)
}
