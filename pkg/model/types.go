// Copyright © 2018 One Concern

package model

import (
	"sort"
	"strings"
)

// Type tags a domain object, e.g. "Change".
type Type string

// Domain object types
const (
	TypeBranch  Type = "Branch"
	TypeChange  Type = "Change"
	TypeClient  Type = "Client"
	TypeCounter Type = "Counter"
	TypeDepot   Type = "Depot"
	TypeFile    Type = "File"
	TypeGroup   Type = "Group"
	TypeJob     Type = "Job"
	TypeLabel   Type = "Label"
	TypeUser    Type = "User"

	// TypeChangelist is an alias for TypeChange
	TypeChangelist Type = "Changelist"

	// TypeWorkspace is an alias for TypeClient
	TypeWorkspace Type = "Workspace"
)

const setSuffix = "Set"

// Kind distinguishes spec-backed objects from plain identified objects
type Kind uint8

const (
	// KindPlain objects only carry an identifier (e.g. files, counters)
	KindPlain Kind = iota

	// KindSpec objects are backed by a perforce spec form
	KindSpec
)

func (k Kind) String() string {
	if k == KindSpec {
		return "spec"
	}
	return "plain"
}

// TypeInfo describes how a domain type maps onto perforce commands
type TypeInfo struct {
	Type Type
	Kind Kind

	// SpecCommand is the command reading and writing the spec form, e.g. "change"
	SpecCommand string

	// QueryCommand is the command listing objects of this type, e.g. "changes"
	QueryCommand string
}

var (
	registry = map[Type]TypeInfo{
		TypeBranch:  {Type: TypeBranch, Kind: KindSpec, SpecCommand: "branch", QueryCommand: "branches"},
		TypeChange:  {Type: TypeChange, Kind: KindSpec, SpecCommand: "change", QueryCommand: "changes"},
		TypeClient:  {Type: TypeClient, Kind: KindSpec, SpecCommand: "client", QueryCommand: "clients"},
		TypeCounter: {Type: TypeCounter, Kind: KindPlain, QueryCommand: "counters"},
		TypeDepot:   {Type: TypeDepot, Kind: KindSpec, SpecCommand: "depot", QueryCommand: "depots"},
		TypeFile:    {Type: TypeFile, Kind: KindPlain, QueryCommand: "files"},
		TypeGroup:   {Type: TypeGroup, Kind: KindSpec, SpecCommand: "group", QueryCommand: "groups"},
		TypeJob:     {Type: TypeJob, Kind: KindSpec, SpecCommand: "job", QueryCommand: "jobs"},
		TypeLabel:   {Type: TypeLabel, Kind: KindSpec, SpecCommand: "label", QueryCommand: "labels"},
		TypeUser:    {Type: TypeUser, Kind: KindSpec, SpecCommand: "user", QueryCommand: "users"},
	}

	aliases = map[Type]Type{
		TypeChangelist: TypeChange,
		TypeWorkspace:  TypeClient,
	}
)

// Canonical resolves aliases, e.g. Workspace is Client
func Canonical(t Type) Type {
	if c, ok := aliases[t]; ok {
		return c
	}
	return t
}

// Lookup the description of a domain type. Aliases are resolved.
func Lookup(t Type) (TypeInfo, bool) {
	info, ok := registry[Canonical(t)]
	return info, ok
}

// IsSpec tells if a type is backed by a spec form
func (t Type) IsSpec() bool {
	info, ok := Lookup(t)
	return ok && info.Kind == KindSpec
}

// SetType yields the tag of a collection of this type, e.g. "ChangeSet"
func (t Type) SetType() Type {
	if t == "" {
		return ""
	}
	return Canonical(t) + setSuffix
}

func (t Type) String() string {
	return string(t)
}

// ParseType resolves a type token as found in schema documents.
//
// Tokens are either a domain type ("Change", "Workspace") or a
// collection of some domain type ("ChangeSet").
func ParseType(token string) (t Type, isSet bool, ok bool) {
	tok := Type(strings.TrimSpace(token))
	if _, known := Lookup(tok); known {
		return Canonical(tok), false, true
	}
	if strings.HasSuffix(string(tok), setSuffix) {
		base := Type(strings.TrimSuffix(string(tok), setSuffix))
		if _, known := Lookup(base); known {
			return Canonical(base), true, true
		}
	}
	return "", false, false
}

// Types lists all canonical domain types, sorted
func Types() []Type {
	types := make([]Type, 0, len(registry))
	for t := range registry {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}
