// Package model describes the domain objects manipulated by p4oo.
//
// The object model is composed of:
//
//  Specs:
//    Objects backed by a perforce spec form, which can be read, modified, saved and deleted.
//    Branches, changes, clients (workspaces), depots, groups, jobs, labels and users are specs.
//
//  Plain objects:
//    Objects known only by an identifier, such as files and counters.
//
//  Sets:
//    Ordered collections of objects of one type, e.g. a ChangeSet.
package model
