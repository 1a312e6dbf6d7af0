/*
Package p4oo manipulates perforce objects from Go.

Changes, clients, labels, users and the other perforce specs are exposed as typed
objects, which are read lazily, modified, saved and deleted through the p4 command
line client. Queries are validated against a schema describing perforce commands,
and their output is materialized into sets of objects.

The p4oo command line tool, under cmd/p4oo, exposes queries and spec operations.
*/
package p4oo
