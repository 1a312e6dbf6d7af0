package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oneconcern/p4oo/pkg/errors"
	"github.com/oneconcern/p4oo/pkg/model"
	"github.com/oneconcern/p4oo/pkg/p4"
	"github.com/oneconcern/p4oo/pkg/status"
)

type testObject struct {
	typ model.Type
	id  string
}

func (o testObject) ObjectType() model.Type { return o.typ }
func (o testObject) ObjectID() string       { return o.id }

type testSet struct {
	typ     model.Type
	members []Object
}

func (s testSet) SetType() model.Type { return s.typ.SetType() }
func (s testSet) Members() []Object   { return s.members }

func newTestSet(typ model.Type, ids ...string) testSet {
	s := testSet{typ: typ}
	for _, id := range ids {
		s.members = append(s.members, testObject{typ: typ, id: id})
	}
	return s
}

func lookup(t testing.TB, name string) *Command {
	cmd, err := testRegistry(t).Lookup(name)
	require.NoError(t, err)
	return cmd
}

func TestValidate(t *testing.T) {
	for _, toPin := range []struct {
		Name      string
		Command   string
		Query     Query
		Args      []string
		Overrides p4.Overrides
	}{
		{
			Name:    "single option",
			Command: "changes",
			Query:   NewQuery(F("status", "pending")),
			Args:    []string{"-s", "pending"},
		},
		{
			Name:    "options are prepended",
			Command: "changes",
			Query:   NewQuery(F("status", "pending"), F("maxresults", 1)),
			Args:    []string{"-m", "1", "-s", "pending"},
		},
		{
			Name:    "filter names are case insensitive",
			Command: "changes",
			Query:   NewQuery(F("MaxResults", 10)),
			Args:    []string{"-m", "10"},
		},
		{
			Name:    "flags are prepended, values appended",
			Command: "changes",
			Query:   NewQuery(F("files", "//depot/..."), F("longoutput", true), F("user", "bob")),
			Args:    []string{"-u", "bob", "-l", "//depot/..."},
		},
		{
			Name:    "false flags and nulls are ignored",
			Command: "changes",
			Query:   NewQuery(F("longoutput", false), F("user", nil), F("status", Null())),
			Args:    []string{},
		},
		{
			Name:    "domain objects are replaced by their identifier",
			Command: "changes",
			Query:   NewQuery(F("client", testObject{typ: model.TypeClient, id: "ws"})),
			Args:    []string{"-c", "ws"},
		},
		{
			Name:    "aliased domain objects",
			Command: "changes",
			Query:   NewQuery(F("client", testObject{typ: model.TypeWorkspace, id: "ws"})),
			Args:    []string{"-c", "ws"},
		},
		{
			Name:    "sets expand to their identifiers",
			Command: "files",
			Query:   NewQuery(F("files", newTestSet(model.TypeFile, "//depot/a", "//depot/b", "//depot/c"))),
			Args:    []string{"//depot/a", "//depot/b", "//depot/c"},
		},
		{
			Name:    "lists mix accepted types",
			Command: "files",
			Query: NewQuery(F("files", []interface{}{
				"//depot/a",
				testObject{typ: model.TypeFile, id: "//depot/b"},
				newTestSet(model.TypeFile, "//depot/c"),
			})),
			Args: []string{"//depot/a", "//depot/b", "//depot/c"},
		},
		{
			Name:    "sets without matching set type are taken member by member",
			Command: "groups",
			Query:   NewQuery(F("member", newTestSet(model.TypeUser, "bob"))),
			Args:    []string{"bob"},
		},
		{
			Name:    "config options",
			Command: "sync",
			Query: NewQuery(
				F("files", []string{"//ws/a/...", "//ws/b/..."}),
				F("p4client", testObject{typ: model.TypeClient, id: "ws"}),
				F("force", true),
			),
			Args:      []string{"-f", "//ws/a/...", "//ws/b/..."},
			Overrides: p4.Overrides{p4.SettingClient: "ws"},
		},
		{
			Name:    "bundled arguments",
			Command: "diff2",
			Query:   NewQuery(F("files", []string{"//depot/a@1", "//depot/a@2"}), F("unified", 5), F("quiet", true)),
			Args:    []string{"-q", "-du5", "//depot/a@1", "//depot/a@2"},
		},
		{
			Name:    "integer or domain object",
			Command: "revert",
			Query:   NewQuery(F("change", testObject{typ: model.TypeChangelist, id: "42"})),
			Args:    []string{"-c", "42"},
		},
	} {
		fixture := toPin
		t.Run(fixture.Name, func(t *testing.T) {
			args, overrides, err := lookup(t, fixture.Command).Validate(fixture.Query)
			require.NoError(t, err)
			assert.Equal(t, fixture.Args, args)
			if fixture.Overrides == nil {
				assert.Empty(t, overrides)
			} else {
				assert.Equal(t, fixture.Overrides, overrides)
			}
		})
	}
}

func TestValidateErrors(t *testing.T) {
	for _, toPin := range []struct {
		Name     string
		Command  string
		Query    Query
		Expected error
		Contains string
	}{
		{
			Name:     "no query options",
			Command:  "counter",
			Query:    NewQuery(F("name", "x")),
			Expected: status.ErrQueryNotSupported,
		},
		{
			Name:     "unknown filter",
			Command:  "changes",
			Query:    NewQuery(F("owner", "bob")),
			Expected: status.ErrInvalidFilter,
			Contains: `"owner"`,
		},
		{
			Name:     "type mismatch",
			Command:  "changes",
			Query:    NewQuery(F("maxresults", "one")),
			Expected: status.ErrTypeMismatch,
			Contains: `got "one", but filter key "maxresults" accepts arguments of only these types: integer`,
		},
		{
			Name:     "wrong domain type",
			Command:  "changes",
			Query:    NewQuery(F("client", testObject{typ: model.TypeUser, id: "bob"})),
			Expected: status.ErrTypeMismatch,
			Contains: "string, Client",
		},
		{
			Name:     "set members of the wrong type",
			Command:  "files",
			Query:    NewQuery(F("files", newTestSet(model.TypeChange, "1", "2"))),
			Expected: status.ErrTypeMismatch,
		},
		{
			Name:     "flag with a value",
			Command:  "changes",
			Query:    NewQuery(F("longoutput", "yes")),
			Expected: status.ErrMultiplicity,
			Contains: "accepts no arguments",
		},
		{
			Name:     "single value option with many values",
			Command:  "changes",
			Query:    NewQuery(F("maxresults", []int{1, 2})),
			Expected: status.ErrMultiplicity,
			Contains: "accepts exactly 1 argument",
		},
		{
			Name:     "single value option with a set",
			Command:  "groups",
			Query:    NewQuery(F("member", newTestSet(model.TypeUser, "bob", "alice"))),
			Expected: status.ErrMultiplicity,
		},
		{
			Name:     "single value option enabled as a flag",
			Command:  "changes",
			Query:    NewQuery(F("status", true)),
			Expected: status.ErrMultiplicity,
		},
		{
			Name:     "unsupported native value",
			Command:  "changes",
			Query:    NewQuery(F("status", 3.14)),
			Expected: status.ErrTypeMismatch,
		},
	} {
		fixture := toPin
		t.Run(fixture.Name, func(t *testing.T) {
			_, _, err := lookup(t, fixture.Command).Validate(fixture.Query)
			require.Error(t, err)
			assert.True(t, errors.Is(err, fixture.Expected), "got %v", err)
			assert.True(t, status.IsFatal(err))
			if fixture.Contains != "" {
				assert.Contains(t, err.Error(), fixture.Contains)
			}
		})
	}
}

func TestQueryWith(t *testing.T) {
	base := NewQuery(F("status", "pending"))
	q := base.With("maxresults", 1)
	assert.Len(t, base, 1)
	require.Len(t, q, 2)
	assert.Equal(t, "maxresults", q[1].Name)
}

func TestValueOf(t *testing.T) {
	v, err := ValueOf(int64(3))
	require.NoError(t, err)
	assert.Equal(t, KindInteger, v.Kind())
	assert.Equal(t, "3", v.String())

	v, err = ValueOf(newTestSet(model.TypeFile, "//a"))
	require.NoError(t, err)
	assert.Equal(t, KindSet, v.Kind())
	assert.Equal(t, "FileSet(1)", v.String())

	v, err = ValueOf([]interface{}{"a", 1, nil})
	require.NoError(t, err)
	assert.Equal(t, KindList, v.Kind())
	assert.Equal(t, `["a", 1, null]`, v.String())

	_, err = ValueOf(map[string]string{})
	assert.True(t, errors.Is(err, status.ErrTypeMismatch))

	assert.True(t, ObjectValue(nil).IsNull())
	assert.True(t, SetValue(nil).IsNull())
}
