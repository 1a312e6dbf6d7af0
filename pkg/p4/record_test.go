package p4

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordLookup(t *testing.T) {
	rec := Record{"Change": "42", "description": "fix"}

	v, ok := rec.Lookup("Change")
	require.True(t, ok)
	assert.Equal(t, "42", v)

	v, ok = rec.Lookup("change")
	require.True(t, ok)
	assert.Equal(t, "42", v)

	v, ok = rec.Lookup("Description")
	require.True(t, ok)
	assert.Equal(t, "fix", v)

	_, ok = rec.Lookup("Status")
	assert.False(t, ok)
}

func TestRecordList(t *testing.T) {
	rec := Record{
		"View1":   "//depot/b/... //ws/b/...",
		"View0":   "//depot/a/... //ws/a/...",
		"View3":   "//depot/orphan/...",
		"Viewing": "no",
		"Client":  "ws",
	}

	list, ok := rec.List("View")
	require.True(t, ok)
	assert.Equal(t, []string{"//depot/a/... //ws/a/...", "//depot/b/... //ws/b/..."}, list)

	_, ok = rec.List("Client")
	assert.False(t, ok)

	rec.SetList("view", []string{"//depot/c/... //ws/c/..."})
	list, ok = rec.List("View")
	require.True(t, ok)
	assert.Equal(t, []string{"//depot/c/... //ws/c/..."}, list)
	assert.Contains(t, rec, "Viewing")
	assert.NotContains(t, rec, "View3")
}

func TestRecordRemove(t *testing.T) {
	rec := Record{"Host": "a", "host": "b", "Hosts0": "c", "Host0": "d", "Owner": "bob"}
	rec.Remove("HOST")
	assert.Equal(t, Record{"Hosts0": "c", "Owner": "bob"}, rec)
}

func TestRecordClone(t *testing.T) {
	var nilRecord Record
	assert.Nil(t, nilRecord.Clone())

	rec := Record{"a": "1"}
	c := rec.Clone()
	c["a"] = "2"
	assert.Equal(t, "1", rec["a"])
}

func TestMessages(t *testing.T) {
	out := []Record{
		{"change": "1"},
		{MessageKey: "Change 1 created."},
		{MessageKey: "done"},
	}
	assert.Equal(t, []string{"Change 1 created.", "done"}, Messages(out))
}

func TestParseTagged(t *testing.T) {
	const output = `... change 12
... time 1546300800
... user bob
... desc multi
line description

... change 11
... ... otherOpen0 alice
... status submitted

Change 12 updated.
`
	records, err := ParseTagged(strings.NewReader(output))
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, Record{
		"change": "12",
		"time":   "1546300800",
		"user":   "bob",
		"desc":   "multi\nline description",
	}, records[0])
	assert.Equal(t, Record{"change": "11", "otherOpen0": "alice", "status": "submitted"}, records[1])

	msg, ok := records[2].Message()
	require.True(t, ok)
	assert.Equal(t, "Change 12 updated.", msg)
}

func TestParseTaggedEmptyValue(t *testing.T) {
	records, err := ParseTagged(strings.NewReader("... Description\n... Owner bob\n"))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, Record{"Description": "", "Owner": "bob"}, records[0])
}

func TestParseRaw(t *testing.T) {
	records, err := ParseRaw(strings.NewReader("==== a\n\nline\n"))
	require.NoError(t, err)
	assert.Equal(t, []Record{{MessageKey: "==== a"}, {MessageKey: ""}, {MessageKey: "line"}}, records)
}

func TestRenderForm(t *testing.T) {
	form := RenderForm(Record{
		"Client":      "ws",
		"Description": "first\nsecond\n",
		"View0":       "//depot/a/... //ws/a/...",
		"View1":       "//depot/b/... //ws/b/...",
	})

	assert.Equal(t, "Client:\tws\n\n"+
		"Description:\n\tfirst\n\tsecond\n\n"+
		"View:\n\t//depot/a/... //ws/a/...\n\t//depot/b/... //ws/b/...\n\n", form)
}
