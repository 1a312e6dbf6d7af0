package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError(t *testing.T) {
	e1 := New("cause1")
	e2 := New("cause2").Wrap(e1)
	e := New("dummy").Wrap(e2)
	e3 := e.Unwrap()
	assert.True(t, Is(e, e1))
	assert.True(t, Is(e, e2))
	assert.True(t, e3 == e2)
}

func TestSentinelNotMutated(t *testing.T) {
	sentinel := New("not found")
	derived := sentinel.Wrap(New("boom"))

	assert.Equal(t, "not found", sentinel.Error())
	assert.Nil(t, sentinel.Unwrap())
	assert.Equal(t, "not found: boom", derived.Error())
	assert.True(t, Is(derived, sentinel))
	assert.False(t, Is(sentinel, derived))
}

func TestWithDetail(t *testing.T) {
	sentinel := New("invalid filter")
	d := sentinel.WithDetail("key %q", "foo").WithDetail("command %s", "changes")

	assert.Equal(t, `invalid filter: key "foo": command changes`, d.Error())
	assert.True(t, Is(d, sentinel))

	wrapped := fmt.Errorf("query: %w", d)
	assert.True(t, Is(wrapped, sentinel))
}

func TestWithin(t *testing.T) {
	fatal := New("fatal")
	warning := New("warning")
	unsupported := New("unsupported command").Within(fatal)

	assert.True(t, Is(unsupported, fatal))
	assert.False(t, Is(unsupported, warning))

	derived := unsupported.WithDetail("frob")
	assert.True(t, Is(derived, fatal))
	assert.True(t, Is(derived, unsupported))

	var target *Error
	require.True(t, As(fmt.Errorf("ctx: %w", derived), &target))
	assert.Equal(t, "unsupported command: frob", target.Error())
}
