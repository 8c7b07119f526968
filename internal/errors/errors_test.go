package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilderBasics(t *testing.T) {
	t.Parallel()

	err := Newf("something broke: %d", 42).
		Category(CategoryDatabase).
		Component("datastore").
		Context("operation", "save").
		Build()

	assert.Equal(t, "something broke: 42", err.Error())
	assert.Equal(t, string(CategoryDatabase), err.GetCategory())
	assert.Equal(t, "datastore", err.Component)
	assert.Equal(t, "save", err.GetContext()["operation"])
	assert.False(t, err.Timestamp.IsZero())
}

func TestBuilderDefaults(t *testing.T) {
	t.Parallel()

	err := Newf("bare").Build()
	assert.Equal(t, ComponentUnknown, err.Component)
	assert.Equal(t, string(CategoryGeneric), err.GetCategory())
	assert.Nil(t, err.GetContext())
}

func TestUnwrapPreservesCause(t *testing.T) {
	t.Parallel()

	cause := NewStd("root cause")
	err := New(fmt.Errorf("wrapped: %w", cause)).Category(CategoryFileIO).Build()

	assert.True(t, Is(err, cause))
	assert.ErrorContains(t, err, "root cause")
}

func TestIsCategory(t *testing.T) {
	t.Parallel()

	err := Newf("missing").Category(CategoryNotFound).Build()
	assert.True(t, IsCategory(err, CategoryNotFound))
	assert.True(t, IsNotFound(err))
	assert.False(t, IsCategory(err, CategoryDatabase))

	// Wrapped enhanced errors still match through As.
	wrapped := fmt.Errorf("outer: %w", err)
	assert.True(t, IsNotFound(wrapped))

	assert.False(t, IsNotFound(NewStd("plain")))
}

func TestContextCopyIsolation(t *testing.T) {
	t.Parallel()

	err := Newf("x").Context("k", "v").Build()
	ctx := err.GetContext()
	require.NotNil(t, ctx)
	ctx["k"] = "mutated"

	assert.Equal(t, "v", err.GetContext()["k"], "returned context must be a copy")
}
