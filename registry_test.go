package canary_test

import (
	"context"
	"testing"

	"github.com/jlisowski/canary"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noopHandler(_ context.Context, _ canary.Args) (any, error) {
	return "ok", nil
}

func TestRegistry_Register(t *testing.T) {
	t.Parallel()

	t.Run("registers and looks up a tool", func(t *testing.T) {
		t.Parallel()

		r := canary.NewRegistry()
		err := r.Register(canary.ToolDescriptor{Name: "echo", Handler: noopHandler})
		require.NoError(t, err)

		d, err := r.Lookup("echo")
		require.NoError(t, err)
		assert.Equal(t, "echo", d.Name)
	})

	t.Run("duplicate name fails and first registration stays intact", func(t *testing.T) {
		t.Parallel()

		r := canary.NewRegistry()
		first := canary.ToolDescriptor{Name: "echo", Description: "first", Handler: noopHandler}
		second := canary.ToolDescriptor{Name: "echo", Description: "second", Handler: noopHandler}

		require.NoError(t, r.Register(first))
		err := r.Register(second)
		require.ErrorIs(t, err, canary.ErrDuplicateTool)

		d, err := r.Lookup("echo")
		require.NoError(t, err)
		assert.Equal(t, "first", d.Description)
	})

	t.Run("empty name fails validation", func(t *testing.T) {
		t.Parallel()

		r := canary.NewRegistry()
		err := r.Register(canary.ToolDescriptor{Handler: noopHandler})
		assert.ErrorIs(t, err, canary.ErrValidation)
	})

	t.Run("nil handler fails validation", func(t *testing.T) {
		t.Parallel()

		r := canary.NewRegistry()
		err := r.Register(canary.ToolDescriptor{Name: "echo"})
		assert.ErrorIs(t, err, canary.ErrValidation)
	})
}

func TestRegistry_Lookup_Unknown(t *testing.T) {
	t.Parallel()

	r := canary.NewRegistry()
	_, err := r.Lookup("missing")
	assert.ErrorIs(t, err, canary.ErrUnknownTool)
}

func TestRegistry_Order(t *testing.T) {
	t.Parallel()

	r := canary.NewRegistry()
	for _, name := range []string{"charlie", "alpha", "bravo"} {
		require.NoError(t, r.Register(canary.ToolDescriptor{Name: name, Handler: noopHandler}))
	}

	var listed []string
	for _, d := range r.List() {
		listed = append(listed, d.Name)
	}
	assert.Equal(t, []string{"charlie", "alpha", "bravo"}, listed)

	var catalog []string
	for _, tool := range r.Catalog() {
		catalog = append(catalog, tool.Name)
	}
	assert.Equal(t, []string{"charlie", "alpha", "bravo"}, catalog)
}
