package schema_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"explorer/internal/domain"
	"explorer/internal/schema"
)

func TestCache_InferReplacesEntry(t *testing.T) {
	c, err := schema.NewCache(2)
	require.NoError(t, err)

	c.Infer("a", []*domain.Object{domain.ObjectOf("x", 1)})
	got, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, []string{"x"}, got.Paths())

	c.Infer("a", []*domain.Object{domain.ObjectOf("y", "z")})
	got, _ = c.Get("a")
	assert.Equal(t, []string{"y"}, got.Paths())
}

func TestCache_Evicts(t *testing.T) {
	c, err := schema.NewCache(2)
	require.NoError(t, err)

	c.Infer("a", nil)
	c.Infer("b", nil)
	c.Infer("c", nil)

	assert.Equal(t, 2, c.Len())
	_, ok := c.Get("a")
	assert.False(t, ok)

	c.Invalidate("b")
	_, ok = c.Get("b")
	assert.False(t, ok)
}
