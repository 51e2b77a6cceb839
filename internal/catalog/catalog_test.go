package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_ListShape(t *testing.T) {
	c := New()
	list := c.List()

	require.Len(t, list, 18)
	assert.Equal(t, "gpt-4o", list[0].ID)
	for _, m := range list {
		assert.Equal(t, "model", m.Object)
		assert.Equal(t, "openai", m.OwnedBy)
		assert.Positive(t, m.Created)
	}
}

func TestNew_CreatedDescending(t *testing.T) {
	list := New().List()

	for i := 1; i < len(list); i++ {
		assert.Greater(t, list[i-1].Created, list[i].Created,
			"%s should be newer than %s", list[i-1].ID, list[i].ID)
	}
}

func TestList_ReturnsCopy(t *testing.T) {
	c := New()

	list := c.List()
	list[0].ID = "mutated"

	assert.Equal(t, "gpt-4o", c.List()[0].ID)
}

func TestGet_CaseInsensitive(t *testing.T) {
	c := New()

	lower, err := c.Get("gpt-4o")
	require.NoError(t, err)

	upper, err := c.Get("GPT-4O")
	require.NoError(t, err)

	assert.Equal(t, lower, upper)
	assert.Equal(t, "gpt-4o", upper.ID, "lookup preserves the canonical id")
}

func TestGet_NotFound(t *testing.T) {
	_, err := New().Get("claude-3-opus")
	assert.ErrorIs(t, err, ErrModelNotFound)
}

func TestIsStreamingSupported(t *testing.T) {
	c := New()

	assert.True(t, c.IsStreamingSupported("gpt-4o"))
	assert.True(t, c.IsStreamingSupported("GPT-3.5-Turbo"))
	assert.False(t, c.IsStreamingSupported("text-embedding-ada-002"))
	assert.False(t, c.IsStreamingSupported("whisper-1"))
	assert.False(t, c.IsStreamingSupported("dall-e-3"))
	assert.False(t, c.IsStreamingSupported("unknown-model"))
}

func TestIsVisionModel(t *testing.T) {
	c := New()

	assert.True(t, c.IsVisionModel("gpt-4o"))
	assert.True(t, c.IsVisionModel("gpt-4-vision-preview"))
	assert.False(t, c.IsVisionModel("gpt-4"))
	assert.False(t, c.IsVisionModel("gpt-4o-mini"))
}
