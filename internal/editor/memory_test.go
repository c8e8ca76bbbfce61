package editor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryHostLifecycle(t *testing.T) {
	t.Parallel()

	h := NewMemoryHost()
	assert.Nil(t, h.ActiveEditor())

	h.Open("b", "/tmp/.env.b", "B=1")
	h.Open("a", "/tmp/.env.a", "A=1")

	active := h.ActiveEditor()
	require.NotNil(t, active)
	assert.Equal(t, ID("a"), active.ID())

	editors := h.Editors()
	require.Len(t, editors, 2)
	assert.Equal(t, ID("a"), editors[0].ID())
	assert.Equal(t, ID("b"), editors[1].ID())

	assert.True(t, h.Activate("b"))
	assert.False(t, h.Activate("missing"))
	assert.Equal(t, ID("b"), h.ActiveEditor().ID())

	h.Close("b")
	assert.Nil(t, h.ActiveEditor())
	_, ok := h.Editor("b")
	assert.False(t, ok)
}

func TestBufferDecorationsAreCopied(t *testing.T) {
	t.Parallel()

	h := NewMemoryHost()
	var notified []ID
	h.OnDecorate(func(id ID) { notified = append(notified, id) })

	b := h.Open("x", "/tmp/.env", "A=encrypted:1")
	decs := []Decoration{{Mask: true, After: `"1"`}}
	b.SetDecorations(decs)
	decs[0].After = "mutated"

	got := b.Decorations()
	require.Len(t, got, 1)
	assert.Equal(t, `"1"`, got[0].After)
	assert.Equal(t, []ID{"x"}, notified)

	b.SetText("A=encrypted:2")
	assert.Equal(t, "A=encrypted:2", b.Text())
	assert.Len(t, b.Decorations(), 1, "changing text leaves decorations to the controller")
}

func TestConfigChangedAffects(t *testing.T) {
	t.Parallel()

	assert.True(t, ConfigChanged{}.Affects("enableAutoReveal"))
	assert.True(t, ConfigChanged{Keys: []string{"enableAutoReveal"}}.Affects("enableAutoReveal"))
	assert.False(t, ConfigChanged{Keys: []string{"dotenvxPath"}}.Affects("enableAutoReveal"))
}
