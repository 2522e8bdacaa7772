package vulkan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/grindsim/engine/renderer/metadata"
)

func TestHandleTable(t *testing.T) {
	table := newHandleTable[metadata.Buffer, string]()
	a := table.add("a")
	b := table.add("b")
	assert.True(t, a.IsValid())
	assert.Equal(t, a+1, b)

	v, ok := table.get(b)
	require.True(t, ok)
	assert.Equal(t, "b", v)

	_, ok = table.get(0)
	assert.False(t, ok, "zero is never handed out")

	_, ok = table.remove(a)
	assert.True(t, ok)
	_, ok = table.remove(a)
	assert.False(t, ok)

	c := table.add("c")
	assert.Greater(t, c, b, "handles are not reused")
	assert.Equal(t, 2, table.len())
	assert.Equal(t, []string{"b", "c"}, table.drain())
	assert.Zero(t, table.len())
}
