package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIDAllocatorIsMonotonic(t *testing.T) {
	a := NewIDAllocator(10)
	assert.False(t, a.Issued(10))

	prev := a.Next()
	assert.Equal(t, uint32(10), prev)
	for i := 0; i < 100; i++ {
		id := a.Next()
		assert.Greater(t, id, prev)
		prev = id
	}
	assert.True(t, a.Issued(10))
	assert.True(t, a.Issued(prev))
	assert.False(t, a.Issued(prev+1))
	assert.False(t, a.Issued(9))
}

func TestIDAllocatorsAreIndependent(t *testing.T) {
	a := NewIDAllocator(0)
	b := NewIDAllocator(0)
	a.Next()
	a.Next()
	assert.Equal(t, uint32(0), b.Next())
}
