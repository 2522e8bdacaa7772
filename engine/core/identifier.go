package core

import "sync/atomic"

// IDAllocator hands out monotonically increasing ids. Released ids are never
// handed out again, so a stale id can always be told apart from a live one.
type IDAllocator struct {
	seed uint32
	next atomic.Uint32
}

func NewIDAllocator(seed uint32) *IDAllocator {
	a := &IDAllocator{seed: seed}
	a.next.Store(seed)
	return a
}

func (a *IDAllocator) Next() uint32 {
	return a.next.Add(1) - 1
}

// Issued reports whether id was handed out by this allocator.
func (a *IDAllocator) Issued(id uint32) bool {
	return id >= a.seed && id < a.next.Load()
}
