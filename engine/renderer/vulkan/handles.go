package vulkan

import (
	"sort"
	"sync"
)

// handleTable hands out the opaque handles the frame pipeline sees. Handles
// start at 1 and are never reused.
type handleTable[H ~uint32, V any] struct {
	mu    sync.Mutex
	next  H
	items map[H]V
}

func newHandleTable[H ~uint32, V any]() *handleTable[H, V] {
	return &handleTable[H, V]{items: make(map[H]V)}
}

func (t *handleTable[H, V]) add(v V) H {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.next++
	t.items[t.next] = v
	return t.next
}

func (t *handleTable[H, V]) get(h H) (V, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	v, ok := t.items[h]
	return v, ok
}

func (t *handleTable[H, V]) remove(h H) (V, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	v, ok := t.items[h]
	delete(t.items, h)
	return v, ok
}

func (t *handleTable[H, V]) len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.items)
}

// drain removes every entry and returns them in creation order.
func (t *handleTable[H, V]) drain() []V {
	t.mu.Lock()
	defer t.mu.Unlock()
	keys := make([]H, 0, len(t.items))
	for h := range t.items {
		keys = append(keys, h)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	out := make([]V, 0, len(keys))
	for _, h := range keys {
		out = append(out, t.items[h])
	}
	t.items = make(map[H]V)
	return out
}
