package cache

// entry is a cached value linked into a recency ring.
type entry[K comparable, V any] struct {
	key        K
	value      V
	prev, next *entry[K, V]
}

// ring orders entries by recency around a sentinel: root.next is the most
// recently used entry and root.prev the least. It is not safe for
// concurrent use.
type ring[K comparable, V any] struct {
	root entry[K, V]
}

func (r *ring[K, V]) init() {
	r.root.prev = &r.root
	r.root.next = &r.root
}

func (r *ring[K, V]) pushFront(e *entry[K, V]) {
	e.prev = &r.root
	e.next = r.root.next
	r.root.next.prev = e
	r.root.next = e
}

// touch marks e as the most recently used entry.
func (r *ring[K, V]) touch(e *entry[K, V]) {
	if r.root.next == e {
		return
	}
	r.remove(e)
	r.pushFront(e)
}

func (r *ring[K, V]) remove(e *entry[K, V]) {
	e.prev.next = e.next
	e.next.prev = e.prev
	e.prev, e.next = nil, nil
}

// back returns the least recently used entry, or nil when r is empty.
func (r *ring[K, V]) back() *entry[K, V] {
	if r.root.prev == &r.root {
		return nil
	}
	return r.root.prev
}
