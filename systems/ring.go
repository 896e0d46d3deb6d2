package systems

// Ring is a fixed-capacity double-ended queue that keeps insertion order.
//
// Eviction policy: PushBack on a full ring drops the front (oldest) element
// before appending, so Len never exceeds Cap.
type Ring[T any] struct {
	buf  []T
	head int
	size int
}

// NewRing creates a ring with the given capacity (minimum 1).
func NewRing[T any](capacity int) *Ring[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &Ring[T]{buf: make([]T, capacity)}
}

// Len returns the number of stored elements.
func (r *Ring[T]) Len() int { return r.size }

// Cap returns the fixed capacity.
func (r *Ring[T]) Cap() int { return len(r.buf) }

// Full reports whether the next PushBack will evict.
func (r *Ring[T]) Full() bool { return r.size == len(r.buf) }

// PushBack appends v. If the ring was full, the evicted front element is
// returned with ok=true.
func (r *Ring[T]) PushBack(v T) (evicted T, ok bool) {
	if r.Full() {
		evicted, ok = r.PopFront()
	}
	r.buf[(r.head+r.size)%len(r.buf)] = v
	r.size++
	return evicted, ok
}

// PopFront removes and returns the oldest element.
func (r *Ring[T]) PopFront() (v T, ok bool) {
	if r.size == 0 {
		return v, false
	}
	var zero T
	v = r.buf[r.head]
	r.buf[r.head] = zero
	r.head = (r.head + 1) % len(r.buf)
	r.size--
	return v, true
}

// Front returns the oldest element without removing it.
func (r *Ring[T]) Front() (v T, ok bool) {
	if r.size == 0 {
		return v, false
	}
	return r.buf[r.head], true
}

// At returns the i-th element counted from the front.
func (r *Ring[T]) At(i int) T {
	if i < 0 || i >= r.size {
		panic("ring: index out of range")
	}
	return r.buf[(r.head+i)%len(r.buf)]
}

// RemoveFunc removes the first element matching pred, keeping the order of
// the rest. Returns the removed element and whether one matched.
func (r *Ring[T]) RemoveFunc(pred func(T) bool) (v T, ok bool) {
	n := len(r.buf)
	for i := 0; i < r.size; i++ {
		idx := (r.head + i) % n
		if !pred(r.buf[idx]) {
			continue
		}
		v = r.buf[idx]
		// Shift the tail left by one.
		for j := i; j < r.size-1; j++ {
			r.buf[(r.head+j)%n] = r.buf[(r.head+j+1)%n]
		}
		var zero T
		r.buf[(r.head+r.size-1)%n] = zero
		r.size--
		return v, true
	}
	return v, false
}

// Each calls fn for every element from oldest to newest.
func (r *Ring[T]) Each(fn func(T)) {
	for i := 0; i < r.size; i++ {
		fn(r.buf[(r.head+i)%len(r.buf)])
	}
}

// AppendTo appends the elements in order to dst and returns it.
func (r *Ring[T]) AppendTo(dst []T) []T {
	for i := 0; i < r.size; i++ {
		dst = append(dst, r.buf[(r.head+i)%len(r.buf)])
	}
	return dst
}

// Clear drops every element and returns how many there were.
func (r *Ring[T]) Clear() int {
	n := r.size
	var zero T
	for i := range r.buf {
		r.buf[i] = zero
	}
	r.head = 0
	r.size = 0
	return n
}
