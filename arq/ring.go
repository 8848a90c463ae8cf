package arq

// ring is a fixed-capacity circular buffer. It backs the sender window, the
// receiver window and the overflow queue, so the modular index bookkeeping
// lives in exactly one place.
type ring[T any] struct {
	buf   []T
	first int
	count int
}

func newRing[T any](capacity int) ring[T] {
	return ring[T]{buf: make([]T, capacity)}
}

func (r *ring[T]) len() int   { return r.count }
func (r *ring[T]) full() bool { return r.count == len(r.buf) }

// at returns a pointer to the i-th element counted from the front. The
// caller is responsible for i < count (or, for the receiver window which
// addresses slots positionally, i < capacity).
func (r *ring[T]) at(i int) *T {
	return &r.buf[(r.first+i)%len(r.buf)]
}

// push appends v at the back. It reports false when the ring is full.
func (r *ring[T]) push(v T) bool {
	if r.full() {
		return false
	}
	r.buf[(r.first+r.count)%len(r.buf)] = v
	r.count++
	return true
}

// pop removes and returns the front element.
func (r *ring[T]) pop() (T, bool) {
	var zero T
	if r.count == 0 {
		return zero, false
	}
	v := r.buf[r.first]
	r.buf[r.first] = zero
	r.first = (r.first + 1) % len(r.buf)
	r.count--
	return v, true
}

// rotate advances the front by one without changing count, clearing the
// vacated slot. Used by the receiver window, whose slots are positional
// rather than queued: the window always spans capacity slots and slides as
// packets are delivered.
func (r *ring[T]) rotate() {
	var zero T
	r.buf[r.first] = zero
	r.first = (r.first + 1) % len(r.buf)
}
