// Package signal provides a current-value publish/subscribe holder.
//
// A Signal always has a value. New subscribers receive the latest value
// immediately, then every later publication in order. A subscriber that falls
// behind only ever misses intermediate values: its channel holds at most one
// pending value and a newer publication replaces it.
package signal

import "sync"

// Signal holds a value of type T and fans it out to subscribers.
type Signal[T any] struct {
	mu     sync.Mutex
	cur    T
	subs   map[uint64]chan T
	nextID uint64
	closed bool
}

// New returns a signal holding initial.
func New[T any](initial T) *Signal[T] {
	return &Signal[T]{
		cur:  initial,
		subs: make(map[uint64]chan T),
	}
}

// Value returns the current value.
func (s *Signal[T]) Value() T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cur
}

// Publish replaces the current value and notifies subscribers.
// It never blocks on a slow subscriber. Publishing after Close only updates Value.
func (s *Signal[T]) Publish(v T) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cur = v
	if s.closed {
		return
	}
	for _, ch := range s.subs {
		offer(ch, v)
	}
}

// Subscribe registers a subscriber. The returned channel yields the current
// value first. cancel unregisters and closes the channel; it is safe to call
// more than once.
func (s *Signal[T]) Subscribe() (<-chan T, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan T, 1)
	if s.closed {
		close(ch)
		return ch, func() {}
	}

	id := s.nextID
	s.nextID++
	s.subs[id] = ch
	ch <- s.cur

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if c, ok := s.subs[id]; ok {
				delete(s.subs, id)
				close(c)
			}
		})
	}
	return ch, cancel
}

// Close closes every subscriber channel. Later subscribers get a closed channel.
func (s *Signal[T]) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	for id, ch := range s.subs {
		delete(s.subs, id)
		close(ch)
	}
}

// offer delivers v, replacing a pending value the subscriber has not read yet.
// Callers hold s.mu, so the drain and the send cannot interleave with another publish.
func offer[T any](ch chan T, v T) {
	for {
		select {
		case ch <- v:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}
