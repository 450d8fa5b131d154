// Package reactive provides the small set of stream primitives the services
// compose with: a latest-value cell, switch-to-latest projection and
// combine-latest joins. Every output channel holds at most one value; a new
// value replaces one the reader has not picked up yet.
package reactive

import (
	"context"
	"sync"
)

// Value is a mutable input that replays its current value to new subscribers.
type Value[T any] struct {
	mu     sync.Mutex
	cur    T
	subs   map[uint64]chan T
	nextID uint64
	closed bool
}

// NewValue returns a Value holding initial.
func NewValue[T any](initial T) *Value[T] {
	return &Value[T]{cur: initial, subs: make(map[uint64]chan T)}
}

// Get returns the current value.
func (v *Value[T]) Get() T {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.cur
}

// Set stores val and delivers it to every subscriber.
func (v *Value[T]) Set(val T) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.cur = val
	if v.closed {
		return
	}
	for _, ch := range v.subs {
		Offer(ch, val)
	}
}

// Update applies fn to the current value under the lock and publishes the result.
func (v *Value[T]) Update(fn func(T) T) T {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.cur = fn(v.cur)
	if !v.closed {
		for _, ch := range v.subs {
			Offer(ch, v.cur)
		}
	}
	return v.cur
}

// Subscribe returns a channel primed with the current value and a release
// function that unsubscribes and closes the channel.
func (v *Value[T]) Subscribe() (<-chan T, func()) {
	v.mu.Lock()
	defer v.mu.Unlock()

	ch := make(chan T, 1)
	if v.closed {
		close(ch)
		return ch, func() {}
	}

	id := v.nextID
	v.nextID++
	v.subs[id] = ch
	ch <- v.cur

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			v.mu.Lock()
			defer v.mu.Unlock()
			if sub, ok := v.subs[id]; ok {
				delete(v.subs, id)
				close(sub)
			}
		})
	}
}

// Watch subscribes for the lifetime of ctx.
func (v *Value[T]) Watch(ctx context.Context) <-chan T {
	ch, release := v.Subscribe()
	context.AfterFunc(ctx, release)
	return ch
}

// Close ends every subscription. Later Set calls only update the stored value.
func (v *Value[T]) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.closed {
		return
	}
	v.closed = true
	for id, ch := range v.subs {
		delete(v.subs, id)
		close(ch)
	}
}

// Offer places val into a single-slot channel, dropping any unread value.
// The caller must be the only sender on ch.
func Offer[T any](ch chan T, val T) {
	select {
	case <-ch:
	default:
	}
	ch <- val
}
