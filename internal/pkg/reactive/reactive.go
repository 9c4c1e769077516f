// Package reactive provides an observable value holder. Every mutation is
// delivered to all subscribers, in subscription order, before the mutating
// call returns.
package reactive

import "sync"

// Unsubscribe removes a subscription. Calling it more than once is a no-op.
type Unsubscribe func()

// Readable is the read side of a Value, handed to code that must observe
// state without being able to change it
type Readable[T any] interface {
	Get() T
	Subscribe(cb func(T)) Unsubscribe
}

type subscription[T any] struct {
	id uint64
	cb func(T)
}

// Value holds a single value of type T and notifies subscribers on change.
//
// Notification is synchronous and unbatched. A subscriber must not call Set
// or Update on the same Value while it is being notified; the order in
// which other subscribers then observe values is undefined.
type Value[T any] struct {
	mu     sync.Mutex
	value  T
	nextID uint64
	subs   []subscription[T]
}

// New creates a Value holding initial
func New[T any](initial T) *Value[T] {
	return &Value[T]{value: initial}
}

// Get returns the current value
func (v *Value[T]) Get() T {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.value
}

// Set replaces the value and notifies every subscriber with it
func (v *Value[T]) Set(value T) {
	v.mu.Lock()
	v.value = value
	subs := make([]subscription[T], len(v.subs))
	copy(subs, v.subs)
	v.mu.Unlock()

	for _, sub := range subs {
		sub.cb(value)
	}
}

// Update sets the value to fn applied to the current value
func (v *Value[T]) Update(fn func(T) T) {
	v.Set(fn(v.Get()))
}

// Subscribe registers cb and immediately calls it with the current value
func (v *Value[T]) Subscribe(cb func(T)) Unsubscribe {
	v.mu.Lock()
	v.nextID++
	id := v.nextID
	v.subs = append(v.subs, subscription[T]{id: id, cb: cb})
	current := v.value
	v.mu.Unlock()

	cb(current)

	var once sync.Once
	return func() {
		once.Do(func() { v.remove(id) })
	}
}

func (v *Value[T]) remove(id uint64) {
	v.mu.Lock()
	defer v.mu.Unlock()

	for i, sub := range v.subs {
		if sub.id == id {
			v.subs = append(v.subs[:i:i], v.subs[i+1:]...)
			return
		}
	}
}
