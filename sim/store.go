// Implements the Store, a FIFO buffer with a blocking dequeue.
// Items are appended by Put and removed by the single consuming task via Get.

package sim

import (
	"fmt"
	"strings"
)

// Store is a FIFO queue whose consumer suspends on an empty queue until an
// item is put. A Store has at most one consumer task.
type Store[T any] struct {
	items  []T
	waiter Task // consumer parked on an empty queue, nil otherwise
}

// NewStore returns an empty store with its own backing slice.
func NewStore[T any]() *Store[T] {
	return &Store[T]{items: make([]T, 0)}
}

// Put appends item to the back of the queue. If the consumer is parked on the
// store it becomes runnable at the current virtual time. Put never blocks.
func (st *Store[T]) Put(sim *Simulator, item T) {
	st.items = append(st.items, item)
	if st.waiter != nil {
		waiter := st.waiter
		st.waiter = nil
		sim.wake(waiter)
	}
}

// Get removes and returns the front item. On an empty store it parks task as
// the consumer and returns false; task must then return from Resume and will
// be resumed after the next Put.
func (st *Store[T]) Get(task Task) (T, bool) {
	if len(st.items) == 0 {
		if st.waiter != nil && st.waiter != task {
			panic(fmt.Sprintf("Store.Get: %s is already waiting, %s cannot also consume", st.waiter.Name(), task.Name()))
		}
		st.waiter = task
		var zero T
		return zero, false
	}
	item := st.items[0]
	var zero T
	st.items[0] = zero
	st.items = st.items[1:]
	return item, true
}

// Len returns the number of queued items.
func (st *Store[T]) Len() int {
	return len(st.items)
}

// Waiting reports whether the consumer is parked on an empty store.
func (st *Store[T]) Waiting() bool {
	return st.waiter != nil
}

// Items returns the queue contents front to back.
// The returned slice is the store's internal storage; callers MUST NOT modify it.
func (st *Store[T]) Items() []T {
	return st.items
}

func (st *Store[T]) String() string {
	var sb strings.Builder
	sb.WriteString("[")
	for i, val := range st.items {
		sb.WriteString(fmt.Sprint(val))
		if i < len(st.items)-1 {
			sb.WriteString(" ")
		}
	}
	sb.WriteString("]")
	return sb.String()
}
