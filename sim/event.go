package sim

import (
	"container/heap"
	"fmt"
)

// SuspendReason records why a task was parked on the event queue.
type SuspendReason int

const (
	// ReasonStart is the first resumption of a freshly started task.
	ReasonStart SuspendReason = iota
	// ReasonTimer is a timed wait (inter-arrival, service, backoff, sampling).
	ReasonTimer
	// ReasonDequeue wakes a task that blocked on an empty Store after a Put.
	ReasonDequeue
)

func (r SuspendReason) String() string {
	switch r {
	case ReasonStart:
		return "start"
	case ReasonTimer:
		return "timer"
	case ReasonDequeue:
		return "dequeue"
	default:
		return fmt.Sprintf("reason(%d)", int(r))
	}
}

// event is a pending resumption of a task.
type event struct {
	time   float64       // virtual time at which the task resumes
	seq    uint64        // insertion sequence, breaks timestamp ties
	task   Task          // task to resume
	reason SuspendReason // why the task is waiting
}

// eventQueue implements heap.Interface with deterministic ordering.
// Order by: timestamp → insertion sequence.
type eventQueue []*event

func (eq eventQueue) Len() int { return len(eq) }

func (eq eventQueue) Less(i, j int) bool {
	// Primary: timestamp (lower first)
	if eq[i].time != eq[j].time {
		return eq[i].time < eq[j].time
	}
	// Secondary: insertion order (FIFO among simultaneous events)
	return eq[i].seq < eq[j].seq
}

func (eq eventQueue) Swap(i, j int) { eq[i], eq[j] = eq[j], eq[i] }

func (eq *eventQueue) Push(x any) {
	*eq = append(*eq, x.(*event))
}

func (eq *eventQueue) Pop() any {
	old := *eq
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*eq = old[0 : n-1]
	return item
}

// peek returns the next event without removing it, or nil when empty.
func (eq eventQueue) peek() *event {
	if len(eq) == 0 {
		return nil
	}
	return eq[0]
}

func (eq *eventQueue) popNext() *event {
	return heap.Pop(eq).(*event)
}
