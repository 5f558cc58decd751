// sim/simulator.go
package sim

import (
	"container/heap"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/inference-sim/aloha-sim/sim/trace"
)

// Simulator is the per-run context: it owns virtual time, the pending event
// queue and the optional decision trace. Entities hold a pointer to the
// Simulator they were created on; nothing is shared between runs.
type Simulator struct {
	clock   float64
	queue   eventQueue
	nextSeq uint64
	// Executed counts resumptions performed so far.
	Executed int64
	trace    *trace.SimulationTrace
}

// NewSimulator returns a simulator at virtual time zero with an empty queue.
func NewSimulator() *Simulator {
	return &Simulator{
		queue: make(eventQueue, 0),
	}
}

// Now returns the current virtual time.
func (sim *Simulator) Now() float64 {
	return sim.clock
}

// Pending returns the number of scheduled resumptions not yet executed.
func (sim *Simulator) Pending() int {
	return len(sim.queue)
}

// SetTrace attaches a decision trace. A nil trace disables recording.
func (sim *Simulator) SetTrace(st *trace.SimulationTrace) {
	sim.trace = st
}

// Trace returns the attached decision trace, or nil.
func (sim *Simulator) Trace() *trace.SimulationTrace {
	return sim.trace
}

// Schedule registers a resumption of task at Now()+delay.
// A negative or NaN delay is a programming error and panics.
func (sim *Simulator) Schedule(delay float64, task Task) {
	sim.schedule(delay, task, ReasonTimer)
}

// Start schedules the first resumption of task at the current time.
func (sim *Simulator) Start(task Task) {
	sim.schedule(0, task, ReasonStart)
}

// wake makes a task parked on a Store runnable at the current time.
func (sim *Simulator) wake(task Task) {
	sim.schedule(0, task, ReasonDequeue)
}

func (sim *Simulator) schedule(delay float64, task Task, reason SuspendReason) {
	if task == nil {
		panic("Schedule: task must not be nil")
	}
	if math.IsNaN(delay) || delay < 0 {
		panic(fmt.Sprintf("Schedule: invalid delay %v for task %s", delay, task.Name()))
	}
	heap.Push(&sim.queue, &event{
		time:   sim.clock + delay,
		seq:    sim.nextSeq,
		task:   task,
		reason: reason,
	})
	sim.nextSeq++
}

// Run resumes tasks in (time, insertion order) until no event remains at or
// before until. Events scheduled after the horizon stay queued and their tasks
// are never resumed by this call. On return the clock reads until.
// Run may be called again with a later horizon to continue the same run.
func (sim *Simulator) Run(until float64) {
	if math.IsNaN(until) || until < sim.clock {
		panic(fmt.Sprintf("Run: horizon %v is before current time %v", until, sim.clock))
	}
	logrus.Infof("[t=%.6f] Running until %.6f with %d pending events", sim.clock, until, len(sim.queue))
	for {
		next := sim.queue.peek()
		if next == nil || next.time > until {
			break
		}
		ev := sim.queue.popNext()
		sim.clock = ev.time
		sim.Executed++
		logrus.Debugf("[t=%.6f] Resuming %s (%s)", sim.clock, ev.task.Name(), ev.reason)
		ev.task.Resume(sim)
	}
	sim.clock = until
	logrus.Infof("[t=%.6f] Simulation stopped, %d events executed, %d abandoned", sim.clock, sim.Executed, len(sim.queue))
}
