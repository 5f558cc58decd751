package sim

// Task is an entity driven by the Simulator. Resume runs the task's body from
// its current state until the next suspension point, where the task either
// schedules a timed wait on the Simulator or parks itself on a Store, and then
// returns. Only one Resume call is ever active at a time.
type Task interface {
	Name() string
	Resume(sim *Simulator)
}
