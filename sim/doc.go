// Package sim provides the discrete-event kernel and network entities of the
// ALOHA shared-medium simulator.
//
// # Reading Guide
//
// Start with these files to understand the simulation kernel:
//   - event.go: pending resumptions ordered by (time, sequence number)
//   - simulator.go: virtual clock, scheduling and the Run loop
//   - task.go: the suspendable-task contract every entity implements
//   - store.go: the single-consumer blocking FIFO used by servers
//
// Then the network entities:
//   - packet.go, source.go: packet generation
//   - server.go: admission buffer, transmission, collision backoff
//   - channel.go: the shared medium and its collision rule
//   - monitor.go, sink.go: periodic occupancy sampling and terminal receivers
//
// # Architecture
//
// Every entity is an explicit state machine. A suspension is a call to
// Simulator.Schedule (timed wait) or Store.Get (wait for data); the kernel
// later calls Resume on the same task. Ties at equal virtual time resolve in
// scheduling order, which makes runs with identical seeds reproducible.
//
// Sub-packages:
//   - sim/deviate/: seeded random streams and distribution factories
//   - sim/trace/: admission and transmission decision records
//   - sim/scenario/: YAML scenario loading, validation and wiring
//   - sim/report/: end-of-run summaries
package sim
