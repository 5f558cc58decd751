package deviate

import (
	"fmt"
	"hash/fnv"
)

// === SimulationKey ===

// SimulationKey uniquely identifies a reproducible simulation run.
// Two simulations with the same SimulationKey and identical configuration
// MUST produce bit-for-bit identical results.
type SimulationKey int64

// NewSimulationKey creates a SimulationKey from a seed value.
func NewSimulationKey(seed int64) SimulationKey {
	return SimulationKey(seed)
}

// Backend selects the generator behind each partitioned stream.
type Backend string

const (
	// BackendMath uses math/rand seeded per entity (default, reproducible per key).
	BackendMath Backend = "math"
	// BackendMRG uses MRG32k3a streams from github.com/iti/rngstream.
	BackendMRG Backend = "mrg32k3a"
)

// IsValidBackend reports whether name selects a known backend ("" means math).
func IsValidBackend(name string) bool {
	switch Backend(name) {
	case "", BackendMath, BackendMRG:
		return true
	}
	return false
}

// === Entity subsystem names ===

// SubsystemEntity returns the stream name for an entity of the given kind.
func SubsystemEntity(kind, name string) string {
	return fmt.Sprintf("%s/%s", kind, name)
}

// === PartitionedRNG ===

// PartitionedRNG provides deterministic, isolated deviate streams per entity,
// so adding a source does not perturb the draws seen by another.
//
// Derivation formula: masterSeed XOR fnv1a64(subsystemName). The math
// backend seeds math/rand with it directly; the mrg32k3a backend expands it
// into the six MRG32k3a state words.
//
// Thread-safety: NOT thread-safe. Must be called from single goroutine.
type PartitionedRNG struct {
	key        SimulationKey
	backend    Backend
	subsystems map[string]Source
}

// NewPartitionedRNG creates a PartitionedRNG from a SimulationKey.
func NewPartitionedRNG(key SimulationKey, backend Backend) *PartitionedRNG {
	if backend == "" {
		backend = BackendMath
	}
	return &PartitionedRNG{
		key:        key,
		backend:    backend,
		subsystems: make(map[string]Source),
	}
}

// ForSubsystem returns the deviate stream for the named subsystem.
// The same subsystem name always returns the same instance (cached).
// Never returns nil.
func (p *PartitionedRNG) ForSubsystem(name string) Source {
	if src, ok := p.subsystems[name]; ok {
		return src
	}
	var src Source
	switch p.backend {
	case BackendMRG:
		src = NewSeededMRGStream(name, int64(p.key)^fnv1a64(name))
	default:
		src = NewStream(int64(p.key) ^ fnv1a64(name))
	}
	p.subsystems[name] = src
	return src
}

// Backend returns the generator family behind the streams.
func (p *PartitionedRNG) Backend() Backend {
	return p.backend
}

// Key returns the SimulationKey used to create this PartitionedRNG.
func (p *PartitionedRNG) Key() SimulationKey {
	return p.key
}

// fnv1a64 computes a 64-bit FNV-1a hash of the input string.
func fnv1a64(s string) int64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return int64(h.Sum64())
}
