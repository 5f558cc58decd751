// Package testutil provides shared test infrastructure for the simulator.
// It holds reference trace types and assertion helpers used across
// sim/ and its sub-package tests.
package testutil

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// ReferenceTraces represents the structure of testdata/reference_trace.json.
type ReferenceTraces struct {
	Tests []ReferenceTrace `json:"tests"`
}

// ReferenceTrace is the expected outcome of one deterministic scenario.
// Constant traces set InterArrival and PacketSize; seeded traces set Seed,
// ArrivalRate and MeanSize and draw exponential deltas and sizes from the
// "source/src" stream of a math-backed PartitionedRNG.
type ReferenceTrace struct {
	Name         string  `json:"name"`
	InterArrival float64 `json:"inter_arrival,omitempty"`
	PacketSize   int     `json:"packet_size,omitempty"`
	Seed         int64   `json:"seed,omitempty"`
	ArrivalRate  float64 `json:"arrival_rate,omitempty"`
	MeanSize     float64 `json:"mean_size,omitempty"`
	ServiceRate  float64 `json:"service_rate"`
	Horizon      float64 `json:"horizon"`

	Generated int64 `json:"generated"`
	Received  int   `json:"received"`
	Rejected  int   `json:"rejected"`
	Dropped   int   `json:"dropped"`
	Delivered int   `json:"delivered"`
	// Deliveries is a prefix of the delivered-packet log.
	Deliveries []ReferenceDelivery `json:"deliveries"`
}

// Seeded reports whether the trace draws from seeded exponential streams.
func (r ReferenceTrace) Seeded() bool {
	return r.ArrivalRate > 0
}

// ReferenceDelivery is one expected entry of the delivered-packet log.
type ReferenceDelivery struct {
	ID          int64   `json:"id"`
	GeneratedAt float64 `json:"generated_at"`
	OutputAt    float64 `json:"output_at"`
}

// LoadReferenceTraces loads the reference traces from the testdata directory.
// The path is resolved relative to this source file: sim/internal/testutil/ → testdata/.
func LoadReferenceTraces(t *testing.T) *ReferenceTraces {
	t.Helper()

	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("Failed to get current file path")
	}
	// Navigate from sim/internal/testutil/ to repo root testdata/
	path := filepath.Join(filepath.Dir(thisFile), "..", "..", "..", "testdata", "reference_trace.json")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read reference traces: %v", err)
	}

	var traces ReferenceTraces
	if err := json.Unmarshal(data, &traces); err != nil {
		t.Fatalf("Failed to parse reference traces: %v", err)
	}

	return &traces
}

// AssertFloat64Equal compares two float64 values with relative tolerance.
func AssertFloat64Equal(t *testing.T, name string, want, got, relTol float64) {
	t.Helper()
	if want == 0 && got == 0 {
		return
	}
	diff := math.Abs(want - got)
	maxVal := math.Max(math.Abs(want), math.Abs(got))
	if diff/maxVal > relTol {
		t.Errorf("%s: got %v, want %v (diff=%v, relDiff=%v)", name, got, want, diff, diff/maxVal)
	}
}
