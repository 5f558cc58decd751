// Package report condenses a finished scenario run into per-entity counts,
// ratios and latency statistics.
package report

import (
	"fmt"
	"io"
	"slices"

	"gonum.org/v1/gonum/stat"

	"github.com/inference-sim/aloha-sim/sim"
	"github.com/inference-sim/aloha-sim/sim/scenario"
)

// SourceSummary reports a packet generator.
type SourceSummary struct {
	Name      string
	Generated int64
}

// ServerSummary reports a queued server. Ratios are 0 when their
// denominator is 0.
type ServerSummary struct {
	Name           string
	Received       int
	Rejected       int
	Dropped        int
	Delivered      int     // terminal deliveries (no destination attached)
	Occupancy      int     // bytes still buffered at the horizon
	Backlog        int     // packets still buffered at the horizon
	DropRatio      float64 // dropped / (received + dropped)
	RejectionRatio float64 // rejected / (received + rejected)
}

// LatencyStats summarizes generation-to-output delays.
type LatencyStats struct {
	Count  int
	Mean   float64
	StdDev float64
	P50    float64
	P99    float64
}

// ChannelSummary reports a shared medium.
type ChannelSummary struct {
	Name       string
	Collisions int
	Latency    LatencyStats
}

// MonitorSummary reports an occupancy monitor.
type MonitorSummary struct {
	Name       string
	CountBytes bool
	Samples    int
	Last       int
	Mean       float64
}

// SinkSummary reports a terminal receiver.
type SinkSummary struct {
	Name    string
	Latency LatencyStats
}

// Summary is the end-of-run report.
type Summary struct {
	Seed     int64
	Horizon  float64
	Events   int64
	Sources  []SourceSummary
	Servers  []ServerSummary
	Channels []ChannelSummary
	Monitors []MonitorSummary
	Sinks    []SinkSummary

	// TotalDropRatio pools every server: sum(dropped) / sum(received + dropped).
	TotalDropRatio float64
}

// Collect builds the summary of an executed run.
func Collect(run *scenario.Run) *Summary {
	s := &Summary{
		Seed:    run.Spec.Seed,
		Horizon: run.Sim.Now(),
		Events:  run.Sim.Executed,
	}
	for _, src := range run.Sources {
		s.Sources = append(s.Sources, SourceSummary{Name: src.Name(), Generated: src.PacketCount()})
	}

	var dropped, attempts int
	for _, srv := range run.Servers {
		s.Servers = append(s.Servers, ServerSummary{
			Name:           srv.Name(),
			Received:       srv.Received(),
			Rejected:       srv.Rejected(),
			Dropped:        srv.Dropped(),
			Delivered:      len(srv.Delivered()),
			Occupancy:      srv.Occupancy(),
			Backlog:        srv.Len(),
			DropRatio:      ratio(srv.Dropped(), srv.Received()+srv.Dropped()),
			RejectionRatio: ratio(srv.Rejected(), srv.Received()+srv.Rejected()),
		})
		dropped += srv.Dropped()
		attempts += srv.Received() + srv.Dropped()
	}
	s.TotalDropRatio = ratio(dropped, attempts)

	for _, ch := range run.Channels {
		latencies := make([]float64, 0, len(ch.Delivered()))
		for _, d := range ch.Delivered() {
			latencies = append(latencies, d.Latency())
		}
		s.Channels = append(s.Channels, ChannelSummary{
			Name:       ch.Name(),
			Collisions: ch.Collisions(),
			Latency:    Latencies(latencies),
		})
	}

	for _, m := range run.Monitors {
		values := m.Values()
		ms := MonitorSummary{Name: m.Name(), CountBytes: m.CountBytes(), Samples: len(values)}
		if len(values) > 0 {
			ms.Last = values[len(values)-1]
			ms.Mean = stat.Mean(toFloats(values), nil)
		}
		s.Monitors = append(s.Monitors, ms)
	}

	for _, k := range run.Sinks {
		s.Sinks = append(s.Sinks, SinkSummary{Name: k.Name(), Latency: Latencies(packetLatencies(k.Packets()))})
	}
	return s
}

// Latencies computes summary statistics over xs. An empty input yields the
// zero value.
func Latencies(xs []float64) LatencyStats {
	if len(xs) == 0 {
		return LatencyStats{}
	}
	sorted := slices.Clone(xs)
	slices.Sort(sorted)
	ls := LatencyStats{
		Count: len(sorted),
		Mean:  stat.Mean(sorted, nil),
		P50:   stat.Quantile(0.5, stat.Empirical, sorted, nil),
		P99:   stat.Quantile(0.99, stat.Empirical, sorted, nil),
	}
	if len(sorted) > 1 {
		ls.StdDev = stat.StdDev(sorted, nil)
	}
	return ls
}

func packetLatencies(packets []*sim.Packet) []float64 {
	out := make([]float64, 0, len(packets))
	for _, p := range packets {
		out = append(out, p.Latency())
	}
	return out
}

func toFloats(values []int) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = float64(v)
	}
	return out
}

func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}

// Print writes the summary as a fixed-format text report.
func (s *Summary) Print(w io.Writer) {
	fmt.Fprintf(w, "=== Simulation Summary ===\n")
	fmt.Fprintf(w, "Seed                 : %d\n", s.Seed)
	fmt.Fprintf(w, "Horizon              : %.3f\n", s.Horizon)
	fmt.Fprintf(w, "Events Executed      : %d\n", s.Events)
	fmt.Fprintf(w, "Total Drop Ratio     : %.4f\n", s.TotalDropRatio)

	for _, src := range s.Sources {
		fmt.Fprintf(w, "\n--- Source %s ---\n", src.Name)
		fmt.Fprintf(w, "Generated Packets    : %d\n", src.Generated)
	}
	for _, srv := range s.Servers {
		fmt.Fprintf(w, "\n--- Server %s ---\n", srv.Name)
		fmt.Fprintf(w, "Received Packets     : %d\n", srv.Received)
		fmt.Fprintf(w, "Rejected Packets     : %d (ratio %.4f)\n", srv.Rejected, srv.RejectionRatio)
		fmt.Fprintf(w, "Dropped Attempts     : %d (ratio %.4f)\n", srv.Dropped, srv.DropRatio)
		fmt.Fprintf(w, "Delivered Packets    : %d\n", srv.Delivered)
		fmt.Fprintf(w, "Backlog at Horizon   : %d packets, %d bytes\n", srv.Backlog, srv.Occupancy)
	}
	for _, ch := range s.Channels {
		fmt.Fprintf(w, "\n--- Channel %s ---\n", ch.Name)
		fmt.Fprintf(w, "Collisions           : %d\n", ch.Collisions)
		printLatency(w, ch.Latency)
	}
	for _, k := range s.Sinks {
		fmt.Fprintf(w, "\n--- Sink %s ---\n", k.Name)
		printLatency(w, k.Latency)
	}
	for _, m := range s.Monitors {
		unit := "packets"
		if m.CountBytes {
			unit = "bytes"
		}
		fmt.Fprintf(w, "\n--- Monitor %s ---\n", m.Name)
		fmt.Fprintf(w, "Samples              : %d\n", m.Samples)
		fmt.Fprintf(w, "Last Sample          : %d %s\n", m.Last, unit)
		fmt.Fprintf(w, "Mean Sample          : %.2f %s\n", m.Mean, unit)
	}
}

func printLatency(w io.Writer, l LatencyStats) {
	fmt.Fprintf(w, "Delivered Packets    : %d\n", l.Count)
	if l.Count == 0 {
		return
	}
	fmt.Fprintf(w, "Mean Latency         : %.4f\n", l.Mean)
	fmt.Fprintf(w, "Latency StdDev       : %.4f\n", l.StdDev)
	fmt.Fprintf(w, "P50 Latency          : %.4f\n", l.P50)
	fmt.Fprintf(w, "P99 Latency          : %.4f\n", l.P99)
}
