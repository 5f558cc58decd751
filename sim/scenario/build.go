package scenario

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/inference-sim/aloha-sim/sim"
	"github.com/inference-sim/aloha-sim/sim/deviate"
	"github.com/inference-sim/aloha-sim/sim/trace"
)

// Run is a fully wired scenario ready to execute. Entity slices follow
// declaration order in the scenario.
type Run struct {
	Spec     *Spec
	Sim      *sim.Simulator
	RNG      *deviate.PartitionedRNG
	Trace    *trace.SimulationTrace // nil unless tracing is enabled
	Channels []*sim.Channel
	Servers  []*sim.QueuedServer
	Sources  []*sim.Source
	Monitors []*sim.Monitor
	Sinks    []*sim.Sink
}

// Build validates spec and creates every entity on a fresh Simulator.
// Servers are started before sources and monitors last, so equal-time
// resumptions follow that order.
func Build(spec *Spec) (*Run, error) {
	if err := spec.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	run := &Run{
		Spec: spec,
		Sim:  sim.NewSimulator(),
		RNG:  deviate.NewPartitionedRNG(deviate.NewSimulationKey(spec.Seed), deviate.Backend(spec.RNG)),
	}
	if level := trace.TraceLevel(spec.Trace); level.Enabled() {
		run.Trace = trace.NewSimulationTrace(trace.TraceConfig{Level: level})
		run.Sim.SetTrace(run.Trace)
	}

	channels := make(map[string]*sim.Channel, len(spec.Channels))
	for _, c := range spec.Channels {
		ch, err := sim.NewChannel(sim.ChannelConfig{Name: c.Name, ServiceRate: c.ServiceRate, Collision: c.Collision})
		if err != nil {
			return nil, err
		}
		channels[c.Name] = ch
		run.Channels = append(run.Channels, ch)
	}

	receivers := make(map[string]sim.Receiver, len(spec.Servers)+len(spec.Sinks))
	for _, k := range spec.Sinks {
		sink := sim.NewSink(run.Sim, k.Name)
		receivers[k.Name] = sink
		run.Sinks = append(run.Sinks, sink)
	}

	servers := make(map[string]*sim.QueuedServer, len(spec.Servers))
	for _, s := range spec.Servers {
		cfg := sim.ServerConfig{
			Name:        s.Name,
			Channel:     channels[s.Channel],
			Capacity:    s.Capacity,
			ServiceRate: s.ServiceRate,
		}
		if s.Backoff != nil {
			backoff, err := deviate.NewDelay(*s.Backoff, run.RNG.ForSubsystem(deviate.SubsystemEntity("server", s.Name)))
			if err != nil {
				return nil, fmt.Errorf("server %q backoff: %w", s.Name, err)
			}
			cfg.Backoff = backoff
		}
		server, err := sim.NewQueuedServer(run.Sim, cfg)
		if err != nil {
			return nil, err
		}
		servers[s.Name] = server
		receivers[s.Name] = server
		run.Servers = append(run.Servers, server)
	}
	for i, s := range spec.Servers {
		if s.Destination != "" {
			run.Servers[i].Attach(receivers[s.Destination])
		}
	}

	for _, s := range spec.Sources {
		rng := run.RNG.ForSubsystem(deviate.SubsystemEntity("source", s.Name))
		interArrival, err := deviate.NewInterval(s.InterArrival, rng)
		if err != nil {
			return nil, fmt.Errorf("source %q inter_arrival: %w", s.Name, err)
		}
		size, err := deviate.NewSize(s.Size, rng)
		if err != nil {
			return nil, fmt.Errorf("source %q size: %w", s.Name, err)
		}
		src, err := sim.NewSource(run.Sim, sim.SourceConfig{
			Name:         s.Name,
			InterArrival: interArrival,
			Size:         size,
			InitialDelay: s.InitialDelay,
		})
		if err != nil {
			return nil, err
		}
		src.Attach(receivers[s.Destination])
		run.Sources = append(run.Sources, src)
	}

	for _, m := range spec.Monitors {
		interval, err := deviate.NewInterval(m.Interval, run.RNG.ForSubsystem(deviate.SubsystemEntity("monitor", m.Name)))
		if err != nil {
			return nil, fmt.Errorf("monitor %q interval: %w", m.Name, err)
		}
		mon, err := sim.NewMonitor(run.Sim, sim.MonitorConfig{
			Name:       m.Name,
			Server:     servers[m.Server],
			Interval:   interval,
			CountBytes: m.CountBytes,
		})
		if err != nil {
			return nil, err
		}
		run.Monitors = append(run.Monitors, mon)
	}

	logrus.Infof("Built scenario: %d channels, %d servers, %d sources, %d monitors, %d sinks (seed=%d, rng=%s)",
		len(run.Channels), len(run.Servers), len(run.Sources), len(run.Monitors), len(run.Sinks), spec.Seed, run.RNG.Backend())
	return run, nil
}

// Execute runs the simulation up to the scenario horizon.
func (r *Run) Execute() {
	r.Sim.Run(r.Spec.Horizon)
}
