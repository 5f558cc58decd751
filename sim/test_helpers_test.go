package sim

import "testing"

// funcTask is a Task whose body is a closure; step counts resumptions.
type funcTask struct {
	name string
	step int
	fn   func(sim *Simulator, step int)
}

func (f *funcTask) Name() string { return f.name }

func (f *funcTask) Resume(sim *Simulator) {
	step := f.step
	f.step++
	f.fn(sim, step)
}

func constant(v float64) Distribution { return func() float64 { return v } }

func constantSize(n int) SizeDistribution { return func() int { return n } }

// sequence yields vals in order, then repeats the last one.
func sequence(vals ...float64) Distribution {
	i := 0
	return func() float64 {
		v := vals[i]
		if i < len(vals)-1 {
			i++
		}
		return v
	}
}

func mustChannel(t *testing.T, name string, collision bool) *Channel {
	t.Helper()
	ch, err := NewChannel(ChannelConfig{Name: name, ServiceRate: 100, Collision: collision})
	if err != nil {
		t.Fatalf("NewChannel(%s): %v", name, err)
	}
	return ch
}

func mustServer(t *testing.T, sim *Simulator, cfg ServerConfig) *QueuedServer {
	t.Helper()
	s, err := NewQueuedServer(sim, cfg)
	if err != nil {
		t.Fatalf("NewQueuedServer(%s): %v", cfg.Name, err)
	}
	return s
}

func mustSource(t *testing.T, sim *Simulator, cfg SourceConfig) *Source {
	t.Helper()
	src, err := NewSource(sim, cfg)
	if err != nil {
		t.Fatalf("NewSource(%s): %v", cfg.Name, err)
	}
	return src
}

func mustMonitor(t *testing.T, sim *Simulator, cfg MonitorConfig) *Monitor {
	t.Helper()
	m, err := NewMonitor(sim, cfg)
	if err != nil {
		t.Fatalf("NewMonitor(%s): %v", cfg.Name, err)
	}
	return m
}
