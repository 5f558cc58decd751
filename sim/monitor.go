package sim

// Sample is one occupancy observation.
type Sample struct {
	At    float64
	Value int
}

// Monitor periodically samples the backlog of a QueuedServer: the number of
// buffered packets plus one while a transmission is on the air or, in byte
// mode, the bytes in the buffer. A packet waiting out a backoff is neither
// buffered nor transmitting, so it is not counted. It only reads the server.
type Monitor struct {
	name       string
	server     *QueuedServer
	interval   Distribution
	countBytes bool
	started    bool
	zeroDraws  int
	samples    []Sample
}

// NewMonitor creates a monitor on sim and starts it.
func NewMonitor(sim *Simulator, cfg MonitorConfig) (*Monitor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	m := &Monitor{
		name:       cfg.Name,
		server:     cfg.Server,
		interval:   cfg.Interval,
		countBytes: cfg.CountBytes,
		samples:    make([]Sample, 0),
	}
	sim.Start(m)
	return m, nil
}

func (m *Monitor) Name() string { return m.name }

// CountBytes reports whether the monitor samples bytes instead of packets.
func (m *Monitor) CountBytes() bool { return m.countBytes }

// Resume takes a sample (except on the first resumption) and waits one interval.
func (m *Monitor) Resume(sim *Simulator) {
	if m.started {
		m.samples = append(m.samples, Sample{At: sim.Now(), Value: m.observe()})
	}
	m.started = true
	sim.Schedule(nextInterval("Monitor "+m.name, m.interval, &m.zeroDraws), m)
}

func (m *Monitor) observe() int {
	if m.countBytes {
		return m.server.Occupancy()
	}
	total := m.server.Len()
	if m.server.Transmitting() {
		total++
	}
	return total
}

// Samples returns the observations in time order.
// The returned slice is the monitor's internal storage; callers MUST NOT modify it.
func (m *Monitor) Samples() []Sample { return m.samples }

// Values returns the sampled values in time order.
func (m *Monitor) Values() []int {
	values := make([]int, len(m.samples))
	for i, s := range m.samples {
		values[i] = s.Value
	}
	return values
}
