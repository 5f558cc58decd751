package scenario

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inference-sim/aloha-sim/sim/deviate"
	"github.com/inference-sim/aloha-sim/sim/trace"
)

func examplePath(name string) string {
	return filepath.Join("..", "..", "examples", name)
}

func TestLoadSpec_Examples_ValidateAndBuild(t *testing.T) {
	for _, name := range []string{"pure_aloha.yaml", "tandem.yaml"} {
		t.Run(name, func(t *testing.T) {
			spec, err := LoadSpec(examplePath(name))
			require.NoError(t, err)
			require.NoError(t, spec.Validate())

			run, err := Build(spec)
			require.NoError(t, err)
			assert.Len(t, run.Servers, len(spec.Servers))
			assert.Len(t, run.Sources, len(spec.Sources))
			assert.Len(t, run.Monitors, len(spec.Monitors))
		})
	}
}

func TestLoadSpec_MissingFile_ReturnsError(t *testing.T) {
	_, err := LoadSpec(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestParseSpec_UnknownField_Rejected(t *testing.T) {
	// GIVEN a scenario with a misspelled key
	data := []byte(`
seed: 1
horizon: 10
servers:
  - name: a
    service_rate: 100
    buffer_size: 10
`)
	// WHEN parsed
	_, err := ParseSpec(data)

	// THEN strict parsing refuses it
	require.Error(t, err)
	assert.Contains(t, err.Error(), "buffer_size")
}

func TestLoadSpec_FromTempFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
seed: 3
horizon: 5
servers:
  - name: a
    capacity: 500
    service_rate: 100
sources:
  - name: s
    inter_arrival: {type: constant, params: {value: 1}}
    size: {type: constant, params: {value: 100}}
    destination: a
`), 0o644))

	spec, err := LoadSpec(path)
	require.NoError(t, err)
	assert.Equal(t, int64(3), spec.Seed)
	assert.Equal(t, 5.0, spec.Horizon)
	require.Len(t, spec.Servers, 1)
	require.NotNil(t, spec.Servers[0].Capacity)
	assert.Equal(t, 500, *spec.Servers[0].Capacity)
	assert.Equal(t, "constant", spec.Sources[0].Size.Type)
	assert.Equal(t, 100.0, spec.Sources[0].Size.Params["value"])
}

func TestValidate_ReportsEveryProblem(t *testing.T) {
	// GIVEN a scenario with three independent mistakes
	spec := &Spec{
		Horizon: 0,
		Servers: []ServerSpec{{Name: "a", ServiceRate: 0}},
		Sources: []SourceSpec{{
			Name:         "s",
			InterArrival: constantDist(1),
			Size:         constantDist(100),
			Destination:  "nope",
		}},
	}

	// WHEN validated
	err := spec.Validate()

	// THEN all three are reported together
	var merr *multierror.Error
	require.ErrorAs(t, err, &merr)
	assert.Len(t, merr.Errors, 3)
	assert.Contains(t, err.Error(), "horizon")
	assert.Contains(t, err.Error(), "service_rate")
	assert.Contains(t, err.Error(), `unknown destination "nope"`)
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(s *Spec)
		wantErr string
	}{
		{"backoff missing on collision channel", func(s *Spec) { s.Servers[0].Backoff = nil }, "backoff is required"},
		{"unknown channel", func(s *Spec) { s.Servers[0].Channel = "ether" }, `unknown channel "ether"`},
		{"negative capacity", func(s *Spec) { s.Servers[0].Capacity = intPtr(-1) }, "capacity must be >= 0"},
		{"bad backoff type", func(s *Spec) { s.Servers[0].Backoff.Type = "pareto" }, `unknown distribution type "pareto"`},
		{"duplicate server", func(s *Spec) { s.Servers[1].Name = s.Servers[0].Name }, "duplicate receiver name"},
		{"sink shadows server", func(s *Spec) { s.Sinks = []SinkSpec{{Name: "router1"}} }, "duplicate receiver name"},
		{"source without destination", func(s *Spec) { s.Sources[0].Destination = "" }, "destination is required"},
		{"bad size", func(s *Spec) { s.Sources[0].Size = constantDist(0) }, "constant size must be >= 1"},
		{"negative initial delay", func(s *Spec) { s.Sources[0].InitialDelay = -1 }, "initial_delay must be >= 0"},
		{"monitor on unknown server", func(s *Spec) { s.Monitors[0].Server = "ghost" }, `unknown server "ghost"`},
		{"zero constant inter-arrival", func(s *Spec) { s.Sources[0].InterArrival = constantDist(0) }, "constant interval must be > 0"},
		{"zero-width uniform inter-arrival", func(s *Spec) { s.Sources[0].InterArrival = uniformDist(0, 0) }, "uniform interval max must be > 0"},
		{"infinite inter-arrival rate", func(s *Spec) { s.Sources[0].InterArrival = exponentialDist(math.Inf(1)) }, "exponential rate must be finite"},
		{"zero constant monitor interval", func(s *Spec) { s.Monitors[0].Interval = constantDist(0) }, "constant interval must be > 0"},
		{"zero-width uniform monitor interval", func(s *Spec) { s.Monitors[0].Interval = uniformDist(0, 0) }, "uniform interval max must be > 0"},
		{"infinite monitor interval rate", func(s *Spec) { s.Monitors[0].Interval = exponentialDist(math.Inf(1)) }, "exponential rate must be finite"},
		{"infinite backoff rate", func(s *Spec) { s.Servers[0].Backoff = &deviate.DistSpec{Type: "exponential", Params: map[string]float64{"rate": math.Inf(1)}} }, "exponential rate must be finite"},
		{"unknown rng", func(s *Spec) { s.RNG = "pcg" }, `unknown rng "pcg"`},
		{"unknown trace", func(s *Spec) { s.Trace = "verbose" }, `unknown trace level "verbose"`},
		{"no sources", func(s *Spec) { s.Sources = nil }, "at least one source"},
		{"forwarding loop", func(s *Spec) {
			s.Servers[0].Destination = "router2"
			s.Servers[1].Destination = "router1"
		}, "forward packets back to themselves"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			spec := PureAloha(DefaultAlohaParams())
			tc.mutate(spec)
			err := spec.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)

			_, buildErr := Build(spec)
			assert.Error(t, buildErr, "Build must refuse an invalid scenario")
		})
	}
}

func TestValidate_ZeroCapacity_Accepted(t *testing.T) {
	spec := PureAloha(DefaultAlohaParams())
	spec.Servers[0].Capacity = intPtr(0)
	assert.NoError(t, spec.Validate())
}

func TestPureAloha_SameSeed_Reproducible(t *testing.T) {
	// GIVEN the built-in scenario built twice from the same parameters
	runOnce := func() ([]float64, []int) {
		run, err := Build(PureAloha(DefaultAlohaParams()))
		require.NoError(t, err)
		run.Execute()
		var out []float64
		for _, d := range run.Channels[0].Delivered() {
			out = append(out, d.DeliveredAt)
		}
		return out, []int{run.Servers[0].Dropped(), run.Servers[1].Dropped()}
	}

	// WHEN both are executed
	out1, drops1 := runOnce()
	out2, drops2 := runOnce()

	// THEN the delivery logs and drop counts match exactly
	assert.NotEmpty(t, out1)
	assert.Equal(t, out1, out2)
	assert.Equal(t, drops1, drops2)
}

func TestPureAloha_MRGBackend_SameSeedReproducible(t *testing.T) {
	// GIVEN the built-in scenario on the mrg32k3a backend
	runOnce := func(seed int64) ([]int64, []float64) {
		p := DefaultAlohaParams()
		p.Seed = seed
		spec := PureAloha(p)
		spec.RNG = string(deviate.BackendMRG)
		run, err := Build(spec)
		require.NoError(t, err)
		run.Execute()
		var out []float64
		for _, d := range run.Channels[0].Delivered() {
			out = append(out, d.DeliveredAt)
		}
		return []int64{run.Sources[0].PacketCount(), run.Sources[1].PacketCount()}, out
	}

	// WHEN built and executed twice in one process with the same seed
	counts1, out1 := runOnce(42)
	counts2, out2 := runOnce(42)
	counts3, out3 := runOnce(43)

	// THEN the second run repeats the first exactly
	assert.NotEmpty(t, out1)
	assert.Equal(t, counts1, counts2)
	assert.Equal(t, out1, out2)
	// AND a different seed changes the outcome
	assert.NotEqual(t, out1, out3, "counts %v vs %v", counts1, counts3)
}

func TestPureAloha_DifferentSeeds_Diverge(t *testing.T) {
	p := DefaultAlohaParams()
	run1, err := Build(PureAloha(p))
	require.NoError(t, err)
	p.Seed = 43
	run2, err := Build(PureAloha(p))
	require.NoError(t, err)

	run1.Execute()
	run2.Execute()

	assert.NotEqual(t, run1.Channels[0].Delivered(), run2.Channels[0].Delivered())
}

func TestPureAloha_MonitorsSampleOncePerUnit(t *testing.T) {
	run, err := Build(PureAloha(DefaultAlohaParams()))
	require.NoError(t, err)
	run.Execute()

	for _, m := range run.Monitors {
		assert.Len(t, m.Samples(), 100)
	}
	assert.Equal(t, 100.0, run.Sim.Now())
}

func TestBuild_ZeroCapacity_RejectsEverything(t *testing.T) {
	// GIVEN a single server with a zero-byte buffer
	spec := &Spec{
		Horizon: 10,
		Trace:   string(trace.TraceLevelDecisions),
		Servers: []ServerSpec{{Name: "a", Capacity: intPtr(0), ServiceRate: 100}},
		Sources: []SourceSpec{{
			Name:         "s",
			InterArrival: constantDist(1),
			Size:         constantDist(10),
			Destination:  "a",
		}},
	}
	run, err := Build(spec)
	require.NoError(t, err)

	// WHEN run to the horizon
	run.Execute()

	// THEN every generated packet was rejected and none admitted
	srv := run.Servers[0]
	assert.Equal(t, int64(10), run.Sources[0].PacketCount())
	assert.Equal(t, 10, srv.Rejected())
	assert.Equal(t, 0, srv.Received())
	assert.Equal(t, 0, srv.Occupancy())
	require.NotNil(t, run.Trace)
	summary := trace.Summarize(run.Trace)
	assert.Equal(t, 10, summary.RejectedCount)
	assert.Equal(t, 0, summary.AdmittedCount)
}

func TestBuild_Tandem_ForwardsToSink(t *testing.T) {
	spec, err := LoadSpec(examplePath("tandem.yaml"))
	require.NoError(t, err)
	run, err := Build(spec)
	require.NoError(t, err)

	run.Execute()

	access, core := run.Servers[0], run.Servers[1]
	sink := run.Sinks[0]
	assert.Equal(t, int(run.Sources[0].PacketCount()), access.Received()+access.Rejected())
	assert.Equal(t, 0, access.Dropped(), "no channel means no collisions")
	assert.LessOrEqual(t, len(sink.Packets()), core.Received())
	assert.NotEmpty(t, sink.Packets())
	for _, p := range sink.Packets() {
		out, ok := p.OutputTimestamp()
		require.True(t, ok)
		assert.LessOrEqual(t, p.GeneratedAt, out)
	}
	for _, s := range run.Monitors[0].Samples() {
		assert.LessOrEqual(t, s.Value, 2000, "byte occupancy at t=%v", s.At)
	}
	assert.NotNil(t, run.Trace)
}

func TestPureAloha_CapacityParam(t *testing.T) {
	p := DefaultAlohaParams()
	assert.Nil(t, PureAloha(p).Servers[0].Capacity)
	p.Capacity = 1200
	spec := PureAloha(p)
	require.NotNil(t, spec.Servers[0].Capacity)
	assert.Equal(t, 1200, *spec.Servers[1].Capacity)
	assert.NotSame(t, spec.Servers[0].Capacity, spec.Servers[1].Capacity)
}
