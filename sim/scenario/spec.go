package scenario

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/inference-sim/aloha-sim/sim/deviate"
)

// Spec is the top-level scenario configuration.
// Loaded from YAML via LoadSpec(path).
type Spec struct {
	Seed     int64         `yaml:"seed"`
	Horizon  float64       `yaml:"horizon"`
	RNG      string        `yaml:"rng,omitempty"`   // "math" (default) or "mrg32k3a"
	Trace    string        `yaml:"trace,omitempty"` // "none" (default) or "decisions"
	Channels []ChannelSpec `yaml:"channels,omitempty"`
	Servers  []ServerSpec  `yaml:"servers"`
	Sources  []SourceSpec  `yaml:"sources"`
	Monitors []MonitorSpec `yaml:"monitors,omitempty"`
	Sinks    []SinkSpec    `yaml:"sinks,omitempty"`
}

// ChannelSpec configures a shared medium.
type ChannelSpec struct {
	Name        string  `yaml:"name"`
	ServiceRate float64 `yaml:"service_rate"`
	Collision   bool    `yaml:"collision"`
}

// ServerSpec configures a queued server. Destination names another server or
// a sink; empty means the server is terminal.
type ServerSpec struct {
	Name        string            `yaml:"name"`
	Channel     string            `yaml:"channel,omitempty"`
	Capacity    *int              `yaml:"capacity,omitempty"` // bytes, omitted = unlimited
	ServiceRate float64           `yaml:"service_rate"`
	Backoff     *deviate.DistSpec `yaml:"backoff,omitempty"`
	Destination string            `yaml:"destination,omitempty"`
}

// SourceSpec configures a packet generator.
type SourceSpec struct {
	Name         string           `yaml:"name"`
	InterArrival deviate.DistSpec `yaml:"inter_arrival"`
	Size         deviate.DistSpec `yaml:"size"`
	InitialDelay float64          `yaml:"initial_delay,omitempty"`
	Destination  string           `yaml:"destination"`
}

// MonitorSpec configures an occupancy monitor on a server.
type MonitorSpec struct {
	Name       string           `yaml:"name"`
	Server     string           `yaml:"server"`
	Interval   deviate.DistSpec `yaml:"interval"`
	CountBytes bool             `yaml:"count_bytes,omitempty"`
}

// SinkSpec configures a terminal receiver.
type SinkSpec struct {
	Name string `yaml:"name"`
}

// LoadSpec reads and parses a YAML scenario file.
// Uses strict parsing: unrecognized keys (typos) are rejected.
func LoadSpec(path string) (*Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario: %w", err)
	}
	return ParseSpec(data)
}

// ParseSpec parses YAML scenario bytes with strict field checking.
func ParseSpec(data []byte) (*Spec, error) {
	var spec Spec
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&spec); err != nil {
		return nil, fmt.Errorf("parsing scenario: %w", err)
	}
	return &spec, nil
}

// AlohaParams are the knobs of the built-in two-source pure ALOHA scenario.
type AlohaParams struct {
	Seed        int64
	Horizon     float64
	Rate        float64 // packets per virtual-time unit, per source
	MeanSize    float64 // bytes
	ServiceRate float64 // bytes per virtual-time unit
	BackoffMax  float64 // backoff drawn uniformly from [0, BackoffMax]
	Capacity    int     // bytes per server buffer, < 0 = unlimited
}

// DefaultAlohaParams models a 64 kbit/s link shared by two stations, each
// offering 7.5 packets per second of 400-byte mean size.
func DefaultAlohaParams() AlohaParams {
	return AlohaParams{
		Seed:        42,
		Horizon:     100,
		Rate:        7.5,
		MeanSize:    400,
		ServiceRate: 8000,
		BackoffMax:  10,
		Capacity:    -1,
	}
}

// PureAloha builds the scenario of two sources feeding two servers that share
// one collision-enabled channel, each server sampled once per time unit.
func PureAloha(p AlohaParams) *Spec {
	spec := &Spec{
		Seed:     p.Seed,
		Horizon:  p.Horizon,
		Channels: []ChannelSpec{{Name: "channel", ServiceRate: p.ServiceRate, Collision: true}},
	}
	for i := 1; i <= 2; i++ {
		server := ServerSpec{
			Name:        fmt.Sprintf("router%d", i),
			Channel:     "channel",
			ServiceRate: p.ServiceRate,
			Backoff:     &deviate.DistSpec{Type: "uniform", Params: map[string]float64{"min": 0, "max": p.BackoffMax}},
		}
		if p.Capacity >= 0 {
			c := p.Capacity
			server.Capacity = &c
		}
		spec.Servers = append(spec.Servers, server)
		spec.Sources = append(spec.Sources, SourceSpec{
			Name:         fmt.Sprintf("source%d", i),
			InterArrival: deviate.DistSpec{Type: "exponential", Params: map[string]float64{"rate": p.Rate}},
			Size:         deviate.DistSpec{Type: "exponential", Params: map[string]float64{"mean": p.MeanSize}},
			Destination:  server.Name,
		})
		spec.Monitors = append(spec.Monitors, MonitorSpec{
			Name:     fmt.Sprintf("monitor%d", i),
			Server:   server.Name,
			Interval: deviate.DistSpec{Type: "constant", Params: map[string]float64{"value": 1}},
		})
	}
	return spec
}
