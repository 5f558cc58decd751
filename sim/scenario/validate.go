package scenario

import (
	"fmt"
	"math"

	"github.com/hashicorp/go-multierror"

	"github.com/inference-sim/aloha-sim/sim/deviate"
	"github.com/inference-sim/aloha-sim/sim/trace"
)

// Validate checks the whole scenario and reports every problem found, not
// just the first one.
func (s *Spec) Validate() error {
	var result *multierror.Error
	add := func(format string, args ...any) {
		result = multierror.Append(result, fmt.Errorf(format, args...))
	}

	if math.IsNaN(s.Horizon) || math.IsInf(s.Horizon, 0) || s.Horizon <= 0 {
		add("horizon must be a finite number > 0, got %v", s.Horizon)
	}
	if !deviate.IsValidBackend(s.RNG) {
		add("unknown rng %q; valid: math, mrg32k3a", s.RNG)
	}
	if !trace.IsValidTraceLevel(s.Trace) {
		add("unknown trace level %q; valid: none, decisions", s.Trace)
	}
	if len(s.Servers) == 0 {
		add("at least one server is required")
	}
	if len(s.Sources) == 0 {
		add("at least one source is required")
	}

	channels := make(map[string]ChannelSpec, len(s.Channels))
	for i, c := range s.Channels {
		prefix := fmt.Sprintf("channels[%d]", i)
		if c.Name == "" {
			add("%s: name must not be empty", prefix)
		} else if _, dup := channels[c.Name]; dup {
			add("%s: duplicate channel name %q", prefix, c.Name)
		}
		if !finitePositive(c.ServiceRate) {
			add("%s: service_rate must be > 0, got %v", prefix, c.ServiceRate)
		}
		channels[c.Name] = c
	}

	// Servers and sinks share one namespace: both can be a destination.
	receivers := make(map[string]bool, len(s.Servers)+len(s.Sinks))
	servers := make(map[string]ServerSpec, len(s.Servers))
	for i, k := range s.Sinks {
		prefix := fmt.Sprintf("sinks[%d]", i)
		if k.Name == "" {
			add("%s: name must not be empty", prefix)
			continue
		}
		if receivers[k.Name] {
			add("%s: duplicate receiver name %q", prefix, k.Name)
		}
		receivers[k.Name] = true
	}
	for i, srv := range s.Servers {
		prefix := fmt.Sprintf("servers[%d]", i)
		if srv.Name == "" {
			add("%s: name must not be empty", prefix)
		} else if receivers[srv.Name] {
			add("%s: duplicate receiver name %q", prefix, srv.Name)
		}
		receivers[srv.Name] = true
		servers[srv.Name] = srv
		if !finitePositive(srv.ServiceRate) {
			add("%s: service_rate must be > 0, got %v", prefix, srv.ServiceRate)
		}
		if srv.Capacity != nil && *srv.Capacity < 0 {
			add("%s: capacity must be >= 0, got %d", prefix, *srv.Capacity)
		}
		if srv.Channel != "" {
			ch, ok := channels[srv.Channel]
			if !ok {
				add("%s: unknown channel %q", prefix, srv.Channel)
			} else if ch.Collision && srv.Backoff == nil {
				add("%s: backoff is required on collision channel %q", prefix, srv.Channel)
			}
		}
		if srv.Backoff != nil {
			if _, err := deviate.NewDelay(*srv.Backoff, nil); err != nil {
				add("%s.backoff: %v", prefix, err)
			}
		}
	}
	for i, srv := range s.Servers {
		if srv.Destination != "" && !receivers[srv.Destination] {
			add("servers[%d]: unknown destination %q", i, srv.Destination)
		}
	}
	for _, loop := range forwardingLoops(s.Servers) {
		add("servers %v forward packets back to themselves", loop)
	}

	sources := make(map[string]bool, len(s.Sources))
	for i, src := range s.Sources {
		prefix := fmt.Sprintf("sources[%d]", i)
		if src.Name == "" {
			add("%s: name must not be empty", prefix)
		} else if sources[src.Name] {
			add("%s: duplicate source name %q", prefix, src.Name)
		}
		sources[src.Name] = true
		if src.Destination == "" {
			add("%s: destination is required", prefix)
		} else if !receivers[src.Destination] {
			add("%s: unknown destination %q", prefix, src.Destination)
		}
		if _, err := deviate.NewInterval(src.InterArrival, nil); err != nil {
			add("%s.inter_arrival: %v", prefix, err)
		}
		if _, err := deviate.NewSize(src.Size, nil); err != nil {
			add("%s.size: %v", prefix, err)
		}
		if math.IsNaN(src.InitialDelay) || src.InitialDelay < 0 {
			add("%s: initial_delay must be >= 0, got %v", prefix, src.InitialDelay)
		}
	}

	monitors := make(map[string]bool, len(s.Monitors))
	for i, m := range s.Monitors {
		prefix := fmt.Sprintf("monitors[%d]", i)
		if m.Name == "" {
			add("%s: name must not be empty", prefix)
		} else if monitors[m.Name] {
			add("%s: duplicate monitor name %q", prefix, m.Name)
		}
		monitors[m.Name] = true
		if _, ok := servers[m.Server]; !ok {
			add("%s: unknown server %q", prefix, m.Server)
		}
		if _, err := deviate.NewInterval(m.Interval, nil); err != nil {
			add("%s.interval: %v", prefix, err)
		}
	}

	return result.ErrorOrNil()
}

func finitePositive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0)
}
