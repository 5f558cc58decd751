package sim

import (
	"fmt"
	"math"

	"github.com/hashicorp/go-multierror"
)

// Distribution returns successive positive virtual-time deltas
// (inter-arrival times, backoff delays, sampling intervals).
type Distribution func() float64

// SizeDistribution returns successive packet sizes in bytes (>= 1).
type SizeDistribution func() int

// SourceConfig groups packet generator parameters.
type SourceConfig struct {
	Name         string
	InterArrival Distribution     // required; zero draws are tolerated only up to maxZeroIntervals in a row
	Size         SizeDistribution // required
	InitialDelay float64          // delay before the first inter-arrival wait (>= 0)
}

// ServerConfig groups queued server parameters.
type ServerConfig struct {
	Name        string
	Channel     *Channel     // nil = transmit without contention
	Capacity    *int         // buffer capacity in bytes, nil = unlimited
	ServiceRate float64      // bytes per virtual-time unit (> 0)
	Backoff     Distribution // delay before re-attempting a collided packet; required with a collision-enabled channel
}

// ChannelConfig groups shared medium parameters.
type ChannelConfig struct {
	Name        string
	ServiceRate float64 // informational, bytes per virtual-time unit (> 0)
	Collision   bool    // declare collisions between concurrent senders
}

// MonitorConfig groups occupancy monitor parameters.
type MonitorConfig struct {
	Name       string
	Server     *QueuedServer // required
	Interval   Distribution  // sampling interval, required; same zero-draw limit as SourceConfig.InterArrival
	CountBytes bool          // sample byte occupancy instead of packet count
}

// Limit returns a pointer to a byte capacity, for ServerConfig.Capacity.
func Limit(bytes int) *int {
	return &bytes
}

// maxZeroIntervals bounds how many zero-length inter-arrival or sampling
// intervals an entity draws in a row before it panics. Validate cannot see
// inside a Distribution, and one that only ever yields zero would otherwise
// keep Run at a single instant forever.
const maxZeroIntervals = 10000

// nextInterval draws from d, tracking consecutive zero draws in *zeros.
func nextInterval(owner string, d Distribution, zeros *int) float64 {
	v := d()
	if v > 0 {
		*zeros = 0
		return v
	}
	*zeros++
	if *zeros >= maxZeroIntervals {
		panic(fmt.Sprintf("%s: interval distribution returned %v for %d consecutive draws", owner, v, *zeros))
	}
	return v
}

func validRate(r float64) bool {
	return r > 0 && !math.IsInf(r, 0) && !math.IsNaN(r)
}

// Validate reports every invalid field of the source configuration.
func (c SourceConfig) Validate() error {
	var result *multierror.Error
	if c.Name == "" {
		result = multierror.Append(result, fmt.Errorf("source: name must not be empty"))
	}
	if c.InterArrival == nil {
		result = multierror.Append(result, fmt.Errorf("source %q: inter-arrival distribution is required", c.Name))
	}
	if c.Size == nil {
		result = multierror.Append(result, fmt.Errorf("source %q: size distribution is required", c.Name))
	}
	if math.IsNaN(c.InitialDelay) || c.InitialDelay < 0 {
		result = multierror.Append(result, fmt.Errorf("source %q: initial delay must be >= 0, got %v", c.Name, c.InitialDelay))
	}
	return result.ErrorOrNil()
}

// Validate reports every invalid field of the server configuration.
func (c ServerConfig) Validate() error {
	var result *multierror.Error
	if c.Name == "" {
		result = multierror.Append(result, fmt.Errorf("server: name must not be empty"))
	}
	if !validRate(c.ServiceRate) {
		result = multierror.Append(result, fmt.Errorf("server %q: service rate must be > 0, got %v", c.Name, c.ServiceRate))
	}
	if c.Capacity != nil && *c.Capacity < 0 {
		result = multierror.Append(result, fmt.Errorf("server %q: capacity must be >= 0, got %d", c.Name, *c.Capacity))
	}
	if c.Channel != nil && c.Channel.CollisionEnabled() && c.Backoff == nil {
		result = multierror.Append(result, fmt.Errorf("server %q: backoff distribution is required on collision channel %q", c.Name, c.Channel.Name()))
	}
	return result.ErrorOrNil()
}

// Validate reports every invalid field of the channel configuration.
func (c ChannelConfig) Validate() error {
	var result *multierror.Error
	if c.Name == "" {
		result = multierror.Append(result, fmt.Errorf("channel: name must not be empty"))
	}
	if !validRate(c.ServiceRate) {
		result = multierror.Append(result, fmt.Errorf("channel %q: service rate must be > 0, got %v", c.Name, c.ServiceRate))
	}
	return result.ErrorOrNil()
}

// Validate reports every invalid field of the monitor configuration.
func (c MonitorConfig) Validate() error {
	var result *multierror.Error
	if c.Name == "" {
		result = multierror.Append(result, fmt.Errorf("monitor: name must not be empty"))
	}
	if c.Server == nil {
		result = multierror.Append(result, fmt.Errorf("monitor %q: observed server is required", c.Name))
	}
	if c.Interval == nil {
		result = multierror.Append(result, fmt.Errorf("monitor %q: sampling interval distribution is required", c.Name))
	}
	return result.ErrorOrNil()
}
