package deviate

import (
	"fmt"
	"math"
)

// Exponential returns a callable drawing Exp(rate) deltas.
func Exponential(src Source, rate float64) func() float64 {
	return func() float64 { return src.Exponential(rate) }
}

// Uniform returns a callable drawing U[lo, hi) deltas.
func Uniform(src Source, lo, hi float64) func() float64 {
	return func() float64 { return src.Uniform(lo, hi) }
}

// Constant returns a callable that always yields v.
func Constant(v float64) func() float64 {
	return func() float64 { return v }
}

// Sequence returns a callable that yields vals in order and then repeats the
// last value forever. Intended for scripted scenarios.
func Sequence(vals ...float64) func() float64 {
	if len(vals) == 0 {
		panic("Sequence: at least one value is required")
	}
	i := 0
	return func() float64 {
		v := vals[i]
		if i < len(vals)-1 {
			i++
		}
		return v
	}
}

// ExponentialSize returns a callable drawing exponentially distributed sizes
// with the given mean, rounded to whole bytes and clamped to >= 1.
func ExponentialSize(src Source, mean float64) func() int {
	return func() int {
		result := int(math.Round(src.Exponential(1 / mean)))
		if result < 1 {
			return 1
		}
		return result
	}
}

// UniformSize returns a callable drawing whole-byte sizes uniformly in [lo, hi].
func UniformSize(src Source, lo, hi int) func() int {
	return func() int {
		result := lo + int(src.Uniform(0, float64(hi-lo+1)))
		if result > hi {
			result = hi
		}
		if result < 1 {
			return 1
		}
		return result
	}
}

// ConstantSize returns a callable that always yields n bytes (clamped to >= 1).
func ConstantSize(n int) func() int {
	if n < 1 {
		n = 1
	}
	return func() int { return n }
}

// DistSpec parameterizes a delay or size distribution.
type DistSpec struct {
	Type   string             `yaml:"type"`
	Params map[string]float64 `yaml:"params,omitempty"`
}

// requireParam checks that all required keys exist in a params map.
func requireParam(params map[string]float64, keys ...string) error {
	for _, k := range keys {
		if _, ok := params[k]; !ok {
			return fmt.Errorf("distribution requires parameter %q", k)
		}
	}
	return nil
}

// NewDelay creates a delay distribution from a DistSpec. Parameters must be
// finite.
//
//	exponential: rate (> 0)
//	uniform:     min, max (0 <= min <= max)
//	constant:    value (>= 0)
func NewDelay(spec DistSpec, src Source) (func() float64, error) {
	switch spec.Type {
	case "exponential":
		if err := requireParam(spec.Params, "rate"); err != nil {
			return nil, err
		}
		rate := spec.Params["rate"]
		if !(rate > 0) || math.IsInf(rate, 0) {
			return nil, fmt.Errorf("exponential rate must be finite and > 0, got %v", rate)
		}
		return Exponential(src, rate), nil

	case "uniform":
		if err := requireParam(spec.Params, "min", "max"); err != nil {
			return nil, err
		}
		lo, hi := spec.Params["min"], spec.Params["max"]
		if !finite(lo) || !finite(hi) || lo < 0 || hi < lo {
			return nil, fmt.Errorf("uniform bounds must satisfy 0 <= min <= max, got [%v, %v]", lo, hi)
		}
		return Uniform(src, lo, hi), nil

	case "constant":
		if err := requireParam(spec.Params, "value"); err != nil {
			return nil, err
		}
		v := spec.Params["value"]
		if !finite(v) || v < 0 {
			return nil, fmt.Errorf("constant delay must be >= 0, got %v", v)
		}
		return Constant(v), nil

	default:
		return nil, fmt.Errorf("unknown distribution type %q", spec.Type)
	}
}

// NewInterval is NewDelay for delays that repeat back to back, such as
// inter-arrival times and monitor intervals. It also rejects the forms that
// can only ever draw zero, which would pin the clock.
//
//	exponential: rate (> 0)
//	uniform:     min, max (0 <= min <= max, max > 0)
//	constant:    value (> 0)
func NewInterval(spec DistSpec, src Source) (func() float64, error) {
	delay, err := NewDelay(spec, src)
	if err != nil {
		return nil, err
	}
	switch spec.Type {
	case "uniform":
		if !(spec.Params["max"] > 0) {
			return nil, fmt.Errorf("uniform interval max must be > 0, got %v", spec.Params["max"])
		}
	case "constant":
		if !(spec.Params["value"] > 0) {
			return nil, fmt.Errorf("constant interval must be > 0, got %v", spec.Params["value"])
		}
	}
	return delay, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// NewSize creates a packet size distribution from a DistSpec.
//
//	exponential: mean (> 0)
//	uniform:     min, max (1 <= min <= max)
//	constant:    value (>= 1)
func NewSize(spec DistSpec, src Source) (func() int, error) {
	switch spec.Type {
	case "exponential":
		if err := requireParam(spec.Params, "mean"); err != nil {
			return nil, err
		}
		mean := spec.Params["mean"]
		if !(mean > 0) {
			return nil, fmt.Errorf("exponential size mean must be > 0, got %v", mean)
		}
		return ExponentialSize(src, mean), nil

	case "uniform":
		if err := requireParam(spec.Params, "min", "max"); err != nil {
			return nil, err
		}
		lo, hi := int(spec.Params["min"]), int(spec.Params["max"])
		if lo < 1 || hi < lo {
			return nil, fmt.Errorf("uniform size bounds must satisfy 1 <= min <= max, got [%d, %d]", lo, hi)
		}
		return UniformSize(src, lo, hi), nil

	case "constant":
		if err := requireParam(spec.Params, "value"); err != nil {
			return nil, err
		}
		v := int(spec.Params["value"])
		if v < 1 {
			return nil, fmt.Errorf("constant size must be >= 1, got %d", v)
		}
		return ConstantSize(v), nil

	default:
		return nil, fmt.Errorf("unknown distribution type %q", spec.Type)
	}
}
