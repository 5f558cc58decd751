package deviate

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStream_Exponential_MeanMatchesRate(t *testing.T) {
	// GIVEN a seeded stream and rate 4
	s := NewStream(42)
	const n = 20000

	// WHEN many draws are averaged
	sum := 0.0
	for i := 0; i < n; i++ {
		v := s.Exponential(4)
		require.Greater(t, v, 0.0)
		sum += v
	}

	// THEN the sample mean is close to 1/rate
	assert.InDelta(t, 0.25, sum/n, 0.01)
}

func TestStream_Uniform_InBounds(t *testing.T) {
	s := NewStream(3)
	for i := 0; i < 1000; i++ {
		v := s.Uniform(1, 5)
		if v < 1 || v >= 5 {
			t.Fatalf("draw %v out of [1,5)", v)
		}
	}
}

func TestSequence_RepeatsLastValue(t *testing.T) {
	next := Sequence(1, 2, 3)
	got := []float64{next(), next(), next(), next(), next()}
	assert.Equal(t, []float64{1, 2, 3, 3, 3}, got)
}

func TestSequence_Empty_Panics(t *testing.T) {
	assert.Panics(t, func() { Sequence() })
}

func TestExponentialSize_ClampedPositive(t *testing.T) {
	// GIVEN a tiny mean that mostly rounds to zero
	size := ExponentialSize(NewStream(5), 0.1)

	// THEN every draw is still at least one byte
	for i := 0; i < 1000; i++ {
		if v := size(); v < 1 {
			t.Fatalf("size %d < 1", v)
		}
	}
}

func TestUniformSize_InclusiveBounds(t *testing.T) {
	size := UniformSize(NewStream(9), 10, 12)
	seen := map[int]bool{}
	for i := 0; i < 2000; i++ {
		v := size()
		require.GreaterOrEqual(t, v, 10)
		require.LessOrEqual(t, v, 12)
		seen[v] = true
	}
	assert.Len(t, seen, 3, "all values in [10,12] should be drawn")
}

func TestNewDelay_ValidSpecs(t *testing.T) {
	src := NewStream(1)
	tests := []struct {
		name string
		spec DistSpec
	}{
		{"exponential", DistSpec{Type: "exponential", Params: map[string]float64{"rate": 7.5}}},
		{"uniform", DistSpec{Type: "uniform", Params: map[string]float64{"min": 0, "max": 10}}},
		{"constant", DistSpec{Type: "constant", Params: map[string]float64{"value": 1}}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			d, err := NewDelay(tc.spec, src)
			require.NoError(t, err)
			v := d()
			assert.False(t, math.IsNaN(v))
			assert.GreaterOrEqual(t, v, 0.0)
		})
	}
}

func TestNewDelay_InvalidSpecs(t *testing.T) {
	src := NewStream(1)
	tests := []struct {
		name string
		spec DistSpec
	}{
		{"unknown type", DistSpec{Type: "pareto"}},
		{"missing rate", DistSpec{Type: "exponential"}},
		{"zero rate", DistSpec{Type: "exponential", Params: map[string]float64{"rate": 0}}},
		{"infinite rate", DistSpec{Type: "exponential", Params: map[string]float64{"rate": math.Inf(1)}}},
		{"infinite uniform max", DistSpec{Type: "uniform", Params: map[string]float64{"min": 0, "max": math.Inf(1)}}},
		{"NaN constant", DistSpec{Type: "constant", Params: map[string]float64{"value": math.NaN()}}},
		{"inverted uniform", DistSpec{Type: "uniform", Params: map[string]float64{"min": 5, "max": 1}}},
		{"negative constant", DistSpec{Type: "constant", Params: map[string]float64{"value": -1}}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewDelay(tc.spec, src)
			assert.Error(t, err)
		})
	}
}

func TestNewDelay_ZeroDelaysAccepted(t *testing.T) {
	// Backoffs may be zero: a retry at the same instant is legal.
	for _, spec := range []DistSpec{
		{Type: "constant", Params: map[string]float64{"value": 0}},
		{Type: "uniform", Params: map[string]float64{"min": 0, "max": 0}},
	} {
		delay, err := NewDelay(spec, NewStream(1))
		require.NoError(t, err, spec.Type)
		assert.Equal(t, 0.0, delay())
	}
}

func TestNewInterval_RejectsZeroOnlyForms(t *testing.T) {
	// GIVEN delay forms that can only ever draw zero or are not finite
	tests := []struct {
		name string
		spec DistSpec
	}{
		{"constant zero", DistSpec{Type: "constant", Params: map[string]float64{"value": 0}}},
		{"uniform zero width at zero", DistSpec{Type: "uniform", Params: map[string]float64{"min": 0, "max": 0}}},
		{"exponential infinite rate", DistSpec{Type: "exponential", Params: map[string]float64{"rate": math.Inf(1)}}},
		{"negative constant", DistSpec{Type: "constant", Params: map[string]float64{"value": -2}}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			// WHEN built as a repeating interval
			_, err := NewInterval(tc.spec, NewStream(1))

			// THEN it is refused
			assert.Error(t, err)
		})
	}
}

func TestNewInterval_PositiveFormsAccepted(t *testing.T) {
	src := NewStream(1)
	for _, spec := range []DistSpec{
		{Type: "constant", Params: map[string]float64{"value": 0.5}},
		{Type: "uniform", Params: map[string]float64{"min": 0, "max": 2}},
		{Type: "exponential", Params: map[string]float64{"rate": 3}},
	} {
		interval, err := NewInterval(spec, src)
		require.NoError(t, err, spec.Type)
		assert.GreaterOrEqual(t, interval(), 0.0)
	}
}

func TestNewSize_ConstantAndInvalid(t *testing.T) {
	src := NewStream(1)
	size, err := NewSize(DistSpec{Type: "constant", Params: map[string]float64{"value": 400}}, src)
	require.NoError(t, err)
	assert.Equal(t, 400, size())

	_, err = NewSize(DistSpec{Type: "constant", Params: map[string]float64{"value": 0}}, src)
	assert.Error(t, err)
	_, err = NewSize(DistSpec{Type: "exponential", Params: map[string]float64{"mean": -3}}, src)
	assert.Error(t, err)
}
