package scenario

import "github.com/inference-sim/aloha-sim/sim/deviate"

func constantDist(v float64) deviate.DistSpec {
	return deviate.DistSpec{Type: "constant", Params: map[string]float64{"value": v}}
}

func uniformDist(lo, hi float64) deviate.DistSpec {
	return deviate.DistSpec{Type: "uniform", Params: map[string]float64{"min": lo, "max": hi}}
}

func exponentialDist(rate float64) deviate.DistSpec {
	return deviate.DistSpec{Type: "exponential", Params: map[string]float64{"rate": rate}}
}

func intPtr(v int) *int { return &v }
