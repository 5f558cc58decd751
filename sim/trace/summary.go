package trace

// TraceSummary aggregates statistics from a SimulationTrace.
type TraceSummary struct {
	TotalDecisions     int
	AdmittedCount      int
	RejectedCount      int
	Transmissions      int
	CollidedCount      int
	MaxAttempt         int            // highest attempt number seen for any packet
	CollisionsByServer map[string]int // server name → collided attempts
}

// Summarize computes aggregate statistics from a SimulationTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(st *SimulationTrace) *TraceSummary {
	summary := &TraceSummary{
		CollisionsByServer: make(map[string]int),
	}
	if st == nil {
		return summary
	}

	summary.TotalDecisions = len(st.Admissions)
	for _, a := range st.Admissions {
		if a.Admitted {
			summary.AdmittedCount++
		} else {
			summary.RejectedCount++
		}
	}

	summary.Transmissions = len(st.Transmissions)
	for _, tx := range st.Transmissions {
		if tx.Collided {
			summary.CollidedCount++
			summary.CollisionsByServer[tx.Server]++
		}
		if tx.Attempt > summary.MaxAttempt {
			summary.MaxAttempt = tx.Attempt
		}
	}

	return summary
}
