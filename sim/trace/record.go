// Package trace provides decision-trace recording for admission and medium-access analysis.
// This package has no dependencies on sim/; it stores pure data types.
package trace

// AdmissionRecord captures a single buffer admission decision.
type AdmissionRecord struct {
	PacketID int64
	Source   string
	Server   string
	Clock    float64
	Admitted bool
	Reason   string
}

// TransmissionRecord captures one transmission attempt on the medium.
type TransmissionRecord struct {
	PacketID int64
	Source   string
	Server   string
	Channel  string  // empty when the server has no channel
	Start    float64 // virtual time the server registered as a sender
	End      float64 // virtual time the window closed
	Attempt  int     // 1 for the first attempt, incremented on every retry
	Collided bool
}
