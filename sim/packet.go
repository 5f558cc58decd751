package sim

import "fmt"

// Packet is a unit of data generated by a Source. All fields except the output
// timestamp are fixed at creation; the output timestamp is set exactly once,
// when the packet is delivered by its last hop or finally dropped.
type Packet struct {
	ID          int64   // monotonic per source, starting at 0
	Size        int     // size in bytes (>= 1)
	Source      string  // name of the generating source
	GeneratedAt float64 // virtual time of generation

	outputAt  float64
	outputSet bool
}

// NewPacket creates a packet generated at the given virtual time.
func NewPacket(id int64, size int, source string, generatedAt float64) *Packet {
	return &Packet{
		ID:          id,
		Size:        size,
		Source:      source,
		GeneratedAt: generatedAt,
	}
}

// MarkOutput stamps the output timestamp. Stamping twice panics.
func (p *Packet) MarkOutput(at float64) {
	if p.outputSet {
		panic(fmt.Sprintf("MarkOutput: packet %s already stamped at %v", p, p.outputAt))
	}
	p.outputAt = at
	p.outputSet = true
}

// OutputTimestamp returns the output timestamp and whether it is set.
func (p *Packet) OutputTimestamp() (float64, bool) {
	return p.outputAt, p.outputSet
}

// Latency returns output minus generation time, or 0 if not yet stamped.
func (p *Packet) Latency() float64 {
	if !p.outputSet {
		return 0
	}
	return p.outputAt - p.GeneratedAt
}

func (p *Packet) String() string {
	return fmt.Sprintf("%s#%d(%dB)", p.Source, p.ID, p.Size)
}

// Receiver accepts packets handed over by a Source or a QueuedServer.
// Put must never block the caller.
type Receiver interface {
	Name() string
	Put(p *Packet)
}
