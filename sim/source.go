package sim

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

type sourceState int

const (
	sourceStarting         sourceState = iota // not yet waited the initial delay
	sourceWaitInitialDelay                    // suspended on the initial delay
	sourceWaitInterArrival                    // suspended on an inter-arrival draw
)

// Source generates packets forever: after an initial delay, each cycle waits
// one inter-arrival draw, then emits a packet of a freshly drawn size.
type Source struct {
	name         string
	interArrival Distribution
	size         SizeDistribution
	initialDelay float64
	destination  Receiver

	state       sourceState
	packetCount int64
	zeroDraws   int
}

// NewSource creates a packet generator on sim and starts it.
func NewSource(sim *Simulator, cfg SourceConfig) (*Source, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	src := &Source{
		name:         cfg.Name,
		interArrival: cfg.InterArrival,
		size:         cfg.Size,
		initialDelay: cfg.InitialDelay,
	}
	sim.Start(src)
	return src, nil
}

func (src *Source) Name() string { return src.name }

// Attach sets the destination for generated packets.
func (src *Source) Attach(dest Receiver) {
	src.destination = dest
}

// PacketCount returns the number of packets generated so far.
func (src *Source) PacketCount() int64 { return src.packetCount }

// Resume advances the generation loop.
func (src *Source) Resume(sim *Simulator) {
	switch src.state {
	case sourceStarting:
		src.state = sourceWaitInitialDelay
		sim.Schedule(src.initialDelay, src)
	case sourceWaitInitialDelay:
		src.state = sourceWaitInterArrival
		sim.Schedule(src.nextInterArrival(), src)
	case sourceWaitInterArrival:
		src.emit(sim)
		sim.Schedule(src.nextInterArrival(), src)
	}
}

func (src *Source) nextInterArrival() float64 {
	return nextInterval("Source "+src.name, src.interArrival, &src.zeroDraws)
}

func (src *Source) emit(sim *Simulator) {
	size := src.size()
	if size < 1 {
		panic(fmt.Sprintf("Source %s: size distribution returned %d, want >= 1", src.name, size))
	}
	p := NewPacket(src.packetCount, size, src.name, sim.Now())
	logrus.Debugf("[t=%.6f] Packet %s generated", p.GeneratedAt, p)
	if src.destination != nil {
		src.destination.Put(p)
	}
	src.packetCount++
}
