package sim

import (
	"github.com/sirupsen/logrus"

	"github.com/inference-sim/aloha-sim/sim/trace"
)

// serverState is the position of a QueuedServer in its service loop.
type serverState int

const (
	serverIdle         serverState = iota // parked on (or about to read) the buffer
	serverTransmitting                    // registered on the channel for size/rate
	serverBackoff                         // waiting out a backoff draw before re-attempting
)

func (s serverState) String() string {
	switch s {
	case serverIdle:
		return "idle"
	case serverTransmitting:
		return "transmitting"
	case serverBackoff:
		return "backoff"
	default:
		return "unknown"
	}
}

// QueuedServer pairs a bounded FIFO admission buffer with a single
// transmitter. Packets are admitted by Put, served one at a time, and
// re-attempted after a backoff whenever the channel declares a collision.
type QueuedServer struct {
	sim         *Simulator
	name        string
	channel     *Channel
	capacity    *int
	serviceRate float64
	backoff     Distribution
	destination Receiver

	buffer    *Store[*Packet]
	occupancy int // bytes held in buffer

	state     serverState
	current   *Packet // packet in service (transmitting or backing off)
	attempt   int     // transmission attempts of current
	txStart   float64 // start of the current transmission window
	collision bool    // set by the channel during the transmission window

	received  int
	rejected  int
	dropped   int
	delivered []*Packet // terminal records when no destination is attached
}

// NewQueuedServer creates a server on sim and starts its service loop.
func NewQueuedServer(sim *Simulator, cfg ServerConfig) (*QueuedServer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	var capacity *int
	if cfg.Capacity != nil {
		capacity = Limit(*cfg.Capacity)
		if *capacity == 0 {
			logrus.Warnf("Server %s has a zero-byte buffer; every packet will be rejected", cfg.Name)
		}
	}
	s := &QueuedServer{
		sim:         sim,
		name:        cfg.Name,
		channel:     cfg.Channel,
		capacity:    capacity,
		serviceRate: cfg.ServiceRate,
		backoff:     cfg.Backoff,
		buffer:      NewStore[*Packet](),
		delivered:   make([]*Packet, 0),
	}
	sim.Start(s)
	return s, nil
}

func (s *QueuedServer) Name() string { return s.name }

// Attach sets the receiver of successfully transmitted packets.
func (s *QueuedServer) Attach(dest Receiver) {
	s.destination = dest
}

// Put is the admission entry point. A packet is accepted only if the buffer
// is unlimited or occupancy+size fits the capacity; a rejected packet is
// counted, stamped as finally dropped, and never queued.
func (s *QueuedServer) Put(p *Packet) {
	now := s.sim.Now()
	future := s.occupancy + p.Size
	if s.capacity != nil && future > *s.capacity {
		s.rejected++
		p.MarkOutput(now)
		logrus.Debugf("[t=%.6f] Packet %s discarded by %s: buffer overflow (%d/%d bytes)", now, p, s.name, future, *s.capacity)
		s.recordAdmission(p, false, "buffer-overflow")
		return
	}
	s.occupancy = future
	s.received++
	s.buffer.Put(s.sim, p)
	logrus.Debugf("[t=%.6f] Packet %s added to queue %s", now, p, s.name)
	s.recordAdmission(p, true, "admitted")
}

// Resume advances the service loop from its current state.
func (s *QueuedServer) Resume(sim *Simulator) {
	switch s.state {
	case serverIdle:
		s.serveNext(sim)
	case serverTransmitting:
		s.completeTransmission(sim)
	case serverBackoff:
		s.transmit(sim)
	}
}

// serveNext takes the head of the buffer into service, or parks on the buffer.
func (s *QueuedServer) serveNext(sim *Simulator) {
	p, ok := s.buffer.Get(s)
	if !ok {
		return
	}
	s.occupancy -= p.Size
	s.current = p
	s.attempt = 0
	s.transmit(sim)
}

// transmit occupies the medium for size/serviceRate.
func (s *QueuedServer) transmit(sim *Simulator) {
	s.attempt++
	s.state = serverTransmitting
	s.txStart = sim.Now()
	if s.channel != nil {
		s.channel.AddSender(s)
	}
	sim.Schedule(float64(s.current.Size)/s.serviceRate, s)
}

// completeTransmission ends the window. The collision flag is read before the
// server leaves the channel, so a sender flagged at the instant it finishes
// still counts as collided.
func (s *QueuedServer) completeTransmission(sim *Simulator) {
	collided := s.collision
	if s.channel != nil {
		s.channel.RemoveSender(s)
	}
	p := s.current
	s.recordTransmission(sim, p, collided)

	if collided {
		s.dropped++
		s.collision = false
		s.state = serverBackoff
		delay := s.backoff()
		logrus.Debugf("[t=%.6f] Packet %s discarded by %s: collision, retry in %.6f", sim.Now(), p, s.name, delay)
		sim.Schedule(delay, s)
		return
	}

	s.deliver(sim, p)
	s.current = nil
	s.state = serverIdle
	s.serveNext(sim)
}

func (s *QueuedServer) deliver(sim *Simulator, p *Packet) {
	now := sim.Now()
	if s.channel != nil {
		s.channel.Record(Delivery{Packet: p, Server: s.name, GeneratedAt: p.GeneratedAt, DeliveredAt: now})
	}
	if s.destination == nil {
		p.MarkOutput(now)
		s.delivered = append(s.delivered, p)
		logrus.Debugf("[t=%.6f] Packet %s delivered by %s", now, p, s.name)
		return
	}
	logrus.Debugf("[t=%.6f] %s => %s: %s", now, s.name, s.destination.Name(), p)
	s.destination.Put(p)
}

func (s *QueuedServer) recordAdmission(p *Packet, admitted bool, reason string) {
	if st := s.sim.Trace(); st != nil {
		st.RecordAdmission(trace.AdmissionRecord{
			PacketID: p.ID,
			Source:   p.Source,
			Server:   s.name,
			Clock:    s.sim.Now(),
			Admitted: admitted,
			Reason:   reason,
		})
	}
}

func (s *QueuedServer) recordTransmission(sim *Simulator, p *Packet, collided bool) {
	st := sim.Trace()
	if st == nil {
		return
	}
	channel := ""
	if s.channel != nil {
		channel = s.channel.Name()
	}
	st.RecordTransmission(trace.TransmissionRecord{
		PacketID: p.ID,
		Source:   p.Source,
		Server:   s.name,
		Channel:  channel,
		Start:    s.txStart,
		End:      sim.Now(),
		Attempt:  s.attempt,
		Collided: collided,
	})
}

// Received counts admitted packets.
func (s *QueuedServer) Received() int { return s.received }

// Rejected counts packets refused at admission for lack of buffer space.
func (s *QueuedServer) Rejected() int { return s.rejected }

// Dropped counts transmissions voided by a collision. Each voided attempt is
// retried, so a packet may contribute more than once.
func (s *QueuedServer) Dropped() int { return s.dropped }

// Occupancy returns the bytes currently held in the buffer.
func (s *QueuedServer) Occupancy() int { return s.occupancy }

// Capacity returns the buffer capacity in bytes and whether one is set.
func (s *QueuedServer) Capacity() (int, bool) {
	if s.capacity == nil {
		return 0, false
	}
	return *s.capacity, true
}

// Len returns the number of packets waiting in the buffer.
func (s *QueuedServer) Len() int { return s.buffer.Len() }

// Busy reports whether a packet is in service (transmitting or backing off).
func (s *QueuedServer) Busy() bool { return s.current != nil }

// Transmitting reports whether the server is currently registered on the medium.
func (s *QueuedServer) Transmitting() bool { return s.state == serverTransmitting }

// Delivered returns the terminal records kept when no destination is attached.
func (s *QueuedServer) Delivered() []*Packet { return s.delivered }
