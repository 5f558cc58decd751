package sim

import (
	"fmt"
	"slices"

	"github.com/sirupsen/logrus"
)

// Delivery is one entry of a channel's delivered-packet log.
type Delivery struct {
	Packet      *Packet
	Server      string  // server that completed the transmission
	GeneratedAt float64 // packet generation time
	DeliveredAt float64 // virtual time the transmission completed without collision
}

// Latency returns DeliveredAt - GeneratedAt.
func (d Delivery) Latency() float64 {
	return d.DeliveredAt - d.GeneratedAt
}

// Channel is the shared medium. It tracks the servers currently transmitting
// and, when collision detection is enabled, flags every one of them as soon as
// two or more overlap.
type Channel struct {
	name        string
	serviceRate float64
	collision   bool
	senders     []*QueuedServer // in registration order, each at most once
	delivered   []Delivery
	collisions  int
}

// NewChannel creates a channel with an empty sender set.
func NewChannel(cfg ChannelConfig) (*Channel, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Channel{
		name:        cfg.Name,
		serviceRate: cfg.ServiceRate,
		collision:   cfg.Collision,
		senders:     make([]*QueuedServer, 0),
		delivered:   make([]Delivery, 0),
	}, nil
}

func (ch *Channel) Name() string { return ch.name }

// ServiceRate returns the informational link rate.
func (ch *Channel) ServiceRate() float64 { return ch.serviceRate }

// CollisionEnabled reports whether concurrent senders collide.
func (ch *Channel) CollisionEnabled() bool { return ch.collision }

// Busy reports whether at least one server is transmitting.
func (ch *Channel) Busy() bool { return len(ch.senders) > 0 }

// Senders returns the number of servers currently transmitting.
func (ch *Channel) Senders() int { return len(ch.senders) }

// Collisions counts the AddSender calls that declared a collision.
func (ch *Channel) Collisions() int { return ch.collisions }

// AddSender registers server as transmitting. With collision detection on and
// more than one sender registered, every registered sender is flagged, not just
// the newcomer.
func (ch *Channel) AddSender(server *QueuedServer) {
	if slices.Contains(ch.senders, server) {
		panic(fmt.Sprintf("AddSender: %s is already transmitting on %s", server.Name(), ch.name))
	}
	ch.senders = append(ch.senders, server)
	if len(ch.senders) > 1 && ch.collision {
		ch.collisions++
		logrus.Debugf("Collision on %s between %d senders", ch.name, len(ch.senders))
		for _, s := range ch.senders {
			s.collision = true
		}
	}
}

// RemoveSender deregisters server at the end of its transmission window.
func (ch *Channel) RemoveSender(server *QueuedServer) {
	idx := slices.Index(ch.senders, server)
	if idx < 0 {
		panic(fmt.Sprintf("RemoveSender: %s is not transmitting on %s", server.Name(), ch.name))
	}
	ch.senders = slices.Delete(ch.senders, idx, idx+1)
}

// Record appends a successful transmission to the delivered-packet log.
func (ch *Channel) Record(d Delivery) {
	ch.delivered = append(ch.delivered, d)
}

// Delivered returns the delivered-packet log in completion order.
// The returned slice is the channel's internal storage; callers MUST NOT modify it.
func (ch *Channel) Delivered() []Delivery {
	return ch.delivered
}
