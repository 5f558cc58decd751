package sim

// Sink is a terminal receiver: it stamps every packet it is handed with the
// current virtual time and keeps it.
type Sink struct {
	sim     *Simulator
	name    string
	packets []*Packet
}

// NewSink creates an empty sink on sim.
func NewSink(sim *Simulator, name string) *Sink {
	return &Sink{sim: sim, name: name, packets: make([]*Packet, 0)}
}

func (k *Sink) Name() string { return k.name }

// Put stamps and records p.
func (k *Sink) Put(p *Packet) {
	p.MarkOutput(k.sim.Now())
	k.packets = append(k.packets, p)
}

// Packets returns received packets in arrival order.
func (k *Sink) Packets() []*Packet { return k.packets }
