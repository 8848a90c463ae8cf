package main

import (
	"time"

	"github.com/lossysim/selective-repeat/arq"
	"github.com/lossysim/selective-repeat/des"
)

// messageArrival tells the sender node to pull the next message from the
// workload. Each arrival schedules its successor.
type messageArrival struct{}

// timerFired is the sender node's self-addressed retransmission timer. The
// epoch lets a logically stopped timer be distinguished from a live one:
// stale fires carry an old epoch and are ignored, since scheduled events
// cannot be unscheduled.
type timerFired struct {
	epoch int
}

// senderNode adapts the sender engine to the event loop. It doubles as the
// engine's Channel (packets go out on the forward link) and Timer
// (self-addressed events); both collect into a per-event outbox.
type senderNode struct {
	engine *arq.Sender
	fwd    des.Module // forward link toward the receiver
	src    *workload

	epoch  int
	armed  bool
	outbox []des.Output
}

func (n *senderNode) Handle(ev des.Event, from des.Module, now time.Duration) []des.Output {
	switch e := ev.(type) {
	case messageArrival:
		if m, ok := n.src.next(now); ok {
			n.engine.Submit(m)
			n.outbox = append(n.outbox, des.Output{Ev: messageArrival{}, Delay: n.src.interval()})
		}
	case packetEvent:
		n.engine.HandleAck(e.pkt)
	case timerFired:
		if n.armed && e.epoch == n.epoch {
			n.armed = false
			n.engine.Timeout()
		}
	}
	out := n.outbox
	n.outbox = nil
	return out
}

// Send implements arq.Channel.
func (n *senderNode) Send(p arq.Packet) {
	n.outbox = append(n.outbox, des.Output{Ev: packetEvent{p}, To: n.fwd})
}

// Start and Stop implement arq.Timer.
func (n *senderNode) Start(d time.Duration) {
	n.epoch++
	n.armed = true
	n.outbox = append(n.outbox, des.Output{Ev: timerFired{n.epoch}, Delay: d})
}

func (n *senderNode) Stop() {
	n.epoch++
	n.armed = false
}

// receiverNode adapts the receiver engine: arriving data packets go to the
// engine, emitted acks go out on the reverse link, deliveries go to the
// sink.
type receiverNode struct {
	engine *arq.Receiver
	rev    des.Module // reverse link toward the sender
	sink   *sink

	outbox []des.Output
}

func (n *receiverNode) Handle(ev des.Event, from des.Module, now time.Duration) []des.Output {
	e := ev.(packetEvent)
	n.sink.now = now
	n.engine.HandlePacket(e.pkt)
	out := n.outbox
	n.outbox = nil
	return out
}

// Send implements arq.Channel.
func (n *receiverNode) Send(p arq.Packet) {
	n.outbox = append(n.outbox, des.Output{Ev: packetEvent{p}, To: n.rev})
}
