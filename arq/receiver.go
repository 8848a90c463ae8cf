package arq

type recvSlot struct {
	pkt      Packet
	received bool
}

// Receiver is the B-side engine: it accepts in-window packets out of order,
// buffers them, releases consecutive runs to the application strictly in
// sequence, and acknowledges every acceptable packet. Its own ack packets
// use a 1-bit alternating sequence number and are never retransmitted.
type Receiver struct {
	base   int            // lowest acceptable seqnum, also next expected delivery
	window ring[recvSlot] // positional: slot i holds seqnum base+i
	ackSeq int            // alternating 0/1 for outgoing acks

	ch    Channel
	app   Application
	stats *Stats
}

func NewReceiver(ch Channel, app Application, stats *Stats) *Receiver {
	r := &Receiver{ch: ch, app: app, stats: stats}
	r.Reset()
	return r
}

// Reset restores the initial state, expecting sequence number 0 next.
func (r *Receiver) Reset() {
	r.base = 0
	r.window = newRing[recvSlot](WindowSize)
	r.ackSeq = 1
}

// HandlePacket processes one arriving data packet. Corrupted packets are
// dropped without any acknowledgment; the sender's timeout recovers them.
func (r *Receiver) HandlePacket(p Packet) {
	if Corrupted(p) {
		r.stats.CorruptedDiscarded++
		return
	}
	rel := Relative(r.base, p.Seqnum)
	switch {
	case rel < WindowSize:
		slot := r.window.at(rel)
		if !slot.received {
			slot.pkt = p
			slot.received = true
			r.stats.PacketsReceived++
		}
		// release the in-order run at the window front
		for r.window.at(0).received {
			r.app.Deliver(r.window.at(0).pkt.Payload)
			r.stats.PacketsDelivered++
			r.window.rotate()
			r.base = nextSeq(r.base)
		}
		r.sendAck(p.Seqnum)
	case rel >= SeqSpace-WindowSize:
		// previous window instance: already delivered, so the earlier ack
		// must have been lost. Re-ack without re-delivering.
		r.sendAck(p.Seqnum)
	default:
		// too far ahead to buffer; silence forces the sender to time out
	}
}

// Expected is the sequence number the receiver will deliver next.
func (r *Receiver) Expected() int { return r.base }

func (r *Receiver) sendAck(acknum int) {
	var sack Sack
	for i := 0; i < WindowSize; i++ {
		slot := r.window.at(i)
		if slot.received && slot.pkt.Seqnum != acknum {
			sack.Seqnums = append(sack.Seqnums, slot.pkt.Seqnum)
			if len(sack.Seqnums) == MaxSack {
				break
			}
		}
	}
	ack := Packet{Seqnum: r.ackSeq, Acknum: acknum, Payload: EncodeSack(sack)}
	ack.Checksum = ComputeChecksum(ack)
	r.ackSeq = 1 - r.ackSeq
	r.ch.Send(ack)
	r.stats.AcksSent++
}
