package arq

type sendSlot struct {
	pkt   Packet
	acked bool
}

// Sender is the A-side engine: it frames submitted messages, keeps at most
// WindowSize of them in flight, and drives loss recovery with a single
// logical retransmission timer that always tracks the oldest
// unacknowledged packet.
//
// Entry points are synchronous and must be serialized by the caller; the
// engine holds no locks.
type Sender struct {
	window ring[sendSlot]
	queue  ring[Message] // messages deferred while the window was full
	next   int           // next sequence number to assign

	timerOn  bool
	timerSeq int // sequence number the running timer tracks

	ch    Channel
	timer Timer
	stats *Stats
}

// NewSender returns a sender emitting to ch, arming timer, and counting
// into stats. queueCap bounds the overflow queue; zero disables queueing so
// a full window simply sheds new messages.
func NewSender(ch Channel, timer Timer, stats *Stats, queueCap int) *Sender {
	s := &Sender{ch: ch, timer: timer, stats: stats}
	s.window = newRing[sendSlot](WindowSize)
	s.queue = newRing[Message](queueCap)
	s.Reset()
	return s
}

// Reset restores the initial state. The first packet after a reset carries
// sequence number 0; the receiver counts on that.
func (s *Sender) Reset() {
	s.window = newRing[sendSlot](WindowSize)
	s.queue = newRing[Message](cap(s.queue.buf))
	s.next = 0
	s.timerOn = false
	s.timerSeq = NotInUse
}

// Submit hands one application message to the engine. A full window is not
// an error: the message is deferred into the overflow queue (or shed if
// that too is full) and the corresponding counter is bumped.
func (s *Sender) Submit(m Message) {
	if s.window.full() {
		s.stats.WindowFull++
		if !s.queue.push(m) {
			s.stats.Dropped++
		}
		return
	}
	s.transmit(m)
}

func (s *Sender) transmit(m Message) {
	pkt := newDataPacket(s.next, m)
	s.window.push(sendSlot{pkt: pkt})
	s.ch.Send(pkt)
	s.stats.PacketsSent++
	if !s.timerOn {
		s.timer.Start(RTT)
		s.timerOn = true
		s.timerSeq = pkt.Seqnum
	}
	s.next = nextSeq(s.next)
}

// HandleAck processes one acknowledgment packet: the primary acknum plus
// any SACK-listed sequence numbers. Corrupted acks are dropped silently;
// stale and duplicate acks are counted no-ops.
func (s *Sender) HandleAck(p Packet) {
	if Corrupted(p) {
		s.stats.CorruptedDiscarded++
		return
	}
	s.stats.TotalAcksReceived++

	updated := false
	if s.markAcked(p.Acknum) {
		updated = true
	} else {
		s.stats.DuplicateAcks++
	}
	for _, seq := range DecodeSack(p.Payload).Seqnums {
		if s.markAcked(seq) {
			updated = true
		}
	}
	if !updated {
		return
	}

	// slide the window past the acknowledged prefix
	for s.window.len() > 0 && s.window.at(0).acked {
		s.window.pop()
	}

	// timer discipline: the running timer is only valid while its target
	// packet is still awaiting an ack. Retarget to the new oldest
	// unacknowledged packet, or go idle.
	if s.timerOn && !s.awaitingAck(s.timerSeq) {
		s.timer.Stop()
		s.timerOn = false
		if slot, ok := s.oldestUnacked(); ok {
			s.timer.Start(RTT)
			s.timerOn = true
			s.timerSeq = slot.pkt.Seqnum
		}
	}

	// freed window space admits deferred messages
	for !s.window.full() {
		m, ok := s.queue.pop()
		if !ok {
			break
		}
		s.transmit(m)
	}
}

// Timeout retransmits the oldest unacknowledged packet and re-arms the
// timer for it. The caller invokes it when the armed timer fires.
func (s *Sender) Timeout() {
	s.timerOn = false
	slot, ok := s.oldestUnacked()
	if !ok {
		return
	}
	s.ch.Send(slot.pkt)
	s.stats.PacketsResent++
	s.timer.Start(RTT)
	s.timerOn = true
	s.timerSeq = slot.pkt.Seqnum
}

// Outstanding is the number of in-flight packets still awaiting an ack.
func (s *Sender) Outstanding() int {
	n := 0
	for i := 0; i < s.window.len(); i++ {
		if !s.window.at(i).acked {
			n++
		}
	}
	return n
}

// Queued is the number of messages waiting in the overflow queue.
func (s *Sender) Queued() int { return s.queue.len() }

// markAcked marks the window slot holding seq as acknowledged. It reports
// false when seq maps to no window-resident, not-yet-acked packet.
func (s *Sender) markAcked(seq int) bool {
	for i := 0; i < s.window.len(); i++ {
		slot := s.window.at(i)
		if slot.pkt.Seqnum == seq && !slot.acked {
			slot.acked = true
			s.stats.NewAcks++
			return true
		}
	}
	return false
}

func (s *Sender) awaitingAck(seq int) bool {
	for i := 0; i < s.window.len(); i++ {
		slot := s.window.at(i)
		if slot.pkt.Seqnum == seq {
			return !slot.acked
		}
	}
	return false
}

func (s *Sender) oldestUnacked() (*sendSlot, bool) {
	for i := 0; i < s.window.len(); i++ {
		slot := s.window.at(i)
		if !slot.acked {
			return slot, true
		}
	}
	return nil, false
}
