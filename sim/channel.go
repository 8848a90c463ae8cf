package main

import (
	"math/rand"
	"time"

	"github.com/lossysim/selective-repeat/arq"
	"github.com/lossysim/selective-repeat/des"
)

// packetEvent carries one protocol packet through a link.
type packetEvent struct {
	pkt arq.Packet
}

type linkMetric struct {
	forwarded int
	lost      int
	corrupted int
}

// link is one direction of the unreliable channel: it loses or corrupts
// packets with configured probabilities and delays the survivors, but never
// reorders them. FIFO holds because each arrival time is clamped to not
// precede the previously scheduled one.
type link struct {
	dst         des.Module
	rng         *rand.Rand
	lossProb    float64
	corruptProb float64
	delay       time.Duration
	jitter      time.Duration

	lastArrival time.Duration
	linkMetric
}

func (l *link) Handle(ev des.Event, from des.Module, now time.Duration) []des.Output {
	e := ev.(packetEvent)
	if l.rng.Float64() < l.lossProb {
		l.lost++
		return nil
	}
	if l.rng.Float64() < l.corruptProb {
		e.pkt = l.smudge(e.pkt)
		l.corrupted++
	}
	at := now + l.delay
	if l.jitter > 0 {
		at += time.Duration(l.rng.Int63n(int64(l.jitter)))
	}
	if at < l.lastArrival {
		at = l.lastArrival
	}
	l.lastArrival = at
	l.forwarded++
	return []des.Output{{Ev: e, To: l.dst, Delay: at - now}}
}

// smudge damages one field of the packet without touching the stored
// checksum, the way a bit error on the wire would.
func (l *link) smudge(p arq.Packet) arq.Packet {
	switch l.rng.Intn(3) {
	case 0:
		p.Seqnum += arq.SeqSpace
	case 1:
		p.Acknum += 7
	default:
		p.Payload[l.rng.Intn(arq.PayloadSize)] ^= 0x20
	}
	return p
}
