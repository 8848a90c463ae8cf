package main

import (
	"math/rand"
	"testing"
	"time"

	"github.com/lossysim/selective-repeat/arq"
	"github.com/lossysim/selective-repeat/des"
)

type sinkModule struct{}

func (sinkModule) Handle(ev des.Event, from des.Module, now time.Duration) []des.Output {
	return nil
}

func testPacket(seq int) arq.Packet {
	p := arq.Packet{Seqnum: seq, Acknum: arq.NotInUse}
	p.Checksum = arq.ComputeChecksum(p)
	return p
}

func TestLinkPreservesOrder(t *testing.T) {
	l := &link{
		dst:    sinkModule{},
		rng:    rand.New(rand.NewSource(7)),
		delay:  5 * arq.TimeUnit,
		jitter: 50 * arq.TimeUnit,
	}
	// all packets enter at the same instant; heavy jitter must not let a
	// later packet overtake an earlier one
	last := time.Duration(0)
	for i := 0; i < 100; i++ {
		outs := l.Handle(packetEvent{testPacket(i % arq.SeqSpace)}, nil, 0)
		if len(outs) != 1 {
			t.Fatalf("packet %d produced %d outputs, want 1", i, len(outs))
		}
		if outs[0].Delay < last {
			t.Fatalf("packet %d scheduled at %v, before predecessor at %v", i, outs[0].Delay, last)
		}
		last = outs[0].Delay
	}
}

func TestLinkLoss(t *testing.T) {
	l := &link{
		dst:      sinkModule{},
		rng:      rand.New(rand.NewSource(1)),
		lossProb: 1,
		delay:    arq.TimeUnit,
	}
	if outs := l.Handle(packetEvent{testPacket(0)}, nil, 0); len(outs) != 0 {
		t.Errorf("lossProb=1 link forwarded a packet")
	}
	if l.lost != 1 || l.forwarded != 0 {
		t.Errorf("lost = %d, forwarded = %d, want 1, 0", l.lost, l.forwarded)
	}
}

func TestLinkCorruptionDetectable(t *testing.T) {
	l := &link{
		dst:         sinkModule{},
		rng:         rand.New(rand.NewSource(2)),
		corruptProb: 1,
		delay:       arq.TimeUnit,
	}
	// every smudge variant must be caught by the additive checksum
	for i := 0; i < 50; i++ {
		outs := l.Handle(packetEvent{testPacket(i % arq.SeqSpace)}, nil, 0)
		if len(outs) != 1 {
			t.Fatalf("packet %d not forwarded", i)
		}
		got := outs[0].Ev.(packetEvent).pkt
		if !arq.Corrupted(got) {
			t.Errorf("smudged packet %d passes the checksum", i)
		}
	}
	if l.corrupted != 50 {
		t.Errorf("corrupted = %d, want 50", l.corrupted)
	}
}
