package main

import (
	"encoding/binary"
	"hash"
	"math/rand"
	"time"

	"github.com/dchest/siphash"
	"github.com/lossysim/selective-repeat/arq"
)

// payload layout: bytes 0-7 hold the message index, bytes 8-15 a keyed tag
// over the index, the rest stays zero. The tag lets the sink verify that a
// delivered payload is the one submitted under that index, end to end and
// independent of the protocol's own (weak) checksum.
const (
	payloadKey0 = 0x73656c65637472 // arbitrary fixed sip keys
	payloadKey1 = 0x72657065617421
)

func payloadFor(idx uint64) [arq.PayloadSize]byte {
	var p [arq.PayloadSize]byte
	binary.LittleEndian.PutUint64(p[0:8], idx)
	binary.LittleEndian.PutUint64(p[8:16], siphash.Hash(payloadKey0, payloadKey1, p[0:8]))
	return p
}

func payloadIndex(p [arq.PayloadSize]byte) (uint64, bool) {
	idx := binary.LittleEndian.Uint64(p[0:8])
	want := siphash.Hash(payloadKey0, payloadKey1, p[0:8])
	return idx, binary.LittleEndian.Uint64(p[8:16]) == want
}

// workload produces messages with exponential interarrival times until the
// deadline, remembering each submission time for the latency measurement.
type workload struct {
	rng      *rand.Rand
	rate     float64 // messages per time unit
	deadline time.Duration

	count     uint64
	submitted []time.Duration
}

func (w *workload) next(now time.Duration) (arq.Message, bool) {
	if now > w.deadline {
		return arq.Message{}, false
	}
	m := arq.Message{Data: payloadFor(w.count)}
	w.submitted = append(w.submitted, now)
	w.count++
	return m, true
}

func (w *workload) interval() time.Duration {
	return time.Duration(w.rng.ExpFloat64() / w.rate * float64(arq.TimeUnit))
}

// sink is the receiving application. It checks in-order exactly-once
// delivery, verifies payload content, tracks delivery latency, and folds
// every payload into a running fingerprint so equal-seed runs must produce
// byte-identical delivery streams.
type sink struct {
	wl      *workload
	latency *latencySketch
	fp      hash.Hash

	now        time.Duration // set by the receiver node before each Deliver
	expected   uint64
	delivered  int
	violations int // out-of-order or repeated deliveries
	damaged    int // payloads whose tag did not verify
}

func (k *sink) Deliver(p [arq.PayloadSize]byte) {
	k.fp.Write(p[:])
	k.delivered++
	idx, ok := payloadIndex(p)
	if !ok {
		k.damaged++
		return
	}
	if idx != k.expected || idx >= k.wl.count {
		k.violations++
	}
	k.expected = idx + 1
	if idx < uint64(len(k.wl.submitted)) {
		k.latency.record(k.now - k.wl.submitted[idx])
	}
}
