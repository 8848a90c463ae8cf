// Package des is a deterministic discrete-event simulator. Modules exchange
// events through a simulated clock; delivery order is total: by arrival
// time, then by scheduling order. Events a module addresses to itself (a
// nil destination) double as timers.
package des

import (
	"container/heap"
	"time"
)

type Event any

// Module handles one event at a time, to completion, and returns the events
// it wants scheduled in response. Handlers run strictly serialized; modules
// need no internal synchronization.
type Module interface {
	Handle(ev Event, from Module, now time.Duration) []Output
}

// Output is an event to be scheduled. A nil To delivers the event back to
// the emitting module after Delay, which is how modules implement timers.
type Output struct {
	Ev    Event
	To    Module
	Delay time.Duration
}

type Simulator struct {
	now       time.Duration
	queue     eventQueue
	scheduled int // total events ever scheduled; also the tie-breaking counter
}

func (s *Simulator) Now() time.Duration { return s.now }
func (s *Simulator) Pending() int       { return len(s.queue) }
func (s *Simulator) Delivered() int     { return s.scheduled - len(s.queue) }
func (s *Simulator) Drained() bool      { return len(s.queue) == 0 }

// Schedule enqueues one event emitted by from.
func (s *Simulator) Schedule(from Module, out Output) {
	to := out.To
	if to == nil {
		to = from
	}
	heap.Push(&s.queue, scheduledEvent{
		at:   s.now + out.Delay,
		seq:  s.scheduled,
		from: from,
		to:   to,
		ev:   out.Ev,
	})
	s.scheduled++
}

// Step delivers the next event. It reports false when the queue is empty.
func (s *Simulator) Step() bool {
	if len(s.queue) == 0 {
		return false
	}
	e := heap.Pop(&s.queue).(scheduledEvent)
	if e.at < s.now {
		panic("des: time reversal")
	}
	s.now = e.at
	for _, out := range e.to.Handle(e.ev, e.from, s.now) {
		s.Schedule(e.to, out)
	}
	return true
}

// Run delivers events until none remain.
func (s *Simulator) Run() {
	for s.Step() {
	}
}

// RunUntil delivers events until the clock passes t or the queue drains.
func (s *Simulator) RunUntil(t time.Duration) {
	for len(s.queue) > 0 && s.queue[0].at <= t {
		s.Step()
	}
}

type scheduledEvent struct {
	at   time.Duration
	seq  int
	from Module
	to   Module
	ev   Event
}

type eventQueue []scheduledEvent

func (q eventQueue) Len() int { return len(q) }

func (q eventQueue) Less(i, j int) bool {
	if q[i].at != q[j].at {
		return q[i].at < q[j].at
	}
	return q[i].seq < q[j].seq
}

func (q eventQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *eventQueue) Push(x any) { *q = append(*q, x.(scheduledEvent)) }

func (q *eventQueue) Pop() any {
	old := *q
	n := len(old)
	e := old[n-1]
	old[n-1].ev = nil
	*q = old[:n-1]
	return e
}
