// Package sched is a simulated-time event queue. Components allocate
// events once, then arm and disarm them as the emulation runs; the
// queue dispatches armed deadlines in nondecreasing time order when the
// owner advances the clock. Times are absolute nanoseconds of simulated
// time; there is no relation to the wall clock.
package sched

// Handler is called when an armed event reaches its deadline. now is
// the deadline, which is the queue time while the handler runs.
type Handler func(now uint64)

// Event is a schedulable deadline with an optional repeat period.
// Events are created once via Queue.NewEvent and re-armed as needed.
type Event struct {
	q        *Queue
	handler  Handler
	prio     int
	seq      int
	deadline uint64
	period   uint64 // 0 for one-shot events
	armed    bool
}

// Queue owns the simulated clock and all events created from it.
type Queue struct {
	now    uint64
	events []*Event
}

// NewQueue creates a queue with the clock at zero.
func NewQueue() *Queue {
	return &Queue{}
}

// NewEvent allocates a disarmed event. Events with lower prio fire
// first when deadlines coincide; pulse delivery uses a lower prio than
// controller timers so that counters update before transfer steps.
func (q *Queue) NewEvent(prio int, handler Handler) *Event {
	e := &Event{q: q, handler: handler, prio: prio, seq: len(q.events)}
	q.events = append(q.events, e)
	return e
}

// Now returns the current simulated time in nanoseconds.
func (q *Queue) Now() uint64 {
	return q.now
}

// next returns the armed event with the earliest deadline, breaking
// ties by prio and then by creation order. The event count is small and
// fixed, so a linear scan beats maintaining a heap.
func (q *Queue) next() *Event {
	var best *Event
	for _, e := range q.events {
		if !e.armed {
			continue
		}
		if best == nil ||
			e.deadline < best.deadline ||
			(e.deadline == best.deadline && (e.prio < best.prio ||
				(e.prio == best.prio && e.seq < best.seq))) {
			best = e
		}
	}
	return best
}

// RunUntil dispatches every armed event with deadline <= t in order and
// leaves the clock at t. Handlers may arm, re-arm, or disarm any event,
// including their own; a periodic event is re-armed at deadline+period
// before its handler runs, so the handler's disarm wins.
func (q *Queue) RunUntil(t uint64) {
	for {
		e := q.next()
		if e == nil || e.deadline > t {
			break
		}
		q.now = e.deadline
		if e.period > 0 {
			e.deadline += e.period
		} else {
			e.armed = false
		}
		e.handler(q.now)
	}
	if t > q.now {
		q.now = t
	}
}

// Arm schedules the event once, delay nanoseconds after the current
// queue time. Re-arming a pending event moves its deadline.
func (e *Event) Arm(delay uint64) {
	e.deadline = e.q.now + delay
	e.period = 0
	e.armed = true
}

// ArmPeriodic schedules the event delay nanoseconds from now and then
// every period nanoseconds until disarmed.
func (e *Event) ArmPeriodic(delay, period uint64) {
	e.deadline = e.q.now + delay
	e.period = period
	e.armed = true
}

// Disarm cancels the event. Disarming an already disarmed event is a
// no-op.
func (e *Event) Disarm() {
	e.armed = false
	e.period = 0
}

// Armed reports whether the event has a pending deadline.
func (e *Event) Armed() bool {
	return e.armed
}

// Deadline returns the pending deadline. Only meaningful while armed.
func (e *Event) Deadline() uint64 {
	return e.deadline
}
