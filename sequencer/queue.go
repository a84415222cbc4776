package sequencer

// maxScheduled bounds the pending step transitions. Swing delays a
// transition by at most half a step, so in practice only one or two are
// ever pending.
const maxScheduled = 64

// scheduledStep is a step transition resolved at pulse time and applied
// when the sample clock reaches at. It carries snapshots of the step and
// its logical neighbours so a state swap in between cannot change it.
type scheduledStep struct {
	at    int64 // trigger sample, swing included
	index int

	step Step
	prev Step
	next Step

	interval    int64 // samples since the previous transition
	hasInterval bool

	slideFromPrev bool
	slideIntoNext bool
}

// stepQueue is a fixed-capacity queue kept sorted by trigger time.
// Events with equal times keep insertion order.
type stepQueue struct {
	events [maxScheduled]scheduledStep
	n      int
}

func (q *stepQueue) push(ev scheduledStep) bool {
	if q.n == maxScheduled {
		return false
	}
	i := q.n
	for i > 0 && q.events[i-1].at > ev.at {
		q.events[i] = q.events[i-1]
		i--
	}
	q.events[i] = ev
	q.n++
	return true
}

// peek returns the earliest event (nil if empty)
func (q *stepQueue) peek() *scheduledStep {
	if q.n == 0 {
		return nil
	}
	return &q.events[0]
}

// last returns the most recently scheduled (latest) event (nil if empty)
func (q *stepQueue) last() *scheduledStep {
	if q.n == 0 {
		return nil
	}
	return &q.events[q.n-1]
}

func (q *stepQueue) pop() scheduledStep {
	ev := q.events[0]
	copy(q.events[:q.n-1], q.events[1:q.n])
	q.n--
	return ev
}

func (q *stepQueue) len() int {
	return q.n
}

func (q *stepQueue) clear() {
	q.n = 0
}
