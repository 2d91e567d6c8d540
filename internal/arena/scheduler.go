package arena

// Scheduler runs cooperative delayed callbacks on the logic tick. There is no
// parallelism: tasks fire inside Advance, on the same goroutine that mutates
// combat state, so no locking is needed anywhere in the core.

// TaskID identifies a scheduled task. The zero value is never issued.
type TaskID uint64

// task is one pending callback.
type task struct {
	id  TaskID
	due float64
	fn  func()
}

// Scheduler is a tick-driven timer wheel for the combat core.
type Scheduler struct {
	now    float64
	nextID TaskID
	tasks  []task
}

// NewScheduler creates an empty scheduler at time zero.
func NewScheduler() *Scheduler {
	return &Scheduler{}
}

// Now returns the scheduler clock in seconds.
func (s *Scheduler) Now() float64 { return s.now }

// After schedules fn to run once delay seconds from now. A non-positive delay
// fires on the next Advance.
func (s *Scheduler) After(delay float64, fn func()) TaskID {
	s.nextID++
	s.tasks = append(s.tasks, task{
		id:  s.nextID,
		due: s.now + delay,
		fn:  fn,
	})
	return s.nextID
}

// Cancel drops a pending task. Canceling an already-fired or unknown task is
// a no-op.
func (s *Scheduler) Cancel(id TaskID) {
	for i := range s.tasks {
		if s.tasks[i].id == id {
			s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
			return
		}
	}
}

// Pending returns the number of tasks waiting to fire.
func (s *Scheduler) Pending() int { return len(s.tasks) }

// Advance moves the clock forward by dt and fires every due task in schedule
// order. Tasks scheduled by a firing callback land in a later Advance unless
// their delay has already elapsed within this one.
func (s *Scheduler) Advance(dt float64) {
	s.now += dt

	// Fire in due order; a task's callback may add or cancel tasks, so the
	// slice is rescanned from the head after each fire.
	for {
		best := -1
		for i := range s.tasks {
			if s.tasks[i].due > s.now {
				continue
			}
			if best == -1 || s.tasks[i].due < s.tasks[best].due {
				best = i
			}
		}
		if best == -1 {
			return
		}
		fn := s.tasks[best].fn
		s.tasks = append(s.tasks[:best], s.tasks[best+1:]...)
		fn()
	}
}

// Step is one stage of a Sequence: wait Delay seconds, then run. Returning
// false aborts the rest of the sequence.
type Step struct {
	Delay float64
	Run   func() bool
}

// Sequence runs a chain of delayed steps and enforces that at most one chain
// is live per owner. Each Start bumps a generation token; steps belonging to a
// superseded generation do nothing when they fire, so a stale chain can never
// clobber the state of its replacement.
type Sequence struct {
	sched   *Scheduler
	gen     uint64
	pending TaskID
	active  bool
}

// NewSequence binds a sequence owner to a scheduler.
func NewSequence(s *Scheduler) *Sequence {
	return &Sequence{sched: s}
}

// Active reports whether a chain is currently running.
func (q *Sequence) Active() bool { return q.active }

// Start cancels any running chain and begins a new one.
func (q *Sequence) Start(steps ...Step) {
	q.Stop()
	if len(steps) == 0 {
		return
	}
	q.gen++
	q.active = true
	q.schedule(q.gen, steps, 0)
}

// Stop cancels the running chain, if any.
func (q *Sequence) Stop() {
	if !q.active {
		return
	}
	q.gen++
	if q.pending != 0 {
		q.sched.Cancel(q.pending)
		q.pending = 0
	}
	q.active = false
}

func (q *Sequence) schedule(gen uint64, steps []Step, idx int) {
	q.pending = q.sched.After(steps[idx].Delay, func() {
		if q.gen != gen {
			return // superseded while waiting
		}
		q.pending = 0
		if !steps[idx].Run() || idx+1 >= len(steps) {
			q.active = false
			return
		}
		q.schedule(gen, steps, idx+1)
	})
}
