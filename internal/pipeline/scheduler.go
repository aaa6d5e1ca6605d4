package pipeline

import "sync"

// State is the admission state of the pipeline.
type State int32

const (
	// NotReady: model not loaded yet, or load failed (terminal for this
	// instance). Frames are dropped.
	NotReady State = iota
	// Ready: idle, the next frame is admitted.
	Ready
	// Busy: one frame in flight. Arriving frames are dropped, not queued.
	Busy
)

func (s State) String() string {
	switch s {
	case NotReady:
		return "not_ready"
	case Ready:
		return "ready"
	case Busy:
		return "busy"
	default:
		return "invalid"
	}
}

// scheduler is the three-state admission machine gating frame entry.
//
// Transitions are compare-and-swap under a mutex:
//
//	NotReady --markReady--> Ready --admit--> Busy --complete--> Ready
//
// Anything else is a no-op. Load failure simply never calls markReady, so
// the instance stays NotReady for good. halt() forces NotReady at shutdown
// so no further frame is admitted.
type scheduler struct {
	mu    sync.Mutex
	state State
}

// admit attempts Ready -> Busy. Returns whether the frame was admitted and
// the state observed, so the caller can attribute the drop.
func (s *scheduler) admit() (ok bool, observed State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Ready {
		return false, s.state
	}
	s.state = Busy
	return true, Ready
}

// complete transitions Busy -> Ready. Called on every processing exit path.
func (s *scheduler) complete() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Busy {
		s.state = Ready
	}
}

// markReady transitions NotReady -> Ready after a successful model load.
func (s *scheduler) markReady() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != NotReady {
		return false
	}
	s.state = Ready
	return true
}

// halt forces NotReady. After halt no frame is admitted again; complete()
// on an in-flight frame will not resurrect the Ready state.
func (s *scheduler) halt() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = NotReady
}

// current returns the state for stats snapshots.
func (s *scheduler) current() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}
