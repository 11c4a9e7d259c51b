package systems

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

// System is one step of the per-frame update.
type System interface {
	Name() string
	Phase() ExecutionPhase
	Update(frame Frame) error
}

// Frame describes the tick being processed.
type Frame struct {
	Number int64
	Now    time.Time
	Delta  time.Duration
}

// ExecutionPhase defines when a system runs within a frame.
type ExecutionPhase uint8

const (
	PhasePreUpdate ExecutionPhase = iota
	PhaseUpdate
	PhasePostUpdate
	PhaseLateUpdate
)

func (p ExecutionPhase) String() string {
	switch p {
	case PhasePreUpdate:
		return "pre-update"
	case PhaseUpdate:
		return "update"
	case PhasePostUpdate:
		return "post-update"
	case PhaseLateUpdate:
		return "late-update"
	default:
		return fmt.Sprintf("phase(%d)", uint8(p))
	}
}

// Metrics provides runtime metrics for a system.
type Metrics struct {
	ExecutionCount     uint64
	TotalExecutionTime time.Duration
	MaxExecutionTime   time.Duration
	ErrorCount         uint64
	LastError          error
}

// AverageExecutionTime is TotalExecutionTime spread over every run.
func (m Metrics) AverageExecutionTime() time.Duration {
	if m.ExecutionCount == 0 {
		return 0
	}
	return m.TotalExecutionTime / time.Duration(m.ExecutionCount)
}

var ErrDuplicateSystem = errors.New("system already registered")

// Scheduler runs systems ordered by phase, then by registration order.
// It is not safe for concurrent use; the frame loop owns it.
type Scheduler struct {
	systems []System
	metrics map[string]*Metrics
}

func NewScheduler() *Scheduler {
	return &Scheduler{metrics: make(map[string]*Metrics)}
}

func (s *Scheduler) Add(sys System) error {
	if _, exists := s.metrics[sys.Name()]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateSystem, sys.Name())
	}
	s.systems = append(s.systems, sys)
	sort.SliceStable(s.systems, func(i, j int) bool {
		return s.systems[i].Phase() < s.systems[j].Phase()
	})
	s.metrics[sys.Name()] = &Metrics{}
	return nil
}

// Run executes every system once. A failing system does not stop the frame;
// errors are joined and returned.
func (s *Scheduler) Run(frame Frame) error {
	var all error
	for _, sys := range s.systems {
		start := time.Now()
		err := sys.Update(frame)
		elapsed := time.Since(start)

		m := s.metrics[sys.Name()]
		m.ExecutionCount++
		m.TotalExecutionTime += elapsed
		if elapsed > m.MaxExecutionTime {
			m.MaxExecutionTime = elapsed
		}
		if err != nil {
			m.ErrorCount++
			m.LastError = err
			all = errors.Join(all, fmt.Errorf("%s: %w", sys.Name(), err))
		}
	}
	return all
}

// Metrics returns a copy of the counters for name.
func (s *Scheduler) Metrics(name string) (Metrics, bool) {
	m, ok := s.metrics[name]
	if !ok {
		return Metrics{}, false
	}
	return *m, true
}

// Names lists systems in execution order.
func (s *Scheduler) Names() []string {
	out := make([]string, len(s.systems))
	for i, sys := range s.systems {
		out[i] = sys.Name()
	}
	return out
}
