package grab

import "github.com/zeusync/objectroom/internal/core/systems"

// ManipulationSystem runs Registry.Update once per frame.
type ManipulationSystem struct {
	registry *Registry
}

// NewManipulationSystem wraps r for a systems.Scheduler.
func NewManipulationSystem(r *Registry) *ManipulationSystem {
	return &ManipulationSystem{registry: r}
}

func (s *ManipulationSystem) Name() string                  { return "manipulation" }
func (s *ManipulationSystem) Phase() systems.ExecutionPhase { return systems.PhaseUpdate }

func (s *ManipulationSystem) Update(systems.Frame) error {
	s.registry.Update()
	return nil
}
