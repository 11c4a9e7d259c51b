package room

import (
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/zeusync/objectroom/internal/core/events"
	"github.com/zeusync/objectroom/internal/core/models"
	"github.com/zeusync/objectroom/internal/core/scene"
	"github.com/zeusync/objectroom/internal/core/systems"
)

// pendingRemoval is a deleted object still shrinking in the scene.
type pendingRemoval struct {
	object     *models.SpawnedObject
	handle     scene.Handle
	start      time.Time
	deadline   time.Time
	startScale mgl64.Vec3
}

func (r *Room) finishRemoval(p *pendingRemoval) {
	p.object.Transform.Scale = mgl64.Vec3{}
	r.scene.RemoveObject(p.handle)
	r.publish(events.ObjectRemoved, events.Object{Object: p.object.ID, Shape: p.object.Shape})
}

// removalSystem shrinks deleted objects and drops them from the scene once
// their deadline passes.
type removalSystem struct {
	room *Room
}

func (removalSystem) Name() string                  { return "removal" }
func (removalSystem) Phase() systems.ExecutionPhase { return systems.PhaseLateUpdate }

func (s removalSystem) Update(frame systems.Frame) error {
	r := s.room
	kept := r.pending[:0]
	for _, p := range r.pending {
		if !frame.Now.Before(p.deadline) {
			r.finishRemoval(p)
			continue
		}
		total := p.deadline.Sub(p.start)
		left := float64(p.deadline.Sub(frame.Now)) / float64(total)
		p.object.Transform.Scale = p.startScale.Mul(mgl64.Clamp(left, 0, 1))
		kept = append(kept, p)
	}
	for i := len(kept); i < len(r.pending); i++ {
		r.pending[i] = nil
	}
	r.pending = kept
	return nil
}

type highlightSystem struct {
	room *Room
}

func (highlightSystem) Name() string                  { return "highlight" }
func (highlightSystem) Phase() systems.ExecutionPhase { return systems.PhasePostUpdate }

func (s highlightSystem) Update(systems.Frame) error {
	s.room.refreshHighlights()
	return nil
}
