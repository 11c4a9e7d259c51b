// Package grab tracks which input source holds which object and moves held
// objects every frame, with one hand or two.
package grab

import (
	"fmt"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/zeusync/objectroom/internal/core/events"
	"github.com/zeusync/objectroom/internal/core/events/bus"
	"github.com/zeusync/objectroom/internal/core/models"
	"github.com/zeusync/objectroom/internal/core/observability/log"
	"github.com/zeusync/objectroom/internal/core/spatial"
)

// Objects resolves object ids. The room owns the objects.
type Objects interface {
	Object(id models.ObjectID) (*models.SpawnedObject, bool)
}

// Limits bounds the transforms produced by manipulation.
type Limits struct {
	FloorHeight float64
	ScaleMin    float64
	ScaleMax    float64
}

// DefaultLimits keeps objects above half their default size and scales within [0.1, 3].
func DefaultLimits() Limits {
	return Limits{FloorHeight: 0.25, ScaleMin: 0.1, ScaleMax: 3.0}
}

const (
	grabPulseIntensity = 0.6
	grabPulseDuration  = 50 * time.Millisecond
)

// Registry is the single source of truth for who holds what.
// It is not safe for concurrent use.
type Registry struct {
	objects  Objects
	limits   Limits
	bus      bus.EventBus
	logger   log.Log
	sources  map[models.SourceID]*models.InputSource
	order    []models.SourceID
	sessions map[models.ObjectID]*Session
}

// NewRegistry returns a registry with no sources; callers add them with
// RegisterSource.
func NewRegistry(objects Objects, limits Limits, eventBus bus.EventBus, logger log.Log) *Registry {
	return &Registry{
		objects:  objects,
		limits:   limits,
		bus:      eventBus,
		logger:   logger.With(log.String("component", "grab")),
		sources:  make(map[models.SourceID]*models.InputSource),
		sessions: make(map[models.ObjectID]*Session),
	}
}

// RegisterSource adds an input device. It is called once per device at setup.
func (r *Registry) RegisterSource(id models.SourceID) error {
	if _, exists := r.sources[id]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateSource, id)
	}
	r.sources[id] = &models.InputSource{ID: id, Pose: models.NewPose(mgl64.Vec3{})}
	r.order = append(r.order, id)
	return nil
}

// Source returns a copy of the source state.
func (r *Registry) Source(id models.SourceID) (models.InputSource, bool) {
	src, ok := r.sources[id]
	if !ok {
		return models.InputSource{}, false
	}
	return *src, true
}

// Sources returns copies of every source in registration order.
func (r *Registry) Sources() []models.InputSource {
	out := make([]models.InputSource, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, *r.sources[id])
	}
	return out
}

// Session returns the two-hand session on object, if any.
func (r *Registry) Session(object models.ObjectID) (*Session, bool) {
	s, ok := r.sessions[object]
	return s, ok
}

// SessionCount is the number of active two-hand sessions.
func (r *Registry) SessionCount() int {
	return len(r.sessions)
}

// SetPose stores the latest tracked pose of a source.
func (r *Registry) SetPose(id models.SourceID, pose models.Pose) error {
	src, ok := r.sources[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrInvalidGrabSource, id)
	}
	if pose.Orientation.Len() == 0 {
		pose.Orientation = mgl64.QuatIdent()
	}
	pose.Orientation = pose.Orientation.Normalize()
	src.Pose = pose
	return nil
}

// SetHover records the object a source points at. Zero clears it.
func (r *Registry) SetHover(id models.SourceID, object models.ObjectID) error {
	src, ok := r.sources[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrInvalidGrabSource, id)
	}
	src.Hovered = object
	return nil
}

// Hovered reports whether any source points at object.
func (r *Registry) Hovered(object models.ObjectID) bool {
	if object == 0 {
		return false
	}
	for _, src := range r.sources {
		if src.Hovered == object {
			return true
		}
	}
	return false
}

// GrabStart makes source hold object. A source that already holds something
// releases it first. When another source already holds the object a
// two-hand session starts. A third source is ignored with ErrObjectFullyHeld
// and keeps whatever it held.
func (r *Registry) GrabStart(id models.SourceID, object models.ObjectID) error {
	src, ok := r.sources[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrInvalidGrabSource, id)
	}
	obj, ok := r.objects.Object(object)
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownObject, object)
	}
	if !obj.HeldBy(id) && len(obj.Grabbers) >= models.MaxGrabbers {
		return fmt.Errorf("%w: %d", ErrObjectFullyHeld, object)
	}

	if src.Holding() {
		r.release(src)
	}

	src.Held = obj.ID
	src.GrabOffset = spatial.Offset(src.Pose.Position, obj.Transform.Position)
	obj.AddGrabber(id)

	r.publish(events.GrabStarted, events.Grab{Source: id, Object: obj.ID})
	r.publish(events.HapticPulse, events.Haptic{Source: id, Intensity: grabPulseIntensity, Duration: grabPulseDuration})

	if len(obj.Grabbers) == models.MaxGrabbers {
		first := r.sources[obj.Grabbers[0]]
		s := newSession(obj, first, src)
		r.sessions[obj.ID] = s
		r.logger.Debug("Two-hand session started",
			log.Uint64("object", uint64(obj.ID)),
			log.Float64("initial_distance", s.InitialDistance))
		r.publish(events.TwoHandStarted, events.TwoHand{Object: obj.ID, Sources: s.Sources})
	}
	return nil
}

// GrabEnd releases whatever source holds. Releasing an empty source is a no-op.
func (r *Registry) GrabEnd(id models.SourceID) error {
	src, ok := r.sources[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrInvalidGrabSource, id)
	}
	if !src.Holding() {
		return nil
	}
	r.release(src)
	return nil
}

// release clears the hold, ends a two-hand session and rebases the remaining
// hand on the object's current transform so it does not snap.
func (r *Registry) release(src *models.InputSource) {
	held := src.Held
	src.Held = 0
	src.GrabOffset = mgl64.Vec3{}

	obj, exists := r.objects.Object(held)
	if exists {
		obj.RemoveGrabber(src.ID)
	}

	if s, ok := r.sessions[held]; ok {
		delete(r.sessions, held)
		r.publish(events.TwoHandEnded, events.TwoHand{Object: held, Sources: s.Sources})
		if exists {
			for _, g := range obj.Grabbers {
				if other, ok := r.sources[g]; ok {
					other.GrabOffset = spatial.Offset(other.Pose.Position, obj.Transform.Position)
				}
			}
		}
	}

	r.publish(events.GrabEnded, events.Grab{Source: src.ID, Object: held})
}

// Detach removes object from every holder, then drops its session. The room
// calls it before an object leaves the scene.
func (r *Registry) Detach(object models.ObjectID) {
	for _, id := range r.order {
		src := r.sources[id]
		if src.Held != object {
			continue
		}
		src.Held = 0
		src.GrabOffset = mgl64.Vec3{}
		r.publish(events.GrabEnded, events.Grab{Source: id, Object: object})
	}
	for _, src := range r.sources {
		if src.Hovered == object {
			src.Hovered = 0
		}
	}
	if s, ok := r.sessions[object]; ok {
		delete(r.sessions, object)
		r.publish(events.TwoHandEnded, events.TwoHand{Object: object, Sources: s.Sources})
	}
	if obj, ok := r.objects.Object(object); ok {
		obj.Grabbers = nil
	}
}

// Update moves every held object for this frame: two-hand sessions first,
// then each single-held object follows its source.
func (r *Registry) Update() {
	for id, s := range r.sessions {
		obj, ok := r.objects.Object(id)
		a, okA := r.sources[s.Sources[0]]
		b, okB := r.sources[s.Sources[1]]
		if !ok || !okA || !okB || a.Held != id || b.Held != id {
			r.logger.Warn("Dropping stale two-hand session", log.Uint64("object", uint64(id)))
			delete(r.sessions, id)
			continue
		}
		s.apply(obj, a.Pose, b.Pose, r.limits)
	}

	for _, id := range r.order {
		src := r.sources[id]
		if !src.Holding() {
			continue
		}
		if _, dual := r.sessions[src.Held]; dual {
			continue
		}
		obj, ok := r.objects.Object(src.Held)
		if !ok {
			r.logger.Warn("Source held a missing object",
				log.String("source", string(id)),
				log.Uint64("object", uint64(src.Held)))
			src.Held = 0
			src.GrabOffset = mgl64.Vec3{}
			continue
		}
		updateSingle(obj, src, r.limits)
	}
}

// updateSingle places obj at the source plus its grab offset. The object takes
// the hand's absolute orientation.
func updateSingle(obj *models.SpawnedObject, src *models.InputSource, limits Limits) {
	pos := src.Pose.Position.Add(src.GrabOffset)
	obj.Transform.Position = spatial.ClampFloor(pos, limits.FloorHeight)
	obj.Transform.Rotation = src.Pose.Orientation
}

func (r *Registry) publish(eventType string, payload any) {
	if r.bus == nil {
		return
	}
	if err := r.bus.Publish(bus.NewEvent(eventType, events.Source, payload)); err != nil {
		r.logger.Warn("Event handler failed", log.String("event", eventType), log.Error(err))
	}
}
