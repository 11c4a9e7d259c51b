// Package room owns the session state of an object room: the live objects,
// the delete-mode flag and the grab registry. A Room is driven by one
// goroutine; callers serialise every method call.
package room

import (
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/zeusync/objectroom/internal/core/events"
	"github.com/zeusync/objectroom/internal/core/events/bus"
	"github.com/zeusync/objectroom/internal/core/grab"
	"github.com/zeusync/objectroom/internal/core/models"
	"github.com/zeusync/objectroom/internal/core/observability/log"
	"github.com/zeusync/objectroom/internal/core/scene"
	"github.com/zeusync/objectroom/internal/core/systems"
)

// spawnDistance is how far in front of a source a menu spawn lands.
const spawnDistance = 0.5

var palette = [...]uint32{
	0x4cc3d9, 0xef2d5e, 0xffc65d, 0x7bc8a4, 0x93648d,
	0xf16745, 0x404040, 0x5e81ac, 0xa3be8c, 0xd08770,
}

// Room is one object room session: the live objects, delete mode and the grab
// registry, advanced frame by frame through Tick. It is not safe for
// concurrent use.
type Room struct {
	opts     Options
	scene    scene.Scene
	bus      bus.EventBus
	logger   log.Log
	registry *grab.Registry

	objects    map[models.ObjectID]*models.SpawnedObject
	handles    map[models.ObjectID]scene.Handle
	nextID     models.ObjectID
	deleteMode bool
	pending    []*pendingRemoval

	scheduler *systems.Scheduler
	frame     int64
	lastTick  time.Time
	rng       *rand.Rand
	now       func() time.Time
}

var _ grab.Objects = (*Room)(nil)

// New creates an empty room and registers opts.Sources with its registry.
func New(opts Options, sc scene.Scene, eventBus bus.EventBus, logger log.Log) (*Room, error) {
	if opts.MaxObjects <= 0 {
		return nil, fmt.Errorf("room: max objects must be positive, got %d", opts.MaxObjects)
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}

	r := &Room{
		opts:      opts,
		scene:     sc,
		bus:       eventBus,
		logger:    logger.With(log.String("component", "room")),
		objects:   make(map[models.ObjectID]*models.SpawnedObject),
		handles:   make(map[models.ObjectID]scene.Handle),
		scheduler: systems.NewScheduler(),
		rng:       opts.Rand,
		now:       opts.Clock,
	}
	r.registry = grab.NewRegistry(r, opts.Limits, eventBus, logger)
	for _, id := range opts.Sources {
		if err := r.registry.RegisterSource(id); err != nil {
			return nil, err
		}
	}

	for _, sys := range []systems.System{
		grab.NewManipulationSystem(r.registry),
		highlightSystem{room: r},
		removalSystem{room: r},
	} {
		if err := r.scheduler.Add(sys); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Object implements grab.Objects. Deleted objects are not found, even while
// they fade out.
func (r *Room) Object(id models.ObjectID) (*models.SpawnedObject, bool) {
	o, ok := r.objects[id]
	return o, ok
}

// Registry exposes the grab registry for inspection.
func (r *Room) Registry() *grab.Registry { return r.registry }

func (r *Room) Count() int           { return len(r.objects) }
func (r *Room) MaxObjects() int      { return r.opts.MaxObjects }
func (r *Room) DeleteMode() bool     { return r.deleteMode }
func (r *Room) PendingRemovals() int { return len(r.pending) }

// Status reports the interaction state of id. The second result is false for
// ids that were never issued.
func (r *Room) Status(id models.ObjectID) (models.Status, bool) {
	if obj, ok := r.objects[id]; ok {
		return obj.Status(), true
	}
	if id != 0 && id <= r.nextID {
		return models.StatusDestroyed, true
	}
	return models.StatusFree, false
}

// Spawn creates an object of shape near approx. It fails with
// ErrCapacityExceeded once MaxObjects objects are alive.
func (r *Room) Spawn(shape models.ShapeKind, approx mgl64.Vec3) (models.ObjectID, error) {
	if !shape.Valid() {
		return 0, fmt.Errorf("%w: %d", ErrInvalidShape, shape)
	}
	if len(r.objects) >= r.opts.MaxObjects {
		r.logger.Warn("Spawn rejected",
			log.Stringer("shape", shape),
			log.Int("count", len(r.objects)))
		r.publish(events.SpawnRejected, events.Rejected{Shape: shape, Reason: ErrCapacityExceeded.Error()})
		return 0, ErrCapacityExceeded
	}

	pos := approx.Add(mgl64.Vec3{r.jitter(), 0, r.jitter()})
	if pos.Y() < r.opts.Limits.FloorHeight {
		pos[1] = r.opts.Limits.FloorHeight
	}

	r.nextID++
	obj := &models.SpawnedObject{
		ID:        r.nextID,
		Shape:     shape,
		Transform: models.NewTransform(pos),
		BaseColor: palette[r.rng.Intn(len(palette))],
	}
	r.objects[obj.ID] = obj
	r.handles[obj.ID] = r.scene.AddObject(obj)

	r.logger.Info("Object spawned",
		log.Uint64("object", uint64(obj.ID)),
		log.Stringer("shape", shape),
		log.Int("count", len(r.objects)))
	r.publish(events.ObjectSpawned, events.Object{Object: obj.ID, Shape: shape})
	return obj.ID, nil
}

// SpawnNear spawns shape just in front of source.
func (r *Room) SpawnNear(source models.SourceID, shape models.ShapeKind) (models.ObjectID, error) {
	src, ok := r.registry.Source(source)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrInvalidGrabSource, source)
	}
	forward := src.Pose.Orientation.Rotate(mgl64.Vec3{0, 0, -spawnDistance})
	return r.Spawn(shape, src.Pose.Position.Add(forward))
}

func (r *Room) jitter() float64 {
	if r.opts.SpawnJitter == 0 {
		return 0
	}
	return (r.rng.Float64()*2 - 1) * r.opts.SpawnJitter
}

// Delete destroys id. Holders are released and the two-hand session dropped
// before the object leaves the scene. The object stops existing for grabs at
// once; its shrink animation finishes on later ticks.
func (r *Room) Delete(id models.ObjectID) error {
	obj, ok := r.objects[id]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownObject, id)
	}

	r.registry.Detach(id)
	delete(r.objects, id)
	handle := r.handles[id]
	delete(r.handles, id)

	obj.Highlight = models.HighlightNormal
	r.publish(events.ObjectDeleted, events.Object{Object: id, Shape: obj.Shape})
	r.logger.Info("Object deleted",
		log.Uint64("object", uint64(id)),
		log.Int("count", len(r.objects)))

	now := r.now()
	p := &pendingRemoval{
		object:     obj,
		handle:     handle,
		start:      now,
		deadline:   now.Add(r.opts.RemovalDelay),
		startScale: obj.Transform.Scale,
	}
	if r.opts.RemovalDelay <= 0 {
		r.finishRemoval(p)
		return nil
	}
	r.pending = append(r.pending, p)
	return nil
}

// ClearAll deletes every live object and returns how many were deleted.
func (r *Room) ClearAll() int {
	ids := make([]models.ObjectID, 0, len(r.objects))
	for id := range r.objects {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	deleted := 0
	for _, id := range ids {
		if err := r.Delete(id); err != nil {
			r.logger.Debug("Clear skipped object", log.Uint64("object", uint64(id)), log.Error(err))
			continue
		}
		deleted++
	}
	return deleted
}

// ToggleDeleteMode flips delete mode and returns the new value.
func (r *Room) ToggleDeleteMode() bool {
	r.deleteMode = !r.deleteMode
	r.logger.Info("Delete mode changed", log.Bool("delete_mode", r.deleteMode))
	r.publish(events.DeleteModeChanged, events.Mode{DeleteMode: r.deleteMode})
	r.refreshHighlights()
	return r.deleteMode
}

// GrabStart grabs object with source, or deletes it while delete mode is on.
func (r *Room) GrabStart(source models.SourceID, object models.ObjectID) error {
	if _, ok := r.registry.Source(source); !ok {
		return fmt.Errorf("%w: %s", ErrInvalidGrabSource, source)
	}
	if r.deleteMode {
		return r.Delete(object)
	}
	err := r.registry.GrabStart(source, object)
	r.refreshHighlights()
	return err
}

// GrabEnd releases whatever source holds.
func (r *Room) GrabEnd(source models.SourceID) error {
	err := r.registry.GrabEnd(source)
	r.refreshHighlights()
	return err
}

// SetPose stores the tracked pose of source for the next tick.
func (r *Room) SetPose(source models.SourceID, pose models.Pose) error {
	return r.registry.SetPose(source, pose)
}

// SetHover records what source points at; zero clears it.
func (r *Room) SetHover(source models.SourceID, object models.ObjectID) error {
	if _, ok := r.objects[object]; !ok {
		object = 0
	}
	err := r.registry.SetHover(source, object)
	r.refreshHighlights()
	return err
}

// Dispatch routes one input event from source through the interaction state
// machine.
func (r *Room) Dispatch(source models.SourceID, ev models.InputEvent) error {
	if _, ok := r.registry.Source(source); !ok {
		return fmt.Errorf("%w: %s", ErrInvalidGrabSource, source)
	}
	switch ev.Kind {
	case models.InputHover:
		if ev.Target.Role == models.RoleInteractable {
			return r.SetHover(source, ev.Target.Object)
		}
		return r.SetHover(source, 0)
	case models.InputRelease:
		return r.GrabEnd(source)
	case models.InputPress:
		switch ev.Target.Role {
		case models.RoleMenuButton:
			_, err := r.SpawnNear(source, ev.Target.Shape)
			return err
		case models.RoleDeleteButton:
			r.ToggleDeleteMode()
			return nil
		case models.RoleInteractable:
			return r.GrabStart(source, ev.Target.Object)
		}
	}
	return nil
}

// Tick runs one frame: held objects move, highlights refresh and expired
// removals leave the scene. Poses must be refreshed before calling it.
func (r *Room) Tick(now time.Time) error {
	var delta time.Duration
	if !r.lastTick.IsZero() {
		delta = now.Sub(r.lastTick)
	}
	r.lastTick = now
	r.frame++
	return r.scheduler.Run(systems.Frame{Number: r.frame, Now: now, Delta: delta})
}

// Frame is the number of ticks run so far.
func (r *Room) Frame() int64 { return r.frame }

func (r *Room) refreshHighlights() {
	for _, obj := range r.objects {
		switch {
		case len(obj.Grabbers) > 0:
			obj.Highlight = models.HighlightGrabbed
		case r.registry.Hovered(obj.ID) && r.deleteMode:
			obj.Highlight = models.HighlightDeleteArmed
		case r.registry.Hovered(obj.ID):
			obj.Highlight = models.HighlightHovered
		default:
			obj.Highlight = models.HighlightNormal
		}
	}
}

func (r *Room) publish(eventType string, payload any) {
	if r.bus == nil {
		return
	}
	if err := r.bus.Publish(bus.NewEvent(eventType, events.Source, payload)); err != nil {
		r.logger.Warn("Event handler failed", log.String("event", eventType), log.Error(err))
	}
}
