package room

import (
	"math/rand"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/objectroom/internal/core/events"
	"github.com/zeusync/objectroom/internal/core/events/bus"
	"github.com/zeusync/objectroom/internal/core/models"
	"github.com/zeusync/objectroom/internal/core/observability/log"
	"github.com/zeusync/objectroom/internal/core/scene"
)

type fixture struct {
	room   *Room
	scene  *scene.Memory
	now    time.Time
	events []bus.Event
}

func newFixture(t *testing.T, mutate ...func(*Options)) *fixture {
	t.Helper()
	f := &fixture{scene: scene.NewMemory(), now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}

	opts := DefaultOptions()
	opts.Rand = rand.New(rand.NewSource(1))
	opts.Clock = func() time.Time { return f.now }
	for _, m := range mutate {
		m(&opts)
	}

	b := bus.New()
	_, err := b.Subscribe(bus.Wildcard, func(e bus.Event) error {
		f.events = append(f.events, e)
		return nil
	})
	require.NoError(t, err)

	f.room, err = New(opts, f.scene, b, log.NewNop())
	require.NoError(t, err)
	return f
}

func (f *fixture) tick(t *testing.T, d time.Duration) {
	t.Helper()
	f.now = f.now.Add(d)
	require.NoError(t, f.room.Tick(f.now))
}

func (f *fixture) eventTypes() []string {
	out := make([]string, 0, len(f.events))
	for _, e := range f.events {
		out = append(out, e.Type())
	}
	return out
}

func (f *fixture) held(source models.SourceID) models.ObjectID {
	src, _ := f.room.Registry().Source(source)
	return src.Held
}

func TestNewValidatesOptions(t *testing.T) {
	opts := DefaultOptions()
	opts.MaxObjects = 0
	_, err := New(opts, scene.NewMemory(), bus.New(), log.NewNop())
	assert.Error(t, err)

	opts = DefaultOptions()
	opts.Sources = []models.SourceID{models.SourceLeft, models.SourceLeft}
	_, err = New(opts, scene.NewMemory(), bus.New(), log.NewNop())
	assert.Error(t, err)
}

func TestSpawnAssignsMonotonicIDsWithJitter(t *testing.T) {
	f := newFixture(t)
	approx := mgl64.Vec3{0, 2, -1}

	var last models.ObjectID
	for i := 0; i < 5; i++ {
		id, err := f.room.Spawn(models.ShapeSphere, approx)
		require.NoError(t, err)
		assert.Greater(t, id, last)
		last = id

		obj, ok := f.room.Object(id)
		require.True(t, ok)
		assert.InDelta(t, approx.X(), obj.Transform.Position.X(), 0.1)
		assert.InDelta(t, approx.Z(), obj.Transform.Position.Z(), 0.1)
		assert.Equal(t, approx.Y(), obj.Transform.Position.Y())
		assert.Equal(t, mgl64.Vec3{1, 1, 1}, obj.Transform.Scale)
	}
	assert.Equal(t, 5, f.room.Count())
	assert.Equal(t, 5, f.scene.Len())
}

func TestSpawnClampsToFloorAndRejectsBadShape(t *testing.T) {
	f := newFixture(t)
	id, err := f.room.Spawn(models.ShapeBox, mgl64.Vec3{0, -1, 0})
	require.NoError(t, err)
	obj, _ := f.room.Object(id)
	assert.Equal(t, 0.25, obj.Transform.Position.Y())

	_, err = f.room.Spawn(models.ShapeKind(99), mgl64.Vec3{})
	assert.ErrorIs(t, err, ErrInvalidShape)
}

func TestSpawnCapacityExceeded(t *testing.T) {
	f := newFixture(t)
	for i := 0; i < 20; i++ {
		_, err := f.room.Spawn(models.ShapeBox, mgl64.Vec3{0, 1, 0})
		require.NoError(t, err)
	}

	_, err := f.room.Spawn(models.ShapeBox, mgl64.Vec3{0, 1, 0})
	assert.ErrorIs(t, err, ErrCapacityExceeded)
	assert.Equal(t, 20, f.room.Count())
	assert.Equal(t, events.SpawnRejected, f.events[len(f.events)-1].Type())

	// deleting frees a slot immediately, even while the object fades out
	require.NoError(t, f.room.Delete(3))
	_, err = f.room.Spawn(models.ShapeBox, mgl64.Vec3{0, 1, 0})
	assert.NoError(t, err)
}

func TestDeleteModeGrabDestroys(t *testing.T) {
	f := newFixture(t)
	id, err := f.room.Spawn(models.ShapeTorus, mgl64.Vec3{0, 1, 0})
	require.NoError(t, err)

	assert.True(t, f.room.ToggleDeleteMode())
	require.NoError(t, f.room.GrabStart(models.SourceRight, id))

	_, ok := f.room.Object(id)
	assert.False(t, ok)
	assert.Zero(t, f.held(models.SourceRight))
	status, known := f.room.Status(id)
	assert.True(t, known)
	assert.Equal(t, models.StatusDestroyed, status)

	assert.False(t, f.room.ToggleDeleteMode())
	assert.Contains(t, f.eventTypes(), events.DeleteModeChanged)
}

func TestDeleteDualHeldObject(t *testing.T) {
	f := newFixture(t)
	id, _ := f.room.Spawn(models.ShapeSphere, mgl64.Vec3{0, 2, -1})
	require.NoError(t, f.room.GrabStart(models.SourceLeft, id))
	require.NoError(t, f.room.GrabStart(models.SourceRight, id))
	status, _ := f.room.Status(id)
	require.Equal(t, models.StatusDualHeld, status)

	f.events = nil
	require.NoError(t, f.room.Delete(id))

	assert.Zero(t, f.held(models.SourceLeft))
	assert.Zero(t, f.held(models.SourceRight))
	assert.Zero(t, f.room.Registry().SessionCount())
	assert.Equal(t, []string{
		events.GrabEnded, events.GrabEnded, events.TwoHandEnded, events.ObjectDeleted,
	}, f.eventTypes(), "holders first, then the session, then the object")

	f.tick(t, time.Second)
	assert.Zero(t, f.held(models.SourceLeft))
}

func TestDeleteUnknownIsNoop(t *testing.T) {
	f := newFixture(t)
	assert.ErrorIs(t, f.room.Delete(42), ErrUnknownObject)
	_, known := f.room.Status(42)
	assert.False(t, known)
}

func TestPendingRemovalShrinksThenLeavesScene(t *testing.T) {
	f := newFixture(t)
	id, _ := f.room.Spawn(models.ShapeCone, mgl64.Vec3{0, 1, 0})
	obj, _ := f.room.Object(id)

	require.NoError(t, f.room.Delete(id))
	assert.Zero(t, f.room.Count())
	assert.Equal(t, 1, f.scene.Len(), "still rendered while fading")
	assert.Equal(t, 1, f.room.PendingRemovals())
	assert.ErrorIs(t, f.room.GrabStart(models.SourceLeft, id), ErrUnknownObject)

	f.tick(t, 150*time.Millisecond)
	assert.InDelta(t, 0.5, obj.Transform.Scale.X(), 1e-9)

	snap := f.room.Snapshot()
	require.Len(t, snap.Objects, 1)
	assert.True(t, snap.Objects[0].Fading)
	assert.Equal(t, "destroyed", snap.Objects[0].Status)

	f.tick(t, 150*time.Millisecond)
	assert.Zero(t, f.scene.Len())
	assert.Zero(t, f.room.PendingRemovals())
	assert.Equal(t, events.ObjectRemoved, f.events[len(f.events)-1].Type())
}

func TestZeroRemovalDelayRemovesAtOnce(t *testing.T) {
	f := newFixture(t, func(o *Options) { o.RemovalDelay = 0 })
	id, _ := f.room.Spawn(models.ShapeRing, mgl64.Vec3{0, 1, 0})
	require.NoError(t, f.room.Delete(id))
	assert.Zero(t, f.scene.Len())
	assert.Zero(t, f.room.PendingRemovals())
}

func TestIDsAreNotReused(t *testing.T) {
	f := newFixture(t)
	a, _ := f.room.Spawn(models.ShapeBox, mgl64.Vec3{0, 1, 0})
	require.NoError(t, f.room.Delete(a))
	b, _ := f.room.Spawn(models.ShapeBox, mgl64.Vec3{0, 1, 0})
	assert.Greater(t, b, a)
}

func TestClearAll(t *testing.T) {
	f := newFixture(t)
	for i := 0; i < 4; i++ {
		_, _ = f.room.Spawn(models.ShapePlane, mgl64.Vec3{0, 1, 0})
	}
	require.NoError(t, f.room.GrabStart(models.SourceMouse, 2))

	assert.Equal(t, 4, f.room.ClearAll())
	assert.Zero(t, f.room.Count())
	assert.Zero(t, f.held(models.SourceMouse))
	assert.Equal(t, 4, f.room.PendingRemovals())

	deleted := 0
	for _, typ := range f.eventTypes() {
		if typ == events.ObjectDeleted {
			deleted++
		}
	}
	assert.Equal(t, 4, deleted, "every cleared object goes through Delete")
	assert.Zero(t, f.room.ClearAll())
}

func TestTickMovesHeldObjects(t *testing.T) {
	f := newFixture(t)
	id, _ := f.room.Spawn(models.ShapeSphere, mgl64.Vec3{0, 2, -1})
	obj, _ := f.room.Object(id)
	start := obj.Transform.Position

	require.NoError(t, f.room.SetPose(models.SourceLeft, models.NewPose(mgl64.Vec3{0, 1.5, -0.5})))
	require.NoError(t, f.room.GrabStart(models.SourceLeft, id))
	require.NoError(t, f.room.SetPose(models.SourceLeft, models.NewPose(mgl64.Vec3{0.5, 1.5, -0.5})))
	f.tick(t, 16*time.Millisecond)

	assert.True(t, obj.Transform.Position.ApproxEqualThreshold(start.Add(mgl64.Vec3{0.5, 0, 0}), 1e-9))
	assert.Equal(t, int64(1), f.room.Frame())
}

func TestTwoHandScenarioThroughRoom(t *testing.T) {
	f := newFixture(t, func(o *Options) { o.SpawnJitter = 0 })
	id, err := f.room.Spawn(models.ShapeSphere, mgl64.Vec3{0, 2, -1})
	require.NoError(t, err)

	require.NoError(t, f.room.SetPose(models.SourceLeft, models.NewPose(mgl64.Vec3{-0.15, 2, -1})))
	require.NoError(t, f.room.SetPose(models.SourceRight, models.NewPose(mgl64.Vec3{0.15, 2, -1})))
	require.NoError(t, f.room.GrabStart(models.SourceLeft, id))
	require.NoError(t, f.room.GrabStart(models.SourceRight, id))
	_, ok := f.room.Registry().Session(id)
	require.True(t, ok)

	require.NoError(t, f.room.SetPose(models.SourceLeft, models.NewPose(mgl64.Vec3{-0.5, 1, -1})))
	require.NoError(t, f.room.SetPose(models.SourceRight, models.NewPose(mgl64.Vec3{0.5, 1, -1})))
	f.tick(t, 16*time.Millisecond)

	obj, _ := f.room.Object(id)
	assert.True(t, obj.Transform.Scale.ApproxEqualThreshold(mgl64.Vec3{3, 3, 3}, 1e-9))
	assert.Equal(t, models.HighlightGrabbed, obj.Highlight)
}

func TestDispatch(t *testing.T) {
	f := newFixture(t, func(o *Options) { o.SpawnJitter = 0 })
	require.NoError(t, f.room.SetPose(models.SourceMouse, models.NewPose(mgl64.Vec3{0, 1.6, 0})))

	press := func(target models.Target) error {
		return f.room.Dispatch(models.SourceMouse, models.InputEvent{Kind: models.InputPress, Target: target})
	}

	require.NoError(t, press(models.MenuButton(models.ShapeDodecahedron)))
	require.Equal(t, 1, f.room.Count())
	obj, _ := f.room.Object(1)
	assert.Equal(t, models.ShapeDodecahedron, obj.Shape)
	assert.True(t, obj.Transform.Position.ApproxEqualThreshold(mgl64.Vec3{0, 1.6, -0.5}, 1e-9), "spawned in front of the source")

	require.NoError(t, f.room.Dispatch(models.SourceMouse, models.InputEvent{Kind: models.InputHover, Target: models.Interactable(1)}))
	assert.Equal(t, models.HighlightHovered, obj.Highlight)

	require.NoError(t, press(models.Interactable(1)))
	assert.Equal(t, models.ObjectID(1), f.held(models.SourceMouse))
	assert.Equal(t, models.HighlightGrabbed, obj.Highlight)

	require.NoError(t, f.room.Dispatch(models.SourceMouse, models.InputEvent{Kind: models.InputRelease}))
	assert.Zero(t, f.held(models.SourceMouse))
	assert.Equal(t, models.HighlightHovered, obj.Highlight)

	require.NoError(t, press(models.DeleteButton()))
	assert.True(t, f.room.DeleteMode())
	assert.Equal(t, models.HighlightDeleteArmed, obj.Highlight)

	require.NoError(t, press(models.Interactable(1)))
	assert.Zero(t, f.room.Count())

	require.NoError(t, f.room.Dispatch(models.SourceMouse, models.InputEvent{Kind: models.InputHover}))
	assert.ErrorIs(t, f.room.Dispatch("foot", models.InputEvent{Kind: models.InputPress}), ErrInvalidGrabSource)
}

func TestSnapshot(t *testing.T) {
	f := newFixture(t)
	a, _ := f.room.Spawn(models.ShapeBox, mgl64.Vec3{0, 1, 0})
	b, _ := f.room.Spawn(models.ShapeCylinder, mgl64.Vec3{1, 1, 0})
	require.NoError(t, f.room.GrabStart(models.SourceRight, b))

	snap := f.room.Snapshot()
	assert.Equal(t, 2, snap.Count)
	assert.Equal(t, 20, snap.MaxObjects)
	require.Len(t, snap.Objects, 2)
	assert.Equal(t, a, snap.Objects[0].ID)
	assert.Equal(t, "single-held", snap.Objects[1].Status)
	assert.Equal(t, []models.SourceID{models.SourceRight}, snap.Objects[1].Grabbers)
	assert.Equal(t, [4]float64{0, 0, 0, 1}, snap.Objects[0].Rotation)
	assert.Regexp(t, `^#[0-9a-f]{6}$`, snap.Objects[0].Color)
	require.Len(t, snap.Sources, 3)
	assert.Equal(t, b, snap.Sources[1].Held)
}
