package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseShapeKind(t *testing.T) {
	for _, k := range Shapes() {
		got, err := ParseShapeKind(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}

	got, err := ParseShapeKind(" Cube ")
	require.NoError(t, err)
	assert.Equal(t, ShapeBox, got)

	_, err = ParseShapeKind("teapot")
	assert.Error(t, err)
}

func TestShapeKindText(t *testing.T) {
	var k ShapeKind
	require.NoError(t, k.UnmarshalText([]byte("torus")))
	assert.Equal(t, ShapeTorus, k)

	_, err := ShapeKind(200).MarshalText()
	assert.Error(t, err)
}

func TestGrabberBookkeeping(t *testing.T) {
	obj := &SpawnedObject{ID: 1}
	assert.Equal(t, StatusFree, obj.Status())

	assert.True(t, obj.AddGrabber(SourceLeft))
	assert.False(t, obj.AddGrabber(SourceLeft), "same source twice")
	assert.Equal(t, StatusSingleHeld, obj.Status())

	assert.True(t, obj.AddGrabber(SourceRight))
	assert.False(t, obj.AddGrabber(SourceMouse), "third grabber")
	assert.Equal(t, StatusDualHeld, obj.Status())
	assert.Len(t, obj.Grabbers, MaxGrabbers)

	obj.RemoveGrabber(SourceLeft)
	assert.Equal(t, []SourceID{SourceRight}, obj.Grabbers)
	assert.False(t, obj.HeldBy(SourceLeft))
}

func TestTargetConstructors(t *testing.T) {
	assert.Equal(t, Target{Role: RoleMenuButton, Shape: ShapeCone}, MenuButton(ShapeCone))
	assert.Equal(t, RoleDeleteButton, DeleteButton().Role)
	assert.Equal(t, ObjectID(7), Interactable(7).Object)
}
