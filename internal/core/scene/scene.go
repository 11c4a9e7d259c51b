// Package scene is the boundary to the render layer. The room adds and removes
// objects here; whoever renders reads transforms back through the handles.
package scene

import (
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/zeusync/objectroom/internal/core/models"
)

// Handle identifies an object inside the render layer.
type Handle string

// Scene is the render layer as seen by the room.
type Scene interface {
	AddObject(obj *models.SpawnedObject) Handle
	RemoveObject(h Handle)
}

// Memory is an in-process scene. The websocket server uses it as its render
// layer and streams its contents to browsers.
type Memory struct {
	mu      sync.RWMutex
	objects map[Handle]*models.SpawnedObject
}

var _ Scene = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{objects: make(map[Handle]*models.SpawnedObject)}
}

func (m *Memory) AddObject(obj *models.SpawnedObject) Handle {
	h := Handle(uuid.NewString())
	m.mu.Lock()
	m.objects[h] = obj
	m.mu.Unlock()
	return h
}

func (m *Memory) RemoveObject(h Handle) {
	m.mu.Lock()
	delete(m.objects, h)
	m.mu.Unlock()
}

// Len is the number of objects still rendered, including ones fading out.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objects)
}

// Contains reports whether h is still in the scene.
func (m *Memory) Contains(h Handle) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.objects[h]
	return ok
}

// Objects returns the rendered objects ordered by id.
func (m *Memory) Objects() []*models.SpawnedObject {
	m.mu.RLock()
	out := make([]*models.SpawnedObject, 0, len(m.objects))
	for _, o := range m.objects {
		out = append(out, o)
	}
	m.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
