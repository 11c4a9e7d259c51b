package room

import (
	"math/rand"
	"time"

	"github.com/zeusync/objectroom/internal/config"
	"github.com/zeusync/objectroom/internal/core/grab"
	"github.com/zeusync/objectroom/internal/core/models"
)

// Options tune a Room.
type Options struct {
	MaxObjects   int
	Limits       grab.Limits
	SpawnJitter  float64
	RemovalDelay time.Duration
	Sources      []models.SourceID

	// Rand drives spawn jitter and colours. Nil means a time seeded source.
	Rand *rand.Rand
	// Clock returns the current time. Nil means time.Now.
	Clock func() time.Time
}

// DefaultOptions mirrors config.Default().
func DefaultOptions() Options {
	return OptionsFromConfig(config.Default().Room)
}

// OptionsFromConfig converts the room section of the configuration.
func OptionsFromConfig(c config.RoomConfig) Options {
	return Options{
		MaxObjects: c.MaxObjects,
		Limits: grab.Limits{
			FloorHeight: c.FloorHeight,
			ScaleMin:    c.ScaleMin,
			ScaleMax:    c.ScaleMax,
		},
		SpawnJitter:  c.SpawnJitter,
		RemovalDelay: c.RemovalDelay,
		Sources:      append([]models.SourceID(nil), c.Sources...),
	}
}
