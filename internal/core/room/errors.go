package room

import (
	"errors"

	"github.com/zeusync/objectroom/internal/core/grab"
)

// Room errors. None of them is fatal to the frame loop.
var (
	ErrCapacityExceeded  = errors.New("maximum objects reached")
	ErrInvalidShape      = errors.New("invalid shape kind")
	ErrUnknownObject     = grab.ErrUnknownObject
	ErrInvalidGrabSource = grab.ErrInvalidGrabSource
	ErrObjectFullyHeld   = grab.ErrObjectFullyHeld
)
