package grab

import "errors"

// Grab errors. All of them are recoverable; callers log and carry on.
var (
	ErrInvalidGrabSource = errors.New("grab source is not registered")
	ErrDuplicateSource   = errors.New("grab source already registered")
	ErrUnknownObject     = errors.New("object does not exist")
	ErrObjectFullyHeld   = errors.New("object is already held by two sources")
)
