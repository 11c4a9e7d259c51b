package protocol

import "errors"

var (
	ErrInvalidMessage = errors.New("invalid message")
	ErrUnknownCommand = errors.New("unknown command type")
	ErrMissingField   = errors.New("missing field")
	ErrUnknownRole    = errors.New("unknown target role")
)
