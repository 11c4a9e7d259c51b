package protocol

import (
	"encoding/json"
	"fmt"
)

// JSONCodec encodes outbound messages and decodes inbound commands.
type JSONCodec struct{}

func (JSONCodec) EncodeMessage(msg Message) ([]byte, error) {
	return json.Marshal(msg)
}

func (JSONCodec) DecodeMessage(data []byte) (Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return Message{}, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	return msg, nil
}

func (JSONCodec) EncodeCommand(cmd Command) ([]byte, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	return json.Marshal(cmd)
}

// DecodeCommand parses and validates one command.
func (JSONCodec) DecodeCommand(data []byte) (Command, error) {
	var cmd Command
	if err := json.Unmarshal(data, &cmd); err != nil {
		return Command{}, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	if err := cmd.Validate(); err != nil {
		return Command{}, err
	}
	return cmd, nil
}
