package protocol

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMalformed reports a frame that has no type or whose payload is not JSON.
var ErrMalformed = errors.New("protocol: malformed frame")

// Decode parses one inbound frame. Besides the "<type> <json>" form it accepts
// a bare type with no payload and a JSON object carrying a "type" field.
// Types outside the known set decode without error; see Message.Known.
func Decode(frame []byte) (Message, error) {
	frame = bytes.TrimSpace(frame)
	if len(frame) == 0 {
		return Message{}, fmt.Errorf("%w: empty", ErrMalformed)
	}
	if frame[0] == '{' {
		return decodeEnvelope(frame)
	}

	name, payload, _ := bytes.Cut(frame, []byte{' '})
	payload = bytes.TrimSpace(payload)
	if len(payload) > 0 && !json.Valid(payload) {
		return Message{}, fmt.Errorf("%w: %s payload is not JSON", ErrMalformed, name)
	}
	return Message{Type: Type(name), Payload: json.RawMessage(payload)}, nil
}

func decodeEnvelope(frame []byte) (Message, error) {
	var env struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(frame, &env); err != nil {
		return Message{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if env.Type == "" {
		return Message{}, fmt.Errorf("%w: missing type", ErrMalformed)
	}
	return Message{Type: Type(env.Type), Payload: json.RawMessage(frame)}, nil
}

// Known reports whether m's type belongs to the protocol vocabulary.
func (m Message) Known() bool {
	switch m.Type {
	case TypeJoin, TypeFollow, TypeLine, TypeUpdates, TypeSay, TypeText:
		return true
	}
	return false
}

// Decode unmarshals the payload into v. An empty payload decodes as {}.
func (m Message) Decode(v any) error {
	payload := m.Payload
	if len(payload) == 0 {
		payload = json.RawMessage("{}")
	}
	if err := json.Unmarshal(payload, v); err != nil {
		return fmt.Errorf("protocol: decode %s payload: %w", m.Type, err)
	}
	return nil
}
