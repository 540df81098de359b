package protocol

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/rocketscienceinc/tictactoe-room/internal/apperror"
)

// Fields decodes a flat JSON object into its key/value pairs. String values are
// unquoted, numbers and booleans keep their literal text and null values are
// dropped. Nested objects and arrays are rejected.
func Fields(raw []byte) (map[string]string, error) {
	var object map[string]json.RawMessage
	if err := json.Unmarshal(raw, &object); err != nil {
		return nil, fmt.Errorf("%w: %w", apperror.ErrMalformedMessage, err)
	}

	if object == nil {
		return nil, fmt.Errorf("%w: not an object", apperror.ErrMalformedMessage)
	}

	fields := make(map[string]string, len(object))
	for key, value := range object {
		value = bytes.TrimSpace(value)

		switch {
		case len(value) == 0 || bytes.Equal(value, []byte("null")):
			continue
		case value[0] == '{' || value[0] == '[':
			return nil, fmt.Errorf("%w: field %q is nested", apperror.ErrMalformedMessage, key)
		case value[0] == '"':
			var text string
			if err := json.Unmarshal(value, &text); err != nil {
				return nil, fmt.Errorf("%w: field %q: %w", apperror.ErrMalformedMessage, key, err)
			}
			fields[strings.TrimSpace(key)] = strings.TrimSpace(text)
		default:
			fields[strings.TrimSpace(key)] = string(value)
		}
	}

	return fields, nil
}

// Decode turns a raw client message into a typed Request. Unknown types yield
// ErrUnknownMessageType; shape errors yield ErrMalformedMessage.
func Decode(raw []byte) (Request, error) {
	fields, err := Fields(raw)
	if err != nil {
		return nil, err
	}

	kind, ok := fields[fieldType]
	if !ok || kind == "" {
		return nil, fmt.Errorf("%w: missing %q", apperror.ErrMalformedMessage, fieldType)
	}

	switch kind {
	case TypeMove:
		cell, err := intField(fields, fieldIndex)
		if err != nil {
			return nil, err
		}

		player, ok := fields[fieldPlayer]
		if !ok {
			return nil, fmt.Errorf("%w: missing %q", apperror.ErrMalformedMessage, fieldPlayer)
		}

		return MoveRequest{Cell: cell, Player: player}, nil
	case TypeReset:
		return ResetRequest{}, nil
	case TypeJumpTo:
		index, err := intField(fields, fieldIndex)
		if err != nil {
			return nil, err
		}

		return JumpToRequest{Index: index}, nil
	default:
		return nil, fmt.Errorf("%w: %q", apperror.ErrUnknownMessageType, kind)
	}
}

func intField(fields map[string]string, key string) (int, error) {
	text, ok := fields[key]
	if !ok {
		return 0, fmt.Errorf("%w: missing %q", apperror.ErrMalformedMessage, key)
	}

	value, err := strconv.Atoi(text)
	if err != nil {
		return 0, fmt.Errorf("%w: field %q is not an integer: %q", apperror.ErrMalformedMessage, key, text)
	}

	return value, nil
}
