package rpc

import (
	"encoding/json"
	"fmt"
)

// Frame kinds. Every message on the wire is a two element JSON array
// [kind, payload].
const (
	KindCall   = "call"   // [id|null, method, args, kwargs]
	KindReturn = "return" // [id, value]
	KindError  = "error"  // [id, message]
)

// Frame is a decoded wire message.
type Frame struct {
	Kind   string
	ID     *int64
	Method string
	Args   []json.RawMessage
	Kwargs map[string]json.RawMessage
	Value  json.RawMessage
	Error  string
}

func encodeCall(id *int64, method string, args []any, kwargs map[string]any) ([]byte, error) {
	if args == nil {
		args = []any{}
	}
	if kwargs == nil {
		kwargs = map[string]any{}
	}
	return json.Marshal([]any{KindCall, []any{id, method, args, kwargs}})
}

func encodeReturn(id int64, value any) ([]byte, error) {
	return json.Marshal([]any{KindReturn, []any{id, value}})
}

func encodeError(id int64, message string) ([]byte, error) {
	return json.Marshal([]any{KindError, []any{id, message}})
}

// DecodeFrame parses a wire message.
func DecodeFrame(data []byte) (*Frame, error) {
	var outer []json.RawMessage
	if err := json.Unmarshal(data, &outer); err != nil {
		return nil, fmt.Errorf("malformed frame: %w", err)
	}
	if len(outer) != 2 {
		return nil, fmt.Errorf("malformed frame: expected 2 elements, got %d", len(outer))
	}

	f := &Frame{}
	if err := json.Unmarshal(outer[0], &f.Kind); err != nil {
		return nil, fmt.Errorf("malformed frame kind: %w", err)
	}

	var payload []json.RawMessage
	if err := json.Unmarshal(outer[1], &payload); err != nil {
		return nil, fmt.Errorf("malformed %s payload: %w", f.Kind, err)
	}

	switch f.Kind {
	case KindCall:
		if len(payload) < 2 {
			return nil, fmt.Errorf("malformed call: expected at least 2 elements")
		}
		if err := json.Unmarshal(payload[0], &f.ID); err != nil {
			return nil, fmt.Errorf("malformed call id: %w", err)
		}
		if err := json.Unmarshal(payload[1], &f.Method); err != nil {
			return nil, fmt.Errorf("malformed call method: %w", err)
		}
		if len(payload) > 2 {
			if err := json.Unmarshal(payload[2], &f.Args); err != nil {
				return nil, fmt.Errorf("malformed call args: %w", err)
			}
		}
		if len(payload) > 3 {
			if err := json.Unmarshal(payload[3], &f.Kwargs); err != nil {
				return nil, fmt.Errorf("malformed call kwargs: %w", err)
			}
		}
	case KindReturn, KindError:
		if len(payload) != 2 {
			return nil, fmt.Errorf("malformed %s: expected 2 elements", f.Kind)
		}
		if err := json.Unmarshal(payload[0], &f.ID); err != nil || f.ID == nil {
			return nil, fmt.Errorf("malformed %s id", f.Kind)
		}
		if f.Kind == KindReturn {
			f.Value = payload[1]
		} else if err := json.Unmarshal(payload[1], &f.Error); err != nil {
			f.Error = string(payload[1])
		}
	default:
		return nil, fmt.Errorf("unknown frame kind %q", f.Kind)
	}
	return f, nil
}
