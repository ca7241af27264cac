package rpc

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Reply is the outcome of a call: either Err is set, or Result holds the raw
// JSON value returned by the peer.
type Reply struct {
	Result json.RawMessage
	Err    error
}

// ReplyFunc receives the outcome of a call.
type ReplyFunc func(Reply)

// RemoteError is an error reported by the peer for a specific call.
type RemoteError struct {
	Message string
}

func (e *RemoteError) Error() string {
	return e.Message
}

// IsNull reports a successful reply carrying JSON null (or nothing).
func (r Reply) IsNull() bool {
	if r.Err != nil {
		return false
	}
	trimmed := bytes.TrimSpace(r.Result)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// Bool reports a successful reply carrying JSON true.
func (r Reply) Bool() bool {
	if r.Err != nil {
		return false
	}
	var v bool
	if err := json.Unmarshal(r.Result, &v); err != nil {
		return false
	}
	return v
}

// Failed reports an error reply or a successful reply carrying JSON false.
func (r Reply) Failed() bool {
	if r.Err != nil {
		return true
	}
	return bytes.Equal(bytes.TrimSpace(r.Result), []byte("false"))
}

// ErrorString decodes the "null on success, message on failure" convention.
// ok is false for a null reply.
func (r Reply) ErrorString() (msg string, ok bool) {
	if r.Err != nil {
		return r.Err.Error(), true
	}
	if r.IsNull() {
		return "", false
	}
	if err := json.Unmarshal(r.Result, &msg); err != nil {
		return string(r.Result), true
	}
	return msg, true
}

// Decode unmarshals the result into v.
func (r Reply) Decode(v any) error {
	if r.Err != nil {
		return r.Err
	}
	if err := json.Unmarshal(r.Result, v); err != nil {
		return fmt.Errorf("failed to decode reply: %w", err)
	}
	return nil
}
