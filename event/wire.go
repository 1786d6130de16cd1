package event

import (
	"encoding/json"
	"fmt"
)

// Encode serializes an event as a single SSE frame:
//
//	data: {...}\n\n
//
// Returns an error when the event payload cannot be marshaled; callers
// drop the event rather than failing the stream.
func Encode(ev Event) ([]byte, error) {
	data, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("event: encode %s: %w", ev.Kind(), err)
	}
	frame := make([]byte, 0, len(data)+8)
	frame = append(frame, "data: "...)
	frame = append(frame, data...)
	frame = append(frame, "\n\n"...)
	return frame, nil
}
