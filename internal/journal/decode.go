package journal

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
)

// Event is one decoded journal line.
type Event struct {
	Name      string // value of the "event" field
	Kind      Kind
	Timestamp string // value of the "timestamp" field, verbatim
	Raw       []byte
}

// Decode unmarshals the event payload into v.
func (e Event) Decode(v any) error {
	if err := json.Unmarshal(e.Raw, v); err != nil {
		return fmt.Errorf("failed to decode %s payload: %w", e.Name, err)
	}
	return nil
}

// MalformedError reports a line that is not a journal record.
type MalformedError struct {
	Line   string
	Reason string
}

func (e *MalformedError) Error() string {
	line := e.Line
	if len(line) > 120 {
		line = line[:120] + "..."
	}
	return fmt.Sprintf("malformed journal line (%s): %q", e.Reason, line)
}

// Decode parses a journal line. Unknown event names decode to
// KindUnhandled without error. Invalid JSON, a non-object record, or a
// missing "event" field return a *MalformedError.
func Decode(line string) (Event, error) {
	if !gjson.Valid(line) {
		return Event{}, &MalformedError{Line: line, Reason: "invalid JSON"}
	}

	record := gjson.Parse(line)
	if !record.IsObject() {
		return Event{}, &MalformedError{Line: line, Reason: "not an object"}
	}

	name := record.Get("event")
	if name.Type != gjson.String || name.Str == "" {
		return Event{}, &MalformedError{Line: line, Reason: "missing event field"}
	}

	return Event{
		Name:      name.Str,
		Kind:      KindOf(name.Str),
		Timestamp: record.Get("timestamp").String(),
		Raw:       []byte(line),
	}, nil
}
