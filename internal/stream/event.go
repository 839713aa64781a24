// Package stream implements the upload progress sub-protocol: a sequence of
// "data: <json>" records separated by blank lines, carried in one long-lived
// HTTP response body. Each record holds one Event keyed by its "type" field.
package stream

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// EventType is the discriminant of a streamed record.
type EventType string

const (
	// TypeFileUpload reports the relay's own ingestion progress.
	TypeFileUpload EventType = "fileUpload"
	// TypeStorageUpload reports progress of the write into object storage.
	TypeStorageUpload EventType = "storageUpload"
	// TypeComplete carries the public URL of the stored object. Terminal.
	TypeComplete EventType = "complete"
	// TypeError carries a failure message. Terminal.
	TypeError EventType = "error"
)

// ErrMalformedEvent is returned by Decode for records that do not match one
// of the four known shapes.
var ErrMalformedEvent = errors.New("malformed event")

// Event is one decoded record. Only the fields that belong to Type are
// meaningful: Progress for the two progress types, URL for complete and
// Message for error.
type Event struct {
	Type     EventType
	Progress int
	URL      string
	Message  string
}

func FileUpload(progress int) Event {
	return Event{Type: TypeFileUpload, Progress: clampPercent(progress)}
}

func StorageUpload(progress int) Event {
	return Event{Type: TypeStorageUpload, Progress: clampPercent(progress)}
}

func Complete(url string) Event {
	return Event{Type: TypeComplete, URL: url}
}

func Failure(message string) Event {
	return Event{Type: TypeError, Message: message}
}

// Terminal reports whether no further records follow e.
func (e Event) Terminal() bool {
	return e.Type == TypeComplete || e.Type == TypeError
}

// MarshalJSON emits only the payload fields of the event's type, so a
// progress of 0 is still sent and a complete event never carries progress.
func (e Event) MarshalJSON() ([]byte, error) {
	switch e.Type {
	case TypeFileUpload, TypeStorageUpload:
		return json.Marshal(struct {
			Type     EventType `json:"type"`
			Progress int       `json:"progress"`
		}{e.Type, e.Progress})
	case TypeComplete:
		return json.Marshal(struct {
			Type EventType `json:"type"`
			URL  string    `json:"url"`
		}{e.Type, e.URL})
	case TypeError:
		return json.Marshal(struct {
			Type    EventType `json:"type"`
			Message string    `json:"message"`
		}{e.Type, e.Message})
	default:
		return nil, fmt.Errorf("%w: unknown type %q", ErrMalformedEvent, e.Type)
	}
}

// Decode parses one record payload. Anything that is not valid JSON, has an
// unknown discriminant, or has a field of the wrong type yields an error
// wrapping ErrMalformedEvent. Progress must be an integer in 0..100.
func Decode(payload []byte) (Event, error) {
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return Event{}, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}

	typ, ok := raw["type"].(string)
	if !ok {
		return Event{}, fmt.Errorf("%w: missing type", ErrMalformedEvent)
	}

	switch ev := (Event{Type: EventType(typ)}); ev.Type {
	case TypeFileUpload, TypeStorageUpload:
		n, ok := raw["progress"].(json.Number)
		if !ok {
			return Event{}, fmt.Errorf("%w: %s without numeric progress", ErrMalformedEvent, typ)
		}
		p, err := n.Int64()
		if err != nil || p < 0 || p > 100 {
			return Event{}, fmt.Errorf("%w: progress %s out of range", ErrMalformedEvent, n)
		}
		ev.Progress = int(p)
		return ev, nil
	case TypeComplete:
		url, ok := raw["url"].(string)
		if !ok || url == "" {
			return Event{}, fmt.Errorf("%w: complete without url", ErrMalformedEvent)
		}
		ev.URL = url
		return ev, nil
	case TypeError:
		msg, ok := raw["message"].(string)
		if !ok {
			return Event{}, fmt.Errorf("%w: error without message", ErrMalformedEvent)
		}
		ev.Message = msg
		return ev, nil
	default:
		return Event{}, fmt.Errorf("%w: unknown type %q", ErrMalformedEvent, typ)
	}
}

// Percent converts done/total into an integer percentage in 0..100.
// A non-positive total counts as 0%.
func Percent(done, total int64) int {
	if total <= 0 {
		return 0
	}
	return clampPercent(int(done * 100 / total))
}

func clampPercent(p int) int {
	switch {
	case p < 0:
		return 0
	case p > 100:
		return 100
	default:
		return p
	}
}
