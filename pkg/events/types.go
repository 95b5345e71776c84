// Package events carries server-sent notifications about the served thrust
// dataset.
package events

import "encoding/json"

const (
	DatasetReloaded     = "dataset.reloaded"
	DatasetReloadFailed = "dataset.reloadFailed"
)

// Event is one server-sent event.
type Event struct {
	Name string          // SSE event name
	Data json.RawMessage // JSON payload
}

// DatasetReloadedEvent is the payload of dataset.reloaded.
type DatasetReloadedEvent struct {
	Path         string  `json:"path"`
	Rows         int     `json:"rows"`
	TotalImpulse float64 `json:"totalImpulse"`
	Ts           int64   `json:"ts"`
}

// DatasetReloadFailedEvent is the payload of dataset.reloadFailed. The
// previous dataset stays in service.
type DatasetReloadFailedEvent struct {
	Path  string `json:"path"`
	Error string `json:"error"`
	Ts    int64  `json:"ts"`
}

// DecodeAs unmarshals the event payload into T. An empty payload yields the
// zero value.
func DecodeAs[T any](e Event) (T, error) {
	var zero T
	if len(e.Data) == 0 {
		return zero, nil
	}
	var v T
	if err := json.Unmarshal(e.Data, &v); err != nil {
		return zero, err
	}
	return v, nil
}
