// Package events defines the events emitted on the event bus.
//
// Available event types:
//   - PredictionEvent: a prediction was served and stored
//   - AvailabilityEvent: the model availability of a domain is known
package events

import (
	"time"

	"github.com/kilianp07/citypredict/core/prediction"
	"github.com/kilianp07/citypredict/core/store"
)

// Event is implemented by every event type carried on the bus.
type Event interface {
	event()
}

// PredictionEvent is published after a prediction has been stored.
type PredictionEvent struct {
	Record  store.Record
	Latency time.Duration
}

// AvailabilityEvent reports whether a domain loaded its models.
type AvailabilityEvent struct {
	Domain    prediction.Domain
	Available bool
	Err       error
}

func (PredictionEvent) event()   {}
func (AvailabilityEvent) event() {}
