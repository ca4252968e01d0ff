// Package monitoring adapts error trackers to the core monitoring contract
// and reports failed predictions from the event bus.
package monitoring

import (
	"context"
	"errors"

	"github.com/kilianp07/citypredict/core/events"
	coremon "github.com/kilianp07/citypredict/core/monitoring"
	"github.com/kilianp07/citypredict/internal/eventbus"
)

// StartErrorReporter captures error results and unavailable domains until
// ctx is done or the bus is closed. The subscription is registered before
// it returns.
func StartErrorReporter(ctx context.Context, bus *eventbus.Bus[events.Event], m coremon.Monitor) {
	if bus == nil || m == nil {
		return
	}
	sub := bus.Subscribe()
	go func() {
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				report(m, ev)
			}
		}
	}()
}

func report(m coremon.Monitor, ev events.Event) {
	switch e := ev.(type) {
	case events.PredictionEvent:
		if e.Record.Result.OK() {
			return
		}
		m.CaptureException(errors.New(e.Record.Result.Message), map[string]string{
			"domain":    string(e.Record.Module),
			"record_id": e.Record.ID,
		})
	case events.AvailabilityEvent:
		if e.Available || e.Err == nil {
			return
		}
		m.CaptureException(e.Err, map[string]string{"domain": string(e.Domain), "kind": "load"})
	}
}
