package metrics

import (
	"context"

	"github.com/kilianp07/citypredict/core/events"
	coremetrics "github.com/kilianp07/citypredict/core/metrics"
	"github.com/kilianp07/citypredict/infra/logger"
	"github.com/kilianp07/citypredict/internal/eventbus"
)

// StartEventCollector subscribes to the event bus and records metrics for events.
// It stops when the context is canceled or the bus is closed.
func StartEventCollector(ctx context.Context, bus *eventbus.Bus[events.Event], sink coremetrics.Sink, log logger.Logger) {
	if bus == nil || sink == nil {
		return
	}
	if log == nil {
		log = logger.NopLogger{}
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
				if err := collect(sink, ev); err != nil {
					log.Warnf("record metrics: %v", err)
				}
			}
		}
	}()
}

func collect(sink coremetrics.Sink, ev events.Event) error {
	switch e := ev.(type) {
	case events.PredictionEvent:
		r := e.Record
		return sink.RecordPrediction(coremetrics.NewPredictionEvent(r.Module, r.Result, e.Latency, r.Timestamp))
	case events.AvailabilityEvent:
		if rec, ok := sink.(coremetrics.AvailabilityRecorder); ok {
			return rec.RecordAvailability(e.Domain, e.Available)
		}
	}
	return nil
}
