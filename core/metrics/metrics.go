// Package metrics defines the observability contract for served predictions.
// Sinks like the Prometheus and InfluxDB ones in infra/metrics are created
// from configuration through the registry and can be combined with
// NewMultiSink.
package metrics

import (
	"errors"
	"time"

	"github.com/kilianp07/citypredict/core/factory"
	"github.com/kilianp07/citypredict/core/prediction"
)

// Config lists the sinks to create.
type Config struct {
	Sinks []factory.ModuleConfig `json:"sinks"`
}

// PredictionEvent describes one served prediction.
type PredictionEvent struct {
	Domain  prediction.Domain
	Status  prediction.Status
	Latency time.Duration
	// Value is the main numeric output of the domain, absent on error.
	Value *float64
	// Label is the categorical output (congestion level, air quality,
	// collection flag), empty when the domain has none.
	Label string
	Time  time.Time
}

// NewPredictionEvent extracts the event of a result.
func NewPredictionEvent(d prediction.Domain, res prediction.Result, latency time.Duration, at time.Time) PredictionEvent {
	ev := PredictionEvent{Domain: d, Status: res.Status, Latency: latency, Time: at}
	if !res.OK() {
		return ev
	}
	switch {
	case res.PredictedVehicleCount != nil:
		v := float64(*res.PredictedVehicleCount)
		ev.Value, ev.Label = &v, res.CongestionLevel
	case res.PredictedConsumptionKWh != nil:
		ev.Value = res.PredictedConsumptionKWh
	case res.PredictedConsumptionLiters != nil:
		ev.Value = res.PredictedConsumptionLiters
	case res.PredictedFillLevelPercent != nil:
		ev.Value, ev.Label = res.PredictedFillLevelPercent, res.CollectionNeeded
	case res.QualityBinary != nil:
		v := float64(*res.QualityBinary)
		ev.Value, ev.Label = &v, res.PredictedQuality
	}
	return ev
}

// Sink records prediction events.
type Sink interface {
	RecordPrediction(ev PredictionEvent) error
}

// AvailabilityRecorder is implemented by sinks able to report which domains
// loaded their models.
type AvailabilityRecorder interface {
	RecordAvailability(d prediction.Domain, available bool) error
}

// NopSink implements Sink with no-op methods.
type NopSink struct{}

func (NopSink) RecordPrediction(PredictionEvent) error           { return nil }
func (NopSink) RecordAvailability(prediction.Domain, bool) error { return nil }

// MultiSink forwards events to several sinks.
type MultiSink struct {
	Sinks []Sink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...Sink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordPrediction forwards the event to every sink and joins their errors.
func (m *MultiSink) RecordPrediction(ev PredictionEvent) error {
	var errs []error
	for _, s := range m.Sinks {
		if err := s.RecordPrediction(ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// RecordAvailability forwards to the sinks that support it.
func (m *MultiSink) RecordAvailability(d prediction.Domain, available bool) error {
	var errs []error
	for _, s := range m.Sinks {
		if rec, ok := s.(AvailabilityRecorder); ok {
			if err := rec.RecordAvailability(d, available); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}
