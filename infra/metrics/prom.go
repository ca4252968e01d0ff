package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/citypredict/core/metrics"
	"github.com/kilianp07/citypredict/core/prediction"
)

// PromSink records prediction events in Prometheus metrics.
type PromSink struct {
	predictions *prometheus.CounterVec
	latency     *prometheus.HistogramVec
	value       *prometheus.GaugeVec
	available   *prometheus.GaugeVec
}

// NewPromSink registers prediction metrics on the default Prometheus registerer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	predictions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "citypredict_predictions_total",
		Help: "Total number of served predictions",
	}, []string{"domain", "status"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "citypredict_prediction_latency_seconds",
		Help:    "Time spent computing a prediction",
		Buckets: prometheus.DefBuckets,
	}, []string{"domain"})
	value := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "citypredict_last_prediction_value",
		Help: "Main numeric output of the last successful prediction",
	}, []string{"domain"})
	available := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "citypredict_model_available",
		Help: "1 when the domain loaded its models, 0 otherwise",
	}, []string{"domain"})

	var err error
	if predictions, err = register(reg, predictions); err != nil {
		return nil, err
	}
	if latency, err = register(reg, latency); err != nil {
		return nil, err
	}
	if value, err = register(reg, value); err != nil {
		return nil, err
	}
	if available, err = register(reg, available); err != nil {
		return nil, err
	}
	return &PromSink{predictions: predictions, latency: latency, value: value, available: available}, nil
}

// register returns the collector already registered under the same
// descriptor when there is one.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordPrediction implements coremetrics.Sink.
func (s *PromSink) RecordPrediction(ev coremetrics.PredictionEvent) error {
	d := string(ev.Domain)
	s.predictions.WithLabelValues(d, string(ev.Status)).Inc()
	s.latency.WithLabelValues(d).Observe(ev.Latency.Seconds())
	if ev.Value != nil {
		s.value.WithLabelValues(d).Set(*ev.Value)
	}
	return nil
}

// RecordAvailability implements coremetrics.AvailabilityRecorder.
func (s *PromSink) RecordAvailability(d prediction.Domain, available bool) error {
	v := 0.0
	if available {
		v = 1
	}
	s.available.WithLabelValues(string(d)).Set(v)
	return nil
}
