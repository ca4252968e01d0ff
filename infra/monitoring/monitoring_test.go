package monitoring

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/citypredict/core/events"
	coremon "github.com/kilianp07/citypredict/core/monitoring"
	"github.com/kilianp07/citypredict/core/prediction"
	"github.com/kilianp07/citypredict/core/store"
	"github.com/kilianp07/citypredict/internal/eventbus"
)

type recorder struct {
	mu   sync.Mutex
	errs []error
	tags []map[string]string
}

func (r *recorder) CaptureException(err error, tags map[string]string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs = append(r.errs, err)
	r.tags = append(r.tags, tags)
}

func (r *recorder) Flush(time.Duration) bool { return true }

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.errs)
}

func TestNewSentryMonitor(t *testing.T) {
	m, err := NewSentryMonitor(Config{})
	require.NoError(t, err)
	assert.IsType(t, coremon.NopMonitor{}, m)

	_, err = NewSentryMonitor(Config{DSN: "ftp://key@sentry.invalid/1"})
	assert.Error(t, err)

	assert.Error(t, Config{TracesSampleRate: 2}.Validate())
	assert.NoError(t, Config{TracesSampleRate: 0.5}.Validate())
}

func TestErrorReporter(t *testing.T) {
	rec := &recorder{}
	bus := eventbus.New[events.Event](8)
	defer bus.Close()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	StartErrorReporter(ctx, bus, rec)

	failed := store.NewRecord(prediction.Waste, nil, prediction.Failure(errors.New("unseen label \"Atlantis\"")))
	ok := store.NewRecord(prediction.Water, nil, prediction.Result{Status: prediction.StatusSuccess})
	bus.Publish(events.PredictionEvent{Record: ok})
	bus.Publish(events.PredictionEvent{Record: failed})
	bus.Publish(events.AvailabilityEvent{Domain: prediction.Air, Available: true})
	bus.Publish(events.AvailabilityEvent{Domain: prediction.Traffic, Err: errors.New("missing artifact")})

	require.Eventually(t, func() bool { return rec.count() == 2 }, time.Second, 10*time.Millisecond)
	rec.mu.Lock()
	defer rec.mu.Unlock()
	assert.Contains(t, rec.errs[0].Error(), "Atlantis")
	assert.Equal(t, "waste", rec.tags[0]["domain"])
	assert.Equal(t, failed.ID, rec.tags[0]["record_id"])
	assert.Equal(t, "load", rec.tags[1]["kind"])
}
