package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coremetrics "github.com/kilianp07/citypredict/core/metrics"
	"github.com/kilianp07/citypredict/core/prediction"
)

type bodyRecorder struct {
	mu     sync.Mutex
	bodies []string
}

func (b *bodyRecorder) server(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		b.mu.Lock()
		b.bodies = append(b.bodies, strings.TrimSpace(string(data)))
		b.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestInfluxSink_RecordPrediction(t *testing.T) {
	rec := &bodyRecorder{}
	srv := rec.server(t)

	sink := NewInfluxSink(srv.URL, "token", "org", "bucket")
	defer sink.Close()
	now := time.Now()
	v := 82.5
	ev := coremetrics.PredictionEvent{
		Domain:  prediction.Waste,
		Status:  prediction.StatusSuccess,
		Latency: 1500 * time.Microsecond,
		Value:   &v,
		Label:   "Yes",
		Time:    now,
	}
	require.NoError(t, sink.RecordPrediction(ev))

	p := write.NewPointWithMeasurement("prediction").
		AddTag("domain", "waste").
		AddTag("status", "success").
		AddField("latency_ms", 1.5).
		AddTag("label", "Yes").
		AddField("value", 82.5).
		SetTime(now)
	expected := strings.TrimSpace(write.PointToLineProtocol(p, time.Nanosecond))
	require.Len(t, rec.bodies, 1)
	assert.Equal(t, expected, rec.bodies[0])
}

func TestInfluxSink_RecordAvailability(t *testing.T) {
	rec := &bodyRecorder{}
	srv := rec.server(t)

	sink := NewInfluxSink(srv.URL+"/api/v2/write", "token", "org", "bucket")
	defer sink.Close()
	require.NoError(t, sink.RecordAvailability(prediction.Water, false))
	require.Len(t, rec.bodies, 1)
	assert.Contains(t, rec.bodies[0], "model_availability,domain=water available=false")
}

func TestNewInfluxSinkWithFallback(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			called = true
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
	}))
	defer srv.Close()

	sink := NewInfluxSinkWithFallback(srv.URL+"/api/v2/write", "tok", "org", "bucket")
	assert.IsType(t, coremetrics.NopSink{}, sink)
	assert.True(t, called, "health endpoint not called")
}
