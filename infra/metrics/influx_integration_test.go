//go:build integration

package metrics

import (
	"context"
	"fmt"
	"testing"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	coremetrics "github.com/kilianp07/citypredict/core/metrics"
	"github.com/kilianp07/citypredict/core/prediction"
)

const (
	itOrg    = "citypredict"
	itBucket = "predictions"
	itToken  = "citypredict-test-token"
)

func startInflux(t *testing.T) string {
	t.Helper()
	ctx := context.Background()
	cont, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: tc.ContainerRequest{
			Image:        "influxdb:2.7",
			ExposedPorts: []string{"8086/tcp"},
			Env: map[string]string{
				"DOCKER_INFLUXDB_INIT_MODE":        "setup",
				"DOCKER_INFLUXDB_INIT_USERNAME":    "admin",
				"DOCKER_INFLUXDB_INIT_PASSWORD":    "citypredict-admin",
				"DOCKER_INFLUXDB_INIT_ORG":         itOrg,
				"DOCKER_INFLUXDB_INIT_BUCKET":      itBucket,
				"DOCKER_INFLUXDB_INIT_ADMIN_TOKEN": itToken,
			},
			WaitingFor: wait.ForHTTP("/health").WithPort("8086/tcp").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Skipf("unable to start influx container: %v", err)
	}
	t.Cleanup(func() { _ = cont.Terminate(context.Background()) })

	host, err := cont.Host(ctx)
	require.NoError(t, err)
	port, err := cont.MappedPort(ctx, "8086")
	require.NoError(t, err)
	return fmt.Sprintf("http://%s:%s", host, port.Port())
}

func TestIntegration_InfluxSink(t *testing.T) {
	url := startInflux(t)

	sink := NewInfluxSinkWithFallback(url, itToken, itOrg, itBucket)
	influx, ok := sink.(*InfluxSink)
	require.True(t, ok, "health check should pass")
	defer influx.Close()

	count := 750
	res := prediction.Result{Status: prediction.StatusSuccess, PredictedVehicleCount: &count, CongestionLevel: "High"}
	ev := coremetrics.NewPredictionEvent(prediction.Traffic, res, 3*time.Millisecond, time.Now())
	require.NoError(t, influx.RecordPrediction(ev))
	require.NoError(t, influx.RecordAvailability(prediction.Water, false))

	client := influxdb2.NewClient(url, itToken)
	defer client.Close()
	flux := fmt.Sprintf(`from(bucket: %q)
  |> range(start: -1h)
  |> filter(fn: (r) => r._measurement == "prediction" and r._field == "value" and r.domain == "traffic")`, itBucket)

	require.Eventually(t, func() bool {
		result, err := client.QueryAPI(itOrg).Query(context.Background(), flux)
		if err != nil {
			return false
		}
		defer result.Close()
		for result.Next() {
			assert.Equal(t, 750.0, result.Record().Value())
			assert.Equal(t, "High", result.Record().ValueByKey("label"))
			return true
		}
		return false
	}, 10*time.Second, 250*time.Millisecond)
}
