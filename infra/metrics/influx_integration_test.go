package metrics

import (
	"context"
	"fmt"
	"testing"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/stretchr/testify/require"

	coremetrics "github.com/kilianp07/evroute/core/metrics"
	"github.com/kilianp07/evroute/internal/testutil"
)

func TestInfluxSinkIntegration(t *testing.T) {
	testutil.RequireDocker(t)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	setup, cleanup, err := testutil.StartInflux(ctx)
	require.NoError(t, err)
	defer cleanup()

	sink := NewInfluxSinkWithFallback(setup.URL, setup.Token, setup.Org, setup.Bucket)
	influx, ok := sink.(*InfluxSink)
	require.True(t, ok, "expected a live influx sink, got %T", sink)
	defer influx.Close()

	now := time.Now()
	require.NoError(t, influx.RecordPlan(coremetrics.PlanRecord{
		PlanID: "it-1", Vehicle: "Tata Nexon EV", DriveMode: "Normal",
		DistanceKm: 145, BaseKWh: 20, FinalKWh: 24.75, Multiplier: 1.2375, Time: now,
	}))
	require.NoError(t, influx.RecordProviderCall(coremetrics.ProviderCall{
		Provider: "weather", Latency: 120 * time.Millisecond, Time: now,
	}))

	client := influxdb2.NewClient(setup.URL, setup.Token)
	defer client.Close()
	for _, m := range []string{"trip_plan", "provider_call"} {
		flux := fmt.Sprintf(`from(bucket:"%s") |> range(start:-5m) |> filter(fn: (r) => r._measurement == "%s")`, setup.Bucket, m)
		res, err := client.QueryAPI(setup.Org).Query(ctx, flux)
		require.NoError(t, err)
		count := 0
		for res.Next() {
			count++
		}
		require.NoError(t, res.Err())
		_ = res.Close()
		require.NotZero(t, count, "no %s points returned", m)
	}
}
