package metrics

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/evroute/core/metrics"
	"github.com/kilianp07/evroute/infra/logger"
)

// InfluxSink writes plan and provider points to an InfluxDB instance using
// the official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback pings the InfluxDB instance and returns a NopSink
// if the health check fails.
func NewInfluxSinkWithFallback(url, token, org, bucket string) coremetrics.MetricsSink {
	sink := NewInfluxSink(url, token, org, bucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordPlan writes one trip_plan point.
func (s *InfluxSink) RecordPlan(rec coremetrics.PlanRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.writeAPI.WritePoint(ctx, planPoint(rec))
}

func planPoint(rec coremetrics.PlanRecord) *write.Point {
	return write.NewPointWithMeasurement("trip_plan").
		AddTag("plan_id", rec.PlanID).
		AddTag("vehicle", rec.Vehicle).
		AddTag("drive_mode", rec.DriveMode).
		AddTag("needs_charging", strconv.FormatBool(rec.NeedsCharging)).
		AddField("distance_km", round3(rec.DistanceKm)).
		AddField("base_kwh", round3(rec.BaseKWh)).
		AddField("final_kwh", round3(rec.FinalKWh)).
		AddField("multiplier", round3(rec.Multiplier)).
		AddField("soc_end", round3(rec.EndSoCPct)).
		AddField("fallbacks", rec.Fallbacks).
		AddField("duration_ms", rec.Duration.Milliseconds()).
		SetTime(rec.Time)
}

// RecordProviderCall writes one provider_call point.
func (s *InfluxSink) RecordProviderCall(call coremetrics.ProviderCall) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("provider_call").
		AddTag("provider", call.Provider).
		AddTag("fallback", strconv.FormatBool(call.Fallback)).
		AddField("latency_ms", call.Latency.Milliseconds())
	if call.Error != "" {
		p.AddField("error", call.Error)
	}
	p.SetTime(call.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// Close releases the client.
func (s *InfluxSink) Close() { s.client.Close() }

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
