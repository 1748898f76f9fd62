package openmeteo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kilianp07/evroute/core/model"
)

func TestWeather(t *testing.T) {
	var query map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		query = map[string]string{"lat": q.Get("latitude"), "lon": q.Get("longitude"), "current": q.Get("current"), "tz": q.Get("timezone")}
		_, _ = w.Write([]byte(`{"current":{"temperature_2m":6.5,"relative_humidity_2m":85,"weather_code":61,"wind_speed_10m":24}}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "Asia/Kolkata", srv.Client())
	r, err := c.Weather(context.Background(), model.Coordinate{Lat: 12.97, Lon: 77.59})
	if err != nil {
		t.Fatalf("weather: %v", err)
	}
	checks := []struct {
		name string
		got  any
		want any
	}{
		{"temperature", r.TemperatureC, 6.5},
		{"humidity", r.HumidityPct, 85.0},
		{"wind", r.WindSpeedKmh, 24.0},
		{"code", r.ConditionCode, 61},
		{"source", r.Source, model.SourceLive},
		{"lat", query["lat"], "12.97"},
		{"lon", query["lon"], "77.59"},
		{"current", query["current"], currentFields},
		{"tz", query["tz"], "Asia/Kolkata"},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s mismatch: %v", c.name, c.got)
		}
	}
}

func TestWeatherMissingFieldsUseDefaults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"current":{"temperature_2m":3}}`))
	}))
	defer srv.Close()

	r, err := New(srv.URL, "", srv.Client()).Weather(context.Background(), model.Coordinate{})
	if err != nil {
		t.Fatalf("weather: %v", err)
	}
	if r.TemperatureC != 3 || r.HumidityPct != 50 || r.WindSpeedKmh != 0 {
		t.Fatalf("unexpected reading %+v", r)
	}
}

func TestWeatherErrors(t *testing.T) {
	cases := map[string]http.HandlerFunc{
		"status": func(w http.ResponseWriter, r *http.Request) { http.Error(w, "down", http.StatusBadGateway) },
		"malformed": func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"current":`))
		},
		"no current": func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte(`{}`)) },
		"slow": func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(200 * time.Millisecond)
			_, _ = w.Write([]byte(`{"current":{}}`))
		},
	}
	for name, h := range cases {
		srv := httptest.NewServer(h)
		hc := srv.Client()
		hc.Timeout = 50 * time.Millisecond
		if _, err := New(srv.URL, "", hc).Weather(context.Background(), model.Coordinate{}); err == nil {
			t.Errorf("%s: expected error", name)
		}
		srv.Close()
	}
}
