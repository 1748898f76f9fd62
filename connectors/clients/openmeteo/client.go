package openmeteo

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/kilianp07/evroute/connectors"
	"github.com/kilianp07/evroute/core/model"
)

// DefaultBaseURL is the public forecast endpoint.
const DefaultBaseURL = "https://api.open-meteo.com/v1/forecast"

const currentFields = "temperature_2m,relative_humidity_2m,weather_code,wind_speed_10m"

// Client fetches current weather from Open-Meteo.
type Client struct {
	BaseURL  string
	TimeZone string
	HTTP     *http.Client
}

// New returns a client for baseURL. An empty baseURL selects DefaultBaseURL.
func New(baseURL, timeZone string, hc *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{BaseURL: baseURL, TimeZone: timeZone, HTTP: hc}
}

type response struct {
	Current *struct {
		Temperature *float64 `json:"temperature_2m"`
		Humidity    *float64 `json:"relative_humidity_2m"`
		WeatherCode *int     `json:"weather_code"`
		WindSpeed   *float64 `json:"wind_speed_10m"`
	} `json:"current"`
}

// Weather implements the weather provider. Fields missing from the response
// take the default reading's values; a response without a current block is
// an error.
func (c *Client) Weather(ctx context.Context, at model.Coordinate) (model.WeatherReading, error) {
	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(at.Lat, 'f', -1, 64))
	q.Set("longitude", strconv.FormatFloat(at.Lon, 'f', -1, 64))
	q.Set("current", currentFields)
	if c.TimeZone != "" {
		q.Set("timezone", c.TimeZone)
	}
	var resp response
	if err := connectors.GetJSON(ctx, c.HTTP, c.BaseURL+"?"+q.Encode(), &resp); err != nil {
		return model.WeatherReading{}, fmt.Errorf("open-meteo: %w", err)
	}
	if resp.Current == nil {
		return model.WeatherReading{}, fmt.Errorf("open-meteo: response has no current block")
	}
	r := model.DefaultWeather()
	r.Source = model.SourceLive
	cur := resp.Current
	if cur.Temperature != nil {
		r.TemperatureC = *cur.Temperature
	}
	if cur.Humidity != nil {
		r.HumidityPct = *cur.Humidity
	}
	if cur.WindSpeed != nil {
		r.WindSpeedKmh = *cur.WindSpeed
	}
	if cur.WeatherCode != nil {
		r.ConditionCode = *cur.WeatherCode
	}
	return r, nil
}
