package nominatim

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/kilianp07/evroute/connectors"
	"github.com/kilianp07/evroute/core/model"
	"github.com/kilianp07/evroute/core/trip"
)

// DefaultBaseURL is the OpenStreetMap search endpoint.
const DefaultBaseURL = "https://nominatim.openstreetmap.org/search"

// Client resolves place names with Nominatim.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func New(baseURL string, hc *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{BaseURL: baseURL, HTTP: hc}
}

type place struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// Geocode returns the coordinate of the best match for q.
func (c *Client) Geocode(ctx context.Context, q string) (model.Coordinate, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return model.Coordinate{}, fmt.Errorf("%w: empty query", trip.ErrLocationNotFound)
	}
	v := url.Values{}
	v.Set("q", q)
	v.Set("format", "json")
	v.Set("limit", "1")
	var places []place
	if err := connectors.GetJSON(ctx, c.HTTP, c.BaseURL+"?"+v.Encode(), &places); err != nil {
		return model.Coordinate{}, fmt.Errorf("nominatim: %w", err)
	}
	if len(places) == 0 {
		return model.Coordinate{}, fmt.Errorf("%w: %s", trip.ErrLocationNotFound, q)
	}
	lat, err := strconv.ParseFloat(places[0].Lat, 64)
	if err != nil {
		return model.Coordinate{}, fmt.Errorf("nominatim: bad latitude %q: %w", places[0].Lat, err)
	}
	lon, err := strconv.ParseFloat(places[0].Lon, 64)
	if err != nil {
		return model.Coordinate{}, fmt.Errorf("nominatim: bad longitude %q: %w", places[0].Lon, err)
	}
	return model.Coordinate{Lat: lat, Lon: lon}, nil
}
