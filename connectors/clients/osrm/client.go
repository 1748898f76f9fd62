package osrm

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/kilianp07/evroute/connectors"
	"github.com/kilianp07/evroute/core/model"
	"github.com/kilianp07/evroute/core/trip"
)

// DefaultBaseURL is the public OSRM demo server.
const DefaultBaseURL = "http://router.project-osrm.org"

// Client queries the OSRM route service with the driving profile.
type Client struct {
	BaseURL string
	Profile string
	HTTP    *http.Client
}

func New(baseURL string, hc *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{BaseURL: strings.TrimSuffix(baseURL, "/"), Profile: "driving", HTTP: hc}
}

type response struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Routes  []struct {
		Distance float64 `json:"distance"`
		Duration float64 `json:"duration"`
		Geometry struct {
			Coordinates [][]float64 `json:"coordinates"`
		} `json:"geometry"`
	} `json:"routes"`
}

// Route returns the first route OSRM proposes. Distance is converted to km
// and duration to hours; the GeoJSON geometry is [lon, lat] ordered.
func (c *Client) Route(ctx context.Context, start, end model.Coordinate) (model.Route, error) {
	u := fmt.Sprintf("%s/route/v1/%s/%f,%f;%f,%f?overview=full&geometries=geojson",
		c.BaseURL, c.Profile, start.Lon, start.Lat, end.Lon, end.Lat)
	var resp response
	if err := connectors.GetJSON(ctx, c.HTTP, u, &resp); err != nil {
		return model.Route{}, fmt.Errorf("osrm: %w", err)
	}
	if resp.Code != "" && resp.Code != "Ok" {
		return model.Route{}, fmt.Errorf("%w: osrm %s %s", trip.ErrNoRoute, resp.Code, resp.Message)
	}
	if len(resp.Routes) == 0 {
		return model.Route{}, fmt.Errorf("%w: osrm returned no routes", trip.ErrNoRoute)
	}
	r := resp.Routes[0]
	geom := make([]model.Coordinate, 0, len(r.Geometry.Coordinates))
	for _, p := range r.Geometry.Coordinates {
		if len(p) < 2 {
			continue
		}
		geom = append(geom, model.Coordinate{Lat: p[1], Lon: p[0]})
	}
	return model.Route{
		Start:      start,
		End:        end,
		DistanceKm: r.Distance / 1000,
		DurationH:  r.Duration / 3600,
		Geometry:   geom,
	}, nil
}
