package overpass

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"

	"github.com/kilianp07/evroute/connectors"
	"github.com/kilianp07/evroute/core/model"
	"github.com/kilianp07/evroute/internal/spatial"
)

// DefaultBaseURL is the main Overpass interpreter.
const DefaultBaseURL = "http://overpass-api.de/api/interpreter"

const unnamed = "Charging Station"

// Client finds charging stations in OpenStreetMap data.
type Client struct {
	BaseURL string
	Limit   int
	HTTP    *http.Client
}

// New returns a client. limit caps the number of stations returned; zero
// means no cap.
func New(baseURL string, limit int, hc *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{BaseURL: baseURL, Limit: limit, HTTP: hc}
}

type response struct {
	Elements []struct {
		Lat  *float64          `json:"lat"`
		Lon  *float64          `json:"lon"`
		Tags map[string]string `json:"tags"`
	} `json:"elements"`
}

// Query builds the Overpass QL for stations within radiusKm of at.
func Query(at model.Coordinate, radiusKm float64) string {
	return fmt.Sprintf(`[out:json];node["amenity"="charging_station"](around:%.0f,%f,%f);out;`,
		radiusKm*1000, at.Lat, at.Lon)
}

// Nearby returns the stations around at, closest first.
func (c *Client) Nearby(ctx context.Context, at model.Coordinate, radiusKm float64) ([]model.Charger, error) {
	if radiusKm <= 0 {
		return nil, fmt.Errorf("overpass: radius must be positive")
	}
	u := c.BaseURL + "?data=" + url.QueryEscape(Query(at, radiusKm))
	var resp response
	if err := connectors.GetJSON(ctx, c.HTTP, u, &resp); err != nil {
		return nil, fmt.Errorf("overpass: %w", err)
	}
	out := make([]model.Charger, 0, len(resp.Elements))
	for _, e := range resp.Elements {
		if e.Lat == nil || e.Lon == nil {
			continue
		}
		loc := model.Coordinate{Lat: *e.Lat, Lon: *e.Lon}
		name := e.Tags["name"]
		if name == "" {
			name = unnamed
		}
		out = append(out, model.Charger{
			Name:       name,
			Location:   loc,
			DistanceKm: spatial.DistanceKm(at, loc),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].DistanceKm < out[j].DistanceKm })
	if c.Limit > 0 && len(out) > c.Limit {
		out = out[:c.Limit]
	}
	return out, nil
}
