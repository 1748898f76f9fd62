package openelevation

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strings"

	"github.com/kilianp07/evroute/connectors"
	"github.com/kilianp07/evroute/core/model"
	"github.com/kilianp07/evroute/internal/spatial"
)

// DefaultBaseURL is the public lookup endpoint.
const DefaultBaseURL = "https://api.open-elevation.com/api/v1/lookup"

// DefaultSamples is the number of points sampled on the straight segment,
// endpoints included.
const DefaultSamples = 11

// Client looks up terrain heights with a single batched request.
type Client struct {
	BaseURL string
	Samples int
	HTTP    *http.Client
}

// New returns a client. Non-positive samples select DefaultSamples.
func New(baseURL string, samples int, hc *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if samples < 2 {
		samples = DefaultSamples
	}
	return &Client{BaseURL: baseURL, Samples: samples, HTTP: hc}
}

type response struct {
	Results []struct {
		Elevation *float64 `json:"elevation"`
	} `json:"results"`
}

// Profile implements the elevation provider. Points are interpolated
// linearly between start and end, not along the road.
func (c *Client) Profile(ctx context.Context, start, end model.Coordinate) (model.ElevationProfile, error) {
	n := c.Samples
	if n < 2 {
		n = DefaultSamples
	}
	locs := make([]string, n)
	for i := range locs {
		p := start.Lerp(end, float64(i)/float64(n-1))
		locs[i] = fmt.Sprintf("%.6f,%.6f", p.Lat, p.Lon)
	}
	u := c.BaseURL + "?locations=" + url.QueryEscape(strings.Join(locs, "|"))

	var resp response
	if err := connectors.GetJSON(ctx, c.HTTP, u, &resp); err != nil {
		return model.ElevationProfile{}, fmt.Errorf("open-elevation: %w", err)
	}
	heights := make([]float64, 0, len(resp.Results))
	for _, r := range resp.Results {
		if r.Elevation == nil {
			return model.ElevationProfile{}, fmt.Errorf("open-elevation: result without elevation")
		}
		heights = append(heights, *r.Elevation)
	}
	if len(heights) == 0 {
		return model.ElevationProfile{}, fmt.Errorf("open-elevation: empty result set")
	}
	return Summarise(heights, spatial.DistanceMeters(start, end)), nil
}

// Summarise computes gain, loss, extremes and the average slope of a height
// series measured over horizontalM meters.
func Summarise(heights []float64, horizontalM float64) model.ElevationProfile {
	p := model.ElevationProfile{
		MinM:    math.Inf(1),
		MaxM:    math.Inf(-1),
		Samples: len(heights),
		Source:  model.SourceLive,
	}
	for i, h := range heights {
		p.MinM = math.Min(p.MinM, h)
		p.MaxM = math.Max(p.MaxM, h)
		if i == 0 {
			continue
		}
		d := h - heights[i-1]
		if d > 0 {
			p.GainM += d
		} else {
			p.LossM -= d
		}
	}
	if horizontalM > 0 {
		p.AvgSlopePct = (p.MaxM - p.MinM) / horizontalM * 100
	}
	p.GainM = round2(p.GainM)
	p.LossM = round2(p.LossM)
	p.MinM = round2(p.MinM)
	p.MaxM = round2(p.MaxM)
	p.AvgSlopePct = round2(p.AvgSlopePct)
	return p
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
