package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/snap-point/fieldtrack/config"
	"github.com/snap-point/fieldtrack/geo"
)

var ErrNoRoute = errors.New("no route found")

// Router returns a road-following line between two points.
type Router interface {
	Route(ctx context.Context, from, to geo.GeoPoint) (orb.LineString, error)
}

// OSRMClient talks to an OSRM-compatible /route/v1 endpoint.
type OSRMClient struct {
	BaseURL    string
	Profile    string
	Timeout    time.Duration
	HTTPClient *http.Client
}

func NewOSRMClient(cfg config.RoutingConfig) *OSRMClient {
	return &OSRMClient{
		BaseURL:    cfg.BaseURL,
		Profile:    cfg.Profile,
		Timeout:    cfg.Timeout,
		HTTPClient: &http.Client{},
	}
}

type osrmResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Routes  []struct {
		Distance float64           `json:"distance"`
		Geometry *geojson.Geometry `json:"geometry"`
	} `json:"routes"`
}

func (o *OSRMClient) Route(ctx context.Context, from, to geo.GeoPoint) (orb.LineString, error) {
	if o.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.Timeout)
		defer cancel()
	}

	profile := o.Profile
	if profile == "" {
		profile = "driving"
	}
	url := fmt.Sprintf("%s/route/v1/%s/%.6f,%.6f;%.6f,%.6f?overview=full&geometries=geojson",
		o.BaseURL, profile, from.Longitude, from.Latitude, to.Longitude, to.Latitude)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := o.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("routing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("routing service returned %d", resp.StatusCode)
	}

	var body osrmResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode route: %w", err)
	}
	if body.Code != "Ok" || len(body.Routes) == 0 || body.Routes[0].Geometry == nil {
		return nil, fmt.Errorf("%w: %s %s", ErrNoRoute, body.Code, body.Message)
	}

	line, ok := body.Routes[0].Geometry.Geometry().(orb.LineString)
	if !ok || len(line) < 2 {
		return nil, fmt.Errorf("%w: unexpected geometry", ErrNoRoute)
	}
	return line, nil
}
