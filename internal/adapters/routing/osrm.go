package routing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"nearby-pro-service/internal/domain"
	"nearby-pro-service/internal/platform/httpx"
	"nearby-pro-service/internal/platform/obs"
	"net/http"
	"strings"
)

type routeResponse struct {
	Code   string `json:"code"`
	Routes []struct {
		Geometry struct {
			Coordinates [][]float64 `json:"coordinates"`
		} `json:"geometry"`
	} `json:"routes"`
}

// OSRMRouter implements ports.RouteProvider using the OSRM route service
// with the "driving" profile and full GeoJSON geometry.
type OSRMRouter struct {
	client  *httpx.Client
	baseURL string
	profile string
}

func NewOSRMRouter(baseURL string, client *httpx.Client) (*OSRMRouter, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("osrm base url is empty")
	}
	if client == nil {
		return nil, errors.New("osrm http client is nil")
	}

	return &OSRMRouter{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		profile: "driving",
	}, nil
}

func (o *OSRMRouter) Route(
	ctx context.Context,
	origin domain.Coordinate,
	destination domain.Coordinate,
) (_ domain.RoutePath, err error) {
	defer obs.Time(ctx, "osrm.Route")(&err)

	// OSRM takes lon,lat;lon,lat.
	endpoint := fmt.Sprintf(
		"%s/route/v1/%s/%f,%f;%f,%f?overview=full&geometries=geojson",
		o.baseURL, o.profile,
		origin.Lng, origin.Lat,
		destination.Lng, destination.Lat,
	)

	resp, err := o.client.DoWithRetry(ctx, func() (*http.Request, error) {
		return o.client.NewRequest(ctx, http.MethodGet, endpoint)
	})
	if err != nil {
		return nil, fmt.Errorf("osrm route request: %w", err)
	}
	defer resp.Body.Close()

	var decoded routeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode osrm response: %w", err)
	}

	if decoded.Code != "Ok" || len(decoded.Routes) == 0 {
		return nil, fmt.Errorf("osrm code=%q routes=%d: %w", decoded.Code, len(decoded.Routes), domain.ErrNoRoute)
	}

	coords := decoded.Routes[0].Geometry.Coordinates
	path := make(domain.RoutePath, 0, len(coords))
	for i, pair := range coords {
		if len(pair) < 2 {
			return nil, fmt.Errorf("osrm geometry point %d has %d values", i, len(pair))
		}
		c := domain.Coordinate{Lat: pair[1], Lng: pair[0]}
		if !c.Valid() {
			return nil, fmt.Errorf("osrm geometry point %d out of range: %v", i, pair)
		}
		path = append(path, c)
	}

	if len(path) == 0 {
		return nil, fmt.Errorf("osrm returned empty geometry: %w", domain.ErrNoRoute)
	}

	return path, nil
}
