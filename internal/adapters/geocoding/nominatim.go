package geocoding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"nearby-pro-service/internal/domain"
	"nearby-pro-service/internal/platform/httpx"
	"nearby-pro-service/internal/platform/metrics"
	"nearby-pro-service/internal/platform/obs"
	"nearby-pro-service/internal/ports"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

type searchResult struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// NominatimGeocoder implements ports.Geocoder against an OSM Nominatim
// compatible /search endpoint.
//
// Requests share one token bucket so that every caller in the process
// (roster resolution, suggestions, primary search) stays under the
// provider's published rate limit. The geocoder is safe for concurrent use.
type NominatimGeocoder struct {
	client  *httpx.Client
	baseURL string
	limiter *rate.Limiter
}

func NewNominatimGeocoder(baseURL string, client *httpx.Client, rps float64, burst int) (*NominatimGeocoder, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("nominatim base url is empty")
	}
	if client == nil {
		return nil, errors.New("nominatim http client is nil")
	}

	limit := rate.Inf
	if rps > 0 {
		limit = rate.Limit(rps)
	}
	if burst < 1 {
		burst = 1
	}

	return &NominatimGeocoder{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		limiter: rate.NewLimiter(limit, burst),
	}, nil
}

func (n *NominatimGeocoder) Search(ctx context.Context, q ports.GeocodeQuery) (_ []ports.GeocodeResult, err error) {
	defer obs.Time(ctx, "nominatim.Search")(&err)

	text := normalize(q.Text)
	if text == "" {
		return nil, errors.New("nominatim search: query text is empty")
	}

	params := url.Values{}
	params.Set("q", text)
	params.Set("format", "jsonv2")
	if q.CountryCodes != "" {
		params.Set("countrycodes", q.CountryCodes)
	}
	limit := q.Limit
	if limit <= 0 {
		limit = 1
	}
	params.Set("limit", strconv.Itoa(limit))
	if q.AddressDetails {
		params.Set("addressdetails", "1")
	}
	endpoint := n.baseURL + "/search?" + params.Encode()

	// Every attempt, retries included, takes a token.
	throttled := false
	t0 := time.Now()
	resp, err := n.client.DoWithRetry(ctx, func() (*http.Request, error) {
		if err := n.limiter.Wait(ctx); err != nil {
			throttled = true
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}
		return n.client.NewRequest(ctx, http.MethodGet, endpoint)
	})
	metrics.GeocodeDurationMs.Observe(float64(time.Since(t0).Milliseconds()))
	if err != nil {
		if throttled {
			metrics.GeocodeRequestsTotal.WithLabelValues("throttled").Inc()
		} else {
			metrics.GeocodeRequestsTotal.WithLabelValues("error").Inc()
		}
		return nil, fmt.Errorf("nominatim search %q: %w", text, err)
	}
	defer resp.Body.Close()

	var decoded []searchResult
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		metrics.GeocodeRequestsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("decode nominatim response: %w", err)
	}

	out := make([]ports.GeocodeResult, 0, len(decoded))
	for _, r := range decoded {
		c, ok := parseCoordinate(r.Lat, r.Lon)
		if !ok {
			continue
		}
		out = append(out, ports.GeocodeResult{Label: r.DisplayName, Coordinate: c})
		if len(out) == limit {
			break
		}
	}

	if len(out) == 0 {
		metrics.GeocodeRequestsTotal.WithLabelValues("empty").Inc()
	} else {
		metrics.GeocodeRequestsTotal.WithLabelValues("ok").Inc()
	}

	return out, nil
}

// Provider coordinates arrive as decimal strings.
func parseCoordinate(lat, lon string) (domain.Coordinate, bool) {
	la, err := strconv.ParseFloat(strings.TrimSpace(lat), 64)
	if err != nil {
		return domain.Coordinate{}, false
	}
	lo, err := strconv.ParseFloat(strings.TrimSpace(lon), 64)
	if err != nil {
		return domain.Coordinate{}, false
	}

	c := domain.Coordinate{Lat: la, Lng: lo}
	return c, c.Valid()
}

// normalize collapses whitespace so equal queries share cache keys.
func normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
