package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	GeocodeRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "locator_geocode_requests_total",
		Help: "Geocoding provider requests by outcome",
	}, []string{"outcome"})
	GeocodeDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "locator_geocode_duration_ms",
		Help:    "Geocoding provider call duration in milliseconds",
		Buckets: []float64{10, 50, 100, 200, 500, 1000, 2000, 5000},
	})
	GeocodeCacheHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "locator_geocode_cache_hits_total",
		Help: "Geocode cache hits",
	})
	GeocodeCacheMissesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "locator_geocode_cache_misses_total",
		Help: "Geocode cache misses",
	})
	FallbackTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "locator_fallback_coordinates_total",
		Help: "Addresses assigned a jittered fallback coordinate",
	})
	SuggestLookupsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "locator_suggest_lookups_total",
		Help: "Debounced suggestion lookups issued",
	})
	SuggestStaleTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "locator_suggest_stale_total",
		Help: "Suggestion responses discarded because a newer query was issued",
	})
	RouteFetchesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "locator_route_fetches_total",
		Help: "Route fetches by outcome",
	}, []string{"outcome"})
	RouteDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "locator_route_duration_ms",
		Help:    "Routing provider call duration in milliseconds",
		Buckets: []float64{10, 50, 100, 200, 500, 1000, 2000, 5000},
	})
	ActiveSessions = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "locator_active_sessions",
		Help: "Sessions currently held by the registry",
	})
)

func init() {
	prometheus.MustRegister(GeocodeRequestsTotal)
	prometheus.MustRegister(GeocodeDurationMs)
	prometheus.MustRegister(GeocodeCacheHitsTotal)
	prometheus.MustRegister(GeocodeCacheMissesTotal)
	prometheus.MustRegister(FallbackTotal)
	prometheus.MustRegister(SuggestLookupsTotal)
	prometheus.MustRegister(SuggestStaleTotal)
	prometheus.MustRegister(RouteFetchesTotal)
	prometheus.MustRegister(RouteDurationMs)
	prometheus.MustRegister(ActiveSessions)
}

// Handler exposes the registered collectors for scraping.
func Handler() http.Handler { return promhttp.Handler() }
