package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeProviders serves both the geocoding and routing endpoints.
func fakeProviders(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/search":
			q := strings.ToLower(r.URL.Query().Get("q"))
			switch {
			case strings.HasPrefix(q, "lal darwaja"):
				_, _ = w.Write([]byte(`[{"lat":"23.0225","lon":"72.5714","display_name":"Lal Darwaja"}]`))
			case strings.HasPrefix(q, "paldi"):
				_, _ = w.Write([]byte(`[{"lat":"23.0261","lon":"72.5714","display_name":"Paldi"}]`))
			default:
				_, _ = w.Write([]byte(`[]`))
			}
		case strings.HasPrefix(r.URL.Path, "/route/v1/driving/"):
			_, _ = w.Write([]byte(`{"code":"Ok","routes":[{"geometry":{"coordinates":[[72.5714,23.0225],[72.5714,23.0261]]}}]}`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func setEnv(t *testing.T, providerURL string) {
	t.Helper()
	roster := filepath.Join(t.TempDir(), "roster.json")
	require.NoError(t, os.WriteFile(roster, []byte(`[
		{"id":"p1","name":"Asha","address":"Paldi"},
		{"id":"p2","name":"Ravi","address":"Unknown Pol"}
	]`), 0o644))

	t.Setenv("ROSTER_PATH", roster)
	t.Setenv("DATABASE_URL", "")
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("GEOCODER_BASE_URL", providerURL)
	t.Setenv("ROUTER_BASE_URL", providerURL)
	t.Setenv("GEOCODER_RPS", "0")
	t.Setenv("BATCH_DELAY", "1ms")
	t.Setenv("SUGGEST_DEBOUNCE", "10ms")
	t.Setenv("FALLBACK_SEED", "5")
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestNearbyPrintsRankingAndRoute(t *testing.T) {
	setEnv(t, fakeProviders(t).URL)

	out, err := run(t, "nearby", "--query", "Lal Darwaja", "--select", "p1")
	require.NoError(t, err)

	assert.Contains(t, out, "reference: Lal Darwaja")
	assert.Contains(t, out, "p1")
	assert.Contains(t, out, "0.4")
	assert.Contains(t, out, "fallback")
	assert.Contains(t, out, "route to p1: 2 points")
}

func TestNearbyLocationNotFound(t *testing.T) {
	setEnv(t, fakeProviders(t).URL)

	_, err := run(t, "nearby", "--query", "Atlantis")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Location not found")
}

func TestSuggestPrintsMatches(t *testing.T) {
	setEnv(t, fakeProviders(t).URL)

	out, err := run(t, "suggest", "Paldi")
	require.NoError(t, err)
	assert.Contains(t, out, "1. Paldi")
}

func TestSuggestRejectsShortInput(t *testing.T) {
	setEnv(t, fakeProviders(t).URL)

	_, err := run(t, "suggest", "pa")
	assert.Error(t, err)
}
