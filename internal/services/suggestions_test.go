package services

import (
	"context"
	"errors"
	"fmt"
	"nearby-pro-service/internal/adapters/geocoding"
	"nearby-pro-service/internal/domain"
	"nearby-pro-service/internal/ports"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSuggestionConfig() SuggestionConfig {
	return SuggestionConfig{
		CountryCodes:  "in",
		MinChars:      3,
		Debounce:      60 * time.Millisecond,
		Limit:         5,
		LookupTimeout: time.Second,
	}
}

func results(prefix string, n int) []ports.GeocodeResult {
	out := make([]ports.GeocodeResult, n)
	for i := range out {
		out[i] = ports.GeocodeResult{
			Label:      fmt.Sprintf("%s %d", prefix, i+1),
			Coordinate: north(ahmedabad, float64(i)),
		}
	}
	return out
}

func TestSuggestionsShortInputNeverQueries(t *testing.T) {
	g := geocoding.NewMockGeocoder(nil)
	s := NewSuggestionSearcher(g, testSuggestionConfig(), nil)
	defer s.Close()

	for _, q := range []string{"", "a", "ab", "  ab  "} {
		s.Input(q)
	}
	time.Sleep(150 * time.Millisecond)

	assert.Empty(t, g.Calls())
	assert.Empty(t, s.Suggestions())
}

func TestSuggestionsDebounceCoalescesBurst(t *testing.T) {
	g := geocoding.NewMockGeocoder([]geocoding.MockPlace{{Query: "law garden", Results: results("law garden", 7)}})
	s := NewSuggestionSearcher(g, testSuggestionConfig(), nil)
	defer s.Close()

	// Every keystroke qualifies for a lookup on its own.
	for _, q := range []string{"law", "law g", "law gar", "law garden"} {
		s.Input(q)
	}

	require.Eventually(t, func() bool { return len(s.Suggestions()) > 0 }, time.Second, 5*time.Millisecond)
	time.Sleep(100 * time.Millisecond)

	calls := g.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "law garden", calls[0].Text)
	assert.Equal(t, 5, calls[0].Limit)
	assert.Equal(t, "in", calls[0].CountryCodes)
	assert.True(t, calls[0].AddressDetails)
	assert.Len(t, s.Suggestions(), 5)
}

func TestSuggestionsWaitForQuietPeriod(t *testing.T) {
	g := geocoding.NewMockGeocoder(nil)
	s := NewSuggestionSearcher(g, testSuggestionConfig(), nil)
	defer s.Close()

	s.Input("law garden")
	time.Sleep(20 * time.Millisecond)
	assert.Empty(t, g.Calls(), "lookup fired before the input settled")

	require.Eventually(t, func() bool { return len(g.Calls()) == 1 }, time.Second, 5*time.Millisecond)
}

func TestSuggestionsSettledInputsQueryEach(t *testing.T) {
	g := geocoding.NewMockGeocoder(nil)
	s := NewSuggestionSearcher(g, testSuggestionConfig(), nil)
	defer s.Close()

	s.Input("law")
	require.Eventually(t, func() bool { return len(g.Calls()) == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(100 * time.Millisecond)

	s.Input("law garden")
	require.Eventually(t, func() bool { return len(g.Calls()) == 2 }, time.Second, 5*time.Millisecond)

	calls := g.Calls()
	assert.Equal(t, "law", calls[0].Text)
	assert.Equal(t, "law garden", calls[1].Text)
}

func TestSuggestionsShortInputClearsList(t *testing.T) {
	g := geocoding.NewMockGeocoder([]geocoding.MockPlace{{Query: "law garden", Results: results("law", 2)}})
	s := NewSuggestionSearcher(g, testSuggestionConfig(), nil)
	defer s.Close()

	s.Input("law garden")
	require.Eventually(t, func() bool { return len(s.Suggestions()) == 2 }, time.Second, 5*time.Millisecond)

	s.Input("la")
	assert.Empty(t, s.Suggestions())
}

func TestSuggestionsErrorClearsList(t *testing.T) {
	g := geocoding.NewMockGeocoder([]geocoding.MockPlace{
		{Query: "good", Results: results("good", 3)},
		{Query: "boom", Err: errors.New("provider down")},
	})
	s := NewSuggestionSearcher(g, testSuggestionConfig(), nil)
	defer s.Close()

	s.Input("good")
	require.Eventually(t, func() bool { return len(s.Suggestions()) == 3 }, time.Second, 5*time.Millisecond)

	s.Input("boom")
	require.Eventually(t, func() bool { return len(g.Calls()) == 2 }, time.Second, 5*time.Millisecond)
	require.Eventually(t, func() bool { return len(s.Suggestions()) == 0 }, time.Second, 5*time.Millisecond)
}

// gatedGeocoder holds each lookup until its query is released and ignores
// cancellation, so responses can be delivered in any order.
type gatedGeocoder struct {
	mu      sync.Mutex
	gates   map[string]chan struct{}
	results map[string][]ports.GeocodeResult
	started chan string
}

func newGatedGeocoder() *gatedGeocoder {
	return &gatedGeocoder{
		gates:   map[string]chan struct{}{},
		results: map[string][]ports.GeocodeResult{},
		started: make(chan string, 10),
	}
}

func (g *gatedGeocoder) add(q string, r []ports.GeocodeResult) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.gates[q] = make(chan struct{})
	g.results[q] = r
}

func (g *gatedGeocoder) release(q string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	close(g.gates[q])
}

func (g *gatedGeocoder) Search(ctx context.Context, q ports.GeocodeQuery) ([]ports.GeocodeResult, error) {
	g.mu.Lock()
	gate := g.gates[q.Text]
	res := g.results[q.Text]
	g.mu.Unlock()

	g.started <- q.Text
	<-gate
	return res, nil
}

func waitStarted(t *testing.T, g *gatedGeocoder, want string) {
	t.Helper()
	select {
	case got := <-g.started:
		require.Equal(t, want, got)
	case <-time.After(time.Second):
		t.Fatalf("lookup for %q never started", want)
	}
}

func TestSuggestionsStaleResponseDiscarded(t *testing.T) {
	g := newGatedGeocoder()
	g.add("old query", results("old", 2))
	g.add("new query", results("new", 3))

	var (
		mu      sync.Mutex
		applied [][]domain.Suggestion
	)
	s := NewSuggestionSearcher(g, testSuggestionConfig(), nil)
	s.OnUpdate(func(list []domain.Suggestion) {
		mu.Lock()
		applied = append(applied, list)
		mu.Unlock()
	})
	defer s.Close()

	s.Input("old query")
	waitStarted(t, g, "old query")

	s.Input("new query")
	waitStarted(t, g, "new query")

	g.release("new query")
	require.Eventually(t, func() bool { return len(s.Suggestions()) == 3 }, time.Second, 5*time.Millisecond)

	g.release("old query")
	time.Sleep(50 * time.Millisecond)

	got := s.Suggestions()
	require.Len(t, got, 3)
	assert.Equal(t, "new 1", got[0].Label)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, applied, 1)
	assert.Equal(t, "new 1", applied[0][0].Label)
}

func TestSuggestionsCloseStopsPendingLookup(t *testing.T) {
	g := geocoding.NewMockGeocoder(nil)
	s := NewSuggestionSearcher(g, testSuggestionConfig(), nil)

	s.Input("pending")
	s.Close()
	s.Input("after close")
	time.Sleep(150 * time.Millisecond)

	assert.Empty(t, g.Calls())
}
