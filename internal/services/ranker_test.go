package services

import (
	"math/rand/v2"
	"nearby-pro-service/internal/domain"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resolvedAt(id string, c domain.Coordinate) domain.ResolvedProfessional {
	return domain.ResolvedProfessional{
		Professional: domain.Professional{ID: id, Name: id},
		Coordinate:   c,
		Source:       domain.SourceGeocoded,
	}
}

func TestRankOrdersByDistance(t *testing.T) {
	resolved := []domain.ResolvedProfessional{
		resolvedAt("p1", north(ahmedabad, 1.2)),
		resolvedAt("p2", north(ahmedabad, 0.4)),
		resolvedAt("p3", north(ahmedabad, 3.0)),
	}

	ranked := Rank(ahmedabad, resolved)
	require.Len(t, ranked, 3)

	got := []float64{ranked[0].DistanceKm, ranked[1].DistanceKm, ranked[2].DistanceKm}
	assert.Equal(t, []float64{0.4, 1.2, 3.0}, got)
	assert.Equal(t, []string{"p2", "p1", "p3"}, []string{ranked[0].ID, ranked[1].ID, ranked[2].ID})
	assert.Equal(t, []int{1, 2, 3}, []int{ranked[0].Rank, ranked[1].Rank, ranked[2].Rank})
}

func TestRankIsStableForEqualDistances(t *testing.T) {
	same := north(ahmedabad, 2)
	resolved := []domain.ResolvedProfessional{
		resolvedAt("a", same),
		resolvedAt("near", north(ahmedabad, 0.5)),
		resolvedAt("b", same),
		resolvedAt("c", same),
	}

	ranked := Rank(ahmedabad, resolved)
	ids := make([]string, len(ranked))
	for i, r := range ranked {
		ids[i] = r.ID
	}
	assert.Equal(t, []string{"near", "a", "b", "c"}, ids)
}

func TestRankSortedForRandomInput(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	resolved := make([]domain.ResolvedProfessional, 50)
	for i := range resolved {
		resolved[i] = resolvedAt(string(rune('A'+i%26)), domain.Coordinate{
			Lat: ahmedabad.Lat + (rng.Float64()-0.5)/5,
			Lng: ahmedabad.Lng + (rng.Float64()-0.5)/5,
		})
	}
	before := cloneResolved(resolved)

	ranked := Rank(ahmedabad, resolved)
	require.Len(t, ranked, len(resolved))
	for i := 1; i < len(ranked); i++ {
		assert.LessOrEqual(t, ranked[i-1].DistanceKm, ranked[i].DistanceKm)
	}
	assert.Equal(t, before, resolved)
}

func TestRankEmpty(t *testing.T) {
	ranked := Rank(ahmedabad, nil)
	assert.NotNil(t, ranked)
	assert.Empty(t, ranked)
}
