package services

import (
	"cmp"
	"nearby-pro-service/internal/domain"
	"nearby-pro-service/internal/geo"
	"slices"
)

// Rank orders resolved professionals by distance from ref, nearest first.
// Equal distances keep their input (roster) order. The input is not modified.
func Rank(ref domain.Coordinate, resolved []domain.ResolvedProfessional) []domain.RankedProfessional {
	ranked := make([]domain.RankedProfessional, len(resolved))
	for i, rp := range resolved {
		ranked[i] = domain.RankedProfessional{
			ResolvedProfessional: rp,
			DistanceKm:           geo.Distance(ref, rp.Coordinate),
		}
	}

	slices.SortStableFunc(ranked, func(a, b domain.RankedProfessional) int {
		return cmp.Compare(a.DistanceKm, b.DistanceKm)
	})

	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return ranked
}
