package reconcile

import (
	"cmp"
	"slices"

	"sauna/internal/models"
	"sauna/pkg/geo"
)

const (
	// NearbyRadiusMeters bounds the regular selection around a reference point.
	NearbyRadiusMeters = 75000.0

	// MaxVisible caps how many saunas a selection returns.
	MaxVisible = 80
)

// SelectNearby returns up to MaxVisible saunas within NearbyRadiusMeters of
// ref, nearest first. When nothing is in range it returns the nearest
// saunas regardless of distance, so the result is only empty for empty input.
func SelectNearby(saunas []models.Sauna, ref geo.Point) []models.Sauna {
	if len(saunas) == 0 {
		return nil
	}

	type ranked struct {
		sauna    models.Sauna
		distance float64
	}
	byDistance := make([]ranked, len(saunas))
	for i, s := range saunas {
		byDistance[i] = ranked{sauna: s, distance: geo.Distance(ref, s.Location)}
	}
	slices.SortStableFunc(byDistance, func(a, b ranked) int {
		return cmp.Compare(a.distance, b.distance)
	})

	nearby := make([]models.Sauna, 0, min(MaxVisible, len(byDistance)))
	for _, r := range byDistance {
		if r.distance > NearbyRadiusMeters {
			// sorted, nothing further can be in range
			break
		}
		nearby = append(nearby, r.sauna)
		if len(nearby) >= MaxVisible {
			break
		}
	}
	if len(nearby) > 0 {
		return nearby
	}

	for _, r := range byDistance[:min(MaxVisible, len(byDistance))] {
		nearby = append(nearby, r.sauna)
	}
	return nearby
}
