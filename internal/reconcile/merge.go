package reconcile

import (
	"slices"

	"sauna/internal/models"
	"sauna/pkg/geo"
)

// MergeDistanceMeters is the proximity under which a manual and a live record
// are taken to be the same place.
const MergeDistanceMeters = 100.0

// MergeSources combines a manual and a live list. Each manual sauna, in order,
// claims every unclaimed live sauna within MergeDistanceMeters; the claimed
// cluster is folded with MergeCluster. Unclaimed live saunas follow as they
// are. Matching is greedy and depends on input order.
func MergeSources(manual, live []models.Sauna) []models.Sauna {
	manual = Dedupe(manual)
	live = Dedupe(live)

	if len(manual) == 0 {
		return live
	}
	if len(live) == 0 {
		return manual
	}

	claimed := make([]bool, len(live))
	merged := make([]models.Sauna, 0, len(manual)+len(live))

	for _, m := range manual {
		cluster := []models.Sauna{m}
		for i, l := range live {
			if claimed[i] {
				continue
			}
			if geo.Distance(m.Location, l.Location) <= MergeDistanceMeters {
				claimed[i] = true
				cluster = append(cluster, l)
			}
		}
		merged = append(merged, MergeCluster(cluster))
	}

	for i, l := range live {
		if !claimed[i] {
			merged = append(merged, l)
		}
	}

	return Dedupe(merged)
}

// MergeCluster folds saunas believed to be the same place into one. The first
// member supplies identity, location and descriptive fields. Rating and review
// count come from the best-rated member when it has them, and its maps link
// replaces the first member's when non-empty.
//
// Best-rated means the highest review count, then the highest rating; missing
// values rank below any real one. Ties keep cluster order.
func MergeCluster(cluster []models.Sauna) models.Sauna {
	switch len(cluster) {
	case 0:
		return models.Sauna{}
	case 1:
		return cluster[0]
	}

	ranked := slices.Clone(cluster)
	slices.SortStableFunc(ranked, func(a, b models.Sauna) int {
		if c := compareDesc(ratingCountRank(a), ratingCountRank(b)); c != 0 {
			return c
		}
		return compareDesc(ratingRank(a), ratingRank(b))
	})
	best := ranked[0]

	out := cluster[0]
	if best.HasRating() {
		out.Rating = best.Rating
	}
	if best.HasRatingCount() {
		out.UserRatingCount = best.UserRatingCount
	}
	if best.MapsURI != "" {
		out.MapsURI = best.MapsURI
	}
	return out
}

func ratingCountRank(s models.Sauna) float64 {
	if !s.HasRatingCount() {
		return -1
	}
	return float64(*s.UserRatingCount)
}

func ratingRank(s models.Sauna) float64 {
	if !s.HasRating() {
		return -1
	}
	return *s.Rating
}

func compareDesc(a, b float64) int {
	switch {
	case a > b:
		return -1
	case a < b:
		return 1
	}
	return 0
}
