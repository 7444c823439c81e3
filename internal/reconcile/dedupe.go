// Package reconcile combines the manual dataset with live search results into
// one list that names every physical place once, and selects the part of that
// list worth showing around a reference point.
package reconcile

import "sauna/internal/models"

// Dedupe collapses saunas sharing an ID. A later entry replaces an earlier one
// but keeps the position where the ID first appeared.
func Dedupe(saunas []models.Sauna) []models.Sauna {
	index := make(map[string]int, len(saunas))
	out := make([]models.Sauna, 0, len(saunas))
	for _, s := range saunas {
		if i, ok := index[s.ID]; ok {
			out[i] = s
			continue
		}
		index[s.ID] = len(out)
		out = append(out, s)
	}
	return out
}
