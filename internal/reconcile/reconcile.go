package reconcile

import (
	"sauna/internal/models"
	"sauna/internal/normalize"
	"sauna/pkg/places"
)

// Reconciler runs the normalize, dedupe and cross-source merge steps.
type Reconciler struct {
	normalizer *normalize.Normalizer
}

func New(n *normalize.Normalizer) *Reconciler {
	return &Reconciler{normalizer: n}
}

// Manual normalizes and dedupes raw manual records.
func (r *Reconciler) Manual(raw []models.Record) []models.Sauna {
	return Dedupe(r.normalizer.NormalizeAll(raw))
}

// Live normalizes and dedupes raw live places.
func (r *Reconciler) Live(raw []places.Place) []models.Sauna {
	return Dedupe(r.normalizer.Places(raw))
}

// Reconcile turns raw manual records and raw live places into one combined
// list. Unusable records are dropped; it never fails.
func (r *Reconciler) Reconcile(manualRaw []models.Record, liveRaw []places.Place) []models.Sauna {
	return MergeSources(r.Manual(manualRaw), r.Live(liveRaw))
}
