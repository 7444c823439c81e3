package models

import "sauna/pkg/geo"

// SearchTrigger asks the worker to run one interaction for a session.
type SearchTrigger struct {
	ID           string      `json:"id"`
	Session      string      `json:"session"`
	Kind         string      `json:"kind"`
	Center       geo.Point   `json:"center"`
	Bounds       *geo.Bounds `json:"bounds,omitempty"`
	Zoom         *int        `json:"zoom,omitempty"`
	Locale       string      `json:"locale,omitempty"`
	UserLocation *geo.Point  `json:"userLocation,omitempty"`
}

// SearchResult is the visible list produced for a trigger.
type SearchResult struct {
	TriggerID    string    `json:"triggerId"`
	Session      string    `json:"session"`
	Generation   uint64    `json:"generation"`
	Center       geo.Point `json:"center"`
	RadiusMeters float64   `json:"radiusMeters"`
	Saunas       []Sauna   `json:"saunas"`
}
