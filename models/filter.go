package models

import "time"

// FilterCriteria is the pure input to the filter pipeline. The zero value
// matches everything.
type FilterCriteria struct {
	Text         string     `json:"text"`
	SearchByUser bool       `json:"searchByUser"`
	Category     string     `json:"category"`
	Date         *time.Time `json:"date,omitempty"`
	RadiusKm     float64    `json:"radiusKm"`
	UserLocation *GeoPoint  `json:"userLocation,omitempty"`
}

// PushPayload is the opaque notification payload delivered on a cold-start or
// deep-link path.
type PushPayload struct {
	Type    string `json:"type"`
	EventID string `json:"eventId,omitempty"`
	ChatID  string `json:"chatId,omitempty"`
}

// NavigationTarget is what the navigation layer consumes from a resolved
// deep link.
type NavigationTarget struct {
	Screen  string `json:"screen"`
	EventID string `json:"eventId,omitempty"`
	ChatID  string `json:"chatId,omitempty"`
}
