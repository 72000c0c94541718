package realtime

import (
	"math"
	"strings"
	"time"

	"rievent_server/models"
)

// Derive runs the filter pipeline: a pure function from the mirrored event
// list and the current criteria to the displayed list. All active predicates
// are ANDed; order is stable with respect to the input order.
func Derive(events []models.Event, criteria models.FilterCriteria) []models.Event {
	out := make([]models.Event, 0, len(events))
	for _, event := range events {
		if !matchesText(event, criteria) {
			continue
		}
		if !matchesCategory(event, criteria) {
			continue
		}
		if !matchesDate(event, criteria) {
			continue
		}
		if !matchesDistance(event, criteria) {
			continue
		}
		out = append(out, event)
	}
	return out
}

// matchesText is a case-insensitive substring match against the event name,
// or against the owner's display name when searching by user.
func matchesText(event models.Event, criteria models.FilterCriteria) bool {
	if criteria.Text == "" {
		return true
	}
	needle := strings.ToLower(criteria.Text)
	if criteria.SearchByUser {
		return strings.Contains(strings.ToLower(event.OwnerName), needle)
	}
	return strings.Contains(strings.ToLower(event.Name), needle)
}

func matchesCategory(event models.Event, criteria models.FilterCriteria) bool {
	if criteria.Category == "" || strings.EqualFold(criteria.Category, models.CategoryAny) {
		return true
	}
	return strings.EqualFold(event.Category, criteria.Category)
}

// matchesDate checks whether the criteria date falls within the event's
// calendar-date window [start, end ?? start], inclusive, in local time. An
// event with no start time never matches a concrete date filter.
func matchesDate(event models.Event, criteria models.FilterCriteria) bool {
	if criteria.Date == nil {
		return true
	}
	if event.StartsAt == nil {
		return false
	}
	day := truncateToDay(*criteria.Date)
	start := truncateToDay(*event.StartsAt)
	end := start
	if event.EndsAt != nil {
		end = truncateToDay(*event.EndsAt)
	}
	return !day.Before(start) && !day.After(end)
}

func matchesDistance(event models.Event, criteria models.FilterCriteria) bool {
	if criteria.UserLocation == nil || criteria.RadiusKm == models.RadiusAny {
		return true
	}
	if event.Location == nil {
		return false
	}
	return HaversineKm(*criteria.UserLocation, *event.Location) <= criteria.RadiusKm
}

func truncateToDay(t time.Time) time.Time {
	year, month, day := t.In(time.Local).Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.Local)
}

const earthRadiusKm = 6371.0

// HaversineKm returns the great-circle distance between two points in
// kilometres.
func HaversineKm(a, b models.GeoPoint) float64 {
	latA := a.Latitude * math.Pi / 180
	latB := b.Latitude * math.Pi / 180
	dLat := (b.Latitude - a.Latitude) * math.Pi / 180
	dLon := (b.Longitude - a.Longitude) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(latA)*math.Cos(latB)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(h))
}
