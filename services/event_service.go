package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"rievent_server/models"
	"rievent_server/realtime"
	"rievent_server/store"
)

// EventService owns the event lifecycle and the read path from the mirror to
// the displayed discovery list.
type EventService struct {
	Store  store.Store
	Mirror *realtime.Mirror
}

// CreateEvent writes a new event as a single create operation. The store
// assigns the id; ownership is stamped from the caller and never changes.
func (s *EventService) CreateEvent(ctx context.Context, event models.Event) (models.Event, error) {
	if event.Name == "" || event.OwnerID == "" {
		return models.Event{}, fmt.Errorf("%w: event name and ownerId are required", ErrValidation)
	}
	event.CreatedAt = time.Now().UTC().Format(time.RFC3339)

	eventID, err := s.Store.Create(ctx, models.EventsTable, event)
	if err != nil {
		log.Printf("❌ Failed to create event: %v", err)
		return models.Event{}, fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	event.EventID = eventID

	log.Printf("✅ Event created: %s (%s)", event.Name, eventID)
	return event, nil
}

// GetEvent fetches one event by id.
func (s *EventService) GetEvent(ctx context.Context, eventID string) (models.Event, error) {
	if eventID == "" {
		return models.Event{}, fmt.Errorf("%w: eventId is required", ErrValidation)
	}
	var event models.Event
	err := s.Store.Get(ctx, models.EventsTable, eventID, &event)
	if errors.Is(err, store.ErrNotFound) {
		return models.Event{}, fmt.Errorf("%w: event %s", ErrNotFound, eventID)
	}
	if err != nil {
		return models.Event{}, fmt.Errorf("failed to fetch event: %w", err)
	}
	return event, nil
}

// UpdateEvent replaces an event's mutable fields. Only the owner may mutate.
func (s *EventService) UpdateEvent(ctx context.Context, eventID, callerID string, updated models.Event) error {
	existing, err := s.GetEvent(ctx, eventID)
	if err != nil {
		return err
	}
	if existing.OwnerID != callerID {
		log.Printf("⚠️ User %s attempted to update event %s owned by %s", callerID, eventID, existing.OwnerID)
		return fmt.Errorf("%w: only the owner may update an event", ErrForbidden)
	}

	// Identity and ownership are immutable.
	updated.EventID = existing.EventID
	updated.OwnerID = existing.OwnerID
	updated.OwnerName = existing.OwnerName
	updated.CreatedAt = existing.CreatedAt

	if err := s.Store.Set(ctx, models.EventsTable, eventID, updated); err != nil {
		log.Printf("❌ Failed to update event %s: %v", eventID, err)
		return fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	log.Printf("✅ Event updated: %s", eventID)
	return nil
}

// DeleteEvent removes an event. Only the owner may delete.
func (s *EventService) DeleteEvent(ctx context.Context, eventID, callerID string) error {
	existing, err := s.GetEvent(ctx, eventID)
	if err != nil {
		return err
	}
	if existing.OwnerID != callerID {
		return fmt.Errorf("%w: only the owner may delete an event", ErrForbidden)
	}
	if err := s.Store.Delete(ctx, models.EventsTable, eventID); err != nil {
		log.Printf("❌ Failed to delete event %s: %v", eventID, err)
		return fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	log.Printf("✅ Event deleted: %s", eventID)
	return nil
}

// VisibleEvents runs the filter pipeline over the mirrored discovery slice.
// The result is consistent with some recent mirror state, never computed
// from a stale pre-action copy held elsewhere.
func (s *EventService) VisibleEvents(criteria models.FilterCriteria) ([]models.Event, error) {
	slot := s.Mirror.Get(PublicEventsKey)
	switch slot.State {
	case realtime.SlotUnknown:
		return nil, fmt.Errorf("%w: discovery stream errored", ErrUnavailable)
	case realtime.SlotAbsent:
		return []models.Event{}, nil
	}

	var events []models.Event
	if err := slot.Snapshot.Decode(&events); err != nil {
		return nil, fmt.Errorf("failed to decode mirrored events: %w", err)
	}
	return realtime.Derive(events, criteria), nil
}
