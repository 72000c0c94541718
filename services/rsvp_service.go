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

// RsvpService runs the attendance state machine. The record's key equals the
// event id, so there is exactly one record per event and lookup is a direct
// get.
type RsvpService struct {
	Store  store.Store
	Mirror *realtime.Mirror
}

func rsvpField(status string) (string, error) {
	switch status {
	case models.RsvpStatusComing:
		return "coming", nil
	case models.RsvpStatusMaybe:
		return "maybe", nil
	case models.RsvpStatusNotComing:
		return "notComing", nil
	default:
		return "", fmt.Errorf("%w: invalid rsvp status '%s'", ErrValidation, status)
	}
}

// SetStatus moves participant to the target set for eventID. After a
// successful call the participant is a member of exactly one of the three
// sets: the record is created lazily with only the target set populated, and
// an existing record is mutated by a single atomic request that removes the
// participant from the other sets and writes it into the target one.
// Repeated calls with the same target are idempotent, and concurrent callers
// mutating different participants never conflict.
func (s *RsvpService) SetStatus(ctx context.Context, eventID string, participant models.ParticipantRef, target string) error {
	if eventID == "" || participant.UserID == "" {
		return fmt.Errorf("%w: eventId and participant id are required", ErrValidation)
	}
	targetField, err := rsvpField(target)
	if err != nil {
		return err
	}

	log.Printf("🔄 RSVP %s -> %s for event %s", participant.UserID, target, eventID)

	var record models.RsvpRecord
	err = s.Store.Get(ctx, models.RsvpTable, eventID, &record)
	if errors.Is(err, store.ErrNotFound) {
		created, createErr := s.createRecord(ctx, eventID, participant, target)
		if createErr != nil {
			return createErr
		}
		if created {
			return nil
		}
		// A concurrent caller created the record first; fall through to the
		// update path.
	} else if err != nil {
		log.Printf("❌ Failed to read rsvp record for event %s: %v", eventID, err)
		return fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}

	ops := []store.FieldOp{
		{Kind: store.OpSetMapEntry, Field: targetField, EntryKey: participant.UserID, Value: participant},
		{Kind: store.OpSet, Field: "updatedAt", Value: time.Now().UTC().Format(time.RFC3339)},
	}
	for _, field := range []string{"coming", "maybe", "notComing"} {
		if field == targetField {
			continue
		}
		ops = append(ops, store.FieldOp{Kind: store.OpRemoveMapEntry, Field: field, EntryKey: participant.UserID})
	}

	if err := s.Store.Update(ctx, models.RsvpTable, eventID, ops); err != nil {
		log.Printf("❌ Failed to update rsvp for event %s: %v", eventID, err)
		return fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	log.Printf("✅ RSVP stored: %s is %s for event %s", participant.UserID, target, eventID)
	return nil
}

// createRecord writes the lazily-created record with only the target set
// populated. Returns false when another writer won the create race.
func (s *RsvpService) createRecord(ctx context.Context, eventID string, participant models.ParticipantRef, target string) (bool, error) {
	record := models.RsvpRecord{
		EventID:   eventID,
		Coming:    map[string]models.ParticipantRef{},
		Maybe:     map[string]models.ParticipantRef{},
		NotComing: map[string]models.ParticipantRef{},
		UpdatedAt: time.Now().UTC().Format(time.RFC3339),
	}
	switch target {
	case models.RsvpStatusComing:
		record.Coming[participant.UserID] = participant
	case models.RsvpStatusMaybe:
		record.Maybe[participant.UserID] = participant
	case models.RsvpStatusNotComing:
		record.NotComing[participant.UserID] = participant
	}

	err := s.Store.CreateIfAbsent(ctx, models.RsvpTable, eventID, record)
	if errors.Is(err, store.ErrConflict) {
		return false, nil
	}
	if err != nil {
		log.Printf("❌ Failed to create rsvp record for event %s: %v", eventID, err)
		return false, fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	log.Printf("✅ RSVP record created for event %s", eventID)
	return true, nil
}

// Summary derives counts and the current user's state from the latest
// record: the mirrored one when the event is subscribed, otherwise a direct
// read. Never computed from a pre-action local copy.
func (s *RsvpService) Summary(ctx context.Context, eventID, currentUserID string) (models.RsvpSummary, error) {
	if eventID == "" {
		return models.RsvpSummary{}, fmt.Errorf("%w: eventId is required", ErrValidation)
	}

	var record models.RsvpRecord
	slot := s.Mirror.Get(RsvpKey(eventID))
	if slot.State == realtime.SlotKnown && len(slot.Snapshot) > 0 {
		if err := store.DecodeOne(slot.Snapshot[0], &record); err != nil {
			return models.RsvpSummary{}, fmt.Errorf("failed to decode mirrored rsvp record: %w", err)
		}
	} else {
		err := s.Store.Get(ctx, models.RsvpTable, eventID, &record)
		if errors.Is(err, store.ErrNotFound) {
			// No record yet: zero counts, status none.
			return models.RsvpSummary{EventID: eventID, MyStatus: models.RsvpStatusNone}, nil
		}
		if err != nil {
			return models.RsvpSummary{}, fmt.Errorf("failed to fetch rsvp record: %w", err)
		}
	}
	return DeriveRsvpSummary(record, currentUserID), nil
}

// DeriveRsvpSummary is the pure read-path derivation over one record.
func DeriveRsvpSummary(record models.RsvpRecord, currentUserID string) models.RsvpSummary {
	return models.RsvpSummary{
		EventID:        record.EventID,
		ComingCount:    len(record.Coming),
		MaybeCount:     len(record.Maybe),
		NotComingCount: len(record.NotComing),
		MyStatus:       record.StatusOf(currentUserID),
	}
}
