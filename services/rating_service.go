package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"rievent_server/models"
	"rievent_server/store"
)

// RatingService keeps one rating per (event, author): a submit updates the
// author's existing record in place, otherwise creates one.
type RatingService struct {
	Store store.Store
}

// Submit upserts the author's rating for the event.
func (s *RatingService) Submit(ctx context.Context, eventID, authorID string, value int) error {
	if eventID == "" || authorID == "" {
		return fmt.Errorf("%w: eventId and authorId are required", ErrValidation)
	}
	if value < models.RatingMin || value > models.RatingMax {
		return fmt.Errorf("%w: rating must be between %d and %d", ErrValidation, models.RatingMin, models.RatingMax)
	}

	existing, err := s.ratingsFor(ctx, eventID)
	if err != nil {
		return err
	}

	now := time.Now().UTC().Format(time.RFC3339)
	for _, rating := range existing {
		if rating.AuthorID != authorID {
			continue
		}
		// Update-in-place by key.
		err := s.Store.Update(ctx, models.RatingsTable, rating.RatingID, []store.FieldOp{
			{Kind: store.OpSet, Field: "value", Value: value},
			{Kind: store.OpSet, Field: "updatedAt", Value: now},
		})
		if err != nil {
			log.Printf("❌ Failed to update rating %s: %v", rating.RatingID, err)
			return fmt.Errorf("%w: %v", ErrWriteFailed, err)
		}
		log.Printf("✅ Rating updated: %s rated event %s = %d", authorID, eventID, value)
		return nil
	}

	record := models.RatingRecord{
		EventID:   eventID,
		AuthorID:  authorID,
		Value:     value,
		UpdatedAt: now,
	}
	if _, err := s.Store.Create(ctx, models.RatingsTable, record); err != nil {
		log.Printf("❌ Failed to create rating: %v", err)
		return fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	log.Printf("✅ Rating created: %s rated event %s = %d", authorID, eventID, value)
	return nil
}

// Summary derives average and count over the live rating set.
func (s *RatingService) Summary(ctx context.Context, eventID string) (models.RatingSummary, error) {
	if eventID == "" {
		return models.RatingSummary{}, fmt.Errorf("%w: eventId is required", ErrValidation)
	}
	ratings, err := s.ratingsFor(ctx, eventID)
	if err != nil {
		return models.RatingSummary{}, err
	}
	return DeriveRatingSummary(eventID, ratings), nil
}

// DeriveRatingSummary is the pure derivation over a rating set: arithmetic
// mean and size, recomputed from the set every time, never cached.
func DeriveRatingSummary(eventID string, ratings []models.RatingRecord) models.RatingSummary {
	summary := models.RatingSummary{EventID: eventID, Count: len(ratings)}
	if len(ratings) == 0 {
		return summary
	}
	total := 0
	for _, rating := range ratings {
		total += rating.Value
	}
	summary.Average = float64(total) / float64(len(ratings))
	return summary
}

func (s *RatingService) ratingsFor(ctx context.Context, eventID string) ([]models.RatingRecord, error) {
	var ratings []models.RatingRecord
	err := s.Store.Query(ctx, models.RatingsTable, store.Query{Field: "eventId", Equals: eventID}, &ratings)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch ratings: %w", err)
	}
	return ratings, nil
}
