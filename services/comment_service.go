package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"rievent_server/models"
	"rievent_server/store"
)

// CommentService appends immutable comments to events, never updating one in
// place.
type CommentService struct {
	Store store.Store
}

// Add appends a new comment. Blank text is rejected before any remote call.
func (s *CommentService) Add(ctx context.Context, eventID, authorID, authorName, text string) (models.CommentRecord, error) {
	if eventID == "" || authorID == "" {
		return models.CommentRecord{}, fmt.Errorf("%w: eventId and authorId are required", ErrValidation)
	}
	if strings.TrimSpace(text) == "" {
		return models.CommentRecord{}, fmt.Errorf("%w: comment text must not be blank", ErrValidation)
	}

	comment := models.CommentRecord{
		EventID:    eventID,
		AuthorID:   authorID,
		AuthorName: authorName,
		Text:       text,
		CreatedAt:  time.Now().UTC().Format(models.TimestampLayout),
	}
	commentID, err := s.Store.Create(ctx, models.CommentsTable, comment)
	if err != nil {
		log.Printf("❌ Failed to store comment: %v", err)
		return models.CommentRecord{}, fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	comment.CommentID = commentID

	log.Printf("✅ Comment %s added to event %s", commentID, eventID)
	return comment, nil
}

// List returns the event's comments by creation time descending, bounded to
// the most recent entries for cost control.
func (s *CommentService) List(ctx context.Context, eventID string) ([]models.CommentRecord, error) {
	if eventID == "" {
		return nil, fmt.Errorf("%w: eventId is required", ErrValidation)
	}
	var comments []models.CommentRecord
	err := s.Store.Query(ctx, models.CommentsTable, store.Query{
		Field:      "eventId",
		Equals:     eventID,
		OrderBy:    "createdAt",
		Descending: true,
		Limit:      models.CommentDisplayLimit,
	}, &comments)
	if err != nil {
		log.Printf("❌ Error querying comments: %v", err)
		return nil, fmt.Errorf("failed to fetch comments: %w", err)
	}
	return comments, nil
}
