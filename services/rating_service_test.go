package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rievent_server/models"
	"rievent_server/store"
)

func newRatingService() *RatingService {
	return &RatingService{Store: store.NewMemoryStore(store.DefaultSchema())}
}

func TestSubmit_UpsertsPerAuthor(t *testing.T) {
	ctx := context.Background()
	s := newRatingService()

	require.NoError(t, s.Submit(ctx, "E1", "ana", 4))
	require.NoError(t, s.Submit(ctx, "E1", "marko", 2))

	summary, err := s.Summary(ctx, "E1")
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Count)
	assert.InDelta(t, 3.0, summary.Average, 0.001)

	// Re-submitting updates in place; the set does not grow.
	require.NoError(t, s.Submit(ctx, "E1", "ana", 5))

	summary, err = s.Summary(ctx, "E1")
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Count)
	assert.InDelta(t, 3.5, summary.Average, 0.001)
}

func TestSubmit_RejectsOutOfRange(t *testing.T) {
	ctx := context.Background()
	s := newRatingService()

	assert.ErrorIs(t, s.Submit(ctx, "E1", "ana", 0), ErrValidation)
	assert.ErrorIs(t, s.Submit(ctx, "E1", "ana", 6), ErrValidation)
	assert.ErrorIs(t, s.Submit(ctx, "", "ana", 3), ErrValidation)
}

func TestSummary_EmptySet(t *testing.T) {
	summary, err := newRatingService().Summary(context.Background(), "E1")
	require.NoError(t, err)
	assert.Zero(t, summary.Count)
	assert.Zero(t, summary.Average)
}

func TestDeriveRatingSummary_PureDerivation(t *testing.T) {
	ratings := []models.RatingRecord{
		{EventID: "E1", AuthorID: "a", Value: 5},
		{EventID: "E1", AuthorID: "b", Value: 4},
		{EventID: "E1", AuthorID: "c", Value: 3},
	}
	summary := DeriveRatingSummary("E1", ratings)
	assert.Equal(t, 3, summary.Count)
	assert.InDelta(t, 4.0, summary.Average, 0.001)
}
