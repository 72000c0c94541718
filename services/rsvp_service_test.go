package services

import (
	"context"
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rievent_server/models"
	"rievent_server/realtime"
	"rievent_server/store"
)

func newRsvpService() (*RsvpService, *store.MemoryStore) {
	ms := store.NewMemoryStore(store.DefaultSchema())
	return &RsvpService{Store: ms, Mirror: realtime.NewMirror()}, ms
}

func participant(id string) models.ParticipantRef {
	return models.ParticipantRef{UserID: id, DisplayName: "User " + id}
}

func TestSetStatus_LazyCreateThenMove(t *testing.T) {
	ctx := context.Background()
	s, ms := newRsvpService()

	// No record yet: first action creates it with only the target set.
	require.NoError(t, s.SetStatus(ctx, "E1", participant("U1"), models.RsvpStatusComing))

	var record models.RsvpRecord
	require.NoError(t, ms.Get(ctx, models.RsvpTable, "E1", &record))
	assert.Contains(t, record.Coming, "U1")
	assert.Empty(t, record.Maybe)
	assert.Empty(t, record.NotComing)

	// Moving to maybe removes from coming in the same request.
	require.NoError(t, s.SetStatus(ctx, "E1", participant("U1"), models.RsvpStatusMaybe))

	require.NoError(t, ms.Get(ctx, models.RsvpTable, "E1", &record))
	assert.Empty(t, record.Coming)
	assert.Contains(t, record.Maybe, "U1")
	assert.Equal(t, "User U1", record.Maybe["U1"].DisplayName)
}

func TestSetStatus_RepeatedCallIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s, ms := newRsvpService()

	require.NoError(t, s.SetStatus(ctx, "E1", participant("U1"), models.RsvpStatusComing))
	require.NoError(t, s.SetStatus(ctx, "E1", participant("U1"), models.RsvpStatusComing))

	var record models.RsvpRecord
	require.NoError(t, ms.Get(ctx, models.RsvpTable, "E1", &record))
	assert.Len(t, record.Coming, 1)
}

func TestSetStatus_RejectsInvalidInput(t *testing.T) {
	ctx := context.Background()
	s, _ := newRsvpService()

	assert.ErrorIs(t, s.SetStatus(ctx, "", participant("U1"), models.RsvpStatusComing), ErrValidation)
	assert.ErrorIs(t, s.SetStatus(ctx, "E1", models.ParticipantRef{}, models.RsvpStatusComing), ErrValidation)
	assert.ErrorIs(t, s.SetStatus(ctx, "E1", participant("U1"), "attending"), ErrValidation)
}

// TestSetStatus_SetsStayDisjointUnderInterleaving drives many participants
// through random status changes concurrently and checks the membership sets
// remain pairwise disjoint with each participant in exactly one set.
func TestSetStatus_SetsStayDisjointUnderInterleaving(t *testing.T) {
	ctx := context.Background()
	s, ms := newRsvpService()

	statuses := []string{models.RsvpStatusComing, models.RsvpStatusMaybe, models.RsvpStatusNotComing}
	const participants = 8
	const changesEach = 25

	var wg sync.WaitGroup
	for i := 0; i < participants; i++ {
		wg.Add(1)
		go func(seed int) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(int64(seed)))
			id := string(rune('A' + seed))
			for j := 0; j < changesEach; j++ {
				target := statuses[rng.Intn(len(statuses))]
				assert.NoError(t, s.SetStatus(ctx, "E1", participant(id), target))
			}
		}(i)
	}
	wg.Wait()

	var record models.RsvpRecord
	require.NoError(t, ms.Get(ctx, models.RsvpTable, "E1", &record))

	for i := 0; i < participants; i++ {
		id := string(rune('A' + i))
		memberships := 0
		for _, set := range []map[string]models.ParticipantRef{record.Coming, record.Maybe, record.NotComing} {
			if _, ok := set[id]; ok {
				memberships++
			}
		}
		assert.Equal(t, 1, memberships, "participant %s must be in exactly one set", id)
	}
}

func TestSummary_DerivesFromLatestRecord(t *testing.T) {
	ctx := context.Background()
	s, _ := newRsvpService()

	// Absent record: zero counts, status none.
	summary, err := s.Summary(ctx, "E1", "U1")
	require.NoError(t, err)
	assert.Equal(t, models.RsvpStatusNone, summary.MyStatus)
	assert.Zero(t, summary.ComingCount)

	require.NoError(t, s.SetStatus(ctx, "E1", participant("U1"), models.RsvpStatusComing))
	require.NoError(t, s.SetStatus(ctx, "E1", participant("U2"), models.RsvpStatusMaybe))

	summary, err = s.Summary(ctx, "E1", "U1")
	require.NoError(t, err)
	assert.Equal(t, 1, summary.ComingCount)
	assert.Equal(t, 1, summary.MaybeCount)
	assert.Equal(t, 0, summary.NotComingCount)
	assert.Equal(t, models.RsvpStatusComing, summary.MyStatus)
}

func TestSummary_PrefersMirroredRecord(t *testing.T) {
	ctx := context.Background()
	s, _ := newRsvpService()

	record := models.RsvpRecord{
		EventID: "E1",
		Coming:  map[string]models.ParticipantRef{"U1": participant("U1"), "U2": participant("U2")},
	}
	doc, err := store.ToDocument(record)
	require.NoError(t, err)
	s.Mirror.Replace(RsvpKey("E1"), store.Snapshot{doc})

	summary, err := s.Summary(ctx, "E1", "U2")
	require.NoError(t, err)
	assert.Equal(t, 2, summary.ComingCount)
	assert.Equal(t, models.RsvpStatusComing, summary.MyStatus)
}
