package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rievent_server/models"
)

func newTestStore() *MemoryStore {
	return NewMemoryStore(DefaultSchema())
}

func TestMemoryStore_CreateStampsKeyField(t *testing.T) {
	ctx := context.Background()
	s := newTestStore()

	eventID, err := s.Create(ctx, models.EventsTable, models.Event{Name: "Run", OwnerID: "u1", Public: true})
	require.NoError(t, err)
	require.NotEmpty(t, eventID)

	var event models.Event
	require.NoError(t, s.Get(ctx, models.EventsTable, eventID, &event))
	assert.Equal(t, eventID, event.EventID)
	assert.Equal(t, "Run", event.Name)
}

func TestMemoryStore_GetMissingReturnsNotFound(t *testing.T) {
	s := newTestStore()
	var event models.Event
	err := s.Get(context.Background(), models.EventsTable, "nope", &event)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_CreateIfAbsentConflict(t *testing.T) {
	ctx := context.Background()
	s := newTestStore()

	thread := models.ChatThread{Participants: []string{"a", "b"}}
	require.NoError(t, s.CreateIfAbsent(ctx, models.ChatsTable, "a_b", thread))

	err := s.CreateIfAbsent(ctx, models.ChatsTable, "a_b", thread)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestMemoryStore_UpdateMapEntriesAtomically(t *testing.T) {
	ctx := context.Background()
	s := newTestStore()

	record := models.RsvpRecord{
		EventID: "e1",
		Coming:  map[string]models.ParticipantRef{"u1": {UserID: "u1", DisplayName: "Ana"}},
		Maybe:   map[string]models.ParticipantRef{},
	}
	require.NoError(t, s.Set(ctx, models.RsvpTable, "e1", record))

	err := s.Update(ctx, models.RsvpTable, "e1", []FieldOp{
		{Kind: OpSetMapEntry, Field: "maybe", EntryKey: "u1", Value: models.ParticipantRef{UserID: "u1", DisplayName: "Ana"}},
		{Kind: OpRemoveMapEntry, Field: "coming", EntryKey: "u1"},
	})
	require.NoError(t, err)

	var got models.RsvpRecord
	require.NoError(t, s.Get(ctx, models.RsvpTable, "e1", &got))
	assert.Empty(t, got.Coming)
	assert.Contains(t, got.Maybe, "u1")
}

func TestMemoryStore_UpdateMissingKeyReturnsNotFound(t *testing.T) {
	s := newTestStore()
	err := s.Update(context.Background(), models.RsvpTable, "ghost", []FieldOp{
		{Kind: OpSet, Field: "updatedAt", Value: "now"},
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_QueryFilterOrderLimit(t *testing.T) {
	ctx := context.Background()
	s := newTestStore()

	for _, msg := range []models.Message{
		{ChatID: "a_b", Text: "first", CreatedAt: "2026-01-01T10:00:00Z"},
		{ChatID: "a_b", Text: "second", CreatedAt: "2026-01-01T10:00:01Z"},
		{ChatID: "x_y", Text: "other thread", CreatedAt: "2026-01-01T10:00:02Z"},
	} {
		_, err := s.Create(ctx, models.MessagesTable, msg)
		require.NoError(t, err)
	}

	var messages []models.Message
	err := s.Query(ctx, models.MessagesTable, Query{
		Field:   "chatId",
		Equals:  "a_b",
		OrderBy: "createdAt",
	}, &messages)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "first", messages[0].Text)
	assert.Equal(t, "second", messages[1].Text)

	var newest []models.Message
	err = s.Query(ctx, models.MessagesTable, Query{
		Field:      "chatId",
		Equals:     "a_b",
		OrderBy:    "createdAt",
		Descending: true,
		Limit:      1,
	}, &newest)
	require.NoError(t, err)
	require.Len(t, newest, 1)
	assert.Equal(t, "second", newest[0].Text)
}

func TestMemoryStore_SubscribePushesFullResultSet(t *testing.T) {
	ctx := context.Background()
	s := newTestStore()

	var mu sync.Mutex
	var last Snapshot
	deliveries := 0

	cancel, err := s.Subscribe(models.EventsTable, Query{Field: "public", Equals: true}, func(snap Snapshot, err error) {
		require.NoError(t, err)
		mu.Lock()
		last = snap
		deliveries++
		mu.Unlock()
	})
	require.NoError(t, err)
	defer cancel()

	// Subscribe delivers the (empty) current result set before returning.
	mu.Lock()
	require.Equal(t, 1, deliveries)
	mu.Unlock()

	_, err = s.Create(ctx, models.EventsTable, models.Event{Name: "Run", Public: true})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(last) == 1
	}, time.Second, 5*time.Millisecond)

	// After cancel, further mutations no longer deliver.
	cancel()
	mu.Lock()
	before := deliveries
	mu.Unlock()

	_, err = s.Create(ctx, models.EventsTable, models.Event{Name: "Another", Public: true})
	require.NoError(t, err)

	mu.Lock()
	assert.Equal(t, before, deliveries)
	mu.Unlock()
}
