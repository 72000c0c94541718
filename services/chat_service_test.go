package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rievent_server/models"
	"rievent_server/store"
)

func newChatService() (*ChatService, *store.MemoryStore) {
	ms := store.NewMemoryStore(store.DefaultSchema())
	return &ChatService{Store: ms}, ms
}

func pairDetails() map[string]models.ParticipantRef {
	return map[string]models.ParticipantRef{
		"ana":   {UserID: "ana", DisplayName: "Ana"},
		"marko": {UserID: "marko", DisplayName: "Marko"},
	}
}

func TestThreadKeyFor_SymmetricAndDeterministic(t *testing.T) {
	assert.Equal(t, ThreadKeyFor("ana", "marko"), ThreadKeyFor("marko", "ana"))
	assert.Equal(t, "ana_marko", ThreadKeyFor("marko", "ana"))
	assert.Equal(t, ThreadKeyFor("a", "b"), ThreadKeyFor("a", "b"))
}

func TestSendMessage_FirstMessageCreatesThread(t *testing.T) {
	ctx := context.Background()
	s, ms := newChatService()
	chatID := ThreadKeyFor("ana", "marko")

	message, err := s.SendMessage(ctx, chatID, "ana", "hi!", pairDetails())
	require.NoError(t, err)
	require.NotEmpty(t, message.MessageID)

	// Thread holds the prepared participant details.
	var thread models.ChatThread
	require.NoError(t, ms.Get(ctx, models.ChatsTable, chatID, &thread))
	assert.Equal(t, []string{"ana", "marko"}, thread.Participants)
	assert.Equal(t, "Ana", thread.ParticipantInfo["ana"].DisplayName)

	// Exactly one message, readable back in ascending order.
	messages, err := s.GetMessages(ctx, chatID, 50)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, "hi!", messages[0].Text)

	// Last-message summary is denormalized onto the thread.
	require.NoError(t, ms.Get(ctx, models.ChatsTable, chatID, &thread))
	require.NotNil(t, thread.LastMessage)
	assert.Equal(t, "hi!", thread.LastMessage.Text)
	assert.Equal(t, "ana", thread.LastMessage.SenderID)
	assert.True(t, thread.Unread["marko"], "receiver should see the thread as unread")
}

func TestSendMessage_AppendsInTimestampOrder(t *testing.T) {
	ctx := context.Background()
	s, _ := newChatService()
	chatID := ThreadKeyFor("ana", "marko")

	_, err := s.SendMessage(ctx, chatID, "ana", "one", pairDetails())
	require.NoError(t, err)
	_, err = s.SendMessage(ctx, chatID, "marko", "two", nil)
	require.NoError(t, err)
	_, err = s.SendMessage(ctx, chatID, "ana", "three", nil)
	require.NoError(t, err)

	messages, err := s.GetMessages(ctx, chatID, 50)
	require.NoError(t, err)
	require.Len(t, messages, 3)
	assert.Equal(t, "one", messages[0].Text)
	assert.Equal(t, "two", messages[1].Text)
	assert.Equal(t, "three", messages[2].Text)
}

func TestGetMessages_LimitKeepsNewestInAscendingOrder(t *testing.T) {
	ctx := context.Background()
	s, _ := newChatService()
	chatID := ThreadKeyFor("ana", "marko")

	_, err := s.SendMessage(ctx, chatID, "ana", "one", pairDetails())
	require.NoError(t, err)
	_, err = s.SendMessage(ctx, chatID, "marko", "two", nil)
	require.NoError(t, err)
	_, err = s.SendMessage(ctx, chatID, "ana", "three", nil)
	require.NoError(t, err)

	messages, err := s.GetMessages(ctx, chatID, 2)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "two", messages[0].Text)
	assert.Equal(t, "three", messages[1].Text)
}

func TestSendMessage_LoserOfCreateRaceAppendsToExistingThread(t *testing.T) {
	ctx := context.Background()
	s, ms := newChatService()
	chatID := ThreadKeyFor("ana", "marko")

	// The other side already created the thread.
	require.NoError(t, s.Store.CreateIfAbsent(ctx, models.ChatsTable, chatID, models.ChatThread{
		ChatID:          chatID,
		Participants:    []string{"ana", "marko"},
		ParticipantInfo: pairDetails(),
		Unread:          map[string]bool{"ana": false, "marko": false},
	}))

	_, err := s.SendMessage(ctx, chatID, "marko", "me too", pairDetails())
	require.NoError(t, err)

	messages, err := s.GetMessages(ctx, chatID, 50)
	require.NoError(t, err)
	assert.Len(t, messages, 1)

	// The winner's participant details stand.
	var thread models.ChatThread
	require.NoError(t, ms.Get(ctx, models.ChatsTable, chatID, &thread))
	assert.Equal(t, []string{"ana", "marko"}, thread.Participants)
}

func TestSendMessage_Validation(t *testing.T) {
	ctx := context.Background()
	s, _ := newChatService()

	_, err := s.SendMessage(ctx, "", "ana", "hi", pairDetails())
	assert.ErrorIs(t, err, ErrValidation)

	_, err = s.SendMessage(ctx, "ana_marko", "ana", "", pairDetails())
	assert.ErrorIs(t, err, ErrValidation)

	// First message without prepared participant details is rejected.
	_, err = s.SendMessage(ctx, "ana_marko", "ana", "hi", nil)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestMarkThreadRead(t *testing.T) {
	ctx := context.Background()
	s, ms := newChatService()
	chatID := ThreadKeyFor("ana", "marko")

	_, err := s.SendMessage(ctx, chatID, "ana", "hi", pairDetails())
	require.NoError(t, err)

	require.NoError(t, s.MarkThreadRead(ctx, chatID, "marko"))

	var thread models.ChatThread
	require.NoError(t, ms.Get(ctx, models.ChatsTable, chatID, &thread))
	assert.False(t, thread.Unread["marko"])

	assert.ErrorIs(t, s.MarkThreadRead(ctx, "ghost_thread", "marko"), ErrNotFound)
}
