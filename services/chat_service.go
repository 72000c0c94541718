package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"rievent_server/models"
	"rievent_server/store"
)

// ChatService handles thread identity, lazy thread creation and ordered
// message append/read.
type ChatService struct {
	Store store.Store
}

// ThreadKeyFor derives the canonical thread key for two participants: the
// sorted id pair joined by "_". Pure and symmetric, so both sides compute
// the same key before the thread exists.
func ThreadKeyFor(idA, idB string) string {
	if idA > idB {
		idA, idB = idB, idA
	}
	return idA + "_" + idB
}

// SendMessage appends a message to the thread, creating the thread first if
// this is the opening message between the pair. Creation is
// first-writer-wins: a concurrent creator losing the race just appends its
// message to the winner's thread, so no message is lost and the participant
// details are written exactly once.
func (s *ChatService) SendMessage(ctx context.Context, chatID, senderID, text string, participants map[string]models.ParticipantRef) (models.Message, error) {
	if chatID == "" || senderID == "" {
		return models.Message{}, fmt.Errorf("%w: chatId and senderId are required", ErrValidation)
	}
	if text == "" {
		return models.Message{}, fmt.Errorf("%w: message text must not be empty", ErrValidation)
	}

	var thread models.ChatThread
	err := s.Store.Get(ctx, models.ChatsTable, chatID, &thread)
	if errors.Is(err, store.ErrNotFound) {
		thread, err = s.createThread(ctx, chatID, participants)
		if err != nil {
			return models.Message{}, err
		}
	} else if err != nil {
		log.Printf("❌ Failed to read thread %s: %v", chatID, err)
		return models.Message{}, fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}

	// Nanosecond precision keeps same-second messages strictly ordered.
	createdAt := time.Now().UTC().Format(models.TimestampLayout)
	message := models.Message{
		ChatID:    chatID,
		SenderID:  senderID,
		Text:      text,
		CreatedAt: createdAt,
	}

	messageID, err := s.Store.Create(ctx, models.MessagesTable, message)
	if err != nil {
		log.Printf("❌ Failed to store message: %v", err)
		return models.Message{}, fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	message.MessageID = messageID

	// Denormalize the summary onto the thread and flag it unread for the
	// other participants, all as one request.
	ops := []store.FieldOp{
		{Kind: store.OpSet, Field: "lastMessage", Value: models.LastMessage{
			Text:      text,
			SenderID:  senderID,
			CreatedAt: createdAt,
		}},
	}
	for _, pid := range thread.Participants {
		if pid == senderID {
			continue
		}
		ops = append(ops, store.FieldOp{Kind: store.OpSetMapEntry, Field: "unread", EntryKey: pid, Value: true})
	}
	if err := s.Store.Update(ctx, models.ChatsTable, chatID, ops); err != nil {
		log.Printf("⚠️ Message stored but thread summary update failed for %s: %v", chatID, err)
	}

	log.Printf("📩 Message %s appended to thread %s", messageID, chatID)
	return message, nil
}

// createThread writes the thread with the denormalized participant details
// the initiating side prepared. Losing the create race is not an error.
func (s *ChatService) createThread(ctx context.Context, chatID string, participants map[string]models.ParticipantRef) (models.ChatThread, error) {
	if len(participants) == 0 {
		return models.ChatThread{}, fmt.Errorf("%w: first message requires participant details", ErrValidation)
	}

	ids := make([]string, 0, len(participants))
	for pid := range participants {
		ids = append(ids, pid)
	}
	sort.Strings(ids)

	unread := make(map[string]bool, len(ids))
	for _, pid := range ids {
		unread[pid] = false
	}

	thread := models.ChatThread{
		ChatID:          chatID,
		Participants:    ids,
		ParticipantInfo: participants,
		Unread:          unread,
		CreatedAt:       time.Now().UTC().Format(time.RFC3339),
	}

	err := s.Store.CreateIfAbsent(ctx, models.ChatsTable, chatID, thread)
	if errors.Is(err, store.ErrConflict) {
		// Both sides sent a first message; the winner's thread stands.
		var existing models.ChatThread
		if getErr := s.Store.Get(ctx, models.ChatsTable, chatID, &existing); getErr != nil {
			return models.ChatThread{}, fmt.Errorf("%w: %v", ErrWriteFailed, getErr)
		}
		return existing, nil
	}
	if err != nil {
		log.Printf("❌ Failed to create thread %s: %v", chatID, err)
		return models.ChatThread{}, fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	log.Printf("✅ Thread created: %s", chatID)
	return thread, nil
}

// GetThread fetches one thread by key.
func (s *ChatService) GetThread(ctx context.Context, chatID string) (models.ChatThread, error) {
	if chatID == "" {
		return models.ChatThread{}, fmt.Errorf("%w: chatId is required", ErrValidation)
	}
	var thread models.ChatThread
	err := s.Store.Get(ctx, models.ChatsTable, chatID, &thread)
	if errors.Is(err, store.ErrNotFound) {
		return models.ChatThread{}, fmt.Errorf("%w: thread %s", ErrNotFound, chatID)
	}
	if err != nil {
		return models.ChatThread{}, fmt.Errorf("failed to fetch thread: %w", err)
	}
	return thread, nil
}

// GetMessages returns the newest messages of the thread, at most limit of
// them, ordered by server-assigned timestamp ascending. The newest-first
// query picks which messages survive the limit; the reversal restores
// chronological order for display.
func (s *ChatService) GetMessages(ctx context.Context, chatID string, limit int) ([]models.Message, error) {
	if chatID == "" {
		return nil, fmt.Errorf("%w: chatId is required", ErrValidation)
	}
	var messages []models.Message
	err := s.Store.Query(ctx, models.MessagesTable, store.Query{
		Field:      "chatId",
		Equals:     chatID,
		OrderBy:    "createdAt",
		Descending: true,
		Limit:      limit,
	}, &messages)
	if err != nil {
		log.Printf("❌ Error querying messages: %v", err)
		return nil, fmt.Errorf("failed to fetch messages: %w", err)
	}
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	log.Printf("✅ Found %d messages for thread %s", len(messages), chatID)
	return messages, nil
}

// MarkThreadRead clears the caller's unread flag on the thread.
func (s *ChatService) MarkThreadRead(ctx context.Context, chatID, userID string) error {
	if chatID == "" || userID == "" {
		return fmt.Errorf("%w: chatId and userId are required", ErrValidation)
	}
	err := s.Store.Update(ctx, models.ChatsTable, chatID, []store.FieldOp{
		{Kind: store.OpSetMapEntry, Field: "unread", EntryKey: userID, Value: false},
	})
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("%w: thread %s", ErrNotFound, chatID)
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	return nil
}
