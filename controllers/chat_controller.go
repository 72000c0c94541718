package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"rievent_server/models"
	"rievent_server/services"
)

// ChatController struct
type ChatController struct {
	ChatService *services.ChatService
}

// NewChatController initializes the chat controller
func NewChatController(service *services.ChatService) *ChatController {
	return &ChatController{ChatService: service}
}

// HandleThreadKey - Derive the canonical thread key for two participants
func (c *ChatController) HandleThreadKey(w http.ResponseWriter, r *http.Request) {
	userA := r.URL.Query().Get("userA")
	userB := r.URL.Query().Get("userB")
	if userA == "" || userB == "" {
		http.Error(w, `{"error": "userA and userB are required"}`, http.StatusBadRequest)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"chatId": services.ThreadKeyFor(userA, userB)})
}

// HandleSendMessage - Append a message, lazily creating the thread on the
// first message between a pair
func (c *ChatController) HandleSendMessage(w http.ResponseWriter, r *http.Request) {
	var request struct {
		ChatID       string                           `json:"chatId"`
		SenderID     string                           `json:"senderId"`
		Text         string                           `json:"text"`
		Participants map[string]models.ParticipantRef `json:"participants,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, `{"error": "Invalid request body"}`, http.StatusBadRequest)
		return
	}

	message, err := c.ChatService.SendMessage(context.TODO(), request.ChatID, request.SenderID, request.Text, request.Participants)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, message)
}

// HandleGetMessages - Fetch messages for a thread in ascending timestamp order
func (c *ChatController) HandleGetMessages(w http.ResponseWriter, r *http.Request) {
	chatID := r.URL.Query().Get("chatId")
	limitStr := r.URL.Query().Get("limit")

	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit <= 0 {
		limit = 50 // Default to 50 messages
	}

	messages, err := c.ChatService.GetMessages(context.TODO(), chatID, limit)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, messages)
}

// HandleGetThread - Fetch one thread with its denormalized summary
func (c *ChatController) HandleGetThread(w http.ResponseWriter, r *http.Request) {
	chatID := r.URL.Query().Get("chatId")

	thread, err := c.ChatService.GetThread(context.TODO(), chatID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, thread)
}

// HandleMarkThreadRead - Clear the caller's unread flag
func (c *ChatController) HandleMarkThreadRead(w http.ResponseWriter, r *http.Request) {
	var request struct {
		ChatID string `json:"chatId"`
		UserID string `json:"userId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, `{"error": "Invalid request body"}`, http.StatusBadRequest)
		return
	}

	if err := c.ChatService.MarkThreadRead(context.TODO(), request.ChatID, request.UserID); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "success"})
}
