package controllers

import (
	"context"
	"encoding/json"
	"net/http"

	"rievent_server/services"

	"github.com/gorilla/mux"
)

// CommentController struct
type CommentController struct {
	CommentService *services.CommentService
}

// NewCommentController initializes the comment controller
func NewCommentController(service *services.CommentService) *CommentController {
	return &CommentController{CommentService: service}
}

// HandleAdd - Append a new comment to an event
func (c *CommentController) HandleAdd(w http.ResponseWriter, r *http.Request) {
	var request struct {
		EventID    string `json:"eventId"`
		AuthorID   string `json:"authorId"`
		AuthorName string `json:"authorName"`
		Text       string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, `{"error": "Invalid request body"}`, http.StatusBadRequest)
		return
	}

	comment, err := c.CommentService.Add(context.TODO(), request.EventID, request.AuthorID, request.AuthorName, request.Text)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, comment)
}

// HandleList - Newest-first comments for an event
func (c *CommentController) HandleList(w http.ResponseWriter, r *http.Request) {
	eventID := mux.Vars(r)["eventId"]

	comments, err := c.CommentService.List(context.TODO(), eventID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, comments)
}
