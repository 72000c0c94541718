package controllers

import (
	"context"
	"encoding/json"
	"net/http"

	"rievent_server/services"

	"github.com/gorilla/mux"
)

// RatingController struct
type RatingController struct {
	RatingService *services.RatingService
}

// NewRatingController initializes the rating controller
func NewRatingController(service *services.RatingService) *RatingController {
	return &RatingController{RatingService: service}
}

// HandleSubmit - Upsert the author's rating for an event
func (c *RatingController) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	var request struct {
		EventID  string `json:"eventId"`
		AuthorID string `json:"authorId"`
		Value    int    `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, `{"error": "Invalid request body"}`, http.StatusBadRequest)
		return
	}

	if err := c.RatingService.Submit(context.TODO(), request.EventID, request.AuthorID, request.Value); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

// HandleGetSummary - Average and count over the live rating set
func (c *RatingController) HandleGetSummary(w http.ResponseWriter, r *http.Request) {
	eventID := mux.Vars(r)["eventId"]

	summary, err := c.RatingService.Summary(context.TODO(), eventID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, summary)
}
