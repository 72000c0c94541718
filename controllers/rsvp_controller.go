package controllers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"rievent_server/models"
	"rievent_server/services"

	"github.com/gorilla/mux"
)

// RsvpController struct
type RsvpController struct {
	RsvpService *services.RsvpService
}

// NewRsvpController initializes the RSVP controller
func NewRsvpController(service *services.RsvpService) *RsvpController {
	return &RsvpController{RsvpService: service}
}

// HandleSetStatus - Move a participant to the target attendance set
func (c *RsvpController) HandleSetStatus(w http.ResponseWriter, r *http.Request) {
	var request struct {
		EventID     string `json:"eventId"`
		UserID      string `json:"userId"`
		DisplayName string `json:"displayName"`
		Status      string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, `{"error": "Invalid request body"}`, http.StatusBadRequest)
		return
	}

	log.Printf("🔄 RSVP request: %s -> %s for event %s", request.UserID, request.Status, request.EventID)

	participant := models.ParticipantRef{UserID: request.UserID, DisplayName: request.DisplayName}
	if err := c.RsvpService.SetStatus(context.TODO(), request.EventID, participant, request.Status); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

// HandleGetSummary - Counts plus the requesting user's state
func (c *RsvpController) HandleGetSummary(w http.ResponseWriter, r *http.Request) {
	eventID := mux.Vars(r)["eventId"]
	userID := r.URL.Query().Get("userId")

	summary, err := c.RsvpService.Summary(context.TODO(), eventID, userID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, summary)
}
