package controllers

import (
	"encoding/json"
	"net/http"

	"rievent_server/models"
	"rievent_server/services"
)

// DeepLinkController struct
type DeepLinkController struct{}

// NewDeepLinkController initializes the deep link controller
func NewDeepLinkController() *DeepLinkController {
	return &DeepLinkController{}
}

// HandleResolve - Map a push payload to a navigation target
func (c *DeepLinkController) HandleResolve(w http.ResponseWriter, r *http.Request) {
	var payload models.PushPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, `{"error": "Invalid request body"}`, http.StatusBadRequest)
		return
	}

	target, err := services.ResolveDeepLink(payload)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, target)
}
