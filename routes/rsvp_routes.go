package routes

import (
	"rievent_server/controllers"
	"rievent_server/services"

	"github.com/gorilla/mux"
)

// RegisterRsvpRoutes sets up routes for RSVP operations under /api/rsvp
func RegisterRsvpRoutes(r *mux.Router, rsvpService *services.RsvpService) {
	controller := controllers.NewRsvpController(rsvpService)

	rsvpRouter := r.PathPrefix("/api/rsvp").Subrouter()

	rsvpRouter.HandleFunc("/status", controller.HandleSetStatus).Methods("POST")
	rsvpRouter.HandleFunc("/{eventId}/summary", controller.HandleGetSummary).Methods("GET")
}
