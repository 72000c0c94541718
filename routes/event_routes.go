package routes

import (
	"rievent_server/controllers"
	"rievent_server/services"

	"github.com/gorilla/mux"
)

// RegisterEventRoutes sets up routes for event operations under /api/events
func RegisterEventRoutes(r *mux.Router, eventService *services.EventService) {
	controller := controllers.NewEventController(eventService)

	eventRouter := r.PathPrefix("/api/events").Subrouter()

	eventRouter.HandleFunc("", controller.HandleCreateEvent).Methods("POST")
	eventRouter.HandleFunc("/visible", controller.HandleVisibleEvents).Methods("GET")
	eventRouter.HandleFunc("/{eventId}", controller.HandleGetEvent).Methods("GET")
	eventRouter.HandleFunc("/{eventId}", controller.HandleUpdateEvent).Methods("PUT")
	eventRouter.HandleFunc("/{eventId}", controller.HandleDeleteEvent).Methods("DELETE")
}
