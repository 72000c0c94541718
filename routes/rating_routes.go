package routes

import (
	"rievent_server/controllers"
	"rievent_server/services"

	"github.com/gorilla/mux"
)

// RegisterRatingRoutes sets up routes for rating operations under /api/ratings
func RegisterRatingRoutes(r *mux.Router, ratingService *services.RatingService) {
	controller := controllers.NewRatingController(ratingService)

	ratingRouter := r.PathPrefix("/api/ratings").Subrouter()

	ratingRouter.HandleFunc("", controller.HandleSubmit).Methods("POST")
	ratingRouter.HandleFunc("/{eventId}/summary", controller.HandleGetSummary).Methods("GET")
}
