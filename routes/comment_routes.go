package routes

import (
	"rievent_server/controllers"
	"rievent_server/services"

	"github.com/gorilla/mux"
)

// RegisterCommentRoutes sets up routes for comment operations under /api/comments
func RegisterCommentRoutes(r *mux.Router, commentService *services.CommentService) {
	controller := controllers.NewCommentController(commentService)

	commentRouter := r.PathPrefix("/api/comments").Subrouter()

	commentRouter.HandleFunc("", controller.HandleAdd).Methods("POST")
	commentRouter.HandleFunc("/{eventId}", controller.HandleList).Methods("GET")
}
