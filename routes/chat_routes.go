package routes

import (
	"rievent_server/controllers"
	"rievent_server/services"

	"github.com/gorilla/mux"
)

// RegisterChatRoutes sets up routes for chat-related operations under /api/chat
func RegisterChatRoutes(r *mux.Router, chatService *services.ChatService) {
	// Initialize the controller with the ChatService
	controller := controllers.NewChatController(chatService)

	// Create a subrouter for /api/chat
	chatRouter := r.PathPrefix("/api/chat").Subrouter()

	// Define routes and their corresponding handlers
	chatRouter.HandleFunc("/key", controller.HandleThreadKey).Methods("GET")
	chatRouter.HandleFunc("/thread", controller.HandleGetThread).Methods("GET")
	chatRouter.HandleFunc("/message", controller.HandleSendMessage).Methods("POST")
	chatRouter.HandleFunc("/messages", controller.HandleGetMessages).Methods("GET")
	chatRouter.HandleFunc("/messages/mark-as-read", controller.HandleMarkThreadRead).Methods("POST")
}
