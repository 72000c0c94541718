package routes

import (
	"rievent_server/controllers"

	"github.com/gorilla/mux"
)

// RegisterDeepLinkRoutes sets up the deep link resolver under /api/deeplink
func RegisterDeepLinkRoutes(r *mux.Router) {
	controller := controllers.NewDeepLinkController()

	r.HandleFunc("/api/deeplink/resolve", controller.HandleResolve).Methods("POST")
}
