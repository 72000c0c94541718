package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"rievent_server/realtime"
	"rievent_server/routes"
	"rievent_server/services"
	"rievent_server/socket"
	"rievent_server/store"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

func buildStore(schema store.Schema) store.Store {
	if os.Getenv("STORE_BACKEND") == "memory" {
		log.Println("Using in-memory store backend.")
		return store.NewMemoryStore(schema)
	}

	log.Println("Initializing DynamoDB client...")
	client := store.InitializeDynamoDBClient()
	log.Println("DynamoDB client initialized.")

	pollInterval := store.DefaultPollInterval
	if ms, err := strconv.Atoi(os.Getenv("POLL_INTERVAL_MS")); err == nil && ms > 0 {
		pollInterval = time.Duration(ms) * time.Millisecond
	}
	return store.NewDynamoStore(client, schema, pollInterval)
}

func main() {
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded environment from .env")
	}

	// Initialize the store and the synchronization core
	schema := store.DefaultSchema()
	st := buildStore(schema)

	mirror := realtime.NewMirror()
	registry := realtime.NewRegistry(st, mirror)
	go registry.Run(context.Background())

	// The discovery slice is always live; per-entity subscriptions come and
	// go with socket watchers.
	discoveryKey, discoveryCollection, discoveryQuery := services.PublicEventsSubscription()
	if err := registry.Subscribe(discoveryKey, discoveryCollection, discoveryQuery); err != nil {
		log.Fatalf("Failed to subscribe discovery view: %v", err)
	}

	// Initialize Services
	eventService := &services.EventService{Store: st, Mirror: mirror}
	rsvpService := &services.RsvpService{Store: st, Mirror: mirror}
	chatService := &services.ChatService{Store: st}
	ratingService := &services.RatingService{Store: st}
	commentService := &services.CommentService{Store: st}

	// Set up the server port
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("Using server port: %s\n", port)

	// Initialize the router
	r := mux.NewRouter()

	// Register a welcome route
	r.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, "Welcome to RiEvent")
	}).Methods("GET")

	// Register a health check endpoint
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		response := map[string]string{"status": "healthy"}
		json.NewEncoder(w).Encode(response)
	}).Methods("GET")

	// Register routes
	routes.RegisterEventRoutes(r, eventService)
	routes.RegisterRsvpRoutes(r, rsvpService)
	routes.RegisterChatRoutes(r, chatService)
	routes.RegisterRatingRoutes(r, ratingService)
	routes.RegisterCommentRoutes(r, commentService)
	routes.RegisterDeepLinkRoutes(r)

	// Mount the realtime bridge
	socketServer := socket.NewSocketServer(registry)
	go func() {
		if err := socketServer.Serve(); err != nil {
			log.Fatalf("Socket server failed: %v", err)
		}
	}()
	defer socketServer.Close()
	r.Handle("/socket.io/", socketServer)

	// Add CORS middleware
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"}, // Adjust for specific domains if needed
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}).Handler(r)

	// Start the HTTP server
	log.Printf("Starting server on port %s...\n", port)
	log.Fatal(http.ListenAndServe(":"+port, corsHandler))
}
