package controllers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"rievent_server/models"
	"rievent_server/services"

	"github.com/gorilla/mux"
)

// EventController struct
type EventController struct {
	EventService *services.EventService
}

// NewEventController initializes the event controller
func NewEventController(service *services.EventService) *EventController {
	return &EventController{EventService: service}
}

// HandleCreateEvent - Create a new event
func (c *EventController) HandleCreateEvent(w http.ResponseWriter, r *http.Request) {
	var event models.Event
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		http.Error(w, `{"error": "Invalid request body"}`, http.StatusBadRequest)
		return
	}

	created, err := c.EventService.CreateEvent(context.TODO(), event)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

// HandleGetEvent - Fetch one event by id
func (c *EventController) HandleGetEvent(w http.ResponseWriter, r *http.Request) {
	eventID := mux.Vars(r)["eventId"]

	event, err := c.EventService.GetEvent(context.TODO(), eventID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, event)
}

// HandleUpdateEvent - Replace an event's mutable fields (owner only)
func (c *EventController) HandleUpdateEvent(w http.ResponseWriter, r *http.Request) {
	eventID := mux.Vars(r)["eventId"]

	var request struct {
		CallerID string       `json:"callerId"`
		Event    models.Event `json:"event"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, `{"error": "Invalid request body"}`, http.StatusBadRequest)
		return
	}

	if err := c.EventService.UpdateEvent(context.TODO(), eventID, request.CallerID, request.Event); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

// HandleDeleteEvent - Delete an event (owner only)
func (c *EventController) HandleDeleteEvent(w http.ResponseWriter, r *http.Request) {
	eventID := mux.Vars(r)["eventId"]
	callerID := r.URL.Query().Get("callerId")

	if err := c.EventService.DeleteEvent(context.TODO(), eventID, callerID); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

// HandleVisibleEvents - Run the filter pipeline over the mirrored discovery
// slice
func (c *EventController) HandleVisibleEvents(w http.ResponseWriter, r *http.Request) {
	criteria := models.FilterCriteria{
		Text:         r.URL.Query().Get("text"),
		SearchByUser: r.URL.Query().Get("byUser") == "true",
		Category:     r.URL.Query().Get("category"),
	}

	if dateStr := r.URL.Query().Get("date"); dateStr != "" {
		date, err := time.ParseInLocation("2006-01-02", dateStr, time.Local)
		if err != nil {
			http.Error(w, `{"error": "Invalid date, expected YYYY-MM-DD"}`, http.StatusBadRequest)
			return
		}
		criteria.Date = &date
	}

	if radiusStr := r.URL.Query().Get("radiusKm"); radiusStr != "" {
		radius, err := strconv.ParseFloat(radiusStr, 64)
		if err != nil {
			http.Error(w, `{"error": "Invalid radiusKm"}`, http.StatusBadRequest)
			return
		}
		criteria.RadiusKm = radius

		lat, latErr := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
		lon, lonErr := strconv.ParseFloat(r.URL.Query().Get("lon"), 64)
		if latErr == nil && lonErr == nil {
			criteria.UserLocation = &models.GeoPoint{Latitude: lat, Longitude: lon}
		}
	}

	log.Printf("🔍 Deriving visible events with criteria: %+v", criteria)

	events, err := c.EventService.VisibleEvents(criteria)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, events)
}
