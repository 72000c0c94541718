package services

import (
	"rievent_server/models"
	"rievent_server/store"
)

// Subscription keys are the registry's identity space: one key per visible
// slice of the remote store. The helpers below pair each key with the query
// that feeds it.

// PublicEventsKey identifies the discovery-view subscription.
const PublicEventsKey = "events:public"

// PublicEventsSubscription watches every public event.
func PublicEventsSubscription() (string, string, store.Query) {
	return PublicEventsKey, models.EventsTable, store.Query{Field: "public", Equals: true}
}

// OwnerEventsKey identifies the "my events" subscription for one owner.
func OwnerEventsKey(ownerID string) string {
	return "events:owner:" + ownerID
}

// OwnerEventsSubscription watches every event owned by ownerID.
func OwnerEventsSubscription(ownerID string) (string, string, store.Query) {
	return OwnerEventsKey(ownerID), models.EventsTable, store.Query{Field: "ownerId", Equals: ownerID}
}

// EventKey identifies the single-event detail subscription.
func EventKey(eventID string) string {
	return "event:" + eventID
}

// EventSubscription watches one event document.
func EventSubscription(eventID string) (string, string, store.Query) {
	return EventKey(eventID), models.EventsTable, store.Query{Key: eventID}
}

// RsvpKey identifies the per-event RSVP subscription.
func RsvpKey(eventID string) string {
	return "rsvp:" + eventID
}

// RsvpSubscription watches one event's RSVP record.
func RsvpSubscription(eventID string) (string, string, store.Query) {
	return RsvpKey(eventID), models.RsvpTable, store.Query{Key: eventID}
}

// ChatKey identifies the open-thread message subscription.
func ChatKey(chatID string) string {
	return "chat:" + chatID
}

// ChatSubscription watches one thread's messages in ascending timestamp
// order.
func ChatSubscription(chatID string) (string, string, store.Query) {
	return ChatKey(chatID), models.MessagesTable, store.Query{
		Field:   "chatId",
		Equals:  chatID,
		OrderBy: "createdAt",
	}
}

// RatingsKey identifies the per-event rating-set subscription.
func RatingsKey(eventID string) string {
	return "ratings:" + eventID
}

// RatingsSubscription watches the full rating set for an event.
func RatingsSubscription(eventID string) (string, string, store.Query) {
	return RatingsKey(eventID), models.RatingsTable, store.Query{Field: "eventId", Equals: eventID}
}

// CommentsKey identifies the per-event comment subscription.
func CommentsKey(eventID string) string {
	return "comments:" + eventID
}

// CommentsSubscription watches the most recent comments for an event,
// newest first.
func CommentsSubscription(eventID string) (string, string, store.Query) {
	return CommentsKey(eventID), models.CommentsTable, store.Query{
		Field:      "eventId",
		Equals:     eventID,
		OrderBy:    "createdAt",
		Descending: true,
		Limit:      models.CommentDisplayLimit,
	}
}
