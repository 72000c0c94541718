package store

import "rievent_server/models"

// Schema maps each collection to the name of its key attribute.
type Schema map[string]string

// KeyField returns the key attribute for a collection, defaulting to "id"
// for collections the schema does not name.
func (s Schema) KeyField(collection string) string {
	if field, ok := s[collection]; ok {
		return field
	}
	return "id"
}

// DefaultSchema covers every table this server uses.
func DefaultSchema() Schema {
	return Schema{
		models.EventsTable:   "eventId",
		models.RsvpTable:     "eventId",
		models.ChatsTable:    "chatId",
		models.MessagesTable: "messageId",
		models.RatingsTable:  "ratingId",
		models.CommentsTable: "commentId",
	}
}
