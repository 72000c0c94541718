package models

// ✅ RSVP states (coming, maybe, not coming)
const (
	RsvpStatusComing    = "coming"
	RsvpStatusMaybe     = "maybe"
	RsvpStatusNotComing = "not_coming"
	RsvpStatusNone      = "none"
)

// ✅ Category sentinel meaning "no category filter"
const CategoryAny = "Any"

// ✅ Distance sentinel meaning "no radius filter" (kilometres)
const RadiusAny = 0.0

// ✅ Push payload types for deep links
const (
	PushTypeEvent = "event"
	PushTypeChat  = "chat"
)

// ✅ Navigation targets consumed by the navigation layer
const (
	ScreenEventDetails = "EventDetails"
	ScreenChat         = "ChatScreen"
)

// TimestampLayout is the fixed-width RFC3339 layout for server-assigned
// message and comment timestamps. Trailing zeros are kept so lexicographic
// order equals chronological order.
const TimestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Display bound for comment lists
const CommentDisplayLimit = 50

// Rating bounds
const (
	RatingMin = 1
	RatingMax = 5
)
