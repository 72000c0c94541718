package models

// ParticipantRef is a denormalized snapshot of a user, embedded by value so
// attendance and chat lists render without a join.
type ParticipantRef struct {
	UserID      string `dynamodbav:"userId" json:"userId"`
	DisplayName string `dynamodbav:"displayName" json:"displayName"`
}

// RsvpRecord is the per-event tri-state attendance ledger. The record's key
// equals the event id, so there is exactly one record per event. A participant
// id appears in at most one of the three maps at any time.
type RsvpRecord struct {
	EventID   string                    `dynamodbav:"eventId" json:"eventId"`
	Coming    map[string]ParticipantRef `dynamodbav:"coming" json:"coming"`
	Maybe     map[string]ParticipantRef `dynamodbav:"maybe" json:"maybe"`
	NotComing map[string]ParticipantRef `dynamodbav:"notComing" json:"notComing"`
	UpdatedAt string                    `dynamodbav:"updatedAt" json:"updatedAt"`
}

// RsvpSummary is the pure read-path derivation of a record: counts plus the
// current user's state.
type RsvpSummary struct {
	EventID        string `json:"eventId"`
	ComingCount    int    `json:"comingCount"`
	MaybeCount     int    `json:"maybeCount"`
	NotComingCount int    `json:"notComingCount"`
	MyStatus       string `json:"myStatus"`
}

// StatusOf returns which of the three sets holds userID, or RsvpStatusNone.
func (r *RsvpRecord) StatusOf(userID string) string {
	if _, ok := r.Coming[userID]; ok {
		return RsvpStatusComing
	}
	if _, ok := r.Maybe[userID]; ok {
		return RsvpStatusMaybe
	}
	if _, ok := r.NotComing[userID]; ok {
		return RsvpStatusNotComing
	}
	return RsvpStatusNone
}

// RsvpTable is the DynamoDB table name for RSVP records
const RsvpTable = "Rsvps"
