package models

import "time"

// GeoPoint is a latitude/longitude pair in degrees.
type GeoPoint struct {
	Latitude  float64 `dynamodbav:"latitude" json:"latitude"`
	Longitude float64 `dynamodbav:"longitude" json:"longitude"`
}

// Event is a discoverable item with identity, ownership and a time/location envelope.
type Event struct {
	EventID     string     `dynamodbav:"eventId" json:"eventId"`
	Name        string     `dynamodbav:"name" json:"name"`
	Description string     `dynamodbav:"description" json:"description"`
	Category    string     `dynamodbav:"category" json:"category"`
	OwnerID     string     `dynamodbav:"ownerId" json:"ownerId"`
	OwnerName   string     `dynamodbav:"ownerName" json:"ownerName"`
	Public      bool       `dynamodbav:"public" json:"public"`
	Location    *GeoPoint  `dynamodbav:"location,omitempty" json:"location,omitempty"`
	StartsAt    *time.Time `dynamodbav:"startsAt,omitempty" json:"startsAt,omitempty"`
	EndsAt      *time.Time `dynamodbav:"endsAt,omitempty" json:"endsAt,omitempty"`
	CreatedAt   string     `dynamodbav:"createdAt" json:"createdAt"`
}

// EventsTable is the DynamoDB table name for events
const EventsTable = "Events"
