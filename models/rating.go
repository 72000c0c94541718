package models

// RatingRecord is the upsert target for one author's rating of one event.
type RatingRecord struct {
	RatingID  string `dynamodbav:"ratingId" json:"ratingId"`
	EventID   string `dynamodbav:"eventId" json:"eventId"`
	AuthorID  string `dynamodbav:"authorId" json:"authorId"`
	Value     int    `dynamodbav:"value" json:"value"`
	UpdatedAt string `dynamodbav:"updatedAt" json:"updatedAt"`
}

// RatingSummary is the pure derivation over the live rating set.
type RatingSummary struct {
	EventID string  `json:"eventId"`
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}

// RatingsTable is the DynamoDB table name for ratings
const RatingsTable = "Ratings"
