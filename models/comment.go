package models

// CommentRecord is append-only per event and immutable once written.
type CommentRecord struct {
	CommentID  string `dynamodbav:"commentId" json:"commentId"`
	EventID    string `dynamodbav:"eventId" json:"eventId"`
	AuthorID   string `dynamodbav:"authorId" json:"authorId"`
	AuthorName string `dynamodbav:"authorName" json:"authorName"`
	Text       string `dynamodbav:"text" json:"text"`
	CreatedAt  string `dynamodbav:"createdAt" json:"createdAt"`
}

// CommentsTable is the DynamoDB table name for comments
const CommentsTable = "Comments"
