package models

// LastMessage is the denormalized summary kept on a thread so chat lists
// render without fetching message bodies.
type LastMessage struct {
	Text      string `dynamodbav:"text" json:"text"`
	SenderID  string `dynamodbav:"senderId" json:"senderId"`
	CreatedAt string `dynamodbav:"createdAt" json:"createdAt"`
}

// ChatThread is a two-party conversation. Its key is the canonical thread key
// (the sorted participant id pair joined by "_"), so both sides resolve the
// same thread before it exists.
type ChatThread struct {
	ChatID          string                    `dynamodbav:"chatId" json:"chatId"`
	Participants    []string                  `dynamodbav:"participants" json:"participants"`
	ParticipantInfo map[string]ParticipantRef `dynamodbav:"participantInfo" json:"participantInfo"`
	LastMessage     *LastMessage              `dynamodbav:"lastMessage,omitempty" json:"lastMessage,omitempty"`
	Unread          map[string]bool           `dynamodbav:"unread" json:"unread"`
	CreatedAt       string                    `dynamodbav:"createdAt" json:"createdAt"`
}

// Message is append-only and immutable once written, ordered by the
// server-assigned createdAt timestamp.
type Message struct {
	MessageID string `dynamodbav:"messageId" json:"messageId"`
	ChatID    string `dynamodbav:"chatId" json:"chatId"`
	SenderID  string `dynamodbav:"senderId" json:"senderId"`
	Text      string `dynamodbav:"text" json:"text"`
	CreatedAt string `dynamodbav:"createdAt" json:"createdAt"`
}

// ChatsTable is the DynamoDB table name for chat threads
const ChatsTable = "Chats"

// MessagesTable is the DynamoDB table name for chat messages
const MessagesTable = "Messages"
