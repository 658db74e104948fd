package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role represents the author of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Valid reports whether the role is one of the permitted values.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAssistant
}

// Message represents one turn in a conversation. Messages are immutable once
// created; ordering is by creation time ascending.
type Message struct {
	ID             primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	ConversationID primitive.ObjectID `json:"conversation_id" bson:"conversation_id"`
	Role           Role               `json:"role" bson:"role"`
	Content        string             `json:"content" bson:"content"`

	// Display hints for the UI.
	ShowPlatforms  bool `json:"show_platforms" bson:"show_platforms"`
	RealAIResponse bool `json:"real_ai_response" bson:"real_ai_response"`

	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// AppendMessageRequest is the request to append a message to a conversation.
type AppendMessageRequest struct {
	Role           Role   `json:"role"`
	Content        string `json:"content"`
	ShowPlatforms  bool   `json:"show_platforms"`
	RealAIResponse bool   `json:"real_ai_response"`
}

// GenerateRequest is the request to generate an assistant reply.
type GenerateRequest struct {
	Prompt         string    `json:"prompt"`
	ConversationID string    `json:"conversation_id"`
	Messages       []Message `json:"messages"`
}

// GenerateResponse carries the generated text back to the caller.
type GenerateResponse struct {
	Content string `json:"content"`
}
