// Package model defines data structures for the content assistant.
package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	// DefaultTitle is the title assigned to a freshly created conversation.
	DefaultTitle = "New Conversation"

	// LegacyDefaultTitle is the lowercase form the first-prompt rename checks
	// against. Only conversations stored with this exact title get renamed.
	LegacyDefaultTitle = "new Conversation"

	// DefaultPlatform marks a conversation without a target platform.
	DefaultPlatform = "none"
)

// Conversation represents a user-owned thread of messages with an optional
// target-platform tag.
type Conversation struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Title     string             `json:"title" bson:"title"`
	Platform  string             `json:"platform" bson:"platform"`
	UserID    string             `json:"user_id" bson:"user_id"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time          `json:"updated_at" bson:"updated_at"`
}

// UpdateConversationRequest is the request to update a conversation. Only the
// fields listed here are mutable; anything else in the body is ignored.
type UpdateConversationRequest struct {
	Title    *string `json:"title,omitempty"`
	Platform *string `json:"platform,omitempty"`
}
