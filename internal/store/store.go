// Package store provides persistence for conversations, messages, and users.
//
// The Mongo-backed implementation is the production store; the in-memory
// implementation backs tests. Both enforce ownership in the store itself: a
// record owned by another user is indistinguishable from an absent one.
package store

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/aide-ai/content-assistant/internal/model"
)

// ErrNotFound is returned when a record is absent or owned by a different user.
var ErrNotFound = errors.New("not found")

// ConversationUpdate is the allow-list of mutable conversation fields. Nil
// fields are left untouched; updated_at is always bumped.
type ConversationUpdate struct {
	Title    *string
	Platform *string
}

// ConversationStore persists conversations.
type ConversationStore interface {
	Insert(ctx context.Context, conv *model.Conversation) error
	ListByUser(ctx context.Context, userID string) ([]model.Conversation, error)
	GetOwned(ctx context.Context, userID string, id primitive.ObjectID) (*model.Conversation, error)
	UpdateOwned(ctx context.Context, userID string, id primitive.ObjectID, update ConversationUpdate) (*model.Conversation, error)
	DeleteOwned(ctx context.Context, userID string, id primitive.ObjectID) error

	// Touch bumps updated_at so the conversation resorts to the top of the list.
	Touch(ctx context.Context, id primitive.ObjectID, at time.Time) error
}

// MessageStore persists messages. Messages are immutable once inserted.
type MessageStore interface {
	Insert(ctx context.Context, msg *model.Message) error
	ListByConversation(ctx context.Context, conversationID primitive.ObjectID) ([]model.Message, error)
	DeleteByConversation(ctx context.Context, conversationID primitive.ObjectID) error
}

// UserStore persists identity-provider user mirrors.
type UserStore interface {
	// Upsert creates or refreshes a user keyed by provider ID. Receiving the
	// same user more than once must leave exactly one record.
	Upsert(ctx context.Context, user *model.User) error
	GetByProviderID(ctx context.Context, providerID string) (*model.User, error)
}
