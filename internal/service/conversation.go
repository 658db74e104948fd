// Package service provides business logic for the content assistant.
package service

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/aide-ai/content-assistant/internal/model"
	"github.com/aide-ai/content-assistant/internal/store"
	"github.com/aide-ai/content-assistant/pkg/logger"
	"github.com/aide-ai/content-assistant/pkg/metrics"
)

// ConversationService handles conversation operations.
type ConversationService struct {
	conversations store.ConversationStore
	messages      store.MessageStore
	logger        *logger.Logger
}

// NewConversationService creates a new conversation service.
func NewConversationService(conversations store.ConversationStore, messages store.MessageStore, log *logger.Logger) *ConversationService {
	return &ConversationService{
		conversations: conversations,
		messages:      messages,
		logger:        log,
	}
}

// Create creates an empty conversation with the placeholder title and no
// target platform.
func (s *ConversationService) Create(ctx context.Context, userID string) (*model.Conversation, error) {
	now := time.Now().UTC()
	conv := &model.Conversation{
		Title:     model.DefaultTitle,
		Platform:  model.DefaultPlatform,
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.conversations.Insert(ctx, conv); err != nil {
		return nil, err
	}

	metrics.ConversationsTotal.Inc()
	s.logger.Info("conversation created",
		zap.String("conversation_id", conv.ID.Hex()),
		zap.String("user_id", userID),
	)
	return conv, nil
}

// List returns the user's conversations, most recently updated first.
func (s *ConversationService) List(ctx context.Context, userID string) ([]model.Conversation, error) {
	return s.conversations.ListByUser(ctx, userID)
}

// Get fetches a conversation owned by the user.
func (s *ConversationService) Get(ctx context.Context, userID string, id primitive.ObjectID) (*model.Conversation, error) {
	return s.conversations.GetOwned(ctx, userID, id)
}

// Update applies the allow-listed fields and returns the updated record.
func (s *ConversationService) Update(ctx context.Context, userID string, id primitive.ObjectID, req *model.UpdateConversationRequest) (*model.Conversation, error) {
	return s.conversations.UpdateOwned(ctx, userID, id, store.ConversationUpdate{
		Title:    req.Title,
		Platform: req.Platform,
	})
}

// Delete removes a conversation and all of its messages.
func (s *ConversationService) Delete(ctx context.Context, userID string, id primitive.ObjectID) error {
	if err := s.conversations.DeleteOwned(ctx, userID, id); err != nil {
		return err
	}
	if err := s.messages.DeleteByConversation(ctx, id); err != nil {
		// The conversation is already gone; surface the leak in logs rather
		// than failing a delete the user can no longer observe.
		s.logger.Error("failed to delete conversation messages",
			zap.String("conversation_id", id.Hex()),
			zap.Error(err),
		)
	}
	return nil
}
