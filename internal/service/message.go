package service

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/aide-ai/content-assistant/internal/model"
	"github.com/aide-ai/content-assistant/internal/store"
	"github.com/aide-ai/content-assistant/pkg/logger"
	"github.com/aide-ai/content-assistant/pkg/metrics"
)

// ErrInvalidRole is returned for message roles outside the permitted enum.
var ErrInvalidRole = errors.New("role must be \"user\" or \"assistant\"")

// MessageService handles message operations.
type MessageService struct {
	messages      store.MessageStore
	conversations store.ConversationStore
	logger        *logger.Logger
}

// NewMessageService creates a new message service.
func NewMessageService(messages store.MessageStore, conversations store.ConversationStore, log *logger.Logger) *MessageService {
	return &MessageService{
		messages:      messages,
		conversations: conversations,
		logger:        log,
	}
}

// List returns a conversation's messages oldest-first, after verifying the
// conversation belongs to the user.
func (s *MessageService) List(ctx context.Context, userID string, conversationID primitive.ObjectID) ([]model.Message, error) {
	if _, err := s.conversations.GetOwned(ctx, userID, conversationID); err != nil {
		return nil, err
	}
	return s.messages.ListByConversation(ctx, conversationID)
}

// Append inserts a message and touches the parent conversation so it resorts
// to the top of the conversation list.
func (s *MessageService) Append(ctx context.Context, userID string, conversationID primitive.ObjectID, req *model.AppendMessageRequest) (*model.Message, error) {
	if _, err := s.conversations.GetOwned(ctx, userID, conversationID); err != nil {
		return nil, err
	}
	if !req.Role.Valid() {
		return nil, ErrInvalidRole
	}

	now := time.Now().UTC()
	msg := &model.Message{
		ConversationID: conversationID,
		Role:           req.Role,
		Content:        req.Content,
		ShowPlatforms:  req.ShowPlatforms,
		RealAIResponse: req.RealAIResponse,
		CreatedAt:      now,
	}

	if err := s.messages.Insert(ctx, msg); err != nil {
		return nil, err
	}

	if err := s.conversations.Touch(ctx, conversationID, now); err != nil {
		s.logger.Warn("failed to touch conversation",
			zap.String("conversation_id", conversationID.Hex()),
			zap.Error(err),
		)
	}

	metrics.MessagesTotal.WithLabelValues(string(req.Role)).Inc()
	return msg, nil
}
