package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/aide-ai/content-assistant/internal/llm"
	"github.com/aide-ai/content-assistant/internal/model"
	"github.com/aide-ai/content-assistant/internal/store"
	"github.com/aide-ai/content-assistant/pkg/logger"
	"github.com/aide-ai/content-assistant/pkg/metrics"
)

// ErrEmptyPrompt is returned when a generation request carries no prompt.
var ErrEmptyPrompt = errors.New("prompt is required")

// titleMaxLen is how much of the first prompt becomes the conversation title.
const titleMaxLen = 30

// promptTemplate wraps the newest user prompt with the assistant persona.
const promptTemplate = `
You are Aide, an AI Blog Assistant designed to create engaging, platform-specific content (LinkedIn, Twitter, Medium, Instagram).

Guidelines:
- If no platform is specified, pick one randomly (e.g., Medium).
- If the prompt is gibberish, reply humorously.
- If it's a greeting (e.g., "Hello", "Good morning"), reintroduce yourself and remind the user what you can do.
- Always keep tone friendly, professional, and emoji-enhanced.

New user prompt: "%s"
`

// GenerationService orchestrates calls to the text-generation provider.
type GenerationService struct {
	llmClient     llm.Client
	conversations store.ConversationStore
	logger        *logger.Logger
}

// NewGenerationService creates a new generation service.
func NewGenerationService(llmClient llm.Client, conversations store.ConversationStore, log *logger.Logger) *GenerationService {
	return &GenerationService{
		llmClient:     llmClient,
		conversations: conversations,
		logger:        log,
	}
}

// Generate forwards the prompt plus prior history to the provider and returns
// the generated text. It persists no messages; appending the returned content
// is the caller's responsibility. As a side effect, a conversation still
// carrying the lowercase legacy placeholder title is renamed to the truncated
// prompt.
func (s *GenerationService) Generate(ctx context.Context, userID string, req *model.GenerateRequest) (string, error) {
	if req.Prompt == "" {
		return "", ErrEmptyPrompt
	}
	if s.llmClient == nil {
		return "", errors.New("no generation provider configured")
	}

	history := make([]llm.ChatMessage, 0, len(req.Messages)+1)
	for _, msg := range req.Messages {
		history = append(history, llm.ChatMessage{
			Role:    string(msg.Role),
			Content: msg.Content,
		})
	}
	history = append(history, llm.ChatMessage{
		Role:    "user",
		Content: fmt.Sprintf(promptTemplate, req.Prompt),
	})

	start := time.Now()
	resp, err := s.llmClient.Complete(ctx, &llm.CompletionRequest{
		Messages:  history,
		MaxTokens: 4096,
	})
	duration := time.Since(start).Seconds()
	if err != nil {
		metrics.RecordGeneration(s.llmClient.Name(), "error", duration)
		s.logger.Error("generation failed",
			zap.String("provider", s.llmClient.Name()),
			zap.Error(err),
		)
		return "", fmt.Errorf("generation failed: %w", err)
	}
	metrics.RecordGeneration(s.llmClient.Name(), "success", duration)

	s.maybeRenameConversation(ctx, userID, req.ConversationID, req.Prompt)

	return resp.Content, nil
}

// maybeRenameConversation replaces the legacy placeholder title with the
// truncated prompt. Best-effort: failures are logged, never surfaced.
func (s *GenerationService) maybeRenameConversation(ctx context.Context, userID, conversationID, prompt string) {
	id, err := primitive.ObjectIDFromHex(conversationID)
	if err != nil {
		return
	}

	conv, err := s.conversations.GetOwned(ctx, userID, id)
	if err != nil {
		return
	}
	if conv.Title != model.LegacyDefaultTitle {
		return
	}

	title := prompt
	if runes := []rune(title); len(runes) > titleMaxLen {
		title = string(runes[:titleMaxLen]) + "..."
	}
	if _, err := s.conversations.UpdateOwned(ctx, userID, id, store.ConversationUpdate{Title: &title}); err != nil {
		s.logger.Warn("failed to rename conversation",
			zap.String("conversation_id", conversationID),
			zap.Error(err),
		)
		return
	}
	metrics.TitleRenamesTotal.Inc()
}
