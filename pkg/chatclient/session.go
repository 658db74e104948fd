package chatclient

import (
	"context"
	"fmt"
)

// MessageState distinguishes optimistic entries from server-confirmed ones.
type MessageState int

const (
	// StatePending marks a message inserted locally but not yet persisted.
	StatePending MessageState = iota
	// StateConfirmed marks a message the server has persisted.
	StateConfirmed
)

// ChatMessage is a message plus its confirmation state. Pending entries carry
// no server ID; confirmation replaces the whole entry with the persisted
// record.
type ChatMessage struct {
	State   MessageState
	Message Message
}

// Session holds the in-memory state of one open conversation and drives the
// send flow: optimistic insert, persist user turn, generate, persist
// assistant turn. All calls are sequential; a failure at any step prunes
// every pending entry and surfaces the error.
type Session struct {
	client       *Client
	conversation *Conversation
	messages     []ChatMessage
}

// NewSession creates a session with no conversation yet. The conversation is
// created on the first Send.
func NewSession(client *Client) *Session {
	return &Session{client: client}
}

// OpenSession loads an existing conversation and its messages.
func OpenSession(ctx context.Context, client *Client, conversationID string) (*Session, error) {
	conv, err := client.GetConversation(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	msgs, err := client.ListMessages(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	s := &Session{client: client, conversation: conv}
	for _, msg := range msgs {
		s.messages = append(s.messages, ChatMessage{State: StateConfirmed, Message: msg})
	}
	return s, nil
}

// Conversation returns the session's conversation, or nil before first Send.
func (s *Session) Conversation() *Conversation {
	return s.conversation
}

// Messages returns a copy of the session's messages, pending entries included.
func (s *Session) Messages() []ChatMessage {
	out := make([]ChatMessage, len(s.messages))
	copy(out, s.messages)
	return out
}

// Send runs one full user turn. The user message appears immediately as
// pending and is swapped for the persisted record once the server confirms
// it; the assistant placeholder follows the same path after generation.
func (s *Session) Send(ctx context.Context, prompt string) error {
	if prompt == "" {
		return fmt.Errorf("prompt is empty")
	}

	// A brand-new chat must create and address the conversation before any
	// message can be inserted.
	if s.conversation == nil {
		conv, err := s.client.CreateConversation(ctx)
		if err != nil {
			return fmt.Errorf("create conversation: %w", err)
		}
		s.conversation = conv
	}
	convID := s.conversation.ID

	// Snapshot of confirmed history before this turn; the generation request
	// carries it as context.
	history := s.confirmedMessages()

	userIdx := s.appendPending(Message{
		ConversationID: convID,
		Role:           "user",
		Content:        prompt,
	})

	saved, err := s.client.AppendMessage(ctx, convID, AppendMessageRequest{
		Role:    "user",
		Content: prompt,
	})
	if err != nil {
		s.prunePending()
		return fmt.Errorf("persist user message: %w", err)
	}
	s.confirm(userIdx, *saved)

	assistantIdx := s.appendPending(Message{
		ConversationID: convID,
		Role:           "assistant",
		RealAIResponse: true,
	})

	content, err := s.client.Generate(ctx, GenerateRequest{
		Prompt:         prompt,
		ConversationID: convID,
		Messages:       history,
	})
	if err != nil {
		s.prunePending()
		return fmt.Errorf("generate: %w", err)
	}

	savedAssistant, err := s.client.AppendMessage(ctx, convID, AppendMessageRequest{
		Role:           "assistant",
		Content:        content,
		RealAIResponse: true,
	})
	if err != nil {
		s.prunePending()
		return fmt.Errorf("persist assistant message: %w", err)
	}
	s.confirm(assistantIdx, *savedAssistant)

	return nil
}

func (s *Session) confirmedMessages() []Message {
	var out []Message
	for _, m := range s.messages {
		if m.State == StateConfirmed {
			out = append(out, m.Message)
		}
	}
	return out
}

func (s *Session) appendPending(msg Message) int {
	s.messages = append(s.messages, ChatMessage{State: StatePending, Message: msg})
	return len(s.messages) - 1
}

func (s *Session) confirm(idx int, msg Message) {
	s.messages[idx] = ChatMessage{State: StateConfirmed, Message: msg}
}

func (s *Session) prunePending() {
	kept := s.messages[:0]
	for _, m := range s.messages {
		if m.State == StateConfirmed {
			kept = append(kept, m)
		}
	}
	s.messages = kept
}

// History is the conversation sidebar state: fetched once, updated locally.
type History struct {
	client        *Client
	conversations []Conversation
}

// LoadHistory fetches the caller's conversation list.
func LoadHistory(ctx context.Context, client *Client) (*History, error) {
	convs, err := client.ListConversations(ctx)
	if err != nil {
		return nil, err
	}
	return &History{client: client, conversations: convs}, nil
}

// Conversations returns the locally held list.
func (h *History) Conversations() []Conversation {
	out := make([]Conversation, len(h.conversations))
	copy(out, h.conversations)
	return out
}

// Delete removes a conversation server-side, then filters it from the local
// list. The list is never re-fetched; a failed delete leaves it untouched.
func (h *History) Delete(ctx context.Context, id string) error {
	if err := h.client.DeleteConversation(ctx, id); err != nil {
		return err
	}
	kept := h.conversations[:0]
	for _, conv := range h.conversations {
		if conv.ID != id {
			kept = append(kept, conv)
		}
	}
	h.conversations = kept
	return nil
}
