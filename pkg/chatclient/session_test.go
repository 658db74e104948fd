package chatclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

// stubAPI is a minimal in-memory rendition of the server used to drive the
// session flow end to end.
type stubAPI struct {
	mu            sync.Mutex
	nextID        int
	conversations map[string]Conversation
	messages      map[string][]Message
	generateText  string
	failGenerate  bool
	failAppend    bool
}

func newStubAPI() *stubAPI {
	return &stubAPI{
		conversations: make(map[string]Conversation),
		messages:      make(map[string][]Message),
		generateText:  "stub reply",
	}
}

func (s *stubAPI) newID() string {
	s.nextID++
	return fmt.Sprintf("%024d", s.nextID)
}

func (s *stubAPI) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/conversations", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		switch r.Method {
		case http.MethodPost:
			conv := Conversation{
				ID:        s.newID(),
				Title:     "New Conversation",
				Platform:  "none",
				UserID:    "user-a",
				CreatedAt: time.Now().UTC(),
				UpdatedAt: time.Now().UTC(),
			}
			s.conversations[conv.ID] = conv
			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(conv)
		case http.MethodGet:
			out := make([]Conversation, 0, len(s.conversations))
			for _, conv := range s.conversations {
				out = append(out, conv)
			}
			json.NewEncoder(w).Encode(out)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})
	mux.HandleFunc("/api/v1/conversations/", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()

		rest := strings.TrimPrefix(r.URL.Path, "/api/v1/conversations/")
		id, sub, _ := strings.Cut(rest, "/")
		conv, ok := s.conversations[id]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]string{"error": "conversation not found"})
			return
		}

		switch {
		case sub == "" && r.Method == http.MethodGet:
			json.NewEncoder(w).Encode(conv)
		case sub == "" && r.Method == http.MethodDelete:
			delete(s.conversations, id)
			delete(s.messages, id)
			w.WriteHeader(http.StatusNoContent)
		case sub == "messages" && r.Method == http.MethodGet:
			msgs := s.messages[id]
			if msgs == nil {
				msgs = []Message{}
			}
			json.NewEncoder(w).Encode(msgs)
		case sub == "messages" && r.Method == http.MethodPost:
			if s.failAppend {
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(map[string]string{"error": "failed to append message"})
				return
			}
			var req AppendMessageRequest
			json.NewDecoder(r.Body).Decode(&req)
			msg := Message{
				ID:             s.newID(),
				ConversationID: id,
				Role:           req.Role,
				Content:        req.Content,
				RealAIResponse: req.RealAIResponse,
				CreatedAt:      time.Now().UTC(),
			}
			s.messages[id] = append(s.messages[id], msg)
			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(msg)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})
	mux.HandleFunc("/api/v1/generate", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.failGenerate {
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(map[string]string{"error": "failed to generate content"})
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"content": s.generateText})
	})
	return mux
}

func newSessionFixture(t *testing.T) (*stubAPI, *Client) {
	t.Helper()
	api := newStubAPI()
	server := httptest.NewServer(api.handler())
	t.Cleanup(server.Close)
	return api, New(server.URL, "test-token")
}

func TestSendPersistsBothTurns(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	api, client := newSessionFixture(t)
	api.generateText = "Here's your post!"

	session := NewSession(client)
	if err := session.Send(ctx, "write a post"); err != nil {
		t.Fatalf("send: %v", err)
	}

	if session.Conversation() == nil {
		t.Fatal("expected conversation to be created on first send")
	}

	msgs := session.Messages()
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
	for i, m := range msgs {
		if m.State != StateConfirmed {
			t.Fatalf("message %d still pending", i)
		}
	}
	if msgs[0].Message.Role != "user" || msgs[0].Message.Content != "write a post" {
		t.Fatalf("unexpected user turn: %+v", msgs[0].Message)
	}
	if msgs[1].Message.Role != "assistant" || msgs[1].Message.Content != "Here's your post!" {
		t.Fatalf("unexpected assistant turn: %+v", msgs[1].Message)
	}
	if !msgs[1].Message.RealAIResponse {
		t.Fatal("assistant turn should carry real_ai_response")
	}

	// Both turns landed server-side.
	stored := api.messages[session.Conversation().ID]
	if len(stored) != 2 {
		t.Fatalf("expected 2 persisted messages, got %d", len(stored))
	}
}

func TestSendGenerateFailurePrunesPending(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	api, client := newSessionFixture(t)

	session := NewSession(client)
	if err := session.Send(ctx, "first turn"); err != nil {
		t.Fatalf("first send: %v", err)
	}

	api.failGenerate = true
	err := session.Send(ctx, "second turn")
	if err == nil {
		t.Fatal("expected error when generation fails")
	}
	if !strings.Contains(err.Error(), "generate") {
		t.Fatalf("expected generate step in error, got: %v", err)
	}

	// The second user turn was persisted before generation failed, so it
	// stays; only the unconfirmed assistant placeholder is pruned.
	msgs := session.Messages()
	if len(msgs) != 3 {
		t.Fatalf("expected 3 messages after failed turn, got %d", len(msgs))
	}
	for i, m := range msgs {
		if m.State != StateConfirmed {
			t.Fatalf("message %d still pending after prune", i)
		}
	}
	if msgs[2].Message.Role != "user" || msgs[2].Message.Content != "second turn" {
		t.Fatalf("unexpected last message: %+v", msgs[2].Message)
	}
}

func TestSendAppendFailureRollsBackUserTurn(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	api, client := newSessionFixture(t)

	session := NewSession(client)
	if err := session.Send(ctx, "first turn"); err != nil {
		t.Fatalf("first send: %v", err)
	}
	before := len(session.Messages())

	api.failAppend = true
	if err := session.Send(ctx, "doomed turn"); err == nil {
		t.Fatal("expected error when persist fails")
	}

	msgs := session.Messages()
	if len(msgs) != before {
		t.Fatalf("expected %d messages after rollback, got %d", before, len(msgs))
	}
	for i, m := range msgs {
		if m.State != StateConfirmed {
			t.Fatalf("message %d still pending after rollback", i)
		}
	}
}

func TestSendEmptyPromptRejectedLocally(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	api, client := newSessionFixture(t)

	session := NewSession(client)
	if err := session.Send(ctx, ""); err == nil {
		t.Fatal("expected error for empty prompt")
	}
	if len(api.conversations) != 0 {
		t.Fatal("conversation created for empty prompt")
	}
}

func TestOpenSessionLoadsExistingMessages(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	api, client := newSessionFixture(t)

	first := NewSession(client)
	if err := first.Send(ctx, "hello"); err != nil {
		t.Fatalf("send: %v", err)
	}
	convID := first.Conversation().ID

	reopened, err := OpenSession(ctx, client, convID)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	msgs := reopened.Messages()
	if len(msgs) != 2 {
		t.Fatalf("expected 2 loaded messages, got %d", len(msgs))
	}
	for i, m := range msgs {
		if m.State != StateConfirmed {
			t.Fatalf("loaded message %d not confirmed", i)
		}
	}
	_ = api
}

func TestHistoryDeleteFiltersLocally(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	api, client := newSessionFixture(t)

	for i := 0; i < 3; i++ {
		if _, err := client.CreateConversation(ctx); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	history, err := LoadHistory(ctx, client)
	if err != nil {
		t.Fatalf("load history: %v", err)
	}
	convs := history.Conversations()
	if len(convs) != 3 {
		t.Fatalf("expected 3 conversations, got %d", len(convs))
	}

	if err := history.Delete(ctx, convs[0].ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	remaining := history.Conversations()
	if len(remaining) != 2 {
		t.Fatalf("expected 2 conversations after delete, got %d", len(remaining))
	}
	for _, conv := range remaining {
		if conv.ID == convs[0].ID {
			t.Fatal("deleted conversation still present locally")
		}
	}
	if _, ok := api.conversations[convs[0].ID]; ok {
		t.Fatal("conversation not deleted server-side")
	}
}

func TestHistoryDeleteFailureLeavesListUntouched(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	_, client := newSessionFixture(t)

	if _, err := client.CreateConversation(ctx); err != nil {
		t.Fatalf("create: %v", err)
	}
	history, err := LoadHistory(ctx, client)
	if err != nil {
		t.Fatalf("load history: %v", err)
	}

	if err := history.Delete(ctx, "000000000000000000000bad"); err == nil {
		t.Fatal("expected error deleting unknown conversation")
	}
	if got := len(history.Conversations()); got != 1 {
		t.Fatalf("list changed by failed delete: %d entries", got)
	}
}
