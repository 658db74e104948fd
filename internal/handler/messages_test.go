package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/aide-ai/content-assistant/internal/model"
)

func createConversation(t *testing.T, env *testEnv, userID string) model.Conversation {
	t.Helper()
	rec := env.doJSON(t, http.MethodPost, "/api/v1/conversations", userID, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create conversation: %d: %s", rec.Code, rec.Body.String())
	}
	var conv model.Conversation
	decodeBody(t, rec, &conv)
	return conv
}

func TestAppendAndListMessages(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, "")
	conv := createConversation(t, env, "user-a")
	base := "/api/v1/conversations/" + conv.ID.Hex() + "/messages"

	rec := env.doJSON(t, http.MethodPost, base, "user-a", model.AppendMessageRequest{
		Role:    model.RoleUser,
		Content: "hi",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("append: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var created model.Message
	decodeBody(t, rec, &created)
	if created.Role != model.RoleUser || created.Content != "hi" {
		t.Fatalf("unexpected message: %+v", created)
	}
	if created.ShowPlatforms || created.RealAIResponse {
		t.Fatal("display flags should default to false")
	}

	rec = env.doJSON(t, http.MethodGet, base, "user-a", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", rec.Code)
	}
	var listed []model.Message
	decodeBody(t, rec, &listed)
	if len(listed) != 1 || listed[0].Content != "hi" {
		t.Fatalf("expected the appended message, got %d entries", len(listed))
	}
}

func TestAppendMessageValidation(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, "")
	conv := createConversation(t, env, "user-a")
	base := "/api/v1/conversations/" + conv.ID.Hex() + "/messages"

	rec := env.doJSON(t, http.MethodPost, base, "user-a", model.AppendMessageRequest{
		Role:    model.RoleUser,
		Content: "",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("empty content: expected 400, got %d", rec.Code)
	}

	rec = env.doJSON(t, http.MethodPost, base, "user-a", model.AppendMessageRequest{
		Role:    "system",
		Content: "hi",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("invalid role: expected 400, got %d", rec.Code)
	}
}

func TestAppendMessageToForeignConversation(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, "")
	conv := createConversation(t, env, "user-a")

	rec := env.doJSON(t, http.MethodPost, "/api/v1/conversations/"+conv.ID.Hex()+"/messages", "user-b",
		model.AppendMessageRequest{Role: model.RoleUser, Content: "hi"})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestDeleteConversationRemovesMessages(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, "")
	conv := createConversation(t, env, "user-a")
	base := "/api/v1/conversations/" + conv.ID.Hex() + "/messages"

	for _, content := range []string{"one", "two"} {
		rec := env.doJSON(t, http.MethodPost, base, "user-a", model.AppendMessageRequest{
			Role:    model.RoleUser,
			Content: content,
		})
		if rec.Code != http.StatusCreated {
			t.Fatalf("append: %d", rec.Code)
		}
	}

	rec := env.doJSON(t, http.MethodDelete, "/api/v1/conversations/"+conv.ID.Hex(), "user-a", nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete: expected 204, got %d", rec.Code)
	}

	msgs, err := env.msgs.ListByConversation(context.Background(), conv.ID)
	if err != nil {
		t.Fatalf("list messages: %v", err)
	}
	if len(msgs) != 0 {
		t.Fatalf("expected cascade delete, %d messages remain", len(msgs))
	}
}
