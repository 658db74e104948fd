package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"

	"github.com/aide-ai/content-assistant/internal/llm"
	"github.com/aide-ai/content-assistant/internal/middleware"
	"github.com/aide-ai/content-assistant/internal/service"
	"github.com/aide-ai/content-assistant/internal/store"
	"github.com/aide-ai/content-assistant/pkg/logger"
)

const testJWTSecret = "test-secret"

// stubLLM counts completion calls and returns canned content.
type stubLLM struct {
	calls   int
	content string
	err     error
}

func (s *stubLLM) Complete(_ context.Context, _ *llm.CompletionRequest) (*llm.CompletionResponse, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &llm.CompletionResponse{Content: s.content}, nil
}

func (s *stubLLM) Name() string     { return "stub" }
func (s *stubLLM) Models() []string { return []string{"stub-1"} }

// testEnv wires the full router over in-memory stores, mirroring the server's
// middleware chain and route layout.
type testEnv struct {
	router http.Handler
	convs  *store.MemoryConversationStore
	msgs   *store.MemoryMessageStore
	users  *store.MemoryUserStore
	llm    *stubLLM
}

func newTestEnv(t *testing.T, webhookSecret string) *testEnv {
	t.Helper()

	log := logger.NewNop()
	convs := store.NewMemoryConversationStore()
	msgs := store.NewMemoryMessageStore()
	users := store.NewMemoryUserStore()
	stub := &stubLLM{content: "generated text"}

	conversationSvc := service.NewConversationService(convs, msgs, log)
	messageSvc := service.NewMessageService(msgs, convs, log)
	userSvc := service.NewUserService(users, log)
	generationSvc := service.NewGenerationService(stub, convs, log)

	conversationHandler := NewConversationHandler(conversationSvc, log)
	messageHandler := NewMessageHandler(messageSvc, log)
	generateHandler := NewGenerateHandler(generationSvc, log)
	webhookHandler := NewWebhookHandler(userSvc, webhookSecret, log)

	r := chi.NewRouter()
	r.Post("/webhooks", webhookHandler.Handle)
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(testJWTSecret))
		r.Use(middleware.RateLimit(1000, time.Minute))
		r.Use(middleware.UserSync(userSvc, log))

		r.Route("/conversations", func(r chi.Router) {
			r.Post("/", conversationHandler.Create)
			r.Get("/", conversationHandler.List)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", conversationHandler.Get)
				r.Patch("/", conversationHandler.Update)
				r.Delete("/", conversationHandler.Delete)

				r.Get("/messages", messageHandler.List)
				r.Post("/messages", messageHandler.Append)
			})
		})

		r.Post("/generate", generateHandler.Generate)
	})

	return &testEnv{
		router: r,
		convs:  convs,
		msgs:   msgs,
		users:  users,
		llm:    stub,
	}
}

func signToken(t *testing.T, userID string) string {
	t.Helper()

	claims := middleware.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Email: userID + "@example.com",
		Name:  "Test User",
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testJWTSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

// doJSON sends an authenticated request and returns the recorded response.
func (e *testEnv) doJSON(t *testing.T, method, path, userID string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(buf)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("Authorization", "Bearer "+signToken(t, userID))
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}
