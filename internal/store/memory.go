package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/aide-ai/content-assistant/internal/model"
)

// MemoryConversationStore is an in-memory ConversationStore.
type MemoryConversationStore struct {
	mu    sync.RWMutex
	convs map[primitive.ObjectID]*model.Conversation
}

// NewMemoryConversationStore creates an empty in-memory conversation store.
func NewMemoryConversationStore() *MemoryConversationStore {
	return &MemoryConversationStore{convs: make(map[primitive.ObjectID]*model.Conversation)}
}

func (s *MemoryConversationStore) Insert(ctx context.Context, conv *model.Conversation) error {
	if conv.ID.IsZero() {
		conv.ID = primitive.NewObjectID()
	}
	cp := *conv
	s.mu.Lock()
	s.convs[conv.ID] = &cp
	s.mu.Unlock()
	return nil
}

func (s *MemoryConversationStore) ListByUser(ctx context.Context, userID string) ([]model.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	convs := []model.Conversation{}
	for _, conv := range s.convs {
		if conv.UserID == userID {
			convs = append(convs, *conv)
		}
	}
	sort.Slice(convs, func(i, j int) bool {
		return convs[i].UpdatedAt.After(convs[j].UpdatedAt)
	})
	return convs, nil
}

func (s *MemoryConversationStore) GetOwned(ctx context.Context, userID string, id primitive.ObjectID) (*model.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conv, ok := s.convs[id]
	if !ok || conv.UserID != userID {
		return nil, ErrNotFound
	}
	cp := *conv
	return &cp, nil
}

func (s *MemoryConversationStore) UpdateOwned(ctx context.Context, userID string, id primitive.ObjectID, update ConversationUpdate) (*model.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.convs[id]
	if !ok || conv.UserID != userID {
		return nil, ErrNotFound
	}
	if update.Title != nil {
		conv.Title = *update.Title
	}
	if update.Platform != nil {
		conv.Platform = *update.Platform
	}
	conv.UpdatedAt = time.Now().UTC()
	cp := *conv
	return &cp, nil
}

func (s *MemoryConversationStore) DeleteOwned(ctx context.Context, userID string, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.convs[id]
	if !ok || conv.UserID != userID {
		return ErrNotFound
	}
	delete(s.convs, id)
	return nil
}

func (s *MemoryConversationStore) Touch(ctx context.Context, id primitive.ObjectID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if conv, ok := s.convs[id]; ok {
		conv.UpdatedAt = at
	}
	return nil
}

// MemoryMessageStore is an in-memory MessageStore.
type MemoryMessageStore struct {
	mu   sync.RWMutex
	msgs []model.Message
}

// NewMemoryMessageStore creates an empty in-memory message store.
func NewMemoryMessageStore() *MemoryMessageStore {
	return &MemoryMessageStore{}
}

func (s *MemoryMessageStore) Insert(ctx context.Context, msg *model.Message) error {
	if msg.ID.IsZero() {
		msg.ID = primitive.NewObjectID()
	}
	s.mu.Lock()
	s.msgs = append(s.msgs, *msg)
	s.mu.Unlock()
	return nil
}

func (s *MemoryMessageStore) ListByConversation(ctx context.Context, conversationID primitive.ObjectID) ([]model.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	msgs := []model.Message{}
	for _, msg := range s.msgs {
		if msg.ConversationID == conversationID {
			msgs = append(msgs, msg)
		}
	}
	// Insertion order already matches creation order; sort stably on the
	// timestamp anyway so equal-time messages keep their relative order.
	sort.SliceStable(msgs, func(i, j int) bool {
		return msgs[i].CreatedAt.Before(msgs[j].CreatedAt)
	})
	return msgs, nil
}

func (s *MemoryMessageStore) DeleteByConversation(ctx context.Context, conversationID primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.msgs[:0]
	for _, msg := range s.msgs {
		if msg.ConversationID != conversationID {
			kept = append(kept, msg)
		}
	}
	s.msgs = kept
	return nil
}

// MemoryUserStore is an in-memory UserStore.
type MemoryUserStore struct {
	mu    sync.RWMutex
	users map[string]*model.User
}

// NewMemoryUserStore creates an empty in-memory user store.
func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{users: make(map[string]*model.User)}
}

func (s *MemoryUserStore) Upsert(ctx context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.users[user.ProviderID]
	if ok {
		existing.Email = user.Email
		existing.Name = user.Name
		existing.ImageURL = user.ImageURL
		return nil
	}

	cp := *user
	if cp.ID.IsZero() {
		cp.ID = primitive.NewObjectID()
	}
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now().UTC()
	}
	s.users[user.ProviderID] = &cp
	return nil
}

func (s *MemoryUserStore) GetByProviderID(ctx context.Context, providerID string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[providerID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *user
	return &cp, nil
}

// Count returns the number of stored users.
func (s *MemoryUserStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users)
}
