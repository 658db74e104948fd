package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/aide-ai/content-assistant/internal/model"
	"github.com/aide-ai/content-assistant/internal/store"
	"github.com/aide-ai/content-assistant/pkg/logger"
)

// UserService mirrors identity-provider users into the local store.
type UserService struct {
	users  store.UserStore
	logger *logger.Logger
}

// NewUserService creates a new user service.
func NewUserService(users store.UserStore, log *logger.Logger) *UserService {
	return &UserService{
		users:  users,
		logger: log,
	}
}

// EnsureSynced creates a local user record from token claims if one does not
// exist yet. Called on authenticated requests; the provider webhook may have
// created the record already.
func (s *UserService) EnsureSynced(ctx context.Context, providerID, email, name, imageURL string) error {
	if providerID == "" {
		return nil
	}

	_, err := s.users.GetByProviderID(ctx, providerID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return err
	}

	if name == "" {
		name = "Anonymous"
	}
	user := &model.User{
		ProviderID: providerID,
		Email:      email,
		Name:       name,
		ImageURL:   imageURL,
	}
	if err := s.users.Upsert(ctx, user); err != nil {
		return err
	}

	s.logger.Info("user synced from session",
		zap.String("provider_id", providerID),
	)
	return nil
}

// HandleUserCreated upserts the user carried by a user.created webhook event.
// Safe to call more than once for the same delivery.
func (s *UserService) HandleUserCreated(ctx context.Context, data *model.WebhookEventData) error {
	email := ""
	if len(data.EmailAddresses) > 0 {
		email = data.EmailAddresses[0].EmailAddress
	}

	user := &model.User{
		ProviderID: data.ID,
		Email:      email,
		Name:       strings.TrimSpace(data.FirstName + " " + data.LastName),
		ImageURL:   data.ImageURL,
	}
	if err := s.users.Upsert(ctx, user); err != nil {
		return err
	}

	s.logger.Info("user upserted from webhook",
		zap.String("provider_id", data.ID),
	)
	return nil
}
