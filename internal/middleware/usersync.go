package middleware

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/aide-ai/content-assistant/pkg/logger"
)

// UserSyncer lazily mirrors an identity-provider user into local storage.
type UserSyncer interface {
	EnsureSynced(ctx context.Context, providerID, email, name, imageURL string) error
}

// UserSync creates middleware that ensures a local user record exists for the
// authenticated caller. Best-effort: a sync failure is logged and the request
// proceeds.
func UserSync(syncer UserSyncer, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if userID := GetUserID(ctx); userID != "" {
				profile := GetProfile(ctx)
				if err := syncer.EnsureSynced(ctx, userID, profile.Email, profile.Name, profile.ImageURL); err != nil {
					log.Warn("user sync failed",
						zap.String("user_id", userID),
						zap.Error(err),
					)
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
