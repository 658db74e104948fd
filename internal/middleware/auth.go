// Package middleware provides HTTP middleware for the API server.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// ContextKey is a type for context keys.
type ContextKey string

const (
	// UserIDKey is the context key for the provider user ID.
	UserIDKey ContextKey = "user_id"
	// ProfileKey is the context key for the token's profile claims.
	ProfileKey ContextKey = "profile"
)

// Profile carries the identity claims used for lazy user sync.
type Profile struct {
	Email    string
	Name     string
	ImageURL string
}

// Claims represents session token claims. Subject is the provider user ID.
type Claims struct {
	jwt.RegisteredClaims
	Email    string `json:"email,omitempty"`
	Name     string `json:"name,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
}

// Auth creates session authentication middleware. Requests without a valid
// bearer token are rejected before reaching any handler.
func Auth(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, `{"error":"missing authorization header"}`, http.StatusUnauthorized)
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				http.Error(w, `{"error":"invalid authorization header format"}`, http.StatusUnauthorized)
				return
			}

			claims := &Claims{}
			token, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return []byte(jwtSecret), nil
			})

			if err != nil || !token.Valid || claims.Subject == "" {
				http.Error(w, `{"error":"invalid token"}`, http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, claims.Subject)
			ctx = context.WithValue(ctx, ProfileKey, Profile{
				Email:    claims.Email,
				Name:     claims.Name,
				ImageURL: claims.ImageURL,
			})

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUserID gets the provider user ID from context.
func GetUserID(ctx context.Context) string {
	if v := ctx.Value(UserIDKey); v != nil {
		return v.(string)
	}
	return ""
}

// GetProfile gets the token profile claims from context.
func GetProfile(ctx context.Context) Profile {
	if v := ctx.Value(ProfileKey); v != nil {
		return v.(Profile)
	}
	return Profile{}
}
