package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User mirrors an identity-provider account. Records are created lazily on the
// first authenticated request or by the provider's user.created webhook, so
// writes must be upserts keyed by ProviderID.
type User struct {
	ID         primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	ProviderID string             `json:"provider_id" bson:"provider_id"`
	Email      string             `json:"email" bson:"email"`
	Name       string             `json:"name,omitempty" bson:"name,omitempty"`
	ImageURL   string             `json:"image_url,omitempty" bson:"image_url,omitempty"`
	CreatedAt  time.Time          `json:"created_at" bson:"created_at"`
}

// WebhookEvent is the envelope of an identity-provider webhook delivery.
type WebhookEvent struct {
	Type string           `json:"type"`
	Data WebhookEventData `json:"data"`
}

// WebhookEventData carries the provider's user payload.
type WebhookEventData struct {
	ID             string                `json:"id"`
	EmailAddresses []WebhookEmailAddress `json:"email_addresses"`
	FirstName      string                `json:"first_name"`
	LastName       string                `json:"last_name"`
	ImageURL       string                `json:"image_url"`
}

// WebhookEmailAddress is a single email entry in a provider payload.
type WebhookEmailAddress struct {
	EmailAddress string `json:"email_address"`
}
