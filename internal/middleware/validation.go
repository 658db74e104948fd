package middleware

import (
	"errors"
	"unicode/utf8"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ValidateMessageContent validates message content.
func ValidateMessageContent(content string) error {
	if len(content) == 0 {
		return errors.New("content cannot be empty")
	}
	if len(content) > 100000 { // ~100KB limit
		return errors.New("content exceeds maximum length")
	}
	if !utf8.ValidString(content) {
		return errors.New("content must be valid UTF-8")
	}
	return nil
}

// ParseConversationID validates and parses a conversation ID.
func ParseConversationID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, errors.New("invalid conversation ID format")
	}
	return oid, nil
}

// ValidateTitle validates a conversation title.
func ValidateTitle(title string) error {
	if len(title) > 256 {
		return errors.New("title exceeds maximum length")
	}
	if !utf8.ValidString(title) {
		return errors.New("title must be valid UTF-8")
	}
	return nil
}

// ValidatePlatform validates a conversation platform tag.
func ValidatePlatform(platform string) error {
	if len(platform) > 64 {
		return errors.New("platform exceeds maximum length")
	}
	if !utf8.ValidString(platform) {
		return errors.New("platform must be valid UTF-8")
	}
	return nil
}
