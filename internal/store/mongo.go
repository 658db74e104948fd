package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/aide-ai/content-assistant/internal/model"
)

const (
	conversationsCollection = "conversations"
	messagesCollection      = "messages"
	usersCollection         = "users"
)

// MongoConversationStore is the MongoDB-backed ConversationStore.
type MongoConversationStore struct {
	coll *mongo.Collection
}

// NewMongoConversationStore creates a conversation store on the given database.
func NewMongoConversationStore(db *mongo.Database) *MongoConversationStore {
	return &MongoConversationStore{coll: db.Collection(conversationsCollection)}
}

// Insert stores a new conversation, assigning an ID if none is set.
func (s *MongoConversationStore) Insert(ctx context.Context, conv *model.Conversation) error {
	if conv.ID.IsZero() {
		conv.ID = primitive.NewObjectID()
	}
	if _, err := s.coll.InsertOne(ctx, conv); err != nil {
		return fmt.Errorf("insert conversation: %w", err)
	}
	return nil
}

// ListByUser returns the user's conversations, most recently updated first.
func (s *MongoConversationStore) ListByUser(ctx context.Context, userID string) ([]model.Conversation, error) {
	opts := options.Find().SetSort(bson.D{{Key: "updated_at", Value: -1}})
	cursor, err := s.coll.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	defer cursor.Close(ctx)

	convs := []model.Conversation{}
	if err := cursor.All(ctx, &convs); err != nil {
		return nil, fmt.Errorf("decode conversations: %w", err)
	}
	return convs, nil
}

// GetOwned fetches a conversation scoped to its owner.
func (s *MongoConversationStore) GetOwned(ctx context.Context, userID string, id primitive.ObjectID) (*model.Conversation, error) {
	var conv model.Conversation
	err := s.coll.FindOne(ctx, bson.M{"_id": id, "user_id": userID}).Decode(&conv)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get conversation: %w", err)
	}
	return &conv, nil
}

// UpdateOwned applies the allow-listed fields and returns the updated record.
func (s *MongoConversationStore) UpdateOwned(ctx context.Context, userID string, id primitive.ObjectID, update ConversationUpdate) (*model.Conversation, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	if update.Title != nil {
		set["title"] = *update.Title
	}
	if update.Platform != nil {
		set["platform"] = *update.Platform
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var conv model.Conversation
	err := s.coll.FindOneAndUpdate(ctx, bson.M{"_id": id, "user_id": userID}, bson.M{"$set": set}, opts).Decode(&conv)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update conversation: %w", err)
	}
	return &conv, nil
}

// DeleteOwned removes a conversation scoped to its owner.
func (s *MongoConversationStore) DeleteOwned(ctx context.Context, userID string, id primitive.ObjectID) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id, "user_id": userID})
	if err != nil {
		return fmt.Errorf("delete conversation: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Touch bumps the conversation's updated_at.
func (s *MongoConversationStore) Touch(ctx context.Context, id primitive.ObjectID, at time.Time) error {
	_, err := s.coll.UpdateByID(ctx, id, bson.M{"$set": bson.M{"updated_at": at}})
	if err != nil {
		return fmt.Errorf("touch conversation: %w", err)
	}
	return nil
}

// MongoMessageStore is the MongoDB-backed MessageStore.
type MongoMessageStore struct {
	coll *mongo.Collection
}

// NewMongoMessageStore creates a message store on the given database.
func NewMongoMessageStore(db *mongo.Database) *MongoMessageStore {
	return &MongoMessageStore{coll: db.Collection(messagesCollection)}
}

// Insert stores a new message, assigning an ID if none is set.
func (s *MongoMessageStore) Insert(ctx context.Context, msg *model.Message) error {
	if msg.ID.IsZero() {
		msg.ID = primitive.NewObjectID()
	}
	if _, err := s.coll.InsertOne(ctx, msg); err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

// ListByConversation returns a conversation's messages, oldest first.
func (s *MongoMessageStore) ListByConversation(ctx context.Context, conversationID primitive.ObjectID) ([]model.Message, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := s.coll.Find(ctx, bson.M{"conversation_id": conversationID}, opts)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer cursor.Close(ctx)

	msgs := []model.Message{}
	if err := cursor.All(ctx, &msgs); err != nil {
		return nil, fmt.Errorf("decode messages: %w", err)
	}
	return msgs, nil
}

// DeleteByConversation removes every message in a conversation.
func (s *MongoMessageStore) DeleteByConversation(ctx context.Context, conversationID primitive.ObjectID) error {
	if _, err := s.coll.DeleteMany(ctx, bson.M{"conversation_id": conversationID}); err != nil {
		return fmt.Errorf("delete messages: %w", err)
	}
	return nil
}

// MongoUserStore is the MongoDB-backed UserStore.
type MongoUserStore struct {
	coll *mongo.Collection
}

// NewMongoUserStore creates a user store on the given database.
func NewMongoUserStore(db *mongo.Database) *MongoUserStore {
	return &MongoUserStore{coll: db.Collection(usersCollection)}
}

// Upsert creates or refreshes a user keyed by provider ID.
func (s *MongoUserStore) Upsert(ctx context.Context, user *model.User) error {
	set := bson.M{
		"provider_id": user.ProviderID,
		"email":       user.Email,
		"name":        user.Name,
		"image_url":   user.ImageURL,
	}
	update := bson.M{
		"$set":         set,
		"$setOnInsert": bson.M{"created_at": time.Now().UTC()},
	}
	opts := options.Update().SetUpsert(true)
	if _, err := s.coll.UpdateOne(ctx, bson.M{"provider_id": user.ProviderID}, update, opts); err != nil {
		return fmt.Errorf("upsert user: %w", err)
	}
	return nil
}

// GetByProviderID fetches a user by provider ID.
func (s *MongoUserStore) GetByProviderID(ctx context.Context, providerID string) (*model.User, error) {
	var user model.User
	err := s.coll.FindOne(ctx, bson.M{"provider_id": providerID}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &user, nil
}

// EnsureIndexes creates the indexes the stores rely on.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(conversationsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "updated_at", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("conversations index: %w", err)
	}

	_, err = db.Collection(messagesCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "conversation_id", Value: 1}, {Key: "created_at", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("messages index: %w", err)
	}

	_, err = db.Collection(usersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "provider_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("users index: %w", err)
	}
	return nil
}
