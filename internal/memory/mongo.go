// ABOUTME: MongoDB-backed chat memory on a dedicated history collection
// ABOUTME: Sorted retrieval by timestamp with a supporting session_id index
package memory

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/docteam/ragstack/internal/models"
)

// MongoMemory implements Memory on a MongoDB collection.
type MongoMemory struct {
	collection *mongo.Collection
}

var _ Memory = (*MongoMemory)(nil)

// NewMongo binds chat memory to the given history collection.
func NewMongo(collection *mongo.Collection) *MongoMemory {
	return &MongoMemory{collection: collection}
}

// EnsureSessionIndex creates the session_id index backing History and
// Clear. Safe to call repeatedly.
func (m *MongoMemory) EnsureSessionIndex(ctx context.Context) error {
	model := mongo.IndexModel{Keys: bson.D{{Key: "session_id", Value: 1}}}
	if _, err := m.collection.Indexes().CreateOne(ctx, model); err != nil {
		return fmt.Errorf("creating session index: %w", err)
	}
	return nil
}

// Append inserts one message stamped with the current UTC time.
func (m *MongoMemory) Append(ctx context.Context, sessionID, role, content string) error {
	message := models.ChatMessage{
		SessionID: sessionID,
		Role:      role,
		Content:   content,
		Timestamp: time.Now().UTC(),
	}
	if _, err := m.collection.InsertOne(ctx, message); err != nil {
		return fmt.Errorf("storing chat message: %w", err)
	}
	return nil
}

// History returns the session's messages in ascending timestamp order.
func (m *MongoMemory) History(ctx context.Context, sessionID string) ([]models.ChatMessage, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}})
	cursor, err := m.collection.Find(ctx, bson.D{{Key: "session_id", Value: sessionID}}, opts)
	if err != nil {
		return nil, fmt.Errorf("retrieving chat history: %w", err)
	}
	defer cursor.Close(ctx)

	messages := []models.ChatMessage{}
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, fmt.Errorf("decoding chat history: %w", err)
	}
	return messages, nil
}

// Clear deletes every message for the session. Clearing an absent
// session is not an error.
func (m *MongoMemory) Clear(ctx context.Context, sessionID string) error {
	if _, err := m.collection.DeleteMany(ctx, bson.D{{Key: "session_id", Value: sessionID}}); err != nil {
		return fmt.Errorf("clearing chat history: %w", err)
	}
	return nil
}
