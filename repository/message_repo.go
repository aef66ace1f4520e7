package repository

import (
	"context"
	"log"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/lehoangvu/docchat-be/types"
)

type MessageRepo interface {
	CreateMessage(ctx context.Context, msg *types.Message) error
	// ListMessagesByConversation returns every message of the conversation
	// ordered oldest-first by creation time.
	ListMessagesByConversation(ctx context.Context, conversationID string) ([]*types.Message, error)
}

type messageRepo struct {
	collection *mongo.Collection
}

func NewMessageRepo(db *mongo.Database) MessageRepo {
	collection := db.Collection("messages")
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "conversation_id", Value: 1},
				{Key: "created_at", Value: 1},
			},
		},
	}
	if _, err := collection.Indexes().CreateMany(context.Background(), indexes); err != nil {
		log.Printf("Error creating message indexes: %v", err)
	}
	return &messageRepo{collection: collection}
}

func (r *messageRepo) CreateMessage(ctx context.Context, msg *types.Message) error {
	_, err := r.collection.InsertOne(ctx, msg)
	return err
}

func (r *messageRepo) ListMessagesByConversation(ctx context.Context, conversationID string) ([]*types.Message, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"conversation_id": conversationID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var msgs []*types.Message
	for cursor.Next(ctx) {
		var msg types.Message
		if err := cursor.Decode(&msg); err != nil {
			return nil, err
		}
		msgs = append(msgs, &msg)
	}
	return msgs, cursor.Err()
}
