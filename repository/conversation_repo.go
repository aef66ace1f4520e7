package repository

import (
	"context"
	"errors"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/lehoangvu/docchat-be/types"
)

type ConversationRepo interface {
	CreateConversation(ctx context.Context, conv *types.Conversation) error
	GetConversation(ctx context.Context, id string) (*types.Conversation, error)
	ListConversationsByUser(ctx context.Context, userID string) ([]*types.Conversation, error)
	TouchConversation(ctx context.Context, id string, at time.Time) error
}

type conversationRepo struct {
	collection *mongo.Collection
}

func NewConversationRepo(db *mongo.Database) ConversationRepo {
	collection := db.Collection("conversations")
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{
				{Key: "user_id", Value: 1},
				{Key: "updated_at", Value: -1},
			},
		},
	}
	if _, err := collection.Indexes().CreateMany(context.Background(), indexes); err != nil {
		log.Printf("Error creating conversation indexes: %v", err)
	}
	return &conversationRepo{collection: collection}
}

func (r *conversationRepo) CreateConversation(ctx context.Context, conv *types.Conversation) error {
	_, err := r.collection.InsertOne(ctx, conv)
	return err
}

func (r *conversationRepo) GetConversation(ctx context.Context, id string) (*types.Conversation, error) {
	var conv types.Conversation
	err := r.collection.FindOne(ctx, bson.M{"id": id}).Decode(&conv)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, types.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

func (r *conversationRepo) ListConversationsByUser(ctx context.Context, userID string) ([]*types.Conversation, error) {
	opts := options.Find().SetSort(bson.D{{Key: "updated_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var convs []*types.Conversation
	for cursor.Next(ctx) {
		var conv types.Conversation
		if err := cursor.Decode(&conv); err != nil {
			return nil, err
		}
		convs = append(convs, &conv)
	}
	return convs, cursor.Err()
}

func (r *conversationRepo) TouchConversation(ctx context.Context, id string, at time.Time) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"id": id},
		bson.M{"$set": bson.M{"updated_at": at}},
	)
	return err
}
