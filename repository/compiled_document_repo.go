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

type CompiledDocumentRepo interface {
	// UpsertCompiledDocument writes the aggregate keyed by its conversation
	// id. On first write all fields are set; on subsequent writes only the
	// history snapshot and updated_at change. The identity fields are
	// insert-only, so a later document turn can never replace the source.
	UpsertCompiledDocument(ctx context.Context, doc *types.CompiledDocument) (*types.CompiledDocument, error)
	GetByConversation(ctx context.Context, conversationID string) (*types.CompiledDocument, error)
	ListByConversationIDs(ctx context.Context, conversationIDs []string) ([]*types.CompiledDocument, error)
}

type compiledDocumentRepo struct {
	collection *mongo.Collection
}

func NewCompiledDocumentRepo(db *mongo.Database) CompiledDocumentRepo {
	collection := db.Collection("compiled_documents")
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "conversation_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	if _, err := collection.Indexes().CreateMany(context.Background(), indexes); err != nil {
		log.Printf("Error creating compiled document indexes: %v", err)
	}
	return &compiledDocumentRepo{collection: collection}
}

func (r *compiledDocumentRepo) UpsertCompiledDocument(ctx context.Context, doc *types.CompiledDocument) (*types.CompiledDocument, error) {
	now := time.Now().UTC()
	update := bson.M{
		"$set": bson.M{
			"chat_history_json": doc.ChatHistory,
			"updated_at":        now,
		},
		"$setOnInsert": bson.M{
			"id":                        doc.ID,
			"source_message_id":         doc.SourceMessageID,
			"original_file_name":        doc.OriginalFileName,
			"extracted_ocr_text":        doc.ExtractedOCRText,
			"source_file_blob_pathname": doc.SourceFileBlobPathname,
			"created_at":                now,
		},
	}
	opts := options.UpdateOne().SetUpsert(true)
	if _, err := r.collection.UpdateOne(ctx, bson.M{"conversation_id": doc.ConversationID}, update, opts); err != nil {
		return nil, err
	}
	return r.GetByConversation(ctx, doc.ConversationID)
}

func (r *compiledDocumentRepo) GetByConversation(ctx context.Context, conversationID string) (*types.CompiledDocument, error) {
	var doc types.CompiledDocument
	err := r.collection.FindOne(ctx, bson.M{"conversation_id": conversationID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, types.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *compiledDocumentRepo) ListByConversationIDs(ctx context.Context, conversationIDs []string) ([]*types.CompiledDocument, error) {
	if len(conversationIDs) == 0 {
		return nil, nil
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"conversation_id": bson.M{"$in": conversationIDs}}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []*types.CompiledDocument
	for cursor.Next(ctx) {
		var doc types.CompiledDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		docs = append(docs, &doc)
	}
	return docs, cursor.Err()
}
