package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lehoangvu/docchat-be/repository"
	"github.com/lehoangvu/docchat-be/types"
)

// CompileService maintains the per-conversation compiled document: a single
// record holding the source document's identity plus a denormalized snapshot
// of the whole chat history. The aggregate is refreshed after every turn; it
// is a read model, so a failed refresh only means a stale snapshot and never
// fails the chat turn that triggered it.
type CompileService struct {
	messages repository.MessageRepo
	docs     repository.CompiledDocumentRepo
	log      *zap.SugaredLogger
}

func NewCompileService(messages repository.MessageRepo, docs repository.CompiledDocumentRepo, log *zap.SugaredLogger) *CompileService {
	return &CompileService{
		messages: messages,
		docs:     docs,
		log:      log,
	}
}

// Upsert rebuilds the conversation's compiled document from sourceMsg and the
// stored history. A nil or non-qualifying source message (no blob or no
// extracted text) yields no aggregate. Errors are logged and swallowed.
func (s *CompileService) Upsert(ctx context.Context, conversationID string, sourceMsg *types.Message) *types.CompiledDocument {
	if sourceMsg == nil || sourceMsg.BlobPathname == "" || sourceMsg.ExtractedOCRText == "" {
		return nil
	}

	history, err := s.messages.ListMessagesByConversation(ctx, conversationID)
	if err != nil {
		s.log.Errorw("compiled document refresh: list messages", "conversation_id", conversationID, "error", err)
		return nil
	}

	sourceName := sourceMsg.FileName
	if sourceName == "" {
		sourceName = sourceMsg.BlobPathname
	}

	items := make([]types.ChatHistoryItem, 0, len(history))
	for _, m := range history {
		item := types.ChatHistoryItem{
			Sender:    m.Sender,
			Content:   m.Content,
			CreatedAt: m.CreatedAt,
		}
		if m.ID == sourceMsg.ID {
			item.IsSourceDocument = true
			item.FileName = sourceName
		}
		items = append(items, item)
	}

	now := time.Now().UTC()
	doc := &types.CompiledDocument{
		ID:                     uuid.NewString(),
		ConversationID:         conversationID,
		SourceMessageID:        sourceMsg.ID,
		OriginalFileName:       sourceName,
		ExtractedOCRText:       sourceMsg.ExtractedOCRText,
		SourceFileBlobPathname: sourceMsg.BlobPathname,
		ChatHistory:            items,
		CreatedAt:              now,
		UpdatedAt:              now,
	}
	saved, err := s.docs.UpsertCompiledDocument(ctx, doc)
	if err != nil {
		s.log.Errorw("compiled document refresh: upsert", "conversation_id", conversationID, "error", err)
		return nil
	}
	return saved
}
