package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lehoangvu/docchat-be/repository"
	"github.com/lehoangvu/docchat-be/types"
	"github.com/lehoangvu/docchat-be/utils"
)

const maxTitleLen = 50

// ChatService runs the document chat: processing turns, listing
// conversations, and serving the compiled document and its PDF export.
// Every operation checks that the conversation belongs to the caller.
type ChatService interface {
	ProcessMessage(ctx context.Context, userID string, req *types.ChatMessageRequest) (*types.ProcessMessageResponse, error)
	ListConversations(ctx context.Context, userID string) ([]*types.ConversationSummary, error)
	GetMessages(ctx context.Context, userID, chatID string) ([]*types.Message, error)
	GetCompiledDocument(ctx context.Context, userID, chatID string) (*types.CompiledDocument, error)
	// ExportCompiledDocument renders the compiled document to PDF and returns
	// the download file name alongside the bytes.
	ExportCompiledDocument(ctx context.Context, userID, chatID string) (string, []byte, error)
	ListDocuments(ctx context.Context, userID string) ([]*types.DocumentItem, error)
}

type chatService struct {
	conversations repository.ConversationRepo
	messages      repository.MessageRepo
	docs          repository.CompiledDocumentRepo
	ai            AIService
	blobs         BlobStore
	compiler      *CompileService
	renderer      PDFService
	log           *zap.SugaredLogger
}

func NewChatService(
	conversations repository.ConversationRepo,
	messages repository.MessageRepo,
	docs repository.CompiledDocumentRepo,
	ai AIService,
	blobs BlobStore,
	compiler *CompileService,
	renderer PDFService,
	log *zap.SugaredLogger,
) ChatService {
	return &chatService{
		conversations: conversations,
		messages:      messages,
		docs:          docs,
		ai:            ai,
		blobs:         blobs,
		compiler:      compiler,
		renderer:      renderer,
		log:           log,
	}
}

func (s *chatService) ProcessMessage(ctx context.Context, userID string, req *types.ChatMessageRequest) (*types.ProcessMessageResponse, error) {
	if req.ChatID == "" && req.BlobPathname == "" {
		return nil, fmt.Errorf("%w: a new conversation requires an uploaded document", types.ErrBadRequest)
	}

	conv, isNew, err := s.findOrCreateConversation(ctx, userID, req)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	userMsg := &types.Message{
		ID:               uuid.NewString(),
		ConversationID:   conv.ID,
		Sender:           types.MessageSenderUser,
		Content:          req.Message,
		CreatedAt:        now,
		ExtractedOCRText: req.ExtractedOCRText,
		BlobPathname:     req.BlobPathname,
		FileName:         req.FileName,
	}
	if err := s.messages.CreateMessage(ctx, userMsg); err != nil {
		return nil, fmt.Errorf("persist user message: %w", err)
	}

	sourceMsg := s.identifySourceMessage(ctx, conv.ID, userMsg, isNew)

	history, err := s.messages.ListMessagesByConversation(ctx, conv.ID)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	aiHistory := make([]types.AIMessage, 0, len(history))
	for _, m := range history {
		if m.ID == userMsg.ID {
			continue
		}
		role := types.AIRoleUser
		if m.Sender == types.MessageSenderBot {
			role = types.AIRoleAssistant
		}
		aiHistory = append(aiHistory, types.AIMessage{Role: role, Content: m.Content})
	}

	reply, err := s.ai.GetChatCompletion(ctx, req.Message, aiHistory, req.ExtractedOCRText, req.FileName)
	if err != nil {
		// The user turn is already stored; the turn fails without a reply.
		return nil, err
	}

	botMsg := &types.Message{
		ID:             uuid.NewString(),
		ConversationID: conv.ID,
		Sender:         types.MessageSenderBot,
		Content:        reply,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.messages.CreateMessage(ctx, botMsg); err != nil {
		return nil, fmt.Errorf("persist bot message: %w", err)
	}
	if err := s.conversations.TouchConversation(ctx, conv.ID, botMsg.CreatedAt); err != nil {
		s.log.Errorw("touch conversation", "conversation_id", conv.ID, "error", err)
	}

	s.compiler.Upsert(ctx, conv.ID, sourceMsg)

	return &types.ProcessMessageResponse{
		ChatID:      conv.ID,
		ChatTitle:   conv.Title,
		UserMessage: userMsg,
		BotResponse: types.BotResponse{ID: botMsg.ID, Content: botMsg.Content},
		IsNewChat:   isNew,
	}, nil
}

func (s *chatService) findOrCreateConversation(ctx context.Context, userID string, req *types.ChatMessageRequest) (*types.Conversation, bool, error) {
	if req.ChatID != "" {
		conv, err := s.conversations.GetConversation(ctx, req.ChatID)
		if err != nil {
			return nil, false, err
		}
		if conv.UserID != userID {
			return nil, false, types.ErrForbidden
		}
		return conv, false, nil
	}

	now := time.Now().UTC()
	conv := &types.Conversation{
		ID:        uuid.NewString(),
		UserID:    userID,
		Title:     deriveTitle(req),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.conversations.CreateConversation(ctx, conv); err != nil {
		return nil, false, fmt.Errorf("create conversation: %w", err)
	}
	return conv, true, nil
}

// deriveTitle names a new conversation after its document, falling back to
// the first words of the message.
func deriveTitle(req *types.ChatMessageRequest) string {
	if req.FileName != "" {
		return truncateTitle("Document: " + req.FileName)
	}
	if words := strings.Fields(req.Message); len(words) > 0 {
		if len(words) > 5 {
			words = words[:5]
		}
		return truncateTitle(strings.Join(words, " "))
	}
	return "New Chat"
}

func truncateTitle(title string) string {
	runes := []rune(title)
	if len(runes) <= maxTitleLen {
		return title
	}
	return string(runes[:maxTitleLen-3]) + "..."
}

// identifySourceMessage decides which USER turn anchors the conversation's
// compiled document. Once a compiled document exists its source is frozen,
// so later uploads in the same conversation never displace it.
func (s *chatService) identifySourceMessage(ctx context.Context, conversationID string, current *types.Message, isNew bool) *types.Message {
	qualifies := current.BlobPathname != "" && current.ExtractedOCRText != ""
	if isNew {
		if qualifies {
			return current
		}
		return nil
	}

	doc, err := s.docs.GetByConversation(ctx, conversationID)
	if err == nil {
		return &types.Message{
			ID:               doc.SourceMessageID,
			ConversationID:   conversationID,
			Sender:           types.MessageSenderUser,
			ExtractedOCRText: doc.ExtractedOCRText,
			BlobPathname:     doc.SourceFileBlobPathname,
			FileName:         doc.OriginalFileName,
		}
	}
	if !errors.Is(err, types.ErrNotFound) {
		s.log.Errorw("load compiled document", "conversation_id", conversationID, "error", err)
		return nil
	}
	if qualifies {
		return current
	}
	return nil
}

func (s *chatService) ListConversations(ctx context.Context, userID string) ([]*types.ConversationSummary, error) {
	convs, err := s.conversations.ListConversationsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	summaries := make([]*types.ConversationSummary, 0, len(convs))
	for _, conv := range convs {
		summaries = append(summaries, &types.ConversationSummary{
			ID:        conv.ID,
			Title:     conv.Title,
			CreatedAt: conv.CreatedAt,
			UpdatedAt: conv.UpdatedAt,
		})
	}
	return summaries, nil
}

func (s *chatService) GetMessages(ctx context.Context, userID, chatID string) ([]*types.Message, error) {
	if _, err := s.ownedConversation(ctx, userID, chatID); err != nil {
		return nil, err
	}
	return s.messages.ListMessagesByConversation(ctx, chatID)
}

func (s *chatService) GetCompiledDocument(ctx context.Context, userID, chatID string) (*types.CompiledDocument, error) {
	if _, err := s.ownedConversation(ctx, userID, chatID); err != nil {
		return nil, err
	}
	return s.docs.GetByConversation(ctx, chatID)
}

func (s *chatService) ExportCompiledDocument(ctx context.Context, userID, chatID string) (string, []byte, error) {
	doc, err := s.GetCompiledDocument(ctx, userID, chatID)
	if err != nil {
		return "", nil, err
	}

	data := &CompiledPDFData{
		OriginalFileName: doc.OriginalFileName,
		ExtractedOCRText: doc.ExtractedOCRText,
		ChatHistory:      doc.ChatHistory,
		OriginalFileKind: "unsupported",
	}
	fileBytes, err := s.blobs.Get(ctx, doc.SourceFileBlobPathname)
	if err != nil {
		// Export still succeeds without the original; the renderer emits a
		// placeholder section instead.
		s.log.Warnw("original blob unavailable for export",
			"conversation_id", chatID, "pathname", doc.SourceFileBlobPathname, "error", err)
	} else {
		data.OriginalFileBytes = fileBytes
		data.OriginalFileKind = utils.EmbedKind(doc.OriginalFileName)
	}

	pdfBytes, err := s.renderer.GenerateCompiledPDF(data)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", types.ErrRenderFailure, err)
	}
	name := "compiled_doc_" + utils.BaseNameForDownload(doc.OriginalFileName) + ".pdf"
	return name, pdfBytes, nil
}

func (s *chatService) ListDocuments(ctx context.Context, userID string) ([]*types.DocumentItem, error) {
	convs, err := s.conversations.ListConversationsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(convs))
	titles := make(map[string]string, len(convs))
	for _, conv := range convs {
		ids = append(ids, conv.ID)
		titles[conv.ID] = conv.Title
	}

	docs, err := s.docs.ListByConversationIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	items := make([]*types.DocumentItem, 0, len(docs))
	for _, doc := range docs {
		items = append(items, &types.DocumentItem{
			DocumentID: doc.ID,
			ChatID:     doc.ConversationID,
			FileName:   doc.OriginalFileName,
			UploadDate: doc.CreatedAt,
			ChatTitle:  titles[doc.ConversationID],
		})
	}
	return items, nil
}

func (s *chatService) ownedConversation(ctx context.Context, userID, chatID string) (*types.Conversation, error) {
	conv, err := s.conversations.GetConversation(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if conv.UserID != userID {
		return nil, types.ErrForbidden
	}
	return conv, nil
}
