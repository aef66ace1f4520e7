package service

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/lehoangvu/docchat-be/types"
)

type chatFixture struct {
	svc   ChatService
	convs *fakeConversationRepo
	msgs  *fakeMessageRepo
	docs  *fakeCompiledDocumentRepo
	ai    *fakeAIService
	blobs *fakeBlobStore
}

func newChatFixture() *chatFixture {
	convs := newFakeConversationRepo()
	msgs := newFakeMessageRepo()
	docs := newFakeCompiledDocumentRepo()
	ai := &fakeAIService{reply: "The document is an invoice."}
	blobs := newFakeBlobStore()
	log := testLogger()
	compiler := NewCompileService(msgs, docs, log)
	renderer := NewPDFService(log)
	return &chatFixture{
		svc:   NewChatService(convs, msgs, docs, ai, blobs, compiler, renderer, log),
		convs: convs,
		msgs:  msgs,
		docs:  docs,
		ai:    ai,
		blobs: blobs,
	}
}

func startDocumentChat(t *testing.T, f *chatFixture, userID string) *types.ProcessMessageResponse {
	t.Helper()
	resp, err := f.svc.ProcessMessage(context.Background(), userID, &types.ChatMessageRequest{
		Message:          "What is this document about?",
		ExtractedOCRText: "Invoice #1001\nTotal: 42 EUR",
		BlobPathname:     "invoice_1700000000.pdf",
		FileName:         "invoice.pdf",
	})
	if err != nil {
		t.Fatalf("ProcessMessage() error = %v", err)
	}
	return resp
}

func TestProcessMessageNewChatRequiresDocument(t *testing.T) {
	f := newChatFixture()

	_, err := f.svc.ProcessMessage(context.Background(), "u1", &types.ChatMessageRequest{
		Message: "hello?",
	})
	if !errors.Is(err, types.ErrBadRequest) {
		t.Fatalf("ProcessMessage() error = %v, want ErrBadRequest", err)
	}
}

func TestProcessMessageCreatesConversationAndCompiledDocument(t *testing.T) {
	f := newChatFixture()

	resp := startDocumentChat(t, f, "u1")
	if !resp.IsNewChat {
		t.Error("IsNewChat = false, want true")
	}
	if resp.ChatTitle != "Document: invoice.pdf" {
		t.Errorf("ChatTitle = %q, want %q", resp.ChatTitle, "Document: invoice.pdf")
	}
	if resp.BotResponse.Content != "The document is an invoice." {
		t.Errorf("BotResponse.Content = %q", resp.BotResponse.Content)
	}

	doc, err := f.docs.GetByConversation(context.Background(), resp.ChatID)
	if err != nil {
		t.Fatalf("GetByConversation() error = %v", err)
	}
	if doc.SourceMessageID != resp.UserMessage.ID {
		t.Errorf("SourceMessageID = %q, want the user turn %q", doc.SourceMessageID, resp.UserMessage.ID)
	}
	if doc.OriginalFileName != "invoice.pdf" {
		t.Errorf("OriginalFileName = %q, want %q", doc.OriginalFileName, "invoice.pdf")
	}
	if len(doc.ChatHistory) != 2 {
		t.Fatalf("ChatHistory length = %d, want 2", len(doc.ChatHistory))
	}
	sources := 0
	for _, item := range doc.ChatHistory {
		if item.IsSourceDocument {
			sources++
			if item.FileName != "invoice.pdf" {
				t.Errorf("source item FileName = %q, want the user-facing name", item.FileName)
			}
		}
	}
	if sources != 1 {
		t.Errorf("source-marked items = %d, want 1", sources)
	}
}

func TestProcessMessageSecondTurnKeepsSourceIdentity(t *testing.T) {
	f := newChatFixture()
	first := startDocumentChat(t, f, "u1")

	// Second turn carries a fresh upload; the compiled document must keep
	// the first document's identity and only refresh the snapshot.
	resp, err := f.svc.ProcessMessage(context.Background(), "u1", &types.ChatMessageRequest{
		ChatID:           first.ChatID,
		Message:          "And what about this one?",
		ExtractedOCRText: "Receipt for coffee",
		BlobPathname:     "receipt_1700000001.png",
		FileName:         "receipt.png",
	})
	if err != nil {
		t.Fatalf("ProcessMessage() error = %v", err)
	}
	if resp.IsNewChat {
		t.Error("IsNewChat = true, want false")
	}
	if len(f.ai.lastHistory) != 2 {
		t.Errorf("history sent to AI = %d entries, want 2 prior turns", len(f.ai.lastHistory))
	}

	doc, err := f.docs.GetByConversation(context.Background(), first.ChatID)
	if err != nil {
		t.Fatalf("GetByConversation() error = %v", err)
	}
	if doc.SourceMessageID != first.UserMessage.ID {
		t.Errorf("SourceMessageID changed to %q, want %q", doc.SourceMessageID, first.UserMessage.ID)
	}
	if doc.OriginalFileName != "invoice.pdf" {
		t.Errorf("OriginalFileName = %q, want the original upload", doc.OriginalFileName)
	}
	if len(doc.ChatHistory) != 4 {
		t.Errorf("ChatHistory length = %d, want 4", len(doc.ChatHistory))
	}
}

func TestProcessMessageRejectsForeignConversation(t *testing.T) {
	f := newChatFixture()
	first := startDocumentChat(t, f, "u1")

	_, err := f.svc.ProcessMessage(context.Background(), "u2", &types.ChatMessageRequest{
		ChatID:  first.ChatID,
		Message: "let me in",
	})
	if !errors.Is(err, types.ErrForbidden) {
		t.Fatalf("ProcessMessage() error = %v, want ErrForbidden", err)
	}
}

func TestProcessMessageUnknownConversation(t *testing.T) {
	f := newChatFixture()

	_, err := f.svc.ProcessMessage(context.Background(), "u1", &types.ChatMessageRequest{
		ChatID:  "no-such-chat",
		Message: "hi",
	})
	if !errors.Is(err, types.ErrNotFound) {
		t.Fatalf("ProcessMessage() error = %v, want ErrNotFound", err)
	}
}

func TestProcessMessageAIFailureKeepsUserTurn(t *testing.T) {
	f := newChatFixture()
	first := startDocumentChat(t, f, "u1")
	f.ai.err = types.ErrAIFailure

	_, err := f.svc.ProcessMessage(context.Background(), "u1", &types.ChatMessageRequest{
		ChatID:  first.ChatID,
		Message: "still there?",
	})
	if !errors.Is(err, types.ErrAIFailure) {
		t.Fatalf("ProcessMessage() error = %v, want ErrAIFailure", err)
	}

	msgs, err := f.svc.GetMessages(context.Background(), "u1", first.ChatID)
	if err != nil {
		t.Fatalf("GetMessages() error = %v", err)
	}
	// Two turns from the first exchange plus the stranded user message.
	if len(msgs) != 3 {
		t.Fatalf("messages = %d, want 3", len(msgs))
	}
	last := msgs[len(msgs)-1]
	if last.Sender != types.MessageSenderUser || last.Content != "still there?" {
		t.Errorf("last message = %s %q, want the stranded user turn", last.Sender, last.Content)
	}
}

func TestDeriveTitle(t *testing.T) {
	tests := []struct {
		name string
		req  types.ChatMessageRequest
		want string
	}{
		{
			name: "document name wins",
			req:  types.ChatMessageRequest{FileName: "contract.pdf", Message: "summarize this"},
			want: "Document: contract.pdf",
		},
		{
			name: "long document name is truncated",
			req:  types.ChatMessageRequest{FileName: strings.Repeat("a", 60) + ".pdf"},
			want: "Document: " + strings.Repeat("a", 37) + "...",
		},
		{
			name: "first five words of the message",
			req:  types.ChatMessageRequest{Message: "please tell me what this document says"},
			want: "please tell me what this",
		},
		{
			name: "empty request",
			req:  types.ChatMessageRequest{},
			want: "New Chat",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := deriveTitle(&tt.req); got != tt.want {
				t.Errorf("deriveTitle() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExportCompiledDocument(t *testing.T) {
	f := newChatFixture()
	first := startDocumentChat(t, f, "u1")

	name, pdfBytes, err := f.svc.ExportCompiledDocument(context.Background(), "u1", first.ChatID)
	if err != nil {
		t.Fatalf("ExportCompiledDocument() error = %v", err)
	}
	if name != "compiled_doc_invoice.pdf" {
		t.Errorf("download name = %q, want %q", name, "compiled_doc_invoice.pdf")
	}
	if !bytes.HasPrefix(pdfBytes, []byte("%PDF")) {
		t.Error("export does not start with a PDF header")
	}
}

func TestExportCompiledDocumentMissingConversation(t *testing.T) {
	f := newChatFixture()

	_, _, err := f.svc.ExportCompiledDocument(context.Background(), "u1", "missing")
	if !errors.Is(err, types.ErrNotFound) {
		t.Fatalf("ExportCompiledDocument() error = %v, want ErrNotFound", err)
	}
}

func TestListDocumentsJoinsChatTitles(t *testing.T) {
	f := newChatFixture()
	first := startDocumentChat(t, f, "u1")

	items, err := f.svc.ListDocuments(context.Background(), "u1")
	if err != nil {
		t.Fatalf("ListDocuments() error = %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("documents = %d, want 1", len(items))
	}
	if items[0].ChatID != first.ChatID {
		t.Errorf("ChatID = %q, want %q", items[0].ChatID, first.ChatID)
	}
	if items[0].FileName != "invoice.pdf" {
		t.Errorf("FileName = %q, want %q", items[0].FileName, "invoice.pdf")
	}
	if items[0].ChatTitle != "Document: invoice.pdf" {
		t.Errorf("ChatTitle = %q, want %q", items[0].ChatTitle, "Document: invoice.pdf")
	}
}

func TestGetMessagesOwnership(t *testing.T) {
	f := newChatFixture()
	first := startDocumentChat(t, f, "u1")

	if _, err := f.svc.GetMessages(context.Background(), "u2", first.ChatID); !errors.Is(err, types.ErrForbidden) {
		t.Errorf("GetMessages() error = %v, want ErrForbidden", err)
	}
	if _, err := f.svc.GetMessages(context.Background(), "u1", "missing"); !errors.Is(err, types.ErrNotFound) {
		t.Errorf("GetMessages() error = %v, want ErrNotFound", err)
	}
}
