package service

import (
	"context"
	"testing"
	"time"

	"github.com/lehoangvu/docchat-be/types"
)

func seedTurn(t *testing.T, msgs *fakeMessageRepo, convID, id, sender, content string, at time.Time) *types.Message {
	t.Helper()
	msg := &types.Message{
		ID:             id,
		ConversationID: convID,
		Sender:         sender,
		Content:        content,
		CreatedAt:      at,
	}
	if err := msgs.CreateMessage(context.Background(), msg); err != nil {
		t.Fatalf("CreateMessage() error = %v", err)
	}
	return msg
}

func TestCompileUpsertSkipsNonQualifyingSource(t *testing.T) {
	msgs := newFakeMessageRepo()
	docs := newFakeCompiledDocumentRepo()
	svc := NewCompileService(msgs, docs, testLogger())

	if doc := svc.Upsert(context.Background(), "c1", nil); doc != nil {
		t.Error("Upsert(nil source) = non-nil, want nil")
	}
	noBlob := &types.Message{ID: "m1", ExtractedOCRText: "text"}
	if doc := svc.Upsert(context.Background(), "c1", noBlob); doc != nil {
		t.Error("Upsert(no blob) = non-nil, want nil")
	}
	noText := &types.Message{ID: "m1", BlobPathname: "a.pdf"}
	if doc := svc.Upsert(context.Background(), "c1", noText); doc != nil {
		t.Error("Upsert(no extracted text) = non-nil, want nil")
	}
}

func TestCompileUpsertMarksExactlyOneSourceItem(t *testing.T) {
	msgs := newFakeMessageRepo()
	docs := newFakeCompiledDocumentRepo()
	svc := NewCompileService(msgs, docs, testLogger())

	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	source := seedTurn(t, msgs, "c1", "m1", types.MessageSenderUser, "what is this?", base)
	source.BlobPathname = "scan_123.png"
	source.ExtractedOCRText = "hello"
	source.FileName = "scan.png"
	seedTurn(t, msgs, "c1", "m2", types.MessageSenderBot, "a greeting", base.Add(time.Second))
	seedTurn(t, msgs, "c1", "m3", types.MessageSenderUser, "thanks", base.Add(2*time.Second))

	doc := svc.Upsert(context.Background(), "c1", source)
	if doc == nil {
		t.Fatal("Upsert() = nil, want a compiled document")
	}
	if len(doc.ChatHistory) != 3 {
		t.Fatalf("ChatHistory length = %d, want 3", len(doc.ChatHistory))
	}
	sources := 0
	for i, item := range doc.ChatHistory {
		if item.IsSourceDocument {
			sources++
			if i != 0 {
				t.Errorf("source item at index %d, want 0", i)
			}
			if item.FileName != "scan.png" {
				t.Errorf("source FileName = %q, want the user-facing name, not the blob pathname", item.FileName)
			}
		}
	}
	if sources != 1 {
		t.Errorf("source-marked items = %d, want 1", sources)
	}
}

func TestCompileUpsertFallsBackToBlobPathname(t *testing.T) {
	msgs := newFakeMessageRepo()
	docs := newFakeCompiledDocumentRepo()
	svc := NewCompileService(msgs, docs, testLogger())

	source := seedTurn(t, msgs, "c1", "m1", types.MessageSenderUser, "", time.Now().UTC())
	source.BlobPathname = "upload_99.pdf"
	source.ExtractedOCRText = "body"

	doc := svc.Upsert(context.Background(), "c1", source)
	if doc == nil {
		t.Fatal("Upsert() = nil, want a compiled document")
	}
	if doc.OriginalFileName != "upload_99.pdf" {
		t.Errorf("OriginalFileName = %q, want the blob pathname fallback", doc.OriginalFileName)
	}
}

func TestCompileUpsertIdentityIsImmutable(t *testing.T) {
	msgs := newFakeMessageRepo()
	docs := newFakeCompiledDocumentRepo()
	svc := NewCompileService(msgs, docs, testLogger())

	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	source := seedTurn(t, msgs, "c1", "m1", types.MessageSenderUser, "first", base)
	source.BlobPathname = "first_1.pdf"
	source.ExtractedOCRText = "first text"
	source.FileName = "first.pdf"

	doc1 := svc.Upsert(context.Background(), "c1", source)
	if doc1 == nil {
		t.Fatal("first Upsert() = nil")
	}

	seedTurn(t, msgs, "c1", "m2", types.MessageSenderBot, "reply", base.Add(time.Second))
	doc2 := svc.Upsert(context.Background(), "c1", source)
	if doc2 == nil {
		t.Fatal("second Upsert() = nil")
	}

	if doc2.ID != doc1.ID {
		t.Errorf("ID changed across upserts: %q vs %q", doc1.ID, doc2.ID)
	}
	if doc2.SourceMessageID != doc1.SourceMessageID {
		t.Errorf("SourceMessageID changed across upserts")
	}
	if doc2.CreatedAt != doc1.CreatedAt {
		t.Errorf("CreatedAt changed across upserts")
	}
	if len(doc2.ChatHistory) != 2 {
		t.Errorf("ChatHistory length = %d, want the refreshed snapshot of 2", len(doc2.ChatHistory))
	}
}
