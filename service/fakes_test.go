package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/lehoangvu/docchat-be/types"
)

func testLogger() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}

type fakeConversationRepo struct {
	mu    sync.Mutex
	convs map[string]*types.Conversation
}

func newFakeConversationRepo() *fakeConversationRepo {
	return &fakeConversationRepo{convs: make(map[string]*types.Conversation)}
}

func (r *fakeConversationRepo) CreateConversation(_ context.Context, conv *types.Conversation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *conv
	r.convs[conv.ID] = &cp
	return nil
}

func (r *fakeConversationRepo) GetConversation(_ context.Context, id string) (*types.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	conv, ok := r.convs[id]
	if !ok {
		return nil, types.ErrNotFound
	}
	cp := *conv
	return &cp, nil
}

func (r *fakeConversationRepo) ListConversationsByUser(_ context.Context, userID string) ([]*types.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*types.Conversation
	for _, conv := range r.convs {
		if conv.UserID == userID {
			cp := *conv
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (r *fakeConversationRepo) TouchConversation(_ context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if conv, ok := r.convs[id]; ok {
		conv.UpdatedAt = at
	}
	return nil
}

type fakeMessageRepo struct {
	mu   sync.Mutex
	msgs []*types.Message
}

func newFakeMessageRepo() *fakeMessageRepo {
	return &fakeMessageRepo{}
}

func (r *fakeMessageRepo) CreateMessage(_ context.Context, msg *types.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *msg
	r.msgs = append(r.msgs, &cp)
	return nil
}

func (r *fakeMessageRepo) ListMessagesByConversation(_ context.Context, conversationID string) ([]*types.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*types.Message
	for _, msg := range r.msgs {
		if msg.ConversationID == conversationID {
			cp := *msg
			out = append(out, &cp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

type fakeCompiledDocumentRepo struct {
	mu   sync.Mutex
	docs map[string]*types.CompiledDocument
}

func newFakeCompiledDocumentRepo() *fakeCompiledDocumentRepo {
	return &fakeCompiledDocumentRepo{docs: make(map[string]*types.CompiledDocument)}
}

// UpsertCompiledDocument mirrors the store's insert-only identity fields:
// an existing record only takes the new history snapshot.
func (r *fakeCompiledDocumentRepo) UpsertCompiledDocument(_ context.Context, doc *types.CompiledDocument) (*types.CompiledDocument, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.docs[doc.ConversationID]; ok {
		existing.ChatHistory = doc.ChatHistory
		existing.UpdatedAt = doc.UpdatedAt
		cp := *existing
		return &cp, nil
	}
	cp := *doc
	r.docs[doc.ConversationID] = &cp
	out := cp
	return &out, nil
}

func (r *fakeCompiledDocumentRepo) GetByConversation(_ context.Context, conversationID string) (*types.CompiledDocument, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.docs[conversationID]
	if !ok {
		return nil, types.ErrNotFound
	}
	cp := *doc
	return &cp, nil
}

func (r *fakeCompiledDocumentRepo) ListByConversationIDs(_ context.Context, conversationIDs []string) ([]*types.CompiledDocument, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*types.CompiledDocument
	for _, id := range conversationIDs {
		if doc, ok := r.docs[id]; ok {
			cp := *doc
			out = append(out, &cp)
		}
	}
	return out, nil
}

type fakeAIService struct {
	reply string
	err   error

	lastMessage   string
	lastHistory   []types.AIMessage
	lastExtracted string
	lastFileName  string
	calls         int
}

func (a *fakeAIService) GetChatCompletion(_ context.Context, userMessage string, history []types.AIMessage, extractedText, fileName string) (string, error) {
	a.calls++
	a.lastMessage = userMessage
	a.lastHistory = history
	a.lastExtracted = extractedText
	a.lastFileName = fileName
	if a.err != nil {
		return "", a.err
	}
	if a.reply == "" {
		return "ok", nil
	}
	return a.reply, nil
}

type fakeBlobStore struct {
	mu    sync.Mutex
	blobs map[string][]byte
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{blobs: make(map[string][]byte)}
}

func (s *fakeBlobStore) Put(_ context.Context, fileName string, data []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[fileName] = data
	return fileName, nil
}

func (s *fakeBlobStore) Get(_ context.Context, pathname string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.blobs[pathname]
	if !ok {
		return nil, fmt.Errorf("%w: blob %s", types.ErrNotFound, pathname)
	}
	return data, nil
}

type fakeOCREngine struct {
	text  string
	err   error
	calls int
}

func (e *fakeOCREngine) Recognize(_ context.Context, _ []byte) (string, error) {
	e.calls++
	return e.text, e.err
}
