package types

import "time"

const (
	MessageSenderUser = "USER"
	MessageSenderBot  = "BOT"
)

// Conversation is a named chat thread owned by exactly one user.
type Conversation struct {
	ID        string    `json:"id" bson:"id"`
	UserID    string    `json:"userId" bson:"user_id"`
	Title     string    `json:"title" bson:"title"`
	CreatedAt time.Time `json:"createdAt" bson:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updated_at"`
}

// Message is a single USER or BOT turn in a conversation. Messages are
// immutable once written; only USER messages may carry the document fields.
type Message struct {
	ID               string    `json:"id" bson:"id"`
	ConversationID   string    `json:"chatId" bson:"conversation_id"`
	Sender           string    `json:"sender" bson:"sender"`
	Content          string    `json:"content" bson:"content"`
	CreatedAt        time.Time `json:"createdAt" bson:"created_at"`
	ExtractedOCRText string    `json:"extractedOcrText,omitempty" bson:"extracted_ocr_text,omitempty"`
	BlobPathname     string    `json:"blobPathname,omitempty" bson:"blob_pathname,omitempty"`
	FileName         string    `json:"fileName,omitempty" bson:"file_name,omitempty"`
}

// ChatHistoryItem is one entry of a compiled document's history snapshot.
// Exactly one entry per snapshot carries IsSourceDocument with the
// user-facing file name of the document that originated the conversation.
type ChatHistoryItem struct {
	Sender           string    `json:"sender" bson:"sender"`
	Content          string    `json:"content" bson:"content"`
	CreatedAt        time.Time `json:"createdAt" bson:"created_at"`
	IsSourceDocument bool      `json:"isSourceDocument,omitempty" bson:"is_source_document,omitempty"`
	FileName         string    `json:"fileName,omitempty" bson:"file_name,omitempty"`
}

// CompiledDocument is the denormalized per-conversation snapshot of the
// uploaded document plus the rolling transcript. At most one exists per
// conversation. The identity fields (source message, file name, blob
// pathname, extracted text) are frozen at creation; only the history
// snapshot and updated_at change afterwards. The source of truth remains
// the ordered message list; this record is a rebuildable cache.
type CompiledDocument struct {
	ID                     string            `json:"id" bson:"id"`
	ConversationID         string            `json:"chatId" bson:"conversation_id"`
	SourceMessageID        string            `json:"sourceMessageId" bson:"source_message_id"`
	OriginalFileName       string            `json:"originalFileName" bson:"original_file_name"`
	ExtractedOCRText       string            `json:"extractedOcrText" bson:"extracted_ocr_text"`
	SourceFileBlobPathname string            `json:"sourceFileBlobPathname" bson:"source_file_blob_pathname"`
	ChatHistory            []ChatHistoryItem `json:"chatHistoryJson" bson:"chat_history_json"`
	CreatedAt              time.Time         `json:"createdAt" bson:"created_at"`
	UpdatedAt              time.Time         `json:"updatedAt" bson:"updated_at"`
}
