package types

import "time"

type DataResponse struct {
	Status  bool        `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

type BotResponse struct {
	ID      string `json:"id"`
	Content string `json:"content"`
}

// ProcessMessageResponse is the result of one processed turn. The user
// message is returned in full; the bot response as id + content only.
type ProcessMessageResponse struct {
	ChatID      string      `json:"chatId"`
	ChatTitle   string      `json:"chatTitle"`
	UserMessage *Message    `json:"userMessage"`
	BotResponse BotResponse `json:"botResponse"`
	IsNewChat   bool        `json:"isNewChat"`
}

type ConversationSummary struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type UploadResponse struct {
	BlobPathname  string `json:"blobPathname"`
	FileName      string `json:"fileName"`
	ExtractedText string `json:"extractedText"`
}

// DocumentItem is one row of the user's uploaded-documents listing, built
// from the compiled documents joined with their conversation titles.
type DocumentItem struct {
	DocumentID string    `json:"documentId"`
	ChatID     string    `json:"chatId"`
	FileName   string    `json:"fileName"`
	UploadDate time.Time `json:"uploadDate"`
	ChatTitle  string    `json:"chatTitle"`
}

type LoginResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}
