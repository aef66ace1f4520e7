package types

// ChatMessageRequest is one turn submitted by the user. ChatID empty means
// "start a new conversation", which requires a blob pathname: every new
// conversation originates from a document upload.
type ChatMessageRequest struct {
	ChatID           string `json:"chatId"`
	Message          string `json:"message"`
	ExtractedOCRText string `json:"extractedOcrText"`
	BlobPathname     string `json:"blobPathname"`
	FileName         string `json:"fileName"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type CreateUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}
