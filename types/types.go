package types

const (
	AIRoleUser      = "user"
	AIRoleAssistant = "assistant"
)

// AIMessage is one prior turn handed to the completion function. The system
// and document framing are synthesized by the AI service at call time and
// never stored.
type AIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type User struct {
	ID        string `json:"id" bson:"id"`
	Username  string `json:"username" bson:"username"`
	Password  string `json:"-" bson:"password"`
	FullName  string `json:"full_name" bson:"full_name"`
	CreatedAt int64  `json:"created_at" bson:"created_at"`
	UpdatedAt int64  `json:"updated_at" bson:"updated_at"`
}
