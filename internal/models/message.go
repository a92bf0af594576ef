package models

// Role identifies the sender of a message.
type Role string

const (
	RoleUser Role = "user"
	RoleBot  Role = "bot"
)

// String returns the wire name of the role.
func (r Role) String() string {
	return string(r)
}

// Message is one turn of the conversation. Messages are values and are
// never modified after they are appended.
type Message struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// UserMessage builds a message sent by the user.
func UserMessage(text string) Message {
	return Message{Role: RoleUser, Text: text}
}

// BotMessage builds a message produced by the backend.
func BotMessage(text string) Message {
	return Message{Role: RoleBot, Text: text}
}

// IsUser reports whether the message was sent by the user.
func (m Message) IsUser() bool {
	return m.Role == RoleUser
}

// ChatRequest is the body of POST /api/chat.
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatResponse is the expected body of a successful POST /api/chat.
type ChatResponse struct {
	Reply string `json:"reply"`
}

// ErrorResponse is returned by the development server on failures.
type ErrorResponse struct {
	Error string `json:"error"`
}
