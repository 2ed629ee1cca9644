package domain

import "time"

// ChatMessage is one exchange in a session's chat history.
type ChatMessage struct {
	Role string    `json:"role"` // "user" or "bot"
	Text string    `json:"text"`
	At   time.Time `json:"at"`
}

// SessionState is the per-client application state owned by the UI layer.
type SessionState struct {
	ID          string        `json:"id"`
	CurrentTab  string        `json:"current_tab"`
	ChatHistory []ChatMessage `json:"chat_history"`
	LastQuote   *RouteQuote   `json:"last_quote,omitempty"`
	UpdatedAt   time.Time     `json:"updated_at"`
}
