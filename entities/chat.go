package entities

import "time"

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Session groups the conversations of one client together with what we know
// about their current treatment.
type Session struct {
	ID                 string    `json:"id"`
	UserID             string    `json:"user_id,omitempty"`
	CurrentMedications []string  `json:"current_medications"`
	Allergies          []string  `json:"allergies"`
	CreatedAt          time.Time `json:"created_at"`
	LastActiveAt       time.Time `json:"last_active_at"`
	TotalQueries       int       `json:"total_queries"`
	ConversationIDs    []string  `json:"conversations"`
}

// Message is a single turn of a conversation.
type Message struct {
	ID                   string    `json:"id"`
	Role                 string    `json:"role"`
	Content              string    `json:"content"`
	Timestamp            time.Time `json:"timestamp"`
	MentionedMedications []string  `json:"mentioned_medications,omitempty"`
	RiskLevel            RiskLevel `json:"risk_level,omitempty"`
	ConfidenceScore      float64   `json:"confidence_score,omitempty"`
	Model                string    `json:"ai_model,omitempty"`
}

// Conversation is an ordered exchange of messages within a session.
type Conversation struct {
	ID        string    `json:"conversation_id"`
	SessionID string    `json:"session_id"`
	Messages  []Message `json:"messages"`
	CreatedAt time.Time `json:"created_at"`
	RiskLevel RiskLevel `json:"risk_level"`
}
