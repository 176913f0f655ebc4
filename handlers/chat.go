package handlers

import (
	"net/http"
	"time"

	"github.com/cogitto/cogitto-api/chat"
	"github.com/cogitto/cogitto-api/entities"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// SessionStarted is returned when a chat session opens
type SessionStarted struct {
	SessionID          string   `json:"session_id"`
	Message            string   `json:"message"`
	CurrentMedications []string `json:"current_medications"`
	Allergies          []string `json:"allergies"`
	Instructions       string   `json:"instructions"`
}

// ConversationHistory is the body of a conversation lookup
type ConversationHistory struct {
	ConversationID string             `json:"conversation_id"`
	SessionID      string             `json:"session_id"`
	Messages       []entities.Message `json:"messages"`
	CreatedAt      time.Time          `json:"created_at"`
	TotalMessages  int                `json:"total_messages"`
	RiskLevel      entities.RiskLevel `json:"risk_level"`
}

// StartSession opens a chat session. The body is optional.
func (h *HTTPHandlerImpl) StartSession(w http.ResponseWriter, r *http.Request) {
	var req chat.SessionRequest
	if err := decodeBody(r, &req, true); err != nil {
		h.respondWithFailure(w, r, err)
		return
	}

	session, err := h.chat.StartSession(req)
	if err != nil {
		h.respondWithFailure(w, r, err)
		return
	}

	h.RespondWithJSON(w, http.StatusCreated, SessionStarted{
		SessionID:          session.ID,
		Message:            "Chat session started with Cogitto!",
		CurrentMedications: session.CurrentMedications,
		Allergies:          session.Allergies,
		Instructions:       "You can now send messages using the /chat/message endpoint",
	})
}

// SendMessage answers a chat message
func (h *HTTPHandlerImpl) SendMessage(w http.ResponseWriter, r *http.Request) {
	var req chat.MessageRequest
	if err := decodeBody(r, &req, false); err != nil {
		h.respondWithFailure(w, r, err)
		return
	}

	reply, err := h.chat.SendMessage(r.Context(), req)
	if err != nil {
		h.respondWithFailure(w, r, err)
		return
	}
	h.RespondWithJSON(w, http.StatusOK, reply)
}

// GetConversation returns a conversation history
func (h *HTTPHandlerImpl) GetConversation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	conv, ok := h.chat.GetConversation(id)
	if !ok {
		h.RespondWithError(w, http.StatusNotFound, "Conversation not found")
		return
	}

	h.RespondWithJSON(w, http.StatusOK, ConversationHistory{
		ConversationID: conv.ID,
		SessionID:      conv.SessionID,
		Messages:       conv.Messages,
		CreatedAt:      conv.CreatedAt,
		TotalMessages:  len(conv.Messages),
		RiskLevel:      conv.RiskLevel,
	})
}

// ChatDemo shows example questions and a ready-to-use session id
func (h *HTTPHandlerImpl) ChatDemo(w http.ResponseWriter, r *http.Request) {
	sessionID := uuid.NewString()
	h.RespondWithJSON(w, http.StatusOK, map[string]any{
		"message":         "Welcome to the Cogitto chat demo!",
		"demo_session_id": sessionID,
		"try_these_questions": []string{
			"Can I take ibuprofen with warfarin?",
			"What is acetaminophen used for?",
			"Tell me about lisinopril side effects",
			"Is it safe to take Tylenol and Advil together?",
		},
		"api_usage": map[string]any{
			"start_session": "POST /chat/sessions",
			"send_message":  "POST /chat/message",
			"example_request": chat.MessageRequest{
				Message:   "Can I take ibuprofen with warfarin?",
				SessionID: sessionID,
			},
		},
	})
}
