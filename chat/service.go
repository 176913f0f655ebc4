package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cogitto/cogitto-api/assistant"
	"github.com/cogitto/cogitto-api/entities"
	"github.com/cogitto/cogitto-api/interfaces"
	"github.com/cogitto/cogitto-api/logging"
	"github.com/cogitto/cogitto-api/validation"
	"github.com/google/uuid"
)

const maxSessionIDLength = 64

var followupQuestions = []string{
	"Would you like more details about any specific medication?",
	"Do you have questions about timing or dosages?",
	"Are there other medications you're concerned about?",
}

// Answerer runs one query through the assistant pipeline.
type Answerer interface {
	Answer(ctx context.Context, query string, user *assistant.UserContext) assistant.Result
}

// SessionRequest is the body of a start-session call
type SessionRequest struct {
	UserID             string   `json:"user_id,omitempty"`
	CurrentMedications []string `json:"current_medications"`
	Allergies          []string `json:"allergies"`
}

// MessageRequest is the body of a send-message call
type MessageRequest struct {
	Message        string `json:"message"`
	SessionID      string `json:"session_id"`
	ConversationID string `json:"conversation_id,omitempty"`
}

type ProcessingInfo struct {
	ModelUsed            string  `json:"model_used"`
	ConfidenceScore      float64 `json:"confidence_score"`
	ProcessingSuccessful bool    `json:"processing_successful"`
	FallbackUsed         bool    `json:"fallback_used"`
}

type Insights struct {
	MentionedMedications  []string                     `json:"mentioned_medications"`
	MedicationInsights    []string                     `json:"medication_insights"`
	SafetyRecommendations []string                     `json:"safety_recommendations"`
	InteractionWarnings   []string                     `json:"interaction_warnings"`
	Interactions          []entities.InteractionDetail `json:"interactions"`
	FollowupQuestions     []string                     `json:"followup_questions"`
	Processing            ProcessingInfo               `json:"ai_processing"`
}

type SessionContext struct {
	TotalQueries         int                `json:"total_queries"`
	CurrentMedications   []string           `json:"current_medications"`
	OverallRiskLevel     entities.RiskLevel `json:"overall_risk_level"`
	RequiresConsultation bool               `json:"requires_consultation"`
}

// Reply is returned for every chat message
type Reply struct {
	ConversationID    string           `json:"conversation_id"`
	SessionID         string           `json:"session_id"`
	UserMessage       entities.Message `json:"user_message"`
	AssistantResponse entities.Message `json:"assistant_response"`
	Insights          Insights         `json:"cogitto_insights"`
	Disclaimer        string           `json:"disclaimer"`
	SessionContext    SessionContext   `json:"session_context"`
}

// Service implements the chat operations over a Store
type Service struct {
	store     *Store
	answerer  Answerer
	validator interfaces.DataValidator
}

func NewService(store *Store, answerer Answerer) *Service {
	return &Service{
		store:     store,
		answerer:  answerer,
		validator: validation.NewDataValidator(),
	}
}

// StartSession opens a session; medication and allergy names are lower-cased
func (s *Service) StartSession(req SessionRequest) (entities.Session, error) {
	medications, err := s.cleanNames(req.CurrentMedications, "current_medications")
	if err != nil {
		return entities.Session{}, err
	}
	allergies, err := s.cleanNames(req.Allergies, "allergies")
	if err != nil {
		return entities.Session{}, err
	}

	session := s.store.CreateSession(strings.TrimSpace(req.UserID), medications, allergies)
	logging.Info("Chat session started",
		"session_id", session.ID,
		"medications", len(session.CurrentMedications))
	return session, nil
}

// SendMessage answers a message within a session, creating the session and
// the conversation when they do not exist yet.
func (s *Service) SendMessage(ctx context.Context, req MessageRequest) (*Reply, error) {
	message, err := s.validator.ValidateChatMessage(req.Message)
	if err != nil {
		return nil, err
	}
	sessionID := strings.TrimSpace(req.SessionID)
	if sessionID == "" {
		return nil, fmt.Errorf("%w: session_id is required", validation.ErrInvalidInput)
	}
	if len(sessionID) > maxSessionIDLength {
		return nil, fmt.Errorf("%w: session_id too long: maximum %d characters", validation.ErrInvalidInput, maxSessionIDLength)
	}

	session, conv := s.store.EnsureConversation(sessionID, strings.TrimSpace(req.ConversationID))

	result := s.answerer.Answer(ctx, message, &assistant.UserContext{
		CurrentMedications: session.CurrentMedications,
		Allergies:          session.Allergies,
		SessionQueries:     session.TotalQueries,
	})

	question := entities.Message{
		ID:                   uuid.NewString(),
		Role:                 entities.RoleUser,
		Content:              message,
		Timestamp:            time.Now(),
		MentionedMedications: result.MentionedMedications,
	}
	answer := entities.Message{
		ID:              uuid.NewString(),
		Role:            entities.RoleAssistant,
		Content:         result.Response,
		Timestamp:       time.Now(),
		RiskLevel:       result.RiskLevel,
		ConfidenceScore: result.ConfidenceScore,
		Model:           result.Model,
	}

	if updated, ok := s.store.Record(conv.ID, question, answer, result.RiskLevel); ok {
		session = updated
	} else {
		logging.Warn("Conversation expired before the answer was stored",
			"session_id", sessionID,
			"conversation_id", conv.ID)
	}

	return &Reply{
		ConversationID:    conv.ID,
		SessionID:         sessionID,
		UserMessage:       question,
		AssistantResponse: answer,
		Insights:          buildInsights(result),
		Disclaimer:        result.Disclaimer,
		SessionContext: SessionContext{
			TotalQueries:         session.TotalQueries,
			CurrentMedications:   session.CurrentMedications,
			OverallRiskLevel:     result.RiskLevel,
			RequiresConsultation: result.RequiresConsultation,
		},
	}, nil
}

// GetConversation returns the history of a conversation
func (s *Service) GetConversation(id string) (entities.Conversation, bool) {
	return s.store.Conversation(id)
}

// PurgeIdle drops sessions idle for longer than ttl
func (s *Service) PurgeIdle(ttl time.Duration) int {
	return s.store.PurgeIdle(ttl)
}

// ActiveSessions returns the number of live sessions
func (s *Service) ActiveSessions() int {
	return s.store.Len()
}

func (s *Service) cleanNames(names []string, field string) ([]string, error) {
	if len(names) > validation.MaxMedicationsInput {
		return nil, fmt.Errorf("%w: too many %s: maximum %d", validation.ErrInvalidInput, field, validation.MaxMedicationsInput)
	}
	out := make([]string, 0, len(names))
	for _, name := range names {
		clean, err := s.validator.ValidateMedicationName(name)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", field, err)
		}
		out = append(out, strings.ToLower(clean))
	}
	return out, nil
}

func buildInsights(result assistant.Result) Insights {
	insights := Insights{
		MentionedMedications: result.MentionedMedications,
		MedicationInsights:   []string{},
		SafetyRecommendations: []string{
			"Response generated by " + result.Model,
			"Information cross-referenced with Cogitto's medication database",
			"Always verify with healthcare professionals",
		},
		InteractionWarnings: result.InteractionWarnings,
		Interactions:        result.Interactions,
		FollowupQuestions:   followupQuestions,
		Processing: ProcessingInfo{
			ModelUsed:            result.Model,
			ConfidenceScore:      result.ConfidenceScore,
			ProcessingSuccessful: !result.FallbackUsed,
			FallbackUsed:         result.FallbackUsed,
		},
	}
	if len(result.MentionedMedications) > 0 {
		insights.MedicationInsights = append(insights.MedicationInsights,
			"Analysis: "+strings.Join(result.MentionedMedications, ", "))
	}
	return insights
}
