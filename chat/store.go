// Package chat keeps chat sessions and conversations in memory and runs
// each message through the assistant.
package chat

import (
	"slices"
	"sync"
	"time"

	"github.com/cogitto/cogitto-api/entities"
	"github.com/cogitto/cogitto-api/metrics"
	"github.com/google/uuid"
)

// Store is an in-memory session and conversation store, safe for concurrent use.
// Values handed out are copies.
type Store struct {
	mu            sync.RWMutex
	sessions      map[string]*entities.Session
	conversations map[string]*entities.Conversation
	now           func() time.Time
}

func NewStore() *Store {
	return &Store{
		sessions:      make(map[string]*entities.Session),
		conversations: make(map[string]*entities.Conversation),
		now:           time.Now,
	}
}

// CreateSession registers a new session under a fresh id
func (s *Store) CreateSession(userID string, medications, allergies []string) entities.Session {
	now := s.now()
	session := &entities.Session{
		ID:                 uuid.NewString(),
		UserID:             userID,
		CurrentMedications: nonNil(medications),
		Allergies:          nonNil(allergies),
		CreatedAt:          now,
		LastActiveAt:       now,
		ConversationIDs:    []string{},
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = session
	s.updateGauge()
	return copySession(session)
}

// Session returns the session with the given id
func (s *Store) Session(id string) (entities.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	if !ok {
		return entities.Session{}, false
	}
	return copySession(session), true
}

// EnsureConversation returns the session and conversation a message belongs
// to, creating either when unknown. A conversation id owned by another
// session is treated as unknown.
func (s *Store) EnsureConversation(sessionID, conversationID string) (entities.Session, entities.Conversation) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	session, ok := s.sessions[sessionID]
	if !ok {
		session = &entities.Session{
			ID:                 sessionID,
			CurrentMedications: []string{},
			Allergies:          []string{},
			CreatedAt:          now,
			ConversationIDs:    []string{},
		}
		s.sessions[sessionID] = session
		s.updateGauge()
	}
	session.LastActiveAt = now

	conv, ok := s.conversations[conversationID]
	if !ok || conv.SessionID != sessionID {
		conv = &entities.Conversation{
			ID:        uuid.NewString(),
			SessionID: sessionID,
			Messages:  []entities.Message{},
			CreatedAt: now,
			RiskLevel: entities.RiskLow,
		}
		s.conversations[conv.ID] = conv
		session.ConversationIDs = append(session.ConversationIDs, conv.ID)
	}

	return copySession(session), copyConversation(conv)
}

// Record appends a question and its answer to a conversation, sets the
// conversation risk level and counts the query on the session. It reports
// false when the conversation was purged in the meantime.
func (s *Store) Record(conversationID string, question, answer entities.Message, risk entities.RiskLevel) (entities.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.conversations[conversationID]
	if !ok {
		return entities.Session{}, false
	}
	session, ok := s.sessions[conv.SessionID]
	if !ok {
		return entities.Session{}, false
	}

	conv.Messages = append(conv.Messages, question, answer)
	conv.RiskLevel = risk
	session.TotalQueries++
	session.LastActiveAt = s.now()
	return copySession(session), true
}

// Conversation returns the conversation with the given id
func (s *Store) Conversation(id string) (entities.Conversation, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	conv, ok := s.conversations[id]
	if !ok {
		return entities.Conversation{}, false
	}
	return copyConversation(conv), true
}

// PurgeIdle removes sessions inactive for longer than ttl together with their
// conversations and returns how many sessions were removed.
func (s *Store) PurgeIdle(ttl time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-ttl)
	removed := 0
	for id, session := range s.sessions {
		if !session.LastActiveAt.Before(cutoff) {
			continue
		}
		for _, convID := range session.ConversationIDs {
			delete(s.conversations, convID)
		}
		delete(s.sessions, id)
		removed++
	}
	s.updateGauge()
	return removed
}

// Len returns the number of live sessions
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// updateGauge must be called with the write lock held
func (s *Store) updateGauge() {
	metrics.ChatSessionsActive.Set(float64(len(s.sessions)))
}

func copySession(session *entities.Session) entities.Session {
	out := *session
	out.CurrentMedications = slices.Clone(session.CurrentMedications)
	out.Allergies = slices.Clone(session.Allergies)
	out.ConversationIDs = slices.Clone(session.ConversationIDs)
	return out
}

func copyConversation(conv *entities.Conversation) entities.Conversation {
	out := *conv
	out.Messages = slices.Clone(conv.Messages)
	return out
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
