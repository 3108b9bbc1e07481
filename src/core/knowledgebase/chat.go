package knowledgebase

import (
	"context"

	"github.com/google/uuid"

	"ragchat/src/core/history"
	"ragchat/src/log"
)

type chatService struct {
	kb *KnowledgeBase
}

func NewChatService(kb *KnowledgeBase) ChatService {
	return &chatService{
		kb: kb,
	}
}

// Chat answers input within a session. The empty session ID selects the
// shared default session. Failed turns leave the history untouched.
func (s *chatService) Chat(ctx context.Context, sessionID, input string) (*ChatResponse, error) {
	gen, err := s.kb.Ready()
	if err != nil {
		return nil, err
	}

	id := history.NormalizeID(sessionID)
	answer, hist, err := s.kb.history.Turn(id, input, func(window string) (string, error) {
		return gen.Generate(ctx, input, window)
	})
	if err != nil {
		log.Error(err, "Chat turn failed", "sessionId", id)
		return nil, err
	}

	return &ChatResponse{
		SessionID: id,
		Answer:    answer,
		History:   hist,
	}, nil
}

// History returns the retained entries of a session. Asking for the
// default session before it exists yields an empty history.
func (s *chatService) History(_ context.Context, sessionID string) ([]string, error) {
	sess, ok := s.kb.history.Lookup(sessionID)
	if !ok {
		if isDefault(sessionID) {
			return []string{}, nil
		}
		return nil, ErrSessionNotFound
	}
	return sess.Entries(), nil
}

// ClearHistory forgets a session. Clearing the default session always succeeds.
func (s *chatService) ClearHistory(_ context.Context, sessionID string) error {
	if !s.kb.history.Delete(sessionID) && !isDefault(sessionID) {
		return ErrSessionNotFound
	}
	return nil
}

// NewSession registers a fresh session and returns its ID
func (s *chatService) NewSession(_ context.Context) (string, error) {
	id := uuid.New().String()
	s.kb.history.Session(id)
	return id, nil
}

func isDefault(sessionID string) bool {
	return history.NormalizeID(sessionID) == history.DefaultSessionID
}
