package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"bits/internal/domain"
	"bits/internal/redis"
)

// maxChatHistory bounds the chat messages kept per session.
const maxChatHistory = 50

// DefaultTab is the tab a new session opens on.
const DefaultTab = "operations"

// SessionService owns per-client application state. The pricing core never
// reads it; handlers record the last quote and chat exchanges here.
type SessionService struct {
	store redis.SessionStoreInterface
	now   func() time.Time
}

// NewSessionService creates a new SessionService. A nil store keeps no
// state and hands out fresh sessions.
func NewSessionService(store redis.SessionStoreInterface) *SessionService {
	return &SessionService{store: store, now: time.Now}
}

// Get returns the session with the given id, or a new session when id is
// empty or unknown.
func (s *SessionService) Get(ctx context.Context, id string) (*domain.SessionState, error) {
	if id != "" && s.store != nil {
		state, err := s.store.GetSession(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("%w: load session: %w", ErrStorageFault, err)
		}
		if state != nil {
			return state, nil
		}
	}

	if id == "" {
		id = uuid.New().String()
	}
	return &domain.SessionState{
		ID:          id,
		CurrentTab:  DefaultTab,
		ChatHistory: []domain.ChatMessage{},
		UpdatedAt:   s.now(),
	}, nil
}

// Update loads a session, applies fn and saves the result.
func (s *SessionService) Update(ctx context.Context, id string, fn func(*domain.SessionState)) (*domain.SessionState, error) {
	state, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	fn(state)
	if len(state.ChatHistory) > maxChatHistory {
		state.ChatHistory = state.ChatHistory[len(state.ChatHistory)-maxChatHistory:]
	}
	state.UpdatedAt = s.now()

	if s.store != nil {
		if err := s.store.SaveSession(ctx, state); err != nil {
			return nil, fmt.Errorf("%w: save session: %w", ErrStorageFault, err)
		}
	}
	return state, nil
}

// RecordQuote stores q as the session's last quote.
func (s *SessionService) RecordQuote(ctx context.Context, id string, q domain.RouteQuote) (*domain.SessionState, error) {
	return s.Update(ctx, id, func(state *domain.SessionState) {
		state.LastQuote = &q
	})
}

// SetTab records the tab the client is showing.
func (s *SessionService) SetTab(ctx context.Context, id, tab string) (*domain.SessionState, error) {
	return s.Update(ctx, id, func(state *domain.SessionState) {
		state.CurrentTab = tab
	})
}
