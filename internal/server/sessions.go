package server

import (
	"sync"

	"github.com/google/uuid"
)

// Session ties a bearer token to a player on a team. Sessions live only as
// long as the process: the game state itself is persisted, rejoining after
// a restart just means presenting the join token again.
type Session struct {
	Token      string
	PlayerID   string
	TeamID     string
	PlayerName string
}

// Sessions is the in-memory player session registry.
type Sessions struct {
	mu      sync.RWMutex
	byToken map[string]Session
}

func NewSessions() *Sessions {
	return &Sessions{byToken: make(map[string]Session)}
}

// Create registers a new player session and returns it with fresh ids.
func (s *Sessions) Create(teamID, playerName string) Session {
	sess := Session{
		Token:      uuid.NewString(),
		PlayerID:   uuid.NewString(),
		TeamID:     teamID,
		PlayerName: playerName,
	}
	s.mu.Lock()
	s.byToken[sess.Token] = sess
	s.mu.Unlock()
	return sess
}

// FromToken resolves a session by its bearer token.
func (s *Sessions) FromToken(token string) (Session, bool) {
	s.mu.RLock()
	sess, ok := s.byToken[token]
	s.mu.RUnlock()
	return sess, ok
}

// AdminSessions tracks logged-in operator sessions by cookie value.
type AdminSessions struct {
	mu     sync.Mutex
	tokens map[string]struct{}
}

func NewAdminSessions() *AdminSessions {
	return &AdminSessions{tokens: make(map[string]struct{})}
}

func (a *AdminSessions) Create() string {
	token := uuid.NewString()
	a.mu.Lock()
	a.tokens[token] = struct{}{}
	a.mu.Unlock()
	return token
}

func (a *AdminSessions) Valid(token string) bool {
	a.mu.Lock()
	_, ok := a.tokens[token]
	a.mu.Unlock()
	return ok
}

func (a *AdminSessions) Delete(token string) {
	a.mu.Lock()
	delete(a.tokens, token)
	a.mu.Unlock()
}
