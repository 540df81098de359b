package service

import (
	"sort"
	"sync"
)

// Session is one connected peer as seen by the room. Implementations must make
// Send safe for concurrent use and must not block on network I/O.
type Session interface {
	ID() string
	IsOpen() bool
	Send(payload []byte) error
}

type SessionRegistry interface {
	Register(session Session)
	Unregister(session Session)
	ForEachOpen(fn func(session Session))
	Len() int
}

type sessionRegistry struct {
	mu       sync.RWMutex
	sessions map[string]Session
	order    map[string]uint64
	next     uint64
}

func NewSessionRegistry() SessionRegistry {
	return &sessionRegistry{
		sessions: make(map[string]Session),
		order:    make(map[string]uint64),
	}
}

// Register adds session. Registering the same id twice is a no-op.
func (that *sessionRegistry) Register(session Session) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if _, ok := that.sessions[session.ID()]; ok {
		return
	}

	that.next++
	that.sessions[session.ID()] = session
	that.order[session.ID()] = that.next
}

func (that *sessionRegistry) Unregister(session Session) {
	that.mu.Lock()
	defer that.mu.Unlock()

	delete(that.sessions, session.ID())
	delete(that.order, session.ID())
}

// ForEachOpen calls fn for every registered session that reports itself open,
// in registration order. fn runs on a copy of the membership taken up front, so
// it may register or unregister sessions. Closed sessions are skipped, never removed.
func (that *sessionRegistry) ForEachOpen(fn func(session Session)) {
	for _, session := range that.snapshot() {
		if !session.IsOpen() {
			continue
		}
		fn(session)
	}
}

func (that *sessionRegistry) Len() int {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return len(that.sessions)
}

func (that *sessionRegistry) snapshot() []Session {
	that.mu.RLock()
	defer that.mu.RUnlock()

	sessions := make([]Session, 0, len(that.sessions))
	for _, session := range that.sessions {
		sessions = append(sessions, session)
	}

	sort.Slice(sessions, func(i, j int) bool {
		return that.order[sessions[i].ID()] < that.order[sessions[j].ID()]
	})

	return sessions
}
