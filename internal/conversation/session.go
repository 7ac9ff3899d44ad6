package conversation

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrNoSuchSession is returned by Select for an out-of-range index.
var ErrNoSuchSession = errors.New("no such session")

// Session is a sidebar placeholder. It carries no messages.
type Session struct {
	ID      string
	Title   string
	Created time.Time
}

// SessionList is the sidebar state. It starts with one entry selected.
type SessionList struct {
	mu       sync.RWMutex
	sessions []Session
	selected int
}

// NewSessionList returns a list holding "Session 1".
func NewSessionList() *SessionList {
	l := &SessionList{}
	l.sessions = append(l.sessions, newSession(1))
	return l
}

func newSession(n int) Session {
	return Session{
		ID:      uuid.NewString(),
		Title:   fmt.Sprintf("Session %d", n),
		Created: time.Now(),
	}
}

// Add appends a session and selects it.
func (l *SessionList) Add() Session {
	l.mu.Lock()
	defer l.mu.Unlock()
	s := newSession(len(l.sessions) + 1)
	l.sessions = append(l.sessions, s)
	l.selected = len(l.sessions) - 1
	return s
}

// Select moves the selection to index i.
func (l *SessionList) Select(i int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if i < 0 || i >= len(l.sessions) {
		return fmt.Errorf("%w: %d", ErrNoSuchSession, i)
	}
	l.selected = i
	return nil
}

// Selected returns the selected index.
func (l *SessionList) Selected() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.selected
}

// Sessions returns a copy of the entries.
func (l *SessionList) Sessions() []Session {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]Session(nil), l.sessions...)
}

// Len returns the number of entries.
func (l *SessionList) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.sessions)
}
