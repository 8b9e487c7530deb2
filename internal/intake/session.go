package intake

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// WizardFactory builds a fresh wizard for a new session.
type WizardFactory func() *Wizard

type session struct {
	wizard   *Wizard
	lastSeen time.Time
}

// SessionManager keeps wizards for in-progress respondents and evicts idle ones.
type SessionManager struct {
	mu       sync.Mutex
	sessions map[string]*session
	factory  WizardFactory
	ttl      time.Duration
	now      func() time.Time

	stop chan struct{}
	done chan struct{}
	once sync.Once
}

// NewSessionManager starts a janitor sweeping every ttl/2. Call Close to stop it.
func NewSessionManager(factory WizardFactory, ttl time.Duration) *SessionManager {
	if factory == nil {
		panic("intake: wizard factory required")
	}
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	m := &SessionManager{
		sessions: make(map[string]*session),
		factory:  factory,
		ttl:      ttl,
		now:      time.Now,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go m.janitor(ttl / 2)
	return m
}

// Create starts a session and returns its id with the new wizard.
func (m *SessionManager) Create() (string, *Wizard) {
	id := uuid.NewString()
	w := m.factory()
	m.mu.Lock()
	m.sessions[id] = &session{wizard: w, lastSeen: m.now()}
	m.mu.Unlock()
	return id, w
}

// Get returns the wizard for id and refreshes its idle timer.
func (m *SessionManager) Get(id string) (*Wizard, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok || m.expiredLocked(s) {
		return nil, ErrSessionNotFound
	}
	s.lastSeen = m.now()
	return s.wizard, nil
}

// Len reports live sessions, expired ones included until the next sweep.
func (m *SessionManager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

func (m *SessionManager) expiredLocked(s *session) bool {
	// A wizard mid-submit is never evicted; its insert is still running.
	if s.wizard.State().Kind == KindSubmitting {
		return false
	}
	return m.now().Sub(s.lastSeen) > m.ttl
}

// Sweep removes expired sessions and returns how many were dropped.
func (m *SessionManager) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for id, s := range m.sessions {
		if m.expiredLocked(s) {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed
}

func (m *SessionManager) janitor(every time.Duration) {
	defer close(m.done)
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			m.Sweep()
		}
	}
}

// Close stops the janitor and waits for it to exit.
func (m *SessionManager) Close() {
	m.once.Do(func() { close(m.stop) })
	<-m.done
}
