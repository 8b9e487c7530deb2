package intake

import (
	"context"
	"fmt"
	"sync"

	"github.com/wolfman30/orbit-landing/internal/analytics"
)

// memStore is a minimal Store with an email uniqueness constraint.
type memStore struct {
	mu      sync.Mutex
	byEmail map[string]*Record
	inserts int
	err     error
}

func newMemStore() *memStore {
	return &memStore{byEmail: make(map[string]*Record)}
}

func (s *memStore) Insert(_ context.Context, rec *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inserts++
	if s.err != nil {
		return s.err
	}
	if _, exists := s.byEmail[rec.Email]; exists {
		return fmt.Errorf("memstore: insert %s: %w", rec.Email, ErrDuplicateEmail)
	}
	s.byEmail[rec.Email] = rec
	return nil
}

func (s *memStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byEmail)
}

func (s *memStore) get(email string) *Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.byEmail[email]
}

// blockingStore parks every insert until release is closed.
type blockingStore struct {
	entered chan struct{}
	release chan struct{}
	mu      sync.Mutex
	calls   int
}

func newBlockingStore() *blockingStore {
	return &blockingStore{entered: make(chan struct{}, 8), release: make(chan struct{})}
}

func (s *blockingStore) Insert(ctx context.Context, _ *Record) error {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	s.entered <- struct{}{}
	select {
	case <-s.release:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *blockingStore) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type recordingSink struct {
	mu     sync.Mutex
	events []string
}

func (s *recordingSink) Record(_ context.Context, name string, _ analytics.Properties) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, name)
}

func (s *recordingSink) names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.events...)
}

type recordingNotifier struct {
	mu      sync.Mutex
	records []*Record
	err     error
}

func (n *recordingNotifier) WaitlistConfirmed(_ context.Context, rec *Record) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.records = append(n.records, rec)
	return n.err
}

type fakeLock struct {
	held     map[string]bool
	err      error
	released int
}

func (l *fakeLock) Acquire(_ context.Context, key string) (func(), bool, error) {
	if l.err != nil {
		return nil, false, l.err
	}
	if l.held[key] {
		return nil, false, nil
	}
	l.held[key] = true
	return func() { delete(l.held, key); l.released++ }, true, nil
}

func strPtr(s string) *string { return &s }

// fillAndAdvance drives a wizard to the last step with d.
func fillAndAdvance(ctx context.Context, w *Wizard, d Draft) error {
	if _, err := w.Update(FieldPatch{FullName: &d.FullName, Email: &d.Email}); err != nil {
		return err
	}
	w.Next(ctx)
	if _, err := w.Update(FieldPatch{
		CompanyName: &d.CompanyName,
		Website:     &d.Website,
		CompanySize: &d.CompanySize,
		Role:        &d.Role,
	}); err != nil {
		return err
	}
	w.Next(ctx)
	for _, p := range d.PainPoints.Slice() {
		if _, err := w.TogglePainPoint(ctx, p); err != nil {
			return err
		}
	}
	return nil
}
