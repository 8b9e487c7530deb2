// Package waitlist stores submitted intake records.
package waitlist

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/wolfman30/orbit-landing/internal/intake"
)

// ErrRecordNotFound is returned when no record exists for an email.
var ErrRecordNotFound = errors.New("waitlist: record not found")

// Repository is the write side used by the intake wizard.
type Repository interface {
	intake.Store
}

// ListFilter pages through records, newest first.
type ListFilter struct {
	Limit  int
	Offset int
}

// Lister is the read side used by admin tooling.
type Lister interface {
	List(ctx context.Context, filter ListFilter) ([]*intake.Record, error)
}

var (
	_ Repository = (*InMemoryRepository)(nil)
	_ Lister     = (*InMemoryRepository)(nil)
)

// InMemoryRepository keeps records in process memory, keyed by email.
type InMemoryRepository struct {
	mu      sync.RWMutex
	byEmail map[string]*intake.Record
}

// NewInMemoryRepository creates a new in-memory repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{byEmail: make(map[string]*intake.Record)}
}

// Insert stores rec unless its email is already present.
func (r *InMemoryRepository) Insert(ctx context.Context, rec *intake.Record) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("waitlist: insert: %w", err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byEmail[rec.Email]; exists {
		return fmt.Errorf("waitlist: insert: %w", intake.ErrDuplicateEmail)
	}
	stored := *rec
	stored.PainPoints, _ = intake.NewPainPointSet(rec.PainPoints.Slice()...)
	r.byEmail[rec.Email] = &stored
	return nil
}

// GetByEmail returns the record registered for email.
func (r *InMemoryRepository) GetByEmail(ctx context.Context, email string) (*intake.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.byEmail[email]
	if !ok {
		return nil, ErrRecordNotFound
	}
	return rec, nil
}

// Count returns the number of stored records.
func (r *InMemoryRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byEmail)
}

// List returns records newest first.
func (r *InMemoryRepository) List(ctx context.Context, filter ListFilter) ([]*intake.Record, error) {
	r.mu.RLock()
	all := make([]*intake.Record, 0, len(r.byEmail))
	for _, rec := range r.byEmail {
		all = append(all, rec)
	}
	r.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		if all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].Email < all[j].Email
		}
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})
	if filter.Offset >= len(all) {
		return []*intake.Record{}, nil
	}
	all = all[filter.Offset:]
	if filter.Limit > 0 && filter.Limit < len(all) {
		all = all[:filter.Limit]
	}
	return all, nil
}
