// Package appointments stores the booking details captured from chat messages.
// Records are append-only: there is no update or delete path.
package appointments

import (
	"context"
	"sync"

	"github.com/wolfman30/barbershop-concierge/internal/extract"
)

// Repository defines the interface for appointment storage
type Repository interface {
	Append(ctx context.Context, record extract.Fields) error
	List(ctx context.Context) ([]extract.Fields, error)
}

// InMemoryRepository keeps records in process memory for the process lifetime.
type InMemoryRepository struct {
	mu      sync.RWMutex
	records []extract.Fields
}

var _ Repository = (*InMemoryRepository)(nil)

// NewInMemoryRepository creates a new in-memory repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{}
}

// Append adds a record to the end of the list.
func (r *InMemoryRepository) Append(ctx context.Context, record extract.Fields) error {
	r.mu.Lock()
	r.records = append(r.records, record)
	r.mu.Unlock()
	return nil
}

// List returns a copy of every record in insertion order.
func (r *InMemoryRepository) List(ctx context.Context) ([]extract.Fields, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]extract.Fields, len(r.records))
	copy(out, r.records)
	return out, nil
}
