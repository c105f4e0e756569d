// Package store keeps simulation reports in memory for the inspection API.
// State is lost when the process restarts.
package store

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/mitchelldurbincs/mancala/internal/simulation"
)

var (
	ErrNotFound  = errors.New("report not found")
	ErrMissingID = errors.New("report has no id")
)

// Store defines the persistence interface for finished simulation reports.
type Store interface {
	// Save persists or replaces a report keyed by its ID.
	Save(ctx context.Context, r simulation.Report) error

	// Get retrieves a report by ID, or ErrNotFound.
	Get(ctx context.Context, id string) (simulation.Report, error)

	// List returns reports in insertion order, oldest first.
	List(ctx context.Context) ([]simulation.Report, error)
}

type memory struct {
	mu       sync.RWMutex
	reports  map[string]simulation.Report
	order    []string // insertion order of ids
	capacity int
}

// NewMemoryStore constructs an in-memory Store. Once more than capacity
// reports are held the oldest is evicted; capacity <= 0 means unlimited.
func NewMemoryStore(capacity int) Store {
	return &memory{
		reports:  make(map[string]simulation.Report),
		capacity: capacity,
	}
}

func (m *memory) Save(ctx context.Context, r simulation.Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if r.ID == "" {
		return ErrMissingID
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.reports[r.ID]; !exists {
		m.order = append(m.order, r.ID)
	}
	m.reports[r.ID] = r

	for m.capacity > 0 && len(m.order) > m.capacity {
		oldest := m.order[0]
		m.order = m.order[1:]
		delete(m.reports, oldest)
	}
	return nil
}

func (m *memory) Get(ctx context.Context, id string) (simulation.Report, error) {
	if err := ctx.Err(); err != nil {
		return simulation.Report{}, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	if r, ok := m.reports[id]; ok {
		return r, nil
	}
	return simulation.Report{}, fmt.Errorf("%w: %s", ErrNotFound, id)
}

func (m *memory) List(ctx context.Context) ([]simulation.Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]simulation.Report, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.reports[id])
	}
	return out, nil
}
