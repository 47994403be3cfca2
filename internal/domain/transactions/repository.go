package transactions

import (
	"context"
	"sync"
)

// StorageKey names the persisted transaction list.
const StorageKey = "uli_transacoes_v4_improved"

// CategoriesKey names the persisted category list.
const CategoriesKey = "uli_categorias"

// State is everything the store persists.
type State struct {
	Transactions []Transaction `json:"transacoes"`
	Categories   []string      `json:"categorias"`
}

// Repository is the persistence port of the store. Load returns an empty
// State when nothing was saved yet.
type Repository interface {
	Load(ctx context.Context) (*State, error)
	Save(ctx context.Context, state State) error
}

// MemoryRepository keeps the last saved state in memory.
type MemoryRepository struct {
	mu    sync.Mutex
	state State
	saves int
	err   error
}

// NewMemoryRepository creates a repository seeded with state.
func NewMemoryRepository(state State) *MemoryRepository {
	return &MemoryRepository{state: copyState(state)}
}

// Load returns a copy of the saved state.
func (r *MemoryRepository) Load(ctx context.Context) (*State, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := copyState(r.state)
	return &s, nil
}

// Save stores a copy of state, or returns the error set with FailWith.
func (r *MemoryRepository) Save(ctx context.Context, state State) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.state = copyState(state)
	r.saves++
	return nil
}

// FailWith makes subsequent saves fail with err (nil restores success).
func (r *MemoryRepository) FailWith(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
}

// Saves returns how many saves succeeded.
func (r *MemoryRepository) Saves() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.saves
}

func copyState(s State) State {
	out := State{Transactions: Clone(s.Transactions)}
	if s.Categories != nil {
		out.Categories = append([]string(nil), s.Categories...)
	}
	return out
}
