package transactions

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
)

var (
	// ErrNotFound is returned when no record has the requested identifier.
	ErrNotFound = errors.New("transaction not found")
	// ErrDuplicateIdentifier is returned when adding a record whose identifier is taken.
	ErrDuplicateIdentifier = errors.New("duplicate transaction identifier")
	// ErrEmptyCategory is returned for blank category labels.
	ErrEmptyCategory = errors.New("category label is empty")
)

// ImportPolicy decides how an import batch combines with existing records.
type ImportPolicy string

const (
	// PolicyOverwrite replaces every stored record with the batch.
	PolicyOverwrite ImportPolicy = "overwrite"
	// PolicyAppend keeps stored records and adds batch records with new identifiers.
	PolicyAppend ImportPolicy = "append"
)

// ParsePolicy maps a config or request value to a policy.
func ParsePolicy(s string) (ImportPolicy, error) {
	switch ImportPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", PolicyOverwrite:
		return PolicyOverwrite, nil
	case PolicyAppend:
		return PolicyAppend, nil
	default:
		return "", fmt.Errorf("unknown import policy %q", s)
	}
}

// Store is the authoritative record collection. Readers get copies, so an
// aggregation over a Snapshot never observes a concurrent mutation. Every
// mutation is persisted through the Repository; a failed save keeps the
// in-memory change and is reported to the caller.
type Store struct {
	mu         sync.RWMutex
	records    []Transaction
	categories *CategorySet
	repo       Repository
	logger     *slog.Logger
	// version changes on every mutation and on Load.
	version uint64
}

// NewStore creates an empty store seeded with SeedCategories.
func NewStore(repo Repository, logger *slog.Logger) *Store {
	if repo == nil {
		repo = NewMemoryRepository(State{})
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		records:    []Transaction{},
		categories: NewCategorySet(SeedCategories...),
		repo:       repo,
		logger:     logger,
	}
}

// Load replaces the in-memory state with the persisted one.
func (s *Store) Load(ctx context.Context) error {
	state, err := s.repo.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load transactions: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = Clone(state.Transactions)
	SortByDateDesc(s.records)
	if len(state.Categories) > 0 {
		s.categories = NewCategorySet(state.Categories...)
	} else {
		s.categories = NewCategorySet(SeedCategories...)
	}
	for _, r := range s.records {
		s.categories.Append(r.Category)
	}
	s.version++

	s.logger.Info("transactions loaded",
		slog.Int("transactions", len(s.records)),
		slog.Int("categories", s.categories.Len()),
	)
	return nil
}

// Snapshot returns a copy of all records, newest first.
func (s *Store) Snapshot() []Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Clone(s.records)
}

// Versioned returns a copy of all records together with the store version
// they were taken at.
func (s *Store) Versioned() ([]Transaction, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Clone(s.records), s.version
}

// Len returns the number of stored records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Get returns the record with identifier id.
func (s *Store) Get(id string) (Transaction, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.records {
		if r.Identifier == id {
			return r, true
		}
	}
	return Transaction{}, false
}

// Categories returns the known category labels in set order.
func (s *Store) Categories() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.categories.Labels()
}

// ReplaceAll swaps the whole record set for records. Identifiers are expected
// to be unique already; later repeats are dropped.
func (s *Store) ReplaceAll(ctx context.Context, records []Transaction) error {
	unique, _ := Dedup(records)
	SortByDateDesc(unique)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = unique
	for _, r := range unique {
		s.categories.Append(r.Category)
	}
	return s.persist(ctx)
}

// Append adds records whose identifiers are not stored yet. Stored records
// win over the batch. It returns how many were added and skipped.
func (s *Store) Append(ctx context.Context, records []Transaction) (added, duplicates int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	merged, duplicates := Dedup(append(Clone(s.records), records...))
	added = len(merged) - len(s.records)
	SortByDateDesc(merged)
	s.records = merged
	for _, r := range records {
		s.categories.Append(r.Category)
	}
	return added, duplicates, s.persist(ctx)
}

// Import applies a batch under policy and returns the number of stored records
// it contributed plus identifier collisions with the existing set.
func (s *Store) Import(ctx context.Context, records []Transaction, policy ImportPolicy) (int, int, error) {
	if policy == PolicyAppend {
		return s.Append(ctx, records)
	}
	if err := s.ReplaceAll(ctx, records); err != nil {
		return len(records), 0, err
	}
	return len(records), 0, nil
}

// AddOne prepends a record and re-sorts newest first.
func (s *Store) AddOne(ctx context.Context, record Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range s.records {
		if r.Identifier == record.Identifier {
			return fmt.Errorf("%w: %s", ErrDuplicateIdentifier, record.Identifier)
		}
	}

	s.records = append([]Transaction{record}, s.records...)
	SortByDateDesc(s.records)
	s.categories.Prepend(record.Category)
	return s.persist(ctx)
}

// ReassignCategory sets the category of the record with identifier id. It
// reports false, without error, when no such record exists.
func (s *Store) ReassignCategory(ctx context.Context, id, category string) (bool, error) {
	category = strings.TrimSpace(category)
	if category == "" {
		return false, ErrEmptyCategory
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i := range s.records {
		if s.records[i].Identifier == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false, nil
	}

	s.records[idx].Category = category
	s.categories.Prepend(category)
	return true, s.persist(ctx)
}

// AddCategory registers a new label. It reports false when already known.
func (s *Store) AddCategory(ctx context.Context, label string) (bool, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return false, ErrEmptyCategory
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.categories.Prepend(label) {
		return false, nil
	}
	return true, s.persist(ctx)
}

// Backfill assigns categorize(description) to every record without a
// category and returns how many were updated.
func (s *Store) Backfill(ctx context.Context, categorize func(description string) string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	updated := 0
	for i := range s.records {
		if strings.TrimSpace(s.records[i].Category) != "" {
			continue
		}
		s.records[i].Category = categorize(s.records[i].Description)
		s.categories.Append(s.records[i].Category)
		updated++
	}
	if updated == 0 {
		return 0, nil
	}
	return updated, s.persist(ctx)
}

// Clear removes every record. Categories are kept.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = []Transaction{}
	return s.persist(ctx)
}

// persist must be called with s.mu held.
func (s *Store) persist(ctx context.Context) error {
	s.version++
	state := State{
		Transactions: Clone(s.records),
		Categories:   s.categories.Labels(),
	}
	if err := s.repo.Save(ctx, state); err != nil {
		s.logger.Warn("failed to persist transactions",
			slog.Int("transactions", len(state.Transactions)),
			slog.Any("error", err),
		)
		return fmt.Errorf("failed to persist transactions: %w", err)
	}
	return nil
}
